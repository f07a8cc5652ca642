package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/iLusha80/kbase/internal"
	"github.com/iLusha80/kbase/internal/activity"
	"github.com/iLusha80/kbase/internal/mcpserver"
	"github.com/iLusha80/kbase/internal/report"
	"github.com/iLusha80/kbase/internal/service"
	"github.com/iLusha80/kbase/internal/store"
	pkgconfig "github.com/iLusha80/kbase/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Defaults are enough for local use.
		return cfg, nil
	}
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Log to stderr: stdout carries the MCP stdio transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	st, err := store.Open(cfg.SQLite.Path, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	log := activity.New(st.DB())
	svc := service.New(st, log, logger)
	reports := report.New(st, log, logger)

	return mcpserver.New(svc, reports).ServeStdio()
}

func main() {
	configFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			DefaultText: "config/config.yaml",
			Value:       "config/config.yaml",
			Sources:     cli.EnvVars("APP_CONFIG_FILE"),
		}
	}

	cmd := &cli.Command{
		Name:   "kbase",
		Usage:  "Personal work knowledge base: contacts, tasks, projects, meetings, full-text search and reports",
		Action: run,
		Flags:  []cli.Flag{configFlag()},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Run the MCP server over stdio",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag()},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
