// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes kbase tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/iLusha80/kbase/internal/models"
	"github.com/iLusha80/kbase/internal/report"
	"github.com/iLusha80/kbase/internal/service"
)

// Server wraps the MCP server with kbase tools.
type Server struct {
	mcp     *server.MCPServer
	svc     *service.Service
	reports *report.Service
}

// New creates a new MCP server with all kbase tools registered.
func New(svc *service.Service, reports *report.Service) *Server {
	s := &Server{svc: svc, reports: reports}

	s.mcp = server.NewMCPServer(
		"kbase",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Search tasks, contacts and projects. Prefix the query with # to search by tag."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.search)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks, optionally filtered by status name (To Do, In Progress, Waiting, Done)."),
		mcp.WithString("status", mcp.Description("Optional status name to filter by")),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a task. Title is required; due_date uses YYYY-MM-DD."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("description", mcp.Description("Task description")),
		mcp.WithString("due_date", mcp.Description("Due date in YYYY-MM-DD form")),
	), s.createTask)

	s.mcp.AddTool(mcp.NewTool("daily_standup",
		mcp.WithDescription("Daily standup: completed in the last 24h, in progress, due today, overdue, waiting, and today's meetings, grouped by assignee."),
	), s.dailyStandup)

	s.mcp.AddTool(mcp.NewTool("weekly_report",
		mcp.WithDescription("Weekly report for the trailing seven days: completed, created, blockers, per-project progress and per-person workload."),
	), s.weeklyReport)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func asJSON(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) search(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.GlobalSearch(query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return asJSON(results), nil
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := ""
	if v, err := req.RequireString("status"); err == nil {
		status = v
	}

	var (
		tasks []models.Task
		err   error
	)
	if status == "" {
		tasks, err = s.svc.Store().Tasks()
	} else {
		tasks, err = s.svc.Store().TasksInStatus(status)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return asJSON(tasks), nil
}

func (s *Server) createTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := models.TaskInput{Title: title}
	if v, err := req.RequireString("description"); err == nil {
		in.Description = v
	}
	if v, err := req.RequireString("due_date"); err == nil && v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid due_date: %s", v)), nil
		}
		in.DueDate = &d
	}

	task, err := s.svc.CreateTask(in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return asJSON(task), nil
}

func (s *Server) dailyStandup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return asJSON(s.reports.DailyStandup()), nil
}

func (s *Server) weeklyReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := time.Now().UTC()
	return asJSON(s.reports.WeeklyReport(now.AddDate(0, 0, -7), now)), nil
}
