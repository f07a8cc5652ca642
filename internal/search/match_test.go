package search

import "testing"

func TestMatchQuery_PrefixTerms(t *testing.T) {
	got := MatchQuery("fix log")
	want := `"fix"* "log"*`
	if got != want {
		t.Errorf("MatchQuery = %q, want %q", got, want)
	}
}

func TestMatchQuery_SingleToken(t *testing.T) {
	if got := MatchQuery("auth"); got != `"auth"*` {
		t.Errorf("MatchQuery = %q", got)
	}
}

func TestMatchQuery_Empty(t *testing.T) {
	if got := MatchQuery("   "); got != "" {
		t.Errorf("MatchQuery = %q, want empty", got)
	}
}

func TestMatchQuery_StripsQuotes(t *testing.T) {
	if got := MatchQuery(`"fix" log`); got != `"fix"* "log"*` {
		t.Errorf("MatchQuery = %q", got)
	}
}

func TestDocumentValueAlignment(t *testing.T) {
	for et, sp := range specs {
		var doc Document
		switch et {
		case EntityTask:
			doc = TaskDocument(1, "t", "d")
		case EntityContact:
			doc = ContactDocument(1, "l", "f", "m", "dep", "r", "n")
		case EntityProject:
			doc = ProjectDocument(1, "t", "d")
		}
		if len(doc.Values) != len(sp.columns) {
			t.Errorf("%s document carries %d values, table has %d columns",
				et, len(doc.Values), len(sp.columns))
		}
	}
}
