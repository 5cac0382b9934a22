package mcpserver

import "testing"

func TestParseLogCommandURI(t *testing.T) {
	cases := []struct {
		uri        string
		wantID     string
		wantSuffix string
		wantOK     bool
	}{
		{"cli://logs/commands/abc123", "abc123", "", true},
		{"cli://logs/commands/abc123/range?start=1&end=10", "abc123", "range", true},
		{"cli://logs/commands/abc123/search?q=foo", "abc123", "search", true},
		{"cli://logs/commands/", "", "", false},
		{"cli://logs/list", "", "", false},
	}
	for _, c := range cases {
		id, suffix, ok := parseLogCommandURI(c.uri)
		if ok != c.wantOK || id != c.wantID || suffix != c.wantSuffix {
			t.Errorf("parseLogCommandURI(%q) = (%q, %q, %v), want (%q, %q, %v)",
				c.uri, id, suffix, ok, c.wantID, c.wantSuffix, c.wantOK)
		}
	}
}

func TestQueryOf(t *testing.T) {
	q := queryOf("cli://logs/commands/abc/range?start=1&end=10&lineNumbers=true")
	if q.Get("start") != "1" || q.Get("end") != "10" || q.Get("lineNumbers") != "true" {
		t.Errorf("unexpected query values: %v", q)
	}

	empty := queryOf("cli://logs/list")
	if len(empty) != 0 {
		t.Errorf("expected no query values, got %v", empty)
	}
}

func TestIntOr(t *testing.T) {
	if got := intOr("5", 1); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
	if got := intOr("", 1); got != 1 {
		t.Errorf("expected fallback 1, got %d", got)
	}
	if got := intOr("not-a-number", 7); got != 7 {
		t.Errorf("expected fallback 7, got %d", got)
	}
}

func TestClampInt(t *testing.T) {
	if got := clampInt(5, 1, 100); got != 5 {
		t.Errorf("expected 5 unclamped, got %d", got)
	}
	if got := clampInt(-3, 1, 100); got != 1 {
		t.Errorf("expected clamp to lower bound 1, got %d", got)
	}
	if got := clampInt(500, 1, 100); got != 100 {
		t.Errorf("expected clamp to upper bound 100, got %d", got)
	}
}
