package logquery

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nextlevelbuilder/cli-mcp-server/internal/clierr"
)

const maxContextLines = 20

// Search finds the occurrence-th line matching pattern in text, renders a
// window of up to contextLines before and after it, and returns the
// rendered text. contextLines is clamped to [0, 20].
func Search(text, pattern string, contextLines, occurrence int, caseInsensitive, includeLineNumbers bool) (string, *clierr.Error) {
	expr := pattern
	if caseInsensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return "", clierr.New(clierr.CodeInvalidSearch, "invalid search pattern: "+err.Error())
	}

	if contextLines < 0 {
		contextLines = 0
	}
	if contextLines > maxContextLines {
		contextLines = maxContextLines
	}

	lines := strings.Split(text, "\n")
	var matchLines []int
	for i, l := range lines {
		if re.MatchString(l) {
			matchLines = append(matchLines, i)
		}
	}

	m := len(matchLines)
	if m == 0 {
		return "", clierr.NewWithSuggestion(clierr.CodeNoMatches, "pattern matched no lines").
			WithDetails(map[string]any{"pattern": pattern})
	}
	if occurrence < 1 || occurrence > m {
		return "", clierr.New(clierr.CodeInvalidOccurrence, "occurrence out of range").
			WithDetails(map[string]any{"occurrence": occurrence, "matchCount": m})
	}

	matchIdx := matchLines[occurrence-1]
	before := matchIdx - contextLines
	if before < 0 {
		before = 0
	}
	after := matchIdx + contextLines
	if after >= len(lines) {
		after = len(lines) - 1
	}

	var b strings.Builder
	b.WriteString("Search \"" + pattern + "\" found " + strconv.Itoa(m) + " occurrence(s); showing occurrence " +
		strconv.Itoa(occurrence) + " of " + strconv.Itoa(m) + " at line " + strconv.Itoa(matchIdx+1) + "\n")

	for i := before; i <= after; i++ {
		line := lines[i]
		prefix := ""
		if includeLineNumbers {
			prefix = strconv.Itoa(i+1) + ": "
		}
		switch {
		case i == matchIdx:
			b.WriteString(">>> " + prefix + line + " <<<\n")
		default:
			b.WriteString(prefix + line + "\n")
		}
	}

	if occurrence < m {
		b.WriteString("To see next match, use occurrence=" + strconv.Itoa(occurrence+1))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
