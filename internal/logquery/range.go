// Package logquery implements the line-range and regex-search processors
// that serve cli://logs/commands/{id}/range and .../search, plus the
// get_command_output tool's equivalent code paths. Both processors are
// pure: they take a command's stored output and return rendered text or
// a structured error, never touching the store themselves.
package logquery

import (
	"strconv"
	"strings"

	"github.com/nextlevelbuilder/cli-mcp-server/internal/clierr"
)

// Range renders lines [start, end] (1-based, inclusive) of text. Negative
// indices count from the end: -1 is the last line, -N the N-th last.
func Range(text string, start, end int, includeLineNumbers bool) (string, *clierr.Error) {
	lines := strings.Split(text, "\n")
	total := len(lines)

	actualStart := resolveIndex(start, total)
	actualEnd := resolveIndex(end, total)

	if actualStart < 1 || actualEnd > total {
		return "", clierr.New(clierr.CodeInvalidRange, "range is out of bounds").
			WithDetails(map[string]any{"start": actualStart, "end": actualEnd, "total": total})
	}
	if actualStart > actualEnd {
		return "", clierr.New(clierr.CodeInvalidRange, "start is after end").
			WithDetails(map[string]any{"start": actualStart, "end": actualEnd})
	}

	header := "Lines " + strconv.Itoa(actualStart) + "-" + strconv.Itoa(actualEnd) + " of " + strconv.Itoa(total) + ":"
	body := renderLines(lines[actualStart-1:actualEnd], actualStart, includeLineNumbers)
	return header + "\n" + body, nil
}

func resolveIndex(idx, total int) int {
	if idx < 0 {
		return total + idx + 1
	}
	return idx
}

func renderLines(lines []string, startNum int, includeLineNumbers bool) string {
	if !includeLineNumbers {
		return strings.Join(lines, "\n")
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strconv.Itoa(startNum+i) + ": " + l
	}
	return strings.Join(out, "\n")
}
