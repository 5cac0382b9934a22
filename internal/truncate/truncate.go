// Package truncate implements the tail-truncation rule applied to
// command output before it is returned inline to a caller: keep the last
// N lines and prepend a banner pointing at the full stored log.
package truncate

import (
	"strconv"
	"strings"
)

// Result is the outcome of truncating one block of output.
type Result struct {
	Text          string
	WasTruncated  bool
	TotalLines    int
	ReturnedLines int
}

// Truncate splits output into lines (treating "\r\n" as "\n" for the
// purpose of counting) and, when it has more than maxLines, keeps only
// the last maxLines, prefixed with a banner naming executionID.
func Truncate(output string, maxLines int, executionID string) Result {
	normalized := strings.ReplaceAll(output, "\r\n", "\n")
	lines := strings.Split(normalized, "\n")
	total := len(lines)

	if maxLines < 1 || total <= maxLines {
		return Result{Text: output, WasTruncated: false, TotalLines: total, ReturnedLines: total}
	}

	omitted := total - maxLines
	tail := strings.Split(output, "\n")[total-maxLines:]
	banner := bannerFor(maxLines, total, omitted, executionID)

	return Result{
		Text:          banner + "\n\n" + strings.Join(tail, "\n"),
		WasTruncated:  true,
		TotalLines:    total,
		ReturnedLines: maxLines,
	}
}

func bannerFor(shown, total, omitted int, executionID string) string {
	return "[Output truncated: showing last " + strconv.Itoa(shown) + " of " + strconv.Itoa(total) +
		" lines; omitted " + strconv.Itoa(omitted) + "; full output at cli://logs/commands/" + executionID + "]"
}
