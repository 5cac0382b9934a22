package logstore

import (
	"strings"
	"time"
)

// Entry is a command's complete record once it has finished running.
// Entries are immutable after Store returns their id: Get/List hand out
// the store's own *Entry as a shared read-only handle, never a copy, so
// callers must not mutate the fields they get back.
type Entry struct {
	ID               string
	Timestamp        time.Time
	ShellName        string
	Command          string
	WorkingDirectory string
	ExitCode         int

	Stdout         string
	Stderr         string
	CombinedOutput string

	TotalLines  int
	StdoutLines int
	StderrLines int

	WasTruncated  bool
	ReturnedLines int

	SizeBytes int64
}

// metadataOverheadBytes is the small constant added to an entry's
// accounted size beyond its combined output, covering id/timestamp/etc.
const metadataOverheadBytes = 256

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func combine(stdout, stderr string) string {
	if stderr == "" {
		return stdout
	}
	return stdout + "\n" + stderr
}
