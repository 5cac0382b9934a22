package logstore

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// fileSink mirrors stored entries to {dir}/{id}.json. It is best-effort
// and non-authoritative: the in-memory store remains the source of
// truth, and sink errors are logged, never surfaced to callers.
type fileSink struct {
	dir string
}

func newFileSink(dir string) *fileSink {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		slog.Warn("logstore.sink.init_failed", "dir", dir, "error", err)
	}
	return &fileSink{dir: dir}
}

// write persists entry as a single JSON file, guarding against path
// traversal via the entry id and writing through a temp file + rename so
// a reader never observes a partial file.
func (f *fileSink) write(entry *Entry) {
	filename := entry.ID + ".json"
	if !filepath.IsLocal(filename) {
		slog.Warn("logstore.sink.invalid_id", "id", entry.ID)
		return
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		slog.Warn("logstore.sink.marshal_failed", "id", entry.ID, "error", err)
		return
	}

	target := filepath.Join(f.dir, filename)
	tmp, err := os.CreateTemp(f.dir, "entry-*.tmp")
	if err != nil {
		slog.Warn("logstore.sink.tempfile_failed", "id", entry.ID, "error", err)
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		slog.Warn("logstore.sink.write_failed", "id", entry.ID, "error", err)
		return
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		slog.Warn("logstore.sink.sync_failed", "id", entry.ID, "error", err)
		return
	}
	if err := tmp.Close(); err != nil {
		slog.Warn("logstore.sink.close_failed", "id", entry.ID, "error", err)
		return
	}
	if err := os.Rename(tmpPath, target); err != nil {
		slog.Warn("logstore.sink.rename_failed", "id", entry.ID, "error", err)
	}
}
