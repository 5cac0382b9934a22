// Package state holds the process-wide, mutable server state: the
// current working directory and the shell config map, passed as an
// explicit dependency into the dispatcher at construction time rather
// than reached for through package-level variables.
package state

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/nextlevelbuilder/cli-mcp-server/internal/config"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/logstore"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/shellkind"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/validator"
)

// ServerState is the live, process-wide state shared by every dispatcher
// request. Shells is swapped wholesale on a config reload; CurrentDir is
// guarded by its own mutex since it is written far more often.
type ServerState struct {
	shells atomic.Pointer[map[shellkind.Kind]*config.ResolvedShellConfig]

	mu         sync.RWMutex
	currentDir string // empty means unset

	Logs    *logstore.Store
	Logging config.LoggingConfig
}

// New constructs a ServerState from an initial shell map and log store.
// CurrentDir starts at the first enabled shell's Paths.InitialDir, in
// shellkind.All() order, or at that shell's first allowed path when the
// InitialDir lies outside it (see initialCurrentDir); otherwise it starts
// unset.
func New(shells map[shellkind.Kind]*config.ResolvedShellConfig, logs *logstore.Store, logging config.LoggingConfig) *ServerState {
	s := &ServerState{Logs: logs, Logging: logging}
	s.shells.Store(&shells)
	s.currentDir = initialCurrentDir(shells)
	return s
}

// initialCurrentDir resolves the startup current directory: the first
// enabled shell (in shellkind.All() order) with a configured InitialDir.
// If that directory falls outside the shell's effective allowed set, it
// warns and falls through to the shell's first allowed path; if the
// shell has no allowed paths either, it leaves the current directory
// unset rather than start the server pointed somewhere it can't use.
func initialCurrentDir(shells map[shellkind.Kind]*config.ResolvedShellConfig) string {
	for _, k := range shellkind.All() {
		cfg, ok := shells[k]
		if !ok || !cfg.Enabled || cfg.Paths.InitialDir == "" {
			continue
		}
		dir := cfg.Paths.InitialDir
		if !cfg.Security.RestrictWorkingDirectory || validator.IsPathAllowed(dir, cfg) {
			return dir
		}
		slog.Warn("state.initial_dir.outside_allowed_paths", "shell", k, "dir", dir)
		if len(cfg.EffectiveAllowedPaths) > 0 {
			return cfg.EffectiveAllowedPaths[0]
		}
		return ""
	}
	return ""
}

// Shells returns the current shell config map. Safe for concurrent use;
// the returned map must not be mutated by the caller.
func (s *ServerState) Shells() map[shellkind.Kind]*config.ResolvedShellConfig {
	return *s.shells.Load()
}

// ReplaceShells atomically swaps the shell config map, used by the
// config-file hot-reload path. In-flight commands keep using the
// snapshot they already captured.
func (s *ServerState) ReplaceShells(shells map[shellkind.Kind]*config.ResolvedShellConfig) {
	s.shells.Store(&shells)
}

// Shell looks up one shell's resolved config by kind.
func (s *ServerState) Shell(k shellkind.Kind) (*config.ResolvedShellConfig, bool) {
	cfg, ok := s.Shells()[k]
	return cfg, ok
}

// CurrentDir returns the server's current working directory, or "" if
// unset.
func (s *ServerState) CurrentDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentDir
}

// SetCurrentDir updates the server's current working directory.
func (s *ServerState) SetCurrentDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentDir = dir
}
