// Package config resolves the layered configuration — built-in defaults,
// an optional JSON5 file, and CLI overrides — into a ServerState's
// per-shell ResolvedShellConfig map.
package config

import "github.com/nextlevelbuilder/cli-mcp-server/internal/shellkind"

// Executable is a shell's spawn target: the binary plus any fixed
// leading arguments (e.g. cmd.exe's ["/c"]).
type Executable struct {
	Command    string   `json:"command"`
	ArgsPrefix []string `json:"argsPrefix"`
}

// SecurityConfig holds the scalar guardrails around command execution.
type SecurityConfig struct {
	MaxCommandLength          int  `json:"maxCommandLength"`
	CommandTimeoutSeconds     int  `json:"commandTimeoutSeconds"`
	EnableInjectionProtection bool `json:"enableInjectionProtection"`
	RestrictWorkingDirectory  bool `json:"restrictWorkingDirectory"`
}

// RestrictionsConfig holds the array-valued deny lists, which merge with
// replace-or-clear semantics rather than the default/override rule used
// for scalars.
type RestrictionsConfig struct {
	BlockedCommands  []string `json:"blockedCommands"`
	BlockedArguments []string `json:"blockedArguments"`
	BlockedOperators []string `json:"blockedOperators"`
}

// PathsConfig holds the allow-list and optional startup directory.
type PathsConfig struct {
	AllowedPaths []string `json:"allowedPaths"`
	InitialDir   string   `json:"initialDir,omitempty"`
}

// WSLConfig is only meaningful for shells where Kind.IsWslShell() is true.
type WSLConfig struct {
	MountPoint         string `json:"mountPoint"`
	InheritGlobalPaths bool   `json:"inheritGlobalPaths"`
}

// ResolvedShellConfig is the fully merged, request-time record for one
// enabled shell. It is built once at startup (or on a config reload) and
// never mutated in place — a reload constructs a new map and swaps it.
type ResolvedShellConfig struct {
	Kind        shellkind.Kind `json:"kind"`
	DisplayName string         `json:"displayName"`
	Enabled     bool           `json:"enabled"`

	Executable   Executable          `json:"executable"`
	Security     SecurityConfig      `json:"security"`
	Restrictions RestrictionsConfig  `json:"restrictions"`
	Paths        PathsConfig         `json:"paths"`
	WSL          *WSLConfig          `json:"wslConfig,omitempty"`

	// EffectiveAllowedPaths is Paths.AllowedPaths plus, when WSL.InheritGlobalPaths
	// is set, the global Windows allowed paths converted via WSL.MountPoint.
	// Precomputed at resolve time so the validator never recomputes it per call.
	EffectiveAllowedPaths []string `json:"-"`
}

// LoggingConfig governs truncation and the log store's bounds.
type LoggingConfig struct {
	MaxOutputLines         int  `json:"maxOutputLines"`
	EnableTruncation       bool `json:"enableTruncation"`
	MaxStoredLogs          int  `json:"maxStoredLogs"`
	MaxLogSize             int64 `json:"maxLogSize"`
	MaxTotalStorageSize    int64 `json:"maxTotalStorageSize"`
	EnableLogResources     bool `json:"enableLogResources"`
	LogRetentionMinutes    int  `json:"logRetentionMinutes"`
	CleanupIntervalMinutes int  `json:"cleanupIntervalMinutes"`
}

// Config is the full resolved server configuration: one entry per known
// shell kind (disabled shells remain present with Enabled=false until
// ServerState filters them out) plus the shared logging policy.
type Config struct {
	Shells  map[shellkind.Kind]*ResolvedShellConfig `json:"shells"`
	Logging LoggingConfig                           `json:"logging"`
}

// EnabledShells returns the subset of c.Shells with Enabled=true.
func (c *Config) EnabledShells() map[shellkind.Kind]*ResolvedShellConfig {
	out := make(map[shellkind.Kind]*ResolvedShellConfig, len(c.Shells))
	for k, v := range c.Shells {
		if v != nil && v.Enabled {
			out[k] = v
		}
	}
	return out
}
