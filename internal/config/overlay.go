package config

import "github.com/nextlevelbuilder/cli-mcp-server/internal/shellkind"

// ShellOverlay carries one layer's (file or CLI) partial edits to a
// single shell's config. A nil pointer field means "not specified, keep
// the earlier layer's value"; a non-nil pointer to an array means
// replace (the array may be empty, clearing the field).
type ShellOverlay struct {
	Enabled    *bool
	Executable *Executable

	MaxCommandLength          *int
	CommandTimeoutSeconds     *int
	EnableInjectionProtection *bool
	RestrictWorkingDirectory  *bool

	BlockedCommands  *[]string
	BlockedArguments *[]string
	BlockedOperators *[]string

	AllowedPaths *[]string
	InitialDir   *string

	WSLMountPoint         *string
	WSLInheritGlobalPaths *bool
}

// LoggingOverlay carries one layer's partial edits to LoggingConfig.
type LoggingOverlay struct {
	MaxOutputLines         *int   `json:"maxOutputLines,omitempty"`
	EnableTruncation       *bool  `json:"enableTruncation,omitempty"`
	MaxStoredLogs          *int   `json:"maxStoredLogs,omitempty"`
	MaxLogSize             *int64 `json:"maxLogSize,omitempty"`
	MaxTotalStorageSize    *int64 `json:"maxTotalStorageSize,omitempty"`
	EnableLogResources     *bool  `json:"enableLogResources,omitempty"`
	LogRetentionMinutes    *int   `json:"logRetentionMinutes,omitempty"`
	CleanupIntervalMinutes *int   `json:"cleanupIntervalMinutes,omitempty"`
}

// Overlay is one full layer: a set of per-shell edits plus a logging
// edit, applied over the previous layer's resolved state.
type Overlay struct {
	Shells  map[shellkind.Kind]*ShellOverlay
	Logging LoggingOverlay
}

func (o *Overlay) shell(k shellkind.Kind) *ShellOverlay {
	if o.Shells == nil {
		o.Shells = make(map[shellkind.Kind]*ShellOverlay)
	}
	so, ok := o.Shells[k]
	if !ok {
		so = &ShellOverlay{}
		o.Shells[k] = so
	}
	return so
}

// applyShell merges one ShellOverlay onto base: scalars and objects
// replace field-by-field when present; arrays replace wholesale when
// present (including to empty), otherwise the earlier value survives.
func applyShell(base *ResolvedShellConfig, o *ShellOverlay) *ResolvedShellConfig {
	if o == nil {
		return base
	}
	out := *base
	if o.Enabled != nil {
		out.Enabled = *o.Enabled
	}
	if o.Executable != nil {
		out.Executable = *o.Executable
	}
	if o.MaxCommandLength != nil {
		out.Security.MaxCommandLength = *o.MaxCommandLength
	}
	if o.CommandTimeoutSeconds != nil {
		out.Security.CommandTimeoutSeconds = *o.CommandTimeoutSeconds
	}
	if o.EnableInjectionProtection != nil {
		out.Security.EnableInjectionProtection = *o.EnableInjectionProtection
	}
	if o.RestrictWorkingDirectory != nil {
		out.Security.RestrictWorkingDirectory = *o.RestrictWorkingDirectory
	}
	if o.BlockedCommands != nil {
		out.Restrictions.BlockedCommands = *o.BlockedCommands
	}
	if o.BlockedArguments != nil {
		out.Restrictions.BlockedArguments = *o.BlockedArguments
	}
	if o.BlockedOperators != nil {
		out.Restrictions.BlockedOperators = *o.BlockedOperators
	}
	if o.AllowedPaths != nil {
		out.Paths.AllowedPaths = *o.AllowedPaths
	}
	if o.InitialDir != nil {
		out.Paths.InitialDir = *o.InitialDir
	}
	if o.WSLMountPoint != nil || o.WSLInheritGlobalPaths != nil {
		wsl := WSLConfig{}
		if out.WSL != nil {
			wsl = *out.WSL
		}
		if o.WSLMountPoint != nil {
			wsl.MountPoint = *o.WSLMountPoint
		}
		if o.WSLInheritGlobalPaths != nil {
			wsl.InheritGlobalPaths = *o.WSLInheritGlobalPaths
		}
		out.WSL = &wsl
	}
	return &out
}

func applyLogging(base LoggingConfig, o LoggingOverlay) LoggingConfig {
	out := base
	if o.MaxOutputLines != nil {
		out.MaxOutputLines = *o.MaxOutputLines
	}
	if o.EnableTruncation != nil {
		out.EnableTruncation = *o.EnableTruncation
	}
	if o.MaxStoredLogs != nil {
		out.MaxStoredLogs = *o.MaxStoredLogs
	}
	if o.MaxLogSize != nil {
		out.MaxLogSize = *o.MaxLogSize
	}
	if o.MaxTotalStorageSize != nil {
		out.MaxTotalStorageSize = *o.MaxTotalStorageSize
	}
	if o.EnableLogResources != nil {
		out.EnableLogResources = *o.EnableLogResources
	}
	if o.LogRetentionMinutes != nil {
		out.LogRetentionMinutes = *o.LogRetentionMinutes
	}
	if o.CleanupIntervalMinutes != nil {
		out.CleanupIntervalMinutes = *o.CleanupIntervalMinutes
	}
	return out
}

// Apply merges overlay onto cfg in place, shell by shell, and returns
// cfg for chaining.
func Apply(cfg *Config, overlay *Overlay) *Config {
	if overlay == nil {
		return cfg
	}
	for k, so := range overlay.Shells {
		base, ok := cfg.Shells[k]
		if !ok {
			base = &ResolvedShellConfig{Kind: k, DisplayName: k.DisplayName()}
		}
		cfg.Shells[k] = applyShell(base, so)
	}
	cfg.Logging = applyLogging(cfg.Logging, overlay.Logging)
	return cfg
}
