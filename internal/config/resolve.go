package config

import (
	"fmt"
	"log/slog"

	"github.com/nextlevelbuilder/cli-mcp-server/internal/pathnorm"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/shellkind"
)

// Resolve merges base (typically Default()) with a file overlay and a
// CLI overlay, in that order, then applies the fast-mode escape hatches
// and WSL path inheritance, and validates the result's bounds. It
// returns a Config ready to hand to state.New.
func Resolve(base *Config, fileOverlay, cliOverlay *Overlay, flags CLIFlags) (*Config, error) {
	if flags.Yolo && flags.Unsafe {
		return nil, ErrConflictingModes
	}

	cfg := base
	Apply(cfg, fileOverlay)
	Apply(cfg, cliOverlay)

	for _, shell := range cfg.Shells {
		applyFastModes(shell, flags)
		applyInitialDir(shell, flags)
		applyAllowAllDirs(shell, flags)
		precomputeEffectiveAllowedPaths(shell, cfg)
	}

	if err := validateBounds(cfg); err != nil {
		return nil, err
	}
	slog.Info("config.loaded", "enabledShells", len(cfg.EnabledShells()))
	return cfg, nil
}

// applyFastModes implements the YOLO/Unsafe escape hatches: both clear
// the deny-lists and injection protection; Unsafe additionally drops
// directory restriction.
func applyFastModes(shell *ResolvedShellConfig, flags CLIFlags) {
	if !flags.Yolo && !flags.Unsafe {
		return
	}
	shell.Restrictions.BlockedCommands = nil
	shell.Restrictions.BlockedArguments = nil
	shell.Restrictions.BlockedOperators = nil
	shell.Security.EnableInjectionProtection = false
	if flags.Unsafe {
		shell.Security.RestrictWorkingDirectory = false
	}
}

// applyAllowAllDirs implements the --allow-all-dirs escape hatch: only
// takes effect when the shell has no configured allowed paths and no
// initial directory.
func applyAllowAllDirs(shell *ResolvedShellConfig, flags CLIFlags) {
	if !flags.AllowAllDirs {
		return
	}
	if len(shell.Paths.AllowedPaths) != 0 || shell.Paths.InitialDir != "" {
		return
	}
	shell.Security.RestrictWorkingDirectory = false
	shell.Security.EnableInjectionProtection = false
}

// applyInitialDir sets --initial-dir on every effectively-enabled shell,
// regardless of whether it was enabled by defaults, the file overlay, or
// this CLI invocation's own --dev/--shell flags.
func applyInitialDir(shell *ResolvedShellConfig, flags CLIFlags) {
	if flags.InitialDir == "" || !shell.Enabled {
		return
	}
	shell.Paths.InitialDir = flags.InitialDir
}

// precomputeEffectiveAllowedPaths resolves a shell's
// EffectiveAllowedPaths: its own allowed paths, plus, when it is WSL-like
// and configured to inherit global paths, the cmd/powershell allowed
// paths converted through its mount point.
func precomputeEffectiveAllowedPaths(shell *ResolvedShellConfig, cfg *Config) {
	effective := append([]string(nil), shell.Paths.AllowedPaths...)
	if shell.Kind.IsWslShell() && shell.WSL != nil && shell.WSL.InheritGlobalPaths {
		mount := shell.WSL.MountPoint
		for _, windowsKind := range []shellkind.Kind{shellkind.CMD, shellkind.PowerShell} {
			global, ok := cfg.Shells[windowsKind]
			if !ok {
				continue
			}
			for _, p := range global.Paths.AllowedPaths {
				converted, err := pathnorm.ConvertWindowsToWslMount(p, mount)
				if err != nil {
					slog.Warn("config.wsl_inherit.skip", "path", p, "error", err)
					continue
				}
				effective = append(effective, converted)
			}
		}
	}
	shell.EffectiveAllowedPaths = effective
}

// validateBounds enforces the fatal-at-load invariants: timeout and
// length ranges, non-empty executables for enabled shells, and
// non-negative log limits.
func validateBounds(cfg *Config) error {
	for kind, shell := range cfg.Shells {
		if !shellkind.Valid(kind) {
			return fmt.Errorf("%w: %q", ErrUnknownShell, kind)
		}
		if !shell.Enabled {
			continue
		}
		if shell.Executable.Command == "" {
			return fmt.Errorf("%w: shell %q is enabled with an empty executable command", ErrBoundsViolation, kind)
		}
		if shell.Security.CommandTimeoutSeconds < 1 || shell.Security.CommandTimeoutSeconds > 3600 {
			return fmt.Errorf("%w: shell %q commandTimeoutSeconds must be in [1, 3600]", ErrBoundsViolation, kind)
		}
		if shell.Security.MaxCommandLength < 1 {
			return fmt.Errorf("%w: shell %q maxCommandLength must be >= 1", ErrBoundsViolation, kind)
		}
	}
	if cfg.Logging.MaxOutputLines < 1 {
		return fmt.Errorf("%w: maxOutputLines must be >= 1", ErrBoundsViolation)
	}
	if cfg.Logging.MaxStoredLogs < 0 || cfg.Logging.MaxLogSize < 0 || cfg.Logging.MaxTotalStorageSize < 0 {
		return fmt.Errorf("%w: log limits must be non-negative", ErrBoundsViolation)
	}
	return nil
}

// Sanitized returns a copy of cfg with enabled-only shells and their
// executables stripped, suitable for get_config / cli://config.
func Sanitized(cfg *Config) map[string]any {
	shells := make(map[string]any, len(cfg.Shells))
	for kind, shell := range cfg.Shells {
		if !shell.Enabled {
			continue
		}
		shells[string(kind)] = map[string]any{
			"displayName": shell.DisplayName,
			"security":    shell.Security,
			"restrictions": shell.Restrictions,
			"paths":       shell.Paths,
		}
	}
	return map[string]any{
		"shells":  shells,
		"logging": cfg.Logging,
	}
}
