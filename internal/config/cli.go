package config

import (
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/cli-mcp-server/internal/shellkind"
)

// CLIFlags is the parsed form of the cobra flag set. Repeatable flags
// (DenyCommand, DenyArg, DenyOperator, AllowPath) each carry
// "SHELL=VALUE" entries in the order they were passed on the command
// line; an entry with an empty VALUE clears that shell's list up to
// that point.
type CLIFlags struct {
	ConfigPath   string
	ShellOnly    shellkind.Kind
	DevMode      bool
	Yolo         bool
	Unsafe       bool
	AllowAllDirs bool
	InitialDir   string
	LogDir       string
	WatchConfig  bool

	DenyCommand  []string
	DenyArg      []string
	DenyOperator []string
	AllowPath    []string
}

// BuildCLIOverlay turns the shell-enable/disable and deny/allow-list
// flags into an Overlay layer. Fast-mode flags (Yolo/Unsafe/AllowAllDirs)
// are applied after the merge, directly by Resolve, since they act on
// the fully-merged result rather than overriding a single field.
func BuildCLIOverlay(f CLIFlags) (*Overlay, error) {
	overlay := &Overlay{Shells: make(map[shellkind.Kind]*ShellOverlay)}

	if f.DevMode {
		for _, k := range []shellkind.Kind{shellkind.PowerShell, shellkind.Bash, shellkind.WSL} {
			enabled := true
			overlay.shell(k).Enabled = &enabled
		}
	}
	if f.ShellOnly != "" {
		if !shellkind.Valid(f.ShellOnly) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownShell, f.ShellOnly)
		}
		for _, k := range shellkind.All() {
			enabled := k == f.ShellOnly
			overlay.shell(k).Enabled = &enabled
		}
	}
	// InitialDir is applied in Resolve, once the enabled set reflects
	// defaults and the file overlay too, not just this overlay's own
	// Enabled entries (see applyInitialDir).

	if err := applyListFlag(overlay, f.DenyCommand, func(so *ShellOverlay, v []string) { so.BlockedCommands = &v }); err != nil {
		return nil, err
	}
	if err := applyListFlag(overlay, f.DenyArg, func(so *ShellOverlay, v []string) { so.BlockedArguments = &v }); err != nil {
		return nil, err
	}
	if err := applyListFlag(overlay, f.DenyOperator, func(so *ShellOverlay, v []string) { so.BlockedOperators = &v }); err != nil {
		return nil, err
	}
	if err := applyListFlag(overlay, f.AllowPath, func(so *ShellOverlay, v []string) { so.AllowedPaths = &v }); err != nil {
		return nil, err
	}

	return overlay, nil
}

// applyListFlag groups "SHELL=VALUE" entries by shell, in order, and
// installs the resulting per-shell slice into the overlay via set. An
// empty VALUE clears everything accumulated so far for that shell.
func applyListFlag(overlay *Overlay, entries []string, set func(*ShellOverlay, []string)) error {
	if len(entries) == 0 {
		return nil
	}
	acc := make(map[shellkind.Kind][]string)
	touched := make(map[shellkind.Kind]bool)
	for _, entry := range entries {
		shell, value, ok := strings.Cut(entry, "=")
		if !ok {
			return fmt.Errorf("invalid override %q: expected SHELL=VALUE", entry)
		}
		k := shellkind.Kind(shell)
		if !shellkind.Valid(k) {
			return fmt.Errorf("%w: %q", ErrUnknownShell, shell)
		}
		touched[k] = true
		if value == "" {
			acc[k] = nil
			continue
		}
		acc[k] = append(acc[k], value)
	}
	for k := range touched {
		set(overlay.shell(k), acc[k])
	}
	return nil
}
