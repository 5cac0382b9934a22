package config

import (
	"testing"

	"github.com/nextlevelbuilder/cli-mcp-server/internal/shellkind"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestResolve_DefaultOnlyCmdEnabled(t *testing.T) {
	cfg, err := Resolve(Default(), &Overlay{}, &Overlay{}, CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	enabled := cfg.EnabledShells()
	if len(enabled) != 1 {
		t.Fatalf("expected exactly 1 enabled shell, got %d", len(enabled))
	}
	if _, ok := enabled[shellkind.CMD]; !ok {
		t.Error("expected cmd to be the default enabled shell")
	}
}

func TestResolve_ArrayOverrideReplaces(t *testing.T) {
	base := Default()
	fileOverlay := &Overlay{Shells: map[shellkind.Kind]*ShellOverlay{
		shellkind.CMD: {BlockedCommands: &[]string{"foo", "bar"}},
	}}
	cfg, err := Resolve(base, fileOverlay, &Overlay{}, CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := cfg.Shells[shellkind.CMD].Restrictions.BlockedCommands
	if len(got) != 2 || got[0] != "foo" || got[1] != "bar" {
		t.Errorf("expected override to replace, got %v", got)
	}
}

func TestResolve_EmptyArrayClears(t *testing.T) {
	base := Default()
	empty := []string{}
	fileOverlay := &Overlay{Shells: map[shellkind.Kind]*ShellOverlay{
		shellkind.CMD: {BlockedCommands: &empty},
	}}
	cfg, err := Resolve(base, fileOverlay, &Overlay{}, CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := cfg.Shells[shellkind.CMD].Restrictions.BlockedCommands
	if len(got) != 0 {
		t.Errorf("expected empty array to clear defaults, got %v", got)
	}
}

func TestResolve_OmittedFieldKeepsEarlierValue(t *testing.T) {
	base := Default()
	fileOverlay := &Overlay{Shells: map[shellkind.Kind]*ShellOverlay{
		shellkind.CMD: {InitialDir: strPtr("/work")},
	}}
	cfg, err := Resolve(base, fileOverlay, &Overlay{}, CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := cfg.Shells[shellkind.CMD].Restrictions.BlockedCommands
	if len(got) == 0 {
		t.Error("expected default blockedCommands to survive when overlay omits the field")
	}
}

func TestResolve_CLILayerWinsOverFile(t *testing.T) {
	base := Default()
	fileOverlay := &Overlay{Shells: map[shellkind.Kind]*ShellOverlay{
		shellkind.CMD: {CommandTimeoutSeconds: intPtr(10)},
	}}
	cliOverlay, err := BuildCLIOverlay(CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cliOverlay.shell(shellkind.CMD).CommandTimeoutSeconds = intPtr(99)

	cfg, err := Resolve(base, fileOverlay, cliOverlay, CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.Shells[shellkind.CMD].Security.CommandTimeoutSeconds; got != 99 {
		t.Errorf("expected CLI layer (99) to win over file layer (10), got %d", got)
	}
}

func intPtr(i int) *int { return &i }

func TestResolve_YoloClearsDenyListsAndInjectionProtection(t *testing.T) {
	cfg, err := Resolve(Default(), &Overlay{}, &Overlay{}, CLIFlags{Yolo: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	shell := cfg.Shells[shellkind.CMD]
	if len(shell.Restrictions.BlockedCommands) != 0 {
		t.Error("expected yolo to clear blockedCommands")
	}
	if shell.Security.EnableInjectionProtection {
		t.Error("expected yolo to disable injection protection")
	}
}

func TestResolve_UnsafeAlsoDropsDirectoryRestriction(t *testing.T) {
	base := Default()
	base.Shells[shellkind.CMD].Security.RestrictWorkingDirectory = true
	base.Shells[shellkind.CMD].Paths.AllowedPaths = []string{"/work"}

	cfg, err := Resolve(base, &Overlay{}, &Overlay{}, CLIFlags{Unsafe: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Shells[shellkind.CMD].Security.RestrictWorkingDirectory {
		t.Error("expected unsafe to drop directory restriction")
	}
}

func TestResolve_YoloAndUnsafeConflict(t *testing.T) {
	_, err := Resolve(Default(), &Overlay{}, &Overlay{}, CLIFlags{Yolo: true, Unsafe: true})
	if err == nil {
		t.Fatal("expected ConflictingModes error")
	}
}

func TestResolve_BoundsViolationOnEmptyExecutable(t *testing.T) {
	base := Default()
	base.Shells[shellkind.CMD].Executable.Command = ""
	_, err := Resolve(base, &Overlay{}, &Overlay{}, CLIFlags{})
	if err == nil {
		t.Fatal("expected bounds violation for empty executable on enabled shell")
	}
}

func TestResolve_BoundsViolationOnTimeout(t *testing.T) {
	base := Default()
	base.Shells[shellkind.CMD].Security.CommandTimeoutSeconds = 9999
	_, err := Resolve(base, &Overlay{}, &Overlay{}, CLIFlags{})
	if err == nil {
		t.Fatal("expected bounds violation for out-of-range timeout")
	}
}

func TestResolve_WSLInheritsGlobalPaths(t *testing.T) {
	base := Default()
	base.Shells[shellkind.CMD].Enabled = true
	base.Shells[shellkind.CMD].Paths.AllowedPaths = []string{`C:\work`}
	base.Shells[shellkind.Bash].Enabled = true
	base.Shells[shellkind.Bash].WSL.InheritGlobalPaths = true

	cfg, err := Resolve(base, &Overlay{}, &Overlay{}, CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := cfg.Shells[shellkind.Bash].EffectiveAllowedPaths
	found := false
	for _, p := range got {
		if p == "/mnt/c/work" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected /mnt/c/work in effective allowed paths, got %v", got)
	}
}

func TestBuildCLIOverlay_ShellOnlyDisablesOthers(t *testing.T) {
	overlay, err := BuildCLIOverlay(CLIFlags{ShellOnly: shellkind.Bash})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Resolve(Default(), &Overlay{}, overlay, CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	enabled := cfg.EnabledShells()
	if len(enabled) != 1 {
		t.Fatalf("expected exactly 1 enabled shell, got %d", len(enabled))
	}
	if _, ok := enabled[shellkind.Bash]; !ok {
		t.Error("expected bash to be the only enabled shell")
	}
}

func TestBuildCLIOverlay_DenyCommandClearThenAdd(t *testing.T) {
	overlay, err := BuildCLIOverlay(CLIFlags{DenyCommand: []string{"bash=rm", "bash=", "bash=curl"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Resolve(Default(), &Overlay{}, overlay, CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := cfg.Shells[shellkind.Bash].Restrictions.BlockedCommands
	if len(got) != 1 || got[0] != "curl" {
		t.Errorf("expected clear-then-add to leave only [curl], got %v", got)
	}
}

func TestBuildCLIOverlay_UnknownShellRejected(t *testing.T) {
	_, err := BuildCLIOverlay(CLIFlags{DenyCommand: []string{"notashell=rm"}})
	if err == nil {
		t.Fatal("expected an error for an unknown shell name")
	}
}

func TestResolve_InitialDirAppliesToDefaultEnabledShell(t *testing.T) {
	cliOverlay, err := BuildCLIOverlay(CLIFlags{InitialDir: "/work"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Resolve(Default(), &Overlay{}, cliOverlay, CLIFlags{InitialDir: "/work"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.Shells[shellkind.CMD].Paths.InitialDir; got != "/work" {
		t.Errorf("expected --initial-dir to reach the default-enabled cmd shell, got %q", got)
	}
}

func TestResolve_InitialDirIgnoresDisabledShells(t *testing.T) {
	cfg, err := Resolve(Default(), &Overlay{}, &Overlay{}, CLIFlags{InitialDir: "/work"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.Shells[shellkind.Bash].Paths.InitialDir; got != "" {
		t.Errorf("expected disabled bash shell to be left alone, got %q", got)
	}
}

func TestLoadFileOverlay_MissingFileIsNotAnError(t *testing.T) {
	overlay, err := LoadFileOverlay("/nonexistent/path/to/config.json5")
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(overlay.Shells) != 0 {
		t.Error("expected an empty overlay for a missing file")
	}
}
