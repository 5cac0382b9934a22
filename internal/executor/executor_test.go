package executor

import (
	"context"
	"strings"
	"testing"

	"github.com/nextlevelbuilder/cli-mcp-server/internal/config"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/logstore"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/shellkind"
)

func testShellCfg() *config.ResolvedShellConfig {
	return &config.ResolvedShellConfig{
		Kind:    shellkind.Bash,
		Enabled: true,
		Executable: config.Executable{
			Command:    "/bin/bash",
			ArgsPrefix: []string{"-c"},
		},
		Security: config.SecurityConfig{
			MaxCommandLength:          1000,
			CommandTimeoutSeconds:     5,
			EnableInjectionProtection: true,
			RestrictWorkingDirectory:  false,
		},
	}
}

func testLoggingCfg() config.LoggingConfig {
	return config.LoggingConfig{
		MaxOutputLines:      20,
		EnableTruncation:    true,
		MaxStoredLogs:       50,
		MaxLogSize:          1 << 20,
		MaxTotalStorageSize: 50 << 20,
	}
}

func TestExecute_ShellNotEnabled(t *testing.T) {
	cfg := testShellCfg()
	cfg.Enabled = false
	logs := logstore.New(testLoggingCfg(), "")

	_, err := Execute(context.Background(), cfg, testLoggingCfg(), logs, Request{Command: "echo hi", WorkingDir: "/tmp"})
	if err == nil || err.Code != "ShellNotEnabled" {
		t.Fatalf("expected ShellNotEnabled, got %v", err)
	}
}

func TestExecute_NoCurrentDirectory(t *testing.T) {
	cfg := testShellCfg()
	logs := logstore.New(testLoggingCfg(), "")

	_, err := Execute(context.Background(), cfg, testLoggingCfg(), logs, Request{Command: "echo hi"})
	if err == nil || err.Code != "NoCurrentDirectory" {
		t.Fatalf("expected NoCurrentDirectory, got %v", err)
	}
}

func TestExecute_ValidatorRejectionPassesThrough(t *testing.T) {
	cfg := testShellCfg()
	cfg.Restrictions.BlockedCommands = []string{"rm"}
	logs := logstore.New(testLoggingCfg(), "")

	_, err := Execute(context.Background(), cfg, testLoggingCfg(), logs, Request{Command: "rm -rf /", WorkingDir: "/tmp"})
	if err == nil || err.Code != "BlockedCommand" {
		t.Fatalf("expected BlockedCommand, got %v", err)
	}
}

func TestExecute_SuccessfulRunIsStoredAndReturned(t *testing.T) {
	cfg := testShellCfg()
	logs := logstore.New(testLoggingCfg(), "")

	result, err := Execute(context.Background(), cfg, testLoggingCfg(), logs, Request{Command: "echo hello", WorkingDir: "/tmp"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode)
	}
	if !strings.Contains(result.Text, "hello") {
		t.Errorf("expected output to contain %q, got %q", "hello", result.Text)
	}
	if result.ExecutionID == "" {
		t.Error("expected a non-empty execution id")
	}
	if _, ok := logs.Get(result.ExecutionID); !ok {
		t.Error("expected the run to be recorded in the log store")
	}
}

func TestExecute_NonZeroExitIsFlaggedAsError(t *testing.T) {
	cfg := testShellCfg()
	logs := logstore.New(testLoggingCfg(), "")

	result, err := Execute(context.Background(), cfg, testLoggingCfg(), logs, Request{Command: "exit 3", WorkingDir: "/tmp"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", result.ExitCode)
	}
	if !result.IsError {
		t.Error("expected IsError to be true for a non-zero exit code")
	}
}

func TestExecute_TimeoutKillsProcessAndReportsIt(t *testing.T) {
	cfg := testShellCfg()
	logs := logstore.New(testLoggingCfg(), "")

	result, err := Execute(context.Background(), cfg, testLoggingCfg(), logs, Request{
		Command:               "sleep 30",
		WorkingDir:            "/tmp",
		PerCallTimeoutSeconds: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected a timed-out run to be flagged as an error")
	}
	if !strings.Contains(result.Text, "timed out") {
		t.Errorf("expected timeout banner in output, got %q", result.Text)
	}
}

func TestExecute_TimeoutOutOfBounds(t *testing.T) {
	cfg := testShellCfg()
	logs := logstore.New(testLoggingCfg(), "")

	_, err := Execute(context.Background(), cfg, testLoggingCfg(), logs, Request{
		Command:               "echo hi",
		WorkingDir:            "/tmp",
		PerCallTimeoutSeconds: 9999,
	})
	if err == nil || err.Code != "TimeoutTooLarge" {
		t.Fatalf("expected TimeoutTooLarge, got %v", err)
	}
}

func TestExecute_OutputIsTruncatedPerMaxLines(t *testing.T) {
	cfg := testShellCfg()
	loggingCfg := testLoggingCfg()
	loggingCfg.MaxOutputLines = 2
	logs := logstore.New(loggingCfg, "")

	result, err := Execute(context.Background(), cfg, loggingCfg, logs, Request{
		Command:    "printf 'one\\ntwo\\nthree\\nfour\\n'",
		WorkingDir: "/tmp",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.WasTruncated {
		t.Error("expected output exceeding maxOutputLines to be truncated")
	}
	if result.ReturnedLines != 2 {
		t.Errorf("expected 2 returned lines, got %d", result.ReturnedLines)
	}
}

func TestExecute_TruncationDisabledReturnsFullOutput(t *testing.T) {
	cfg := testShellCfg()
	loggingCfg := testLoggingCfg()
	loggingCfg.MaxOutputLines = 2
	loggingCfg.EnableTruncation = false
	logs := logstore.New(loggingCfg, "")

	result, err := Execute(context.Background(), cfg, loggingCfg, logs, Request{
		Command:    "printf 'one\\ntwo\\nthree\\nfour\\n'",
		WorkingDir: "/tmp",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.WasTruncated {
		t.Error("expected WasTruncated=false when enableTruncation is off")
	}
	for _, want := range []string{"one", "two", "three", "four"} {
		if !strings.Contains(result.Text, want) {
			t.Errorf("expected full untruncated output to contain %q, got %q", want, result.Text)
		}
	}
}
