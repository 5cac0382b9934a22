// Package executor spawns the shell-native child process for a
// validated command, enforces its timeout by killing the whole process
// tree, captures its output, and hands the result to the log store and
// truncator. Platform-specific process-group teardown lives in
// exec_unix.go / exec_windows.go.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/nextlevelbuilder/cli-mcp-server/internal/clierr"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/config"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/logstore"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/pathnorm"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/truncate"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/validator"
)

// gracePeriod is how long SIGTERM is given to work before SIGKILL.
const gracePeriod = 2 * time.Second

// Request is one execute_command invocation, already past the
// dispatcher's schema-level argument checks.
type Request struct {
	Command               string
	WorkingDir            string
	PerCallTimeoutSeconds int // 0 means "use the shell's default"
	PerCallMaxOutputLines int // 0 means "use LoggingConfig.maxOutputLines"
}

// Result is what the dispatcher returns to the caller for execute_command.
type Result struct {
	Text             string
	ExitCode         int
	Shell            string
	WorkingDirectory string
	ExecutionID      string
	TotalLines       int
	ReturnedLines    int
	WasTruncated     bool
	IsError          bool
}

// Execute runs req against shellCfg, storing the outcome in logs and
// truncating the returned text per loggingCfg.MaxOutputLines (or the
// caller's override).
func Execute(ctx context.Context, shellCfg *config.ResolvedShellConfig, loggingCfg config.LoggingConfig, logs *logstore.Store, req Request) (*Result, *clierr.Error) {
	if !shellCfg.Enabled {
		return nil, clierr.New(clierr.CodeShellNotEnabled, "shell is not enabled: "+string(shellCfg.Kind))
	}

	if req.WorkingDir == "" {
		return nil, clierr.New(clierr.CodeNoCurrentDirectory, "no working directory: pass workingDir or set_current_directory first")
	}

	if err := validator.ValidateCommand(req.Command, shellCfg); err != nil {
		return nil, err
	}
	if err := validator.ValidateWorkingDirectory(req.WorkingDir, shellCfg); err != nil {
		return nil, err
	}

	timeoutSeconds := shellCfg.Security.CommandTimeoutSeconds
	if req.PerCallTimeoutSeconds != 0 {
		timeoutSeconds = req.PerCallTimeoutSeconds
	}
	if timeoutSeconds < 1 {
		return nil, clierr.New(clierr.CodeTimeoutTooSmall, "timeout must be in [1, 3600] seconds")
	}
	if timeoutSeconds > 3600 {
		return nil, clierr.New(clierr.CodeTimeoutTooLarge, "timeout must be in [1, 3600] seconds")
	}

	maxOutputLines := loggingCfg.MaxOutputLines
	if req.PerCallMaxOutputLines != 0 {
		maxOutputLines = req.PerCallMaxOutputLines
	}

	nativeDir, err := nativeWorkingDir(req.WorkingDir, shellCfg)
	if err != nil {
		return nil, clierr.New(clierr.CodeInvalidPath, err.Error())
	}

	argv := assembleArgv(shellCfg, req.Command)
	slog.Debug("exec.command.start", "shell", shellCfg.Kind, "dir", nativeDir)

	stdout, stderr, exitCode, timedOut := run(ctx, shellCfg.Executable.Command, argv, nativeDir, timeoutSeconds)

	combined := stdout
	if stderr != "" {
		combined = stdout + "\n" + stderr
	}

	id := logs.StoreEntry(string(shellCfg.Kind), req.Command, req.WorkingDir, stdout, stderr, exitCode)

	var trunc truncate.Result
	if loggingCfg.EnableTruncation {
		trunc = truncate.Truncate(combined, maxOutputLines, id)
	} else {
		lines := strings.Count(combined, "\n") + 1
		trunc = truncate.Result{Text: combined, WasTruncated: false, TotalLines: lines, ReturnedLines: lines}
	}

	text := trunc.Text
	if timedOut {
		banner := fmt.Sprintf("Command timed out after %ds", timeoutSeconds)
		text = banner + "\n\n" + text
		slog.Warn("exec.command.timeout", "shell", shellCfg.Kind, "id", id)
	}

	return &Result{
		Text:             text,
		ExitCode:         exitCode,
		Shell:            string(shellCfg.Kind),
		WorkingDirectory: req.WorkingDir,
		ExecutionID:      id,
		TotalLines:       trunc.TotalLines,
		ReturnedLines:    trunc.ReturnedLines,
		WasTruncated:     trunc.WasTruncated,
		IsError:          exitCode != 0 || timedOut,
	}, nil
}

// assembleArgv builds the spawn argument list: the configured fixed
// prefix followed by the command as a single string argument, for every
// shell kind (cmd, powershell, gitbash, bash, and wsl.exe -e).
func assembleArgv(shellCfg *config.ResolvedShellConfig, command string) []string {
	argv := make([]string, 0, len(shellCfg.Executable.ArgsPrefix)+1)
	argv = append(argv, shellCfg.Executable.ArgsPrefix...)
	argv = append(argv, command)
	return argv
}

// nativeWorkingDir converts dir to the form the child process expects:
// POSIX for WSL/bash (via the shell's mount point), Windows form
// otherwise (translating a gitbash-style /c/... input first).
func nativeWorkingDir(dir string, shellCfg *config.ResolvedShellConfig) (string, error) {
	mount := ""
	if shellCfg.WSL != nil {
		mount = shellCfg.WSL.MountPoint
	}
	if shellCfg.Kind.IsWslShell() && len(dir) >= 2 && dir[1] == ':' {
		return pathnorm.ConvertWindowsToWslMount(dir, mount)
	}
	norm, err := pathnorm.NormalizeForShell(dir, shellCfg.Kind, mount)
	if err != nil {
		return "", err
	}
	if shellCfg.Kind.IsUnixShell() && !shellCfg.Kind.IsWslShell() {
		// gitbash: NormalizeForShell yields /c/..., the spawn cwd needs C:\...
		return pathnorm.ConvertWslMountToWindows(norm, "/")
	}
	return norm, nil
}

// run spawns command+argv with cwd as its working directory, capturing
// stdout/stderr separately, and enforces timeoutSeconds by killing the
// process tree. It always returns whatever output was captured, even on
// timeout.
func run(ctx context.Context, command string, argv []string, cwd string, timeoutSeconds int) (stdout, stderr string, exitCode int, timedOut bool) {
	runCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
	defer cancel()

	cmd := exec.Command(command, argv...)
	cmd.Dir = cwd
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		errBuf.WriteString(err.Error())
		return outBuf.String(), errBuf.String(), -1, false
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return outBuf.String(), errBuf.String(), exitCodeOf(err), false
	case <-runCtx.Done():
		terminateTree(cmd, done, gracePeriod)
		return outBuf.String(), errBuf.String(), -1, true
	}
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
