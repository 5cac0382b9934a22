package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nextlevelbuilder/cli-mcp-server/internal/clierr"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/executor"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/logquery"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/shellkind"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/validator"
)

// registerTools adds every tool this server exposes, honoring the
// dispatcher's dynamic-exposure rules:
// execute_command's shell enum tracks enabled shells, and
// validate_directories is only registered when some shell restricts its
// working directory.
func (d *Dispatcher) registerTools(s *server.MCPServer) {
	shells := d.enabledShellNames()

	s.AddTool(mcp.NewTool("execute_command",
		mcp.WithDescription("Run a command in one of the server's enabled shells and return its captured output."),
		mcp.WithString("shell", mcp.Required(), mcp.Description("Target shell"), mcp.Enum(shells...)),
		mcp.WithString("command", mcp.Required(), mcp.Description("Command line to execute")),
		mcp.WithString("workingDir", mcp.Description("Working directory override; defaults to the server's current directory")),
		mcp.WithNumber("maxOutputLines", mcp.Description("Override the configured output line cap for this call")),
		mcp.WithNumber("timeout", mcp.Description("Per-call timeout in seconds, 1-3600")),
	), d.handleExecuteCommand)

	s.AddTool(mcp.NewTool("get_current_directory",
		mcp.WithDescription("Return the server's current working directory."),
	), d.handleGetCurrentDirectory)

	s.AddTool(mcp.NewTool("set_current_directory",
		mcp.WithDescription("Set the server's current working directory. Must lie under an allowed path for at least one enabled shell."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path to switch to")),
	), d.handleSetCurrentDirectory)

	s.AddTool(mcp.NewTool("get_config",
		mcp.WithDescription("Return the server configuration, with executables and disabled shells removed."),
	), d.handleGetConfig)

	s.AddTool(mcp.NewTool("get_command_output",
		mcp.WithDescription("Fetch a stored command's output by execution id, optionally sliced by line range or regex search."),
		mcp.WithString("executionId", mcp.Required()),
		mcp.WithNumber("startLine", mcp.Description("1-based; negative counts from the end")),
		mcp.WithNumber("endLine", mcp.Description("1-based; negative counts from the end")),
		mcp.WithString("search", mcp.Description("Regex pattern; when present, delegates to the search processor instead of the range processor")),
		mcp.WithNumber("maxLines", mcp.Description("Context lines around a search match; ignored for range requests")),
	), d.handleGetCommandOutput)

	s.AddTool(mcp.NewTool("check_command",
		mcp.WithDescription("Validate a command against a shell's policy without running it."),
		mcp.WithString("shell", mcp.Required(), mcp.Enum(shells...)),
		mcp.WithString("command", mcp.Required()),
	), d.handleCheckCommand)

	s.AddTool(mcp.NewTool("list_shells",
		mcp.WithDescription("List the enabled shells and their display names."),
	), d.handleListShells)

	if d.anyShellRestrictsDirectory() {
		s.AddTool(mcp.NewTool("validate_directories",
			mcp.WithDescription("Check a list of directories against the allowed-path policy."),
			mcp.WithArray("directories", mcp.Required(), mcp.Description("Directories to check"), mcp.Items(map[string]any{"type": "string"})),
			mcp.WithString("shell", mcp.Description("Restrict the check to one shell's allowed set; defaults to checking against every restricted shell")),
		), d.handleValidateDirectories)
	}
}

func (d *Dispatcher) handleExecuteCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	shellName, err := request.RequireString("shell")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	command, err := request.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	workingDir := request.GetString("workingDir", "")
	if workingDir == "" {
		workingDir = d.state.CurrentDir()
	}

	shellCfg, ok := d.state.Shell(shellkind.Kind(shellName))
	if !ok {
		return toolError(clierr.New(clierr.CodeShellNotEnabled, "shell is not enabled: "+shellName)), nil
	}

	result, cerr := executor.Execute(ctx, shellCfg, d.state.Logging, d.state.Logs, executor.Request{
		Command:               command,
		WorkingDir:            workingDir,
		PerCallTimeoutSeconds: request.GetInt("timeout", 0),
		PerCallMaxOutputLines: request.GetInt("maxOutputLines", 0),
	})
	if cerr != nil {
		return toolError(cerr), nil
	}
	return executeResult(result), nil
}

func (d *Dispatcher) handleGetCurrentDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir := d.state.CurrentDir()
	if dir == "" {
		return mcp.NewToolResultText("no current directory set; pass workingDir explicitly or call set_current_directory"), nil
	}
	return mcp.NewToolResultText(dir), nil
}

func (d *Dispatcher) handleSetCurrentDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	allowed := false
	for _, cfg := range d.state.Shells() {
		if cfg.Enabled && validator.IsPathAllowed(path, cfg) {
			allowed = true
			break
		}
	}
	if !allowed {
		return toolError(clierr.NewWithSuggestion(clierr.CodeWorkingDirectoryNotAllowed,
			"path is not under any enabled shell's allowed set: "+path)), nil
	}

	d.state.SetCurrentDir(path)
	return mcp.NewToolResultText("current directory set to " + path), nil
}

func (d *Dispatcher) handleGetConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(d.sanitizedConfig())
}

func (d *Dispatcher) handleListShells(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type shellInfo struct {
		Kind        string `json:"kind"`
		DisplayName string `json:"displayName"`
	}
	var out []shellInfo
	for k, cfg := range d.state.Shells() {
		if cfg.Enabled {
			out = append(out, shellInfo{Kind: string(k), DisplayName: cfg.DisplayName})
		}
	}
	return jsonResult(out)
}

func (d *Dispatcher) handleCheckCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	shellName, err := request.RequireString("shell")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	command, err := request.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	shellCfg, ok := d.state.Shell(shellkind.Kind(shellName))
	if !ok {
		return toolError(clierr.New(clierr.CodeShellNotEnabled, "shell is not enabled: "+shellName)), nil
	}
	if cerr := validator.ValidateCommand(command, shellCfg); cerr != nil {
		return toolError(cerr), nil
	}
	return mcp.NewToolResultText("command would be accepted"), nil
}

func (d *Dispatcher) handleValidateDirectories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dirs := request.GetStringSlice("directories", nil)
	if len(dirs) == 0 {
		return toolError(clierr.New(clierr.CodeInvalidPath, "directories must be a non-empty array")), nil
	}
	shellFilter := request.GetString("shell", "")

	type dirResult struct {
		Directory string `json:"directory"`
		Allowed   bool   `json:"allowed"`
	}
	results := make([]dirResult, 0, len(dirs))
	for _, dir := range dirs {
		allowed := false
		for k, cfg := range d.state.Shells() {
			if !cfg.Enabled || !cfg.Security.RestrictWorkingDirectory {
				continue
			}
			if shellFilter != "" && string(k) != shellFilter {
				continue
			}
			if validator.IsPathAllowed(dir, cfg) {
				allowed = true
				break
			}
		}
		results = append(results, dirResult{Directory: dir, Allowed: allowed})
	}
	return jsonResult(results)
}

func (d *Dispatcher) handleGetCommandOutput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("executionId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entry, ok := d.state.Logs.Get(id)
	if !ok {
		return toolError(clierr.NewWithSuggestion(clierr.CodeLogNotFound, "no stored execution with id "+id)), nil
	}

	if pattern := request.GetString("search", ""); pattern != "" {
		contextLines := request.GetInt("maxLines", 0)
		text, cerr := logquery.Search(entry.CombinedOutput, pattern, contextLines, 1, false, false)
		if cerr != nil {
			return toolError(cerr), nil
		}
		return mcp.NewToolResultText(text), nil
	}

	startLine := request.GetInt("startLine", 0)
	endLine := request.GetInt("endLine", 0)
	if startLine == 0 && endLine == 0 {
		return mcp.NewToolResultText(entry.CombinedOutput), nil
	}
	if startLine == 0 {
		startLine = 1
	}
	if endLine == 0 {
		endLine = -1
	}
	text, cerr := logquery.Range(entry.CombinedOutput, startLine, endLine, false)
	if cerr != nil {
		return toolError(cerr), nil
	}
	return mcp.NewToolResultText(text), nil
}
