package mcpserver

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nextlevelbuilder/cli-mcp-server/internal/clierr"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/executor"
)

// toolError renders a clierr.Error as a CallToolResult with isError set.
// The message is the structured error itself (code/message/details/
// suggestion) marshaled as JSON so a host can act on the code, not just
// display the message.
func toolError(e *clierr.Error) *mcp.CallToolResult {
	payload, err := json.Marshal(e)
	if err != nil {
		return mcp.NewToolResultError(e.Error())
	}
	return mcp.NewToolResultError(string(payload))
}

// executeResult renders an execution outcome: the (possibly truncated)
// output text as the primary content block, plus a JSON metadata block
// carrying exitCode/shell/workingDirectory/executionId/totalLines/
// returnedLines/wasTruncated.
func executeResult(r *executor.Result) *mcp.CallToolResult {
	meta, _ := json.Marshal(map[string]any{
		"exitCode":         r.ExitCode,
		"shell":            r.Shell,
		"workingDirectory": r.WorkingDirectory,
		"executionId":      r.ExecutionID,
		"totalLines":       r.TotalLines,
		"returnedLines":    r.ReturnedLines,
		"wasTruncated":     r.WasTruncated,
	})
	out := mcp.NewToolResultText(r.Text)
	out.IsError = r.IsError
	out.Content = append(out.Content, mcp.TextContent{Type: "text", Text: string(meta)})
	return out
}

// jsonResult renders v as a single JSON text content block, used by the
// tools that return structured data rather than raw command output.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	payload, err := jsonMarshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(payload), nil
}

// jsonMarshal is jsonResult's resource-side counterpart: resource
// handlers return a string body, not a CallToolResult.
func jsonMarshal(v any) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
