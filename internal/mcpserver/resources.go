package mcpserver

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nextlevelbuilder/cli-mcp-server/internal/clierr"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/logquery"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/logstore"
)

const logsCommandsPrefix = "cli://logs/commands/"

// registerResources adds the cli:// resources, gated on the server-wide
// logging policy's enableLogResources setting. Fixed-URI
// resources (config, logs/list, logs/recent) are plain Resources;
// per-execution resources are ResourceTemplates whose {id}/subpath the
// handler parses out of the request URI itself.
func (d *Dispatcher) registerResources(s *server.MCPServer) {
	if !d.state.Logging.EnableLogResources {
		return
	}

	s.AddResource(mcp.NewResource("cli://config", "Server configuration",
		mcp.WithResourceDescription("Sanitized server configuration"),
		mcp.WithMIMEType("application/json"),
	), d.readConfigResource)

	s.AddResource(mcp.NewResource("cli://logs/list", "Stored execution log index",
		mcp.WithResourceDescription("All stored entries as metadata, with aggregate totals"),
		mcp.WithMIMEType("application/json"),
	), d.readLogsListResource)

	s.AddResourceTemplate(mcp.NewResourceTemplate("cli://logs/recent{?n,shell}", "Most recent executions",
		mcp.WithTemplateDescription("The K most recent entries, optionally filtered by shell"),
		mcp.WithTemplateMIMEType("application/json"),
	), d.readLogsRecentResource)

	s.AddResourceTemplate(mcp.NewResourceTemplate(logsCommandsPrefix+"{id}", "Full command output",
		mcp.WithTemplateDescription("Full combinedOutput for one stored execution"),
		mcp.WithTemplateMIMEType("text/plain"),
	), d.readLogCommandResource)

	s.AddResourceTemplate(mcp.NewResourceTemplate(logsCommandsPrefix+"{id}/range{?start,end,lineNumbers}", "Command output, by line range",
		mcp.WithTemplateDescription("A 1-based line range of one stored execution's output"),
		mcp.WithTemplateMIMEType("text/plain"),
	), d.readLogRangeResource)

	s.AddResourceTemplate(mcp.NewResourceTemplate(logsCommandsPrefix+"{id}/search{?q,context,occurrence,caseInsensitive,lineNumbers}", "Command output, by regex search",
		mcp.WithTemplateDescription("A regex match window of one stored execution's output"),
		mcp.WithTemplateMIMEType("text/plain"),
	), d.readLogSearchResource)
}

func textResource(uri, mimeType, text string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: mimeType, Text: text},
	}
}

func (d *Dispatcher) readConfigResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	payload, err := jsonMarshal(d.sanitizedConfig())
	if err != nil {
		return nil, err
	}
	return textResource(request.Params.URI, "application/json", payload), nil
}

func (d *Dispatcher) readLogsListResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries := d.state.Logs.List(logstore.Filter{})
	stats := d.state.Logs.StatsSnapshot()
	payload, err := jsonMarshal(map[string]any{
		"entries":    summarize(entries),
		"totalCount": stats.Count,
		"totalSize":  stats.TotalSize,
	})
	if err != nil {
		return nil, err
	}
	return textResource(request.Params.URI, "application/json", payload), nil
}

func (d *Dispatcher) readLogsRecentResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	q := queryOf(request.Params.URI)
	n := clampInt(intOr(q.Get("n"), 5), 1, 100)
	shell := q.Get("shell")

	entries := d.state.Logs.List(logstore.Filter{ShellName: shell})
	if len(entries) > n {
		entries = entries[:n]
	}
	payload, err := jsonMarshal(summarize(entries))
	if err != nil {
		return nil, err
	}
	return textResource(request.Params.URI, "application/json", payload), nil
}

func (d *Dispatcher) readLogCommandResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, _, ok := parseLogCommandURI(request.Params.URI)
	if !ok {
		return nil, clierr.New(clierr.CodeLogNotFound, "malformed cli://logs/commands/ URI")
	}
	entry, found := d.state.Logs.Get(id)
	if !found {
		return nil, clierr.NewWithSuggestion(clierr.CodeLogNotFound, "no stored execution with id "+id)
	}
	return textResource(request.Params.URI, "text/plain", entry.CombinedOutput), nil
}

func (d *Dispatcher) readLogRangeResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, suffix, ok := parseLogCommandURI(request.Params.URI)
	if !ok || suffix != "range" {
		return nil, clierr.New(clierr.CodeInvalidRange, "malformed range URI")
	}
	entry, found := d.state.Logs.Get(id)
	if !found {
		return nil, clierr.NewWithSuggestion(clierr.CodeLogNotFound, "no stored execution with id "+id)
	}

	q := queryOf(request.Params.URI)
	start, serr := strconv.Atoi(q.Get("start"))
	if serr != nil {
		return nil, clierr.New(clierr.CodeInvalidRange, "start is required and must be an integer")
	}
	end, eerr := strconv.Atoi(q.Get("end"))
	if eerr != nil {
		return nil, clierr.New(clierr.CodeInvalidRange, "end is required and must be an integer")
	}
	lineNumbers := q.Get("lineNumbers") == "true"

	text, cerr := logquery.Range(entry.CombinedOutput, start, end, lineNumbers)
	if cerr != nil {
		return nil, cerr
	}
	return textResource(request.Params.URI, "text/plain", text), nil
}

func (d *Dispatcher) readLogSearchResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	id, suffix, ok := parseLogCommandURI(request.Params.URI)
	if !ok || suffix != "search" {
		return nil, clierr.New(clierr.CodeInvalidSearch, "malformed search URI")
	}
	entry, found := d.state.Logs.Get(id)
	if !found {
		return nil, clierr.NewWithSuggestion(clierr.CodeLogNotFound, "no stored execution with id "+id)
	}

	q := queryOf(request.Params.URI)
	pattern := q.Get("q")
	if pattern == "" {
		return nil, clierr.New(clierr.CodeInvalidSearch, "q is required")
	}
	contextLines := clampInt(intOr(q.Get("context"), 0), 0, 20)
	occurrence := intOr(q.Get("occurrence"), 1)
	caseInsensitive := q.Get("caseInsensitive") == "true"
	lineNumbers := q.Get("lineNumbers") == "true"

	text, cerr := logquery.Search(entry.CombinedOutput, pattern, contextLines, occurrence, caseInsensitive, lineNumbers)
	if cerr != nil {
		return nil, cerr
	}
	return textResource(request.Params.URI, "text/plain", text), nil
}

// parseLogCommandURI splits "cli://logs/commands/{id}[/range|/search][?...]"
// into its id and optional subpath segment.
func parseLogCommandURI(uri string) (id, suffix string, ok bool) {
	if !strings.HasPrefix(uri, logsCommandsPrefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(uri, logsCommandsPrefix)
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest = rest[:i]
	}
	parts := strings.SplitN(rest, "/", 2)
	if parts[0] == "" {
		return "", "", false
	}
	if len(parts) == 2 {
		return parts[0], parts[1], true
	}
	return parts[0], "", true
}

func queryOf(uri string) url.Values {
	if i := strings.IndexByte(uri, '?'); i >= 0 {
		v, err := url.ParseQuery(uri[i+1:])
		if err == nil {
			return v
		}
	}
	return url.Values{}
}

func intOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func summarize(entries []*logstore.Entry) []map[string]any {
	out := make([]map[string]any, len(entries))
	for i, e := range entries {
		out[i] = map[string]any{
			"id":               e.ID,
			"timestamp":        e.Timestamp,
			"shellName":        e.ShellName,
			"command":          e.Command,
			"workingDirectory": e.WorkingDirectory,
			"exitCode":         e.ExitCode,
			"totalLines":       e.TotalLines,
			"wasTruncated":     e.WasTruncated,
			"sizeBytes":        e.SizeBytes,
		}
	}
	return out
}
