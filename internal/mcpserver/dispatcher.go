// Package mcpserver wires the resolved server state to an MCP server:
// tool and resource definitions, schema-level argument checks, and
// translation of clierr.Error into the MCP wire error shape. It is the
// only package that imports mark3labs/mcp-go's server-side API.
package mcpserver

import (
	"sort"

	"github.com/mark3labs/mcp-go/server"

	"github.com/nextlevelbuilder/cli-mcp-server/internal/config"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/state"
)

// Dispatcher holds the dependencies every tool/resource handler needs.
// It has no state of its own beyond what ServerState already owns.
type Dispatcher struct {
	state *state.ServerState
}

// New builds an MCP server with every tool and resource wired against
// st, ready to be handed to server.ServeStdio.
func New(st *state.ServerState, serverName, serverVersion string) *server.MCPServer {
	d := &Dispatcher{state: st}

	s := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
	)

	d.registerTools(s)
	d.registerResources(s)

	return s
}

// enabledShellNames returns the enabled shells' kind strings in a stable
// order, used for the dynamic "shell" enum of execute_command and
// check_command.
func (d *Dispatcher) enabledShellNames() []string {
	shells := d.state.Shells()
	names := make([]string, 0, len(shells))
	for k, cfg := range shells {
		if cfg.Enabled {
			names = append(names, string(k))
		}
	}
	sort.Strings(names)
	return names
}

// anyShellRestrictsDirectory reports whether at least one enabled shell
// has restrictWorkingDirectory=true, gating validate_directories'
// registration per the dispatcher's dynamic-exposure rule.
func (d *Dispatcher) anyShellRestrictsDirectory() bool {
	for _, cfg := range d.state.Shells() {
		if cfg.Enabled && cfg.Security.RestrictWorkingDirectory {
			return true
		}
	}
	return false
}

// sanitizedConfig assembles the current shell map and logging policy
// into the shape get_config / cli://config returns.
func (d *Dispatcher) sanitizedConfig() map[string]any {
	return config.Sanitized(&config.Config{
		Shells:  d.state.Shells(),
		Logging: d.state.Logging,
	})
}
