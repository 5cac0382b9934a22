package config

import (
	"fmt"
	"os"

	"github.com/titanous/json5"

	"github.com/nextlevelbuilder/cli-mcp-server/internal/shellkind"
)

// rawSecurity, rawRestrictions, rawPaths, and rawWSL mirror ShellOverlay's
// fields grouped the way a hand-written config file nests them, since an
// operator thinks in terms of "security", "restrictions", "paths" blocks
// even though the merge engine itself treats every field independently.
type rawSecurity struct {
	MaxCommandLength          *int  `json:"maxCommandLength,omitempty"`
	CommandTimeoutSeconds     *int  `json:"commandTimeoutSeconds,omitempty"`
	EnableInjectionProtection *bool `json:"enableInjectionProtection,omitempty"`
	RestrictWorkingDirectory  *bool `json:"restrictWorkingDirectory,omitempty"`
}

type rawRestrictions struct {
	BlockedCommands  *[]string `json:"blockedCommands,omitempty"`
	BlockedArguments *[]string `json:"blockedArguments,omitempty"`
	BlockedOperators *[]string `json:"blockedOperators,omitempty"`
}

type rawPaths struct {
	AllowedPaths *[]string `json:"allowedPaths,omitempty"`
	InitialDir   *string   `json:"initialDir,omitempty"`
}

type rawWSL struct {
	MountPoint         *string `json:"mountPoint,omitempty"`
	InheritGlobalPaths *bool   `json:"inheritGlobalPaths,omitempty"`
}

type rawShell struct {
	Enabled      *bool            `json:"enabled,omitempty"`
	Executable   *Executable      `json:"executable,omitempty"`
	Security     *rawSecurity     `json:"security,omitempty"`
	Restrictions *rawRestrictions `json:"restrictions,omitempty"`
	Paths        *rawPaths        `json:"paths,omitempty"`
	WSL          *rawWSL          `json:"wslConfig,omitempty"`
}

// fileDocument is the JSON5 config file's shape.
type fileDocument struct {
	Shells  map[shellkind.Kind]rawShell `json:"shells"`
	Logging LoggingOverlay              `json:"logging"`
}

func (r rawShell) toOverlay() *ShellOverlay {
	o := &ShellOverlay{Enabled: r.Enabled, Executable: r.Executable}
	if r.Security != nil {
		o.MaxCommandLength = r.Security.MaxCommandLength
		o.CommandTimeoutSeconds = r.Security.CommandTimeoutSeconds
		o.EnableInjectionProtection = r.Security.EnableInjectionProtection
		o.RestrictWorkingDirectory = r.Security.RestrictWorkingDirectory
	}
	if r.Restrictions != nil {
		o.BlockedCommands = r.Restrictions.BlockedCommands
		o.BlockedArguments = r.Restrictions.BlockedArguments
		o.BlockedOperators = r.Restrictions.BlockedOperators
	}
	if r.Paths != nil {
		o.AllowedPaths = r.Paths.AllowedPaths
		o.InitialDir = r.Paths.InitialDir
	}
	if r.WSL != nil {
		o.WSLMountPoint = r.WSL.MountPoint
		o.WSLInheritGlobalPaths = r.WSL.InheritGlobalPaths
	}
	return o
}

// LoadFileOverlay reads and parses a JSON5 config file at path into an
// Overlay layer. A missing file is not an error — it yields an empty
// overlay, so callers always fall back to in-code defaults.
func LoadFileOverlay(path string) (*Overlay, error) {
	if path == "" {
		return &Overlay{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Overlay{}, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var doc fileDocument
	if err := json5.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	overlay := &Overlay{Shells: make(map[shellkind.Kind]*ShellOverlay, len(doc.Shells)), Logging: doc.Logging}
	for k, raw := range doc.Shells {
		if !shellkind.Valid(k) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownShell, k)
		}
		overlay.Shells[k] = raw.toOverlay()
	}
	return overlay, nil
}
