// Package validator applies shell-typed command, argument, operator and
// working-directory checks against a resolved shell configuration before
// the executor ever spawns a child process. Nothing here has side
// effects; every check is a pure function of its inputs.
package validator

import (
	"strings"

	"github.com/nextlevelbuilder/cli-mcp-server/internal/clierr"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/config"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/pathnorm"
	"github.com/nextlevelbuilder/cli-mcp-server/internal/shellkind"
)

// chainOperators are the operators that split one command string into
// independently-validated segments.
var chainOperators = []string{"&&", "||", ";", "|"}

// ValidateCommand runs the full length/operator/command/argument/path
// validation pipeline against cmd under cfg.
func ValidateCommand(cmd string, cfg *config.ResolvedShellConfig) *clierr.Error {
	if len(cmd) > cfg.Security.MaxCommandLength {
		return clierr.NewWithSuggestion(clierr.CodeCommandTooLong, "command exceeds maxCommandLength").
			WithDetails(map[string]any{"length": len(cmd), "max": cfg.Security.MaxCommandLength})
	}

	if cfg.Security.EnableInjectionProtection {
		if op, ok := findBlockedOperator(cmd, cfg.Kind, cfg.Restrictions.BlockedOperators); ok {
			return clierr.NewWithSuggestion(clierr.CodeBlockedOperator, "command contains a blocked operator: "+op).
				WithDetails(map[string]any{"operator": op})
		}
	}

	// Every segment of a chain is validated independently regardless of
	// whether chaining itself was permitted — step 2 already rejected any
	// chaining operator present in the shell's blocked-operator set when
	// injection protection is on; this loop covers the YOLO/unsafe case
	// and catches operators the operator chose not to block.
	for _, seg := range splitChain(cmd, cfg.Kind) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if err := validateSegment(seg, cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateSegment(seg string, cfg *config.ResolvedShellConfig) *clierr.Error {
	tokens, err := tokenize(seg, cfg.Kind)
	if err != nil || len(tokens) == 0 {
		return clierr.New(clierr.CodeInvalidPath, "could not parse command tokens")
	}

	name, full := normalizeCommandName(tokens[0], cfg.Kind)
	for _, blocked := range cfg.Restrictions.BlockedCommands {
		bName, bFull := normalizeCommandName(blocked, cfg.Kind)
		if name == bName || full == bFull {
			return clierr.NewWithSuggestion(clierr.CodeBlockedCommand, "command is blocked: "+name).
				WithDetails(map[string]any{"command": name})
		}
	}

	for _, tok := range tokens[1:] {
		key := tok
		if idx := strings.Index(tok, "="); idx >= 0 && strings.HasPrefix(tok, "-") {
			key = tok[:idx]
		}
		for _, blocked := range cfg.Restrictions.BlockedArguments {
			if argMatches(key, blocked, cfg.Kind) {
				return clierr.New(clierr.CodeBlockedArgument, "argument is blocked: "+key).
					WithDetails(map[string]any{"argument": key})
			}
		}
	}
	return nil
}

func argMatches(tok, blocked string, k shellkind.Kind) bool {
	if k.IsWindowsShell() {
		return strings.EqualFold(tok, blocked)
	}
	return tok == blocked
}

// normalizeCommandName derives the deny-list comparison form: basename,
// lowercased with a stripped .exe/.bat/.cmd suffix on Windows shells,
// case-preserved on Unix shells. It returns both the normalized basename
// and the normalized full original token, since blockedCommands entries
// may name either form.
func normalizeCommandName(tok string, k shellkind.Kind) (name, full string) {
	sep := "/"
	if k.IsWindowsShell() {
		sep = `\`
	}
	base := tok
	if i := strings.LastIndex(tok, sep); i >= 0 {
		base = tok[i+1:]
	}
	if k.IsWindowsShell() {
		base = strings.ToLower(base)
		tok = strings.ToLower(tok)
		for _, ext := range []string{".exe", ".bat", ".cmd"} {
			base = strings.TrimSuffix(base, ext)
			tok = strings.TrimSuffix(tok, ext)
		}
	}
	return base, tok
}

// findBlockedOperator scans cmd for the first blocked operator token that
// appears outside quoted substrings and outside an escaped position.
// Backtick is literal inside a Windows shell, an operator (command
// substitution) inside a Unix shell.
func findBlockedOperator(cmd string, k shellkind.Kind, blocked []string) (string, bool) {
	ops := blocked

	inSingle, inDouble := false, false
	for i := 0; i < len(cmd); i++ {
		c := cmd[i]

		if escapedAt(cmd, i, k) {
			continue // skip the escaped character itself
		}
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			continue
		case c == '"' && !inSingle:
			inDouble = !inDouble
			continue
		}
		if inSingle || inDouble {
			continue
		}
		for _, op := range ops {
			if op == "" {
				continue
			}
			if op == "`" && k.IsWindowsShell() {
				continue // literal character in cmd/powershell, not command substitution
			}
			if strings.HasPrefix(cmd[i:], op) {
				return op, true
			}
		}
	}
	return "", false
}

// escapedAt reports whether the character at i is escaped by the
// preceding character under k's convention: backslash for Unix shells,
// caret for cmd/PowerShell.
func escapedAt(cmd string, i int, k shellkind.Kind) bool {
	if i == 0 {
		return false
	}
	if k.IsWindowsShell() {
		return cmd[i-1] == '^' && i >= 1
	}
	return cmd[i-1] == '\\'
}

// splitChain splits cmd into logical segments on the shell's chain
// operators, respecting quoting the same way tokenize does.
func splitChain(cmd string, k shellkind.Kind) []string {
	var segs []string
	inSingle, inDouble := false, false
	start := 0
	i := 0
	for i < len(cmd) {
		c := cmd[i]
		if escapedAt(cmd, i, k) {
			i++
			continue
		}
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			i++
			continue
		case c == '"' && !inSingle:
			inDouble = !inDouble
			i++
			continue
		}
		if !inSingle && !inDouble {
			matched := ""
			for _, op := range chainOperators {
				if strings.HasPrefix(cmd[i:], op) {
					matched = op
					break
				}
			}
			if matched != "" {
				segs = append(segs, cmd[start:i])
				i += len(matched)
				start = i
				continue
			}
		}
		i++
	}
	segs = append(segs, cmd[start:])
	return segs
}

// tokenize splits a single command segment into its whitespace-delimited
// tokens, honoring the target shell's quoting rules: Windows shells treat
// "..." as a quoted span and '^' as escape; Unix shells (and gitbash,
// which follows the Unix rules) additionally honor '...' and backslash
// escapes.
func tokenize(seg string, k shellkind.Kind) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inSingle, inDouble := false, false
	haveToken := false

	flush := func() {
		if haveToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			haveToken = false
		}
	}

	for i := 0; i < len(seg); i++ {
		c := seg[i]
		if escapedAt(seg, i, k) && !inSingle {
			cur.WriteByte(c)
			haveToken = true
			continue
		}
		switch {
		case c == '\'' && !inDouble && !k.IsWindowsShell():
			inSingle = !inSingle
			haveToken = true
			continue
		case c == '"' && !inSingle:
			inDouble = !inDouble
			haveToken = true
			continue
		case (c == ' ' || c == '\t') && !inSingle && !inDouble:
			flush()
			continue
		default:
			cur.WriteByte(c)
			haveToken = true
		}
	}
	flush()
	return tokens, nil
}

// ValidateWorkingDirectory checks dir against cfg's directory
// restriction, when enabled.
func ValidateWorkingDirectory(dir string, cfg *config.ResolvedShellConfig) *clierr.Error {
	if !cfg.Security.RestrictWorkingDirectory {
		return nil
	}
	norm, err := pathnorm.NormalizeForShell(dir, cfg.Kind, wslMount(cfg))
	if err != nil {
		return clierr.New(clierr.CodeInvalidPath, err.Error())
	}
	if !isPathAllowedNormalized(norm, cfg) {
		return clierr.NewWithSuggestion(clierr.CodeWorkingDirectoryNotAllowed, "working directory is not under an allowed path").
			WithDetails(map[string]any{"dir": norm, "allowedPaths": cfg.EffectiveAllowedPaths})
	}
	return nil
}

// IsPathAllowed is the pure predicate shared by ValidateWorkingDirectory
// and the validate_directories tool.
func IsPathAllowed(dir string, cfg *config.ResolvedShellConfig) bool {
	norm, err := pathnorm.NormalizeForShell(dir, cfg.Kind, wslMount(cfg))
	if err != nil {
		return false
	}
	return isPathAllowedNormalized(norm, cfg)
}

func isPathAllowedNormalized(norm string, cfg *config.ResolvedShellConfig) bool {
	for _, allowed := range cfg.EffectiveAllowedPaths {
		allowedNorm, err := pathnorm.NormalizeForShell(allowed, cfg.Kind, wslMount(cfg))
		if err != nil {
			continue
		}
		if pathnorm.IsDescendant(norm, allowedNorm, cfg.Kind) {
			return true
		}
	}
	return false
}

func wslMount(cfg *config.ResolvedShellConfig) string {
	if cfg.WSL != nil && cfg.WSL.MountPoint != "" {
		return cfg.WSL.MountPoint
	}
	return ""
}
