// Package pathnorm converts paths between the Windows, POSIX, WSL-mount,
// and gitbash-mixed conventions a target shell expects. Decisions here
// are driven entirely by the shell kind, never by the host OS running
// this server — the host's path library is never asked to make a
// decision about what the child shell will see.
package pathnorm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/cli-mcp-server/internal/shellkind"
)

// ErrInvalidPath is returned when a path is empty, cannot be parsed
// under the target shell's conventions, or escapes its own base via an
// embedded ".." after normalization.
var ErrInvalidPath = errors.New("invalid path")

const defaultMountPoint = "/mnt/"

// NormalizeForShell returns path in the canonical form k expects.
func NormalizeForShell(path string, k shellkind.Kind, wslMount string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if wslMount == "" {
		wslMount = defaultMountPoint
	}

	switch k.PathFormat() {
	case shellkind.PathWindows:
		return normalizeWindows(path)
	case shellkind.PathPOSIX:
		return normalizePosix(path, wslMount)
	case shellkind.PathMixed:
		return normalizeGitbash(path, wslMount)
	default:
		return "", fmt.Errorf("%w: unknown shell kind %q", ErrInvalidPath, k)
	}
}

// normalizeWindows collapses mixed separators to '\', upper-cases the
// drive letter, and strips trailing separators except at a drive root.
func normalizeWindows(path string) (string, error) {
	p := strings.ReplaceAll(path, "/", `\`)

	// gitbash-style /c/foo or /c foo passed to a Windows shell: convert first.
	if strings.HasPrefix(p, `\`) && len(p) >= 3 && isDriveLetter(p[1]) && (len(p) == 2 || p[2] == '\\') {
		p = strings.ToUpper(p[1:2]) + ":" + p[2:]
	}

	if len(p) < 3 || p[1] != ':' || !isDriveLetter(p[0]) || p[2] != '\\' {
		return "", fmt.Errorf("%w: %q is not an absolute Windows path", ErrInvalidPath, path)
	}
	p = strings.ToUpper(p[:1]) + p[1:]

	segs, err := splitClean(p[3:], `\`)
	if err != nil {
		return "", err
	}
	root := p[:3] // "C:\"
	if len(segs) == 0 {
		return root, nil
	}
	return root + strings.Join(segs, `\`), nil
}

// normalizePosix collapses repeated slashes and resolves "." / ".."
// lexically (no filesystem access). Recognizes /<mount>/<letter>/...
// as a Windows-drive proxy but returns it unchanged — callers that need
// the Windows form call ConvertWslMountToWindows explicitly.
func normalizePosix(path, mount string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("%w: %q is not an absolute POSIX path", ErrInvalidPath, path)
	}
	segs, err := splitClean(path, "/")
	if err != nil {
		return "", err
	}
	if len(segs) == 0 {
		return "/", nil
	}
	return "/" + strings.Join(segs, "/"), nil
}

// normalizeGitbash accepts either "C:\path" or "/c/path" and returns the
// input re-expressed in its own native form (POSIX-leaning, since
// gitbash's argv/cwd plumbing is POSIX underneath). Callers needing the
// opposite form use ConvertWindowsToWslMount / its inverse directly.
func normalizeGitbash(path, mount string) (string, error) {
	if len(path) >= 2 && isDriveLetter(path[0]) && path[1] == ':' {
		return ConvertWindowsToWslMount(path, "/")
	}
	if strings.HasPrefix(path, "/") {
		return normalizePosix(path, mount)
	}
	return "", fmt.Errorf("%w: %q is neither a Windows nor /c-style path", ErrInvalidPath, path)
}

// ConvertWindowsToWslMount converts "C:\foo\bar" to "/mnt/c/foo/bar"
// (or, with mount="/", to gitbash's "/c/foo/bar").
func ConvertWindowsToWslMount(winPath, mount string) (string, error) {
	if mount == "" {
		mount = defaultMountPoint
	}
	norm, err := normalizeWindows(winPath)
	if err != nil {
		return "", err
	}
	drive := strings.ToLower(norm[:1])
	rest := strings.ReplaceAll(norm[3:], `\`, "/")
	base := strings.TrimSuffix(mount, "/")
	if rest == "" {
		return base + "/" + drive, nil
	}
	return base + "/" + drive + "/" + rest, nil
}

// ConvertWslMountToWindows is the inverse of ConvertWindowsToWslMount: it
// converts "/mnt/c/foo/bar" (or "/c/foo/bar" when mount="/") back to
// "C:\foo\bar".
func ConvertWslMountToWindows(posixPath, mount string) (string, error) {
	if mount == "" {
		mount = defaultMountPoint
	}
	base := strings.TrimSuffix(mount, "/")
	var rest string
	switch {
	case base == "" || base == "/":
		rest = strings.TrimPrefix(posixPath, "/")
	case strings.HasPrefix(posixPath, base+"/"):
		rest = strings.TrimPrefix(posixPath, base+"/")
	default:
		return "", fmt.Errorf("%w: %q is not under mount %q", ErrInvalidPath, posixPath, mount)
	}
	if rest == "" {
		return "", fmt.Errorf("%w: %q has no drive segment", ErrInvalidPath, posixPath)
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts[0]) != 1 || !isDriveLetter(parts[0][0]) {
		return "", fmt.Errorf("%w: %q has no drive segment", ErrInvalidPath, posixPath)
	}
	drive := strings.ToUpper(parts[0])
	tail := ""
	if len(parts) == 2 && parts[1] != "" {
		tail = `\` + strings.ReplaceAll(parts[1], "/", `\`)
	}
	return drive + `:\` + strings.TrimPrefix(tail, `\`), nil
}

// EqualsPath compares two already-normalized paths for the given shell
// kind: case-insensitive for Windows shells, case-sensitive otherwise.
// Gitbash additionally treats its Windows and /c/... forms as equal.
func EqualsPath(a, b string, k shellkind.Kind) bool {
	if k.PathFormat() == shellkind.PathWindows {
		return strings.EqualFold(trimTrailingSep(a), trimTrailingSep(b))
	}
	if k == shellkind.GitBash {
		na, erra := normalizeGitbashCompare(a)
		nb, errb := normalizeGitbashCompare(b)
		if erra == nil && errb == nil {
			return na == nb
		}
	}
	return trimTrailingSep(a) == trimTrailingSep(b)
}

func normalizeGitbashCompare(p string) (string, error) {
	if len(p) >= 2 && isDriveLetter(p[0]) && p[1] == ':' {
		return ConvertWindowsToWslMount(p, "/")
	}
	return normalizePosix(p, defaultMountPoint)
}

// IsDescendant reports whether child lies at or beneath parent, under
// k's case-folding rule.
func IsDescendant(child, parent string, k shellkind.Kind) bool {
	sep := `\`
	if k.PathFormat() != shellkind.PathWindows {
		sep = "/"
	}
	c, p := trimTrailingSep(child), trimTrailingSep(parent)
	if EqualsPath(c, p, k) {
		return true
	}
	if k.PathFormat() == shellkind.PathWindows {
		return len(c) > len(p) && strings.EqualFold(c[:len(p)], p) && strings.HasPrefix(c[len(p):], sep)
	}
	return strings.HasPrefix(c, p+sep)
}

func isDriveLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func trimTrailingSep(p string) string {
	for len(p) > 3 && (strings.HasSuffix(p, `\`) || strings.HasSuffix(p, "/")) {
		p = p[:len(p)-1]
	}
	return p
}

// splitClean resolves "." and ".." segments lexically against sep,
// rejecting any ".." that would climb above the root.
func splitClean(rest string, sep string) ([]string, error) {
	var out []string
	for _, seg := range strings.Split(rest, sep) {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) == 0 {
				return nil, fmt.Errorf("%w: path escapes its base", ErrInvalidPath)
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}
	return out, nil
}
