// Package shellkind enumerates the shells the dispatcher can target and
// the conventions each one expects — path format, argv style, and
// whether commands need POSIX path translation before they reach a WSL
// or bash child.
package shellkind

// Kind identifies one of the shells the server can spawn commands in.
type Kind string

const (
	CMD        Kind = "cmd"
	PowerShell Kind = "powershell"
	GitBash    Kind = "gitbash"
	Bash       Kind = "bash"
	WSL        Kind = "wsl"
)

// PathFormat is the path convention a shell's child process expects.
type PathFormat string

const (
	// PathWindows is drive-letter form: C:\foo\bar
	PathWindows PathFormat = "windows"
	// PathPOSIX is forward-slash form: /foo/bar
	PathPOSIX PathFormat = "posix"
	// PathMixed accepts either C:\foo\bar or /c/foo/bar (gitbash).
	PathMixed PathFormat = "mixed"
)

// traits holds the derived capability table for one Kind. Built once at
// package init so callers never branch on name strings at request time.
type traits struct {
	isWindowsShell bool
	isUnixShell    bool
	isWslShell     bool
	pathFormat     PathFormat
	displayName    string
}

var table = map[Kind]traits{
	CMD:        {isWindowsShell: true, pathFormat: PathWindows, displayName: "Command Prompt"},
	PowerShell: {isWindowsShell: true, pathFormat: PathWindows, displayName: "PowerShell"},
	GitBash:    {isUnixShell: true, pathFormat: PathMixed, displayName: "Git Bash"},
	Bash:       {isUnixShell: true, isWslShell: true, pathFormat: PathPOSIX, displayName: "Bash"},
	WSL:        {isUnixShell: true, isWslShell: true, pathFormat: PathPOSIX, displayName: "WSL"},
}

// Valid reports whether k is one of the five known shell kinds.
func Valid(k Kind) bool {
	_, ok := table[k]
	return ok
}

// All returns every known shell kind, in a stable order.
func All() []Kind {
	return []Kind{CMD, PowerShell, GitBash, Bash, WSL}
}

// IsWindowsShell reports whether k's child process expects Windows-form
// paths and cmd/PowerShell-style argument quoting.
func (k Kind) IsWindowsShell() bool { return table[k].isWindowsShell }

// IsUnixShell reports whether k's child process is a POSIX-family shell
// (gitbash, bash, or a WSL distribution).
func (k Kind) IsUnixShell() bool { return table[k].isUnixShell }

// IsWslShell reports whether k runs inside WSL and therefore needs
// Windows↔POSIX path translation via a mount point.
func (k Kind) IsWslShell() bool { return table[k].isWslShell }

// PathFormat returns the path convention k's child process expects.
func (k Kind) PathFormat() PathFormat { return table[k].pathFormat }

// DisplayName returns a human-readable label for k.
func (k Kind) DisplayName() string {
	if t, ok := table[k]; ok {
		return t.displayName
	}
	return string(k)
}
