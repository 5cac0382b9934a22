package pathnorm

import (
	"testing"

	"github.com/nextlevelbuilder/cli-mcp-server/internal/shellkind"
)

func TestNormalizeForShell(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		kind    shellkind.Kind
		want    string
		wantErr bool
	}{
		{"windows mixed separators", `C:/foo/bar`, shellkind.CMD, `C:\foo\bar`, false},
		{"windows lowercase drive", `c:\foo\bar\`, shellkind.PowerShell, `C:\foo\bar`, false},
		{"windows dot-dot escape", `C:\foo\..\..\bar`, shellkind.CMD, "", true},
		{"windows relative rejected", `foo\bar`, shellkind.CMD, "", true},
		{"posix collapses slashes", `//home//alice//`, shellkind.Bash, `/home/alice`, false},
		{"posix dot segments", `/home/./alice/../bob`, shellkind.WSL, `/home/bob`, false},
		{"posix escape rejected", `/..`, shellkind.Bash, "", true},
		{"gitbash accepts windows form", `C:\Users\alice`, shellkind.GitBash, `/c/Users/alice`, false},
		{"gitbash accepts slash form", `/c/Users/alice`, shellkind.GitBash, `/c/Users/alice`, false},
		{"empty path rejected", "", shellkind.Bash, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeForShell(tt.path, tt.kind, "")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvertWindowsToWslMount(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		mount string
		want  string
	}{
		{"default mount", `C:\foo\bar`, "", "/mnt/c/foo/bar"},
		{"custom mount", `D:\data`, "/windrive/", "/windrive/d/data"},
		{"drive root", `C:\`, "", "/mnt/c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertWindowsToWslMount(tt.path, tt.mount)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvertWslMountToWindows_RoundTrip(t *testing.T) {
	inputs := []string{`C:\foo\bar`, `D:\data`, `C:\`}
	for _, in := range inputs {
		mounted, err := ConvertWindowsToWslMount(in, "")
		if err != nil {
			t.Fatalf("ConvertWindowsToWslMount(%q): %v", in, err)
		}
		back, err := ConvertWslMountToWindows(mounted, "")
		if err != nil {
			t.Fatalf("ConvertWslMountToWindows(%q): %v", mounted, err)
		}
		want, _ := normalizeWindows(in)
		if back != want {
			t.Errorf("round trip of %q: got %q, want %q", in, back, want)
		}
	}
}

func TestEqualsPath(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		kind shellkind.Kind
		want bool
	}{
		{"windows case insensitive", `C:\Foo\Bar`, `c:\foo\bar`, shellkind.CMD, true},
		{"unix case sensitive differs", `/Home/Alice`, `/home/alice`, shellkind.Bash, false},
		{"gitbash windows vs mount form", `C:\Users\alice`, `/c/Users/alice`, shellkind.GitBash, true},
		{"trailing separator ignored", `C:\foo\`, `C:\foo`, shellkind.CMD, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EqualsPath(tt.a, tt.b, tt.kind); got != tt.want {
				t.Errorf("EqualsPath(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestIsDescendant(t *testing.T) {
	tests := []struct {
		name         string
		child, parent string
		kind         shellkind.Kind
		want         bool
	}{
		{"direct child", `C:\work\project`, `C:\work`, shellkind.CMD, true},
		{"equal paths", `/home/alice`, `/home/alice`, shellkind.Bash, true},
		{"sibling not descendant", `/home/alice2`, `/home/alice`, shellkind.Bash, false},
		{"unrelated", `C:\etc`, `C:\work`, shellkind.CMD, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDescendant(tt.child, tt.parent, tt.kind); got != tt.want {
				t.Errorf("IsDescendant(%q, %q) = %v, want %v", tt.child, tt.parent, got, tt.want)
			}
		})
	}
}
