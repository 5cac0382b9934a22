package config

import "github.com/nextlevelbuilder/cli-mcp-server/internal/shellkind"

// defaultBlockedCommands is a representative, deny-by-default command
// set covering destructive, privilege-escalation, and persistence
// categories, expressed as exact command names for the per-shell
// blockedCommands model.
var defaultBlockedCommands = []string{
	"rm", "rmdir", "del", "format", "mkfs", "diskpart", "dd",
	"shutdown", "reboot", "poweroff",
	"sudo", "su", "runas",
	"nc", "ncat", "netcat", "socat",
}

var defaultBlockedOperators = []string{"&&", "||", ";", "|", "`", "$("}

func defaultExecutable(k shellkind.Kind) Executable {
	switch k {
	case shellkind.CMD:
		return Executable{Command: "cmd.exe", ArgsPrefix: []string{"/c"}}
	case shellkind.PowerShell:
		return Executable{Command: "powershell.exe", ArgsPrefix: []string{"-NoProfile", "-Command"}}
	case shellkind.GitBash:
		return Executable{Command: "bash.exe", ArgsPrefix: []string{"-c"}}
	case shellkind.Bash:
		return Executable{Command: "/bin/bash", ArgsPrefix: []string{"-c"}}
	case shellkind.WSL:
		return Executable{Command: "wsl.exe", ArgsPrefix: []string{"-e"}}
	default:
		return Executable{}
	}
}

// Default returns the built-in configuration: only "cmd" enabled, modest
// deny-lists, no allowed paths, and directory restriction off. Configuring
// allowed paths does not turn the restriction on by itself; that takes
// restrictWorkingDirectory=true.
func Default() *Config {
	cfg := &Config{
		Shells: make(map[shellkind.Kind]*ResolvedShellConfig, len(shellkind.All())),
		Logging: LoggingConfig{
			MaxOutputLines:         20,
			EnableTruncation:       true,
			MaxStoredLogs:          50,
			MaxLogSize:             1 << 20,  // 1 MiB
			MaxTotalStorageSize:    50 << 20, // 50 MiB
			EnableLogResources:     true,
			LogRetentionMinutes:    1440,
			CleanupIntervalMinutes: 5,
		},
	}

	for _, k := range shellkind.All() {
		enabled := k == shellkind.CMD
		shell := &ResolvedShellConfig{
			Kind:        k,
			DisplayName: k.DisplayName(),
			Enabled:     enabled,
			Executable:  defaultExecutable(k),
			Security: SecurityConfig{
				MaxCommandLength:          2000,
				CommandTimeoutSeconds:     30,
				EnableInjectionProtection: true,
				RestrictWorkingDirectory:  false,
			},
			Restrictions: RestrictionsConfig{
				BlockedCommands:  append([]string(nil), defaultBlockedCommands...),
				BlockedArguments: nil,
				BlockedOperators: append([]string(nil), defaultBlockedOperators...),
			},
			Paths: PathsConfig{},
		}
		if k.IsWslShell() {
			shell.WSL = &WSLConfig{MountPoint: "/mnt/", InheritGlobalPaths: false}
		}
		cfg.Shells[k] = shell
	}
	return cfg
}
