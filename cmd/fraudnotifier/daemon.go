package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"fraudnotifier/internal/config"

	"github.com/spf13/cobra"
)

const launchdLabel = "com.fraudnotifier.serve"

// serviceUnit is a rendered service definition and where it lives on disk.
type serviceUnit struct {
	Path   string
	LogDir string // created before install when set
	Body   string
}

// unitFor renders the user-level service unit for goos. execPath and cfgPath
// may be empty when only the path is needed.
func unitFor(goos, home, execPath, cfgPath string) (serviceUnit, error) {
	switch goos {
	case "darwin":
		logDir := filepath.Join(config.DefaultConfigDir(), "logs")
		return serviceUnit{
			Path:   filepath.Join(home, "Library", "LaunchAgents", launchdLabel+".plist"),
			LogDir: logDir,
			Body: renderUnit(launchdTemplate, map[string]string{
				"EXEC":   execPath,
				"CONFIG": cfgPath,
				"LABEL":  launchdLabel,
				"LOG":    filepath.Join(logDir, "fraudnotifier.log"),
			}),
		}, nil
	case "linux":
		return serviceUnit{
			Path: filepath.Join(home, ".config", "systemd", "user", "fraudnotifier.service"),
			Body: renderUnit(systemdTemplate, map[string]string{
				"EXEC":   execPath,
				"CONFIG": cfgPath,
			}),
		}, nil
	}
	return serviceUnit{}, fmt.Errorf("unsupported OS: %s (supported: darwin, linux)", goos)
}

func renderUnit(tmpl string, vars map[string]string) string {
	out := tmpl
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}

func installDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install the receiver as a user service (launchd/systemd)",
		Long:  "Writes a user-level service unit that runs 'fraudnotifier serve' against the current config file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			if _, err := os.Stat(cfgPath); err != nil {
				return fmt.Errorf("service needs a config file, run 'fraudnotifier init' first: %w", err)
			}
			execPath, err := os.Executable()
			if err != nil {
				return fmt.Errorf("cannot determine executable path: %w", err)
			}
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			unit, err := unitFor(runtime.GOOS, home, execPath, cfgPath)
			if err != nil {
				return err
			}
			return writeUnit(unit)
		},
	}
}

func writeUnit(unit serviceUnit) error {
	if unit.LogDir != "" {
		if err := os.MkdirAll(unit.LogDir, 0o755); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(unit.Path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(unit.Path, []byte(unit.Body), 0o644); err != nil {
		return fmt.Errorf("write unit: %w", err)
	}
	fmt.Println(unit.Path)
	return nil
}

func uninstallDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the user service unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			unit, err := unitFor(runtime.GOOS, home, "", "")
			if err != nil {
				return err
			}
			if err := os.Remove(unit.Path); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("no service installed at %s", unit.Path)
				}
				return fmt.Errorf("remove unit: %w", err)
			}
			fmt.Println("removed", unit.Path)
			return nil
		},
	}
}

const launchdTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{LABEL}}</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{EXEC}}</string>
        <string>serve</string>
        <string>--config</string>
        <string>{{CONFIG}}</string>
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <true/>
    <key>StandardOutPath</key>
    <string>{{LOG}}</string>
    <key>StandardErrorPath</key>
    <string>{{LOG}}</string>
</dict>
</plist>`

const systemdTemplate = `[Unit]
Description=Stripe early fraud warning relay
After=network-online.target

[Service]
Type=simple
ExecStart={{EXEC}} serve --config {{CONFIG}}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target`
