// Package leaguenotifier provides embedded assets for the League Notifier
// daemon: the default config file and the tray icon.
package leaguenotifier

import (
	_ "embed"
	"runtime"
)

// DefaultConfigTOML holds the raw bytes of config.default.toml, embedded at
// build time. The daemon copies it to the data directory on first run.
//
//go:embed config.default.toml
var DefaultConfigTOML []byte

//go:embed icon.png
var iconPNG []byte

//go:embed icon.ico
var iconICO []byte

// TrayIcon returns the tray image in the format the platform tray expects.
func TrayIcon() []byte {
	if runtime.GOOS == "windows" {
		return iconICO
	}
	return iconPNG
}
