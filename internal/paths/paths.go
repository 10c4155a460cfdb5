// Package paths names the files League Notifier keeps in its data directory.
package paths

import (
	"os"
	"path/filepath"
)

// Data directory entries.
const (
	PIDFile    = "daemon.pid"
	ConfigFile = "config.toml"
	LogFile    = "daemon.log"
	AvatarsDir = "avatars"
)

// Install layout.
const (
	BinaryName = "leaguenotifier"
	DataDirRel = ".leaguenotifier" // under the user's home directory
)

// ReleaseManifest is the manifest file path relative to the repo root.
const ReleaseManifest = ".release-manifest.json"

// ///////////////////////////////////////////////
// DataDir
// ///////////////////////////////////////////////

// DataDir is a data directory. An empty Root means the working directory.
type DataDir struct {
	Root string
}

// Default returns ~/.leaguenotifier, or ./.leaguenotifier when the home
// directory is unknown.
func Default() DataDir {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Under(home)
}

// Under returns the data directory inside home.
func Under(home string) DataDir {
	return DataDir{Root: filepath.Join(home, DataDirRel)}
}

func (d DataDir) PID() string     { return filepath.Join(d.Root, PIDFile) }
func (d DataDir) Config() string  { return filepath.Join(d.Root, ConfigFile) }
func (d DataDir) Log() string     { return filepath.Join(d.Root, LogFile) }
func (d DataDir) Avatars() string { return filepath.Join(d.Root, AvatarsDir) }

// Ensure creates the directory and its avatar cache subdirectory.
func (d DataDir) Ensure() error {
	return os.MkdirAll(d.Avatars(), 0o755)
}
