// Package config provides configuration loading and defaults for the League
// Notifier daemon.
//
// Configuration is loaded from a TOML file in the user's data directory.
// The package covers client discovery, poll cadence, notification content,
// avatar caching, update checks, and logging, with defaults that reproduce
// the stock notifier behavior when no file exists.
package config

//go:generate go run ../../cmd/genconfig

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"tools.zach/dev/leaguenotifier/internal/atomicfile"
	"tools.zach/dev/leaguenotifier/internal/avatar"
	"tools.zach/dev/leaguenotifier/internal/logger"
	"tools.zach/dev/leaguenotifier/internal/paths"
	"tools.zach/dev/leaguenotifier/internal/roster"
)

// CurrentVersion is the config schema version written by this build.
const CurrentVersion = 1

// AppName is the display name used for notifications and the tray.
const AppName = "League Notifier"

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level application configuration.
type Config struct {
	// Version is the config schema version.
	Version int `toml:"version"`
	// Client holds League client discovery settings.
	Client ClientConfig `toml:"client"`
	// Poll holds roster polling settings.
	Poll PollConfig `toml:"poll"`
	// Notify holds notification content settings.
	Notify NotifyConfig `toml:"notify"`
	// Avatar holds profile icon download and cache settings.
	Avatar AvatarConfig `toml:"avatar"`
	// Update holds release check settings.
	Update UpdateConfig `toml:"update"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
}

// ClientConfig holds settings for finding the running League client.
type ClientConfig struct {
	// Lockfile is an explicit lockfile path checked before InstallDirs.
	Lockfile string `toml:"lockfile,omitempty"`
	// InstallDirs are directories searched for the client lockfile.
	InstallDirs []string `toml:"install_dirs"`
	// ProcessNames are client executables whose arguments carry credentials.
	ProcessNames []string `toml:"process_names"`
	// RequestTimeoutSeconds bounds each roster request.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
	// WatchLockfile drops cached credentials when the lockfile changes.
	WatchLockfile bool `toml:"watch_lockfile"`
}

// PollConfig holds roster polling settings.
type PollConfig struct {
	// IntervalSeconds is the time between roster fetches.
	IntervalSeconds int `toml:"interval_seconds"`
	// OnProductMismatch is "abort_cycle" or "skip_friend".
	OnProductMismatch string `toml:"on_product_mismatch"`
}

// NotifyConfig holds notification content settings.
type NotifyConfig struct {
	// Title is the notification heading.
	Title string `toml:"title"`
	// AppName is the source name shown by the OS.
	AppName string `toml:"app_name"`
	// Message is the body template; supports {name} and {tag}.
	Message string `toml:"message"`
	// Sound is the sound cue name; empty is silent.
	Sound string `toml:"sound"`
	// Product is the presence product that counts as "in League".
	Product string `toml:"product"`
	// DispatchTimeoutSeconds bounds avatar download per notification.
	DispatchTimeoutSeconds int `toml:"dispatch_timeout_seconds"`
	// Mute lists glob patterns of Riot IDs ("name#tag") never announced.
	Mute []string `toml:"mute"`
}

// AvatarConfig holds profile icon settings.
type AvatarConfig struct {
	// Enabled attaches profile icons to notifications.
	Enabled bool `toml:"enabled"`
	// URL is the download template; {icon} is the icon ID.
	URL string `toml:"url"`
	// CacheEntries is the number of icon files kept on disk.
	CacheEntries int `toml:"cache_entries"`
	// MaxBytes caps a single icon download.
	MaxBytes int64 `toml:"max_bytes"`
	// TimeoutSeconds bounds each download attempt.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// UpdateConfig holds release check settings.
type UpdateConfig struct {
	// CheckOnStartup logs when a newer release exists.
	CheckOnStartup bool `toml:"check_on_startup"`
	// ManifestURL points at the release manifest JSON.
	ManifestURL string `toml:"manifest_url"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultManifestURL is the release manifest checked for updates.
const DefaultManifestURL = "https://raw.githubusercontent.com/zachthedev/leaguenotifier/main/.release-manifest.json"

// DefaultInstallDirs returns the usual client install locations for goos.
func DefaultInstallDirs(goos string) []string {
	switch goos {
	case "windows":
		return []string{`C:\Riot Games\League of Legends`}
	case "darwin":
		return []string{"/Applications/League of Legends.app/Contents/LoL"}
	default:
		return []string{}
	}
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Client: ClientConfig{
			InstallDirs:           DefaultInstallDirs(runtime.GOOS),
			ProcessNames:          []string{"LeagueClientUx", "LeagueClientUx.exe"},
			RequestTimeoutSeconds: 3,
			WatchLockfile:         true,
		},
		Poll: PollConfig{
			IntervalSeconds:   5,
			OnProductMismatch: string(roster.AbortCycle),
		},
		Notify: NotifyConfig{
			Title:                  AppName,
			AppName:                AppName,
			Message:                "{name}#{tag} is now online!",
			Sound:                  "IM",
			Product:                roster.ProductLeague,
			DispatchTimeoutSeconds: 10,
			Mute:                   []string{},
		},
		Avatar: AvatarConfig{
			Enabled:        true,
			URL:            avatar.DefaultURL,
			CacheEntries:   256,
			MaxBytes:       2 << 20,
			TimeoutSeconds: 5,
		},
		Update: UpdateConfig{
			CheckOnStartup: true,
			ManifestURL:    DefaultManifestURL,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// ///////////////////////////////////////////////
// Example Configuration
// ///////////////////////////////////////////////

// ExampleConfig returns a Config suitable for generating config.default.toml.
// Install directories are left empty so the generated file is the same on
// every platform; the daemon fills in platform defaults for an empty list.
func ExampleConfig() *Config {
	cfg := DefaultConfig()
	cfg.Client.InstallDirs = []string{}
	return cfg
}

// ///////////////////////////////////////////////
// PeekVersion
// ///////////////////////////////////////////////

// PeekVersion reads just the version field from raw TOML bytes.
// Returns 1 if the version field is missing or zero.
func PeekVersion(data []byte) int {
	var v struct {
		Version int `toml:"version"`
	}
	if err := toml.Unmarshal(data, &v); err != nil {
		return 1
	}
	if v.Version == 0 {
		return 1
	}
	return v.Version
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads and parses the configuration file from dataDir/config.toml.
// If the file doesn't exist, returns DefaultConfig.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, paths.ConfigFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if v := PeekVersion(data); v > CurrentVersion {
		return nil, fmt.Errorf("config version %d is newer than supported version %d", v, CurrentVersion)
	}

	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key ignored", "key", key.String())
	}
	cfg.Version = CurrentVersion

	// An explicitly empty list means "use the platform defaults".
	if len(cfg.Client.InstallDirs) == 0 {
		cfg.Client.InstallDirs = DefaultInstallDirs(runtime.GOOS)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to disk as TOML using atomic file write.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicfile.Write(path, buf.Bytes(), 0o644)
}

// WriteDefault writes defaultTOML to dataDir/config.toml unless a config
// file already exists. It reports whether a file was written.
func WriteDefault(dataDir string, defaultTOML []byte) (bool, error) {
	path := filepath.Join(dataDir, paths.ConfigFile)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config: %w", err)
	}
	if err := atomicfile.Write(path, defaultTOML, 0o644); err != nil {
		return false, fmt.Errorf("write default config: %w", err)
	}
	return true, nil
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// Validate checks that all configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Poll.IntervalSeconds <= 0 {
		return fmt.Errorf("poll.interval_seconds must be > 0, got %d", c.Poll.IntervalSeconds)
	}

	if _, err := roster.ParseMismatchPolicy(c.Poll.OnProductMismatch); err != nil {
		return fmt.Errorf("poll.on_product_mismatch: %w", err)
	}

	if c.Client.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("client.request_timeout_seconds must be > 0, got %d", c.Client.RequestTimeoutSeconds)
	}

	if len(c.Client.ProcessNames) == 0 && len(c.Client.InstallDirs) == 0 && c.Client.Lockfile == "" {
		return fmt.Errorf("client: set at least one of lockfile, install_dirs, or process_names")
	}

	if strings.TrimSpace(c.Notify.Product) == "" {
		return fmt.Errorf("notify.product must not be empty")
	}

	if strings.TrimSpace(c.Notify.Message) == "" {
		return fmt.Errorf("notify.message must not be empty")
	}

	if c.Notify.DispatchTimeoutSeconds <= 0 {
		return fmt.Errorf("notify.dispatch_timeout_seconds must be > 0, got %d", c.Notify.DispatchTimeoutSeconds)
	}

	for _, pattern := range c.Notify.Mute {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid notify.mute pattern %q", pattern)
		}
	}

	if c.Avatar.Enabled {
		if !strings.Contains(c.Avatar.URL, "{icon}") {
			return fmt.Errorf("avatar.url %q must contain {icon}", c.Avatar.URL)
		}
		if c.Avatar.CacheEntries <= 0 {
			return fmt.Errorf("avatar.cache_entries must be > 0, got %d", c.Avatar.CacheEntries)
		}
		if c.Avatar.TimeoutSeconds <= 0 {
			return fmt.Errorf("avatar.timeout_seconds must be > 0, got %d", c.Avatar.TimeoutSeconds)
		}
	}

	if c.Avatar.MaxBytes < 0 {
		return fmt.Errorf("avatar.max_bytes must be >= 0, got %d", c.Avatar.MaxBytes)
	}

	if lvl, ok := logger.LookupLevel(c.Log.Level); !ok || lvl == logger.LevelFail {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}

	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}

	return nil
}

// ///////////////////////////////////////////////
// Derived Values
// ///////////////////////////////////////////////

// PollInterval returns the poll cadence.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}

// RequestTimeout returns the per-request bound for client API calls.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Client.RequestTimeoutSeconds) * time.Second
}

// DispatchTimeout returns the avatar resolution bound per notification.
func (c *Config) DispatchTimeout() time.Duration {
	return time.Duration(c.Notify.DispatchTimeoutSeconds) * time.Second
}

// AvatarTimeout returns the per-attempt download bound.
func (c *Config) AvatarTimeout() time.Duration {
	return time.Duration(c.Avatar.TimeoutSeconds) * time.Second
}

// MismatchPolicy returns the configured product mismatch policy. Validate
// has already rejected unknown values.
func (c *Config) MismatchPolicy() roster.MismatchPolicy {
	return roster.MismatchPolicy(c.Poll.OnProductMismatch)
}

// ///////////////////////////////////////////////
// Mute List
// ///////////////////////////////////////////////

// IsMuted reports whether riotID ("name#tag") matches any mute pattern.
// Matching ignores case, since Riot IDs are case-insensitive.
func (c *Config) IsMuted(riotID string) bool {
	id := strings.ToLower(riotID)
	for _, pattern := range c.Notify.Mute {
		matched, err := doublestar.Match(strings.ToLower(pattern), id)
		if err != nil {
			slog.Warn("invalid glob pattern", "pattern", pattern, "error", err)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}
