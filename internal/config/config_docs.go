package config

// ///////////////////////////////////////////////
// Documentation Types
// ///////////////////////////////////////////////

// FieldDoc holds documentation and alternative examples for a single config field.
// The genconfig tool uses [FieldDoc] values to annotate the generated config.default.toml.
type FieldDoc struct {
	// Comment is shown as a header comment above the field in the example config.
	Comment string

	// Alternatives are shown as commented-out lines below the active value.
	Alternatives []string
}

// ///////////////////////////////////////////////
// Field Documentation Map
// ///////////////////////////////////////////////

// ConfigDocs maps TOML field paths (dot-separated, e.g. "notify.message")
// to their [FieldDoc] entries. The genconfig tool uses this map to annotate the
// generated config.default.toml with inline comments and alternative examples.
var ConfigDocs = map[string]FieldDoc{
	// ── Root ──────────────────────────────────────────────────────
	"version": {
		Comment: "Config schema version. Do not edit.",
	},

	// ── Client ───────────────────────────────────────────────────
	"client": {
		Comment: "How the daemon finds the running League client.\nThe lockfile is tried first, then each install_dirs lockfile,\nthen the command line of a running process named in process_names.",
	},
	"client.lockfile": {
		Comment: "Explicit lockfile path, checked before install_dirs.",
		Alternatives: []string{
			`lockfile = "D:/Games/Riot Games/League of Legends/lockfile"`,
		},
	},
	"client.install_dirs": {
		Comment: "Directories containing the client lockfile.\nLeave empty to use the platform default install location.",
		Alternatives: []string{
			`install_dirs = ["C:/Riot Games/League of Legends"]`,
		},
	},
	"client.process_names": {
		Comment: "Client executables whose --app-port and --remoting-auth-token\narguments are read when no lockfile is found.",
	},
	"client.request_timeout_seconds": {
		Comment: "Timeout for each friend list request (seconds).",
	},
	"client.watch_lockfile": {
		Comment: "Watch the lockfile and forget cached credentials when it changes.\nUseful when the client restarts on a new port.",
	},

	// ── Poll ─────────────────────────────────────────────────────
	"poll.interval_seconds": {
		Comment: "Seconds between friend list fetches.",
	},
	"poll.on_product_mismatch": {
		Comment: "What to do when a friend whose status changed is not in League\n(e.g. online in another Riot game). Options: \"abort_cycle\", \"skip_friend\"\n  abort_cycle: stop processing the rest of the list until the next poll\n  skip_friend: ignore that friend and keep going",
		Alternatives: []string{
			`on_product_mismatch = "skip_friend"`,
		},
	},

	// ── Notify ───────────────────────────────────────────────────
	"notify.title": {
		Comment: "Notification heading.",
	},
	"notify.app_name": {
		Comment: "Application name shown by the OS notification center.",
	},
	"notify.message": {
		Comment: "Notification body. Available variables: {name}, {tag}",
		Alternatives: []string{
			`message = "{name} just logged in"`,
		},
	},
	"notify.sound": {
		Comment: "Sound cue played with the notification. Empty for silent.\nWindows sound names: \"Default\", \"IM\", \"Mail\", \"Reminder\", \"SMS\"",
		Alternatives: []string{
			`sound = ""`,
			`sound = "Default"`,
		},
	},
	"notify.product": {
		Comment: "Presence product counted as \"in League\".",
	},
	"notify.dispatch_timeout_seconds": {
		Comment: "Longest wait for a profile icon before notifying without it (seconds).",
	},
	"notify.mute": {
		Comment: "Friends never announced, as Riot ID glob patterns (name#tag).\nMatching ignores case.",
		Alternatives: []string{
			`mute = ["Smurf#EUW", "*#KR1"]`,
		},
	},

	// ── Avatar ───────────────────────────────────────────────────
	"avatar.enabled": {
		Comment: "Attach the friend's profile icon to notifications.",
	},
	"avatar.url": {
		Comment: "Profile icon download URL. {icon} is replaced by the icon ID.",
	},
	"avatar.cache_entries": {
		Comment: "Number of downloaded icons kept on disk.",
	},
	"avatar.max_bytes": {
		Comment: "Largest icon download accepted, in bytes. 0 = no limit.",
	},
	"avatar.timeout_seconds": {
		Comment: "Timeout for each icon download attempt (seconds).",
	},

	// ── Update ───────────────────────────────────────────────────
	"update.check_on_startup": {
		Comment: "Log a message at startup when a newer release is available.",
	},
	"update.manifest_url": {
		Comment: "Release manifest consulted by the update check.",
	},

	// ── Log ──────────────────────────────────────────────────────
	"log": {
		Comment: "Logging configuration",
	},
	"log.level": {
		Comment: "Minimum log level. Options: \"trace\", \"debug\", \"info\", \"warn\", \"error\"",
		Alternatives: []string{
			`level = "debug"`,
			`level = "warn"`,
		},
	},
	"log.max_size_mb": {
		Comment: "Maximum log file size in megabytes before rotation.",
	},
}
