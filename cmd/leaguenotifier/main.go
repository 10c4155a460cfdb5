// Package main implements the League Notifier daemon, which watches the
// League client's friend list and shows a desktop notification when a friend
// comes online.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"sync/atomic"
	"time"

	rootpkg "tools.zach/dev/leaguenotifier"
	"tools.zach/dev/leaguenotifier/internal/config"
	"tools.zach/dev/leaguenotifier/internal/logger"
	"tools.zach/dev/leaguenotifier/internal/notify"
	"tools.zach/dev/leaguenotifier/internal/paths"
	"tools.zach/dev/leaguenotifier/internal/tray"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time via ldflags:
//   - goreleaser: -X main.version={{.Version}}  -> "0.1.0"
//   - make build: -X main.version=$(VERSION)    -> "0.0.0-dev+05ffee5"
//
// When ldflags are not set (bare go build), resolveVersion reads the VCS info
// that Go embeds automatically.
var version = "dev"

// resolveVersion returns the build version string. If [version] was set via
// ldflags it is returned as-is; otherwise the embedded VCS revision is used to
// construct a "dev+<hash>" tag.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// ///////////////////////////////////////////////
// Flags
// ///////////////////////////////////////////////

// options holds parsed command-line flags.
type options struct {
	dataDir     string
	headless    bool
	console     bool
	tail        int
	showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet(paths.BinaryName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.dataDir, "data-dir", paths.Default().Root, "Data directory for config, logs, and the avatar cache")
	fs.BoolVar(&o.headless, "headless", false, "Run without a tray icon until interrupted")
	fs.BoolVar(&o.console, "console", false, "Also write log lines to stderr")
	fs.IntVar(&o.tail, "tail", 0, "Print the last N log lines and exit")
	fs.BoolVar(&o.showVersion, "version", false, "Print the version and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if o.tail < 0 {
		return options{}, fmt.Errorf("-tail must be >= 0, got %d", o.tail)
	}
	return o, nil
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

// shutdownGrace bounds the wait for the poll loop after the tray exits.
const shutdownGrace = 5 * time.Second

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	ver := resolveVersion()
	if opts.showVersion {
		fmt.Printf("%s %s\n", paths.BinaryName, ver)
		return
	}

	if opts.tail > 0 {
		out, err := logger.ReadTail(DataPaths{Root: opts.dataDir}.Log(), opts.tail)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read log: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(out)
		return
	}

	os.Exit(run(opts, ver))
}

// run starts the daemon and blocks until it stops, returning the exit code.
func run(opts options, ver string) int {
	dp := DataPaths{Root: opts.dataDir}
	if err := dp.Ensure(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: create data dir: %v\n", err)
		return 1
	}

	lock, err := acquireLock(dp.PID())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer lock.Release()

	if _, err := config.WriteDefault(dp.Root, rootpkg.DefaultConfigTOML); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cfg, err := config.Load(dp.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: load config: %v\n", err)
		return 1
	}

	var mirror io.Writer
	if opts.console {
		mirror = os.Stderr
	}
	log, logCloser, err := logger.New(logger.Options{
		Path:      dp.Log(),
		Level:     logger.ParseLevel(cfg.Log.Level),
		MaxSizeMB: cfg.Log.MaxSizeMB,
		Mirror:    mirror,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: init logger: %v\n", err)
		return 1
	}
	defer logCloser.Close()
	slog.SetDefault(log)

	slog.Info("league notifier starting", "version", ver, "data_dir", dp.Root, "headless", opts.headless)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reporter := &statusReporter{}
	stop := cancel
	notice := func(string) {}
	if !opts.headless {
		reporter.set = tray.SetStatus
		stop = tray.Quit
		notice = tray.SetNotice
	}

	sig := signalChannel()
	go func() {
		select {
		case s := <-sig:
			slog.Info("received signal, shutting down", "signal", s.String())
			stop()
		case <-ctx.Done():
		}
	}()

	d := newDaemon(cfg, dp, notify.NewDesktop(cfg.Notify.AppName), reporter.observe)
	defer d.close()

	if cfg.Update.CheckOnStartup {
		go checkForUpdate(ctx, ver, cfg.Update.ManifestURL, notice)
	}

	var runErr error
	if opts.headless {
		runErr = d.run(ctx)
	} else {
		runErr = runTray(ctx, cancel, d, ver)
	}
	if runErr != nil {
		logger.Fail(slog.Default(), "poll loop failed", "error", runErr)
		return 1
	}
	slog.Info("league notifier stopped")
	return 0
}

// runTray hands the main goroutine to the tray. The poll loop starts once the
// tray is ready and is canceled when the user picks Quit.
func runTray(ctx context.Context, cancel context.CancelFunc, d *daemon, ver string) error {
	done := make(chan error, 1)
	var started atomic.Bool

	tray.Run(tray.Options{Title: config.AppName, Version: ver, Icon: rootpkg.TrayIcon()},
		func() {
			started.Store(true)
			go func() { done <- d.run(ctx) }()
		},
		cancel,
	)
	cancel()

	if !started.Load() {
		return nil
	}
	select {
	case err := <-done:
		return err
	case <-time.After(shutdownGrace):
		slog.Warn("poll loop did not stop in time")
		return nil
	}
}
