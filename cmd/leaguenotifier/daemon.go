package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tools.zach/dev/leaguenotifier/internal/avatar"
	"tools.zach/dev/leaguenotifier/internal/config"
	"tools.zach/dev/leaguenotifier/internal/lcu"
	"tools.zach/dev/leaguenotifier/internal/notify"
	"tools.zach/dev/leaguenotifier/internal/poller"
	"tools.zach/dev/leaguenotifier/internal/roster"
	"tools.zach/dev/leaguenotifier/internal/update"
)

// ///////////////////////////////////////////////
// Daemon Assembly
// ///////////////////////////////////////////////

// daemon bundles the poll loop with the client session it reads from.
type daemon struct {
	poller  *poller.Poller
	client  *lcu.Client
	watcher *lcu.Watcher
}

// newDaemon wires the roster fetcher, presence store, classifier, and
// dispatcher from cfg. Optional pieces that fail to start (avatar cache,
// lockfile watcher) are logged and left out.
func newDaemon(cfg *config.Config, dp DataPaths, notifier notify.Notifier, observe func(poller.Cycle)) *daemon {
	locator := &lcu.Locator{
		Lockfile:     cfg.Client.Lockfile,
		InstallDirs:  cfg.Client.InstallDirs,
		ProcessNames: cfg.Client.ProcessNames,
	}
	d := &daemon{client: lcu.NewClient(locator, cfg.RequestTimeout())}

	if lockfiles := locator.LockfilePaths(); cfg.Client.WatchLockfile && len(lockfiles) > 0 {
		w, err := lcu.NewWatcher(lockfiles)
		if err != nil {
			slog.Warn("lockfile watcher unavailable", "error", err)
		} else {
			if w.Polling() {
				slog.Info("using polling mode for lockfile watching")
			}
			d.watcher = w
		}
	}

	dispatcher := notify.NewDispatcher(notifier, avatarResolver(cfg, dp), notify.Options{
		Title:   cfg.Notify.Title,
		Message: cfg.Notify.Message,
		Sound:   cfg.Notify.Sound,
		Timeout: cfg.DispatchTimeout(),
		Muted:   cfg.IsMuted,
	})

	d.poller = poller.New(poller.Config{
		Fetcher:    d.client,
		Dispatcher: dispatcher,
		Classifier: roster.NewClassifier(cfg.Notify.Product, cfg.MismatchPolicy()),
		Store:      roster.NewStore(),
		Interval:   cfg.PollInterval(),
		Observe:    observe,
	})
	return d
}

// avatarResolver returns nil when avatars are disabled or the cache cannot be
// opened; the dispatcher then notifies without images.
func avatarResolver(cfg *config.Config, dp DataPaths) notify.AvatarResolver {
	if !cfg.Avatar.Enabled {
		return nil
	}
	cache, err := avatar.NewCache(dp.Avatars(), cfg.Avatar.CacheEntries)
	if err != nil {
		slog.Warn("avatar cache unavailable, notifying without images", "error", err)
		return nil
	}
	fetcher := avatar.NewFetcher(cfg.Avatar.URL, cfg.Avatar.MaxBytes, cfg.AvatarTimeout())
	return avatar.NewResolver(fetcher, cache)
}

// run blocks until ctx is canceled. Cancellation is a normal stop.
func (d *daemon) run(ctx context.Context) error {
	if d.watcher != nil {
		go d.client.InvalidateOn(ctx, d.watcher.Events())
	}
	if err := d.poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (d *daemon) close() {
	if d.watcher != nil {
		d.watcher.Close()
	}
}

// ///////////////////////////////////////////////
// Status Reporting
// ///////////////////////////////////////////////

// statusReporter logs client connection changes and forwards a one-line
// status to set (the tray) after every cycle.
type statusReporter struct {
	set  func(string)
	seen bool
	last poller.Status
}

func (r *statusReporter) observe(c poller.Cycle) {
	if !r.seen || c.Status != r.last {
		switch c.Status {
		case poller.Completed:
			slog.Info("connected to League client", "friends", c.Friends)
		case poller.ClientNotRunning:
			slog.Info("waiting for League client")
		case poller.FetchFailed:
			slog.Warn("League client not responding", "error", c.Err)
		}
		r.seen, r.last = true, c.Status
	}
	if r.set != nil {
		r.set(statusText(c))
	}
}

// statusText renders a cycle for the tray menu.
func statusText(c poller.Cycle) string {
	switch c.Status {
	case poller.Completed:
		if c.Tracked == 1 {
			return "Watching 1 friend"
		}
		return fmt.Sprintf("Watching %d friends", c.Tracked)
	case poller.ClientNotRunning:
		return "Waiting for League client"
	default:
		return "League client not responding"
	}
}

// ///////////////////////////////////////////////
// Update Check
// ///////////////////////////////////////////////

// updateTimeout bounds each manifest request.
const updateTimeout = 5 * time.Second

// checkForUpdate runs one release check. When a newer version exists and
// notice is set, it is shown there. Panics are recovered and logged.
func checkForUpdate(ctx context.Context, current, manifestURL string, notice func(string)) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("update check panic", "error", r)
		}
	}()
	latest, newer := update.NewChecker(manifestURL, updateTimeout).Check(ctx, current)
	if newer && notice != nil {
		notice("Update available: v" + strings.TrimPrefix(latest, "v"))
	}
}
