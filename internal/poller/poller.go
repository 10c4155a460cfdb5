// Package poller drives the friend roster on a fixed cadence: fetch the
// roster, classify every friend against the last observation, and announce
// the ones that came online.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tools.zach/dev/leaguenotifier/internal/lcu"
	"tools.zach/dev/leaguenotifier/internal/logger"
	"tools.zach/dev/leaguenotifier/internal/roster"
)

// DefaultInterval is the time between cycle starts.
const DefaultInterval = 5 * time.Second

// ///////////////////////////////////////////////
// Collaborators
// ///////////////////////////////////////////////

// Fetcher returns the current roster in client order.
type Fetcher interface {
	Friends(ctx context.Context) ([]roster.FriendRecord, error)
}

// Dispatcher announces a friend that came online.
type Dispatcher interface {
	Dispatch(ctx context.Context, f roster.FriendRecord) error
}

// ///////////////////////////////////////////////
// Cycle Result
// ///////////////////////////////////////////////

// Status describes how a cycle ended.
type Status int

const (
	// Completed means the roster was fetched and classified.
	Completed Status = iota
	// ClientNotRunning means no client session could be found.
	ClientNotRunning
	// FetchFailed means the roster request failed.
	FetchFailed
)

// String returns the status name used in logs.
func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case ClientNotRunning:
		return "client_not_running"
	case FetchFailed:
		return "fetch_failed"
	default:
		return "unknown"
	}
}

// Cycle reports the outcome of one poll.
type Cycle struct {
	Status Status
	// Err is the fetch error for [FetchFailed].
	Err error
	// Friends is the roster size for [Completed].
	Friends int
	// Tracked is the store size after the cycle.
	Tracked int
	// Result holds classification details for [Completed].
	Result roster.CycleResult
}

// ///////////////////////////////////////////////
// Poller
// ///////////////////////////////////////////////

// Poller owns the presence store and is its only writer. Run it on a single
// goroutine; cycles never overlap.
type Poller struct {
	fetcher    Fetcher
	dispatcher Dispatcher
	classifier roster.Classifier
	store      *roster.Store
	interval   time.Duration
	// observe, when set, receives every cycle result.
	observe func(Cycle)
}

// Config assembles a [Poller].
type Config struct {
	Fetcher    Fetcher
	Dispatcher Dispatcher
	Classifier roster.Classifier
	// Store is the presence store to drive; nil starts empty.
	Store *roster.Store
	// Interval defaults to [DefaultInterval].
	Interval time.Duration
	// Observe is called after each cycle on the polling goroutine.
	Observe func(Cycle)
}

// New returns a Poller.
func New(cfg Config) *Poller {
	store := cfg.Store
	if store == nil {
		store = roster.NewStore()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetcher:    cfg.Fetcher,
		dispatcher: cfg.Dispatcher,
		classifier: cfg.Classifier,
		store:      store,
		interval:   interval,
		observe:    cfg.Observe,
	}
}

// Run polls immediately and then once per interval until ctx is done. A slow
// cycle delays the next one; missed ticks are dropped rather than queued.
func (p *Poller) Run(ctx context.Context) error {
	slog.Info("poll loop started", "interval", p.interval.String(), "mismatch_policy", string(p.classifier.Policy()))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.RunOnce(ctx)

		select {
		case <-ctx.Done():
			slog.Info("poll loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single cycle. Errors are reported in the result and
// logged; they never abort the loop.
func (p *Poller) RunOnce(ctx context.Context) Cycle {
	c := p.cycle(ctx)
	c.Tracked = p.store.Len()
	if p.observe != nil {
		p.observe(c)
	}
	return c
}

func (p *Poller) cycle(ctx context.Context) Cycle {
	friends, err := p.fetcher.Friends(ctx)
	if err != nil {
		if errors.Is(err, lcu.ErrClientNotRunning) {
			logger.Trace(slog.Default(), "client not running, skipping cycle")
			return Cycle{Status: ClientNotRunning}
		}
		slog.Debug("roster fetch failed, skipping cycle", "error", err)
		return Cycle{Status: FetchFailed, Err: err}
	}

	res := p.classifier.Apply(p.store, friends, func(f roster.FriendRecord) {
		if err := p.dispatcher.Dispatch(ctx, f); err != nil {
			slog.Warn("notification failed", "friend", f.RiotID(), "error", err)
		}
	})
	if res.Stopped {
		slog.Debug("cycle abandoned on product mismatch", "friend_id", res.StoppedAt, "classified", res.Classified, "roster", len(friends))
	}
	logger.Trace(slog.Default(), "cycle complete", "roster", len(friends), "announced", len(res.Announced))
	return Cycle{Status: Completed, Friends: len(friends), Result: res}
}
