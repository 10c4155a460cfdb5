// Package notify turns "friend came online" events into desktop
// notifications.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tools.zach/dev/leaguenotifier/internal/logger"
	"tools.zach/dev/leaguenotifier/internal/roster"
)

// ///////////////////////////////////////////////
// Capabilities
// ///////////////////////////////////////////////

// Notification is one desktop notification.
type Notification struct {
	Title string
	Body  string
	// Image is a local file path; empty shows no image.
	Image string
	// Sound names a sound cue such as "IM"; empty is silent.
	Sound string
}

// Notifier displays notifications.
type Notifier interface {
	Notify(n Notification) error
}

// AvatarResolver returns a local image path for a profile icon.
type AvatarResolver interface {
	Resolve(ctx context.Context, ref roster.IconRef) (string, error)
}

// ///////////////////////////////////////////////
// Dispatcher
// ///////////////////////////////////////////////

// Options configure a [Dispatcher].
type Options struct {
	// Title is the notification title.
	Title string
	// Message is the body template; {name} and {tag} are substituted.
	Message string
	// Sound is passed through to the [Notifier].
	Sound string
	// Timeout bounds avatar resolution. Zero means no bound.
	Timeout time.Duration
	// Muted reports whether a Riot ID ("name#tag") must not be announced.
	Muted func(riotID string) bool
}

// DefaultMessage is the notification body template.
const DefaultMessage = "{name}#{tag} is now online!"

// Dispatcher announces friends. The avatar is optional: any failure to get
// it degrades to a notification without an image.
type Dispatcher struct {
	notifier Notifier
	avatars  AvatarResolver
	opts     Options
}

// NewDispatcher returns a Dispatcher. avatars may be nil to never attach an
// image.
func NewDispatcher(n Notifier, avatars AvatarResolver, opts Options) *Dispatcher {
	if opts.Message == "" {
		opts.Message = DefaultMessage
	}
	return &Dispatcher{notifier: n, avatars: avatars, opts: opts}
}

// Body renders the notification body for f.
func (d *Dispatcher) Body(f roster.FriendRecord) string {
	return strings.NewReplacer("{name}", f.GameName, "{tag}", f.GameTag).Replace(d.opts.Message)
}

// Dispatch announces f. It returns the notifier's error, if any; avatar
// errors are logged and never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, f roster.FriendRecord) error {
	if d.opts.Muted != nil && d.opts.Muted(f.RiotID()) {
		slog.Debug("friend muted, not notifying", "friend", f.RiotID())
		return nil
	}

	n := Notification{
		Title: d.opts.Title,
		Body:  d.Body(f),
		Sound: d.opts.Sound,
		Image: d.image(ctx, f),
	}
	if err := d.notifier.Notify(n); err != nil {
		return fmt.Errorf("notify %s: %w", f.RiotID(), err)
	}
	slog.Info("friend online", "friend", f.RiotID(), "image", n.Image != "")
	return nil
}

// image resolves the avatar within the configured time bound, returning ""
// on any failure.
func (d *Dispatcher) image(ctx context.Context, f roster.FriendRecord) string {
	if d.avatars == nil || !f.Icon.Valid() {
		return ""
	}
	if d.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()
	}
	path, err := d.avatars.Resolve(ctx, f.Icon)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, context.Canceled) {
			level = slog.LevelDebug
		}
		slog.Log(ctx, level, "avatar unavailable, notifying without image", "friend", f.RiotID(), "icon", string(f.Icon), "error", err)
		return ""
	}
	logger.Trace(slog.Default(), "avatar resolved", "icon", string(f.Icon), "path", path)
	return path
}
