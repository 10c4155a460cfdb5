// Package tray implements the system tray icon and menu for the daemon.
//
// The tray owns the main goroutine while it runs. Everything else, including
// the poll loop, is started from the onStart callback and stopped from
// onExit.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Options configure the tray.
type Options struct {
	// Title is the app name shown in the header item and tooltip.
	Title string
	// Version is appended to the header item when set.
	Version string
	// Icon is the tray image (ICO on Windows, PNG elsewhere).
	Icon []byte
}

// ///////////////////////////////////////////////
// Menu State
// ///////////////////////////////////////////////

var (
	opts    Options
	onStart func()
	onExit  func()

	// mu guards status, notice, and the menu items below, which are nil
	// until onReady runs.
	mu         sync.Mutex
	status     string
	notice     string
	statusItem *systray.MenuItem
	noticeItem *systray.MenuItem
	quitItem   *systray.MenuItem
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called when the tray is ready; onExitFn when it exits.
func Run(o Options, onStartFn, onExitFn func()) {
	opts = o
	onStart = onStartFn
	onExit = onExitFn
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

// SetStatus updates the status line. Safe to call from any goroutine, before
// or after the tray is ready.
func SetStatus(text string) {
	mu.Lock()
	defer mu.Unlock()
	if text == status {
		return
	}
	status = text
	if statusItem != nil {
		statusItem.SetTitle(text)
		systray.SetTooltip(tooltip(opts.Title, text))
	}
}

// SetNotice shows a one-line notice such as an available update. An empty
// text hides the line.
func SetNotice(text string) {
	mu.Lock()
	defer mu.Unlock()
	notice = text
	if noticeItem != nil {
		applyNotice()
	}
}

// ///////////////////////////////////////////////
// Lifecycle
// ///////////////////////////////////////////////

func onReady() {
	if len(opts.Icon) > 0 {
		systray.SetIcon(opts.Icon)
	}

	header := systray.AddMenuItem(headerTitle(opts.Title, opts.Version), "")
	header.Disable()

	mu.Lock()
	statusItem = systray.AddMenuItem(statusOrDefault(status), "")
	statusItem.Disable()
	noticeItem = systray.AddMenuItem("", "")
	noticeItem.Disable()
	applyNotice()
	systray.SetTooltip(tooltip(opts.Title, status))
	mu.Unlock()

	systray.AddSeparator()
	quitItem = systray.AddMenuItem("Quit", "Quit "+opts.Title)

	if onStart != nil {
		onStart()
	}

	go handleClicks()
}

func onQuit() {
	if onExit != nil {
		onExit()
	}
}

func handleClicks() {
	<-quitItem.ClickedCh
	systray.Quit()
}

// applyNotice syncs noticeItem with notice. Caller holds mu.
func applyNotice() {
	if notice == "" {
		noticeItem.Hide()
		return
	}
	noticeItem.SetTitle(notice)
	noticeItem.Show()
}

// ///////////////////////////////////////////////
// Labels
// ///////////////////////////////////////////////

func headerTitle(title, version string) string {
	if version == "" {
		return title
	}
	return title + " v" + version
}

func statusOrDefault(s string) string {
	if s == "" {
		return "Starting..."
	}
	return s
}

// tooltip returns the hover text. Windows truncates tooltips at 127
// characters, so the status is dropped rather than cut mid-word.
func tooltip(title, status string) string {
	if status == "" {
		return title
	}
	t := title + ": " + status
	if len(t) > 127 {
		return title
	}
	return t
}
