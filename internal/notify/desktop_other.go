//go:build !windows

package notify

import (
	"github.com/gen2brain/beeep"
)

// Notify shows a notification through beeep. A non-empty sound uses
// [beeep.Alert], which plays the platform's default alert sound; named
// sounds only exist on Windows.
func (d *Desktop) Notify(n Notification) error {
	if d.AppName != "" {
		beeep.AppName = d.AppName
	}
	if n.Sound != "" {
		return beeep.Alert(n.Title, n.Body, n.Image)
	}
	return beeep.Notify(n.Title, n.Body, n.Image)
}
