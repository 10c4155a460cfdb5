//go:build windows

package notify

import (
	toast "git.sr.ht/~jackmordaunt/go-toast"
)

// Notify pushes a Windows toast. The sound plays through the toast itself.
func (d *Desktop) Notify(n Notification) error {
	t := toast.Notification{
		AppID:    d.AppName,
		Title:    n.Title,
		Body:     n.Body,
		Icon:     n.Image,
		Audio:    toastSound(n.Sound),
		Duration: toast.Short,
	}
	return t.Push()
}
