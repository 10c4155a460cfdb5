package notify

import (
	"strings"

	toast "git.sr.ht/~jackmordaunt/go-toast"
)

// ///////////////////////////////////////////////
// Desktop Notifier
// ///////////////////////////////////////////////

// Desktop shows notifications through the operating system: toast
// notifications on Windows, beeep elsewhere.
type Desktop struct {
	// AppName is shown as the notification source.
	AppName string
}

// NewDesktop returns a Desktop notifier labeled appName.
func NewDesktop(appName string) *Desktop {
	return &Desktop{AppName: appName}
}

// soundPrefix is the Windows notification sound URI namespace.
const soundPrefix = "ms-winsoundevent:Notification."

// toastSound maps a short sound name like "IM" to its Windows sound URI.
// Empty means silent; full URIs pass through.
func toastSound(name string) string {
	switch {
	case name == "":
		return toast.Silent
	case strings.HasPrefix(name, "ms-winsoundevent:"):
		return name
	default:
		return soundPrefix + name
	}
}
