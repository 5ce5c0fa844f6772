//go:build windows

package platform

import (
	"strings"

	"github.com/go-toast/toast"
)

// Notify shows a toast in the Windows notification center.
func Notify(title, body string, opts Options) error {
	n := toast.Notification{
		AppID:   AppName,
		Title:   title,
		Message: body,
		Icon:    strings.TrimSpace(opts.IconPath),
	}
	return n.Push()
}
