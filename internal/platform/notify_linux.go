//go:build linux

package platform

import (
	"github.com/godbus/dbus/v5"
)

const (
	notifyService = "org.freedesktop.Notifications"
	notifyPath    = "/org/freedesktop/Notifications"
	expireMillis  = int32(5000)
)

// Notify sends a desktop notification over the session bus.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	hints := map[string]dbus.Variant{}
	expire := expireMillis
	if opts.Urgent {
		hints["urgency"] = dbus.MakeVariant(byte(2))
		expire = 0
	}
	obj := conn.Object(notifyService, notifyPath)
	call := obj.Call(notifyService+".Notify", 0,
		AppName, uint32(0), opts.IconPath, title, body, []string{}, hints, expire)
	return call.Err
}
