package platform

import (
	"fmt"

	"github.com/rjeczalik/notify"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// eventFields decodes the raw inotify event for debug logging.
func eventFields(evinfo notify.EventInfo) logrus.Fields {
	fields := logrus.Fields{"event": evinfo.Event()}

	ev, ok := evinfo.Sys().(*unix.InotifyEvent)
	if !ok {
		return fields
	}

	fields["mask"] = fmt.Sprintf("0x%x", ev.Mask)
	fields["isdir"] = ev.Mask&unix.IN_ISDIR != 0

	if ev.Cookie != 0 {
		fields["cookie"] = ev.Cookie
	}

	return fields
}
