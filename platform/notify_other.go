//go:build !linux
// +build !linux

package platform

import (
	"github.com/rjeczalik/notify"
	"github.com/sirupsen/logrus"
)

func eventFields(evinfo notify.EventInfo) logrus.Fields {
	return logrus.Fields{"event": evinfo.Event()}
}
