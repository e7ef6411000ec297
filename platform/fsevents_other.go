//go:build !darwin || !cgo
// +build !darwin !cgo

package platform

import "errors"

func newFSEventsBackend() (Backend, error) {
	return nil, errors.New("the fsevents backend requires macOS and cgo")
}
