// Package repo is the write path for household records: it assigns ids and
// timestamps, persists to the local store first, and queues a remote push
// for every successful write. Reads always come from the local store, so
// the app behaves the same with or without a network.
package repo

import (
	"errors"
	"time"
)

// ErrNotFound is returned when an update or delete names a record the
// local store does not have.
var ErrNotFound = errors.New("record not found")

func nowUTC() time.Time {
	return time.Now().UTC()
}
