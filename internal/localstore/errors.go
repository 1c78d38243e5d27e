package localstore

import "fmt"

// StorageError reports a failure of the device database itself (disk
// unavailable, corruption, quota). Callers treat writes as best-effort and
// surface these to the user without rolling anything back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
