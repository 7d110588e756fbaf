package db

import (
	"errors"
	"fmt"
)

// ErrStorage marks any failure coming out of the persistence layer,
// including transaction conflicts and timeouts. Callers match it with
// errors.Is; the original cause stays in the message.
var ErrStorage = errors.New("storage_failure")

// WrapError tags a storage-layer error with ErrStorage. Domain sentinel
// errors pass through untouched.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
