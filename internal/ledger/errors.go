package ledger

import (
	"errors"
	"fmt"

	"points/internal/store"
)

var (
	ErrNoOperationToUndo = errors.New("no operation to undo")
	ErrNoOperationToRedo = errors.New("no operation to redo")
	ErrStorage           = errors.New("storage failure")
	// ErrDuplicateOperation is returned by Apply when the operation id has
	// already been recorded. Nothing is written in that case.
	ErrDuplicateOperation = store.ErrDuplicateOperation
)

// StorageError wraps a backend failure. It matches both ErrStorage and the
// underlying error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrStorage, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }
