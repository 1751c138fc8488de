package command

import (
	"errors"
	"fmt"

	"points/internal/ledger"
	"points/internal/selector"
)

var errUnknownVerb = errors.New("unknown verb")

// messageError is a failure the sender sees as a catalog message.
type messageError struct {
	key  string
	args []any
	err  error
}

func (e *messageError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.key, e.err)
	}
	return e.key
}

func (e *messageError) Unwrap() error { return e.err }

func fail(key string, args ...any) *messageError {
	return &messageError{key: key, args: args}
}

// classify turns any error into the message shown to the sender. The
// second result is false for failures nobody anticipated.
func classify(err error) (*messageError, bool) {
	var msgErr *messageError
	if errors.As(err, &msgErr) {
		return msgErr, true
	}

	var resolveErr *selector.ResolveError
	if errors.As(err, &resolveErr) {
		switch {
		case errors.Is(err, selector.ErrReferenceNotFound) && resolveErr.Category == selector.Players:
			return &messageError{key: "command.error.player_not_found", args: []any{resolveErr.Reference}, err: err}, true
		case errors.Is(err, selector.ErrReferenceNotFound):
			return &messageError{key: "command.error.team_not_found", args: []any{resolveErr.Reference}, err: err}, true
		default:
			return &messageError{key: "command.error.illegal_selector", args: []any{resolveErr.Clause}, err: err}, true
		}
	}

	switch {
	case errors.Is(err, ledger.ErrNoOperationToUndo):
		return &messageError{key: "command.undo.operation_not_found", err: err}, true
	case errors.Is(err, ledger.ErrNoOperationToRedo):
		return &messageError{key: "command.redo.operation_not_found", err: err}, true
	case errors.Is(err, errUnknownVerb):
		return &messageError{key: "command.error.illegal_arguments", err: err}, true
	}

	return &messageError{key: "command.error.unexpected_error", err: err}, false
}
