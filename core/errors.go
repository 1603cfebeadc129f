package core

import (
	"errors"
	"log/slog"
)

var (
	ErrEndOfBuffer     = errors.New("end of buffer")
	ErrStartOfBuffer   = errors.New("start of buffer")
	ErrEndOfLine       = errors.New("end of line")
	ErrStartOfLine     = errors.New("start of line")
	ErrInvalidPosition = errors.New("invalid position")
	ErrNoClipboard     = errors.New("clipboard handler not set")
	ErrOldestChange    = errors.New("already at oldest change")
	ErrNewestChange    = errors.New("already at newest change")
)

type ErrorId int

const (
	ErrEndOfBufferId ErrorId = iota
	ErrStartOfBufferId
	ErrEndOfLineId
	ErrStartOfLineId
	ErrInvalidPositionId
	ErrFailedToPasteId
	ErrUndoFailedId
	ErrRedoFailedId
	ErrCopyFailedId
)

// Error pairs an editing failure with an id consumers can switch on.
type Error struct {
	id  ErrorId
	err error
}

func newError(id ErrorId, err error) *Error {
	return &Error{id: id, err: err}
}

func (e *Error) ID() ErrorId {
	return e.id
}

func (e *Error) Error() string {
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *editor) DispatchError(id ErrorId, err error) {
	select {
	case e.updateSignal <- ErrorSignal{id, err}:
	default:
		slog.Warn("signal channel is full, dropping error", "id", id, "error", err)
	}
}
