package game

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for tile keys outside the current grid generation.
	ErrNotFound = errors.New("tile not found")
	// ErrInvalidCommand marks a rejected player command. No state was changed.
	ErrInvalidCommand = errors.New("invalid command")
	ErrSessionEnded   = errors.New("session has ended")
	ErrPaused         = errors.New("session is paused")
)

// CommandError carries the advisory message shown to the player for a
// rejected command.
type CommandError struct {
	Message string
}

func (e *CommandError) Error() string { return e.Message }

func (e *CommandError) Unwrap() error { return ErrInvalidCommand }

func rejectf(format string, args ...any) error {
	return &CommandError{Message: fmt.Sprintf(format, args...)}
}
