package broker

import (
	"errors"
	"fmt"
)

// ErrReceiveTimeout is returned by Consumer.Receive when no message arrives within
// the caller's timeout.
var ErrReceiveTimeout = errors.New("timed out waiting for a message")

// ErrConnectionClosed is returned when an operation is attempted on a connection or
// session the broker has closed.
var ErrConnectionClosed = errors.New("connection is closed")

// ErrDial is returned when the initial connection to the broker cannot be made
// within the factory's configured retries.
type ErrDial struct {
	// The address dialed.
	URL string
	// Attempts made before giving up.
	Attempts int
	// The last dial error.
	LastErr error
}

func (err ErrDial) Unwrap() error {
	return err.LastErr
}

func (err ErrDial) Error() string {
	return fmt.Sprintf(
		"error dialing %v after %v attempt(s): %v", err.URL, err.Attempts, err.LastErr,
	)
}

// ErrNotTransacted is returned by Session.Commit and Session.Rollback on sessions
// that were not created in transacted mode.
var ErrNotTransacted = errors.New("session is not transacted")
