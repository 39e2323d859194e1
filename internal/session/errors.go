package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNotIdle rejects Start while another session exists.
	ErrNotIdle = errors.New("session already running")
	// ErrLanguageRequired rejects fixed mode without a language.
	ErrLanguageRequired = errors.New("fixed mode requires a language")
	// ErrTransportClosed ends an active session the user did not stop.
	ErrTransportClosed = errors.New("connection to recognizer lost")
)

// Start stages a StartError can come from.
const (
	StageResolve = "resolve"
	StageConnect = "connect"
	StageCapture = "capture"
)

// StartError marks a failure that aborted Start and left the controller Idle.
type StartError struct {
	Stage string
	Err   error
}

func (e *StartError) Error() string {
	if e == nil || e.Err == nil {
		return "session start failed"
	}
	return fmt.Sprintf("session start failed (%s): %v", e.Stage, e.Err)
}

func (e *StartError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newStartError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StartError{Stage: stage, Err: err}
}

func IsFatalStartError(err error) bool {
	var se *StartError
	return errors.As(err, &se)
}
