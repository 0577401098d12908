package arbiter

import (
	"errors"
	"fmt"
)

// Kind categorises a failed move request.
type Kind string

const (
	// Timeout: the module exceeded the wall-clock or CPU ceiling.
	Timeout Kind = "timeout"

	// AbnormalExit: the module crashed, was rejected, produced no
	// parseable payload, or could not be started.
	AbnormalExit Kind = "abnormal_exit"

	// InvalidMove: the module answered with a coordinate outside the board,
	// a non-integer coordinate, or a full column.
	InvalidMove Kind = "invalid_move"
)

// FailureError reports a move request that did not yield a usable move.
//
// The message names the module and the category only. Process internals
// (exit codes, signals, stderr) are logged, never surfaced.
type FailureError struct {
	// Kind is the failure category.
	Kind Kind

	// Module is the locator the request ran.
	Module string

	// X and Y are the offending coordinate for InvalidMove, when the module
	// produced integers. Zero otherwise.
	X, Y int
}

// Error implements the error interface.
func (e *FailureError) Error() string {
	switch e.Kind {
	case Timeout:
		return fmt.Sprintf("module %s did not respond in time", e.Module)
	case InvalidMove:
		return fmt.Sprintf("module %s returned an invalid coordinate (%d, %d)", e.Module, e.X, e.Y)
	default:
		return fmt.Sprintf("module %s terminated abnormally", e.Module)
	}
}

// KindOf extracts the failure kind from err. Uses errors.As to handle
// wrapped errors.
func KindOf(err error) (Kind, bool) {
	var fe *FailureError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

// IsTimeout returns true if err is a Timeout failure.
func IsTimeout(err error) bool {
	k, ok := KindOf(err)
	return ok && k == Timeout
}

// IsAbnormalExit returns true if err is an AbnormalExit failure.
func IsAbnormalExit(err error) bool {
	k, ok := KindOf(err)
	return ok && k == AbnormalExit
}

// IsInvalidMove returns true if err is an InvalidMove failure.
func IsInvalidMove(err error) bool {
	k, ok := KindOf(err)
	return ok && k == InvalidMove
}
