package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrProfileNotFound = errors.New("profile not found")
)

const (
	CodeNetworkTimeout = "NETWORK_TIMEOUT"
	CodeRemoteRejected = "REMOTE_REJECTED"
)

const friendlyTimeoutMessage = "the connection is taking too long, try again"

// SaveError is the terminal failure of a save invocation: both the primary
// merge procedure and the fallback upsert have failed. Code is stable for
// programmatic handling; Message is safe to show to the user.
type SaveError struct {
	Code    string
	Message string
	Elapsed time.Duration
	Err     error
}

func (e *SaveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("save profile (%s): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("save profile (%s): %s", e.Code, e.Message)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// RejectionError is returned by stores when the remote side answered with a
// structured error (constraint violation, permission denial) rather than
// timing out.
type RejectionError struct {
	Code    string
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("remote rejection %s: %s", e.Code, e.Message)
}

func isTimeoutErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
