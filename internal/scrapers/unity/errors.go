package unity

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork        = errors.New("network error")
	ErrAuthentication = errors.New("authentication error")
)

// NetworkError is returned when a GET could not be completed, either because
// the transport failed (Err is set) or because the server answered with a
// status the caller cannot use.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: GET %s: %v", ErrNetwork.Error(), e.URL, e.Err)
	}
	return fmt.Sprintf("%s: GET %s: unexpected status %d", ErrNetwork.Error(), e.URL, e.StatusCode)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// AuthenticationError is returned when the forum answers a session hop with
// a response of the wrong shape.
type AuthenticationError struct {
	State      SessionState
	URL        string
	StatusCode int
	Reason     string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf(
		"%s: %s (state %s, GET %s, status %d)",
		ErrAuthentication.Error(), e.Reason, e.State, e.URL, e.StatusCode,
	)
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}
