package ci

import (
	"errors"
	"fmt"
)

// The repository error taxonomy is closed: every error crossing the
// repository boundary is one of the values below. Raw transport or decoding
// errors never escape.
var (
	ErrAuthentication  = errors.New("authentication failed")
	ErrInvalidResponse = errors.New("invalid response from server")
)

// BuildNotFoundError reports that a specific build no longer exists on the
// server (deleted or rotated out), as opposed to a malformed reply.
type BuildNotFoundError struct {
	ID int
}

func (e *BuildNotFoundError) Error() string {
	return fmt.Sprintf("build #%d not found", e.ID)
}

// ServerError is a 5xx reply, with the response body when it was readable.
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error (%d)", e.Code)
	}
	return fmt.Sprintf("server error (%d): %s", e.Code, e.Message)
}

// NetworkError is a transport-level failure (DNS, TLS, timeout, refused
// connection) raised before any HTTP status was observed.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UserMessage renders a repository error as a single line suitable for the
// status bar or CLI output.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var nf *BuildNotFoundError
	var srv *ServerError
	var net *NetworkError
	switch {
	case errors.Is(err, ErrAuthentication):
		return "Authentication failed. Check your credentials."
	case errors.Is(err, ErrInvalidResponse):
		return "Invalid response from Jenkins server."
	case errors.As(err, &nf):
		return fmt.Sprintf("Build #%d not found.", nf.ID)
	case errors.As(err, &srv):
		return srv.Error()
	case errors.As(err, &net):
		return "Cannot reach Jenkins server."
	}
	return err.Error()
}
