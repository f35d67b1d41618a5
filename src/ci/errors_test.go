package ci

import (
	"errors"
	"fmt"
	"testing"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "auth", err: ErrAuthentication, want: "Authentication failed. Check your credentials."},
		{name: "wrapped auth", err: fmt.Errorf("refresh: %w", ErrAuthentication), want: "Authentication failed. Check your credentials."},
		{name: "invalid response", err: ErrInvalidResponse, want: "Invalid response from Jenkins server."},
		{name: "not found", err: &BuildNotFoundError{ID: 17}, want: "Build #17 not found."},
		{name: "server", err: &ServerError{Code: 502, Message: "bad gateway"}, want: "server error (502): bad gateway"},
		{name: "network", err: &NetworkError{Err: errors.New("dial tcp: timeout")}, want: "Cannot reach Jenkins server."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNetworkErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NetworkError{Err: cause}
	if !errors.Is(err, cause) {
		t.Error("NetworkError should unwrap to its cause")
	}
}

func TestServerErrorMessage(t *testing.T) {
	err := &ServerError{Code: 500}
	if got := err.Error(); got != "server error (500)" {
		t.Errorf("Error() = %q", got)
	}
}
