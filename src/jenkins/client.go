// Package jenkins provides a client for the Jenkins REST API and the
// repository adapter that translates its responses into domain entities.
package jenkins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jenkwatch-agent/src/ci"
)

const defaultTimeout = 30 * time.Second

// Client is a thin authenticated GET client for one Jenkins server.
// It maps every non-2xx status to the closed transport error set below and
// performs no retries; the poll interval is the retry cadence.
type Client struct {
	credentials ci.Credentials
	httpClient  *http.Client
}

// NewClient creates a client bound to the given credentials.
func NewClient(credentials ci.Credentials) *Client {
	return &Client{
		credentials: credentials,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// get issues a GET for the endpoint relative to the base URL and decodes the
// JSON body into out. Exactly one trailing slash is trimmed from the base so
// concatenation never produces a double slash while query strings already in
// the endpoint stay untouched.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	base := strings.TrimSuffix(c.credentials.BaseURL, "/")
	fullURL := base + "/" + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if !c.credentials.IsAnonymous() {
		req.SetBasicAuth(c.credentials.Username, c.credentials.APIToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failure: no status code was ever observed.
		return &networkError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &networkError{err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized:
		return errAuthenticationFailed
	case resp.StatusCode == http.StatusForbidden:
		return errForbidden
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode >= 500 && resp.StatusCode <= 599:
		return &serverError{code: resp.StatusCode, body: string(body)}
	default:
		return &unexpectedStatusError{code: resp.StatusCode}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

// Transport-level errors. These never leave the package: the repository
// translates them into the ci error taxonomy.
var (
	errAuthenticationFailed = errors.New("jenkins: authentication failed")
	errForbidden            = errors.New("jenkins: forbidden")
	errNotFound             = errors.New("jenkins: not found")
)

type serverError struct {
	code int
	body string
}

func (e *serverError) Error() string {
	return fmt.Sprintf("jenkins: server error %d", e.code)
}

type unexpectedStatusError struct {
	code int
}

func (e *unexpectedStatusError) Error() string {
	return fmt.Sprintf("jenkins: unexpected status code %d", e.code)
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("jenkins: failed to decode response: %v", e.err)
}

func (e *decodeError) Unwrap() error { return e.err }

type networkError struct {
	err error
}

func (e *networkError) Error() string {
	return fmt.Sprintf("jenkins: request failed: %v", e.err)
}

func (e *networkError) Unwrap() error { return e.err }
