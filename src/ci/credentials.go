package ci

import (
	"fmt"
	"net/url"
	"strings"
)

// Credentials identify a Jenkins server and, optionally, a user on it.
// Username and APIToken are either both set or both empty; the anonymous
// form sends no Authorization header at all.
type Credentials struct {
	BaseURL  string `json:"base_url"`
	Username string `json:"username,omitempty"`
	APIToken string `json:"api_token,omitempty"`
}

// BasicAuth builds credentials for HTTP Basic auth with a Jenkins API token.
func BasicAuth(baseURL, username, apiToken string) (Credentials, error) {
	if username == "" || apiToken == "" {
		return Credentials{}, fmt.Errorf("username and api token are both required for basic auth")
	}
	if err := validateBaseURL(baseURL); err != nil {
		return Credentials{}, err
	}
	return Credentials{BaseURL: baseURL, Username: username, APIToken: apiToken}, nil
}

// Anonymous builds credentials for servers that allow unauthenticated reads.
func Anonymous(baseURL string) (Credentials, error) {
	if err := validateBaseURL(baseURL); err != nil {
		return Credentials{}, err
	}
	return Credentials{BaseURL: baseURL}, nil
}

// IsAnonymous reports whether these credentials carry no user identity.
func (c Credentials) IsAnonymous() bool {
	return c.Username == "" && c.APIToken == ""
}

// Valid reports whether the credentials hold a parseable base URL and an
// all-or-nothing username/token pair. Used when loading persisted
// credentials that did not go through a constructor.
func (c Credentials) Valid() bool {
	if validateBaseURL(c.BaseURL) != nil {
		return false
	}
	return (c.Username == "") == (c.APIToken == "")
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid server URL %q: %w", raw, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("server URL %q must be absolute", raw)
	}
	return nil
}
