package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"jenkwatch-agent/src/ci"
)

const (
	keyringService = "jenkwatch"
	keyringUser    = "jenkins-credentials"
)

// KeyringStore keeps credentials in the OS keyring (Secret Service on
// Linux, Keychain on macOS, Credential Manager on Windows) as a single JSON
// blob under the jenkwatch service entry.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates the default keyring-backed credential store.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: keyringService}
}

func (s *KeyringStore) Save(credentials ci.Credentials) error {
	blob, err := json.Marshal(credentials)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := keyring.Set(s.service, keyringUser, string(blob)); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

func (s *KeyringStore) Load() (*ci.Credentials, error) {
	blob, err := keyring.Get(s.service, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	var credentials ci.Credentials
	if err := json.Unmarshal([]byte(blob), &credentials); err != nil {
		return nil, fmt.Errorf("failed to decode stored credentials: %w", err)
	}
	if !credentials.Valid() {
		return nil, fmt.Errorf("stored credentials are malformed")
	}
	return &credentials, nil
}

func (s *KeyringStore) Delete() error {
	err := keyring.Delete(s.service, keyringUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}
