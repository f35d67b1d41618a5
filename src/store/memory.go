package store

import (
	"sync"

	"jenkwatch-agent/src/ci"
)

// MemoryCredentialStore is an in-memory CredentialStore for tests. Error
// fields let tests force individual operations to fail.
type MemoryCredentialStore struct {
	mu          sync.Mutex
	credentials *ci.Credentials

	SaveErr   error
	LoadErr   error
	DeleteErr error
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

func (s *MemoryCredentialStore) Save(credentials ci.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	c := credentials
	s.credentials = &c
	return nil
}

func (s *MemoryCredentialStore) Load() (*ci.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.credentials == nil {
		return nil, nil
	}
	c := *s.credentials
	return &c, nil
}

func (s *MemoryCredentialStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.credentials = nil
	return nil
}

// Stored returns the currently held credentials, for assertions.
func (s *MemoryCredentialStore) Stored() *ci.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credentials == nil {
		return nil
	}
	c := *s.credentials
	return &c
}

// MemorySettingsStore is an in-memory SettingsStore for tests.
type MemorySettingsStore struct {
	mu       sync.Mutex
	settings *ci.Settings
}

func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{}
}

func (s *MemorySettingsStore) Save(settings ci.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := settings
	s.settings = &c
	return nil
}

func (s *MemorySettingsStore) Load() ci.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil || !s.settings.Valid() {
		return ci.DefaultSettings()
	}
	return *s.settings
}
