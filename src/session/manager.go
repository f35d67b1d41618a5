// Package session owns the credential lifecycle: validating new credentials
// against the server, restoring persisted ones at boot, and tearing the
// session down on logout or authentication failure.
package session

import (
	"context"
	"fmt"
	"sync"

	"jenkwatch-agent/src/ci"
	"jenkwatch-agent/src/jenkins"
	"jenkwatch-agent/src/logger"
	"jenkwatch-agent/src/store"
)

// RepositoryFactory builds a repository bound to credentials and a job path.
// Tests substitute fakes here.
type RepositoryFactory func(credentials ci.Credentials, jobPath string) ci.Repository

// DefaultRepositoryFactory builds the real Jenkins repository.
func DefaultRepositoryFactory(credentials ci.Credentials, jobPath string) ci.Repository {
	return jenkins.NewRepository(credentials, jobPath)
}

// Manager holds the live credentials and the repository bound to them.
// It has two states: unauthenticated (no credentials, no repository) and
// authenticated. All transitions are serialized behind one mutex.
type Manager struct {
	mu          sync.Mutex
	credentials *ci.Credentials
	repo        ci.Repository
	jobPath     string

	credStore store.CredentialStore
	factory   RepositoryFactory
	log       logger.Logger
}

// NewManager creates an unauthenticated manager.
func NewManager(credStore store.CredentialStore, jobPath string, factory RepositoryFactory, log logger.Logger) *Manager {
	if factory == nil {
		factory = DefaultRepositoryFactory
	}
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Manager{
		credStore: credStore,
		jobPath:   jobPath,
		factory:   factory,
		log:       log,
	}
}

// Authenticate persists the credentials, rebinds the repository, and runs
// one live fetch as a validation probe. On probe failure the just-persisted
// credentials are rolled back and the original fetch error is returned; the
// manager stays (or returns to) unauthenticated.
func (m *Manager) Authenticate(ctx context.Context, credentials ci.Credentials) ([]ci.Build, error) {
	if !credentials.Valid() {
		return nil, fmt.Errorf("credentials are malformed")
	}

	m.mu.Lock()
	if err := m.credStore.Save(credentials); err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("failed to persist credentials: %w", err)
	}
	repo := m.factory(credentials, m.jobPath)
	jobPath := m.jobPath
	m.mu.Unlock()

	m.log.Debug("validating credentials against %s (%s)", credentials.BaseURL, jobPath)
	builds, err := repo.FetchBuilds(ctx)
	if err != nil {
		// Roll back so a failed login leaves the store untouched.
		if delErr := m.credStore.Delete(); delErr != nil {
			m.log.Error("failed to remove rejected credentials: %v", delErr)
		}
		m.mu.Lock()
		m.credentials = nil
		m.repo = nil
		m.mu.Unlock()
		return nil, err
	}

	m.mu.Lock()
	c := credentials
	m.credentials = &c
	m.repo = repo
	m.mu.Unlock()
	m.log.Info("authenticated against %s", credentials.BaseURL)
	return builds, nil
}

// Restore loads persisted credentials and, when present, optimistically
// transitions to authenticated without a validation probe; the first
// scheduled refresh demotes on failure. Returns whether a session was
// restored.
func (m *Manager) Restore() (bool, error) {
	credentials, err := m.credStore.Load()
	if err != nil {
		return false, err
	}
	if credentials == nil {
		return false, nil
	}

	m.mu.Lock()
	m.credentials = credentials
	m.repo = m.factory(*credentials, m.jobPath)
	m.mu.Unlock()
	m.log.Info("restored session for %s", credentials.BaseURL)
	return true, nil
}

// Logout deletes persisted credentials and clears the session. Logging out
// while unauthenticated is a no-op, never an error.
func (m *Manager) Logout() error {
	if err := m.credStore.Delete(); err != nil {
		return err
	}
	m.mu.Lock()
	m.credentials = nil
	m.repo = nil
	m.mu.Unlock()
	return nil
}

// Demote clears the session after an authentication-class error and deletes
// the now-invalid stored credentials, so a revoked token cannot strand the
// app in a falsely-authenticated state. Returns whether the manager was
// authenticated.
func (m *Manager) Demote() bool {
	m.mu.Lock()
	wasAuthenticated := m.credentials != nil
	m.credentials = nil
	m.repo = nil
	m.mu.Unlock()

	if wasAuthenticated {
		if err := m.credStore.Delete(); err != nil {
			m.log.Error("failed to delete invalid credentials: %v", err)
		}
	}
	return wasAuthenticated
}

// SetJobPath rebinds the repository to a new job path, keeping the current
// credentials. No-op while unauthenticated beyond recording the path.
func (m *Manager) SetJobPath(jobPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobPath = jobPath
	if m.credentials != nil {
		m.repo = m.factory(*m.credentials, jobPath)
	}
}

// IsAuthenticated reports whether a session is active.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.credentials != nil
}

// Repository returns the repository bound to the current credentials, or nil
// while unauthenticated.
func (m *Manager) Repository() ci.Repository {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo
}

// Credentials returns a copy of the active credentials, or nil.
func (m *Manager) Credentials() *ci.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.credentials == nil {
		return nil
	}
	c := *m.credentials
	return &c
}
