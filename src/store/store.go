// Package store defines the persistence contracts for credentials and
// settings, with OS-keyring and file-backed implementations plus in-memory
// doubles for tests.
package store

import "jenkwatch-agent/src/ci"

// CredentialStore persists the single set of Jenkins credentials.
type CredentialStore interface {
	// Save stores the credentials, replacing any previous set.
	Save(credentials ci.Credentials) error

	// Load returns the stored credentials, or (nil, nil) when none are
	// stored.
	Load() (*ci.Credentials, error)

	// Delete removes the stored credentials. Deleting credentials that do
	// not exist is success, not an error.
	Delete() error
}

// SettingsStore persists user settings. Load never fails outward: missing or
// corrupt persisted settings yield the full defaults, never a partial merge.
type SettingsStore interface {
	Save(settings ci.Settings) error
	Load() ci.Settings
}
