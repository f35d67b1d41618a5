package ci

import "testing"

func TestBasicAuth(t *testing.T) {
	creds, err := BasicAuth("https://jenkins.example.com", "alice", "tok123")
	if err != nil {
		t.Fatalf("BasicAuth() error = %v", err)
	}
	if creds.IsAnonymous() {
		t.Error("basic-auth credentials should not be anonymous")
	}
	if !creds.Valid() {
		t.Error("constructor output should be valid")
	}
}

func TestBasicAuth_RequiresBothFields(t *testing.T) {
	if _, err := BasicAuth("https://jenkins.example.com", "alice", ""); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := BasicAuth("https://jenkins.example.com", "", "tok123"); err == nil {
		t.Error("expected error for missing username")
	}
}

func TestAnonymous(t *testing.T) {
	creds, err := Anonymous("https://jenkins.example.com/")
	if err != nil {
		t.Fatalf("Anonymous() error = %v", err)
	}
	if !creds.IsAnonymous() {
		t.Error("anonymous credentials should report IsAnonymous")
	}
	if !creds.Valid() {
		t.Error("anonymous credentials should be valid")
	}
}

func TestCredentials_BadURL(t *testing.T) {
	tests := []string{"", "not-a-url", "/relative/path", "jenkins.example.com"}
	for _, raw := range tests {
		if _, err := Anonymous(raw); err == nil {
			t.Errorf("Anonymous(%q) accepted an invalid URL", raw)
		}
	}
}

func TestCredentials_Valid_AllOrNothing(t *testing.T) {
	// Loaded from storage without a constructor: username without a token
	// violates the pairing invariant.
	creds := Credentials{BaseURL: "https://jenkins.example.com", Username: "alice"}
	if creds.Valid() {
		t.Error("username without token should be invalid")
	}
	creds = Credentials{BaseURL: "https://jenkins.example.com", APIToken: "tok"}
	if creds.Valid() {
		t.Error("token without username should be invalid")
	}
}
