// Package testutil holds helpers for tests that run against the Firebase
// emulators. Tests skip when the emulators are not listening.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"
)

const (
	AuthEmulatorHost      = "127.0.0.1:7110"
	FirestoreEmulatorHost = "127.0.0.1:7130"
	ProjectID             = "demo-test-project"
	fakeAPIKey            = "fake-api-key" //nolint:gosec // emulator accepts any key
)

func reachable(host string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// SkipIfEmulatorUnavailable skips unless both the Auth and Firestore emulators run.
func SkipIfEmulatorUnavailable(t *testing.T) {
	t.Helper()
	if !reachable(AuthEmulatorHost) || !reachable(FirestoreEmulatorHost) {
		t.Skip("Firebase emulators not available")
	}
}

// SkipIfFirestoreUnavailable skips unless the Firestore emulator runs.
func SkipIfFirestoreUnavailable(t *testing.T) {
	t.Helper()
	if !reachable(FirestoreEmulatorHost) {
		t.Skip("Firestore emulator not available")
	}
}

// SetupEmulator points the Firebase SDKs at the local emulators for this test.
func SetupEmulator(t *testing.T) {
	t.Helper()
	t.Setenv("FIREBASE_AUTH_EMULATOR_HOST", AuthEmulatorHost)
	t.Setenv("FIRESTORE_EMULATOR_HOST", FirestoreEmulatorHost)
}

func emulatorDelete(t *testing.T, url string) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE %s: %v", url, err)
	}
	_ = resp.Body.Close()
}

// ClearAccounts removes every user from the Auth emulator.
func ClearAccounts(t *testing.T) {
	t.Helper()
	emulatorDelete(t, fmt.Sprintf("http://%s/emulator/v1/projects/%s/accounts", AuthEmulatorHost, ProjectID))
}

// ClearFirestore removes every document from the Firestore emulator.
func ClearFirestore(t *testing.T) {
	t.Helper()
	emulatorDelete(t, fmt.Sprintf("http://%s/emulator/v1/projects/%s/databases/(default)/documents",
		FirestoreEmulatorHost, ProjectID))
}

// ClearEmulators clears the Firestore emulator and, when it runs, the Auth emulator.
func ClearEmulators(t *testing.T) {
	t.Helper()
	if reachable(AuthEmulatorHost) {
		ClearAccounts(t)
	}
	ClearFirestore(t)
}

// SignUpResponse is the Auth emulator's accounts:signUp reply.
type SignUpResponse struct {
	IDToken string `json:"idToken"`
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

// CreateTestUser signs up a user in the Auth emulator and returns its ID token.
func CreateTestUser(t *testing.T, email, password string) *SignUpResponse {
	t.Helper()
	url := fmt.Sprintf("http://%s/identitytoolkit.googleapis.com/v1/accounts:signUp?key=%s",
		AuthEmulatorHost, fakeAPIKey)
	body, _ := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("sign up test user: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out SignUpResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode sign up: %v", err)
	}
	return &out
}
