package auth

import "context"

// MockVerifier returns a fixed user or error for every token.
type MockVerifier struct {
	User  *User
	Error error
}

func (m *MockVerifier) Verify(_ context.Context, _ string) (*User, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	return m.User, nil
}

// TestUser is the caller used across handler tests.
func TestUser() *User {
	return &User{ID: "test-user-123", Email: "test@example.com", EmailVerified: true}
}

var _ Verifier = (*MockVerifier)(nil)
