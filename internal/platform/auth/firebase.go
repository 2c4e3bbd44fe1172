package auth

import (
	"context"

	fbauth "firebase.google.com/go/v4/auth"
)

// FirebaseVerifier checks Firebase ID tokens, including revocation.
type FirebaseVerifier struct {
	client *fbauth.Client
}

func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*User, error) {
	token, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, firebaseError(err)
	}
	email, _ := token.Claims["email"].(string)
	verified, _ := token.Claims["email_verified"].(bool)
	return &User{ID: token.UID, Email: email, EmailVerified: verified}, nil
}

func firebaseError(err error) error {
	switch {
	case fbauth.IsCertificateFetchFailed(err):
		return ErrCertificateFetch
	case fbauth.IsIDTokenExpired(err):
		return ErrTokenExpired
	case fbauth.IsIDTokenRevoked(err):
		return ErrTokenRevoked
	case fbauth.IsUserDisabled(err):
		return ErrUserDisabled
	default:
		return ErrInvalidToken
	}
}

var _ Verifier = (*FirebaseVerifier)(nil)
