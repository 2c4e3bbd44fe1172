// Package firebase builds the Firebase Admin clients the server depends on.
package firebase

import (
	"context"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/cockroachdb/errors"
	"google.golang.org/api/option"
)

// Config selects the project, the optional service account file, and which
// clients to create.
type Config struct {
	ProjectID       string
	CredentialsFile string
	Auth            bool
	Firestore       bool
}

// Clients holds the clients requested in Config. Unrequested ones are nil.
type Clients struct {
	Auth      *auth.Client
	Firestore *firestore.Client
}

// InitializeClients creates the Firebase app and the requested clients. The
// emulator hosts in FIRESTORE_EMULATOR_HOST and FIREBASE_AUTH_EMULATOR_HOST are
// honored by the SDK.
func InitializeClients(ctx context.Context, cfg Config) (*Clients, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		creds, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, errors.Wrap(err, "read credentials")
		}
		opts = append(opts, option.WithCredentialsJSON(creds))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "firebase app")
	}

	clients := &Clients{}
	if cfg.Auth {
		if clients.Auth, err = app.Auth(ctx); err != nil {
			return nil, errors.Wrap(err, "firebase auth client")
		}
	}
	if cfg.Firestore {
		if clients.Firestore, err = app.Firestore(ctx); err != nil {
			return nil, errors.Wrap(err, "firestore client")
		}
	}
	return clients, nil
}

// Close releases the Firestore connection, if any.
func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}
