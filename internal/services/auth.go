package services

import (
	"context"
	"time"

	"github.com/desertthunder/shopx/internal/models"
	"github.com/desertthunder/shopx/internal/shared"
)

// Authenticator checks a login and returns the session to store.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.Session, error)
}

// ConfigAuthenticator compares credentials against the configured pair in plaintext.
//
// This gates the admin screens against accidental use only. It is not access control.
type ConfigAuthenticator struct {
	Username string
	Password string
	now      func() time.Time
}

// NewConfigAuthenticator creates a [ConfigAuthenticator] from the credentials config section.
func NewConfigAuthenticator(cfg shared.CredentialsConfig) *ConfigAuthenticator {
	return &ConfigAuthenticator{Username: cfg.Username, Password: cfg.Password, now: time.Now}
}

func (a *ConfigAuthenticator) Authenticate(_ context.Context, username, password string) (*models.Session, error) {
	if a.Username == "" {
		return nil, shared.ErrMissingCredentials
	}
	if username != a.Username || password != a.Password {
		return nil, shared.ErrInvalidCredentials
	}
	now := time.Now
	if a.now != nil {
		now = a.now
	}
	return &models.Session{Username: username, LoginAt: now().UTC()}, nil
}
