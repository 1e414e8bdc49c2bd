package repositories

import (
	"encoding/json"
	"fmt"

	"github.com/desertthunder/shopx/internal/models"
)

// SessionKey is the client_state key holding the session blob.
const SessionKey = "app_session"

// SessionStore persists the signed-in [models.Session].
type SessionStore struct {
	state *StateRepository
}

// NewSessionStore creates a [SessionStore] on top of state.
func NewSessionStore(state *StateRepository) *SessionStore {
	return &SessionStore{state: state}
}

// Get returns the stored session, or nil when there is none or the blob cannot be decoded.
func (s *SessionStore) Get() (*models.Session, error) {
	raw, ok, err := s.state.Get(SessionKey)
	if err != nil || !ok {
		return nil, err
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, nil
	}
	return &sess, nil
}

// Set stores sess as the current session.
func (s *SessionStore) Set(sess models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.state.Set(SessionKey, string(data))
}

// Clear removes the stored session.
func (s *SessionStore) Clear() error {
	return s.state.Delete(SessionKey)
}

// IsAuthenticated reports whether a readable session is stored.
func (s *SessionStore) IsAuthenticated() bool {
	sess, err := s.Get()
	return err == nil && sess != nil
}
