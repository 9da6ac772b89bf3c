package model

import (
	"encoding/json"
	"time"
)

// SessionID is an opaque, unguessable visitor identifier carried in a cookie
type SessionID string

// Session holds per-visitor state between requests
type Session struct {
	ID        SessionID                  `json:"id"`
	CreatedAt time.Time                  `json:"created_at"`
	Values    map[string]json.RawMessage `json:"values"`
}

// NewSession creates an empty session
func NewSession(id SessionID, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		Values:    make(map[string]json.RawMessage),
	}
}

// Get decodes the value stored under key into dst
// Returns false if the key is absent
func (s *Session) Get(key string, dst any) (bool, error) {
	raw, ok := s.Values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores v under key
func (s *Session) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if s.Values == nil {
		s.Values = make(map[string]json.RawMessage)
	}
	s.Values[key] = data
	return nil
}

// Delete removes key from the session
func (s *Session) Delete(key string) {
	delete(s.Values, key)
}
