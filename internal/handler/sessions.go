package handler

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/pavelanni/mocktest/internal/session"
)

// sessionManager hands out opaque tokens for test sessions so several
// browser tabs can run attempts independently.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
	opts     session.Options
}

func newSessionManager(opts session.Options) *sessionManager {
	return &sessionManager{
		sessions: make(map[string]*session.Session),
		opts:     opts,
	}
}

func generateToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// create makes a fresh session and returns its token.
func (m *sessionManager) create() (string, *session.Session, error) {
	token, err := generateToken()
	if err != nil {
		return "", nil, err
	}
	s := session.New(m.opts)
	m.mu.Lock()
	m.sessions[token] = s
	m.mu.Unlock()
	return token, s, nil
}

// get looks up the session for a token.
func (m *sessionManager) get(token string) (*session.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	return s, ok
}

// remove resets and forgets the session for a token.
func (m *sessionManager) remove(token string) {
	m.mu.Lock()
	s, ok := m.sessions[token]
	delete(m.sessions, token)
	m.mu.Unlock()
	if ok {
		s.Reset()
	}
}
