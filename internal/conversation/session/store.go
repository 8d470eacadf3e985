// Package session stores active conversation state keyed by lead.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"vendexa_backend/internal/ai"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no active session exists for a lead.
var ErrNotFound = errors.New("session not found")

// Session is the transcript and counters for one active conversation.
type Session struct {
	LeadID       uuid.UUID `json:"leadId"`
	History      []ai.Turn `json:"history"`
	MessageCount int       `json:"messageCount"`
	StartedAt    time.Time `json:"startedAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
}

// Store persists conversation sessions. Sessions expire after the configured
// TTL of inactivity; an expired session reads as ErrNotFound.
type Store interface {
	Get(ctx context.Context, leadID uuid.UUID) (Session, error)
	Save(ctx context.Context, sess Session) error
	Delete(ctx context.Context, leadID uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

// MemoryStore is a process-local Store for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates an in-memory session store with the given TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) expired(sess Session) bool {
	return s.ttl > 0 && s.now().Sub(sess.LastActiveAt) > s.ttl
}

// Get returns the active session for a lead, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, leadID uuid.UUID) (Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[leadID]
	s.mu.RUnlock()

	if !ok {
		return Session{}, ErrNotFound
	}
	if s.expired(sess) {
		s.mu.Lock()
		delete(s.sessions, leadID)
		s.mu.Unlock()
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// Save stores the session, resetting its expiry.
func (s *MemoryStore) Save(_ context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.LeadID] = sess
	return nil
}

// Delete removes the session. Deleting an absent session is a no-op.
func (s *MemoryStore) Delete(_ context.Context, leadID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, leadID)
	return nil
}

// Count returns the number of unexpired sessions.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			continue
		}
		count++
	}
	return count, nil
}

var _ Store = (*MemoryStore)(nil)
