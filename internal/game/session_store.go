package game

import (
	"sync"

	"github.com/trivialuned/trivial-bot/internal/domain"
)

const sessionShards = 16

// SessionStore is the exclusive mapping from user to active game session.
// It is sharded so operations on different users never contend on the
// same lock; operations on the same user are atomic.
type SessionStore struct {
	shards [sessionShards]sessionShard
}

type sessionShard struct {
	mu       sync.RWMutex
	sessions map[domain.UserID]*GameSession
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	s := &SessionStore{}
	for i := range s.shards {
		s.shards[i].sessions = make(map[domain.UserID]*GameSession)
	}
	return s
}

func (s *SessionStore) shard(user domain.UserID) *sessionShard {
	return &s.shards[uint64(user)%sessionShards]
}

// Get returns the active session for a user, if any.
func (s *SessionStore) Get(user domain.UserID) (*GameSession, bool) {
	sh := s.shard(user)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	sess, ok := sh.sessions[user]
	return sess, ok
}

// Put stores a session for a user, unconditionally replacing any prior
// one. A new play request always supersedes a stale session.
func (s *SessionStore) Put(user domain.UserID, sess *GameSession) {
	sh := s.shard(user)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.sessions[user] = sess
}

// Remove deletes the session for a user. No-op if absent.
func (s *SessionStore) Remove(user domain.UserID) {
	sh := s.shard(user)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.sessions, user)
}

// Len returns the total number of active sessions.
func (s *SessionStore) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		n += len(sh.sessions)
		sh.mu.RUnlock()
	}
	return n
}
