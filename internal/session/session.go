package session

import (
	"sort"
	"sync"
)

// Session is one logical collaboration room. Membership is driven exclusively
// by inbound presence events, never inferred client-side.
type Session struct {
	ID string

	mu           sync.RWMutex
	participants map[string]struct{}
}

func newSession(id string) *Session {
	return &Session{
		ID:           id,
		participants: make(map[string]struct{}),
	}
}

func (s *Session) add(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[userID] = struct{}{}
}

func (s *Session) remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.participants, userID)
}

// Contains reports whether userID is a current participant.
func (s *Session) Contains(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.participants[userID]
	return ok
}

// Participants returns the current membership, sorted by user ID.
func (s *Session) Participants() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.participants))
	for id := range s.participants {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
