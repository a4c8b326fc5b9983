package models

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Room is one active collaboration session on the relay. It tracks which
// connections belong to the session and keeps the latest document payload so
// late joiners receive the current state.
type Room struct {
	// ID is the unique identifier of the room.
	ID string

	// SessionID is the identifier clients join by.
	SessionID string

	mtx      sync.RWMutex
	members  []string
	document json.RawMessage
}

// NewRoom creates a new room for a session.
func NewRoom(sessionID string) *Room {
	return &Room{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		members:   make([]string, 0),
	}
}

// AddMember records a connection as a member of the room.
func (r *Room) AddMember(clientID string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	for _, id := range r.members {
		if id == clientID {
			return
		}
	}
	r.members = append(r.members, clientID)
}

// RemoveMember drops a connection from the room.
func (r *Room) RemoveMember(clientID string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	for i, id := range r.members {
		if id == clientID {
			r.members = append(r.members[:i], r.members[i+1:]...)
			break
		}
	}
}

// Members returns a snapshot of the member connection IDs.
func (r *Room) Members() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	out := make([]string, len(r.members))
	copy(out, r.members)
	return out
}

// Empty reports whether the room has no members left.
func (r *Room) Empty() bool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return len(r.members) == 0
}

// SetDocument stores the latest document payload of the room.
func (r *Room) SetDocument(data json.RawMessage) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.document = data
}

// Document returns the latest document payload, nil when none was received.
func (r *Room) Document() json.RawMessage {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return r.document
}
