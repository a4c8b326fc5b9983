package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Position is a cursor location in document coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EditOperation is one entry in an ordered batch of document edits. Order
// within a batch is significant; batches carry no cross-batch guarantees.
type EditOperation struct {
	Op       string `json:"op"`
	Position int    `json:"position"`
	Value    string `json:"value,omitempty"`
	Length   int    `json:"length,omitempty"`
}

// ConnectPayload announces a user to the relay. The profile fields come from
// the upstream auth system; the relay caches them for presence broadcasts.
type ConnectPayload struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarRef   string `json:"avatar_ref,omitempty"`
}

// JoinSessionPayload requests membership in a collaboration session.
type JoinSessionPayload struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

// DocumentUpdate carries an ordered list of edit operations for a session.
type DocumentUpdate struct {
	SessionID string          `json:"session_id"`
	UserID    string          `json:"user_id"`
	Changes   []EditOperation `json:"changes"`
}

// CursorUpdate moves one user's cursor.
type CursorUpdate struct {
	SessionID string   `json:"session_id"`
	UserID    string   `json:"user_id"`
	Position  Position `json:"position"`
}

// Events carried inside a collaboration_message envelope.
const (
	EventPresence = "presence"
	EventTyping   = "typing"
	EventChat     = "chat"
)

var ErrUnknownEvent = errors.New("unknown collaboration event")

// CollaborationEvent is the discriminator header shared by every broadcast
// carried in a collaboration_message envelope.
type CollaborationEvent struct {
	Event string `json:"event"`
}

// PresenceEvent reports a collaborator coming online or going offline.
type PresenceEvent struct {
	CollaborationEvent
	SessionID   string `json:"session_id"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarRef   string `json:"avatar_ref,omitempty"`
	Online      bool   `json:"online"`
	Permission  string `json:"permission,omitempty"`
}

// TypingEvent reports a collaborator starting or stopping typing.
type TypingEvent struct {
	CollaborationEvent
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Typing    bool   `json:"typing"`
}

// ChatEvent carries a chat line broadcast to a session.
type ChatEvent struct {
	CollaborationEvent
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
}

// NewPresenceEvent fills in the event discriminator.
func NewPresenceEvent(sessionID, userID string, online bool) PresenceEvent {
	return PresenceEvent{
		CollaborationEvent: CollaborationEvent{Event: EventPresence},
		SessionID:          sessionID,
		UserID:             userID,
		Online:             online,
	}
}

// NewTypingEvent fills in the event discriminator.
func NewTypingEvent(sessionID, userID string, typing bool) TypingEvent {
	return TypingEvent{
		CollaborationEvent: CollaborationEvent{Event: EventTyping},
		SessionID:          sessionID,
		UserID:             userID,
		Typing:             typing,
	}
}

// NewChatEvent fills in the event discriminator.
func NewChatEvent(sessionID, userID, text string) ChatEvent {
	return ChatEvent{
		CollaborationEvent: CollaborationEvent{Event: EventChat},
		SessionID:          sessionID,
		UserID:             userID,
		Text:               text,
	}
}

func decodeCollaborationEvent(data []byte) (any, error) {
	var base CollaborationEvent
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("error unmarshaling collaboration event: %w", err)
	}
	switch base.Event {
	case EventPresence:
		var ev PresenceEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("error unmarshaling presence event: %w", err)
		}
		return ev, nil
	case EventTyping:
		var ev TypingEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("error unmarshaling typing event: %w", err)
		}
		return ev, nil
	case EventChat:
		var ev ChatEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("error unmarshaling chat event: %w", err)
		}
		return ev, nil
	}
	return nil, fmt.Errorf("%q: %w", base.Event, ErrUnknownEvent)
}
