package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Message types exchanged with the collaboration relay. The set is symmetric:
// both the client and the relay produce and consume every type.
const (
	TypeConnectCollaboration = "connect_collaboration"
	TypeJoinSession          = "join_session"
	TypeUpdateDocument       = "update_document"
	TypeUpdateCursor         = "update_cursor"
	TypeCollaborationMessage = "collaboration_message"
)

var (
	ErrInvalidEnvelope = errors.New("invalid envelope")
	ErrUnknownType     = errors.New("unknown message type")
)

// Envelope is the atomic unit of wire communication. The timestamp is assigned
// by the sender at construction time, never by the transport.
type Envelope struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	UserID    string          `json:"userId,omitempty"`
}

// NewEnvelope builds an envelope for the given payload, stamping it with the
// current time. userID may be empty when the payload already identifies the
// originating user.
func NewEnvelope(msgType string, payload any, userID string) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("error marshaling %s payload: %w", msgType, err)
	}
	return Envelope{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
	}, nil
}

// Decode parses a raw frame into an Envelope. The payload stays opaque until
// DecodePayload is called.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %s", ErrInvalidEnvelope, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: empty type", ErrInvalidEnvelope)
	}
	return env, nil
}

// DecodePayload resolves the envelope's opaque data into the concrete payload
// struct for its type, so handlers never cast raw JSON themselves.
func DecodePayload(env Envelope) (any, error) {
	switch env.Type {
	case TypeConnectCollaboration:
		var p ConnectPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("error unmarshaling %s payload: %w", env.Type, err)
		}
		return p, nil
	case TypeJoinSession:
		var p JoinSessionPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("error unmarshaling %s payload: %w", env.Type, err)
		}
		return p, nil
	case TypeUpdateDocument:
		var p DocumentUpdate
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("error unmarshaling %s payload: %w", env.Type, err)
		}
		return p, nil
	case TypeUpdateCursor:
		var p CursorUpdate
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("error unmarshaling %s payload: %w", env.Type, err)
		}
		return p, nil
	case TypeCollaborationMessage:
		return decodeCollaborationEvent(env.Data)
	}
	return nil, fmt.Errorf("%q: %w", env.Type, ErrUnknownType)
}
