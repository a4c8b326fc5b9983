package models

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Akashc1512/SarvanOM-sub006/internal/wire"
)

// Profile is the display identity attached to a connected user.
type Profile struct {
	DisplayName string
	AvatarRef   string
}

// Client is one connected websocket peer on the relay.
type Client struct {
	// ID is the unique identifier of the connection, not the user: the
	// same user may reconnect and receive a new ID.
	ID string

	// UserID is the identity announced via connect_collaboration.
	UserID string

	// SessionID is the session the client joined, empty until join_session.
	SessionID string

	Profile Profile

	// Conn is the websocket connection of the client.
	Conn *websocket.Conn

	// mtx serializes writes; broadcasts for different rooms may target the
	// same connection concurrently.
	mtx sync.Mutex
}

// WriteEnvelope writes one envelope to the client connection.
func (c *Client) WriteEnvelope(env wire.Envelope) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.Conn.WriteJSON(env)
}
