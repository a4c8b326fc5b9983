package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Akashc1512/SarvanOM-sub006/internal/presence"
	"github.com/Akashc1512/SarvanOM-sub006/internal/router"
	"github.com/Akashc1512/SarvanOM-sub006/internal/wire"
)

// Transport is the connection-manager surface the coordinator needs. Send
// must never block and must tolerate a disconnected state.
type Transport interface {
	Send(msgType string, payload any)
	Disconnect()
}

// Profile is the display identity the upstream auth system supplies for the
// local user.
type Profile struct {
	DisplayName string
	AvatarRef   string
}

type Config struct {
	Transport Transport
	Router    *router.Router

	// Presence, when set, is reset on Close together with the rest of the
	// session-scoped state.
	Presence *presence.Reconciler

	Profile Profile

	Logger *zap.Logger
}

// Coordinator translates domain actions into envelopes sent through the
// transport. Feature consumers call it instead of constructing envelopes at
// every call site, and tear the whole session down through Close.
type Coordinator struct {
	transport Transport
	router    *router.Router
	presence  *presence.Reconciler
	profile   Profile
	logger    *zap.Logger

	mu      sync.Mutex
	current *Session
	unsub   func()
}

func NewCoordinator(cfg *Config) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		transport: cfg.Transport,
		router:    cfg.Router,
		presence:  cfg.Presence,
		profile:   cfg.Profile,
		logger:    logger,
	}
}

// ConnectCollaboration announces the local user to the relay. Returns
// immediately regardless of connection state; delivery is best effort.
func (c *Coordinator) ConnectCollaboration(userID string) {
	c.transport.Send(wire.TypeConnectCollaboration, wire.ConnectPayload{
		UserID:      userID,
		DisplayName: c.profile.DisplayName,
		AvatarRef:   c.profile.AvatarRef,
	})
}

// JoinSession requests membership in sessionID and starts tracking its
// participant set from inbound presence events. Joining a second session
// replaces the first.
func (c *Coordinator) JoinSession(sessionID, userID string) {
	c.mu.Lock()
	c.teardownSessionLocked()
	c.current = newSession(sessionID)
	c.unsub = c.router.Subscribe(wire.TypeCollaborationMessage, c.onCollaborationMessage)
	c.mu.Unlock()

	c.logger.Info("joining session", zap.String("sessionID", sessionID), zap.String("userID", userID))
	c.transport.Send(wire.TypeJoinSession, wire.JoinSessionPayload{
		SessionID: sessionID,
		UserID:    userID,
	})
}

// UpdateDocument sends an ordered batch of edit operations.
func (c *Coordinator) UpdateDocument(sessionID, userID string, changes []wire.EditOperation) {
	c.transport.Send(wire.TypeUpdateDocument, wire.DocumentUpdate{
		SessionID: sessionID,
		UserID:    userID,
		Changes:   changes,
	})
}

// UpdateCursor sends the local cursor position.
func (c *Coordinator) UpdateCursor(sessionID, userID string, pos wire.Position) {
	c.transport.Send(wire.TypeUpdateCursor, wire.CursorUpdate{
		SessionID: sessionID,
		UserID:    userID,
		Position:  pos,
	})
}

// Current returns the session joined last, or nil before any JoinSession.
func (c *Coordinator) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Close tears the collaboration session down: the session subscription, the
// presence map and the connection itself. Safe to call more than once.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.teardownSessionLocked()
	c.mu.Unlock()

	if c.presence != nil {
		c.presence.Reset()
	}
	c.transport.Disconnect()
}

func (c *Coordinator) onCollaborationMessage(_ wire.Envelope, payload any) {
	ev, ok := payload.(wire.PresenceEvent)
	if !ok {
		return
	}
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()
	if current == nil || ev.SessionID != current.ID || ev.UserID == "" {
		return
	}
	if ev.Online {
		current.add(ev.UserID)
		return
	}
	current.remove(ev.UserID)
}

func (c *Coordinator) teardownSessionLocked() {
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	c.current = nil
}
