package ws

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Akashc1512/SarvanOM-sub006/internal/cache"
	"github.com/Akashc1512/SarvanOM-sub006/internal/models"
	cStorage "github.com/Akashc1512/SarvanOM-sub006/internal/storage/client"
	rStorage "github.com/Akashc1512/SarvanOM-sub006/internal/storage/room"
	"github.com/Akashc1512/SarvanOM-sub006/internal/wire"
)

// Handler terminates the /ws endpoint: it decodes inbound envelopes, tracks
// which connection belongs to which session, fans document and cursor updates
// out to session members, and originates the presence broadcasts clients
// reconcile against.
type Handler struct {
	// upgrader is used to upgrade the HTTP connection to a WebSocket connection
	upgrader *websocket.Upgrader

	// clientStorage holds connected peers keyed by connection ID
	clientStorage cStorage.Storage

	// roomStorage holds active sessions keyed by session ID
	roomStorage rStorage.Storage

	// profileCache retains collaborator profiles across brief reconnects
	profileCache cache.Cache

	// profileTTL is the cache TTL in seconds
	profileTTL int64

	logger *zap.Logger
}

func NewHandler(
	clientStorage cStorage.Storage,
	roomStorage rStorage.Storage,
	profileCache cache.Cache,
	profileTTL int64,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		clientStorage: clientStorage,
		roomStorage:   roomStorage,
		profileCache:  profileCache,
		profileTTL:    profileTTL,
		logger:        logger,
	}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	h.logger.Info("connection upgraded", zap.String("connID", id))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			h.unregister(id)
			h.logger.Info("connection closed", zap.String("connID", id))
			break
		}

		env, err := wire.Decode(raw)
		if err != nil {
			h.logger.Debug("discarding unparseable frame", zap.Error(err))
			continue
		}
		payload, err := wire.DecodePayload(env)
		if err != nil {
			h.logger.Debug("discarding envelope", zap.String("type", env.Type), zap.Error(err))
			continue
		}

		// Routed synchronously so frames reach members in arrival order.
		h.route(id, conn, env, payload)
	}
}

func (h *Handler) route(id string, conn *websocket.Conn, env wire.Envelope, payload any) {
	switch p := payload.(type) {
	case wire.ConnectPayload:
		h.registerClient(id, conn, p)
	case wire.JoinSessionPayload:
		h.joinSession(id, conn, p)
	case wire.DocumentUpdate:
		h.relayDocument(id, env, p)
	case wire.CursorUpdate:
		h.relayToSession(id, p.SessionID, env)
	case wire.TypingEvent:
		h.relayToSession(id, p.SessionID, env)
	case wire.ChatEvent:
		h.relayToSession(id, p.SessionID, env)
	default:
		// Presence is relay-originated; clients never send it.
		h.logger.Debug("ignoring envelope", zap.String("type", env.Type))
	}
}

func (h *Handler) registerClient(id string, conn *websocket.Conn, p wire.ConnectPayload) {
	if p.UserID == "" {
		h.logger.Debug("ignoring connect without user id", zap.String("connID", id))
		return
	}

	profile := models.Profile{DisplayName: p.DisplayName, AvatarRef: p.AvatarRef}
	if profile.DisplayName == "" {
		// A reconnecting user may skip the profile; fall back to the cache.
		if cached, _ := h.profileCache.Get(p.UserID); cached != nil {
			if prev, ok := cached.(models.Profile); ok {
				profile = prev
			}
		}
	}
	if err := h.profileCache.SetWithTTL(p.UserID, profile, h.profileTTL); err != nil {
		h.logger.Debug("failed to cache profile", zap.String("userID", p.UserID), zap.Error(err))
	}

	newClient := &models.Client{
		ID:      id,
		UserID:  p.UserID,
		Profile: profile,
		Conn:    conn,
	}
	if err := h.clientStorage.Set(id, newClient); err != nil {
		h.logger.Error("failed to store client", zap.String("connID", id), zap.Error(err))
		return
	}
	h.logger.Info("client registered", zap.String("connID", id), zap.String("userID", p.UserID))
}

func (h *Handler) joinSession(id string, conn *websocket.Conn, p wire.JoinSessionPayload) {
	if p.SessionID == "" || p.UserID == "" {
		return
	}

	c, _ := h.clientStorage.Get(id)
	if c == nil {
		// join_session before connect_collaboration; register implicitly.
		h.registerClient(id, conn, wire.ConnectPayload{UserID: p.UserID})
		c, _ = h.clientStorage.Get(id)
		if c == nil {
			return
		}
	}
	if c.SessionID != "" && c.SessionID != p.SessionID {
		// Joining a second session replaces the first: leave the old room
		// so its members stop broadcasting to this connection.
		h.leaveSession(id, c)
	}
	c.SessionID = p.SessionID

	currentRoom, _ := h.roomStorage.Get(p.SessionID)
	if currentRoom == nil {
		currentRoom = models.NewRoom(p.SessionID)
		_ = h.roomStorage.Set(p.SessionID, currentRoom)
		h.logger.Info("room created", zap.String("sessionID", p.SessionID), zap.String("roomID", currentRoom.ID))
	}
	currentRoom.AddMember(id)

	// Tell everyone, the joiner included, about the new member.
	h.broadcastPresence(currentRoom, c, true)

	// Bring the joiner up to date: current roster, then the latest document.
	for _, memberID := range currentRoom.Members() {
		if memberID == id {
			continue
		}
		member, _ := h.clientStorage.Get(memberID)
		if member == nil {
			continue
		}
		env, err := wire.NewEnvelope(
			wire.TypeCollaborationMessage,
			h.presenceEvent(currentRoom.SessionID, member, true),
			member.UserID,
		)
		if err != nil {
			continue
		}
		if err := c.WriteEnvelope(env); err != nil {
			h.logger.Debug("failed to send roster entry", zap.String("connID", id), zap.Error(err))
		}
	}
	if doc := currentRoom.Document(); doc != nil {
		snapshot := wire.Envelope{
			Type:      wire.TypeUpdateDocument,
			Data:      doc,
			Timestamp: time.Now().UTC(),
		}
		if err := c.WriteEnvelope(snapshot); err != nil {
			h.logger.Debug("failed to send document snapshot", zap.String("connID", id), zap.Error(err))
		}
	}

	h.logger.Info("client joined session",
		zap.String("connID", id),
		zap.String("userID", p.UserID),
		zap.String("sessionID", p.SessionID),
	)
}

func (h *Handler) relayDocument(id string, env wire.Envelope, p wire.DocumentUpdate) {
	c, _ := h.clientStorage.Get(id)
	if c == nil || c.SessionID != p.SessionID {
		h.logger.Debug("dropping update from non-member",
			zap.String("connID", id),
			zap.String("sessionID", p.SessionID),
		)
		return
	}

	currentRoom, _ := h.roomStorage.Get(p.SessionID)
	if currentRoom == nil {
		return
	}
	currentRoom.SetDocument(env.Data)
	h.broadcast(currentRoom, env)
}

func (h *Handler) relayToSession(id, sessionID string, env wire.Envelope) {
	c, _ := h.clientStorage.Get(id)
	if c == nil || c.SessionID != sessionID {
		h.logger.Debug("dropping relay from non-member",
			zap.String("connID", id),
			zap.String("sessionID", sessionID),
		)
		return
	}
	currentRoom, _ := h.roomStorage.Get(sessionID)
	if currentRoom == nil {
		return
	}
	h.broadcast(currentRoom, env)
}

func (h *Handler) unregister(id string) {
	c, _ := h.clientStorage.GetWhere(func(c *models.Client) bool {
		return c.ID == id
	})
	if c == nil {
		return
	}

	h.leaveSession(id, c)

	_ = h.clientStorage.Delete(id)
	h.logger.Info("client unregistered", zap.String("connID", id), zap.String("userID", c.UserID))
}

// leaveSession removes the connection from the room it currently belongs to,
// broadcasts offline presence to the remaining members and deletes the room
// once it empties.
func (h *Handler) leaveSession(id string, c *models.Client) {
	if c.SessionID == "" {
		return
	}
	currentRoom, _ := h.roomStorage.Get(c.SessionID)
	if currentRoom == nil {
		return
	}
	currentRoom.RemoveMember(id)
	h.broadcastPresence(currentRoom, c, false)
	if currentRoom.Empty() {
		_ = h.roomStorage.Delete(currentRoom.SessionID)
		h.logger.Info("room deleted", zap.String("sessionID", currentRoom.SessionID))
	}
}

// broadcastPresence announces a member coming online or going offline to
// every member of the room.
func (h *Handler) broadcastPresence(currentRoom *models.Room, c *models.Client, online bool) {
	env, err := wire.NewEnvelope(
		wire.TypeCollaborationMessage,
		h.presenceEvent(currentRoom.SessionID, c, online),
		c.UserID,
	)
	if err != nil {
		h.logger.Error("failed to encode presence event", zap.Error(err))
		return
	}
	h.broadcast(currentRoom, env)
}

func (h *Handler) broadcast(currentRoom *models.Room, env wire.Envelope) {
	for _, memberID := range currentRoom.Members() {
		member, _ := h.clientStorage.Get(memberID)
		if member == nil {
			continue
		}
		if err := member.WriteEnvelope(env); err != nil {
			h.logger.Debug("dropping broken member connection", zap.String("connID", memberID), zap.Error(err))
			currentRoom.RemoveMember(memberID)
			_ = h.clientStorage.Delete(memberID)
		}
	}
}

func (h *Handler) presenceEvent(sessionID string, c *models.Client, online bool) wire.PresenceEvent {
	ev := wire.NewPresenceEvent(sessionID, c.UserID, online)
	ev.DisplayName = c.Profile.DisplayName
	ev.AvatarRef = c.Profile.AvatarRef
	ev.Permission = "edit"
	return ev
}
