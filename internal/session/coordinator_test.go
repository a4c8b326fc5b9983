package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akashc1512/SarvanOM-sub006/internal/presence"
	"github.com/Akashc1512/SarvanOM-sub006/internal/router"
	"github.com/Akashc1512/SarvanOM-sub006/internal/wire"
)

type sentMessage struct {
	msgType string
	payload any
}

type fakeTransport struct {
	mu           sync.Mutex
	sent         []sentMessage
	disconnected int
}

func (f *fakeTransport) Send(msgType string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{msgType: msgType, payload: payload})
}

func (f *fakeTransport) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected++
}

func (f *fakeTransport) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeTransport, *router.Router) {
	t.Helper()
	transport := &fakeTransport{}
	rt := router.New(nil)
	coordinator := NewCoordinator(&Config{
		Transport: transport,
		Router:    rt,
		Profile:   Profile{DisplayName: "Alice", AvatarRef: "avatars/alice.png"},
	})
	return coordinator, transport, rt
}

func dispatchPresence(t *testing.T, rt *router.Router, sessionID, userID string, online bool) {
	t.Helper()
	env, err := wire.NewEnvelope(wire.TypeCollaborationMessage, wire.NewPresenceEvent(sessionID, userID, online), userID)
	require.NoError(t, err)
	payload, err := wire.DecodePayload(env)
	require.NoError(t, err)
	rt.Dispatch(env, payload)
}

func TestOperationsBuildTypedPayloads(t *testing.T) {
	coordinator, transport, _ := newTestCoordinator(t)

	coordinator.ConnectCollaboration("alice")
	coordinator.JoinSession("s1", "alice")
	coordinator.UpdateDocument("s1", "alice", []wire.EditOperation{{Op: "insert", Position: 0, Value: "x"}})
	coordinator.UpdateCursor("s1", "alice", wire.Position{X: 5, Y: 6})

	msgs := transport.messages()
	require.Len(t, msgs, 4)

	assert.Equal(t, wire.TypeConnectCollaboration, msgs[0].msgType)
	connect, ok := msgs[0].payload.(wire.ConnectPayload)
	require.True(t, ok)
	assert.Equal(t, "alice", connect.UserID)
	assert.Equal(t, "Alice", connect.DisplayName)
	assert.Equal(t, "avatars/alice.png", connect.AvatarRef)

	assert.Equal(t, wire.TypeJoinSession, msgs[1].msgType)
	assert.Equal(t, wire.JoinSessionPayload{SessionID: "s1", UserID: "alice"}, msgs[1].payload)

	assert.Equal(t, wire.TypeUpdateDocument, msgs[2].msgType)
	update, ok := msgs[2].payload.(wire.DocumentUpdate)
	require.True(t, ok)
	require.Len(t, update.Changes, 1)

	assert.Equal(t, wire.TypeUpdateCursor, msgs[3].msgType)
	cursor, ok := msgs[3].payload.(wire.CursorUpdate)
	require.True(t, ok)
	assert.Equal(t, wire.Position{X: 5, Y: 6}, cursor.Position)
}

func TestOperationsDoNotBlock(t *testing.T) {
	coordinator, _, _ := newTestCoordinator(t)

	done := make(chan struct{})
	go func() {
		coordinator.ConnectCollaboration("alice")
		coordinator.UpdateCursor("s1", "alice", wire.Position{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("coordinator operations must return immediately")
	}
}

func TestJoinSessionTracksMembershipFromPresence(t *testing.T) {
	coordinator, _, rt := newTestCoordinator(t)
	coordinator.JoinSession("s1", "alice")

	current := coordinator.Current()
	require.NotNil(t, current)
	assert.Equal(t, "s1", current.ID)
	assert.Empty(t, current.Participants(), "membership is never inferred client-side")

	dispatchPresence(t, rt, "s1", "bob", true)
	dispatchPresence(t, rt, "s1", "carol", true)
	assert.Equal(t, []string{"bob", "carol"}, current.Participants())

	dispatchPresence(t, rt, "s1", "bob", false)
	assert.Equal(t, []string{"carol"}, current.Participants())
	assert.False(t, current.Contains("bob"))
}

func TestPresenceForOtherSessionIgnored(t *testing.T) {
	coordinator, _, rt := newTestCoordinator(t)
	coordinator.JoinSession("s1", "alice")

	dispatchPresence(t, rt, "s2", "bob", true)
	assert.Empty(t, coordinator.Current().Participants())
}

func TestJoinSessionReplacesPrevious(t *testing.T) {
	coordinator, _, rt := newTestCoordinator(t)
	coordinator.JoinSession("s1", "alice")
	dispatchPresence(t, rt, "s1", "bob", true)

	coordinator.JoinSession("s2", "alice")
	current := coordinator.Current()
	assert.Equal(t, "s2", current.ID)
	assert.Empty(t, current.Participants())

	// The old session's subscription must be gone.
	dispatchPresence(t, rt, "s1", "dave", true)
	assert.Empty(t, current.Participants())
}

func TestCloseTearsEverythingDown(t *testing.T) {
	transport := &fakeTransport{}
	rt := router.New(nil)
	reconciler := presence.NewReconciler(presence.Config{SelfID: "alice"})
	reconciler.Bind(rt)
	coordinator := NewCoordinator(&Config{
		Transport: transport,
		Router:    rt,
		Presence:  reconciler,
	})

	coordinator.JoinSession("s1", "alice")
	dispatchPresence(t, rt, "s1", "bob", true)
	_, ok := reconciler.Get("bob")
	require.True(t, ok)

	coordinator.Close()

	_, ok = reconciler.Get("bob")
	assert.False(t, ok, "presence map is cleared on teardown")
	assert.Nil(t, coordinator.Current())

	transport.mu.Lock()
	disconnects := transport.disconnected
	transport.mu.Unlock()
	assert.Equal(t, 1, disconnects)

	assert.NotPanics(t, func() { coordinator.Close() })
}
