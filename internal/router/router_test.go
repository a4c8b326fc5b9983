package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akashc1512/SarvanOM-sub006/internal/wire"
)

func cursorEnvelope(t *testing.T) (wire.Envelope, any) {
	t.Helper()
	env, err := wire.NewEnvelope(wire.TypeUpdateCursor, wire.CursorUpdate{
		SessionID: "s1",
		UserID:    "alice",
		Position:  wire.Position{X: 10, Y: 20},
	}, "alice")
	require.NoError(t, err)
	payload, err := wire.DecodePayload(env)
	require.NoError(t, err)
	return env, payload
}

func TestDispatchInvokesOnlyMatchingType(t *testing.T) {
	r := New(nil)
	var cursorCalls, docCalls int
	r.Subscribe(wire.TypeUpdateCursor, func(_ wire.Envelope, _ any) { cursorCalls++ })
	r.Subscribe(wire.TypeUpdateCursor, func(_ wire.Envelope, _ any) { cursorCalls++ })
	r.Subscribe(wire.TypeUpdateDocument, func(_ wire.Envelope, _ any) { docCalls++ })

	env, payload := cursorEnvelope(t)
	r.Dispatch(env, payload)

	assert.Equal(t, 2, cursorCalls)
	assert.Equal(t, 0, docCalls)
}

func TestDispatchDeliversTypedPayloadExactlyOnce(t *testing.T) {
	r := New(nil)
	var got []wire.CursorUpdate
	r.Subscribe(wire.TypeUpdateCursor, func(_ wire.Envelope, payload any) {
		update, ok := payload.(wire.CursorUpdate)
		require.True(t, ok)
		got = append(got, update)
	})

	env, payload := cursorEnvelope(t)
	r.Dispatch(env, payload)

	require.Len(t, got, 1)
	assert.Equal(t, wire.Position{X: 10, Y: 20}, got[0].Position)
}

func TestUnsubscribeRemovesOnlyOwnRegistration(t *testing.T) {
	r := New(nil)
	var first, second, third int
	r.Subscribe(wire.TypeUpdateCursor, func(_ wire.Envelope, _ any) { first++ })
	unsub := r.Subscribe(wire.TypeUpdateCursor, func(_ wire.Envelope, _ any) { second++ })
	r.Subscribe(wire.TypeUpdateCursor, func(_ wire.Envelope, _ any) { third++ })

	unsub()

	env, payload := cursorEnvelope(t)
	r.Dispatch(env, payload)

	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
	assert.Equal(t, 1, third)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	r := New(nil)
	var calls int
	unsubA := r.Subscribe(wire.TypeUpdateCursor, func(_ wire.Envelope, _ any) { calls++ })
	r.Subscribe(wire.TypeUpdateCursor, func(_ wire.Envelope, _ any) { calls++ })

	unsubA()
	unsubA()

	env, payload := cursorEnvelope(t)
	r.Dispatch(env, payload)
	assert.Equal(t, 1, calls)
}

func TestDispatchWithoutSubscribersIsNoop(t *testing.T) {
	r := New(nil)
	env, payload := cursorEnvelope(t)
	assert.NotPanics(t, func() { r.Dispatch(env, payload) })
}

func TestLastUnsubscribeFreesEntry(t *testing.T) {
	r := New(nil)
	unsubA := r.Subscribe(wire.TypeUpdateCursor, func(_ wire.Envelope, _ any) {})
	unsubB := r.Subscribe(wire.TypeUpdateCursor, func(_ wire.Envelope, _ any) {})

	unsubA()
	r.mu.Lock()
	_, present := r.subs[wire.TypeUpdateCursor]
	r.mu.Unlock()
	assert.True(t, present)

	unsubB()
	r.mu.Lock()
	_, present = r.subs[wire.TypeUpdateCursor]
	r.mu.Unlock()
	assert.False(t, present)
}

func TestResetClearsRegistry(t *testing.T) {
	r := New(nil)
	var calls int
	r.Subscribe(wire.TypeUpdateCursor, func(_ wire.Envelope, _ any) { calls++ })

	r.Reset()

	env, payload := cursorEnvelope(t)
	r.Dispatch(env, payload)
	assert.Equal(t, 0, calls)
}
