package router

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Akashc1512/SarvanOM-sub006/internal/wire"
)

// Handler receives an inbound envelope together with its decoded payload.
type Handler func(env wire.Envelope, payload any)

type subscription struct {
	id      uint64
	handler Handler
}

// Router fans inbound envelopes out to the feature code interested in them,
// keyed by message type. It is owned by a single connection for the lifetime
// of one collaboration session.
type Router struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string][]subscription

	logger *zap.Logger
}

func New(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		subs:   make(map[string][]subscription),
		logger: logger,
	}
}

// Subscribe registers handler under msgType and returns a function that
// removes exactly this registration. The returned function is safe to call
// more than once.
func (r *Router) Subscribe(msgType string, handler Handler) func() {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.subs[msgType] = append(r.subs[msgType], subscription{id: id, handler: handler})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.unsubscribe(msgType, id)
		})
	}
}

// Dispatch invokes every handler registered for the envelope's type, in
// registration order. A type with no subscribers is a silent no-op.
func (r *Router) Dispatch(env wire.Envelope, payload any) {
	r.mu.Lock()
	registered := r.subs[env.Type]
	snapshot := make([]subscription, len(registered))
	copy(snapshot, registered)
	r.mu.Unlock()

	if len(snapshot) == 0 {
		return
	}
	r.logger.Debug("dispatching envelope",
		zap.String("type", env.Type),
		zap.Int("subscribers", len(snapshot)),
	)
	for _, sub := range snapshot {
		sub.handler(env, payload)
	}
}

// Reset clears the whole registry. Called on session teardown.
func (r *Router) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = make(map[string][]subscription)
}

func (r *Router) unsubscribe(msgType string, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	registered := r.subs[msgType]
	for i, sub := range registered {
		if sub.id == id {
			registered = append(registered[:i], registered[i+1:]...)
			break
		}
	}
	if len(registered) == 0 {
		// Removing the last subscriber frees the entry for that type.
		delete(r.subs, msgType)
		return
	}
	r.subs[msgType] = registered
}
