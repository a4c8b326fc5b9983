package presence

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Akashc1512/SarvanOM-sub006/internal/router"
	"github.com/Akashc1512/SarvanOM-sub006/internal/wire"
)

// Permission is the access level a collaborator holds in a session.
type Permission int

const (
	PermissionView Permission = iota
	PermissionEdit
	PermissionAdmin
)

func (p Permission) String() string {
	switch p {
	case PermissionEdit:
		return "edit"
	case PermissionAdmin:
		return "admin"
	default:
		return "view"
	}
}

// ParsePermission maps a wire permission string to a Permission. Unknown
// values fall back to view.
func ParsePermission(s string) Permission {
	switch s {
	case "edit":
		return PermissionEdit
	case "admin":
		return PermissionAdmin
	default:
		return PermissionView
	}
}

// Collaborator is the client-side view of one known participant. Entries are
// keyed uniquely by UserID and are never deleted, only demoted to offline, so
// permission and profile context survives a silent disconnect.
type Collaborator struct {
	UserID      string
	DisplayName string
	AvatarRef   string
	Online      bool
	Typing      bool
	Cursor      *wire.Position
	LastSeen    time.Time
	Permission  Permission
}

const (
	DefaultTypingTTL  = 4 * time.Second
	DefaultStaleAfter = 30 * time.Second
)

type Config struct {
	// SelfID is the local user, always excluded from the aggregates.
	SelfID string

	// TypingTTL bounds how long a typing flag stays set without a fresh
	// typing event. Typing is a decaying flag, never a sticky one.
	TypingTTL time.Duration

	// StaleAfter demotes entries to offline once their LastSeen is this
	// far in the past.
	StaleAfter time.Duration

	Logger *zap.Logger
}

type entry struct {
	Collaborator
	lastTyping time.Time
}

// Reconciler maintains the authoritative client-side presence map from
// inbound presence, typing and cursor envelopes.
type Reconciler struct {
	cfg Config
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry
}

func NewReconciler(cfg Config) *Reconciler {
	if cfg.TypingTTL <= 0 {
		cfg.TypingTTL = DefaultTypingTTL
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultStaleAfter
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Reconciler{
		cfg:     cfg,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Bind subscribes the reconciler to the envelope types it reconciles.
func (r *Reconciler) Bind(rt *router.Router) {
	rt.Subscribe(wire.TypeCollaborationMessage, func(env wire.Envelope, payload any) {
		switch ev := payload.(type) {
		case wire.PresenceEvent:
			r.ApplyPresence(ev, env.Timestamp)
		case wire.TypingEvent:
			r.ApplyTyping(ev, env.Timestamp)
		}
	})
	rt.Subscribe(wire.TypeUpdateCursor, func(_ wire.Envelope, payload any) {
		if ev, ok := payload.(wire.CursorUpdate); ok {
			r.ApplyCursor(ev)
		}
	})
	rt.Subscribe(wire.TypeJoinSession, func(env wire.Envelope, payload any) {
		if p, ok := payload.(wire.JoinSessionPayload); ok {
			r.ApplyJoin(p, env.Timestamp)
		}
	})
}

// ApplyJoin marks a user online when a join envelope is observed, before any
// presence broadcast arrives.
func (r *Reconciler) ApplyJoin(p wire.JoinSessionPayload, ts time.Time) {
	if p.UserID == "" {
		return
	}
	if ts.IsZero() {
		ts = r.now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.upsertLocked(p.UserID)
	if ts.After(e.LastSeen) {
		e.LastSeen = ts
	}
	e.Online = true
}

// ApplyPresence upserts the entry for the event's user. Envelopes older than
// the entry's LastSeen are ignored so LastSeen stays monotonic.
func (r *Reconciler) ApplyPresence(ev wire.PresenceEvent, ts time.Time) {
	if ev.UserID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.upsertLocked(ev.UserID)
	if !ts.IsZero() && ts.Before(e.LastSeen) {
		r.cfg.Logger.Debug("ignoring stale presence envelope", zap.String("userID", ev.UserID))
		return
	}
	if ts.After(e.LastSeen) {
		e.LastSeen = ts
	}
	e.Online = ev.Online
	if ev.DisplayName != "" {
		e.DisplayName = ev.DisplayName
	}
	if ev.AvatarRef != "" {
		e.AvatarRef = ev.AvatarRef
	}
	if ev.Permission != "" {
		e.Permission = ParsePermission(ev.Permission)
	}
	if !ev.Online {
		e.Typing = false
		e.lastTyping = time.Time{}
	}
}

// ApplyTyping records a typing event. A typing envelope also counts as a
// liveness signal, so LastSeen advances.
func (r *Reconciler) ApplyTyping(ev wire.TypingEvent, ts time.Time) {
	if ev.UserID == "" {
		return
	}
	if ts.IsZero() {
		ts = r.now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.upsertLocked(ev.UserID)
	if ts.After(e.LastSeen) {
		e.LastSeen = ts
	}
	if ev.Typing {
		e.Typing = true
		e.lastTyping = ts
		return
	}
	e.Typing = false
	e.lastTyping = time.Time{}
}

// ApplyCursor updates cursor position only; it affects neither the online nor
// the typing state.
func (r *Reconciler) ApplyCursor(ev wire.CursorUpdate) {
	if ev.UserID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.upsertLocked(ev.UserID)
	pos := ev.Position
	e.Cursor = &pos
}

// Get returns the reconciled view of one collaborator.
func (r *Reconciler) Get(userID string) (Collaborator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[userID]
	if !ok {
		return Collaborator{}, false
	}
	return r.viewLocked(e, r.now()), true
}

// Others returns every known collaborator except the local user, sorted by
// user ID for stable output.
func (r *Reconciler) Others() []Collaborator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := r.now()
	out := make([]Collaborator, 0, len(r.entries))
	for id, e := range r.entries {
		if id == r.cfg.SelfID {
			continue
		}
		out = append(out, r.viewLocked(e, now))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// OnlineCount counts other collaborators currently online.
func (r *Reconciler) OnlineCount() int {
	count := 0
	for _, c := range r.Others() {
		if c.Online {
			count++
		}
	}
	return count
}

// TypingUserIDs lists other collaborators whose typing flag has not decayed.
func (r *Reconciler) TypingUserIDs() []string {
	var ids []string
	for _, c := range r.Others() {
		if c.Typing {
			ids = append(ids, c.UserID)
		}
	}
	return ids
}

// Sweep demotes stale entries in place. Reads already apply the decay rules,
// so Sweep is only needed by consumers that inspect stored state directly or
// want demotion logged once.
func (r *Reconciler) Sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, e := range r.entries {
		v := r.viewLocked(e, now)
		if e.Online && !v.Online {
			r.cfg.Logger.Debug("demoting stale collaborator", zap.String("userID", id))
		}
		e.Online = v.Online
		e.Typing = v.Typing
		if !e.Typing {
			e.lastTyping = time.Time{}
		}
	}
}

// Reset clears the presence map. Called on session teardown.
func (r *Reconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*entry)
}

func (r *Reconciler) upsertLocked(userID string) *entry {
	e, ok := r.entries[userID]
	if !ok {
		e = &entry{Collaborator: Collaborator{UserID: userID}}
		r.entries[userID] = e
		r.cfg.Logger.Debug("new collaborator observed", zap.String("userID", userID))
	}
	return e
}

// viewLocked derives the externally visible state: typing decays after
// TypingTTL, entries past StaleAfter are reported offline, and offline always
// implies not typing.
func (r *Reconciler) viewLocked(e *entry, now time.Time) Collaborator {
	c := e.Collaborator
	if !c.LastSeen.IsZero() && now.Sub(c.LastSeen) > r.cfg.StaleAfter {
		c.Online = false
	}
	if c.Typing && (e.lastTyping.IsZero() || now.Sub(e.lastTyping) > r.cfg.TypingTTL) {
		c.Typing = false
	}
	if !c.Online {
		c.Typing = false
	}
	return c
}
