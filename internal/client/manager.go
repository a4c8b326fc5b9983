package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Akashc1512/SarvanOM-sub006/internal/router"
	"github.com/Akashc1512/SarvanOM-sub006/internal/wire"
)

var (
	// ErrReconnectExhausted is reported through state-change notifications
	// once the retry budget is spent.
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

	// ErrClosed is returned when a dial completes after an explicit
	// Disconnect already tore the manager down.
	ErrClosed = errors.New("connection manager closed")
)

// Manager owns a single outbound websocket connection: it dials, writes
// outbound envelopes, feeds inbound envelopes to the router, and reconnects
// with a linear backoff after unintentional closes.
//
// All connection state is guarded by one mutex; sends, inbound close
// handling and reconnect timers serialize on it.
type Manager struct {
	cfg    *Config
	router *router.Router
	dialer *websocket.Dialer
	logger *zap.Logger

	mu         sync.Mutex
	conn       *websocket.Conn
	state      State
	attempts   int
	closed     bool
	retryTimer *time.Timer
	pending    []wire.Envelope
	gen        int
	stateSubs  []func(StateChange)

	// dialWait is closed when the Connect-initiated dial settles; dialErr
	// holds its outcome for callers that joined the wait.
	dialWait chan struct{}
	dialErr  error
}

func NewManager(cfg *Config, rt *router.Router) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		cfg:    cfg,
		router: rt,
		dialer: websocket.DefaultDialer,
		logger: cfg.Logger,
		state:  StateDisconnected,
	}
}

// Connect dials the relay and suspends the caller until the socket is open or
// the dial fails. A caller arriving while another dial is in flight suspends
// too and shares its outcome. On success the state becomes Connected and the
// retry counter resets.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateConnected {
		m.mu.Unlock()
		return nil
	}
	if m.state == StateConnecting {
		wait := m.dialWait
		m.mu.Unlock()
		<-wait
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.dialErr
	}
	m.stopRetryTimerLocked()
	m.closed = false
	m.attempts = 0
	m.dialWait = make(chan struct{})
	m.dialErr = nil
	m.setStateLocked(StateConnecting, nil)
	m.mu.Unlock()

	err := m.dial(ctx)

	m.mu.Lock()
	m.dialErr = err
	close(m.dialWait)
	if err != nil && m.state == StateConnecting {
		m.setStateLocked(StateDisconnected, err)
	}
	m.mu.Unlock()
	return err
}

// Send constructs an envelope for payload and writes it. When the connection
// is not established the message is dropped with a warning, or buffered until
// reconnect under SendPolicyBuffer. Send never blocks on the network state
// and never surfaces transport errors to the caller.
func (m *Manager) Send(msgType string, payload any) {
	env, err := wire.NewEnvelope(msgType, payload, "")
	if err != nil {
		m.logger.Error("failed to encode envelope", zap.String("type", msgType), zap.Error(err))
		return
	}

	m.mu.Lock()
	if m.state != StateConnected || m.conn == nil {
		state := m.state
		if m.cfg.SendPolicy == SendPolicyBuffer && !m.closed {
			m.pending = append(m.pending, env)
			m.mu.Unlock()
			m.logger.Debug("buffered message until reconnect", zap.String("type", msgType))
			return
		}
		m.mu.Unlock()
		m.logger.Warn("dropping message, not connected",
			zap.String("type", msgType),
			zap.String("state", state.String()),
		)
		return
	}
	err = m.conn.WriteJSON(env)
	m.mu.Unlock()
	if err != nil {
		// The read pump observes the broken socket and drives the
		// reconnect; nothing is surfaced per send.
		m.logger.Error("failed to write envelope", zap.String("type", msgType), zap.Error(err))
	}
}

// Disconnect deliberately closes the connection, cancels any pending
// reconnect timer and clears the subscription registry. Idempotent.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.closed = true
	m.stopRetryTimerLocked()
	conn := m.conn
	m.conn = nil
	m.pending = nil
	m.setStateLocked(StateDisconnected, nil)
	m.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			m.logger.Debug("error closing connection", zap.Error(err))
		}
		m.logger.Info("disconnected")
	}
	m.router.Reset()
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// OnStateChange registers fn for every state transition, including the
// terminal transition to StateFailed when the retry budget is exhausted.
// Notifications are delivered asynchronously.
func (m *Manager) OnStateChange(fn func(StateChange)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateSubs = append(m.stateSubs, fn)
}

func (m *Manager) dial(ctx context.Context) error {
	conn, _, err := m.dialer.DialContext(ctx, m.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("error dialing %s: %w", m.cfg.URL, err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		conn.Close()
		return ErrClosed
	}
	if m.conn != nil {
		m.conn.Close()
	}
	m.conn = conn
	m.attempts = 0
	m.gen++
	gen := m.gen
	m.setStateLocked(StateConnected, nil)
	flush := m.pending
	m.pending = nil
	m.mu.Unlock()

	m.logger.Info("connected", zap.String("url", m.cfg.URL))
	for _, env := range flush {
		m.writeEnvelope(env)
	}
	go m.readPump(conn, gen)
	return nil
}

// readPump reads frames until the socket breaks. Frames that fail to parse
// are logged and discarded without tearing the connection down.
func (m *Manager) readPump(conn *websocket.Conn, gen int) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			m.handleClose(gen, err)
			return
		}
		env, err := wire.Decode(raw)
		if err != nil {
			m.logger.Debug("discarding unparseable frame", zap.Error(err))
			continue
		}
		payload, err := wire.DecodePayload(env)
		if err != nil {
			m.logger.Debug("discarding envelope", zap.String("type", env.Type), zap.Error(err))
			continue
		}
		m.router.Dispatch(env, payload)
	}
}

func (m *Manager) handleClose(gen int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen || m.closed {
		// Stale pump, or the close was intentional.
		return
	}
	m.conn = nil
	m.setStateLocked(StateDisconnected, err)
	m.logger.Warn("connection closed unexpectedly", zap.Error(err))
	m.scheduleReconnectLocked(err)
}

func (m *Manager) scheduleReconnectLocked(cause error) {
	if m.attempts >= m.cfg.MaxAttempts {
		m.logger.Error("giving up on reconnecting",
			zap.Int("attempts", m.attempts),
			zap.Error(cause),
		)
		m.setStateLocked(StateFailed, ErrReconnectExhausted)
		return
	}
	m.attempts++
	delay := time.Duration(m.attempts) * m.cfg.BaseDelay
	m.setStateLocked(StateReconnecting, cause)
	m.logger.Info("scheduling reconnect",
		zap.Int("attempt", m.attempts),
		zap.Duration("delay", delay),
	)
	m.retryTimer = time.AfterFunc(delay, m.reconnect)
}

func (m *Manager) reconnect() {
	m.mu.Lock()
	if m.closed || m.state != StateReconnecting {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if err := m.dial(context.Background()); err != nil {
		m.logger.Warn("reconnect attempt failed", zap.Error(err))
		m.mu.Lock()
		if !m.closed && m.state == StateReconnecting {
			m.setStateLocked(StateDisconnected, err)
			m.scheduleReconnectLocked(err)
		}
		m.mu.Unlock()
	}
}

func (m *Manager) writeEnvelope(env wire.Envelope) {
	m.mu.Lock()
	conn := m.conn
	var err error
	if conn != nil {
		err = conn.WriteJSON(env)
	}
	m.mu.Unlock()
	if err != nil {
		m.logger.Error("failed to flush buffered envelope", zap.String("type", env.Type), zap.Error(err))
	}
}

func (m *Manager) stopRetryTimerLocked() {
	if m.retryTimer != nil {
		m.retryTimer.Stop()
		m.retryTimer = nil
	}
}

func (m *Manager) setStateLocked(to State, err error) {
	if m.state == to {
		return
	}
	change := StateChange{From: m.state, To: to, Err: err}
	m.state = to
	if len(m.stateSubs) == 0 {
		return
	}
	subs := make([]func(StateChange), len(m.stateSubs))
	copy(subs, m.stateSubs)
	go func() {
		for _, fn := range subs {
			fn(change)
		}
	}()
}
