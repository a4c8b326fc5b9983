package client

// State is the lifecycle state of the collaboration connection. Exactly one
// state is active at a time; Failed is terminal once the retry budget is
// exhausted, and Connected is only ever entered from Connecting or
// Reconnecting.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StateChange describes one transition. Err is set when the transition was
// caused by a transport fault, for example the close that precedes a
// reconnect attempt or the exhaustion that precedes Failed.
type StateChange struct {
	From State
	To   State
	Err  error
}
