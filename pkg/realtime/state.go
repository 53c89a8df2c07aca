package realtime

import (
	"fmt"
	"time"
)

// Phase is the coarse connection phase.
type Phase int

const (
	PhaseDisconnected Phase = iota
	PhaseConnecting
	PhaseConnected
	PhaseReconnecting
	PhaseGaveUp
)

func (p Phase) String() string {
	switch p {
	case PhaseDisconnected:
		return "disconnected"
	case PhaseConnecting:
		return "connecting"
	case PhaseConnected:
		return "connected"
	case PhaseReconnecting:
		return "reconnecting"
	case PhaseGaveUp:
		return "gave_up"
	default:
		return "unknown"
	}
}

// ConnectionState is a phase plus the reconnect attempt counter. Attempt is
// meaningful for Reconnecting and GaveUp and is zero otherwise.
type ConnectionState struct {
	Phase   Phase `json:"-"`
	Attempt int   `json:"attempt"`
}

func (s ConnectionState) String() string {
	if s.Phase == PhaseReconnecting {
		return fmt.Sprintf("reconnecting(%d)", s.Attempt)
	}
	return s.Phase.String()
}

// MarshalJSON renders the state as {"phase": "...", "attempt": n}.
func (s ConnectionState) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"phase":%q,"attempt":%d}`, s.Phase.String(), s.Attempt)), nil
}

// EventKind enumerates the inputs of the connection state machine.
type EventKind int

const (
	EventConnect EventKind = iota
	EventOpen
	EventError
	EventClose
	EventTimer
	EventDisconnect
)

func (k EventKind) String() string {
	switch k {
	case EventConnect:
		return "connect"
	case EventOpen:
		return "open"
	case EventError:
		return "error"
	case EventClose:
		return "close"
	case EventTimer:
		return "timer"
	case EventDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// ActionKind is the side effect a transition asks the client to perform.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionDial
	ActionScheduleReconnect
	ActionGiveUp
	ActionTeardown
)

// Action is returned by Transition. Delay is set for ActionScheduleReconnect.
type Action struct {
	Kind  ActionKind
	Delay time.Duration
}

// Transition is the connection state machine. It is pure; the client performs
// the returned action.
func Transition(s ConnectionState, ev EventKind, policy ReconnectPolicy) (ConnectionState, Action) {
	policy = policy.withDefaults()

	switch ev {
	case EventConnect:
		return ConnectionState{Phase: PhaseConnecting}, Action{Kind: ActionDial}

	case EventOpen:
		if s.Phase == PhaseConnecting || s.Phase == PhaseReconnecting {
			return ConnectionState{Phase: PhaseConnected}, Action{}
		}

	case EventClose:
		switch s.Phase {
		case PhaseConnecting, PhaseConnected, PhaseReconnecting:
			if s.Attempt >= policy.MaxAttempts {
				return ConnectionState{Phase: PhaseGaveUp, Attempt: s.Attempt}, Action{Kind: ActionGiveUp}
			}
			return ConnectionState{Phase: PhaseReconnecting, Attempt: s.Attempt + 1},
				Action{Kind: ActionScheduleReconnect, Delay: policy.Delay(s.Attempt)}
		}

	case EventTimer:
		if s.Phase == PhaseReconnecting {
			return s, Action{Kind: ActionDial}
		}

	case EventDisconnect:
		return ConnectionState{Phase: PhaseDisconnected}, Action{Kind: ActionTeardown}
	}

	// EventError and out-of-phase events leave the state alone.
	return s, Action{}
}
