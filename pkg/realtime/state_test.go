package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicyDelays(t *testing.T) {
	p := DefaultPolicy()
	want := []time.Duration{
		1000 * time.Millisecond,
		2000 * time.Millisecond,
		4000 * time.Millisecond,
		8000 * time.Millisecond,
		16000 * time.Millisecond,
	}
	for attempt, d := range want {
		assert.Equal(t, d, p.Delay(attempt), "attempt %d", attempt)
	}
	assert.Equal(t, want, p.Schedule())
}

func TestPolicyDefaultsFillZeroValue(t *testing.T) {
	var p ReconnectPolicy
	assert.Equal(t, DefaultPolicy().Schedule(), p.Schedule())
}

func TestTransitionReconnectSequence(t *testing.T) {
	policy := DefaultPolicy()

	s, a := Transition(ConnectionState{}, EventConnect, policy)
	assert.Equal(t, ConnectionState{Phase: PhaseConnecting}, s)
	assert.Equal(t, ActionDial, a.Kind)

	var delays []time.Duration
	for i := 1; i <= policy.MaxAttempts; i++ {
		s, a = Transition(s, EventClose, policy)
		assert.Equal(t, ConnectionState{Phase: PhaseReconnecting, Attempt: i}, s)
		assert.Equal(t, ActionScheduleReconnect, a.Kind)
		delays = append(delays, a.Delay)

		s, a = Transition(s, EventTimer, policy)
		assert.Equal(t, PhaseReconnecting, s.Phase)
		assert.Equal(t, ActionDial, a.Kind)
	}
	assert.Equal(t, policy.Schedule(), delays)

	s, a = Transition(s, EventClose, policy)
	assert.Equal(t, PhaseGaveUp, s.Phase)
	assert.Equal(t, ActionGiveUp, a.Kind)

	// Nothing but an explicit connect leaves GaveUp.
	for _, ev := range []EventKind{EventClose, EventTimer, EventOpen, EventError} {
		next, act := Transition(s, ev, policy)
		assert.Equal(t, s, next, ev.String())
		assert.Equal(t, ActionNone, act.Kind, ev.String())
	}

	s, a = Transition(s, EventConnect, policy)
	assert.Equal(t, ConnectionState{Phase: PhaseConnecting}, s)
	assert.Equal(t, ActionDial, a.Kind)
}

func TestTransitionOpenResetsCounter(t *testing.T) {
	policy := DefaultPolicy()
	s := ConnectionState{Phase: PhaseReconnecting, Attempt: 3}

	s, _ = Transition(s, EventOpen, policy)
	assert.Equal(t, ConnectionState{Phase: PhaseConnected}, s)

	s, a := Transition(s, EventClose, policy)
	assert.Equal(t, ConnectionState{Phase: PhaseReconnecting, Attempt: 1}, s)
	assert.Equal(t, time.Second, a.Delay)
}

func TestTransitionErrorDoesNotMove(t *testing.T) {
	for _, phase := range []Phase{PhaseDisconnected, PhaseConnecting, PhaseConnected, PhaseReconnecting, PhaseGaveUp} {
		s := ConnectionState{Phase: phase, Attempt: 2}
		next, a := Transition(s, EventError, DefaultPolicy())
		assert.Equal(t, s, next)
		assert.Equal(t, ActionNone, a.Kind)
	}
}

func TestTransitionDisconnect(t *testing.T) {
	s, a := Transition(ConnectionState{Phase: PhaseReconnecting, Attempt: 4}, EventDisconnect, DefaultPolicy())
	assert.Equal(t, ConnectionState{Phase: PhaseDisconnected}, s)
	assert.Equal(t, ActionTeardown, a.Kind)
}

func TestConnectionStateJSON(t *testing.T) {
	data, err := json.Marshal(ConnectionState{Phase: PhaseReconnecting, Attempt: 2})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"phase":"reconnecting","attempt":2}`, string(data))
	assert.Equal(t, "reconnecting(2)", ConnectionState{Phase: PhaseReconnecting, Attempt: 2}.String())
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, id, want string
		wantErr        bool
	}{
		{base: "http://localhost:8787", id: "+15551234", want: "ws://localhost:8787/ws/phone/+15551234"},
		{base: "https://api.example.com/", id: "abc", want: "wss://api.example.com/ws/phone/abc"},
		{base: "https://api.example.com/v1", id: "a b", want: "wss://api.example.com/v1/ws/phone/a%20b"},
		{base: "", id: "abc", wantErr: true},
		{base: "https://api.example.com", id: " ", wantErr: true},
		{base: "ftp://example.com", id: "abc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ResolveURL(tt.base, tt.id)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrConfiguration, tt.base)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
