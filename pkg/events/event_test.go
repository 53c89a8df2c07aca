package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveEventRoundTrip(t *testing.T) {
	e := NewLiveEvent(TypeSyncState, "acct-1", map[string]interface{}{"phase": "connected"})
	data, err := e.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalLiveEvent(data)
	require.NoError(t, err)
	assert.Equal(t, e.Type, got.Type)
	assert.Equal(t, e.Identifier, got.Identifier)
	assert.Equal(t, e.Data, got.Data)
	assert.True(t, e.OccurredAt.Equal(got.OccurredAt))

	var _ Event = e
	assert.Equal(t, "acct-1", e.Payload()["identifier"])
}

func TestToMap(t *testing.T) {
	type status struct {
		Active   bool    `json:"active"`
		Progress float64 `json:"progress"`
	}
	assert.Equal(t, map[string]interface{}{"active": true, "progress": 40.0}, ToMap(status{Active: true, Progress: 40}))
	assert.Equal(t, map[string]interface{}{"value": 3}, ToMap(3))
}
