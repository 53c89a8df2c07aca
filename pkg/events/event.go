package events

import (
	"encoding/json"
	"time"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "plan_updated").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	TypePlanUpdated = "plan_updated"
	TypeSyncState   = "sync_state"
	TypeSyncMessage = "sync_message"
	TypeSuggestions = "suggestions_updated"
)

// LiveEvent is what the host pushes to UI subscribers of one identifier.
type LiveEvent struct {
	Type       string                 `json:"type"`
	Identifier string                 `json:"identifier"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func NewLiveEvent(eventType, identifier string, data map[string]interface{}) LiveEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return LiveEvent{
		Type:       eventType,
		Identifier: identifier,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

func (e LiveEvent) EventType() string {
	return e.Type
}

func (e LiveEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"type":        e.Type,
		"identifier":  e.Identifier,
		"data":        e.Data,
		"occurred_at": e.OccurredAt,
	}
}

func (e LiveEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Marshal encodes the event as the frame UI clients receive.
func (e LiveEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func UnmarshalLiveEvent(data []byte) (LiveEvent, error) {
	var e LiveEvent
	err := json.Unmarshal(data, &e)
	return e, err
}

// ToMap turns any JSON-encodable value into the generic payload shape.
func ToMap(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{}
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]interface{}{"value": v}
	}
	return out
}
