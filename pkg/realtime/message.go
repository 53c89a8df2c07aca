package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType is the "type" field of a push frame.
type MessageType string

const (
	TypeSyncStarted   MessageType = "sync_started"
	TypeSyncProgress  MessageType = "sync_progress"
	TypeSyncCompleted MessageType = "sync_completed"
	TypeError         MessageType = "error"
)

// Message is a decoded push frame. Operation and Progress are lifted out of Data
// for the types that carry them.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Operation string          `json:"operation,omitempty"`
	Progress  float64         `json:"progress,omitempty"`
}

type wireFrame struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

type syncData struct {
	Operation *string  `json:"operation"`
	Progress  *float64 `json:"progress"`
}

// ParseMessage decodes one text frame. A frame without a timestamp is stamped
// with receivedAt. Every failure wraps ErrProtocol.
func ParseMessage(raw []byte, receivedAt time.Time) (Message, error) {
	var frame wireFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	msg := Message{Type: frame.Type, Timestamp: receivedAt}
	if len(frame.Data) > 0 && string(frame.Data) != "null" {
		msg.Data = frame.Data
	}

	if frame.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339Nano, frame.Timestamp)
		if err != nil {
			return Message{}, fmt.Errorf("%w: bad timestamp %q", ErrProtocol, frame.Timestamp)
		}
		msg.Timestamp = ts
	}

	switch frame.Type {
	case TypeSyncStarted, TypeSyncProgress:
		var data syncData
		if msg.Data != nil {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				return Message{}, fmt.Errorf("%w: %s data: %v", ErrProtocol, frame.Type, err)
			}
		}
		if data.Operation != nil {
			msg.Operation = *data.Operation
		}
		if frame.Type == TypeSyncProgress {
			if data.Progress == nil {
				return Message{}, fmt.Errorf("%w: sync_progress without progress", ErrProtocol)
			}
			msg.Progress = clampProgress(*data.Progress)
		}
	case TypeSyncCompleted, TypeError:
	default:
		return Message{}, fmt.Errorf("%w: unknown type %q", ErrProtocol, frame.Type)
	}

	return msg, nil
}

func clampProgress(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
