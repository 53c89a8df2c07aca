package realtime

// GlobalSyncStatus is the aggregate view of the backend sync, derived only from
// the messages folded into it.
type GlobalSyncStatus struct {
	Active           bool    `json:"active"`
	Progress         float64 `json:"progress"`
	CurrentOperation *string `json:"current_operation"`
}

// Fold applies one message to the status. It is pure.
func Fold(status GlobalSyncStatus, msg Message) GlobalSyncStatus {
	switch msg.Type {
	case TypeSyncStarted:
		op := msg.Operation
		return GlobalSyncStatus{Active: true, Progress: 0, CurrentOperation: &op}
	case TypeSyncProgress:
		next := status
		// Progress for an operation we never saw start still means work is in flight.
		if status.CurrentOperation == nil {
			next.Active = true
		}
		next.Progress = msg.Progress
		if msg.Operation != "" {
			op := msg.Operation
			next.CurrentOperation = &op
		}
		return next
	case TypeSyncCompleted:
		return GlobalSyncStatus{Active: false, Progress: 100}
	case TypeError:
		return GlobalSyncStatus{}
	default:
		return status
	}
}

// Operation returns the current operation or "" when idle.
func (s GlobalSyncStatus) Operation() string {
	if s.CurrentOperation == nil {
		return ""
	}
	return *s.CurrentOperation
}
