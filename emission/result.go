package emission

import "time"

// Result is the outcome of one emission attempt.
type Result struct {
	Success   bool      `json:"success"`
	KeyLabel  string    `json:"key_label"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Result messages for the failure modes callers match on.
const (
	MessageKeyNotFound = "key not found"
	MessageNoEmitter   = "no infrared emitter present"
)
