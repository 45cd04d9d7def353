// internal/loaning/domain.go
package loaning

import "time"

// QueueKey partitions loan requests: one independent FIFO queue exists per
// (title, author) pair.
type QueueKey struct {
	Title  string
	Author string
}

// ServiceRequest is a citizen's request to loan one title. It is immutable
// once enqueued.
type ServiceRequest struct {
	CitizenID   string
	Key         QueueKey
	SubmittedAt time.Time
}

// CounterState is the lifecycle state of a service counter.
type CounterState int32

const (
	CounterActive CounterState = iota
	CounterPaused
)

func (s CounterState) String() string {
	switch s {
	case CounterActive:
		return "active"
	case CounterPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one claimed request. Every claim
// produces exactly one outcome; unsatisfiable requests are reported here
// rather than requeued or dropped.
type Outcome struct {
	Request   ServiceRequest
	CounterID int
	LoanID    string
	Err       error
}
