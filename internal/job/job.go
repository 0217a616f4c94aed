package job

import (
	"errors"
	"time"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// CancelledMessage is the message recorded when an operator cancels a job.
const CancelledMessage = "cancelled by operator"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("job not found")
)

// Job is the mutable state of one automation run. It is mutated only by
// its worker goroutine and by coordinator control calls, always under
// the coordinator's lock.
type Job struct {
	ID             string    `json:"id"`
	Niche          string    `json:"niche"`
	RequestedCount int       `json:"requestedCount"`
	Status         Status    `json:"status"`
	Message        string    `json:"message"`
	Progress       int       `json:"progress"`
	StartedAt      time.Time `json:"startedAt"`
}
