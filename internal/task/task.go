package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a task.
type Status string

// Possible task status values.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Task kind constants.
const (
	// KindProcessing covers conversation chunking and summarization jobs.
	KindProcessing = "processing"

	// KindInjection covers memory-injection jobs.
	KindInjection = "injection"
)

// ItemResult records the outcome of one per-item operation.
type ItemResult struct {
	ItemID  string `json:"item_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Record represents one unit of background work. Records are value-copied
// out of the store; callers never hold a reference to stored state.
type Record struct {
	ID             string       `json:"task_id"`
	Kind           string       `json:"kind"`
	Status         Status       `json:"status"`
	Progress       float64      `json:"progress"`
	ProcessedCount int          `json:"processed_count"`
	TotalCount     int          `json:"total_count"`
	Message        string       `json:"message"`
	Results        []ItemResult `json:"results"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Clone returns a deep copy of the record. The results slice is copied so
// that a reader can never observe a concurrent append.
func (r Record) Clone() Record {
	out := r
	if r.Results != nil {
		out.Results = make([]ItemResult, len(r.Results))
		copy(out.Results, r.Results)
	}
	return out
}

// NewID generates an unpredictable, collision-resistant task identifier
// with a time-based prefix for log readability.
func NewID() string {
	return fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102T150405"), uuid.NewString())
}
