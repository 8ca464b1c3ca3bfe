package storage

import (
	"context"
	"time"
)

// CallStatus is the outcome of a recorded tool call.
type CallStatus string

const (
	StatusOK    CallStatus = "ok"
	StatusError CallStatus = "error"
)

// CallRecord is one logged tool invocation.
type CallRecord struct {
	ID         string     `json:"id"`
	Tool       string     `json:"tool"`
	Worker     string     `json:"worker"`
	DurationMS int64      `json:"duration_ms"`
	Status     CallStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CallListOptions controls filtering and pagination for ListCalls.
type CallListOptions struct {
	Tool   string
	Status CallStatus
	Limit  int
	Offset int
}

// Store is the persistence interface for the tool-call log.
type Store interface {
	// RecordCall inserts a call record. The ID field must be set by the caller.
	RecordCall(ctx context.Context, rec *CallRecord) error

	// GetCall returns a call record by ID or ID prefix.
	GetCall(ctx context.Context, id string) (*CallRecord, error)

	// ListCalls returns call records ordered by created_at descending.
	ListCalls(ctx context.Context, opts CallListOptions) ([]CallRecord, error)

	// Close releases resources.
	Close() error
}
