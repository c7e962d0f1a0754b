package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
	Op     string    // exact operation name, empty for all
	Failed bool      // only unsuccessful requests
}

// RequestEventData captures a single call to the exam API.
type RequestEventData struct {
	Op           string
	Method       string
	Path         string
	RequestID    string
	StatusCode   int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// RequestEvent is a stored RequestEventData.
type RequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	RequestEventData
}

// OpStats aggregates request events for one operation.
type OpStats struct {
	Op           string
	Calls        int
	Failures     int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to request events.
type EventRepo interface {
	// AppendRequest records an API call event.
	AppendRequest(ctx context.Context, data RequestEventData) error

	// QueryRequests returns events newest first.
	QueryRequests(ctx context.Context, opts QueryOpts) ([]RequestEvent, error)

	// GetRequest returns a single event, or nil if it does not exist.
	GetRequest(ctx context.Context, id int) (*RequestEvent, error)

	// RequestStatsByOp aggregates events per operation, busiest first.
	RequestStatsByOp(ctx context.Context) ([]OpStats, error)
}
