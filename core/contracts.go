package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Timeout              time.Duration
	MaxResponseBodyBytes int64
	Metadata             map[string]any
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// TransportAdapter performs one HTTP exchange. Implementations must not retry.
type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

// AttemptFunc builds and sends one request using the supplied bearer token.
// It must be a pure function of the token so the executor can replay it.
type AttemptFunc func(ctx context.Context, token string) (TransportResponse, error)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type RequestValidator interface {
	ValidateRequest(req any) error
}

type ActivityStatus string

const (
	ActivityStatusOK    ActivityStatus = "ok"
	ActivityStatusError ActivityStatus = "error"
)

// ActivityEntry describes one completed gateway operation.
type ActivityEntry struct {
	ID              string
	ClientID        string
	Operation       string
	Status          ActivityStatus
	StatusCode      int
	Attempts        int
	Reauthenticated bool
	ErrorCode       string
	DurationMS      int64
	Metadata        map[string]any
	CreatedAt       time.Time
}

type ActivityFilter struct {
	ClientID  string
	Operation string
	Status    ActivityStatus
	From      *time.Time
	To        *time.Time
	Page      int
	PerPage   int
}

type ActivityPage struct {
	Items      []ActivityEntry
	Page       int
	PerPage    int
	Total      int
	HasNext    bool
	NextCursor string
}

type ActivitySink interface {
	Record(ctx context.Context, entry ActivityEntry) error
}

type ActivityReader interface {
	List(ctx context.Context, filter ActivityFilter) (ActivityPage, error)
}

type ActivityStore interface {
	ActivitySink
	ActivityReader
}
