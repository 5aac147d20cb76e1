package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type activityEntryRecord struct {
	bun.BaseModel `bun:"table:hashgate_activity_entries,alias:hae"`

	ID              string         `bun:"id,pk"`
	ClientID        string         `bun:"client_id,notnull"`
	Operation       string         `bun:"operation,notnull"`
	Status          string         `bun:"status,notnull"`
	StatusCode      int            `bun:"status_code,notnull"`
	Attempts        int            `bun:"attempts,notnull"`
	Reauthenticated bool           `bun:"reauthenticated,notnull"`
	ErrorCode       string         `bun:"error_code,notnull"`
	DurationMS      int64          `bun:"duration_ms,notnull"`
	Metadata        map[string]any `bun:"metadata,type:jsonb,notnull"`
	CreatedAt       time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
