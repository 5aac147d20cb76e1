package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-hashgate/core"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix       = "hashgate"
	defaultActivityPerPage = 25
	maxActivityPerPage     = 500
)

// ErrRedisUnavailable wraps transport failures talking to Redis.
var ErrRedisUnavailable = errors.New("redisstore: redis unavailable")

type Option func(*ActivityStore)

// WithKeyPrefix namespaces the activity keys. Defaults to "hashgate".
func WithKeyPrefix(prefix string) Option {
	return func(s *ActivityStore) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			s.prefix = prefix
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *ActivityStore) {
		if now != nil {
			s.now = now
		}
	}
}

// ActivityStore persists activity entries in a Redis hash plus a time index.
type ActivityStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewActivityStore(client redis.UniversalClient, opts ...Option) (*ActivityStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redisstore: redis client is required")
	}
	store := &ActivityStore{
		redis:  client,
		prefix: defaultKeyPrefix,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

func (s *ActivityStore) indexKey() string {
	return s.prefix + ":activity:index"
}

func (s *ActivityStore) entriesKey() string {
	return s.prefix + ":activity:entries"
}

type activityRecord struct {
	ID              string         `json:"id"`
	ClientID        string         `json:"client_id,omitempty"`
	Operation       string         `json:"operation"`
	Status          string         `json:"status"`
	StatusCode      int            `json:"status_code,omitempty"`
	Attempts        int            `json:"attempts,omitempty"`
	Reauthenticated bool           `json:"reauthenticated,omitempty"`
	ErrorCode       string         `json:"error_code,omitempty"`
	DurationMS      int64          `json:"duration_ms,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

func (s *ActivityStore) Record(ctx context.Context, entry core.ActivityEntry) error {
	if s == nil || s.redis == nil {
		return fmt.Errorf("redisstore: activity store is not configured")
	}
	operation := strings.TrimSpace(entry.Operation)
	if operation == "" {
		return fmt.Errorf("redisstore: activity operation is required")
	}
	record := activityRecord{
		ID:              strings.TrimSpace(entry.ID),
		ClientID:        strings.TrimSpace(entry.ClientID),
		Operation:       operation,
		Status:          strings.TrimSpace(string(entry.Status)),
		StatusCode:      entry.StatusCode,
		Attempts:        entry.Attempts,
		Reauthenticated: entry.Reauthenticated,
		ErrorCode:       strings.TrimSpace(entry.ErrorCode),
		DurationMS:      entry.DurationMS,
		Metadata:        core.RedactMetadata(entry.Metadata),
		CreatedAt:       entry.CreatedAt.UTC(),
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Status == "" {
		record.Status = string(core.ActivityStatusOK)
	}
	if entry.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("redisstore: encode activity entry: %w", err)
	}
	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.entriesKey(), record.ID, payload)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: score(record.CreatedAt), Member: record.ID})
		return nil
	})
	if err != nil {
		return errors.Join(ErrRedisUnavailable, err)
	}
	return nil
}

func (s *ActivityStore) List(ctx context.Context, filter core.ActivityFilter) (core.ActivityPage, error) {
	if s == nil || s.redis == nil {
		return core.ActivityPage{}, fmt.Errorf("redisstore: activity store is not configured")
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = defaultActivityPerPage
	}
	if perPage > maxActivityPerPage {
		perPage = maxActivityPerPage
	}
	offset := (page - 1) * perPage

	bounds := &redis.ZRangeBy{Min: "-inf", Max: "+inf"}
	if filter.From != nil {
		bounds.Min = strconv.FormatFloat(score(*filter.From), 'f', 0, 64)
	}
	if filter.To != nil {
		bounds.Max = strconv.FormatFloat(score(*filter.To), 'f', 0, 64)
	}
	ids, err := s.redis.ZRevRangeByScore(ctx, s.indexKey(), bounds).Result()
	if err != nil {
		return core.ActivityPage{}, errors.Join(ErrRedisUnavailable, err)
	}
	entries, err := s.load(ctx, ids)
	if err != nil {
		return core.ActivityPage{}, err
	}

	matched := make([]core.ActivityEntry, 0, len(entries))
	for _, entry := range entries {
		if matchesFilter(entry, filter) {
			matched = append(matched, entry)
		}
	}

	total := len(matched)
	items := []core.ActivityEntry{}
	if offset < total {
		end := min(offset+perPage, total)
		items = append(items, matched[offset:end]...)
	}
	hasNext := offset+len(items) < total
	next := ""
	if hasNext {
		next = strconv.Itoa(offset + len(items))
	}
	return core.ActivityPage{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		HasNext:    hasNext,
		NextCursor: next,
	}, nil
}

// Prune drops entries older than policy.TTL, then trims the oldest entries
// until at most policy.RowCap remain.
func (s *ActivityStore) Prune(ctx context.Context, policy core.ActivityRetentionPolicy) (int, error) {
	if s == nil || s.redis == nil {
		return 0, fmt.Errorf("redisstore: activity store is not configured")
	}
	deleted := 0
	if policy.TTL > 0 {
		cutoff := s.now().UTC().Add(-policy.TTL)
		expired, err := s.redis.ZRangeByScore(ctx, s.indexKey(), &redis.ZRangeBy{
			Min: "-inf",
			Max: "(" + strconv.FormatFloat(score(cutoff), 'f', 0, 64),
		}).Result()
		if err != nil {
			return deleted, errors.Join(ErrRedisUnavailable, err)
		}
		if err := s.remove(ctx, expired); err != nil {
			return deleted, err
		}
		deleted += len(expired)
	}
	if policy.RowCap > 0 {
		count, err := s.redis.ZCard(ctx, s.indexKey()).Result()
		if err != nil {
			return deleted, errors.Join(ErrRedisUnavailable, err)
		}
		if excess := count - int64(policy.RowCap); excess > 0 {
			oldest, err := s.redis.ZRange(ctx, s.indexKey(), 0, excess-1).Result()
			if err != nil {
				return deleted, errors.Join(ErrRedisUnavailable, err)
			}
			if err := s.remove(ctx, oldest); err != nil {
				return deleted, err
			}
			deleted += len(oldest)
		}
	}
	return deleted, nil
}

func (s *ActivityStore) load(ctx context.Context, ids []string) ([]core.ActivityEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	values, err := s.redis.HMGet(ctx, s.entriesKey(), ids...).Result()
	if err != nil {
		return nil, errors.Join(ErrRedisUnavailable, err)
	}
	out := make([]core.ActivityEntry, 0, len(values))
	for index, value := range values {
		raw, ok := value.(string)
		if !ok {
			// index member without a payload; skip it
			continue
		}
		var record activityRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, fmt.Errorf("redisstore: decode activity entry %s: %w", ids[index], err)
		}
		out = append(out, recordToDomain(record))
	}
	return out, nil
}

func (s *ActivityStore) remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, s.indexKey(), members...)
		pipe.HDel(ctx, s.entriesKey(), ids...)
		return nil
	})
	if err != nil {
		return errors.Join(ErrRedisUnavailable, err)
	}
	return nil
}

func score(at time.Time) float64 {
	return float64(at.UTC().UnixMicro())
}

func matchesFilter(entry core.ActivityEntry, filter core.ActivityFilter) bool {
	if value := strings.TrimSpace(filter.ClientID); value != "" && entry.ClientID != value {
		return false
	}
	if value := strings.TrimSpace(filter.Operation); value != "" && entry.Operation != value {
		return false
	}
	if filter.Status != "" && entry.Status != filter.Status {
		return false
	}
	return true
}

func recordToDomain(record activityRecord) core.ActivityEntry {
	metadata := record.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return core.ActivityEntry{
		ID:              record.ID,
		ClientID:        record.ClientID,
		Operation:       record.Operation,
		Status:          core.ActivityStatus(record.Status),
		StatusCode:      record.StatusCode,
		Attempts:        record.Attempts,
		Reauthenticated: record.Reauthenticated,
		ErrorCode:       record.ErrorCode,
		DurationMS:      record.DurationMS,
		Metadata:        metadata,
		CreatedAt:       record.CreatedAt.UTC(),
	}
}

var (
	_ core.ActivityStore           = (*ActivityStore)(nil)
	_ core.ActivityRetentionPruner = (*ActivityStore)(nil)
)
