package sqlstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-hashgate/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	defaultActivityPerPage = 25
	maxActivityPerPage     = 500
)

// ActivityStore persists gateway operation history in hashgate_activity_entries.
type ActivityStore struct {
	db   *bun.DB
	repo repository.Repository[*activityEntryRecord]
	now  func() time.Time
}

func NewActivityStore(db *bun.DB) (*ActivityStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*activityEntryRecord](db, activityHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid activity repository wiring: %w", err)
		}
	}
	return &ActivityStore{
		db:   db,
		repo: repo,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}, nil
}

func (s *ActivityStore) Record(ctx context.Context, entry core.ActivityEntry) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: activity store is not configured")
	}
	operation := strings.TrimSpace(entry.Operation)
	if operation == "" {
		return fmt.Errorf("sqlstore: activity operation is required")
	}
	id := strings.TrimSpace(entry.ID)
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := entry.CreatedAt.UTC()
	if entry.CreatedAt.IsZero() {
		createdAt = s.now()
	}
	status := strings.TrimSpace(string(entry.Status))
	if status == "" {
		status = string(core.ActivityStatusOK)
	}

	record := &activityEntryRecord{
		ID:              id,
		ClientID:        strings.TrimSpace(entry.ClientID),
		Operation:       operation,
		Status:          status,
		StatusCode:      entry.StatusCode,
		Attempts:        entry.Attempts,
		Reauthenticated: entry.Reauthenticated,
		ErrorCode:       strings.TrimSpace(entry.ErrorCode),
		DurationMS:      entry.DurationMS,
		Metadata:        core.RedactMetadata(entry.Metadata),
		CreatedAt:       createdAt,
	}

	_, err := s.repo.Create(ctx, record)
	return err
}

func (s *ActivityStore) List(ctx context.Context, filter core.ActivityFilter) (core.ActivityPage, error) {
	if s == nil || s.repo == nil {
		return core.ActivityPage{}, fmt.Errorf("sqlstore: activity store is not configured")
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

	selectors := []repository.SelectCriteria{
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(perPage, offset),
	}
	if clientID := strings.TrimSpace(filter.ClientID); clientID != "" {
		selectors = append(selectors, repository.SelectBy("client_id", "=", clientID))
	}
	if operation := strings.TrimSpace(filter.Operation); operation != "" {
		selectors = append(selectors, repository.SelectBy("operation", "=", operation))
	}
	if status := strings.TrimSpace(string(filter.Status)); status != "" {
		selectors = append(selectors, repository.SelectBy("status", "=", status))
	}
	if filter.From != nil {
		selectors = append(selectors, repository.SelectByTimetz("created_at", ">=", filter.From.UTC()))
	}
	if filter.To != nil {
		selectors = append(selectors, repository.SelectByTimetz("created_at", "<=", filter.To.UTC()))
	}

	records, total, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return core.ActivityPage{}, err
	}
	items := make([]core.ActivityEntry, 0, len(records))
	for _, record := range records {
		items = append(items, activityRecordToDomain(record))
	}
	hasNext := offset+len(items) < total
	nextOffset := ""
	if hasNext {
		nextOffset = strconv.Itoa(offset + len(items))
	}
	return core.ActivityPage{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		HasNext:    hasNext,
		NextCursor: nextOffset,
	}, nil
}

// Prune applies the TTL first and then trims the oldest rows above RowCap.
func (s *ActivityStore) Prune(ctx context.Context, policy core.ActivityRetentionPolicy) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: activity store is not configured")
	}
	deleted := 0

	if policy.TTL > 0 {
		cutoff := s.now().Add(-policy.TTL)
		res, err := s.db.NewDelete().
			Model((*activityEntryRecord)(nil)).
			Where("created_at < ?", cutoff).
			Exec(ctx)
		if err != nil {
			return deleted, err
		}
		affected, _ := res.RowsAffected()
		deleted += int(affected)
	}

	if policy.RowCap > 0 {
		total, err := s.db.NewSelect().Model((*activityEntryRecord)(nil)).Count(ctx)
		if err != nil {
			return deleted, err
		}
		excess := total - policy.RowCap
		if excess > 0 {
			res, err := s.db.NewRaw(
				"DELETE FROM hashgate_activity_entries WHERE id IN (SELECT id FROM hashgate_activity_entries ORDER BY created_at ASC LIMIT ?)",
				excess,
			).Exec(ctx)
			if err != nil {
				return deleted, err
			}
			affected, _ := res.RowsAffected()
			deleted += int(affected)
		}
	}

	return deleted, nil
}

func activityRecordToDomain(record *activityEntryRecord) core.ActivityEntry {
	if record == nil {
		return core.ActivityEntry{}
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
		Metadata:        copyAnyMap(record.Metadata),
		CreatedAt:       record.CreatedAt,
	}
}

func copyAnyMap(source map[string]any) map[string]any {
	if len(source) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(source))
	for key, value := range source {
		out[key] = value
	}
	return out
}
