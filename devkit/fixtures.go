package devkit

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-hashgate/core"
	"github.com/google/uuid"
)

// MemoryActivityStore keeps activity entries in process. It mirrors the
// filtering and paging rules of the SQL store.
type MemoryActivityStore struct {
	mu      sync.Mutex
	entries []core.ActivityEntry
	Now     func() time.Time
}

func NewMemoryActivityStore() *MemoryActivityStore {
	return &MemoryActivityStore{}
}

func (s *MemoryActivityStore) Record(_ context.Context, entry core.ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(entry.ID) == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.currentTime()
	}
	if entry.Status == "" {
		entry.Status = core.ActivityStatusOK
	}
	entry.Metadata = copyMetadata(entry.Metadata)
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryActivityStore) List(_ context.Context, filter core.ActivityFilter) (core.ActivityPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]core.ActivityEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		if matchesActivityFilter(entry, filter) {
			matched = append(matched, entry)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 25
	}
	offset := (page - 1) * perPage
	total := len(matched)
	items := []core.ActivityEntry{}
	if offset < total {
		end := offset + perPage
		if end > total {
			end = total
		}
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

func (s *MemoryActivityStore) Prune(_ context.Context, policy core.ActivityRetentionPolicy) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.entries)
	if policy.TTL > 0 {
		cutoff := s.currentTime().Add(-policy.TTL)
		kept := s.entries[:0]
		for _, entry := range s.entries {
			if !entry.CreatedAt.Before(cutoff) {
				kept = append(kept, entry)
			}
		}
		s.entries = kept
	}
	if policy.RowCap > 0 && len(s.entries) > policy.RowCap {
		sort.SliceStable(s.entries, func(i, j int) bool {
			return s.entries[i].CreatedAt.Before(s.entries[j].CreatedAt)
		})
		s.entries = append([]core.ActivityEntry(nil), s.entries[len(s.entries)-policy.RowCap:]...)
	}
	return before - len(s.entries), nil
}

// Snapshot returns entries in insertion order.
func (s *MemoryActivityStore) Snapshot() []core.ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ActivityEntry(nil), s.entries...)
}

func (s *MemoryActivityStore) currentTime() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func matchesActivityFilter(entry core.ActivityEntry, filter core.ActivityFilter) bool {
	if value := strings.TrimSpace(filter.ClientID); value != "" && entry.ClientID != value {
		return false
	}
	if value := strings.TrimSpace(filter.Operation); value != "" && entry.Operation != value {
		return false
	}
	if filter.Status != "" && entry.Status != filter.Status {
		return false
	}
	if filter.From != nil && entry.CreatedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && entry.CreatedAt.After(*filter.To) {
		return false
	}
	return true
}

func copyMetadata(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

var (
	_ core.ActivityStore           = (*MemoryActivityStore)(nil)
	_ core.ActivityRetentionPruner = (*MemoryActivityStore)(nil)
)
