package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ActivityRetentionPolicy bounds how much activity history a store keeps.
// Zero values disable the corresponding limit.
type ActivityRetentionPolicy struct {
	TTL    time.Duration
	RowCap int
}

// ErrActivitySinkClosed is returned by Record after Close when no fallback
// sink is configured.
var ErrActivitySinkClosed = errors.New("core: operational activity sink is closed")

type ActivityRetentionPruner interface {
	Prune(ctx context.Context, policy ActivityRetentionPolicy) (deleted int, err error)
}

// OperationalActivitySink queues activity writes so gateway calls never wait
// on the activity store. When the queue is full, or the primary write fails,
// entries go to the fallback sink if one is configured. After Close, entries
// go straight to the fallback.
type OperationalActivitySink struct {
	primary  ActivitySink
	fallback ActivitySink
	policy   ActivityRetentionPolicy
	pruner   ActivityRetentionPruner

	queue chan ActivityEntry
	now   func() time.Time

	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewOperationalActivitySink(
	primary ActivitySink,
	fallback ActivitySink,
	policy ActivityRetentionPolicy,
	bufferSize int,
) (*OperationalActivitySink, error) {
	if primary == nil {
		return nil, fmt.Errorf("core: primary activity sink is required")
	}
	if bufferSize <= 0 {
		bufferSize = 128
	}

	sink := &OperationalActivitySink{
		primary:  primary,
		fallback: fallback,
		policy:   policy,
		queue:    make(chan ActivityEntry, bufferSize),
		now: func() time.Time {
			return time.Now().UTC()
		},
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	if pruner, ok := primary.(ActivityRetentionPruner); ok {
		sink.pruner = pruner
	}

	go sink.run()
	return sink, nil
}

func (s *OperationalActivitySink) Record(ctx context.Context, entry ActivityEntry) error {
	if s == nil || s.primary == nil {
		return fmt.Errorf("core: operational activity sink is not configured")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		if s.fallback != nil {
			return s.fallback.Record(ctx, entry)
		}
		return ErrActivitySinkClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case s.queue <- entry:
		return nil
	default:
		if s.fallback != nil {
			return s.fallback.Record(ctx, entry)
		}
		return nil
	}
}

// List reads from the primary sink when it supports reads.
func (s *OperationalActivitySink) List(ctx context.Context, filter ActivityFilter) (ActivityPage, error) {
	if s == nil || s.primary == nil {
		return ActivityPage{}, fmt.Errorf("core: operational activity sink is not configured")
	}
	reader, ok := s.primary.(ActivityReader)
	if !ok {
		return ActivityPage{}, fmt.Errorf("core: primary activity sink %T does not support listing", s.primary)
	}
	return reader.List(ctx, filter)
}

func (s *OperationalActivitySink) EnforceRetention(ctx context.Context) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("core: operational activity sink is not configured")
	}
	if s.pruner == nil {
		return 0, nil
	}
	return s.pruner.Prune(ctx, s.policy)
}

// Close drains queued entries into the primary sink and stops the worker.
func (s *OperationalActivitySink) Close() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.stopCh)
		s.mu.Unlock()
		<-s.doneCh
	})
}

func (s *OperationalActivitySink) run() {
	defer close(s.doneCh)
	for {
		select {
		case <-s.stopCh:
			for {
				select {
				case entry := <-s.queue:
					s.write(entry)
				default:
					return
				}
			}
		case entry := <-s.queue:
			s.write(entry)
		}
	}
}

func (s *OperationalActivitySink) write(entry ActivityEntry) {
	if err := s.primary.Record(context.Background(), entry); err != nil && s.fallback != nil {
		_ = s.fallback.Record(context.Background(), entry)
	}
}
