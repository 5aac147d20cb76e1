package gojob

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-hashgate/adapters/gologger"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	JobIDActivityPrune  = "hashgate.activity.prune"
	ScriptActivityPrune = "hashgate.activity.prune"
)

// Retention is the work a prune job performs.
type Retention interface {
	EnforceRetention(ctx context.Context) (int, error)
}

// RetryPolicy defines queue retry bounds to avoid unbounded retry loops.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// NormalizeAttempt enforces bounded retry behavior for a nack operation.
func (p RetryPolicy) NormalizeAttempt(opts queue.NackOptions, attempt int) queue.NackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		if p.DeadLetterOnMax || out.DeadLetter {
			out.DeadLetter = true
		}
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

// PruneMessage builds the execution message for one retention pass. Runs
// sharing an idempotency key collapse into one under the drop policy.
func PruneMessage(idempotencyKey string) *job.ExecutionMessage {
	return &job.ExecutionMessage{
		JobID:          JobIDActivityPrune,
		ScriptPath:     ScriptActivityPrune,
		Parameters:     map[string]any{},
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy("drop"),
	}
}

type PruneScheduler struct {
	enqueuer queue.Enqueuer
	now      func() time.Time
}

func NewPruneScheduler(enqueuer queue.Enqueuer) *PruneScheduler {
	return &PruneScheduler{
		enqueuer: enqueuer,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Schedule enqueues a prune run keyed to the current window, so repeated
// calls inside the same window are deduplicated by the queue.
func (s *PruneScheduler) Schedule(ctx context.Context, window time.Duration) error {
	if s == nil || s.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if window <= 0 {
		window = time.Hour
	}
	bucket := s.now().Truncate(window).Unix()
	return s.enqueuer.Enqueue(ctx, PruneMessage(fmt.Sprintf("%s:%d", JobIDActivityPrune, bucket)))
}

// PruneWorker pulls deliveries and runs retention for prune jobs.
type PruneWorker struct {
	dequeuer  queue.Dequeuer
	retention Retention
	policy    RetryPolicy
	hook      worker.Hook
	logger    job.Logger

	mu       sync.Mutex
	attempts map[string]int
}

type WorkerOption func(*PruneWorker)

func WithRetryPolicy(policy RetryPolicy) WorkerOption {
	return func(w *PruneWorker) {
		w.policy = policy
	}
}

func WithHook(hook worker.Hook) WorkerOption {
	return func(w *PruneWorker) {
		w.hook = hook
	}
}

// WithLogger sets the go-job logger used for prune outcomes.
func WithLogger(logger job.Logger) WorkerOption {
	return func(w *PruneWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithLoggerProvider resolves the worker logger by the prune script name.
func WithLoggerProvider(provider job.LoggerProvider) WorkerOption {
	return func(w *PruneWorker) {
		if provider == nil {
			return
		}
		if logger := provider.GetLogger(ScriptActivityPrune); logger != nil {
			w.logger = logger
		}
	}
}

func NewPruneWorker(dequeuer queue.Dequeuer, retention Retention, opts ...WorkerOption) *PruneWorker {
	w := &PruneWorker{
		dequeuer:  dequeuer,
		retention: retention,
		logger:    gologger.ToJobLogger(glog.Nop()),
		attempts:  map[string]int{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// ProcessNext handles a single delivery. Unknown jobs are nacked back to the
// queue untouched.
func (w *PruneWorker) ProcessNext(ctx context.Context) (int, error) {
	if w == nil || w.dequeuer == nil || w.retention == nil {
		return 0, fmt.Errorf("gojob: prune worker is not configured")
	}
	delivery, err := w.dequeuer.Dequeue(ctx)
	if err != nil {
		return 0, err
	}
	msg := delivery.Message()
	if msg == nil || strings.TrimSpace(msg.JobID) != JobIDActivityPrune {
		return 0, delivery.Nack(ctx, queue.NackOptions{Requeue: true, Reason: "unsupported job"})
	}

	attempt := w.nextAttempt(msg)
	event := worker.Event{Message: msg, Delivery: delivery, Attempt: attempt, StartedAt: time.Now().UTC()}
	w.onStart(ctx, event)

	deleted, runErr := w.retention.EnforceRetention(ctx)
	event.Duration = time.Since(event.StartedAt)
	if runErr != nil {
		event.Err = runErr
		opts := w.policy.NormalizeAttempt(queue.NackOptions{Requeue: true, Reason: runErr.Error()}, attempt)
		event.Delay = opts.Delay
		if opts.Requeue {
			w.onRetry(ctx, event)
		} else {
			w.onFailure(ctx, event)
			w.forget(msg)
		}
		w.logger.Error("activity prune failed", "attempt", attempt, "error", runErr.Error())
		if nackErr := delivery.Nack(ctx, opts); nackErr != nil {
			return 0, nackErr
		}
		return 0, runErr
	}

	w.forget(msg)
	w.onSuccess(ctx, event)
	w.logger.Info("activity prune completed", "deleted", deleted, "attempt", attempt)
	return deleted, delivery.Ack(ctx)
}

func (w *PruneWorker) nextAttempt(msg *job.ExecutionMessage) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := attemptKey(msg)
	w.attempts[key]++
	return w.attempts[key]
}

func (w *PruneWorker) forget(msg *job.ExecutionMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.attempts, attemptKey(msg))
}

func attemptKey(msg *job.ExecutionMessage) string {
	if key := strings.TrimSpace(msg.IdempotencyKey); key != "" {
		return key
	}
	return msg.JobID
}

func (w *PruneWorker) onStart(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnStart(ctx, event)
	}
}

func (w *PruneWorker) onSuccess(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnSuccess(ctx, event)
	}
}

func (w *PruneWorker) onFailure(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnFailure(ctx, event)
	}
}

func (w *PruneWorker) onRetry(ctx context.Context, event worker.Event) {
	if w.hook != nil {
		w.hook.OnRetry(ctx, event)
	}
}
