package gojob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-hashgate/adapters/gologger"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
)

func TestPruneScheduler_DeduplicatesWithinWindow(t *testing.T) {
	enqueuer := &stubQueueEnqueuer{}
	scheduler := NewPruneScheduler(enqueuer)
	scheduler.now = func() time.Time { return time.Date(2026, 3, 1, 12, 40, 0, 0, time.UTC) }

	if err := scheduler.Schedule(context.Background(), time.Hour); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	first := enqueuer.last
	scheduler.now = func() time.Time { return time.Date(2026, 3, 1, 12, 59, 0, 0, time.UTC) }
	if err := scheduler.Schedule(context.Background(), time.Hour); err != nil {
		t.Fatalf("schedule again: %v", err)
	}
	if first.JobID != JobIDActivityPrune || first.ScriptPath != ScriptActivityPrune {
		t.Fatalf("unexpected message %+v", first)
	}
	if first.IdempotencyKey == "" || first.IdempotencyKey != enqueuer.last.IdempotencyKey {
		t.Fatalf("expected same idempotency key inside window, got %q and %q", first.IdempotencyKey, enqueuer.last.IdempotencyKey)
	}
	if string(first.DedupPolicy) != "drop" {
		t.Fatalf("expected drop dedup policy, got %q", first.DedupPolicy)
	}

	if err := NewPruneScheduler(nil).Schedule(context.Background(), time.Hour); err == nil {
		t.Fatalf("expected missing enqueuer error")
	}
}

func TestPruneWorker_RunsRetentionAndAcks(t *testing.T) {
	delivery := &stubQueueDelivery{msg: PruneMessage("k1")}
	hook := &capturingHook{}
	w := NewPruneWorker(&stubQueueDequeuer{delivery: delivery}, &stubRetention{deleted: 7}, WithHook(hook))

	deleted, err := w.ProcessNext(context.Background())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if deleted != 7 || !delivery.acked {
		t.Fatalf("expected 7 deleted and ack, got %d acked=%v", deleted, delivery.acked)
	}
	if hook.starts != 1 || hook.successes != 1 || hook.last.Attempt != 1 {
		t.Fatalf("unexpected hook calls %+v", hook)
	}
}

func TestPruneWorker_RetryPolicyBoundaries(t *testing.T) {
	ctx := context.Background()
	delivery := &stubQueueDelivery{msg: PruneMessage("k2")}
	retention := &stubRetention{err: errors.New("store down")}
	hook := &capturingHook{}
	w := NewPruneWorker(&stubQueueDequeuer{delivery: delivery}, retention,
		WithHook(hook),
		WithRetryPolicy(RetryPolicy{MaxAttempts: 2, MaxDelay: 10 * time.Second, DeadLetterOnMax: true}),
	)

	if _, err := w.ProcessNext(ctx); err == nil {
		t.Fatalf("expected retention error")
	}
	if !delivery.nackOpts.Requeue || delivery.nackOpts.DeadLetter {
		t.Fatalf("expected requeue on first failure, got %+v", delivery.nackOpts)
	}
	if hook.retries != 1 || hook.last.Err == nil {
		t.Fatalf("expected retry hook with error, got %+v", hook)
	}

	if _, err := w.ProcessNext(ctx); err == nil {
		t.Fatalf("expected retention error on second attempt")
	}
	if delivery.nackOpts.Requeue || !delivery.nackOpts.DeadLetter {
		t.Fatalf("expected dead letter at max attempts, got %+v", delivery.nackOpts)
	}
	if hook.failures != 1 || hook.last.Attempt != 2 {
		t.Fatalf("expected failure hook on attempt 2, got %+v", hook)
	}
}

func TestPruneWorker_LogsFailureThroughJobLogger(t *testing.T) {
	captured := &lineLogger{}
	delivery := &stubQueueDelivery{msg: PruneMessage("k3")}
	w := NewPruneWorker(&stubQueueDequeuer{delivery: delivery}, &stubRetention{err: errors.New("store down")},
		WithLogger(gologger.ToJobLogger(captured)),
	)

	if _, err := w.ProcessNext(context.Background()); err == nil {
		t.Fatalf("expected retention error")
	}
	if captured.level != "error" || captured.msg != "activity prune failed" {
		t.Fatalf("expected failure line, got %s %q", captured.level, captured.msg)
	}
}

func TestPruneWorker_RequeuesUnknownJobs(t *testing.T) {
	delivery := &stubQueueDelivery{msg: &job.ExecutionMessage{JobID: "other.job"}}
	retention := &stubRetention{}
	w := NewPruneWorker(&stubQueueDequeuer{delivery: delivery}, retention)

	if _, err := w.ProcessNext(context.Background()); err != nil {
		t.Fatalf("process: %v", err)
	}
	if !delivery.nackOpts.Requeue || retention.calls != 0 {
		t.Fatalf("expected untouched requeue, got %+v calls=%d", delivery.nackOpts, retention.calls)
	}
}

func TestRetryPolicy_NormalizeAttempt(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, MaxDelay: 10 * time.Second}
	out := policy.NormalizeAttempt(queue.NackOptions{Delay: 30 * time.Second, Reason: " transient "}, 1)
	if out.Delay != 10*time.Second || !out.Requeue || out.Reason != "transient" {
		t.Fatalf("unexpected normalized options %+v", out)
	}
	out = policy.NormalizeAttempt(queue.NackOptions{Delay: -time.Second, DeadLetter: true}, 1)
	if out.Delay != 0 || out.Requeue || !out.DeadLetter {
		t.Fatalf("expected explicit dead letter kept, got %+v", out)
	}
	out = policy.NormalizeAttempt(queue.NackOptions{Requeue: true}, 3)
	if !out.Requeue {
		t.Fatalf("expected requeue fallback when dead letter is disabled, got %+v", out)
	}
}

type stubRetention struct {
	deleted int
	err     error
	calls   int
}

func (s *stubRetention) EnforceRetention(context.Context) (int, error) {
	s.calls++
	return s.deleted, s.err
}

type stubQueueEnqueuer struct {
	last *job.ExecutionMessage
}

func (s *stubQueueEnqueuer) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	s.last = msg
	return nil
}

type stubQueueDequeuer struct {
	delivery queue.Delivery
}

func (s *stubQueueDequeuer) Dequeue(context.Context) (queue.Delivery, error) {
	return s.delivery, nil
}

type stubQueueDelivery struct {
	msg      *job.ExecutionMessage
	acked    bool
	nackOpts queue.NackOptions
}

func (s *stubQueueDelivery) Message() *job.ExecutionMessage {
	return s.msg
}

func (s *stubQueueDelivery) Ack(context.Context) error {
	s.acked = true
	return nil
}

func (s *stubQueueDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	s.nackOpts = opts
	return nil
}

type capturingHook struct {
	starts    int
	successes int
	failures  int
	retries   int
	last      worker.Event
}

func (h *capturingHook) OnStart(_ context.Context, event worker.Event) {
	h.starts++
	h.last = event
}

func (h *capturingHook) OnSuccess(_ context.Context, event worker.Event) {
	h.successes++
	h.last = event
}

func (h *capturingHook) OnFailure(_ context.Context, event worker.Event) {
	h.failures++
	h.last = event
}

func (h *capturingHook) OnRetry(_ context.Context, event worker.Event) {
	h.retries++
	h.last = event
}

var _ worker.Hook = (*capturingHook)(nil)

type lineLogger struct {
	level string
	msg   string
}

func (l *lineLogger) Trace(msg string, _ ...any) { l.level, l.msg = "trace", msg }
func (l *lineLogger) Debug(msg string, _ ...any) { l.level, l.msg = "debug", msg }
func (l *lineLogger) Info(msg string, _ ...any)  { l.level, l.msg = "info", msg }
func (l *lineLogger) Warn(msg string, _ ...any)  { l.level, l.msg = "warn", msg }
func (l *lineLogger) Error(msg string, _ ...any) { l.level, l.msg = "error", msg }
func (l *lineLogger) Fatal(msg string, _ ...any) { l.level, l.msg = "fatal", msg }

func (l *lineLogger) WithContext(context.Context) glog.Logger { return l }
