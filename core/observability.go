package core

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (c *Client) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	result ExecutionResult,
	err error,
) {
	if c == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	operation = normalizeOperation(operation)
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	duration := c.clock().Sub(startedAt)
	if duration < 0 {
		duration = 0
	}

	fields := map[string]any{
		"event_type":      operation,
		"status":          status,
		"attempts":        result.Attempts,
		"reauthenticated": result.Reauthenticated,
		"duration_ms":     duration.Milliseconds(),
	}
	if result.Response.StatusCode > 0 {
		fields["status_code"] = result.Response.StatusCode
	}
	if err != nil {
		fields["error"] = err.Error()
		if code := ErrorTextCode(err); code != "" {
			fields["error_code"] = code
		}
	}

	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	c.recordCounter(ctx, MetricOperationTotal, 1, tags)
	c.recordHistogram(ctx, MetricOperationDurationMS, float64(duration.Milliseconds()), tags)
	c.recordActivity(ctx, startedAt, operation, result, duration, err)

	if err != nil {
		c.logError(ctx, operation+" failed", fields)
		return
	}
	c.logInfo(ctx, operation+" succeeded", fields)
}

// recordActivity hands one entry to the activity sink. Sink failures are
// logged and never change the operation outcome.
func (c *Client) recordActivity(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	result ExecutionResult,
	duration time.Duration,
	err error,
) {
	if c.activitySink == nil {
		return
	}
	entry := ActivityEntry{
		ID:              uuid.NewString(),
		ClientID:        c.identity.ClientID.String(),
		Operation:       operation,
		Status:          ActivityStatusOK,
		StatusCode:      result.Response.StatusCode,
		Attempts:        result.Attempts,
		Reauthenticated: result.Reauthenticated,
		DurationMS:      duration.Milliseconds(),
		CreatedAt:       startedAt.UTC(),
	}
	if err != nil {
		entry.Status = ActivityStatusError
		entry.ErrorCode = ErrorTextCode(err)
		entry.Metadata = map[string]any{"error": err.Error()}
	}
	entry.Metadata = RedactMetadata(entry.Metadata)
	if sinkErr := c.activitySink.Record(ctx, entry); sinkErr != nil {
		c.logError(ctx, "activity record failed", map[string]any{
			"event_type": operation,
			"error":      sinkErr.Error(),
		})
	}
}

func (c *Client) logInfo(ctx context.Context, message string, fields map[string]any) {
	c.logWithLevel(ctx, "info", message, fields)
}

func (c *Client) logError(ctx context.Context, message string, fields map[string]any) {
	c.logWithLevel(ctx, "error", message, fields)
}

func (c *Client) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logger := c.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func (c *Client) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if c == nil || c.metricsRecorder == nil {
		return
	}
	c.metricsRecorder.IncCounter(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func (c *Client) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if c == nil || c.metricsRecorder == nil {
		return
	}
	c.metricsRecorder.ObserveHistogram(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func normalizeOperation(operation string) string {
	operation = strings.TrimSpace(strings.ToLower(operation))
	operation = strings.ReplaceAll(operation, " ", "_")
	operation = strings.ReplaceAll(operation, "-", "_")
	return operation
}
