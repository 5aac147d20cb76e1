package gologger

import (
	"context"

	"github.com/goliatone/go-hashgate/core"
	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

// Resolve uses deterministic precedence provider > logger > nop. Both results
// mask credential-like key/value arguments before they reach the sink.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	resolvedProvider, resolvedLogger := glog.Resolve(name, provider, logger)
	return RedactingProvider(resolvedProvider), RedactingLogger(resolvedLogger)
}

// RedactingLogger wraps logger so secrets, tokens and verification codes
// passed as log arguments are replaced with core.RedactedValue.
func RedactingLogger(logger glog.Logger) glog.Logger {
	if logger == nil {
		return nil
	}
	if already, ok := logger.(*redactingLogger); ok {
		return already
	}
	return &redactingLogger{next: logger}
}

func RedactingProvider(provider glog.LoggerProvider) glog.LoggerProvider {
	if provider == nil {
		return nil
	}
	if already, ok := provider.(*redactingProvider); ok {
		return already
	}
	return &redactingProvider{next: provider}
}

// ToJobProvider maps a glog provider to the go-job logger provider contract.
func ToJobProvider(provider glog.LoggerProvider) job.LoggerProvider {
	if provider == nil {
		return nil
	}
	return job.GoLoggerProvider(RedactingProvider(provider))
}

// ToJobLogger maps a glog logger to the go-job logger contract.
func ToJobLogger(logger glog.Logger) job.Logger {
	if logger == nil {
		return nil
	}
	return job.GoLogger(RedactingLogger(logger))
}

// ResolveForJob resolves glog logger/provider then returns equivalent go-job adapters.
func ResolveForJob(
	name string,
	provider glog.LoggerProvider,
	logger glog.Logger,
) (glog.LoggerProvider, glog.Logger, job.LoggerProvider, job.Logger) {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	return resolvedProvider, resolvedLogger, ToJobProvider(resolvedProvider), ToJobLogger(resolvedLogger)
}

type redactingProvider struct {
	next glog.LoggerProvider
}

func (p *redactingProvider) GetLogger(name string) glog.Logger {
	logger := p.next.GetLogger(name)
	if logger == nil {
		return glog.Nop()
	}
	return RedactingLogger(logger)
}

type redactingLogger struct {
	next glog.Logger
}

func (l *redactingLogger) Trace(msg string, args ...any) {
	l.next.Trace(msg, core.RedactLogArgs(args)...)
}
func (l *redactingLogger) Debug(msg string, args ...any) {
	l.next.Debug(msg, core.RedactLogArgs(args)...)
}
func (l *redactingLogger) Info(msg string, args ...any) {
	l.next.Info(msg, core.RedactLogArgs(args)...)
}
func (l *redactingLogger) Warn(msg string, args ...any) {
	l.next.Warn(msg, core.RedactLogArgs(args)...)
}
func (l *redactingLogger) Error(msg string, args ...any) {
	l.next.Error(msg, core.RedactLogArgs(args)...)
}
func (l *redactingLogger) Fatal(msg string, args ...any) {
	l.next.Fatal(msg, core.RedactLogArgs(args)...)
}

func (l *redactingLogger) WithContext(ctx context.Context) glog.Logger {
	return RedactingLogger(l.next.WithContext(ctx))
}

func (l *redactingLogger) WithFields(fields map[string]any) glog.Logger {
	fieldsLogger, ok := l.next.(glog.FieldsLogger)
	if !ok {
		return l
	}
	return RedactingLogger(fieldsLogger.WithFields(core.RedactMetadata(fields)))
}
