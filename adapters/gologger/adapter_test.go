package gologger

import (
	"context"
	"testing"

	"github.com/goliatone/go-hashgate/core"
	glog "github.com/goliatone/go-logger/glog"
)

func TestResolvePrefersProviderThenLogger(t *testing.T) {
	loggerOnly := &capturingLogger{}
	providerLogger := &capturingLogger{}
	provider := &capturingProvider{logger: providerLogger}

	_, resolved := Resolve("hashgate", provider, loggerOnly)
	resolved.Info("from provider")
	if providerLogger.last.msg != "from provider" || loggerOnly.last.msg != "" {
		t.Fatalf("expected provider logger precedence")
	}

	resolvedProvider, resolved := Resolve("hashgate", nil, loggerOnly)
	resolved.Info("from logger")
	if loggerOnly.last.msg != "from logger" {
		t.Fatalf("expected direct logger when provider is nil")
	}
	if resolvedProvider == nil {
		t.Fatalf("expected provider wrapper from logger")
	}

	_, resolved = Resolve("hashgate", nil, nil)
	if resolved == nil {
		t.Fatalf("expected nop logger fallback")
	}
}

func TestResolvedLoggerMasksCredentials(t *testing.T) {
	captured := &capturingLogger{}
	_, resolved := Resolve("hashgate", nil, captured)

	resolved.WithContext(context.Background()).Error("client auth failed",
		"client_id", "c-1",
		"client_secret", "s3cr3t",
		"authorization", "Bearer tok-1",
	)
	args := captured.last.args
	if len(args) != 6 || args[1] != "c-1" {
		t.Fatalf("expected client id kept, got %#v", args)
	}
	if args[3] != core.RedactedValue || args[5] != core.RedactedValue {
		t.Fatalf("expected secret and bearer masked, got %#v", args)
	}

	if again := RedactingLogger(resolved); again != resolved {
		t.Fatalf("expected wrapping to be idempotent")
	}
}

func TestGoJobBridgeMasksCredentials(t *testing.T) {
	providerLogger := &capturingLogger{}
	provider := &capturingProvider{logger: providerLogger}

	_, _, jobProvider, jobLogger := ResolveForJob("hashgate", provider, nil)
	if jobProvider == nil {
		t.Fatalf("expected go-job provider bridge")
	}
	if jobLogger == nil {
		t.Fatalf("expected go-job logger bridge")
	}

	bridged := jobProvider.GetLogger("hashgate.activity.prune")
	bridged.Info("hello", "k", "v", "reset_token", "r-1")

	captured := providerLogger.last
	if captured.msg != "hello" {
		t.Fatalf("expected bridged message, got %q", captured.msg)
	}
	if captured.args[0] != "k" || captured.args[1] != "v" {
		t.Fatalf("expected bridged args, got %#v", captured.args)
	}
	if captured.args[3] != core.RedactedValue {
		t.Fatalf("expected reset token masked, got %#v", captured.args)
	}
}

var (
	_ glog.Logger         = (*capturingLogger)(nil)
	_ glog.LoggerProvider = (*capturingProvider)(nil)
)

type capturingProvider struct {
	logger *capturingLogger
}

func (p *capturingProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

type logCall struct {
	msg  string
	args []any
}

type capturingLogger struct {
	last logCall
}

func (l *capturingLogger) record(msg string, args []any) {
	l.last = logCall{msg: msg, args: append([]any(nil), args...)}
}

func (l *capturingLogger) Trace(msg string, args ...any) { l.record(msg, args) }
func (l *capturingLogger) Debug(msg string, args ...any) { l.record(msg, args) }
func (l *capturingLogger) Info(msg string, args ...any)  { l.record(msg, args) }
func (l *capturingLogger) Warn(msg string, args ...any)  { l.record(msg, args) }
func (l *capturingLogger) Error(msg string, args ...any) { l.record(msg, args) }
func (l *capturingLogger) Fatal(msg string, args ...any) { l.record(msg, args) }

func (l *capturingLogger) WithContext(context.Context) glog.Logger {
	return l
}
