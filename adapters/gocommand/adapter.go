package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
)

const (
	// MessageNamespace prefixes every message type routed through the
	// HashGate bus.
	MessageNamespace = "hashgate."

	// QueueResolverKey is the resolver key used when none is given to
	// AddQueueResolver.
	QueueResolverKey = "hashgate.queue"
)

// ValidateMessageContract checks that msg has a HashGate message type and
// passes its own Validate, when it has one.
func ValidateMessageContract(msg any) error {
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message %T must implement Type() string", msg)
	}
	if err := checkMessageType(m.Type()); err != nil {
		return err
	}
	return command.ValidateMessage(msg)
}

func checkMessageType(messageType string) error {
	messageType = strings.TrimSpace(messageType)
	if messageType == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	if !strings.HasPrefix(messageType, MessageNamespace) {
		return fmt.Errorf("gocommand: message type %q is outside the %s namespace", messageType, strings.TrimSuffix(MessageNamespace, "."))
	}
	return nil
}

// handlerMessageType reads the message type a handler for T subscribes to.
func handlerMessageType[T any]() (string, error) {
	var zero T
	m, ok := any(zero).(command.Message)
	if !ok {
		return "", fmt.Errorf("gocommand: message %T must implement Type() string", zero)
	}
	return m.Type(), checkMessageType(m.Type())
}

// RegistryAdapter owns the go-command registry the gateway handlers are
// registered against.
type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) configured() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return nil
}

// RegisterCommand registers a handler. go-command keeps queries and commands
// in one registry, so queries go through here too.
func (a *RegistryAdapter) RegisterCommand(handler any) error {
	if err := a.configured(); err != nil {
		return err
	}
	return a.registry.RegisterCommand(handler)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if err := a.configured(); err != nil {
		return err
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

// AddQueueResolver mirrors registered gateway commands into a go-job queue
// registry so they can also run as queued jobs.
func (a *RegistryAdapter) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	if strings.TrimSpace(key) == "" {
		key = QueueResolverKey
	}
	return a.AddResolver(key, jobqueuecommand.QueueResolver(queueRegistry))
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a.configured() != nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if err := a.configured(); err != nil {
		return err
	}
	return a.registry.Initialize()
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

// RegisterAndSubscribe subscribes cmd on the dispatcher and registers it. The
// subscription is released if registration fails.
func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if err := adapter.configured(); err != nil {
		return nil, err
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	if _, err := handlerMessageType[T](); err != nil {
		return nil, err
	}
	subscription := commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	return keepOnRegister(adapter, cmd, subscription)
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if err := adapter.configured(); err != nil {
		return nil, err
	}
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	if _, err := handlerMessageType[T](); err != nil {
		return nil, err
	}
	subscription := commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	return keepOnRegister(adapter, qry, subscription)
}

func keepOnRegister(
	adapter *RegistryAdapter,
	handler any,
	subscription commanddispatcher.Subscription,
) (commanddispatcher.Subscription, error) {
	if err := adapter.RegisterCommand(handler); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}
