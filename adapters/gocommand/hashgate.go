package gocommand

import (
	"fmt"

	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	hgcommand "github.com/goliatone/go-hashgate/command"
	"github.com/goliatone/go-hashgate/core"
	hgquery "github.com/goliatone/go-hashgate/query"
)

// ClientSurface is everything the gateway client exposes to the bus.
type ClientSurface interface {
	hgcommand.UserService
	hgquery.UserReader
	hgquery.PoolReader
}

// Subscriptions groups dispatcher subscriptions so they can be released together.
type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, sub := range s {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
}

// RegisterClient registers every gateway command and query against the
// adapter's registry and the global dispatcher. activity may be nil, in which
// case the activity list query and prune command are skipped.
func RegisterClient(
	adapter *RegistryAdapter,
	client ClientSurface,
	activity core.ActivityReader,
	retention hgcommand.ActivityRetention,
	runnerOpts ...runner.Option,
) (Subscriptions, error) {
	if client == nil {
		return nil, fmt.Errorf("gocommand: client is required")
	}
	var subs Subscriptions
	fail := func(err error) (Subscriptions, error) {
		subs.Unsubscribe()
		return nil, err
	}
	add := func(sub commanddispatcher.Subscription, err error) error {
		if err != nil {
			return err
		}
		subs = append(subs, sub)
		return nil
	}

	steps := []func() error{
		func() error {
			return add(RegisterAndSubscribe(adapter, hgcommand.NewSignInCommand(client), runnerOpts...))
		},
		func() error {
			return add(RegisterAndSubscribe(adapter, hgcommand.NewRegisterUserCommand(client), runnerOpts...))
		},
		func() error {
			return add(RegisterAndSubscribe(adapter, hgcommand.NewSetAttributeCommand(client), runnerOpts...))
		},
		func() error {
			return add(RegisterAndSubscribe(adapter, hgcommand.NewInitVerificationCommand(client), runnerOpts...))
		},
		func() error {
			return add(RegisterAndSubscribe(adapter, hgcommand.NewCompleteVerificationCommand(client), runnerOpts...))
		},
		func() error {
			return add(RegisterAndSubscribe(adapter, hgcommand.NewVerifyEmailCommand(client), runnerOpts...))
		},
		func() error {
			return add(RegisterAndSubscribe(adapter, hgcommand.NewInitPasswordResetCommand(client), runnerOpts...))
		},
		func() error {
			return add(RegisterAndSubscribe(adapter, hgcommand.NewVerifyPasswordResetCommand(client), runnerOpts...))
		},
		func() error {
			return add(RegisterAndSubscribe(adapter, hgcommand.NewResetPasswordCommand(client), runnerOpts...))
		},
		func() error {
			return add(RegisterAndSubscribe(adapter, hgcommand.NewUpdatePasswordCommand(client), runnerOpts...))
		},
		func() error {
			return add(RegisterAndSubscribe(adapter, hgcommand.NewReauthenticateCommand(client), runnerOpts...))
		},
		func() error {
			return add(RegisterAndSubscribeQuery(adapter, hgquery.NewGetUserQuery(client), runnerOpts...))
		},
		func() error {
			return add(RegisterAndSubscribeQuery(adapter, hgquery.NewGetUserByTokenQuery(client), runnerOpts...))
		},
		func() error {
			return add(RegisterAndSubscribeQuery(adapter, hgquery.NewGetAttributeQuery(client), runnerOpts...))
		},
		func() error {
			return add(RegisterAndSubscribeQuery(adapter, hgquery.NewGetAttributesQuery(client), runnerOpts...))
		},
		func() error {
			return add(RegisterAndSubscribeQuery(adapter, hgquery.NewGetPoolQuery(client), runnerOpts...))
		},
	}
	if activity != nil {
		steps = append(steps, func() error {
			return add(RegisterAndSubscribeQuery(adapter, hgquery.NewListActivityQuery(activity), runnerOpts...))
		})
	}
	if retention != nil {
		steps = append(steps, func() error {
			return add(RegisterAndSubscribe(adapter, hgcommand.NewPruneActivityCommand(retention), runnerOpts...))
		})
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return fail(err)
		}
	}
	return subs, nil
}
