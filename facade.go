package hashgate

import (
	"fmt"
	"reflect"

	hgcommand "github.com/goliatone/go-hashgate/command"
	"github.com/goliatone/go-hashgate/core"
	hgquery "github.com/goliatone/go-hashgate/query"
)

type CommandQueryService interface {
	hgcommand.UserService
	hgquery.UserReader
	hgquery.PoolReader
}

type Commands struct {
	SignIn               *hgcommand.SignInCommand
	RegisterUser         *hgcommand.RegisterUserCommand
	SetAttribute         *hgcommand.SetAttributeCommand
	InitVerification     *hgcommand.InitVerificationCommand
	CompleteVerification *hgcommand.CompleteVerificationCommand
	VerifyEmail          *hgcommand.VerifyEmailCommand
	InitPasswordReset    *hgcommand.InitPasswordResetCommand
	VerifyPasswordReset  *hgcommand.VerifyPasswordResetCommand
	ResetPassword        *hgcommand.ResetPasswordCommand
	UpdatePassword       *hgcommand.UpdatePasswordCommand
	Reauthenticate       *hgcommand.ReauthenticateCommand
	PruneActivity        *hgcommand.PruneActivityCommand
}

type Queries struct {
	GetUser        *hgquery.GetUserQuery
	GetUserByToken *hgquery.GetUserByTokenQuery
	GetAttribute   *hgquery.GetAttributeQuery
	GetAttributes  *hgquery.GetAttributesQuery
	GetPool        *hgquery.GetPoolQuery
	ListActivity   *hgquery.ListActivityQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	activityReader    core.ActivityReader
	retention         hgcommand.ActivityRetention
	repositoryFactory any
}

func WithActivityReader(reader core.ActivityReader) FacadeOption {
	return func(options *facadeOptions) {
		options.activityReader = reader
	}
}

func WithActivityRetention(retention hgcommand.ActivityRetention) FacadeOption {
	return func(options *facadeOptions) {
		options.retention = retention
	}
}

// WithRepositoryFactory resolves the activity reader from any factory
// exposing an ActivityStore() method, such as sqlstore.RepositoryFactory.
func WithRepositoryFactory(factory any) FacadeOption {
	return func(options *facadeOptions) {
		options.repositoryFactory = factory
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("hashgate: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.activityReader
	if reader == nil {
		reader = resolveActivityReader(cfg.repositoryFactory)
	}
	retention := cfg.retention
	if retention == nil {
		retention, _ = reader.(hgcommand.ActivityRetention)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		SignIn:               hgcommand.NewSignInCommand(service),
		RegisterUser:         hgcommand.NewRegisterUserCommand(service),
		SetAttribute:         hgcommand.NewSetAttributeCommand(service),
		InitVerification:     hgcommand.NewInitVerificationCommand(service),
		CompleteVerification: hgcommand.NewCompleteVerificationCommand(service),
		VerifyEmail:          hgcommand.NewVerifyEmailCommand(service),
		InitPasswordReset:    hgcommand.NewInitPasswordResetCommand(service),
		VerifyPasswordReset:  hgcommand.NewVerifyPasswordResetCommand(service),
		ResetPassword:        hgcommand.NewResetPasswordCommand(service),
		UpdatePassword:       hgcommand.NewUpdatePasswordCommand(service),
		Reauthenticate:       hgcommand.NewReauthenticateCommand(service),
		PruneActivity:        hgcommand.NewPruneActivityCommand(retention),
	}
	facade.queries = Queries{
		GetUser:        hgquery.NewGetUserQuery(service),
		GetUserByToken: hgquery.NewGetUserByTokenQuery(service),
		GetAttribute:   hgquery.NewGetAttributeQuery(service),
		GetAttributes:  hgquery.NewGetAttributesQuery(service),
		GetPool:        hgquery.NewGetPoolQuery(service),
		ListActivity:   hgquery.NewListActivityQuery(reader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

func resolveActivityReader(factory any) core.ActivityReader {
	if factory == nil {
		return nil
	}
	if reader, ok := factory.(core.ActivityReader); ok {
		return reader
	}

	factoryValue := reflect.ValueOf(factory)
	if !factoryValue.IsValid() {
		return nil
	}
	if factoryValue.Kind() == reflect.Ptr && factoryValue.IsNil() {
		return nil
	}
	method := factoryValue.MethodByName("ActivityStore")
	if !method.IsValid() || method.Type().NumIn() != 0 || method.Type().NumOut() != 1 {
		return nil
	}

	results, ok := safeReflectCall(method)
	if !ok || len(results) != 1 {
		return nil
	}
	candidate := results[0]
	if !candidate.IsValid() {
		return nil
	}
	if candidate.Kind() == reflect.Ptr && candidate.IsNil() {
		return nil
	}
	reader, ok := candidate.Interface().(core.ActivityReader)
	if !ok {
		return nil
	}
	return reader
}

func safeReflectCall(method reflect.Value) (_ []reflect.Value, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return method.Call(nil), true
}
