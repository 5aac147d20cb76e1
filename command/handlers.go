package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-hashgate/core"
	"github.com/google/uuid"
)

// UserService is the mutating half of the gateway client.
type UserService interface {
	SignIn(ctx context.Context, username string, password string) (string, error)
	RegisterUser(ctx context.Context, req core.UserRegistrationRequest) (core.RegisteredUser, error)
	SetAttribute(ctx context.Context, userID uuid.UUID, key string, value any) error
	InitVerification(ctx context.Context, userID uuid.UUID) (core.VerificationSession, error)
	CompleteVerification(ctx context.Context, sessionID string, code string) (bool, error)
	VerifyEmail(ctx context.Context, userID uuid.UUID) (core.VerifyEmailResult, error)
	InitPasswordReset(ctx context.Context, req core.InitPasswordResetRequest) (core.VerificationSession, error)
	VerifyPasswordReset(ctx context.Context, sessionID string, code string) (string, error)
	ResetPassword(ctx context.Context, resetToken string, newPassword string) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword string, newPassword string) error
	Reauthenticate(ctx context.Context) error
}

type ActivityRetention interface {
	EnforceRetention(ctx context.Context) (int, error)
}

type SignInResult struct {
	Token string
}

type VerificationResult struct {
	Verified bool
}

type PasswordResetResult struct {
	ResetToken string
}

type PruneActivityResult struct {
	Deleted int
}

type SignInCommand struct {
	service UserService
}

func NewSignInCommand(service UserService) *SignInCommand {
	return &SignInCommand{service: service}
}

func (c *SignInCommand) Execute(ctx context.Context, msg SignInMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: sign in service is required")
	}
	token, err := c.service.SignIn(ctx, msg.Username, msg.Password)
	if err != nil {
		return err
	}
	storeResult(ctx, SignInResult{Token: token})
	return nil
}

type RegisterUserCommand struct {
	service UserService
}

func NewRegisterUserCommand(service UserService) *RegisterUserCommand {
	return &RegisterUserCommand{service: service}
}

func (c *RegisterUserCommand) Execute(ctx context.Context, msg RegisterUserMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: register user service is required")
	}
	out, err := c.service.RegisterUser(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SetAttributeCommand struct {
	service UserService
}

func NewSetAttributeCommand(service UserService) *SetAttributeCommand {
	return &SetAttributeCommand{service: service}
}

func (c *SetAttributeCommand) Execute(ctx context.Context, msg SetAttributeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: attribute service is required")
	}
	return c.service.SetAttribute(ctx, msg.UserID, msg.Key, msg.Value)
}

type InitVerificationCommand struct {
	service UserService
}

func NewInitVerificationCommand(service UserService) *InitVerificationCommand {
	return &InitVerificationCommand{service: service}
}

func (c *InitVerificationCommand) Execute(ctx context.Context, msg InitVerificationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: verification service is required")
	}
	out, err := c.service.InitVerification(ctx, msg.UserID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CompleteVerificationCommand struct {
	service UserService
}

func NewCompleteVerificationCommand(service UserService) *CompleteVerificationCommand {
	return &CompleteVerificationCommand{service: service}
}

func (c *CompleteVerificationCommand) Execute(ctx context.Context, msg CompleteVerificationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: verification service is required")
	}
	verified, err := c.service.CompleteVerification(ctx, msg.SessionID, msg.Code)
	if err != nil {
		return err
	}
	storeResult(ctx, VerificationResult{Verified: verified})
	return nil
}

type VerifyEmailCommand struct {
	service UserService
}

func NewVerifyEmailCommand(service UserService) *VerifyEmailCommand {
	return &VerifyEmailCommand{service: service}
}

func (c *VerifyEmailCommand) Execute(ctx context.Context, msg VerifyEmailMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: verify email service is required")
	}
	out, err := c.service.VerifyEmail(ctx, msg.UserID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type InitPasswordResetCommand struct {
	service UserService
}

func NewInitPasswordResetCommand(service UserService) *InitPasswordResetCommand {
	return &InitPasswordResetCommand{service: service}
}

func (c *InitPasswordResetCommand) Execute(ctx context.Context, msg InitPasswordResetMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: password reset service is required")
	}
	out, err := c.service.InitPasswordReset(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type VerifyPasswordResetCommand struct {
	service UserService
}

func NewVerifyPasswordResetCommand(service UserService) *VerifyPasswordResetCommand {
	return &VerifyPasswordResetCommand{service: service}
}

func (c *VerifyPasswordResetCommand) Execute(ctx context.Context, msg VerifyPasswordResetMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: password reset service is required")
	}
	token, err := c.service.VerifyPasswordReset(ctx, msg.SessionID, msg.Code)
	if err != nil {
		return err
	}
	storeResult(ctx, PasswordResetResult{ResetToken: token})
	return nil
}

type ResetPasswordCommand struct {
	service UserService
}

func NewResetPasswordCommand(service UserService) *ResetPasswordCommand {
	return &ResetPasswordCommand{service: service}
}

func (c *ResetPasswordCommand) Execute(ctx context.Context, msg ResetPasswordMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: password reset service is required")
	}
	return c.service.ResetPassword(ctx, msg.ResetToken, msg.NewPassword)
}

type UpdatePasswordCommand struct {
	service UserService
}

func NewUpdatePasswordCommand(service UserService) *UpdatePasswordCommand {
	return &UpdatePasswordCommand{service: service}
}

func (c *UpdatePasswordCommand) Execute(ctx context.Context, msg UpdatePasswordMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: update password service is required")
	}
	return c.service.UpdatePassword(ctx, msg.UserID, msg.CurrentPassword, msg.NewPassword)
}

type ReauthenticateCommand struct {
	service UserService
}

func NewReauthenticateCommand(service UserService) *ReauthenticateCommand {
	return &ReauthenticateCommand{service: service}
}

func (c *ReauthenticateCommand) Execute(ctx context.Context, _ ReauthenticateMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: reauthenticate service is required")
	}
	return c.service.Reauthenticate(ctx)
}

type PruneActivityCommand struct {
	retention ActivityRetention
}

func NewPruneActivityCommand(retention ActivityRetention) *PruneActivityCommand {
	return &PruneActivityCommand{retention: retention}
}

func (c *PruneActivityCommand) Execute(ctx context.Context, _ PruneActivityMessage) error {
	if c == nil || c.retention == nil {
		return commandDependencyError("command: activity retention is required")
	}
	deleted, err := c.retention.EnforceRetention(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, PruneActivityResult{Deleted: deleted})
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
