package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-hashgate/core"
)

var (
	_ gocmd.Commander[SignInMessage]               = (*SignInCommand)(nil)
	_ gocmd.Commander[RegisterUserMessage]         = (*RegisterUserCommand)(nil)
	_ gocmd.Commander[SetAttributeMessage]         = (*SetAttributeCommand)(nil)
	_ gocmd.Commander[InitVerificationMessage]     = (*InitVerificationCommand)(nil)
	_ gocmd.Commander[CompleteVerificationMessage] = (*CompleteVerificationCommand)(nil)
	_ gocmd.Commander[VerifyEmailMessage]          = (*VerifyEmailCommand)(nil)
	_ gocmd.Commander[InitPasswordResetMessage]    = (*InitPasswordResetCommand)(nil)
	_ gocmd.Commander[VerifyPasswordResetMessage]  = (*VerifyPasswordResetCommand)(nil)
	_ gocmd.Commander[ResetPasswordMessage]        = (*ResetPasswordCommand)(nil)
	_ gocmd.Commander[UpdatePasswordMessage]       = (*UpdatePasswordCommand)(nil)
	_ gocmd.Commander[ReauthenticateMessage]       = (*ReauthenticateCommand)(nil)
	_ gocmd.Commander[PruneActivityMessage]        = (*PruneActivityCommand)(nil)

	_ UserService       = (*core.Client)(nil)
	_ ActivityRetention = (*core.OperationalActivitySink)(nil)
)
