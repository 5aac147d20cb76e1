package command

import (
	"strings"

	"github.com/goliatone/go-hashgate/core"
	"github.com/google/uuid"
)

const (
	TypeSignIn               = "hashgate.command.user.sign_in"
	TypeRegisterUser         = "hashgate.command.user.register"
	TypeSetAttribute         = "hashgate.command.user.attribute.set"
	TypeInitVerification     = "hashgate.command.verification.init"
	TypeCompleteVerification = "hashgate.command.verification.complete"
	TypeVerifyEmail          = "hashgate.command.user.verify_email"
	TypeInitPasswordReset    = "hashgate.command.password_reset.init"
	TypeVerifyPasswordReset  = "hashgate.command.password_reset.verify"
	TypeResetPassword        = "hashgate.command.password_reset.complete"
	TypeUpdatePassword       = "hashgate.command.user.password.update"
	TypeReauthenticate       = "hashgate.command.client.reauthenticate"
	TypePruneActivity        = "hashgate.command.activity.prune"
)

type SignInMessage struct {
	Username string
	Password string
}

func (SignInMessage) Type() string { return TypeSignIn }

func (m SignInMessage) Validate() error {
	if strings.TrimSpace(m.Username) == "" {
		return commandValidationError("username", "username is required")
	}
	if m.Password == "" {
		return commandValidationError("password", "password is required")
	}
	return nil
}

type RegisterUserMessage struct {
	Request core.UserRegistrationRequest
}

func (RegisterUserMessage) Type() string { return TypeRegisterUser }

func (m RegisterUserMessage) Validate() error {
	if strings.TrimSpace(m.Request.Username) == "" {
		return commandValidationError("username", "username is required")
	}
	if m.Request.Password == "" {
		return commandValidationError("password", "password is required")
	}
	return nil
}

type SetAttributeMessage struct {
	UserID uuid.UUID
	Key    string
	Value  any
}

func (SetAttributeMessage) Type() string { return TypeSetAttribute }

func (m SetAttributeMessage) Validate() error {
	if err := validateUserID(m.UserID); err != nil {
		return err
	}
	if strings.TrimSpace(m.Key) == "" {
		return commandValidationError("key", "attribute key is required")
	}
	return nil
}

type InitVerificationMessage struct {
	UserID uuid.UUID
}

func (InitVerificationMessage) Type() string { return TypeInitVerification }

func (m InitVerificationMessage) Validate() error {
	return validateUserID(m.UserID)
}

type CompleteVerificationMessage struct {
	SessionID string
	Code      string
}

func (CompleteVerificationMessage) Type() string { return TypeCompleteVerification }

func (m CompleteVerificationMessage) Validate() error {
	return validateSessionAndCode(m.SessionID, m.Code)
}

type VerifyEmailMessage struct {
	UserID uuid.UUID
}

func (VerifyEmailMessage) Type() string { return TypeVerifyEmail }

func (m VerifyEmailMessage) Validate() error {
	return validateUserID(m.UserID)
}

type InitPasswordResetMessage struct {
	Request core.InitPasswordResetRequest
}

func (InitPasswordResetMessage) Type() string { return TypeInitPasswordReset }

func (m InitPasswordResetMessage) Validate() error {
	hasUsername := m.Request.Username != nil && strings.TrimSpace(*m.Request.Username) != ""
	hasEmail := m.Request.Email != nil && strings.TrimSpace(*m.Request.Email) != ""
	if !hasUsername && !hasEmail {
		return commandValidationError("username", "username or email is required")
	}
	return nil
}

type VerifyPasswordResetMessage struct {
	SessionID string
	Code      string
}

func (VerifyPasswordResetMessage) Type() string { return TypeVerifyPasswordReset }

func (m VerifyPasswordResetMessage) Validate() error {
	return validateSessionAndCode(m.SessionID, m.Code)
}

type ResetPasswordMessage struct {
	ResetToken  string
	NewPassword string
}

func (ResetPasswordMessage) Type() string { return TypeResetPassword }

func (m ResetPasswordMessage) Validate() error {
	if strings.TrimSpace(m.ResetToken) == "" {
		return commandValidationError("resetToken", "reset token is required")
	}
	if m.NewPassword == "" {
		return commandValidationError("newPassword", "new password is required")
	}
	return nil
}

type UpdatePasswordMessage struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

func (UpdatePasswordMessage) Type() string { return TypeUpdatePassword }

func (m UpdatePasswordMessage) Validate() error {
	if err := validateUserID(m.UserID); err != nil {
		return err
	}
	if m.CurrentPassword == "" {
		return commandValidationError("currentPassword", "current password is required")
	}
	if m.NewPassword == "" {
		return commandValidationError("newPassword", "new password is required")
	}
	return nil
}

type ReauthenticateMessage struct{}

func (ReauthenticateMessage) Type() string { return TypeReauthenticate }

func (ReauthenticateMessage) Validate() error { return nil }

// PruneActivityMessage applies the configured retention policy to the
// activity store.
type PruneActivityMessage struct{}

func (PruneActivityMessage) Type() string { return TypePruneActivity }

func (PruneActivityMessage) Validate() error { return nil }

func validateUserID(id uuid.UUID) error {
	if id == uuid.Nil {
		return commandValidationError("userId", "user id is required")
	}
	return nil
}

func validateSessionAndCode(sessionID string, code string) error {
	if strings.TrimSpace(sessionID) == "" {
		return commandValidationError("verificationSessionId", "verification session id is required")
	}
	if strings.TrimSpace(code) == "" {
		return commandValidationError("verificationCode", "verification code is required")
	}
	return nil
}
