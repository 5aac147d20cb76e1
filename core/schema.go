package core

import (
	"encoding/json"

	"github.com/google/uuid"
)

type ClientAuthRequest struct {
	ClientID     string `json:"clientId" validate:"required"`
	ClientSecret string `json:"clientSecret" validate:"required"`
}

type UserAuthRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserRegistrationRequest struct {
	Username string     `json:"username" validate:"required"`
	Email    *string    `json:"email,omitempty" validate:"omitempty,email"`
	Password string     `json:"password" validate:"required"`
	GroupID  *uuid.UUID `json:"groupId,omitempty"`
}

type GetUserRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

type GetUserByTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type SetAttributeRequest struct {
	UserID uuid.UUID       `json:"userId" validate:"required"`
	Key    string          `json:"key" validate:"required"`
	Value  json.RawMessage `json:"value"`
}

type GetAttributeRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
	Key    string    `json:"key" validate:"required"`
}

type GetAttributesRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

type InitVerificationRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

type CompleteVerificationRequest struct {
	VerificationSessionID string `json:"verificationSessionId" validate:"required"`
	VerificationCode      string `json:"verificationCode" validate:"required"`
}

type VerifyEmailRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}

type InitPasswordResetRequest struct {
	Username *string `json:"username,omitempty" validate:"required_without=Email"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

type VerifyPasswordResetRequest struct {
	VerificationSessionID string `json:"verificationSessionId" validate:"required"`
	VerificationCode      string `json:"verificationCode" validate:"required"`
}

type ResetPasswordRequest struct {
	ResetToken  string `json:"resetToken" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type UpdatePasswordRequest struct {
	UserID          uuid.UUID `json:"userId" validate:"required"`
	CurrentPassword string    `json:"currentPassword" validate:"required"`
	NewPassword     string    `json:"newPassword" validate:"required"`
}

type AuthResponse struct {
	Token         *string `json:"token,omitempty"`
	Message       *string `json:"message,omitempty"`
	WasSuccessful bool    `json:"wasSuccessful"`
}

type CreateUserResponse struct {
	User          *User   `json:"user,omitempty"`
	Token         *string `json:"token,omitempty"`
	Message       *string `json:"message,omitempty"`
	WasSuccessful bool    `json:"wasSuccessful"`
}

type GetUserResponse struct {
	User          *User   `json:"user,omitempty"`
	Message       *string `json:"message,omitempty"`
	WasSuccessful bool    `json:"wasSuccessful"`
}

type GetPoolResponse struct {
	Pool          *Pool   `json:"pool,omitempty"`
	Message       *string `json:"message,omitempty"`
	WasSuccessful bool    `json:"wasSuccessful"`
}

type GetUserCustomAttributesResponse struct {
	Attributes    map[string]json.RawMessage `json:"attributes,omitempty"`
	Message       *string                    `json:"message,omitempty"`
	WasSuccessful bool                       `json:"wasSuccessful"`
}

type GetUserCustomAttributeResponse struct {
	Attribute     json.RawMessage `json:"attribute,omitempty"`
	Message       *string         `json:"message,omitempty"`
	WasSuccessful bool            `json:"wasSuccessful"`
}

// StatusResponse is the body of endpoints that only acknowledge a mutation.
type StatusResponse struct {
	Message       *string `json:"message,omitempty"`
	WasSuccessful bool    `json:"wasSuccessful"`
}

type VerificationSessionResponse struct {
	VerificationSessionID *string      `json:"verificationSessionId,omitempty"`
	VerificationCode      *string      `json:"verificationCode,omitempty"`
	ExpiresAt             *GatewayTime `json:"expiresAt,omitempty"`
	Message               *string      `json:"message,omitempty"`
	WasSuccessful         bool         `json:"wasSuccessful"`
}

type CompleteVerificationResponse struct {
	IsVerified    bool    `json:"isVerified"`
	Message       *string `json:"message,omitempty"`
	WasSuccessful bool    `json:"wasSuccessful"`
}

type VerifyUserEmailResponse struct {
	IsVerified    bool   `json:"isVerified"`
	Message       string `json:"message"`
	WasSuccessful bool   `json:"wasSuccessful"`
}

type VerifyPasswordResetResponse struct {
	ResetToken    *string `json:"resetToken,omitempty"`
	Message       *string `json:"message,omitempty"`
	WasSuccessful bool    `json:"wasSuccessful"`
}

func messageOf(message *string) string {
	if message == nil {
		return ""
	}
	return *message
}

// isAbsentJSON reports whether a raw field was omitted or explicitly null.
func isAbsentJSON(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	return string(raw) == "null"
}
