package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// SignIn authenticates a pool user and returns the user's session token.
func (c *Client) SignIn(ctx context.Context, username string, password string) (token string, err error) {
	startedAt := c.clock()
	var result ExecutionResult
	defer func() { c.observeOperation(ctx, startedAt, OperationSignIn, result, err) }()

	result, err = c.send(ctx, http.MethodPost, EndpointUserSignIn, UserAuthRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return "", err
	}
	if !isSuccessStatus(result.Response.StatusCode) {
		return "", FailedSignInError(fmt.Sprintf("hashgate: sign in returned status %d", result.Response.StatusCode))
	}
	body, err := decodeResponse[AuthResponse](result.Response)
	if err != nil {
		return "", err
	}
	if body.Token == nil || strings.TrimSpace(*body.Token) == "" {
		return "", FailedSignInError(messageOf(body.Message))
	}
	return *body.Token, nil
}

// RegisterUser creates a pool user. A 409 means the username or email is
// already in use.
func (c *Client) RegisterUser(ctx context.Context, req UserRegistrationRequest) (registered RegisteredUser, err error) {
	startedAt := c.clock()
	var result ExecutionResult
	defer func() { c.observeOperation(ctx, startedAt, OperationRegisterUser, result, err) }()

	result, err = c.send(ctx, http.MethodPost, EndpointUserCreate, req)
	if err != nil {
		return RegisteredUser{}, err
	}
	switch status := result.Response.StatusCode; {
	case status == http.StatusConflict:
		return RegisteredUser{}, UsernameTakenError()
	case !isSuccessStatus(status):
		return RegisteredUser{}, gatewayStatusError(result.Response)
	}
	body, err := decodeResponse[CreateUserResponse](result.Response)
	if err != nil {
		return RegisteredUser{}, err
	}
	registered.User = body.User
	if body.Token != nil {
		registered.Token = strings.TrimSpace(*body.Token)
	}
	if registered.User == nil && registered.Token == "" {
		return RegisteredUser{}, FailedSignInError(messageOf(body.Message))
	}
	return registered, nil
}

func (c *Client) GetUser(ctx context.Context, userID uuid.UUID) (user User, err error) {
	startedAt := c.clock()
	var result ExecutionResult
	defer func() { c.observeOperation(ctx, startedAt, OperationGetUser, result, err) }()

	result, err = c.send(ctx, http.MethodPost, EndpointUserGet, GetUserRequest{UserID: userID})
	if err != nil {
		return User{}, err
	}
	return decodeUser(result.Response)
}

func (c *Client) GetUserByToken(ctx context.Context, token string) (user User, err error) {
	startedAt := c.clock()
	var result ExecutionResult
	defer func() { c.observeOperation(ctx, startedAt, OperationGetUserByToken, result, err) }()

	result, err = c.send(ctx, http.MethodPost, EndpointUserGetByToken, GetUserByTokenRequest{Token: token})
	if err != nil {
		return User{}, err
	}
	return decodeUser(result.Response)
}

func decodeUser(response TransportResponse) (User, error) {
	if response.StatusCode == http.StatusNotFound {
		return User{}, UserNotFoundError()
	}
	if !isSuccessStatus(response.StatusCode) {
		return User{}, gatewayStatusError(response)
	}
	body, err := decodeResponse[GetUserResponse](response)
	if err != nil {
		return User{}, err
	}
	if body.User == nil {
		return User{}, UserNotFoundError()
	}
	return *body.User, nil
}

// SetAttribute stores value under key for the user. Transport failures and
// gateway rejections are reported as CouldNotSetAttribute; a failed token
// refresh surfaces as itself.
func (c *Client) SetAttribute(ctx context.Context, userID uuid.UUID, key string, value any) (err error) {
	startedAt := c.clock()
	var result ExecutionResult
	defer func() { c.observeOperation(ctx, startedAt, OperationSetAttribute, result, err) }()

	encoded, err := json.Marshal(value)
	if err != nil {
		return BadInputError(fmt.Sprintf("hashgate: attribute %q value is not json encodable: %v", key, err))
	}
	result, err = c.send(ctx, http.MethodPost, EndpointUserSetAttribute, SetAttributeRequest{
		UserID: userID,
		Key:    key,
		Value:  encoded,
	})
	if err != nil {
		if IsRequestError(err) && !refreshFailed(result) {
			return CouldNotSetAttributeError(key)
		}
		return err
	}
	if !isSuccessStatus(result.Response.StatusCode) {
		return CouldNotSetAttributeError(key)
	}
	if len(result.Response.Body) > 0 {
		var body StatusResponse
		if json.Unmarshal(result.Response.Body, &body) != nil || !body.WasSuccessful {
			return CouldNotSetAttributeError(key)
		}
	}
	return nil
}

// GetAttribute returns the raw JSON value stored under key.
func (c *Client) GetAttribute(ctx context.Context, userID uuid.UUID, key string) (value json.RawMessage, err error) {
	startedAt := c.clock()
	var result ExecutionResult
	defer func() { c.observeOperation(ctx, startedAt, OperationGetAttribute, result, err) }()

	result, err = c.send(ctx, http.MethodPost, EndpointUserGetAttribute, GetAttributeRequest{
		UserID: userID,
		Key:    key,
	})
	if err != nil {
		return nil, err
	}
	switch status := result.Response.StatusCode; {
	case status == http.StatusNotFound:
		return nil, AttributeNotFoundError(key)
	case !isSuccessStatus(status):
		return nil, gatewayStatusError(result.Response)
	}
	body, err := decodeResponse[GetUserCustomAttributeResponse](result.Response)
	if err != nil {
		return nil, err
	}
	if isAbsentJSON(body.Attribute) {
		return nil, AttributeNotFoundError(key)
	}
	return body.Attribute, nil
}

// GetAttributes returns every custom attribute of the user. A user without
// attributes yields an empty map.
func (c *Client) GetAttributes(ctx context.Context, userID uuid.UUID) (attributes map[string]json.RawMessage, err error) {
	startedAt := c.clock()
	var result ExecutionResult
	defer func() { c.observeOperation(ctx, startedAt, OperationGetAttributes, result, err) }()

	result, err = c.send(ctx, http.MethodPost, EndpointUserGetAttributes, GetAttributesRequest{UserID: userID})
	if err != nil {
		return nil, err
	}
	switch status := result.Response.StatusCode; {
	case status == http.StatusNotFound:
		return nil, UserNotFoundError()
	case !isSuccessStatus(status):
		return nil, gatewayStatusError(result.Response)
	}
	body, err := decodeResponse[GetUserCustomAttributesResponse](result.Response)
	if err != nil {
		return nil, err
	}
	if body.Attributes == nil {
		return map[string]json.RawMessage{}, nil
	}
	return body.Attributes, nil
}

// InitVerification starts an email verification session for the user.
func (c *Client) InitVerification(ctx context.Context, userID uuid.UUID) (session VerificationSession, err error) {
	startedAt := c.clock()
	var result ExecutionResult
	defer func() { c.observeOperation(ctx, startedAt, OperationInitVerification, result, err) }()

	result, err = c.send(ctx, http.MethodPost, EndpointInitVerification, InitVerificationRequest{UserID: userID})
	if err != nil {
		return VerificationSession{}, err
	}
	if result.Response.StatusCode == http.StatusNotFound {
		return VerificationSession{}, UserNotFoundError()
	}
	return decodeVerificationSession(result.Response)
}

func (c *Client) CompleteVerification(ctx context.Context, sessionID string, code string) (verified bool, err error) {
	startedAt := c.clock()
	var result ExecutionResult
	defer func() { c.observeOperation(ctx, startedAt, OperationCompleteVerification, result, err) }()

	result, err = c.send(ctx, http.MethodPost, EndpointCompleteVerification, CompleteVerificationRequest{
		VerificationSessionID: sessionID,
		VerificationCode:      code,
	})
	if err != nil {
		return false, err
	}
	if !isSuccessStatus(result.Response.StatusCode) {
		return false, gatewayStatusError(result.Response)
	}
	body, err := decodeResponse[CompleteVerificationResponse](result.Response)
	if err != nil {
		return false, err
	}
	if !body.WasSuccessful {
		return false, VerificationFailedError(messageOf(body.Message))
	}
	return body.IsVerified, nil
}

// VerifyEmail marks the user's email as verified without a code exchange.
func (c *Client) VerifyEmail(ctx context.Context, userID uuid.UUID) (out VerifyEmailResult, err error) {
	startedAt := c.clock()
	var result ExecutionResult
	defer func() { c.observeOperation(ctx, startedAt, OperationVerifyEmail, result, err) }()

	result, err = c.send(ctx, http.MethodPost, EndpointVerifyEmail, VerifyEmailRequest{UserID: userID})
	if err != nil {
		return VerifyEmailResult{}, err
	}
	switch status := result.Response.StatusCode; {
	case status == http.StatusNotFound:
		return VerifyEmailResult{}, UserNotFoundError()
	case !isSuccessStatus(status):
		return VerifyEmailResult{}, gatewayStatusError(result.Response)
	}
	body, err := decodeResponse[VerifyUserEmailResponse](result.Response)
	if err != nil {
		return VerifyEmailResult{}, err
	}
	if !body.WasSuccessful {
		return VerifyEmailResult{}, VerificationFailedError(body.Message)
	}
	return VerifyEmailResult{IsVerified: body.IsVerified, Message: body.Message}, nil
}

// InitPasswordReset starts a reset session for the user identified by
// username or email.
func (c *Client) InitPasswordReset(ctx context.Context, req InitPasswordResetRequest) (session VerificationSession, err error) {
	startedAt := c.clock()
	var result ExecutionResult
	defer func() { c.observeOperation(ctx, startedAt, OperationInitPasswordReset, result, err) }()

	result, err = c.send(ctx, http.MethodPost, EndpointInitPasswordReset, req)
	if err != nil {
		return VerificationSession{}, err
	}
	if result.Response.StatusCode == http.StatusNotFound {
		return VerificationSession{}, UserNotFoundError()
	}
	return decodeVerificationSession(result.Response)
}

// VerifyPasswordReset exchanges a reset session and code for a reset token.
func (c *Client) VerifyPasswordReset(ctx context.Context, sessionID string, code string) (resetToken string, err error) {
	startedAt := c.clock()
	var result ExecutionResult
	defer func() { c.observeOperation(ctx, startedAt, OperationVerifyPasswordReset, result, err) }()

	result, err = c.send(ctx, http.MethodPost, EndpointVerifyPasswordReset, VerifyPasswordResetRequest{
		VerificationSessionID: sessionID,
		VerificationCode:      code,
	})
	if err != nil {
		return "", err
	}
	if !isSuccessStatus(result.Response.StatusCode) {
		return "", gatewayStatusError(result.Response)
	}
	body, err := decodeResponse[VerifyPasswordResetResponse](result.Response)
	if err != nil {
		return "", err
	}
	if !body.WasSuccessful || body.ResetToken == nil || strings.TrimSpace(*body.ResetToken) == "" {
		return "", VerificationFailedError(messageOf(body.Message))
	}
	return *body.ResetToken, nil
}

func (c *Client) ResetPassword(ctx context.Context, resetToken string, newPassword string) (err error) {
	startedAt := c.clock()
	var result ExecutionResult
	defer func() { c.observeOperation(ctx, startedAt, OperationResetPassword, result, err) }()

	result, err = c.send(ctx, http.MethodPost, EndpointResetPassword, ResetPasswordRequest{
		ResetToken:  resetToken,
		NewPassword: newPassword,
	})
	if err != nil {
		return err
	}
	if !isSuccessStatus(result.Response.StatusCode) {
		return gatewayStatusError(result.Response)
	}
	body, err := decodeResponse[StatusResponse](result.Response)
	if err != nil {
		return err
	}
	if !body.WasSuccessful {
		return VerificationFailedError(messageOf(body.Message))
	}
	return nil
}

// UpdatePassword changes the password of a signed-in user. A rejected current
// password is reported as FailedSignIn.
func (c *Client) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword string, newPassword string) (err error) {
	startedAt := c.clock()
	var result ExecutionResult
	defer func() { c.observeOperation(ctx, startedAt, OperationUpdatePassword, result, err) }()

	result, err = c.send(ctx, http.MethodPost, EndpointUpdatePassword, UpdatePasswordRequest{
		UserID:          userID,
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	})
	if err != nil {
		return err
	}
	switch status := result.Response.StatusCode; {
	case status == http.StatusNotFound:
		return UserNotFoundError()
	case !isSuccessStatus(status):
		return gatewayStatusError(result.Response)
	}
	body, err := decodeResponse[StatusResponse](result.Response)
	if err != nil {
		return err
	}
	if !body.WasSuccessful {
		return FailedSignInError(messageOf(body.Message))
	}
	return nil
}

func decodeVerificationSession(response TransportResponse) (VerificationSession, error) {
	if !isSuccessStatus(response.StatusCode) {
		return VerificationSession{}, gatewayStatusError(response)
	}
	body, err := decodeResponse[VerificationSessionResponse](response)
	if err != nil {
		return VerificationSession{}, err
	}
	if !body.WasSuccessful || body.VerificationSessionID == nil || strings.TrimSpace(*body.VerificationSessionID) == "" {
		return VerificationSession{}, VerificationFailedError(messageOf(body.Message))
	}
	session := VerificationSession{
		SessionID: *body.VerificationSessionID,
		ExpiresAt: body.ExpiresAt,
	}
	if body.VerificationCode != nil {
		session.Code = *body.VerificationCode
	}
	return session, nil
}
