package core

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorFailedSignIn         = "HASHGATE_FAILED_SIGN_IN"
	ErrorFailedConfig         = "HASHGATE_FAILED_CONFIG"
	ErrorNoClientToken        = "HASHGATE_NO_CLIENT_TOKEN"
	ErrorUserNotFound         = "HASHGATE_USER_NOT_FOUND"
	ErrorAttributeNotFound    = "HASHGATE_ATTRIBUTE_NOT_FOUND"
	ErrorServerError          = "HASHGATE_SERVER_ERROR"
	ErrorCouldNotSetAttribute = "HASHGATE_COULD_NOT_SET_ATTRIBUTE"
	ErrorUsernameTaken        = "HASHGATE_USERNAME_TAKEN"
	ErrorVerificationFailed   = "HASHGATE_VERIFICATION_FAILED"
	ErrorRequestFailed        = "HASHGATE_REQUEST_FAILED"
	ErrorInvalidIdentifier    = "HASHGATE_INVALID_IDENTIFIER"
	ErrorBadInput             = "HASHGATE_BAD_INPUT"
	ErrorInternal             = "HASHGATE_INTERNAL_ERROR"
)

func newKindError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func wrapKindError(source error, category goerrors.Category, message string, textCode string) *goerrors.Error {
	if source == nil {
		return newKindError(message, category, textCode)
	}
	return ensureErrorEnvelope(
		goerrors.Wrap(source, category, message).
			WithTextCode(textCode),
	)
}

func FailedSignInError(message string) *goerrors.Error {
	if strings.TrimSpace(message) == "" {
		message = "hashgate: sign in attempt failed"
	}
	return newKindError(message, goerrors.CategoryAuth, ErrorFailedSignIn)
}

func FailedConfigError(message string) *goerrors.Error {
	if strings.TrimSpace(message) == "" {
		message = "hashgate: required configuration is not set"
	}
	return newKindError(message, goerrors.CategoryBadInput, ErrorFailedConfig)
}

func NoClientTokenError() *goerrors.Error {
	return newKindError("hashgate: client is missing an auth token", goerrors.CategoryAuth, ErrorNoClientToken)
}

func UserNotFoundError() *goerrors.Error {
	return newKindError("hashgate: user not found", goerrors.CategoryNotFound, ErrorUserNotFound)
}

func AttributeNotFoundError(key string) *goerrors.Error {
	return newKindError(
		fmt.Sprintf("hashgate: attribute %q not found", key),
		goerrors.CategoryNotFound,
		ErrorAttributeNotFound,
	)
}

func ServerError(statusCode int, message string) *goerrors.Error {
	text := "hashgate: server ran into issues with the request"
	if trimmed := strings.TrimSpace(message); trimmed != "" {
		text = text + ": " + trimmed
	}
	err := newKindError(text, goerrors.CategoryExternal, ErrorServerError)
	if statusCode > 0 {
		err.WithMetadata(map[string]any{"status_code": statusCode})
	}
	return err
}

func CouldNotSetAttributeError(key string) *goerrors.Error {
	return newKindError(
		fmt.Sprintf("hashgate: could not set user attribute %q", key),
		goerrors.CategoryOperation,
		ErrorCouldNotSetAttribute,
	)
}

func UsernameTakenError() *goerrors.Error {
	return newKindError(
		"hashgate: that username or email is already in use",
		goerrors.CategoryConflict,
		ErrorUsernameTaken,
	)
}

func VerificationFailedError(message string) *goerrors.Error {
	text := "hashgate: verification failed"
	if trimmed := strings.TrimSpace(message); trimmed != "" {
		text = text + ": " + trimmed
	}
	return newKindError(text, goerrors.CategoryAuth, ErrorVerificationFailed)
}

func RequestError(source error, message string) *goerrors.Error {
	if strings.TrimSpace(message) == "" {
		message = "hashgate: request failed"
	}
	return wrapKindError(source, goerrors.CategoryExternal, message, ErrorRequestFailed)
}

func InvalidIdentifierError(source error, value string) *goerrors.Error {
	return wrapKindError(
		source,
		goerrors.CategoryBadInput,
		fmt.Sprintf("hashgate: invalid identifier %q", value),
		ErrorInvalidIdentifier,
	)
}

func BadInputError(message string, fields ...goerrors.FieldError) *goerrors.Error {
	return ensureErrorEnvelope(
		goerrors.NewValidation(message, fields...).
			WithTextCode(ErrorBadInput),
	)
}

// ErrorTextCode returns the HashGate text code carried by err, if any.
func ErrorTextCode(err error) string {
	if err == nil {
		return ""
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return ""
	}
	return strings.TrimSpace(rich.TextCode)
}

// HasErrorCode reports whether err is a HashGate error of the given kind.
func HasErrorCode(err error, code string) bool {
	if err == nil || strings.TrimSpace(code) == "" {
		return false
	}
	return strings.EqualFold(ErrorTextCode(err), strings.TrimSpace(code))
}

func IsFailedSignIn(err error) bool         { return HasErrorCode(err, ErrorFailedSignIn) }
func IsFailedConfig(err error) bool         { return HasErrorCode(err, ErrorFailedConfig) }
func IsNoClientToken(err error) bool        { return HasErrorCode(err, ErrorNoClientToken) }
func IsUserNotFound(err error) bool         { return HasErrorCode(err, ErrorUserNotFound) }
func IsAttributeNotFound(err error) bool    { return HasErrorCode(err, ErrorAttributeNotFound) }
func IsServerError(err error) bool          { return HasErrorCode(err, ErrorServerError) }
func IsCouldNotSetAttribute(err error) bool { return HasErrorCode(err, ErrorCouldNotSetAttribute) }
func IsUsernameTaken(err error) bool        { return HasErrorCode(err, ErrorUsernameTaken) }
func IsVerificationFailed(err error) bool   { return HasErrorCode(err, ErrorVerificationFailed) }
func IsRequestError(err error) bool         { return HasErrorCode(err, ErrorRequestFailed) }

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = errorHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultErrorTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultErrorTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ErrorFailedSignIn
	case goerrors.CategoryExternal:
		return ErrorRequestFailed
	default:
		return ErrorInternal
	}
}

func errorHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	case goerrors.CategoryOperation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// mapError normalizes arbitrary errors into HashGate envelopes. Errors that
// already carry an envelope keep their kind.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return ensureErrorEnvelope(rich)
	}
	return ensureErrorEnvelope(goerrors.Wrap(err, goerrors.CategoryInternal, err.Error()))
}
