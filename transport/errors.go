package transport

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-hashgate/core"
)

func transportError(
	message string,
	category goerrors.Category,
	code int,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	metadata map[string]any,
) error {
	if source == nil {
		return transportError(message, category, code, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// Every failure to complete an exchange is a request failure to the client;
// only a misconfigured adapter is internal.
func transportTextCode(category goerrors.Category) string {
	if category == goerrors.CategoryInternal {
		return core.ErrorInternal
	}
	return core.ErrorRequestFailed
}
