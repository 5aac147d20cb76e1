package core

import (
	"net/url"
	"strings"
)

const (
	EndpointClientAuth           = "client/auth"
	EndpointUserSignIn           = "user/sign-in"
	EndpointUserCreate           = "user/create"
	EndpointUserGet              = "user/get"
	EndpointUserGetByToken       = "user/get-by-token"
	EndpointUserSetAttribute     = "user/set-attribute"
	EndpointUserGetAttribute     = "user/get-attribute"
	EndpointUserGetAttributes    = "user/get-attributes"
	EndpointInitVerification     = "user/init-verification"
	EndpointCompleteVerification = "user/complete-verification"
	EndpointVerifyEmail          = "user/verify-email"
	EndpointInitPasswordReset    = "user/init-password-reset"
	EndpointVerifyPasswordReset  = "user/verify-password-reset"
	EndpointResetPassword        = "user/reset-password"
	EndpointUpdatePassword       = "user/update-password"
	EndpointPoolInfo             = "pool/info"
)

type endpointResolver struct {
	base *url.URL
}

func newEndpointResolver(baseURL string) (*endpointResolver, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, FailedConfigError("hashgate: base_url must be an absolute url")
	}
	return &endpointResolver{base: parsed}, nil
}

func (r *endpointResolver) URL(endpoint string) string {
	if r == nil || r.base == nil {
		return ""
	}
	return r.base.JoinPath(strings.TrimPrefix(strings.TrimSpace(endpoint), "/")).String()
}

const (
	OperationAuthenticate         = "authenticate"
	OperationSignIn               = "sign_in"
	OperationRegisterUser         = "register_user"
	OperationGetUser              = "get_user"
	OperationGetUserByToken       = "get_user_by_token"
	OperationSetAttribute         = "set_attribute"
	OperationGetAttribute         = "get_attribute"
	OperationGetAttributes        = "get_attributes"
	OperationInitVerification     = "init_verification"
	OperationCompleteVerification = "complete_verification"
	OperationVerifyEmail          = "verify_email"
	OperationInitPasswordReset    = "init_password_reset"
	OperationVerifyPasswordReset  = "verify_password_reset"
	OperationResetPassword        = "reset_password"
	OperationUpdatePassword       = "update_password"
	OperationGetPool              = "get_pool"
)
