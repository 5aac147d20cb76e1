package core

import (
	"context"
	"net/http"
)

// GetPool returns the user pool the client is registered against.
func (c *Client) GetPool(ctx context.Context) (pool Pool, err error) {
	startedAt := c.clock()
	var result ExecutionResult
	defer func() { c.observeOperation(ctx, startedAt, OperationGetPool, result, err) }()

	result, err = c.send(ctx, http.MethodGet, EndpointPoolInfo, nil)
	if err != nil {
		return Pool{}, err
	}
	if !isSuccessStatus(result.Response.StatusCode) {
		return Pool{}, gatewayStatusError(result.Response)
	}
	body, err := decodeResponse[GetPoolResponse](result.Response)
	if err != nil {
		return Pool{}, err
	}
	if body.Pool == nil {
		return Pool{}, ServerError(result.Response.StatusCode, messageOf(body.Message))
	}
	return *body.Pool, nil
}

// Execute runs attempt through the authenticated executor. It is the escape
// hatch for gateway endpoints this package does not wrap.
func (c *Client) Execute(ctx context.Context, attempt AttemptFunc) (ExecutionResult, error) {
	if c == nil || c.executor == nil {
		return ExecutionResult{}, NoClientTokenError()
	}
	return c.executor.Execute(ctx, attempt)
}

// Transport returns the adapter used for gateway calls.
func (c *Client) Transport() TransportAdapter {
	if c == nil {
		return nil
	}
	return c.transport
}

// EndpointURL resolves a gateway path against the configured base URL.
func (c *Client) EndpointURL(endpoint string) string {
	if c == nil {
		return ""
	}
	return c.endpoints.URL(endpoint)
}
