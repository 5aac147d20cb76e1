package query

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-hashgate/core"
	"github.com/google/uuid"
)

// UserReader is the read-only half of the gateway client.
type UserReader interface {
	GetUser(ctx context.Context, userID uuid.UUID) (core.User, error)
	GetUserByToken(ctx context.Context, token string) (core.User, error)
	GetAttribute(ctx context.Context, userID uuid.UUID, key string) (json.RawMessage, error)
	GetAttributes(ctx context.Context, userID uuid.UUID) (map[string]json.RawMessage, error)
}

type PoolReader interface {
	GetPool(ctx context.Context) (core.Pool, error)
}

type GetUserQuery struct {
	reader UserReader
}

func NewGetUserQuery(reader UserReader) *GetUserQuery {
	return &GetUserQuery{reader: reader}
}

func (q *GetUserQuery) Query(ctx context.Context, msg GetUserMessage) (core.User, error) {
	if q == nil || q.reader == nil {
		return core.User{}, queryDependencyError("query: user reader is required")
	}
	return q.reader.GetUser(ctx, msg.UserID)
}

type GetUserByTokenQuery struct {
	reader UserReader
}

func NewGetUserByTokenQuery(reader UserReader) *GetUserByTokenQuery {
	return &GetUserByTokenQuery{reader: reader}
}

func (q *GetUserByTokenQuery) Query(ctx context.Context, msg GetUserByTokenMessage) (core.User, error) {
	if q == nil || q.reader == nil {
		return core.User{}, queryDependencyError("query: user reader is required")
	}
	return q.reader.GetUserByToken(ctx, msg.Token)
}

type GetAttributeQuery struct {
	reader UserReader
}

func NewGetAttributeQuery(reader UserReader) *GetAttributeQuery {
	return &GetAttributeQuery{reader: reader}
}

func (q *GetAttributeQuery) Query(ctx context.Context, msg GetAttributeMessage) (json.RawMessage, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: user reader is required")
	}
	return q.reader.GetAttribute(ctx, msg.UserID, msg.Key)
}

type GetAttributesQuery struct {
	reader UserReader
}

func NewGetAttributesQuery(reader UserReader) *GetAttributesQuery {
	return &GetAttributesQuery{reader: reader}
}

func (q *GetAttributesQuery) Query(ctx context.Context, msg GetAttributesMessage) (map[string]json.RawMessage, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: user reader is required")
	}
	return q.reader.GetAttributes(ctx, msg.UserID)
}

type GetPoolQuery struct {
	reader PoolReader
}

func NewGetPoolQuery(reader PoolReader) *GetPoolQuery {
	return &GetPoolQuery{reader: reader}
}

func (q *GetPoolQuery) Query(ctx context.Context, _ GetPoolMessage) (core.Pool, error) {
	if q == nil || q.reader == nil {
		return core.Pool{}, queryDependencyError("query: pool reader is required")
	}
	return q.reader.GetPool(ctx)
}

type ListActivityQuery struct {
	reader core.ActivityReader
}

func NewListActivityQuery(reader core.ActivityReader) *ListActivityQuery {
	return &ListActivityQuery{reader: reader}
}

func (q *ListActivityQuery) Query(ctx context.Context, msg ListActivityMessage) (core.ActivityPage, error) {
	if q == nil || q.reader == nil {
		return core.ActivityPage{}, queryDependencyError("query: activity reader is required")
	}
	return q.reader.List(ctx, msg.Filter)
}
