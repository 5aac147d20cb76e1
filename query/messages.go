package query

import (
	"strings"

	"github.com/goliatone/go-hashgate/core"
	"github.com/google/uuid"
)

const (
	TypeGetUser        = "hashgate.query.user.get"
	TypeGetUserByToken = "hashgate.query.user.get_by_token"
	TypeGetAttribute   = "hashgate.query.user.attribute.get"
	TypeGetAttributes  = "hashgate.query.user.attributes.list"
	TypeGetPool        = "hashgate.query.pool.get"
	TypeListActivity   = "hashgate.query.activity.list"
)

type GetUserMessage struct {
	UserID uuid.UUID
}

func (GetUserMessage) Type() string { return TypeGetUser }

func (m GetUserMessage) Validate() error {
	return validateUserID(m.UserID)
}

type GetUserByTokenMessage struct {
	Token string
}

func (GetUserByTokenMessage) Type() string { return TypeGetUserByToken }

func (m GetUserByTokenMessage) Validate() error {
	if strings.TrimSpace(m.Token) == "" {
		return queryValidationError("token", "user token is required")
	}
	return nil
}

type GetAttributeMessage struct {
	UserID uuid.UUID
	Key    string
}

func (GetAttributeMessage) Type() string { return TypeGetAttribute }

func (m GetAttributeMessage) Validate() error {
	if err := validateUserID(m.UserID); err != nil {
		return err
	}
	if strings.TrimSpace(m.Key) == "" {
		return queryValidationError("key", "attribute key is required")
	}
	return nil
}

type GetAttributesMessage struct {
	UserID uuid.UUID
}

func (GetAttributesMessage) Type() string { return TypeGetAttributes }

func (m GetAttributesMessage) Validate() error {
	return validateUserID(m.UserID)
}

type GetPoolMessage struct{}

func (GetPoolMessage) Type() string { return TypeGetPool }

func (GetPoolMessage) Validate() error { return nil }

type ListActivityMessage struct {
	Filter core.ActivityFilter
}

func (ListActivityMessage) Type() string { return TypeListActivity }

func (m ListActivityMessage) Validate() error {
	if m.Filter.Page < 0 {
		return queryValidationError("page", "page must be >= 0")
	}
	if m.Filter.PerPage < 0 {
		return queryValidationError("per_page", "per_page must be >= 0")
	}
	if m.Filter.From != nil && m.Filter.To != nil && m.Filter.To.Before(*m.Filter.From) {
		return queryValidationError("to", "to must not be before from")
	}
	return nil
}

func validateUserID(id uuid.UUID) error {
	if id == uuid.Nil {
		return queryValidationError("userId", "user id is required")
	}
	return nil
}
