package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ClientIdentity is the credential pair exchanged for a bearer token.
type ClientIdentity struct {
	ClientID     uuid.UUID
	ClientSecret string
}

// SessionToken is the current bearer credential. Expiry is not tracked; the
// gateway signals it by rejecting a call with 401.
type SessionToken struct {
	Value      string
	AcquiredAt time.Time
}

func (t SessionToken) IsZero() bool {
	return strings.TrimSpace(t.Value) == ""
}

// User is the gateway's projection of a pool member.
type User struct {
	ID         uuid.UUID                  `json:"id"`
	Username   string                     `json:"username"`
	Email      *string                    `json:"email,omitempty"`
	IsVerified bool                       `json:"isVerified"`
	CreatedAt  GatewayTime                `json:"createdAt"`
	UpdatedAt  GatewayTime                `json:"updatedAt"`
	Attributes map[string]json.RawMessage `json:"attributes,omitempty"`
}

type Pool struct {
	PoolID       uuid.UUID   `json:"poolId"`
	PoolName     string      `json:"poolName"`
	CreationDate GatewayTime `json:"creationDate"`
}

// RegisteredUser is the outcome of user/create. Older gateways answer with a
// token only; newer ones return the created user.
type RegisteredUser struct {
	User  *User
	Token string
}

type VerificationSession struct {
	SessionID string
	Code      string
	ExpiresAt *GatewayTime
}

type VerifyEmailResult struct {
	IsVerified bool
	Message    string
}

const gatewayLocalTimeLayout = "2006-01-02T15:04:05.999999999"

// GatewayTime accepts RFC 3339 timestamps and the gateway's zone-less
// timestamps, which are UTC.
type GatewayTime struct {
	time.Time
}

func (t *GatewayTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("hashgate: timestamp must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	parsed, err := time.ParseInLocation(gatewayLocalTimeLayout, raw, time.UTC)
	if err != nil {
		return fmt.Errorf("hashgate: unsupported timestamp %q", raw)
	}
	t.Time = parsed
	return nil
}

func (t GatewayTime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}
