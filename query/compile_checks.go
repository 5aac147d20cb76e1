package query

import (
	"encoding/json"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-hashgate/core"
)

var (
	_ gocmd.Querier[GetUserMessage, core.User]                        = (*GetUserQuery)(nil)
	_ gocmd.Querier[GetUserByTokenMessage, core.User]                 = (*GetUserByTokenQuery)(nil)
	_ gocmd.Querier[GetAttributeMessage, json.RawMessage]             = (*GetAttributeQuery)(nil)
	_ gocmd.Querier[GetAttributesMessage, map[string]json.RawMessage] = (*GetAttributesQuery)(nil)
	_ gocmd.Querier[GetPoolMessage, core.Pool]                        = (*GetPoolQuery)(nil)
	_ gocmd.Querier[ListActivityMessage, core.ActivityPage]           = (*ListActivityQuery)(nil)

	_ UserReader = (*core.Client)(nil)
	_ PoolReader = (*core.Client)(nil)
)
