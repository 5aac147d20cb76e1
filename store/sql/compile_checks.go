package sqlstore

import "github.com/goliatone/go-hashgate/core"

var (
	_ core.ActivityStore           = (*ActivityStore)(nil)
	_ core.ActivityRetentionPruner = (*ActivityStore)(nil)
)
