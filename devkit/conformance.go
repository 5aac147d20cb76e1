package devkit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-hashgate/core"
)

func ValidateTransportAdapterConformance(
	ctx context.Context,
	adapter core.TransportAdapter,
	request core.TransportRequest,
) error {
	if adapter == nil {
		return fmt.Errorf("devkit: transport adapter is required")
	}
	if strings.TrimSpace(adapter.Kind()) == "" {
		return fmt.Errorf("devkit: transport adapter kind is required")
	}
	_, err := adapter.Do(ctx, request)
	return err
}

// ValidateActivityStoreConformance records entries under clientID and checks
// that the store filters by client and operation and lists newest first.
// The store should be empty for clientID.
func ValidateActivityStoreConformance(ctx context.Context, store core.ActivityStore, clientID string) error {
	if store == nil {
		return fmt.Errorf("devkit: activity store is required")
	}
	base := time.Now().UTC().Add(-time.Minute).Truncate(time.Second)
	entries := []core.ActivityEntry{
		{ClientID: clientID, Operation: core.OperationAuthenticate, Status: core.ActivityStatusOK, Attempts: 1, CreatedAt: base},
		{ClientID: clientID, Operation: core.OperationGetUser, Status: core.ActivityStatusError, Attempts: 2, Reauthenticated: true, ErrorCode: core.ErrorUserNotFound, CreatedAt: base.Add(time.Second)},
		{ClientID: clientID + "-other", Operation: core.OperationGetUser, Status: core.ActivityStatusOK, Attempts: 1, CreatedAt: base.Add(2 * time.Second)},
	}
	for _, entry := range entries {
		if err := store.Record(ctx, entry); err != nil {
			return fmt.Errorf("devkit: record activity: %w", err)
		}
	}

	page, err := store.List(ctx, core.ActivityFilter{ClientID: clientID})
	if err != nil {
		return fmt.Errorf("devkit: list activity: %w", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		return fmt.Errorf("devkit: expected 2 entries for client %q, got %d", clientID, page.Total)
	}
	if page.Items[0].Operation != core.OperationGetUser {
		return fmt.Errorf("devkit: expected newest entry first, got %q", page.Items[0].Operation)
	}
	if page.Items[0].ErrorCode != core.ErrorUserNotFound || !page.Items[0].Reauthenticated {
		return fmt.Errorf("devkit: activity fields not preserved: %+v", page.Items[0])
	}

	filtered, err := store.List(ctx, core.ActivityFilter{ClientID: clientID, Operation: core.OperationAuthenticate})
	if err != nil {
		return fmt.Errorf("devkit: list filtered activity: %w", err)
	}
	if filtered.Total != 1 {
		return fmt.Errorf("devkit: expected operation filter to match 1 entry, got %d", filtered.Total)
	}
	return nil
}
