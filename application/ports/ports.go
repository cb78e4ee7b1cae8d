package ports

import (
	"context"
	"time"

	"draftsync-backend/domain/drafts"
	"draftsync-backend/infrastructure/config"
)

// ConfigProvider returns the connection configuration, loading it at most once
type ConfigProvider interface {
	Ensure(ctx context.Context, inline *config.Configuration) (*config.Configuration, error)
}

// DraftStore persists drafts
type DraftStore interface {
	Upsert(ctx context.Context, draft *drafts.Draft) (*drafts.UpsertResult, error)
}

// DraftStoreProvider hands out a connected DraftStore, connecting at most once
type DraftStoreProvider interface {
	Store(ctx context.Context, cfg *config.Configuration) (DraftStore, error)
}

// EventPublisher notifies downstream consumers about synced drafts
type EventPublisher interface {
	PublishDraftSynced(ctx context.Context, event DraftSyncedEvent) error
}

// DraftSyncedEvent is emitted after a draft was persisted
type DraftSyncedEvent struct {
	UserID     string      `json:"user_id"`
	ItemID     interface{} `json:"item_id"`
	Inserted   bool        `json:"inserted"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// EventType is the EventBridge detail type of the event
func (e DraftSyncedEvent) EventType() string {
	return "DraftSynced"
}
