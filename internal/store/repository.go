package store

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

import (
	"context"

	"github.com/xoralabs/ftt-backend-ico/internal/domain/model"
)

// PurchaseRepository stores recorded purchase events. TxHash is the unique key.
type PurchaseRepository interface {
	// InsertIfAbsent inserts p unless a row with the same TxHash exists.
	// It reports whether a row was written.
	InsertIfAbsent(ctx context.Context, p *model.PurchaseEvent) (bool, error)
	Count(ctx context.Context) (int64, error)
	// Latest returns up to limit events, newest CreatedAt first.
	Latest(ctx context.Context, limit int) ([]model.PurchaseEvent, error)
	// MaxBlockNumber returns the highest recorded block, or ok=false when empty.
	MaxBlockNumber(ctx context.Context) (uint64, bool, error)
}

// WhitelistRepository stores the off-chain whitelist replica.
type WhitelistRepository interface {
	Upsert(ctx context.Context, rec *model.WhitelistRecord) error
	// Get returns nil, nil when the address has no replica row.
	Get(ctx context.Context, address string) (*model.WhitelistRecord, error)
	// Count returns the number of accounts flagged as whitelisted on chain.
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]model.WhitelistRecord, error)
}

// SiteSettingsRepository stores JSON site settings by key.
type SiteSettingsRepository interface {
	// Get returns nil, nil when key is not set.
	Get(ctx context.Context, key string) (*model.SiteSettings, error)
	Upsert(ctx context.Context, s *model.SiteSettings) error
}
