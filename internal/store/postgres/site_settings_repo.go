package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/xoralabs/ftt-backend-ico/internal/domain/model"
	"github.com/xoralabs/ftt-backend-ico/internal/store"
)

type SiteSettingsRepo struct {
	db *DB
}

var _ store.SiteSettingsRepository = (*SiteSettingsRepo)(nil)

func NewSiteSettingsRepo(db *DB) *SiteSettingsRepo {
	return &SiteSettingsRepo{db: db}
}

func (r *SiteSettingsRepo) Get(ctx context.Context, key string) (*model.SiteSettings, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var (
		value     []byte
		updatedAt time.Time
	)
	err := r.db.QueryRowxContext(ctx, `
		SELECT setting_value, updated_at FROM site_settings WHERE setting_key = $1
	`, key).Scan(&value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Wrap("get site setting", err)
	}
	return &model.SiteSettings{Key: key, Value: json.RawMessage(value), UpdatedAt: updatedAt}, nil
}

func (r *SiteSettingsRepo) Upsert(ctx context.Context, s *model.SiteSettings) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO site_settings (setting_key, setting_value, updated_at)
		VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (setting_key) DO UPDATE SET
			setting_value = EXCLUDED.setting_value,
			updated_at = EXCLUDED.updated_at
	`, s.Key, string(s.Value), s.UpdatedAt)
	if err != nil {
		return store.Wrap("upsert site setting", err)
	}
	return nil
}
