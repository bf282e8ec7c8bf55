package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xoralabs/ftt-backend-ico/internal/domain/model"
	"github.com/xoralabs/ftt-backend-ico/internal/store"
)

type WhitelistRepo struct {
	db *DB
}

var _ store.WhitelistRepository = (*WhitelistRepo)(nil)

func NewWhitelistRepo(db *DB) *WhitelistRepo {
	return &WhitelistRepo{db: db}
}

func (r *WhitelistRepo) Upsert(ctx context.Context, rec *model.WhitelistRecord) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO whitelist_status (user_address, is_whitelisted_on_chain, whitelisted_at)
		VALUES (:user_address, :is_whitelisted_on_chain, :whitelisted_at)
		ON CONFLICT (user_address) DO UPDATE SET
			is_whitelisted_on_chain = EXCLUDED.is_whitelisted_on_chain,
			whitelisted_at = EXCLUDED.whitelisted_at
	`, rec)
	if err != nil {
		return store.Wrap("upsert whitelist status", err)
	}
	return nil
}

func (r *WhitelistRepo) Get(ctx context.Context, address string) (*model.WhitelistRecord, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var rec model.WhitelistRecord
	err := r.db.GetContext(ctx, &rec, `
		SELECT user_address, is_whitelisted_on_chain, whitelisted_at
		FROM whitelist_status
		WHERE user_address = $1
	`, address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Wrap("get whitelist status", err)
	}
	return &rec, nil
}

func (r *WhitelistRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM whitelist_status WHERE is_whitelisted_on_chain`)
	if err != nil {
		return 0, store.Wrap("count whitelist", err)
	}
	return n, nil
}

func (r *WhitelistRepo) List(ctx context.Context) ([]model.WhitelistRecord, error) {
	ctx, cancel := withTimeout(ctx, LongQueryTimeout)
	defer cancel()

	var out []model.WhitelistRecord
	err := r.db.SelectContext(ctx, &out, `
		SELECT user_address, is_whitelisted_on_chain, whitelisted_at
		FROM whitelist_status
		ORDER BY user_address
	`)
	if err != nil {
		return nil, store.Wrap("list whitelist", err)
	}
	return out, nil
}
