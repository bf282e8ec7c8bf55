package postgres

import (
	"context"
	"database/sql"

	"github.com/xoralabs/ftt-backend-ico/internal/domain/model"
	"github.com/xoralabs/ftt-backend-ico/internal/store"
)

type PurchaseRepo struct {
	db *DB
}

var _ store.PurchaseRepository = (*PurchaseRepo)(nil)

func NewPurchaseRepo(db *DB) *PurchaseRepo {
	return &PurchaseRepo{db: db}
}

const insertPurchaseSQL = `
	INSERT INTO transactions (
		tx_hash, user_address, beneficiary_address, wei_amount, token_amount,
		eth_amount, token_display, block_number, log_index, created_at
	) VALUES (
		:tx_hash, :user_address, :beneficiary_address, :wei_amount, :token_amount,
		:eth_amount, :token_display, :block_number, :log_index, :created_at
	)
	ON CONFLICT (tx_hash) DO NOTHING`

func (r *PurchaseRepo) InsertIfAbsent(ctx context.Context, p *model.PurchaseEvent) (bool, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	res, err := r.db.NamedExecContext(ctx, insertPurchaseSQL, p)
	if err != nil {
		return false, store.Wrap("insert purchase", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, store.Wrap("insert purchase rows affected", err)
	}
	return n > 0, nil
}

func (r *PurchaseRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM transactions`); err != nil {
		return 0, store.Wrap("count purchases", err)
	}
	return n, nil
}

func (r *PurchaseRepo) Latest(ctx context.Context, limit int) ([]model.PurchaseEvent, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	out := make([]model.PurchaseEvent, 0, limit)
	err := r.db.SelectContext(ctx, &out, `
		SELECT tx_hash, user_address, beneficiary_address,
		       wei_amount::text AS wei_amount, token_amount::text AS token_amount,
		       eth_amount, token_display, block_number, log_index, created_at
		FROM transactions
		ORDER BY created_at DESC, block_number DESC, log_index DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, store.Wrap("latest purchases", err)
	}
	return out, nil
}

func (r *PurchaseRepo) MaxBlockNumber(ctx context.Context) (uint64, bool, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var max sql.NullInt64
	if err := r.db.GetContext(ctx, &max, `SELECT MAX(block_number) FROM transactions`); err != nil {
		return 0, false, store.Wrap("max purchase block", err)
	}
	if !max.Valid || max.Int64 < 0 {
		return 0, false, nil
	}
	return uint64(max.Int64), true, nil
}
