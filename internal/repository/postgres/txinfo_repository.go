package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/cassiomorais/checkout-bridge/internal/domain/errors"
	"github.com/cassiomorais/checkout-bridge/internal/domain/txinfo"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionInfoRepository implements txinfo.Repository backed by PostgreSQL.
type TransactionInfoRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionInfoRepository(pool *pgxpool.Pool) *TransactionInfoRepository {
	return &TransactionInfoRepository{pool: pool}
}

func (r *TransactionInfoRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

func (r *TransactionInfoRepository) UpsertByTransaction(ctx context.Context, info *txinfo.TransactionInfo) error {
	// COALESCE keeps scope columns already present in the row when the
	// incoming snapshot does not carry them (webhook refreshes have no scope).
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO transaction_info (id, order_id, temporary_id, transaction_id, space_id, state, currency, authorization_amount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (transaction_id, space_id) DO UPDATE SET
		   order_id = COALESCE(EXCLUDED.order_id, transaction_info.order_id),
		   temporary_id = COALESCE(EXCLUDED.temporary_id, transaction_info.temporary_id),
		   state = EXCLUDED.state,
		   currency = EXCLUDED.currency,
		   authorization_amount = EXCLUDED.authorization_amount,
		   updated_at = NOW()`,
		info.ID, info.OrderID, info.TemporaryID, info.TransactionID, info.SpaceID,
		info.State, info.Currency, info.AuthorizationAmount, info.CreatedAt, info.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert transaction info: %w", err)
	}
	return nil
}

func (r *TransactionInfoRepository) FindByTransaction(ctx context.Context, transactionID, spaceID int64) (*txinfo.TransactionInfo, error) {
	info := &txinfo.TransactionInfo{}
	err := r.db(ctx).QueryRow(ctx,
		`SELECT id, order_id, temporary_id, transaction_id, space_id, state, currency, authorization_amount, created_at, updated_at
		 FROM transaction_info
		 WHERE transaction_id = $1 AND space_id = $2`, transactionID, spaceID,
	).Scan(&info.ID, &info.OrderID, &info.TemporaryID, &info.TransactionID, &info.SpaceID,
		&info.State, &info.Currency, &info.AuthorizationAmount, &info.CreatedAt, &info.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrTransactionInfoNotFound
		}
		return nil, fmt.Errorf("find transaction info: %w", err)
	}
	return info, nil
}

var _ txinfo.Repository = (*TransactionInfoRepository)(nil)
