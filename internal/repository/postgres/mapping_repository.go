package postgres

import (
	"context"
	"fmt"

	domainErrors "github.com/cassiomorais/checkout-bridge/internal/domain/errors"
	"github.com/cassiomorais/checkout-bridge/internal/domain/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// MappingRepository implements mapping.Repository backed by PostgreSQL.
// The table carries no unique constraint on the scope columns on purpose:
// duplicates produced by concurrent writers are detected on read and
// repaired by deleting the whole group.
type MappingRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewMappingRepository(pool *pgxpool.Pool, logger zerolog.Logger) *MappingRepository {
	return &MappingRepository{pool: pool, logger: logger}
}

func (r *MappingRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

const mappingColumns = `id, order_id, temporary_id, shop_id, transaction_id, space_id, created_at, updated_at`

func scanMapping(row pgx.Row) (*mapping.TransactionMapping, error) {
	m := &mapping.TransactionMapping{}
	err := row.Scan(&m.ID, &m.OrderID, &m.TemporaryID, &m.ShopID, &m.TransactionID, &m.SpaceID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func scopeCondition(scope mapping.ScopeKey) (string, any) {
	if scope.IsTemporary() {
		return "temporary_id = $1", scope.TemporaryID
	}
	return "order_id = $1", scope.OrderID
}

func (r *MappingRepository) FindByScope(ctx context.Context, scope mapping.ScopeKey) (*mapping.TransactionMapping, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	cond, arg := scopeCondition(scope)

	rows, err := r.db(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM transaction_mappings WHERE %s`, mappingColumns, cond), arg,
	)
	if err != nil {
		return nil, fmt.Errorf("find mapping by scope: %w", err)
	}
	defer rows.Close()

	var found []*mapping.TransactionMapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		found = append(found, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find mapping by scope: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, domainErrors.ErrMappingNotFound
	case 1:
		return found[0], nil
	default:
		// Corrupt state: the scope must map to exactly one remote transaction.
		// Remove the whole group so the caller re-derives the mapping.
		deleted, err := r.DeleteByScope(ctx, scope)
		if err != nil {
			return nil, err
		}
		r.logger.Warn().
			Str("scope", scope.String()).
			Int64("deleted", deleted).
			Msg("pruned duplicate transaction mappings")
		return nil, domainErrors.ErrInconsistentMapping
	}
}

func (r *MappingRepository) FindByRemote(ctx context.Context, transactionID, spaceID int64) ([]*mapping.TransactionMapping, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+mappingColumns+` FROM transaction_mappings
		 WHERE transaction_id = $1 AND space_id = $2`, transactionID, spaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("find mapping by remote: %w", err)
	}
	defer rows.Close()

	var found []*mapping.TransactionMapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		found = append(found, m)
	}
	return found, rows.Err()
}

// Upsert makes m the single row for its scope. Rows under the same scope key
// are removed first, then the rows pointing at the same remote transaction
// are reconciled: exactly one gets rescoped in place, more than one gets
// wiped and replaced.
func (r *MappingRepository) Upsert(ctx context.Context, m *mapping.TransactionMapping) error {
	scope := m.Scope()
	if err := scope.Validate(); err != nil {
		return err
	}

	if _, err := r.DeleteByScope(ctx, scope); err != nil {
		return err
	}

	existing, err := r.FindByRemote(ctx, m.TransactionID, m.SpaceID)
	if err != nil {
		return err
	}

	if len(existing) > 1 {
		if _, err := r.DeleteByRemote(ctx, m.TransactionID, m.SpaceID); err != nil {
			return err
		}
		r.logger.Warn().
			Int64("transaction_id", m.TransactionID).
			Int64("space_id", m.SpaceID).
			Int("count", len(existing)).
			Msg("pruned duplicate mappings for remote transaction")
		existing = nil
	}

	if len(existing) == 1 {
		_, err := r.db(ctx).Exec(ctx,
			`UPDATE transaction_mappings
			 SET order_id = $1, temporary_id = $2, shop_id = $3, updated_at = NOW()
			 WHERE id = $4`,
			m.OrderID, m.TemporaryID, m.ShopID, existing[0].ID,
		)
		if err != nil {
			return fmt.Errorf("rescope mapping: %w", err)
		}
		return nil
	}

	_, err = r.db(ctx).Exec(ctx,
		`INSERT INTO transaction_mappings (id, order_id, temporary_id, shop_id, transaction_id, space_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.OrderID, m.TemporaryID, m.ShopID, m.TransactionID, m.SpaceID, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert mapping: %w", err)
	}
	return nil
}

func (r *MappingRepository) DeleteByScope(ctx context.Context, scope mapping.ScopeKey) (int64, error) {
	cond, arg := scopeCondition(scope)
	tag, err := r.db(ctx).Exec(ctx,
		fmt.Sprintf(`DELETE FROM transaction_mappings WHERE %s`, cond), arg,
	)
	if err != nil {
		return 0, fmt.Errorf("delete mapping by scope: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *MappingRepository) DeleteByRemote(ctx context.Context, transactionID, spaceID int64) (int64, error) {
	tag, err := r.db(ctx).Exec(ctx,
		`DELETE FROM transaction_mappings WHERE transaction_id = $1 AND space_id = $2`,
		transactionID, spaceID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete mapping by remote: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ mapping.Repository = (*MappingRepository)(nil)
