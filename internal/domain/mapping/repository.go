package mapping

import "context"

// Repository is the persistence port for transaction mappings. All mutations
// commit immediately so the same reconciliation run observes its own writes.
type Repository interface {
	// FindByScope returns the single mapping for the scope key.
	// Returns errors.ErrMappingNotFound when none exists. When more than one
	// row matches, the store deletes them all and returns
	// errors.ErrInconsistentMapping so the caller re-derives from scratch.
	FindByScope(ctx context.Context, scope ScopeKey) (*TransactionMapping, error)

	// FindByRemote returns every mapping pointing at the remote transaction.
	FindByRemote(ctx context.Context, transactionID, spaceID int64) ([]*TransactionMapping, error)

	// Upsert stores the mapping as the single row for its scope, deleting
	// conflicting rows (same scope, or same remote transaction) first.
	Upsert(ctx context.Context, m *TransactionMapping) error

	// DeleteByScope removes all mappings for the scope key.
	DeleteByScope(ctx context.Context, scope ScopeKey) (int64, error)

	// DeleteByRemote removes all mappings pointing at the remote transaction.
	DeleteByRemote(ctx context.Context, transactionID, spaceID int64) (int64, error)
}
