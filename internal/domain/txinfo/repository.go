package txinfo

import "context"

// Repository is the persistence port for transaction snapshots.
type Repository interface {
	// UpsertByTransaction stores the snapshot keyed by (transaction id, space id),
	// overwriting state fields on conflict. Scope fields already present in the
	// row are preserved when the incoming snapshot does not carry them.
	UpsertByTransaction(ctx context.Context, info *TransactionInfo) error

	// FindByTransaction returns the snapshot for the remote transaction.
	// Returns errors.ErrTransactionInfoNotFound when none exists.
	FindByTransaction(ctx context.Context, transactionID, spaceID int64) (*TransactionInfo, error)
}
