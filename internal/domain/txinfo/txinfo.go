package txinfo

import (
	"time"

	"github.com/google/uuid"
)

// TransactionInfo is the local snapshot of a remote transaction, kept so the
// storefront can show payment state without a gateway round trip. It is
// refreshed on successful reconciliation and on webhook delivery.
type TransactionInfo struct {
	ID                  uuid.UUID
	OrderID             *int64
	TemporaryID         *string
	TransactionID       int64
	SpaceID             int64
	State               string
	Currency            string
	AuthorizationAmount float64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// New creates a snapshot for the given remote transaction.
func New(transactionID, spaceID int64, state, currency string) *TransactionInfo {
	now := time.Now()
	return &TransactionInfo{
		ID:            uuid.New(),
		TransactionID: transactionID,
		SpaceID:       spaceID,
		State:         state,
		Currency:      currency,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
