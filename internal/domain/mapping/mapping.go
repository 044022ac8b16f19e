package mapping

import (
	"fmt"
	"time"

	"github.com/cassiomorais/checkout-bridge/internal/domain/errors"
	"github.com/google/uuid"
)

// ScopeKey identifies the local side of a transaction mapping: either a
// storefront order id or a temporary/session id, never both.
type ScopeKey struct {
	OrderID     int64
	TemporaryID string
}

// OrderScope builds a scope key for a persisted order.
func OrderScope(orderID int64) ScopeKey {
	return ScopeKey{OrderID: orderID}
}

// TemporaryScope builds a scope key for a checkout session or temporary order id.
func TemporaryScope(temporaryID string) ScopeKey {
	return ScopeKey{TemporaryID: temporaryID}
}

// IsTemporary reports whether the scope is session-based.
func (k ScopeKey) IsTemporary() bool {
	return k.TemporaryID != ""
}

// Validate checks the mutual-exclusion invariant of the scope key.
func (k ScopeKey) Validate() error {
	if k.OrderID > 0 && k.TemporaryID != "" {
		return errors.NewValidationError("scope", "order id and temporary id are mutually exclusive")
	}
	if k.OrderID <= 0 && k.TemporaryID == "" {
		return errors.NewValidationError("scope", "either order id or temporary id is required")
	}
	return nil
}

func (k ScopeKey) String() string {
	if k.IsTemporary() {
		return "temporary:" + k.TemporaryID
	}
	return fmt.Sprintf("order:%d", k.OrderID)
}

// TransactionMapping relates a local scope to a remote transaction. At most
// one mapping may exist per scope key and per (transaction id, space id) pair;
// duplicates are corrupt state and get pruned by the store.
type TransactionMapping struct {
	ID            uuid.UUID
	OrderID       *int64
	TemporaryID   *string
	ShopID        string
	TransactionID int64
	SpaceID       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New creates a mapping for the given scope and remote transaction.
func New(scope ScopeKey, shopID string, transactionID, spaceID int64) (*TransactionMapping, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if transactionID <= 0 || spaceID <= 0 {
		return nil, errors.NewValidationError("transaction", "remote transaction id and space id are required")
	}

	now := time.Now()
	m := &TransactionMapping{
		ID:            uuid.New(),
		ShopID:        shopID,
		TransactionID: transactionID,
		SpaceID:       spaceID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if scope.IsTemporary() {
		tmp := scope.TemporaryID
		m.TemporaryID = &tmp
	} else {
		oid := scope.OrderID
		m.OrderID = &oid
	}
	return m, nil
}

// Scope returns the scope key the mapping is stored under.
func (m *TransactionMapping) Scope() ScopeKey {
	if m.TemporaryID != nil && *m.TemporaryID != "" {
		return TemporaryScope(*m.TemporaryID)
	}
	if m.OrderID != nil {
		return OrderScope(*m.OrderID)
	}
	return ScopeKey{}
}
