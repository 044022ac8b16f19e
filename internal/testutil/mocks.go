package testutil

import (
	"context"
	"sync"

	domainErrors "github.com/cassiomorais/checkout-bridge/internal/domain/errors"
	"github.com/cassiomorais/checkout-bridge/internal/domain/mapping"
	"github.com/cassiomorais/checkout-bridge/internal/domain/outbox"
	"github.com/cassiomorais/checkout-bridge/internal/domain/txinfo"
	"github.com/cassiomorais/checkout-bridge/internal/gateway"
	"github.com/google/uuid"
)

// --- Mapping Repository Mock ---

// MockMappingRepository is an in-memory mapping.Repository. Behaviour can be
// overridden per test through the Func fields.
type MockMappingRepository struct {
	mu       sync.Mutex
	mappings []*mapping.TransactionMapping

	FindByScopeFunc    func(ctx context.Context, scope mapping.ScopeKey) (*mapping.TransactionMapping, error)
	FindByRemoteFunc   func(ctx context.Context, transactionID, spaceID int64) ([]*mapping.TransactionMapping, error)
	UpsertFunc         func(ctx context.Context, m *mapping.TransactionMapping) error
	DeleteByScopeFunc  func(ctx context.Context, scope mapping.ScopeKey) (int64, error)
	DeleteByRemoteFunc func(ctx context.Context, transactionID, spaceID int64) (int64, error)
}

func NewMockMappingRepository() *MockMappingRepository {
	return &MockMappingRepository{}
}

func (r *MockMappingRepository) FindByScope(ctx context.Context, scope mapping.ScopeKey) (*mapping.TransactionMapping, error) {
	if r.FindByScopeFunc != nil {
		return r.FindByScopeFunc(ctx, scope)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*mapping.TransactionMapping
	for _, m := range r.mappings {
		if m.Scope() == scope {
			found = append(found, m)
		}
	}
	switch len(found) {
	case 0:
		return nil, domainErrors.ErrMappingNotFound
	case 1:
		return found[0], nil
	default:
		r.deleteByScopeLocked(scope)
		return nil, domainErrors.ErrInconsistentMapping
	}
}

func (r *MockMappingRepository) FindByRemote(ctx context.Context, transactionID, spaceID int64) ([]*mapping.TransactionMapping, error) {
	if r.FindByRemoteFunc != nil {
		return r.FindByRemoteFunc(ctx, transactionID, spaceID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []*mapping.TransactionMapping
	for _, m := range r.mappings {
		if m.TransactionID == transactionID && m.SpaceID == spaceID {
			found = append(found, m)
		}
	}
	return found, nil
}

// Upsert mirrors the store's pruning: rows under the same scope and rows
// pointing at the same remote transaction are removed before the fresh row is
// added, so at most one mapping survives per scope and per remote pair.
func (r *MockMappingRepository) Upsert(ctx context.Context, m *mapping.TransactionMapping) error {
	if r.UpsertFunc != nil {
		return r.UpsertFunc(ctx, m)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteByScopeLocked(m.Scope())
	r.deleteByRemoteLocked(m.TransactionID, m.SpaceID)
	r.mappings = append(r.mappings, m)
	return nil
}

func (r *MockMappingRepository) DeleteByScope(ctx context.Context, scope mapping.ScopeKey) (int64, error) {
	if r.DeleteByScopeFunc != nil {
		return r.DeleteByScopeFunc(ctx, scope)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteByScopeLocked(scope), nil
}

func (r *MockMappingRepository) DeleteByRemote(ctx context.Context, transactionID, spaceID int64) (int64, error) {
	if r.DeleteByRemoteFunc != nil {
		return r.DeleteByRemoteFunc(ctx, transactionID, spaceID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteByRemoteLocked(transactionID, spaceID), nil
}

func (r *MockMappingRepository) deleteByScopeLocked(scope mapping.ScopeKey) int64 {
	var kept []*mapping.TransactionMapping
	var deleted int64
	for _, m := range r.mappings {
		if m.Scope() == scope {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	r.mappings = kept
	return deleted
}

func (r *MockMappingRepository) deleteByRemoteLocked(transactionID, spaceID int64) int64 {
	var kept []*mapping.TransactionMapping
	var deleted int64
	for _, m := range r.mappings {
		if m.TransactionID == transactionID && m.SpaceID == spaceID {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	r.mappings = kept
	return deleted
}

// Seed inserts a mapping without the upsert pruning, for building corrupt
// states in tests.
func (r *MockMappingRepository) Seed(m *mapping.TransactionMapping) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappings = append(r.mappings, m)
}

// All returns a copy of the stored mappings.
func (r *MockMappingRepository) All() []*mapping.TransactionMapping {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*mapping.TransactionMapping, len(r.mappings))
	copy(out, r.mappings)
	return out
}

// --- Transaction Info Repository Mock ---

type MockTransactionInfoRepository struct {
	mu    sync.Mutex
	infos map[[2]int64]*txinfo.TransactionInfo

	UpsertByTransactionFunc func(ctx context.Context, info *txinfo.TransactionInfo) error
	FindByTransactionFunc   func(ctx context.Context, transactionID, spaceID int64) (*txinfo.TransactionInfo, error)
}

func NewMockTransactionInfoRepository() *MockTransactionInfoRepository {
	return &MockTransactionInfoRepository{infos: make(map[[2]int64]*txinfo.TransactionInfo)}
}

func (r *MockTransactionInfoRepository) UpsertByTransaction(ctx context.Context, info *txinfo.TransactionInfo) error {
	if r.UpsertByTransactionFunc != nil {
		return r.UpsertByTransactionFunc(ctx, info)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{info.TransactionID, info.SpaceID}
	if existing, ok := r.infos[key]; ok {
		if info.OrderID == nil {
			info.OrderID = existing.OrderID
		}
		if info.TemporaryID == nil {
			info.TemporaryID = existing.TemporaryID
		}
	}
	r.infos[key] = info
	return nil
}

func (r *MockTransactionInfoRepository) FindByTransaction(ctx context.Context, transactionID, spaceID int64) (*txinfo.TransactionInfo, error) {
	if r.FindByTransactionFunc != nil {
		return r.FindByTransactionFunc(ctx, transactionID, spaceID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.infos[[2]int64{transactionID, spaceID}]
	if !ok {
		return nil, domainErrors.ErrTransactionInfoNotFound
	}
	return info, nil
}

// --- Outbox Repository Mock ---

type MockOutboxRepository struct {
	mu      sync.Mutex
	entries []*outbox.Entry

	InsertFunc        func(ctx context.Context, entry *outbox.Entry) error
	GetPendingFunc    func(ctx context.Context, limit int) ([]*outbox.Entry, error)
	MarkPublishedFunc func(ctx context.Context, id uuid.UUID) error
	MarkFailedFunc    func(ctx context.Context, id uuid.UUID) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (r *MockOutboxRepository) Insert(ctx context.Context, entry *outbox.Entry) error {
	if r.InsertFunc != nil {
		return r.InsertFunc(ctx, entry)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Entry, error) {
	if r.GetPendingFunc != nil {
		return r.GetPendingFunc(ctx, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*outbox.Entry
	for _, e := range r.entries {
		if e.Status == outbox.StatusPending {
			pending = append(pending, e)
			if len(pending) == limit {
				break
			}
		}
	}
	return pending, nil
}

func (r *MockOutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	if r.MarkPublishedFunc != nil {
		return r.MarkPublishedFunc(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			e.Status = outbox.StatusPublished
		}
	}
	return nil
}

func (r *MockOutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	if r.MarkFailedFunc != nil {
		return r.MarkFailedFunc(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			e.RetryCount++
			if e.RetryCount >= e.MaxRetries {
				e.Status = outbox.StatusFailed
			}
		}
	}
	return nil
}

// Entries returns a copy of the stored entries.
func (r *MockOutboxRepository) Entries() []*outbox.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*outbox.Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// --- Transaction Gateway Mock ---

// MockTransactionGateway records calls to the remote transaction API. Every
// operation must be stubbed through its Func field before use.
type MockTransactionGateway struct {
	mu    sync.Mutex
	calls []string

	ReadFunc                        func(ctx context.Context, spaceID, transactionID int64) (*gateway.Transaction, error)
	CreateFunc                      func(ctx context.Context, spaceID int64, req *gateway.TransactionCreate) (*gateway.Transaction, error)
	UpdateFunc                      func(ctx context.Context, spaceID int64, req *gateway.TransactionPending) (*gateway.Transaction, error)
	ConfirmFunc                     func(ctx context.Context, spaceID int64, req *gateway.TransactionPending) (*gateway.Transaction, error)
	SearchFunc                      func(ctx context.Context, spaceID int64, query gateway.EntityQuery) ([]*gateway.Transaction, error)
	FetchPossiblePaymentMethodsFunc func(ctx context.Context, spaceID, transactionID int64) ([]*gateway.PaymentMethodConfiguration, error)
	UpdateLineItemsFunc             func(ctx context.Context, spaceID, transactionID int64, items []gateway.LineItem) (*gateway.LineItemVersion, error)
	BuildJavaScriptURLFunc          func(ctx context.Context, spaceID, transactionID int64) (string, error)
}

func NewMockTransactionGateway() *MockTransactionGateway {
	return &MockTransactionGateway{}
}

func (g *MockTransactionGateway) record(call string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
}

// Calls returns the operations invoked so far, in order.
func (g *MockTransactionGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.calls))
	copy(out, g.calls)
	return out
}

// CallCount returns how many times the named operation was invoked.
func (g *MockTransactionGateway) CallCount(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (g *MockTransactionGateway) Read(ctx context.Context, spaceID, transactionID int64) (*gateway.Transaction, error) {
	g.record("Read")
	return g.ReadFunc(ctx, spaceID, transactionID)
}

func (g *MockTransactionGateway) Create(ctx context.Context, spaceID int64, req *gateway.TransactionCreate) (*gateway.Transaction, error) {
	g.record("Create")
	return g.CreateFunc(ctx, spaceID, req)
}

func (g *MockTransactionGateway) Update(ctx context.Context, spaceID int64, req *gateway.TransactionPending) (*gateway.Transaction, error) {
	g.record("Update")
	return g.UpdateFunc(ctx, spaceID, req)
}

func (g *MockTransactionGateway) Confirm(ctx context.Context, spaceID int64, req *gateway.TransactionPending) (*gateway.Transaction, error) {
	g.record("Confirm")
	return g.ConfirmFunc(ctx, spaceID, req)
}

func (g *MockTransactionGateway) Search(ctx context.Context, spaceID int64, query gateway.EntityQuery) ([]*gateway.Transaction, error) {
	g.record("Search")
	if g.SearchFunc != nil {
		return g.SearchFunc(ctx, spaceID, query)
	}
	return nil, nil
}

func (g *MockTransactionGateway) FetchPossiblePaymentMethods(ctx context.Context, spaceID, transactionID int64) ([]*gateway.PaymentMethodConfiguration, error) {
	g.record("FetchPossiblePaymentMethods")
	return g.FetchPossiblePaymentMethodsFunc(ctx, spaceID, transactionID)
}

func (g *MockTransactionGateway) UpdateLineItems(ctx context.Context, spaceID, transactionID int64, items []gateway.LineItem) (*gateway.LineItemVersion, error) {
	g.record("UpdateLineItems")
	return g.UpdateLineItemsFunc(ctx, spaceID, transactionID, items)
}

func (g *MockTransactionGateway) BuildJavaScriptURL(ctx context.Context, spaceID, transactionID int64) (string, error) {
	g.record("BuildJavaScriptURL")
	return g.BuildJavaScriptURLFunc(ctx, spaceID, transactionID)
}

// --- Tx Manager Mock ---

// MockTxManager runs the function directly, without a real transaction.
type MockTxManager struct {
	WithTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

func (m *MockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}
