package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/cassiomorais/checkout-bridge/internal/config"
	"github.com/cassiomorais/checkout-bridge/internal/domain/checkout"
	domainErrors "github.com/cassiomorais/checkout-bridge/internal/domain/errors"
	"github.com/cassiomorais/checkout-bridge/internal/domain/mapping"
	"github.com/cassiomorais/checkout-bridge/internal/domain/outbox"
	"github.com/cassiomorais/checkout-bridge/internal/domain/txinfo"
	"github.com/cassiomorais/checkout-bridge/internal/gateway"
	"github.com/cassiomorais/checkout-bridge/internal/infrastructure/observability"
	"github.com/rs/zerolog"
)

// TransactionGateway is the port to the remote payment system. Satisfied by
// gateway.TransactionService.
type TransactionGateway interface {
	Read(ctx context.Context, spaceID, transactionID int64) (*gateway.Transaction, error)
	Create(ctx context.Context, spaceID int64, req *gateway.TransactionCreate) (*gateway.Transaction, error)
	Update(ctx context.Context, spaceID int64, req *gateway.TransactionPending) (*gateway.Transaction, error)
	Confirm(ctx context.Context, spaceID int64, req *gateway.TransactionPending) (*gateway.Transaction, error)
	Search(ctx context.Context, spaceID int64, query gateway.EntityQuery) ([]*gateway.Transaction, error)
	FetchPossiblePaymentMethods(ctx context.Context, spaceID, transactionID int64) ([]*gateway.PaymentMethodConfiguration, error)
	UpdateLineItems(ctx context.Context, spaceID, transactionID int64, items []gateway.LineItem) (*gateway.LineItemVersion, error)
	BuildJavaScriptURL(ctx context.Context, spaceID, transactionID int64) (string, error)
}

// TxManager is the port for running local mutations atomically.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransactionService reconciles storefront orders and baskets against remote
// transactions. It owns the get-or-create-or-update decision; the version
// token travels from the remote read straight into the update request, stale
// versions are rejected remotely and surface as ErrStaleVersion.
type TransactionService struct {
	gateway   TransactionGateway
	mappings  mapping.Repository
	infos     txinfo.Repository
	outbox    outbox.Repository
	txManager TxManager
	assembler *Assembler
	checkout  config.CheckoutConfig
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

func NewTransactionService(
	gw TransactionGateway,
	mappings mapping.Repository,
	infos txinfo.Repository,
	outboxRepo outbox.Repository,
	txManager TxManager,
	assembler *Assembler,
	checkoutCfg config.CheckoutConfig,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *TransactionService {
	return &TransactionService{
		gateway:   gw,
		mappings:  mappings,
		infos:     infos,
		outbox:    outboxRepo,
		txManager: txManager,
		assembler: assembler,
		checkout:  checkoutCfg,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *TransactionService) spaceFor(shopID string) (config.ShopSpaceConfig, error) {
	space, ok := s.checkout.SpaceFor(shopID)
	if !ok {
		return config.ShopSpaceConfig{}, fmt.Errorf("shop %q: %w", shopID, domainErrors.ErrShopNotConfigured)
	}
	return space, nil
}

func orderScope(order *checkout.Order) mapping.ScopeKey {
	if order.TemporaryID != "" {
		return mapping.TemporaryScope(order.TemporaryID)
	}
	return mapping.OrderScope(order.ID)
}

// TransactionForOrder returns the remote transaction for the order, creating
// or updating it as needed. The result is memoized on the checkout context so
// repeated calls within one request hit the remote system at most once.
func (s *TransactionService) TransactionForOrder(ctx context.Context, cctx *CheckoutContext, order *checkout.Order) (*gateway.Transaction, error) {
	return s.reconcileOrder(ctx, cctx, order, false)
}

// ConfirmOrderTransaction reconciles the order and confirms the transaction
// in the same remote call, handing it over to payment processing.
func (s *TransactionService) ConfirmOrderTransaction(ctx context.Context, cctx *CheckoutContext, order *checkout.Order) (*gateway.Transaction, error) {
	return s.reconcileOrder(ctx, cctx, order, true)
}

func (s *TransactionService) reconcileOrder(ctx context.Context, cctx *CheckoutContext, order *checkout.Order, confirm bool) (*gateway.Transaction, error) {
	// Confirmation must reach the remote system, so the cache only short
	// circuits plain reads.
	if !confirm {
		if t, ok := cctx.cachedOrderTransaction(order.ID); ok {
			return t, nil
		}
	}

	m, err := s.findMapping(ctx, order)
	if err != nil {
		return nil, err
	}
	if m != nil {
		return s.UpdateOrderTransaction(ctx, cctx, order, m.TransactionID, m.SpaceID, confirm)
	}
	return s.CreateOrderTransaction(ctx, cctx, order, confirm)
}

// findMapping looks the order up under its temporary id first, then under its
// final order id. Inconsistent groups have already been pruned by the store
// and count as no mapping.
func (s *TransactionService) findMapping(ctx context.Context, order *checkout.Order) (*mapping.TransactionMapping, error) {
	scopes := make([]mapping.ScopeKey, 0, 2)
	if order.TemporaryID != "" {
		scopes = append(scopes, mapping.TemporaryScope(order.TemporaryID))
	}
	if order.ID > 0 {
		scopes = append(scopes, mapping.OrderScope(order.ID))
	}

	for _, scope := range scopes {
		m, err := s.mappings.FindByScope(ctx, scope)
		if err == nil {
			return m, nil
		}
		if errors.Is(err, domainErrors.ErrMappingNotFound) || errors.Is(err, domainErrors.ErrInconsistentMapping) {
			continue
		}
		return nil, err
	}
	return nil, nil
}

// CreateOrderTransaction creates a remote transaction for the order. Before
// creating, the remote system is searched for a pending transaction that
// already belongs to this customer; reusing it prevents duplicates when the
// local mapping was lost.
func (s *TransactionService) CreateOrderTransaction(ctx context.Context, cctx *CheckoutContext, order *checkout.Order, confirm bool) (*gateway.Transaction, error) {
	space, err := s.spaceFor(order.ShopID)
	if err != nil {
		return nil, err
	}

	existing, err := s.findExistingTransaction(ctx, space.SpaceID, order.Customer)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.UpdateOrderTransaction(ctx, cctx, order, existing.ID, space.SpaceID, confirm)
	}

	fields, err := s.assembler.OrderFields(order, space.SpaceID, 0)
	if err != nil {
		return nil, err
	}
	req := &gateway.TransactionCreate{
		TransactionFields:       fields,
		SpaceViewID:             space.SpaceViewID,
		AutoConfirmationEnabled: false,
		CustomersPresence:       gateway.PresenceVirtualPresent,
	}

	t, err := s.gateway.Create(ctx, space.SpaceID, req)
	if err != nil {
		s.countReconciliation("create", "error")
		return nil, err
	}

	if err := s.recordTransaction(ctx, orderScope(order), order.ShopID, space.SpaceID, t, "transaction.created"); err != nil {
		return nil, err
	}

	s.countReconciliation("create", "ok")
	cctx.cacheOrderTransaction(order.ID, t)

	// The create payload cannot carry redirect URLs because they embed the
	// transaction id. Confirmation therefore always goes through the update
	// path, which attaches them.
	if confirm {
		return s.UpdateOrderTransaction(ctx, cctx, order, t.ID, space.SpaceID, true)
	}
	return t, nil
}

// UpdateOrderTransaction refreshes the remote transaction with the order's
// current contents. A transaction that is no longer pending cannot be
// changed, so reconciliation falls back to creating a fresh one; the mapping
// upsert rescopes the order to the new transaction.
func (s *TransactionService) UpdateOrderTransaction(ctx context.Context, cctx *CheckoutContext, order *checkout.Order, transactionID, spaceID int64, confirm bool) (*gateway.Transaction, error) {
	t, err := s.gateway.Read(ctx, spaceID, transactionID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrTransactionNotFound) {
			return s.CreateOrderTransaction(ctx, cctx, order, confirm)
		}
		return nil, err
	}
	if !t.State.Mutable() {
		s.logger.Info().
			Int64("transaction_id", t.ID).
			Str("state", string(t.State)).
			Msg("transaction no longer pending, creating replacement")
		return s.CreateOrderTransaction(ctx, cctx, order, confirm)
	}

	fields, err := s.assembler.OrderFields(order, spaceID, t.ID)
	if err != nil {
		return nil, err
	}
	req := &gateway.TransactionPending{
		TransactionFields: fields,
		ID:                t.ID,
		Version:           t.Version,
	}

	var updated *gateway.Transaction
	if confirm {
		updated, err = s.gateway.Confirm(ctx, spaceID, req)
	} else {
		updated, err = s.gateway.Update(ctx, spaceID, req)
	}
	if err != nil {
		s.countReconciliation("update", "error")
		return nil, err
	}

	if err := s.recordTransaction(ctx, orderScope(order), order.ShopID, spaceID, updated, "transaction.updated"); err != nil {
		return nil, err
	}

	s.countReconciliation("update", "ok")
	cctx.cacheOrderTransaction(order.ID, updated)
	return updated, nil
}

// TransactionForBasket is the pre-order counterpart of TransactionForOrder,
// keyed by the checkout session.
func (s *TransactionService) TransactionForBasket(ctx context.Context, cctx *CheckoutContext, basket *checkout.Basket) (*gateway.Transaction, error) {
	if t, ok := cctx.cachedBasketTransaction(); ok {
		return t, nil
	}

	m, err := s.mappings.FindByScope(ctx, mapping.TemporaryScope(basket.SessionID))
	switch {
	case err == nil:
		return s.UpdateBasketTransaction(ctx, cctx, basket, m.TransactionID, m.SpaceID)
	case errors.Is(err, domainErrors.ErrMappingNotFound), errors.Is(err, domainErrors.ErrInconsistentMapping):
		return s.CreateBasketTransaction(ctx, cctx, basket)
	default:
		return nil, err
	}
}

// CreateBasketTransaction creates a remote transaction for the basket.
func (s *TransactionService) CreateBasketTransaction(ctx context.Context, cctx *CheckoutContext, basket *checkout.Basket) (*gateway.Transaction, error) {
	space, err := s.spaceFor(basket.ShopID)
	if err != nil {
		return nil, err
	}

	existing, err := s.findExistingTransaction(ctx, space.SpaceID, basket.Customer)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.UpdateBasketTransaction(ctx, cctx, basket, existing.ID, space.SpaceID)
	}

	fields, err := s.assembler.BasketFields(basket, space.SpaceID, 0)
	if err != nil {
		return nil, err
	}
	req := &gateway.TransactionCreate{
		TransactionFields:       fields,
		SpaceViewID:             space.SpaceViewID,
		AutoConfirmationEnabled: false,
		CustomersPresence:       gateway.PresenceVirtualPresent,
	}

	t, err := s.gateway.Create(ctx, space.SpaceID, req)
	if err != nil {
		s.countReconciliation("create", "error")
		return nil, err
	}

	scope := mapping.TemporaryScope(basket.SessionID)
	if err := s.recordTransaction(ctx, scope, basket.ShopID, space.SpaceID, t, "transaction.created"); err != nil {
		return nil, err
	}

	s.countReconciliation("create", "ok")
	cctx.cacheBasketTransaction(t)
	return t, nil
}

// UpdateBasketTransaction refreshes the basket's remote transaction, falling
// back to creation when it is gone or no longer pending.
func (s *TransactionService) UpdateBasketTransaction(ctx context.Context, cctx *CheckoutContext, basket *checkout.Basket, transactionID, spaceID int64) (*gateway.Transaction, error) {
	t, err := s.gateway.Read(ctx, spaceID, transactionID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrTransactionNotFound) {
			return s.CreateBasketTransaction(ctx, cctx, basket)
		}
		return nil, err
	}
	if !t.State.Mutable() {
		return s.CreateBasketTransaction(ctx, cctx, basket)
	}

	fields, err := s.assembler.BasketFields(basket, spaceID, t.ID)
	if err != nil {
		return nil, err
	}
	req := &gateway.TransactionPending{
		TransactionFields: fields,
		ID:                t.ID,
		Version:           t.Version,
	}

	updated, err := s.gateway.Update(ctx, spaceID, req)
	if err != nil {
		s.countReconciliation("update", "error")
		return nil, err
	}

	scope := mapping.TemporaryScope(basket.SessionID)
	if err := s.recordTransaction(ctx, scope, basket.ShopID, spaceID, updated, "transaction.updated"); err != nil {
		return nil, err
	}

	s.countReconciliation("update", "ok")
	cctx.cacheBasketTransaction(updated)
	return updated, nil
}

// findExistingTransaction searches the remote system for the newest pending
// transaction belonging to the customer. Guests have no stable identity, so
// they are never matched.
func (s *TransactionService) findExistingTransaction(ctx context.Context, spaceID int64, customer checkout.Customer) (*gateway.Transaction, error) {
	if customer.ID <= 0 || customer.Email == "" {
		return nil, nil
	}

	query := gateway.PendingCustomerTransactionQuery(customer.ID, customer.Email)
	matches, err := s.gateway.Search(ctx, spaceID, query)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

// PossiblePaymentMethodsForOrder returns the payment methods usable for the
// order's transaction, memoized per checkout context.
func (s *TransactionService) PossiblePaymentMethodsForOrder(ctx context.Context, cctx *CheckoutContext, order *checkout.Order) ([]*gateway.PaymentMethodConfiguration, error) {
	if methods, ok := cctx.cachedOrderPaymentMethods(order.ID); ok {
		return methods, nil
	}

	t, err := s.TransactionForOrder(ctx, cctx, order)
	if err != nil {
		return nil, err
	}
	methods, err := s.gateway.FetchPossiblePaymentMethods(ctx, t.LinkedSpaceID, t.ID)
	if err != nil {
		return nil, err
	}
	cctx.cacheOrderPaymentMethods(order.ID, methods)
	return methods, nil
}

// PossiblePaymentMethodsForBasket returns the payment methods usable for the
// basket's transaction, memoized per checkout context.
func (s *TransactionService) PossiblePaymentMethodsForBasket(ctx context.Context, cctx *CheckoutContext, basket *checkout.Basket) ([]*gateway.PaymentMethodConfiguration, error) {
	if methods, ok := cctx.cachedBasketPaymentMethods(); ok {
		return methods, nil
	}

	t, err := s.TransactionForBasket(ctx, cctx, basket)
	if err != nil {
		return nil, err
	}
	methods, err := s.gateway.FetchPossiblePaymentMethods(ctx, t.LinkedSpaceID, t.ID)
	if err != nil {
		return nil, err
	}
	cctx.cacheBasketPaymentMethods(methods)
	return methods, nil
}

// JavaScriptURLForBasket returns the payment form script URL for the basket's
// transaction.
func (s *TransactionService) JavaScriptURLForBasket(ctx context.Context, cctx *CheckoutContext, basket *checkout.Basket) (string, error) {
	t, err := s.TransactionForBasket(ctx, cctx, basket)
	if err != nil {
		return "", err
	}
	return s.gateway.BuildJavaScriptURL(ctx, t.LinkedSpaceID, t.ID)
}

// UpdateLineItemsForOrder replaces the line items of the order's existing
// transaction. Unlike full reconciliation this never creates a transaction;
// a missing mapping is an error.
func (s *TransactionService) UpdateLineItemsForOrder(ctx context.Context, order *checkout.Order) (*gateway.LineItemVersion, error) {
	m, err := s.findMapping(ctx, order)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("order %d: %w", order.ID, domainErrors.ErrMappingNotFound)
	}

	items, err := s.assembler.collector.Collect(order.Items, order.Currency)
	if err != nil {
		return nil, err
	}
	return s.gateway.UpdateLineItems(ctx, m.SpaceID, m.TransactionID, items)
}

// recordTransaction persists the reconciliation result: the scope mapping,
// the local snapshot and the outbox event commit together or not at all.
func (s *TransactionService) recordTransaction(ctx context.Context, scope mapping.ScopeKey, shopID string, spaceID int64, t *gateway.Transaction, eventType string) error {
	if t.LinkedSpaceID > 0 {
		spaceID = t.LinkedSpaceID
	}

	m, err := mapping.New(scope, shopID, t.ID, spaceID)
	if err != nil {
		return err
	}

	info := txinfo.New(t.ID, spaceID, string(t.State), t.Currency)
	info.AuthorizationAmount = t.AuthorizationAmount
	info.OrderID = m.OrderID
	info.TemporaryID = m.TemporaryID

	entry := outbox.NewEntry("transaction", strconv.FormatInt(t.ID, 10), eventType, map[string]any{
		"transactionId": t.ID,
		"spaceId":       spaceID,
		"state":         string(t.State),
		"scope":         scope.String(),
		"shopId":        shopID,
	})

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.mappings.Upsert(txCtx, m); err != nil {
			return fmt.Errorf("upsert mapping: %w", err)
		}
		if err := s.infos.UpsertByTransaction(txCtx, info); err != nil {
			return fmt.Errorf("upsert transaction info: %w", err)
		}
		if err := s.outbox.Insert(txCtx, entry); err != nil {
			return fmt.Errorf("insert outbox entry: %w", err)
		}
		return nil
	})
}

func (s *TransactionService) countReconciliation(operation, outcome string) {
	if s.metrics != nil {
		s.metrics.ReconciliationsTotal.WithLabelValues(operation, outcome).Inc()
	}
}
