package service

import (
	"context"
	"testing"

	"github.com/cassiomorais/checkout-bridge/internal/config"
	domainErrors "github.com/cassiomorais/checkout-bridge/internal/domain/errors"
	"github.com/cassiomorais/checkout-bridge/internal/domain/mapping"
	"github.com/cassiomorais/checkout-bridge/internal/gateway"
	"github.com/cassiomorais/checkout-bridge/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reconcilerFixture struct {
	gateway  *testutil.MockTransactionGateway
	mappings *testutil.MockMappingRepository
	infos    *testutil.MockTransactionInfoRepository
	outbox   *testutil.MockOutboxRepository
	service  *TransactionService
}

func newReconcilerFixture() *reconcilerFixture {
	gw := testutil.NewMockTransactionGateway()
	mappings := testutil.NewMockMappingRepository()
	infos := testutil.NewMockTransactionInfoRepository()
	outboxRepo := testutil.NewMockOutboxRepository()

	svc := NewTransactionService(
		gw,
		mappings,
		infos,
		outboxRepo,
		testutil.NewMockTxManager(),
		newTestAssembler(),
		config.CheckoutConfig{
			Shops: map[string]config.ShopSpaceConfig{
				"shop-1": {SpaceID: 7, SpaceViewID: 3},
			},
		},
		nil,
		zerolog.Nop(),
	)

	return &reconcilerFixture{
		gateway:  gw,
		mappings: mappings,
		infos:    infos,
		outbox:   outboxRepo,
		service:  svc,
	}
}

func TestTransactionForOrder_CreatesWhenNoMapping(t *testing.T) {
	f := newReconcilerFixture()
	order := testutil.NewTestOrder()

	f.gateway.CreateFunc = func(ctx context.Context, spaceID int64, req *gateway.TransactionCreate) (*gateway.Transaction, error) {
		assert.Equal(t, int64(7), spaceID)
		assert.Equal(t, int64(3), req.SpaceViewID)
		assert.False(t, req.AutoConfirmationEnabled)
		assert.Equal(t, gateway.PresenceVirtualPresent, req.CustomersPresence)
		assert.Empty(t, req.SuccessURL)
		return testutil.NewRemoteTransaction(500, gateway.StatePending), nil
	}

	cctx := NewCheckoutContext(order.ShopID, order.Customer, "")
	tx, err := f.service.TransactionForOrder(context.Background(), cctx, order)

	require.NoError(t, err)
	assert.Equal(t, int64(500), tx.ID)
	assert.Equal(t, 1, f.gateway.CallCount("Create"))

	m, err := f.mappings.FindByScope(context.Background(), mapping.OrderScope(order.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(500), m.TransactionID)
	assert.Equal(t, int64(7), m.SpaceID)

	entries := f.outbox.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "transaction.created", entries[0].EventType)

	info, err := f.infos.FindByTransaction(context.Background(), 500, 7)
	require.NoError(t, err)
	assert.Equal(t, string(gateway.StatePending), info.State)
	require.NotNil(t, info.OrderID)
	assert.Equal(t, order.ID, *info.OrderID)
}

func TestTransactionForOrder_MemoizesPerContext(t *testing.T) {
	f := newReconcilerFixture()
	order := testutil.NewTestOrder()

	f.gateway.CreateFunc = func(ctx context.Context, spaceID int64, req *gateway.TransactionCreate) (*gateway.Transaction, error) {
		return testutil.NewRemoteTransaction(500, gateway.StatePending), nil
	}

	cctx := NewCheckoutContext(order.ShopID, order.Customer, "")
	first, err := f.service.TransactionForOrder(context.Background(), cctx, order)
	require.NoError(t, err)

	second, err := f.service.TransactionForOrder(context.Background(), cctx, order)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, f.gateway.CallCount("Create"))
	assert.Equal(t, 0, f.gateway.CallCount("Read"))

	// A fresh context must not see the old cache: the mapping now exists, so
	// reconciliation goes through the update path.
	f.gateway.ReadFunc = func(ctx context.Context, spaceID, transactionID int64) (*gateway.Transaction, error) {
		assert.Equal(t, int64(500), transactionID)
		return testutil.NewRemoteTransaction(500, gateway.StatePending), nil
	}
	f.gateway.UpdateFunc = func(ctx context.Context, spaceID int64, req *gateway.TransactionPending) (*gateway.Transaction, error) {
		return testutil.NewRemoteTransaction(500, gateway.StatePending), nil
	}

	fresh := NewCheckoutContext(order.ShopID, order.Customer, "")
	third, err := f.service.TransactionForOrder(context.Background(), fresh, order)
	require.NoError(t, err)
	assert.Equal(t, int64(500), third.ID)
	assert.Equal(t, 1, f.gateway.CallCount("Read"))
	assert.Equal(t, 1, f.gateway.CallCount("Update"))
	assert.Equal(t, 1, f.gateway.CallCount("Create"))
}

func TestTransactionForOrder_ReusesPendingCustomerTransaction(t *testing.T) {
	f := newReconcilerFixture()
	order := testutil.NewTestOrder()

	f.gateway.SearchFunc = func(ctx context.Context, spaceID int64, query gateway.EntityQuery) ([]*gateway.Transaction, error) {
		return []*gateway.Transaction{testutil.NewRemoteTransaction(600, gateway.StatePending)}, nil
	}
	f.gateway.ReadFunc = func(ctx context.Context, spaceID, transactionID int64) (*gateway.Transaction, error) {
		assert.Equal(t, int64(600), transactionID)
		return testutil.NewRemoteTransaction(600, gateway.StatePending), nil
	}
	f.gateway.UpdateFunc = func(ctx context.Context, spaceID int64, req *gateway.TransactionPending) (*gateway.Transaction, error) {
		assert.Equal(t, int64(600), req.ID)
		return testutil.NewRemoteTransaction(600, gateway.StatePending), nil
	}

	cctx := NewCheckoutContext(order.ShopID, order.Customer, "")
	tx, err := f.service.TransactionForOrder(context.Background(), cctx, order)

	require.NoError(t, err)
	assert.Equal(t, int64(600), tx.ID)
	assert.Equal(t, 0, f.gateway.CallCount("Create"))

	m, err := f.mappings.FindByScope(context.Background(), mapping.OrderScope(order.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(600), m.TransactionID)
}

func TestUpdateOrderTransaction_RecreatesWhenNotPending(t *testing.T) {
	f := newReconcilerFixture()
	order := testutil.NewTestOrder()

	seed, err := mapping.New(mapping.OrderScope(order.ID), order.ShopID, 700, 7)
	require.NoError(t, err)
	f.mappings.Seed(seed)

	f.gateway.ReadFunc = func(ctx context.Context, spaceID, transactionID int64) (*gateway.Transaction, error) {
		return testutil.NewRemoteTransaction(700, gateway.StateCompleted), nil
	}
	f.gateway.CreateFunc = func(ctx context.Context, spaceID int64, req *gateway.TransactionCreate) (*gateway.Transaction, error) {
		return testutil.NewRemoteTransaction(701, gateway.StatePending), nil
	}

	cctx := NewCheckoutContext(order.ShopID, order.Customer, "")
	tx, err := f.service.TransactionForOrder(context.Background(), cctx, order)

	require.NoError(t, err)
	assert.Equal(t, int64(701), tx.ID)
	assert.Equal(t, 1, f.gateway.CallCount("Create"))

	// The order now maps to the replacement transaction.
	m, err := f.mappings.FindByScope(context.Background(), mapping.OrderScope(order.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(701), m.TransactionID)
	assert.Len(t, f.mappings.All(), 1)
}

func TestTransactionForOrder_RecoversFromInconsistentMapping(t *testing.T) {
	f := newReconcilerFixture()
	order := testutil.NewTestOrder()

	// Two rows for the same scope is corrupt state; the store prunes them and
	// reconciliation starts over.
	first, err := mapping.New(mapping.OrderScope(order.ID), order.ShopID, 700, 7)
	require.NoError(t, err)
	second, err := mapping.New(mapping.OrderScope(order.ID), order.ShopID, 800, 7)
	require.NoError(t, err)
	f.mappings.Seed(first)
	f.mappings.Seed(second)

	f.gateway.CreateFunc = func(ctx context.Context, spaceID int64, req *gateway.TransactionCreate) (*gateway.Transaction, error) {
		return testutil.NewRemoteTransaction(900, gateway.StatePending), nil
	}

	cctx := NewCheckoutContext(order.ShopID, order.Customer, "")
	tx, err := f.service.TransactionForOrder(context.Background(), cctx, order)

	require.NoError(t, err)
	assert.Equal(t, int64(900), tx.ID)
	assert.Equal(t, 0, f.gateway.CallCount("Read"))

	all := f.mappings.All()
	require.Len(t, all, 1)
	assert.Equal(t, int64(900), all[0].TransactionID)
}

func TestTransactionForOrder_ReplacesMappingsSharingRemoteTransaction(t *testing.T) {
	f := newReconcilerFixture()
	order := testutil.NewTestOrder()

	// A session scope and an order scope both claiming transaction 700 can
	// happen when the session-to-order promotion raced. Recording the
	// reconciled mapping removes every row for that remote transaction and
	// leaves exactly one fresh row behind.
	stale, err := mapping.New(mapping.TemporaryScope("sess-old"), order.ShopID, 700, 7)
	require.NoError(t, err)
	current, err := mapping.New(mapping.OrderScope(order.ID), order.ShopID, 700, 7)
	require.NoError(t, err)
	f.mappings.Seed(stale)
	f.mappings.Seed(current)

	f.gateway.ReadFunc = func(ctx context.Context, spaceID, transactionID int64) (*gateway.Transaction, error) {
		assert.Equal(t, int64(700), transactionID)
		return testutil.NewRemoteTransaction(700, gateway.StatePending), nil
	}
	f.gateway.UpdateFunc = func(ctx context.Context, spaceID int64, req *gateway.TransactionPending) (*gateway.Transaction, error) {
		return testutil.NewRemoteTransaction(700, gateway.StatePending), nil
	}

	cctx := NewCheckoutContext(order.ShopID, order.Customer, "")
	tx, err := f.service.TransactionForOrder(context.Background(), cctx, order)

	require.NoError(t, err)
	assert.Equal(t, int64(700), tx.ID)

	all := f.mappings.All()
	require.Len(t, all, 1)
	assert.Equal(t, int64(700), all[0].TransactionID)
	assert.Equal(t, mapping.OrderScope(order.ID), all[0].Scope())

	_, err = f.mappings.FindByScope(context.Background(), mapping.TemporaryScope("sess-old"))
	assert.ErrorIs(t, err, domainErrors.ErrMappingNotFound)
}

func TestConfirmOrderTransaction_EchoesRemoteVersion(t *testing.T) {
	f := newReconcilerFixture()
	order := testutil.NewTestOrder()

	seed, err := mapping.New(mapping.OrderScope(order.ID), order.ShopID, 700, 7)
	require.NoError(t, err)
	f.mappings.Seed(seed)

	remote := testutil.NewRemoteTransaction(700, gateway.StatePending)
	remote.Version = 11

	f.gateway.ReadFunc = func(ctx context.Context, spaceID, transactionID int64) (*gateway.Transaction, error) {
		return remote, nil
	}
	f.gateway.ConfirmFunc = func(ctx context.Context, spaceID int64, req *gateway.TransactionPending) (*gateway.Transaction, error) {
		assert.Equal(t, int64(700), req.ID)
		assert.Equal(t, int64(11), req.Version)
		assert.Contains(t, req.SuccessURL, "spaceId=7&transactionId=700")
		confirmed := testutil.NewRemoteTransaction(700, gateway.StateConfirmed)
		return confirmed, nil
	}

	cctx := NewCheckoutContext(order.ShopID, order.Customer, "")
	tx, err := f.service.ConfirmOrderTransaction(context.Background(), cctx, order)

	require.NoError(t, err)
	assert.Equal(t, gateway.StateConfirmed, tx.State)
	assert.Equal(t, 1, f.gateway.CallCount("Confirm"))
	assert.Equal(t, 0, f.gateway.CallCount("Update"))
}

func TestTransactionForBasket_CachesSingleton(t *testing.T) {
	f := newReconcilerFixture()
	basket := testutil.NewTestBasket()

	f.gateway.CreateFunc = func(ctx context.Context, spaceID int64, req *gateway.TransactionCreate) (*gateway.Transaction, error) {
		return testutil.NewRemoteTransaction(500, gateway.StatePending), nil
	}

	cctx := NewCheckoutContext(basket.ShopID, basket.Customer, basket.SessionID)
	first, err := f.service.TransactionForBasket(context.Background(), cctx, basket)
	require.NoError(t, err)

	second, err := f.service.TransactionForBasket(context.Background(), cctx, basket)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, f.gateway.CallCount("Create"))

	// The basket maps under its session id.
	m, err := f.mappings.FindByScope(context.Background(), mapping.TemporaryScope(basket.SessionID))
	require.NoError(t, err)
	assert.Equal(t, int64(500), m.TransactionID)
}

func TestTransactionForOrder_UnknownShop(t *testing.T) {
	f := newReconcilerFixture()
	order := testutil.NewTestOrder()
	order.ShopID = "unknown-shop"

	cctx := NewCheckoutContext(order.ShopID, order.Customer, "")
	_, err := f.service.TransactionForOrder(context.Background(), cctx, order)

	assert.ErrorIs(t, err, domainErrors.ErrShopNotConfigured)
}

func TestPossiblePaymentMethodsForOrder_Memoizes(t *testing.T) {
	f := newReconcilerFixture()
	order := testutil.NewTestOrder()

	f.gateway.CreateFunc = func(ctx context.Context, spaceID int64, req *gateway.TransactionCreate) (*gateway.Transaction, error) {
		return testutil.NewRemoteTransaction(500, gateway.StatePending), nil
	}
	f.gateway.FetchPossiblePaymentMethodsFunc = func(ctx context.Context, spaceID, transactionID int64) ([]*gateway.PaymentMethodConfiguration, error) {
		return []*gateway.PaymentMethodConfiguration{{ID: 1, Name: "Card"}}, nil
	}

	cctx := NewCheckoutContext(order.ShopID, order.Customer, "")
	first, err := f.service.PossiblePaymentMethodsForOrder(context.Background(), cctx, order)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := f.service.PossiblePaymentMethodsForOrder(context.Background(), cctx, order)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.gateway.CallCount("FetchPossiblePaymentMethods"))
}

func TestUpdateLineItemsForOrder_RequiresMapping(t *testing.T) {
	f := newReconcilerFixture()
	order := testutil.NewTestOrder()

	_, err := f.service.UpdateLineItemsForOrder(context.Background(), order)
	assert.ErrorIs(t, err, domainErrors.ErrMappingNotFound)

	seed, err := mapping.New(mapping.OrderScope(order.ID), order.ShopID, 700, 7)
	require.NoError(t, err)
	f.mappings.Seed(seed)

	f.gateway.UpdateLineItemsFunc = func(ctx context.Context, spaceID, transactionID int64, items []gateway.LineItem) (*gateway.LineItemVersion, error) {
		assert.Equal(t, int64(700), transactionID)
		assert.Len(t, items, 2)
		return &gateway.LineItemVersion{ID: 1, TransactionID: transactionID, SpaceID: spaceID}, nil
	}

	version, err := f.service.UpdateLineItemsForOrder(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, int64(700), version.TransactionID)
}
