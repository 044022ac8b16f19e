package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cassiomorais/checkout-bridge/internal/config"
	"github.com/cassiomorais/checkout-bridge/internal/gateway"
	"github.com/cassiomorais/checkout-bridge/internal/service"
	"github.com/cassiomorais/checkout-bridge/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCheckoutService(gw *testutil.MockTransactionGateway) *service.TransactionService {
	return service.NewTransactionService(
		gw,
		testutil.NewMockMappingRepository(),
		testutil.NewMockTransactionInfoRepository(),
		testutil.NewMockOutboxRepository(),
		testutil.NewMockTxManager(),
		service.NewAssembler(
			service.NewDefaultLineItemCollector(),
			"https://shop.example.com/checkout/success",
			"https://shop.example.com/checkout/failure",
		),
		config.CheckoutConfig{
			Shops: map[string]config.ShopSpaceConfig{
				"shop-1": {SpaceID: 7, SpaceViewID: 3},
			},
		},
		nil,
		zerolog.Nop(),
	)
}

func newTestRouter(gw *testutil.MockTransactionGateway) *chi.Mux {
	h := NewCheckoutController(newTestCheckoutService(gw))
	r := chi.NewRouter()
	r.Post("/orders/{orderId}/transaction", h.OrderTransaction)
	r.Post("/baskets/transaction", h.BasketTransaction)
	return r
}

const orderBody = `{
	"order": {
		"number": "SO-2041",
		"shop_id": "shop-1",
		"currency": "CHF",
		"locale": "de-CH",
		"customer": {
			"id": 42,
			"email": "max@example.com",
			"billing": {"street": "Bundesgasse 1", "city": "Bern", "country_iso": "CH"},
			"shipping": {"street": "Bundesgasse 1", "city": "Bern", "country_iso": "CH"}
		},
		"items": [{"unique_id": "item-1", "name": "Coffee", "quantity": 1, "amount_including_tax": 19.9}]
	}
}`

func TestOrderTransactionEndpoint(t *testing.T) {
	gw := testutil.NewMockTransactionGateway()
	gw.CreateFunc = func(ctx context.Context, spaceID int64, req *gateway.TransactionCreate) (*gateway.Transaction, error) {
		assert.Equal(t, "SO-2041", req.MerchantReference)
		return testutil.NewRemoteTransaction(500, gateway.StatePending), nil
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders/1001/transaction", strings.NewReader(orderBody))
	newTestRouter(gw).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(500), resp.ID)
	assert.Equal(t, string(gateway.StatePending), resp.State)
}

func TestOrderTransactionEndpointRejectsBadOrderID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders/abc/transaction", strings.NewReader(orderBody))
	newTestRouter(testutil.NewMockTransactionGateway()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderTransactionEndpointRejectsUnknownShop(t *testing.T) {
	body := strings.Replace(orderBody, `"shop_id": "shop-1"`, `"shop_id": "shop-9"`, 1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders/1001/transaction", strings.NewReader(body))
	newTestRouter(testutil.NewMockTransactionGateway()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBasketTransactionEndpoint(t *testing.T) {
	gw := testutil.NewMockTransactionGateway()
	gw.CreateFunc = func(ctx context.Context, spaceID int64, req *gateway.TransactionCreate) (*gateway.Transaction, error) {
		assert.Empty(t, req.MerchantReference)
		return testutil.NewRemoteTransaction(501, gateway.StatePending), nil
	}

	body := `{
		"basket": {
			"session_id": "sess-abc123",
			"shop_id": "shop-1",
			"currency": "CHF",
			"customer": {"id": 42, "email": "max@example.com"},
			"items": [{"unique_id": "item-1", "name": "Coffee", "quantity": 1, "amount_including_tax": 19.9}]
		}
	}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/baskets/transaction", strings.NewReader(body))
	newTestRouter(gw).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(501), resp.ID)
}
