package controller

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	domainErrors "github.com/cassiomorais/checkout-bridge/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domainErrors.ErrTransactionNotFound, 404, "not_found"},
		{domainErrors.ErrMappingNotFound, 404, "not_found"},
		{domainErrors.ErrStaleVersion, 409, "conflict"},
		{domainErrors.ErrShopNotConfigured, 422, "shop_not_configured"},
		{domainErrors.ErrRemoteUnavailable, 503, "gateway_unavailable"},
		{domainErrors.ErrInvalidInput, 400, "invalid_input"},
		{fmt.Errorf("wrapped: %w", domainErrors.ErrStaleVersion), 409, "conflict"},
		{domainErrors.NewValidationError("currency", "must be 3 letters"), 400, "validation_error"},
		{domainErrors.NewDomainError("remote_api_error", "rejected", domainErrors.ErrRemoteAPI), 422, "remote_api_error"},
		{fmt.Errorf("something unexpected"), 500, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, fmt.Errorf("pq: connection refused on 10.0.0.3"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Error)
	assert.NotContains(t, resp.Error, "10.0.0.3")
}

func TestDecodeAndValidate(t *testing.T) {
	body := `{
		"order": {
			"shop_id": "shop-1",
			"currency": "CHF",
			"customer": {"id": 42, "email": "max@example.com"},
			"items": [{"unique_id": "item-1", "name": "Coffee", "quantity": 1, "amount_including_tax": 19.9}]
		}
	}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))

	var dst OrderTransactionRequest
	require.NoError(t, decodeAndValidate(req, &dst))
	assert.Equal(t, "shop-1", dst.Order.ShopID)
	assert.Len(t, dst.Order.Items, 1)

	// Missing currency fails validation.
	bad := `{
		"order": {
			"shop_id": "shop-1",
			"customer": {"id": 42, "email": "max@example.com"},
			"items": [{"unique_id": "item-1", "name": "Coffee", "quantity": 1}]
		}
	}`
	req = httptest.NewRequest("POST", "/", strings.NewReader(bad))
	err := decodeAndValidate(req, &OrderTransactionRequest{})
	var validationErr *domainErrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
