package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	domainErrors "github.com/cassiomorais/checkout-bridge/internal/domain/errors"
	"github.com/cassiomorais/checkout-bridge/pkg/retry"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRetryConfig() retry.Config {
	return retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL: baseURL,
		UserID:  "user-1",
		APIKey:  "secret",
		Retry:   testRetryConfig(),
	}, zerolog.Nop())
}

func TestClientSendsCredentialHeaders(t *testing.T) {
	var gotUser, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.Header.Get("X-API-User")
		gotKey = r.Header.Get("X-API-Key")
		json.NewEncoder(w).Encode(Transaction{ID: 5, State: StatePending})
	}))
	defer srv.Close()

	svc := NewTransactionService(newTestClient(srv.URL))
	tx, err := svc.Read(context.Background(), 7, 5)

	require.NoError(t, err)
	assert.Equal(t, int64(5), tx.ID)
	assert.Equal(t, "user-1", gotUser)
	assert.Equal(t, "secret", gotKey)
}

func TestClientMapsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewTransactionService(newTestClient(srv.URL))
	_, err := svc.Read(context.Background(), 7, 5)

	assert.ErrorIs(t, err, domainErrors.ErrTransactionNotFound)
}

func TestClientMapsConflictToStaleVersion(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	svc := NewTransactionService(newTestClient(srv.URL))
	_, err := svc.Update(context.Background(), 7, &TransactionPending{ID: 5, Version: 2})

	assert.ErrorIs(t, err, domainErrors.ErrStaleVersion)
	// A stale version never resolves by retrying the same request.
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(Transaction{ID: 5, State: StatePending})
	}))
	defer srv.Close()

	svc := NewTransactionService(newTestClient(srv.URL))
	tx, err := svc.Read(context.Background(), 7, 5)

	require.NoError(t, err)
	assert.Equal(t, int64(5), tx.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientMapsBusinessRejection(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"line item amounts do not sum up"}`))
	}))
	defer srv.Close()

	svc := NewTransactionService(newTestClient(srv.URL))
	_, err := svc.Create(context.Background(), 7, &TransactionCreate{})

	assert.ErrorIs(t, err, domainErrors.ErrRemoteAPI)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchDecodesEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	svc := NewTransactionService(newTestClient(srv.URL))
	matches, err := svc.Search(context.Background(), 7, PendingCustomerTransactionQuery(42, "a@b.ch"))

	require.NoError(t, err)
	assert.Empty(t, matches)
}
