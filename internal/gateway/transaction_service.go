package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// TransactionService exposes the remote transaction API: read, create,
// update, confirm, search, payment method discovery and line item
// replacement. Space and transaction ids form the remote compound key.
type TransactionService struct {
	client *Client
}

// NewTransactionService creates a transaction service on top of the client.
func NewTransactionService(client *Client) *TransactionService {
	return &TransactionService{client: client}
}

func spaceQuery(spaceID int64) url.Values {
	q := url.Values{}
	q.Set("spaceId", strconv.FormatInt(spaceID, 10))
	return q
}

func spaceTransactionQuery(spaceID, transactionID int64) url.Values {
	q := spaceQuery(spaceID)
	q.Set("id", strconv.FormatInt(transactionID, 10))
	return q
}

// Read returns the transaction with the given id.
func (s *TransactionService) Read(ctx context.Context, spaceID, transactionID int64) (*Transaction, error) {
	var t Transaction
	err := s.client.call(ctx, http.MethodGet, "/api/transaction/read", spaceTransactionQuery(spaceID, transactionID), nil, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create creates a new transaction in the given space.
func (s *TransactionService) Create(ctx context.Context, spaceID int64, req *TransactionCreate) (*Transaction, error) {
	var t Transaction
	err := s.client.call(ctx, http.MethodPost, "/api/transaction/create", spaceQuery(spaceID), req, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Update updates a pending transaction. The request must carry the version
// last read from the remote system.
func (s *TransactionService) Update(ctx context.Context, spaceID int64, req *TransactionPending) (*Transaction, error) {
	var t Transaction
	err := s.client.call(ctx, http.MethodPost, "/api/transaction/update", spaceQuery(spaceID), req, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Confirm updates and confirms a pending transaction in one call.
func (s *TransactionService) Confirm(ctx context.Context, spaceID int64, req *TransactionPending) (*Transaction, error) {
	var t Transaction
	err := s.client.call(ctx, http.MethodPost, "/api/transaction/confirm", spaceQuery(spaceID), req, &t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Search returns transactions matching the query. Zero matches is not an
// error; the result is simply empty.
func (s *TransactionService) Search(ctx context.Context, spaceID int64, query EntityQuery) ([]*Transaction, error) {
	var result []*Transaction
	err := s.client.call(ctx, http.MethodPost, "/api/transaction/search", spaceQuery(spaceID), query, &result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FetchPossiblePaymentMethods returns the payment methods usable for the
// transaction.
func (s *TransactionService) FetchPossiblePaymentMethods(ctx context.Context, spaceID, transactionID int64) ([]*PaymentMethodConfiguration, error) {
	var result []*PaymentMethodConfiguration
	err := s.client.call(ctx, http.MethodGet, "/api/transaction/fetch-possible-payment-methods", spaceTransactionQuery(spaceID, transactionID), nil, &result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateLineItems replaces the transaction's line items.
func (s *TransactionService) UpdateLineItems(ctx context.Context, spaceID, transactionID int64, items []LineItem) (*LineItemVersion, error) {
	req := struct {
		TransactionID int64      `json:"transactionId"`
		NewLineItems  []LineItem `json:"newLineItems"`
	}{TransactionID: transactionID, NewLineItems: items}

	var v LineItemVersion
	err := s.client.call(ctx, http.MethodPost, "/api/transaction/update-line-items", spaceQuery(spaceID), req, &v)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// BuildJavaScriptURL returns the URL of the payment form script for the
// transaction.
func (s *TransactionService) BuildJavaScriptURL(ctx context.Context, spaceID, transactionID int64) (string, error) {
	var u string
	err := s.client.call(ctx, http.MethodGet, "/api/transaction/build-javascript-url", spaceTransactionQuery(spaceID, transactionID), nil, &u)
	if err != nil {
		return "", err
	}
	return u, nil
}
