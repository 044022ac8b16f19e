package service

import (
	"github.com/cassiomorais/checkout-bridge/internal/domain/checkout"
	"github.com/cassiomorais/checkout-bridge/internal/gateway"
)

// CheckoutContext carries the per-request memoization of reconciled
// transactions and fetched payment methods. It belongs to exactly one
// storefront request and must not be shared across goroutines; each HTTP
// handler builds a fresh one, so two concurrent requests never observe each
// other's cached state.
type CheckoutContext struct {
	ShopID    string
	Customer  checkout.Customer
	SessionID string

	transactionByOrder    map[int64]*gateway.Transaction
	basketTransaction     *gateway.Transaction
	paymentMethodsByOrder map[int64][]*gateway.PaymentMethodConfiguration
	basketPaymentMethods  []*gateway.PaymentMethodConfiguration
}

// NewCheckoutContext creates an empty per-request cache for the given shop
// and customer.
func NewCheckoutContext(shopID string, customer checkout.Customer, sessionID string) *CheckoutContext {
	return &CheckoutContext{
		ShopID:    shopID,
		Customer:  customer,
		SessionID: sessionID,
	}
}

func (c *CheckoutContext) cachedOrderTransaction(orderID int64) (*gateway.Transaction, bool) {
	t, ok := c.transactionByOrder[orderID]
	return t, ok
}

func (c *CheckoutContext) cacheOrderTransaction(orderID int64, t *gateway.Transaction) {
	if c.transactionByOrder == nil {
		c.transactionByOrder = make(map[int64]*gateway.Transaction)
	}
	c.transactionByOrder[orderID] = t
}

func (c *CheckoutContext) cachedBasketTransaction() (*gateway.Transaction, bool) {
	return c.basketTransaction, c.basketTransaction != nil
}

func (c *CheckoutContext) cacheBasketTransaction(t *gateway.Transaction) {
	c.basketTransaction = t
}

func (c *CheckoutContext) cachedOrderPaymentMethods(orderID int64) ([]*gateway.PaymentMethodConfiguration, bool) {
	methods, ok := c.paymentMethodsByOrder[orderID]
	return methods, ok
}

func (c *CheckoutContext) cacheOrderPaymentMethods(orderID int64, methods []*gateway.PaymentMethodConfiguration) {
	if c.paymentMethodsByOrder == nil {
		c.paymentMethodsByOrder = make(map[int64][]*gateway.PaymentMethodConfiguration)
	}
	c.paymentMethodsByOrder[orderID] = methods
}

func (c *CheckoutContext) cachedBasketPaymentMethods() ([]*gateway.PaymentMethodConfiguration, bool) {
	return c.basketPaymentMethods, c.basketPaymentMethods != nil
}

func (c *CheckoutContext) cacheBasketPaymentMethods(methods []*gateway.PaymentMethodConfiguration) {
	c.basketPaymentMethods = methods
}
