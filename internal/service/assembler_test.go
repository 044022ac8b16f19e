package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/cassiomorais/checkout-bridge/internal/domain/checkout"
	"github.com/cassiomorais/checkout-bridge/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssembler() *Assembler {
	return NewAssembler(
		NewDefaultLineItemCollector(),
		"https://shop.example.com/checkout/success",
		"https://shop.example.com/checkout/failure",
	)
}

func TestOrderFieldsTruncatesLongStreet(t *testing.T) {
	order := testutil.NewTestOrder()
	// 150 two-byte runes, 300 runes total: byte length exceeds the cap while
	// the rune count sits exactly on it.
	order.Customer.Billing.Street = strings.Repeat("ü", 150) + strings.Repeat("x", 150)

	fields, err := newTestAssembler().OrderFields(order, 7, 0)
	require.NoError(t, err)

	street := fields.BillingAddress.Street
	assert.Equal(t, 300, utf8.RuneCountInString(street))
	assert.True(t, utf8.ValidString(street))

	order.Customer.Billing.Street = strings.Repeat("ü", 301)
	fields, err = newTestAssembler().OrderFields(order, 7, 0)
	require.NoError(t, err)
	assert.Equal(t, 300, utf8.RuneCountInString(fields.BillingAddress.Street))
	assert.True(t, utf8.ValidString(fields.BillingAddress.Street))
}

func TestOrderFieldsOmitsPlaceholderMerchantReference(t *testing.T) {
	order := testutil.NewTestOrder()
	order.Number = checkout.PlaceholderOrderNumber

	fields, err := newTestAssembler().OrderFields(order, 7, 0)
	require.NoError(t, err)
	assert.Empty(t, fields.MerchantReference)

	order.Number = "SO-2041"
	fields, err = newTestAssembler().OrderFields(order, 7, 0)
	require.NoError(t, err)
	assert.Equal(t, "SO-2041", fields.MerchantReference)
}

func TestOrderFieldsRedirectURLsRequireTransactionID(t *testing.T) {
	order := testutil.NewTestOrder()
	a := newTestAssembler()

	fields, err := a.OrderFields(order, 7, 0)
	require.NoError(t, err)
	assert.Empty(t, fields.SuccessURL)
	assert.Empty(t, fields.FailedURL)

	// The storefront resolves the transaction on return, so both halves of
	// the remote compound key travel in the redirect URLs.
	fields, err = a.OrderFields(order, 7, 987)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/checkout/success?spaceId=7&transactionId=987", fields.SuccessURL)
	assert.Equal(t, "https://shop.example.com/checkout/failure?spaceId=7&transactionId=987", fields.FailedURL)
}

func TestOrderFieldsCustomerData(t *testing.T) {
	order := testutil.NewTestOrder()

	fields, err := newTestAssembler().OrderFields(order, 7, 0)
	require.NoError(t, err)

	assert.Equal(t, "42", fields.CustomerID)
	assert.Equal(t, "max.muster@example.com", fields.CustomerEmailAddress)
	assert.Equal(t, "de-CH", fields.Language)
	assert.Equal(t, "CHF", fields.Currency)
	assert.Equal(t, "Standard", fields.ShippingMethod)

	require.NotNil(t, fields.BillingAddress)
	assert.Equal(t, "max.muster@example.com", fields.BillingAddress.EmailAddress)
	assert.Equal(t, "1990-04-12", fields.BillingAddress.DateOfBirth)
	assert.Equal(t, "CH", fields.BillingAddress.Country)

	require.Len(t, fields.LineItems, 2)
	assert.Equal(t, "item-1", fields.LineItems[0].UniqueID)
	assert.Equal(t, "SHIPPING", string(fields.LineItems[1].Type))
}

func TestBasketFieldsCarryNoShippingMethod(t *testing.T) {
	basket := testutil.NewTestBasket()

	fields, err := newTestAssembler().BasketFields(basket, 7, 0)
	require.NoError(t, err)

	assert.Empty(t, fields.ShippingMethod)
	assert.Empty(t, fields.MerchantReference)
	require.Len(t, fields.LineItems, 1)
}

func TestFixLength(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		max   int
		want  string
		runes int
	}{
		{"short ascii", "abc", 5, "abc", 3},
		{"exact ascii", "abcde", 5, "abcde", 5},
		{"long ascii", "abcdef", 5, "abcde", 5},
		{"multibyte under cap", "üüü", 5, "üüü", 3},
		{"multibyte over cap", "üüüüüü", 5, "üüüüü", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fixLength(tt.in, tt.max)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.runes, utf8.RuneCountInString(got))
		})
	}
}
