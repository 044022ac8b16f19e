package testutil

import (
	"time"

	"github.com/cassiomorais/checkout-bridge/internal/domain/checkout"
	"github.com/cassiomorais/checkout-bridge/internal/gateway"
)

// NewTestCustomer returns a registered customer with both addresses filled.
func NewTestCustomer() checkout.Customer {
	birthDate := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	addr := checkout.Address{
		Salutation: "Mr",
		City:       "Bern",
		CountryISO: "CH",
		FamilyName: "Muster",
		GivenName:  "Max",
		Phone:      "+41790000000",
		PostCode:   "3000",
		Street:     "Bundesgasse 1",
	}
	return checkout.Customer{
		ID:        42,
		Email:     "max.muster@example.com",
		BirthDate: &birthDate,
		Billing:   addr,
		Shipping:  addr,
	}
}

// NewTestOrder returns a placed order with one product and one shipping line.
func NewTestOrder() *checkout.Order {
	return &checkout.Order{
		ID:             1001,
		Number:         "SO-2041",
		ShopID:         "shop-1",
		Currency:       "CHF",
		Locale:         "de-CH",
		ShippingMethod: "Standard",
		Customer:       NewTestCustomer(),
		Items: []checkout.Item{
			{
				SKU:                "SKU-1",
				UniqueID:           "item-1",
				Name:               "Coffee Beans 1kg",
				Quantity:           2,
				AmountIncludingTax: 39.80,
				Type:               checkout.ItemProduct,
			},
			{
				UniqueID:           "shipping-1",
				Name:               "Standard Shipping",
				Quantity:           1,
				AmountIncludingTax: 7.50,
				Type:               checkout.ItemShipping,
			},
		},
	}
}

// NewTestBasket returns a session basket with a single product line.
func NewTestBasket() *checkout.Basket {
	return &checkout.Basket{
		SessionID: "sess-abc123",
		ShopID:    "shop-1",
		Currency:  "CHF",
		Locale:    "de-CH",
		Customer:  NewTestCustomer(),
		Items: []checkout.Item{
			{
				SKU:                "SKU-1",
				UniqueID:           "item-1",
				Name:               "Coffee Beans 1kg",
				Quantity:           1,
				AmountIncludingTax: 19.90,
				Type:               checkout.ItemProduct,
			},
		},
	}
}

// NewRemoteTransaction returns a remote transaction in the given state.
func NewRemoteTransaction(id int64, state gateway.TransactionState) *gateway.Transaction {
	return &gateway.Transaction{
		ID:                   id,
		LinkedSpaceID:        7,
		State:                state,
		Version:              3,
		Currency:             "CHF",
		CustomerID:           "42",
		CustomerEmailAddress: "max.muster@example.com",
		AuthorizationAmount:  47.30,
		Language:             "de-CH",
		CreatedOn:            time.Now().Add(-time.Hour),
	}
}
