package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cassiomorais/checkout-bridge/internal/domain/checkout"
	"github.com/cassiomorais/checkout-bridge/internal/gateway"
)

// Field length limits enforced by the remote gateway. Values are truncated,
// not rejected, so a long street never blocks a checkout.
const (
	maxSalutationLength     = 20
	maxCityLength           = 100
	maxFamilyNameLength     = 100
	maxGivenNameLength      = 100
	maxOrganizationLength   = 100
	maxPostCodeLength       = 40
	maxStreetLength         = 300
	maxSalesTaxNumberLength = 100
	maxShippingMethodLength = 200
)

// Assembler builds remote transaction payloads from storefront orders and
// baskets.
type Assembler struct {
	collector  LineItemCollector
	successURL string
	failedURL  string
}

func NewAssembler(collector LineItemCollector, successURL, failedURL string) *Assembler {
	return &Assembler{
		collector:  collector,
		successURL: successURL,
		failedURL:  failedURL,
	}
}

// OrderFields assembles the shared transaction fields for an order.
// transactionID is zero when the remote transaction does not exist yet; the
// redirect URLs are only attached once the id is known because they embed it.
func (a *Assembler) OrderFields(order *checkout.Order, spaceID, transactionID int64) (gateway.TransactionFields, error) {
	items, err := a.collector.Collect(order.Items, order.Currency)
	if err != nil {
		return gateway.TransactionFields{}, fmt.Errorf("collect line items: %w", err)
	}

	fields := gateway.TransactionFields{
		Currency:             order.Currency,
		BillingAddress:       convertAddress(order.Customer.Billing, order.Customer),
		ShippingAddress:      convertAddress(order.Customer.Shipping, order.Customer),
		CustomerEmailAddress: order.Customer.Email,
		CustomerID:           strconv.FormatInt(order.Customer.ID, 10),
		Language:             order.Locale,
		ShippingMethod:       fixLength(order.ShippingMethod, maxShippingMethodLength),
		LineItems:            items,
	}

	// A placeholder order number is storefront bookkeeping, not a merchant
	// reference the payment provider should ever see.
	if order.HasRealNumber() {
		fields.MerchantReference = order.Number
	}

	if transactionID > 0 {
		fields.SuccessURL = redirectURL(a.successURL, spaceID, transactionID)
		fields.FailedURL = redirectURL(a.failedURL, spaceID, transactionID)
	}

	return fields, nil
}

// BasketFields assembles the shared transaction fields for a pre-order basket.
func (a *Assembler) BasketFields(basket *checkout.Basket, spaceID, transactionID int64) (gateway.TransactionFields, error) {
	items, err := a.collector.Collect(basket.Items, basket.Currency)
	if err != nil {
		return gateway.TransactionFields{}, fmt.Errorf("collect line items: %w", err)
	}

	fields := gateway.TransactionFields{
		Currency:             basket.Currency,
		BillingAddress:       convertAddress(basket.Customer.Billing, basket.Customer),
		ShippingAddress:      convertAddress(basket.Customer.Shipping, basket.Customer),
		CustomerEmailAddress: basket.Customer.Email,
		CustomerID:           strconv.FormatInt(basket.Customer.ID, 10),
		Language:             basket.Locale,
		LineItems:            items,
	}

	if transactionID > 0 {
		fields.SuccessURL = redirectURL(a.successURL, spaceID, transactionID)
		fields.FailedURL = redirectURL(a.failedURL, spaceID, transactionID)
	}

	return fields, nil
}

func convertAddress(addr checkout.Address, customer checkout.Customer) *gateway.Address {
	out := &gateway.Address{
		Salutation:       fixLength(addr.Salutation, maxSalutationLength),
		City:             fixLength(addr.City, maxCityLength),
		Country:          addr.CountryISO,
		FamilyName:       fixLength(addr.FamilyName, maxFamilyNameLength),
		GivenName:        fixLength(addr.GivenName, maxGivenNameLength),
		OrganizationName: fixLength(addr.Organization, maxOrganizationLength),
		PhoneNumber:      addr.Phone,
		PostalState:      addr.RegionCode,
		PostCode:         fixLength(addr.PostCode, maxPostCodeLength),
		Street:           fixLength(addr.Street, maxStreetLength),
		SalesTaxNumber:   fixLength(addr.SalesTaxNumber, maxSalesTaxNumberLength),
		EmailAddress:     customer.Email,
	}
	if customer.BirthDate != nil {
		out.DateOfBirth = customer.BirthDate.Format(time.DateOnly)
	}
	return out
}

// redirectURL parameterizes the configured redirect target with the remote
// compound key, so the storefront can resolve the transaction on return.
func redirectURL(base string, spaceID, transactionID int64) string {
	return base +
		"?spaceId=" + strconv.FormatInt(spaceID, 10) +
		"&transactionId=" + strconv.FormatInt(transactionID, 10)
}

// fixLength truncates s to at most max characters, counting runes so a
// multi-byte character is never cut in half.
func fixLength(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
