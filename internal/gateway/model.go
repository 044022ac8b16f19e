package gateway

import "time"

// TransactionState is the remote transaction lifecycle state.
type TransactionState string

const (
	StateCreate     TransactionState = "CREATE"
	StatePending    TransactionState = "PENDING"
	StateConfirmed  TransactionState = "CONFIRMED"
	StateProcessing TransactionState = "PROCESSING"
	StateFailed     TransactionState = "FAILED"
	StateAuthorized TransactionState = "AUTHORIZED"
	StateVoided     TransactionState = "VOIDED"
	StateCompleted  TransactionState = "COMPLETED"
	StateFulfill    TransactionState = "FULFILL"
	StateDecline    TransactionState = "DECLINE"
)

// Mutable reports whether the transaction still accepts updates. Only pending
// transactions do; everything else is terminal from the storefront's view.
func (s TransactionState) Mutable() bool {
	return s == StatePending
}

// CustomersPresence values accepted by the remote gateway.
const (
	PresenceVirtualPresent = "VIRTUAL_PRESENT"
)

// Transaction is the remote system's checkout attempt. Version is the
// optimistic-concurrency token that must be echoed back on updates.
type Transaction struct {
	ID                   int64            `json:"id"`
	LinkedSpaceID        int64            `json:"linkedSpaceId"`
	State                TransactionState `json:"state"`
	Version              int64            `json:"version"`
	Currency             string           `json:"currency"`
	CustomerID           string           `json:"customerId"`
	CustomerEmailAddress string           `json:"customerEmailAddress"`
	MerchantReference    string           `json:"merchantReference"`
	AuthorizationAmount  float64          `json:"authorizationAmount"`
	Language             string           `json:"language"`
	CreatedOn            time.Time        `json:"createdOn"`
}

// Address is the remote gateway's address payload.
type Address struct {
	Salutation       string `json:"salutation,omitempty"`
	City             string `json:"city,omitempty"`
	Country          string `json:"country,omitempty"`
	FamilyName       string `json:"familyName,omitempty"`
	GivenName        string `json:"givenName,omitempty"`
	OrganizationName string `json:"organizationName,omitempty"`
	PhoneNumber      string `json:"phoneNumber,omitempty"`
	PostalState      string `json:"postalState,omitempty"`
	PostCode         string `json:"postCode,omitempty"`
	Street           string `json:"street,omitempty"`
	SalesTaxNumber   string `json:"salesTaxNumber,omitempty"`
	EmailAddress     string `json:"emailAddress,omitempty"`
	DateOfBirth      string `json:"dateOfBirth,omitempty"`
}

// LineItemType classifies a remote line item.
type LineItemType string

const (
	LineItemProduct  LineItemType = "PRODUCT"
	LineItemShipping LineItemType = "SHIPPING"
	LineItemDiscount LineItemType = "DISCOUNT"
	LineItemFee      LineItemType = "FEE"
)

// LineItem is one position of the remote transaction.
type LineItem struct {
	SKU                string       `json:"sku,omitempty"`
	UniqueID           string       `json:"uniqueId"`
	Name               string       `json:"name"`
	Quantity           float64      `json:"quantity"`
	AmountIncludingTax float64      `json:"amountIncludingTax"`
	Type               LineItemType `json:"type"`
}

// TransactionFields are the fields shared by create, update and confirm
// requests. Variant-specific fields live on TransactionCreate and
// TransactionPending.
type TransactionFields struct {
	Currency                           string     `json:"currency,omitempty"`
	MerchantReference                  string     `json:"merchantReference,omitempty"`
	BillingAddress                     *Address   `json:"billingAddress,omitempty"`
	ShippingAddress                    *Address   `json:"shippingAddress,omitempty"`
	CustomerEmailAddress               string     `json:"customerEmailAddress,omitempty"`
	CustomerID                         string     `json:"customerId,omitempty"`
	Language                           string     `json:"language,omitempty"`
	ShippingMethod                     string     `json:"shippingMethod,omitempty"`
	LineItems                          []LineItem `json:"lineItems"`
	AllowedPaymentMethodConfigurations []int64    `json:"allowedPaymentMethodConfigurations"`
	SuccessURL                         string     `json:"successUrl,omitempty"`
	FailedURL                          string     `json:"failedUrl,omitempty"`
}

// TransactionCreate is the request for a brand-new transaction.
type TransactionCreate struct {
	TransactionFields
	SpaceViewID             int64  `json:"spaceViewId,omitempty"`
	AutoConfirmationEnabled bool   `json:"autoConfirmationEnabled"`
	CustomersPresence       string `json:"customersPresence,omitempty"`
}

// TransactionPending is the request for updating or confirming an existing
// pending transaction. Version must carry the value last read from the remote
// system; a stale version is rejected remotely, never checked locally.
type TransactionPending struct {
	TransactionFields
	ID      int64 `json:"id"`
	Version int64 `json:"version"`
}

// PaymentMethodConfiguration is a payment method usable for a transaction.
type PaymentMethodConfiguration struct {
	ID               int64  `json:"id"`
	SpaceID          int64  `json:"spaceId"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	ResolvedImageURL string `json:"resolvedImageUrl"`
}

// LineItemVersion is the result of replacing a transaction's line items.
type LineItemVersion struct {
	ID            int64      `json:"id"`
	TransactionID int64      `json:"transaction"`
	SpaceID       int64      `json:"linkedSpaceId"`
	LineItems     []LineItem `json:"lineItems"`
}
