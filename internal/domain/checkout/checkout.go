package checkout

import "time"

// PlaceholderOrderNumber is the sentinel the storefront assigns to orders
// that have not been given a real order number yet. It must never be sent
// to the remote gateway as a merchant reference.
const PlaceholderOrderNumber = "0"

// Address is a customer address as the storefront stores it. Field length
// limits of the remote gateway are applied during payload assembly, not here.
type Address struct {
	Salutation     string
	City           string
	CountryISO     string
	FamilyName     string
	GivenName      string
	Organization   string
	Phone          string
	RegionCode     string
	PostCode       string
	Street         string
	SalesTaxNumber string
}

// Customer is the storefront customer placing the checkout.
type Customer struct {
	ID        int64
	Email     string
	BirthDate *time.Time
	Billing   Address
	Shipping  Address
}

// ItemType classifies a checkout line.
type ItemType string

const (
	ItemProduct  ItemType = "product"
	ItemShipping ItemType = "shipping"
	ItemDiscount ItemType = "discount"
	ItemFee      ItemType = "fee"
)

// Item is one position of an order or basket.
type Item struct {
	SKU                string
	UniqueID           string
	Name               string
	Quantity           float64
	AmountIncludingTax float64
	Type               ItemType
}

// Order is a placed (or in-flight) storefront order. TemporaryID is set while
// the order only exists as a checkout session and is cleared once the order
// is persisted under its final id.
type Order struct {
	ID             int64
	Number         string
	TemporaryID    string
	ShopID         string
	Currency       string
	Locale         string
	ShippingMethod string
	Customer       Customer
	Items          []Item
}

// HasRealNumber reports whether the order carries a usable merchant reference.
func (o *Order) HasRealNumber() bool {
	return o.Number != "" && o.Number != PlaceholderOrderNumber
}

// Basket is the pre-order shopping cart, scoped by the storefront session.
type Basket struct {
	SessionID string
	ShopID    string
	Currency  string
	Locale    string
	Customer  Customer
	Items     []Item
}
