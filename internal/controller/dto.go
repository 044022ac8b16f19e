package controller

import (
	"time"

	"github.com/cassiomorais/checkout-bridge/internal/domain/checkout"
	"github.com/cassiomorais/checkout-bridge/internal/gateway"
)

// --- Request DTOs ---
// The storefront owns order and basket state, so every checkout operation
// carries a snapshot of it in the request body. Controllers convert these to
// domain types before calling the service layer.

// AddressDTO is a customer address as submitted by the storefront.
type AddressDTO struct {
	Salutation     string `json:"salutation,omitempty"`
	City           string `json:"city,omitempty"`
	CountryISO     string `json:"country_iso,omitempty"`
	FamilyName     string `json:"family_name,omitempty"`
	GivenName      string `json:"given_name,omitempty"`
	Organization   string `json:"organization,omitempty"`
	Phone          string `json:"phone,omitempty"`
	RegionCode     string `json:"region_code,omitempty"`
	PostCode       string `json:"post_code,omitempty"`
	Street         string `json:"street,omitempty"`
	SalesTaxNumber string `json:"sales_tax_number,omitempty"`
}

// CustomerDTO identifies the customer placing the checkout.
type CustomerDTO struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email" validate:"required,email"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Billing   AddressDTO `json:"billing"`
	Shipping  AddressDTO `json:"shipping"`
}

// LineItemDTO is one position of the order or basket.
type LineItemDTO struct {
	SKU                string  `json:"sku,omitempty"`
	UniqueID           string  `json:"unique_id" validate:"required"`
	Name               string  `json:"name" validate:"required"`
	Quantity           float64 `json:"quantity" validate:"required,gt=0"`
	AmountIncludingTax float64 `json:"amount_including_tax"`
	Type               string  `json:"type" validate:"omitempty,oneof=product shipping discount fee"`
}

// OrderDTO is the storefront order snapshot. The order id comes from the URL.
type OrderDTO struct {
	Number         string        `json:"number,omitempty"`
	TemporaryID    string        `json:"temporary_id,omitempty"`
	ShopID         string        `json:"shop_id" validate:"required"`
	Currency       string        `json:"currency" validate:"required,len=3"`
	Locale         string        `json:"locale,omitempty"`
	ShippingMethod string        `json:"shipping_method,omitempty"`
	Customer       CustomerDTO   `json:"customer" validate:"required"`
	Items          []LineItemDTO `json:"items" validate:"required,min=1,dive"`
}

// BasketDTO is the pre-order basket snapshot.
type BasketDTO struct {
	SessionID string        `json:"session_id" validate:"required"`
	ShopID    string        `json:"shop_id" validate:"required"`
	Currency  string        `json:"currency" validate:"required,len=3"`
	Locale    string        `json:"locale,omitempty"`
	Customer  CustomerDTO   `json:"customer" validate:"required"`
	Items     []LineItemDTO `json:"items" validate:"required,min=1,dive"`
}

// OrderTransactionRequest reconciles an order against its remote transaction.
type OrderTransactionRequest struct {
	Order   OrderDTO `json:"order" validate:"required"`
	Confirm bool     `json:"confirm,omitempty"`
}

// BasketTransactionRequest reconciles a basket against its remote transaction.
type BasketTransactionRequest struct {
	Basket BasketDTO `json:"basket" validate:"required"`
}

// --- Response DTOs ---

// TransactionResponse represents a remote transaction in API responses.
type TransactionResponse struct {
	ID                  int64   `json:"id"`
	SpaceID             int64   `json:"space_id"`
	State               string  `json:"state"`
	Version             int64   `json:"version"`
	Currency            string  `json:"currency"`
	AuthorizationAmount float64 `json:"authorization_amount"`
	MerchantReference   string  `json:"merchant_reference,omitempty"`
}

// PaymentMethodResponse represents a usable payment method.
type PaymentMethodResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// JavaScriptURLResponse carries the payment form script URL.
type JavaScriptURLResponse struct {
	URL string `json:"url"`
}

// LineItemVersionResponse represents the result of a line item replacement.
type LineItemVersionResponse struct {
	ID            int64 `json:"id"`
	TransactionID int64 `json:"transaction_id"`
	SpaceID       int64 `json:"space_id"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

func toAddress(dto AddressDTO) checkout.Address {
	return checkout.Address{
		Salutation:     dto.Salutation,
		City:           dto.City,
		CountryISO:     dto.CountryISO,
		FamilyName:     dto.FamilyName,
		GivenName:      dto.GivenName,
		Organization:   dto.Organization,
		Phone:          dto.Phone,
		RegionCode:     dto.RegionCode,
		PostCode:       dto.PostCode,
		Street:         dto.Street,
		SalesTaxNumber: dto.SalesTaxNumber,
	}
}

func toCustomer(dto CustomerDTO) checkout.Customer {
	return checkout.Customer{
		ID:        dto.ID,
		Email:     dto.Email,
		BirthDate: dto.BirthDate,
		Billing:   toAddress(dto.Billing),
		Shipping:  toAddress(dto.Shipping),
	}
}

func toItems(dtos []LineItemDTO) []checkout.Item {
	items := make([]checkout.Item, 0, len(dtos))
	for _, dto := range dtos {
		itemType := checkout.ItemType(dto.Type)
		if itemType == "" {
			itemType = checkout.ItemProduct
		}
		items = append(items, checkout.Item{
			SKU:                dto.SKU,
			UniqueID:           dto.UniqueID,
			Name:               dto.Name,
			Quantity:           dto.Quantity,
			AmountIncludingTax: dto.AmountIncludingTax,
			Type:               itemType,
		})
	}
	return items
}

func toOrder(orderID int64, dto OrderDTO) *checkout.Order {
	return &checkout.Order{
		ID:             orderID,
		Number:         dto.Number,
		TemporaryID:    dto.TemporaryID,
		ShopID:         dto.ShopID,
		Currency:       dto.Currency,
		Locale:         dto.Locale,
		ShippingMethod: dto.ShippingMethod,
		Customer:       toCustomer(dto.Customer),
		Items:          toItems(dto.Items),
	}
}

func toBasket(dto BasketDTO) *checkout.Basket {
	return &checkout.Basket{
		SessionID: dto.SessionID,
		ShopID:    dto.ShopID,
		Currency:  dto.Currency,
		Locale:    dto.Locale,
		Customer:  toCustomer(dto.Customer),
		Items:     toItems(dto.Items),
	}
}

// FromTransaction converts a remote transaction to an API response.
func FromTransaction(t *gateway.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                  t.ID,
		SpaceID:             t.LinkedSpaceID,
		State:               string(t.State),
		Version:             t.Version,
		Currency:            t.Currency,
		AuthorizationAmount: t.AuthorizationAmount,
		MerchantReference:   t.MerchantReference,
	}
}

// FromPaymentMethods converts payment method configurations to API responses.
func FromPaymentMethods(methods []*gateway.PaymentMethodConfiguration) []*PaymentMethodResponse {
	out := make([]*PaymentMethodResponse, 0, len(methods))
	for _, m := range methods {
		out = append(out, &PaymentMethodResponse{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			ImageURL:    m.ResolvedImageURL,
		})
	}
	return out
}
