package service

import (
	"github.com/cassiomorais/checkout-bridge/internal/domain/checkout"
	"github.com/cassiomorais/checkout-bridge/internal/gateway"
)

// LineItemCollector turns storefront items into remote line items. It is a
// port so storefront-specific pricing rules (rounding, bundled discounts)
// can be swapped without touching reconciliation.
type LineItemCollector interface {
	Collect(items []checkout.Item, currency string) ([]gateway.LineItem, error)
}

// DefaultLineItemCollector maps items one to one, carrying amounts as the
// storefront computed them.
type DefaultLineItemCollector struct{}

func NewDefaultLineItemCollector() *DefaultLineItemCollector {
	return &DefaultLineItemCollector{}
}

func (c *DefaultLineItemCollector) Collect(items []checkout.Item, currency string) ([]gateway.LineItem, error) {
	out := make([]gateway.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, gateway.LineItem{
			SKU:                item.SKU,
			UniqueID:           item.UniqueID,
			Name:               item.Name,
			Quantity:           item.Quantity,
			AmountIncludingTax: item.AmountIncludingTax,
			Type:               lineItemType(item.Type),
		})
	}
	return out, nil
}

func lineItemType(t checkout.ItemType) gateway.LineItemType {
	switch t {
	case checkout.ItemShipping:
		return gateway.LineItemShipping
	case checkout.ItemDiscount:
		return gateway.LineItemDiscount
	case checkout.ItemFee:
		return gateway.LineItemFee
	default:
		return gateway.LineItemProduct
	}
}

var _ LineItemCollector = (*DefaultLineItemCollector)(nil)
