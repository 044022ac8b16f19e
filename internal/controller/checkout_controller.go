package controller

import (
	"net/http"
	"strconv"

	domainErrors "github.com/cassiomorais/checkout-bridge/internal/domain/errors"
	"github.com/cassiomorais/checkout-bridge/internal/service"
	"github.com/go-chi/chi/v5"
)

// CheckoutController exposes transaction reconciliation to the storefront.
// Every handler builds a fresh CheckoutContext, so memoization never leaks
// across requests.
type CheckoutController struct {
	service *service.TransactionService
}

func NewCheckoutController(svc *service.TransactionService) *CheckoutController {
	return &CheckoutController{service: svc}
}

func orderIDFromURL(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "orderId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domainErrors.NewValidationError("orderId", "must be a positive integer")
	}
	return id, nil
}

// OrderTransaction gets or creates the remote transaction for an order.
func (c *CheckoutController) OrderTransaction(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDFromURL(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req OrderTransactionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	order := toOrder(orderID, req.Order)
	cctx := service.NewCheckoutContext(order.ShopID, order.Customer, order.TemporaryID)

	reconcile := c.service.TransactionForOrder
	if req.Confirm {
		reconcile = c.service.ConfirmOrderTransaction
	}

	t, err := reconcile(r.Context(), cctx, order)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromTransaction(t))
}

// BasketTransaction gets or creates the remote transaction for a basket.
func (c *CheckoutController) BasketTransaction(w http.ResponseWriter, r *http.Request) {
	var req BasketTransactionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	basket := toBasket(req.Basket)
	cctx := service.NewCheckoutContext(basket.ShopID, basket.Customer, basket.SessionID)

	t, err := c.service.TransactionForBasket(r.Context(), cctx, basket)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromTransaction(t))
}

// OrderPaymentMethods lists payment methods usable for the order.
func (c *CheckoutController) OrderPaymentMethods(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDFromURL(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var dto OrderDTO
	if err := decodeAndValidate(r, &dto); err != nil {
		writeError(w, err)
		return
	}

	order := toOrder(orderID, dto)
	cctx := service.NewCheckoutContext(order.ShopID, order.Customer, order.TemporaryID)

	methods, err := c.service.PossiblePaymentMethodsForOrder(r.Context(), cctx, order)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromPaymentMethods(methods))
}

// BasketPaymentMethods lists payment methods usable for the basket.
func (c *CheckoutController) BasketPaymentMethods(w http.ResponseWriter, r *http.Request) {
	var dto BasketDTO
	if err := decodeAndValidate(r, &dto); err != nil {
		writeError(w, err)
		return
	}

	basket := toBasket(dto)
	cctx := service.NewCheckoutContext(basket.ShopID, basket.Customer, basket.SessionID)

	methods, err := c.service.PossiblePaymentMethodsForBasket(r.Context(), cctx, basket)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromPaymentMethods(methods))
}

// BasketJavaScriptURL returns the payment form script URL for the basket.
func (c *CheckoutController) BasketJavaScriptURL(w http.ResponseWriter, r *http.Request) {
	var dto BasketDTO
	if err := decodeAndValidate(r, &dto); err != nil {
		writeError(w, err)
		return
	}

	basket := toBasket(dto)
	cctx := service.NewCheckoutContext(basket.ShopID, basket.Customer, basket.SessionID)

	url, err := c.service.JavaScriptURLForBasket(r.Context(), cctx, basket)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, JavaScriptURLResponse{URL: url})
}

// OrderLineItems replaces the line items of the order's existing transaction.
func (c *CheckoutController) OrderLineItems(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDFromURL(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var dto OrderDTO
	if err := decodeAndValidate(r, &dto); err != nil {
		writeError(w, err)
		return
	}

	version, err := c.service.UpdateLineItemsForOrder(r.Context(), toOrder(orderID, dto))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LineItemVersionResponse{
		ID:            version.ID,
		TransactionID: version.TransactionID,
		SpaceID:       version.SpaceID,
	})
}
