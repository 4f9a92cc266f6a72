package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/shopapi"
)

// Checkout Handlers
//
// Checkout is the one place the local cart meets the remote cart: reconcile
// first, then order against the returned cart id.

func (h *Handlers) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.checkout.Reconcile(r.Context())
	if err != nil {
		respondCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"cartId":      result.CartID,
		"itemsSynced": result.ItemsSynced,
		"errors":      result.ItemErrors,
		"summary":     result.ErrorSummary(),
	})
}

type placeOrderRequest struct {
	CartID  string                  `json:"cartId"`
	Address shopapi.ShippingAddress `json:"shippingAddress"`
}

func (h *Handlers) PlaceCashOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.checkout.PlaceCashOrder(r.Context(), req.CartID, req.Address)
	if err != nil {
		respondCheckoutError(w, err)
		return
	}

	h.draft.Clear()
	respondJSON(w, http.StatusCreated, order)
}

func (h *Handlers) StartOnlineCheckout(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	url, err := h.checkout.StartOnlineCheckout(r.Context(), req.CartID, req.Address)
	if err != nil {
		respondCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"redirectUrl": url})
}

func (h *Handlers) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Coupon string `json:"coupon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Coupon == "" {
		respondJSONError(w, "coupon is required", http.StatusBadRequest)
		return
	}

	cart, err := h.remoteCart.ApplyCoupon(r.Context(), req.Coupon)
	if err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"totalPrice": cart.TotalPrice})
}

// Remote cart management, for the signed-in cart view after reconciliation.
// Line ids here are the remote's, not product ids.

func (h *Handlers) GetRemoteCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.remoteCart.Get(r.Context())
	if err != nil {
		respondShopError(w, err)
		return
	}
	if cart == nil {
		respondJSON(w, http.StatusOK, map[string]any{"cart": nil})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (h *Handlers) ClearRemoteCart(w http.ResponseWriter, r *http.Request) {
	if err := h.remoteCart.Clear(r.Context()); err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}

func (h *Handlers) SetRemoteCartQuantity(w http.ResponseWriter, r *http.Request) {
	lineID := extractPathParam(r.URL.Path, "/api/checkout/cart/items/")

	var req struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Count < 1 {
		respondJSONError(w, "count must be at least 1", http.StatusBadRequest)
		return
	}

	cart, err := h.remoteCart.SetItemQuantity(r.Context(), lineID, req.Count)
	if err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

func (h *Handlers) RemoveRemoteCartItem(w http.ResponseWriter, r *http.Request) {
	lineID := extractPathParam(r.URL.Path, "/api/checkout/cart/items/")

	cart, err := h.remoteCart.RemoveItem(r.Context(), lineID)
	if err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"cart": cart})
}

// Address draft

func (h *Handlers) GetAddressDraft(w http.ResponseWriter, r *http.Request) {
	addr, ok := h.draft.Load()
	if !ok {
		respondJSON(w, http.StatusOK, map[string]any{"saved": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"saved": true, "address": addr})
}

func (h *Handlers) SaveAddressDraft(w http.ResponseWriter, r *http.Request) {
	var addr shopapi.ShippingAddress
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.draft.Save(addr); err != nil {
		respondJSONError(w, "Failed to save address", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Address saved"})
}

func respondCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrAuthRequired):
		respondJSONError(w, "Please sign in to check out", http.StatusUnauthorized)
	case errors.Is(err, checkout.ErrReconcileInFlight):
		respondJSONError(w, "Checkout already in progress", http.StatusConflict)
	default:
		respondShopError(w, err)
	}
}
