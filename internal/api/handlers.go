package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/session"
	"github.com/example/storefront/internal/shopapi"
	"github.com/example/storefront/internal/store"
)

type Handlers struct {
	products   *shopapi.ProductService
	categories *shopapi.CategoryService
	brands     *shopapi.BrandService
	remoteCart *shopapi.CartService
	wishlist   *shopapi.WishlistService
	reviews    *shopapi.ReviewService
	orders     *shopapi.OrderService
	auth       *shopapi.AuthService
	local      *store.Store
	session    *session.Manager
	checkout   *checkout.Reconciler
	draft      *checkout.AddressDraft
}

type Services struct {
	Products   *shopapi.ProductService
	Categories *shopapi.CategoryService
	Brands     *shopapi.BrandService
	RemoteCart *shopapi.CartService
	Wishlist   *shopapi.WishlistService
	Reviews    *shopapi.ReviewService
	Orders     *shopapi.OrderService
	Auth       *shopapi.AuthService
	Local      *store.Store
	Session    *session.Manager
	Checkout   *checkout.Reconciler
	Draft      *checkout.AddressDraft
}

func NewHandlers(s Services) *Handlers {
	return &Handlers{
		products:   s.Products,
		categories: s.Categories,
		brands:     s.Brands,
		remoteCart: s.RemoteCart,
		wishlist:   s.Wishlist,
		reviews:    s.Reviews,
		orders:     s.Orders,
		auth:       s.Auth,
		local:      s.Local,
		session:    s.Session,
		checkout:   s.Checkout,
		draft:      s.Draft,
	}
}

// Local Cart Handlers
//
// The cart is client-local until checkout: mutations never hit the remote
// API, so they work before sign-in and respond instantly.

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"items":      h.local.Items(),
		"totalItems": h.local.TotalItemCount(),
		"totalPrice": h.local.TotalPrice(),
	})
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		http.Error(w, "productId is required", http.StatusBadRequest)
		return
	}

	// Snapshot the product so the cart renders offline.
	product, err := h.products.Get(r.Context(), req.ProductID)
	if err != nil {
		respondShopError(w, err)
		return
	}
	if product == nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	count := h.local.AddToCart(*product)
	respondJSON(w, http.StatusOK, map[string]any{"totalItems": count})
}

func (h *Handlers) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	productID := extractPathParam(r.URL.Path, "/api/cart/items/")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.local.SetQuantity(productID, req.Quantity)
	respondJSON(w, http.StatusOK, map[string]any{"totalItems": h.local.TotalItemCount()})
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID := extractPathParam(r.URL.Path, "/api/cart/items/")
	h.local.RemoveFromCart(productID)
	respondJSON(w, http.StatusOK, map[string]any{"totalItems": h.local.TotalItemCount()})
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.local.ClearCart()
	w.WriteHeader(http.StatusOK)
}

// Wishlist Handlers
//
// The wishlist toggles locally for instant feedback and mirrors the change
// to the remote wishlist. The route is session-gated; the store itself stays
// session-agnostic.

func (h *Handlers) GetWishlist(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"productIds": h.local.Wishlist()})
}

func (h *Handlers) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		http.Error(w, "productId is required", http.StatusBadRequest)
		return
	}

	inWishlist := h.local.ToggleWishlist(req.ProductID)

	var err error
	if inWishlist {
		err = h.wishlist.Add(r.Context(), req.ProductID)
	} else {
		err = h.wishlist.Remove(r.Context(), req.ProductID)
	}
	if err != nil {
		// Roll the local toggle back so local and remote stay in step.
		h.local.ToggleWishlist(req.ProductID)
		respondShopError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"inWishlist": inWishlist})
}

// GetRemoteWishlist returns the server-side wishlist with full product data.
// Gated behind RequireSession.
func (h *Handlers) GetRemoteWishlist(w http.ResponseWriter, r *http.Request) {
	products, err := h.wishlist.List(r.Context())
	if err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

// Order Handlers

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/orders/")
	order, err := h.orders.Get(r.Context(), id)
	if err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondShopError translates a failed remote exchange into a response: the
// remote status when there is one, 502 for transport failures, always with a
// displayable message.
func respondShopError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	var apiErr *shopapi.Error
	if errors.As(err, &apiErr) && apiErr.Status >= 400 {
		status = apiErr.Status
	}
	respondJSON(w, status, map[string]string{"error": shopapi.Human(err)})
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}
