package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/session"
	"github.com/example/storefront/internal/shopapi"
	"github.com/example/storefront/internal/storage"
	"github.com/example/storefront/internal/store"
)

type testEnv struct {
	router  http.Handler
	session *session.Manager
	local   *store.Store
}

// newTestEnv wires the full handler stack against a fake remote shop API.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	remote := http.NewServeMux()
	remote.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/products/"):]
		if strings.HasSuffix(id, "/reviews") {
			json.NewEncoder(w).Encode(map[string]any{
				"results": 1,
				"data": []map[string]any{{
					"_id": "r1", "title": "Great", "ratings": 5,
					"user": map[string]any{"_id": "u1", "name": "Mona"},
				}},
			})
			return
		}
		if id == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"_id": id, "title": "Product " + id, "price": 10},
		})
	})
	remote.HandleFunc("/reviews", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"_id": "r2", "title": "Solid", "ratings": 4, "product": "p1"},
		})
	})
	remote.HandleFunc("/wishlist", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "success"})
	})
	remote.HandleFunc("/wishlist/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "success"})
	})
	remote.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodDelete:
			json.NewEncoder(w).Encode(map[string]any{"message": "success"})
		case http.MethodPost:
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"_id": "remote-cart-1",
					"products": []map[string]any{
						{"_id": "line-1", "count": 1, "price": 10, "product": "p1"},
					},
				},
			})
		}
	})
	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	kv := storage.NewMemoryKV()
	sess := session.NewManager(kv)
	local := store.New(kv)
	local.Load()

	cfg := shopapi.Config{BaseURL: srv.URL, RetryBaseDelay: time.Millisecond}
	public := shopapi.NewPublicClient(cfg)
	auth := shopapi.NewAuthClient(cfg, sess)

	cartSvc := shopapi.NewCartService(auth)
	orderSvc := shopapi.NewOrderService(auth)
	rec := checkout.NewReconciler(cartSvc, orderSvc, local, nil)

	handlers := NewHandlers(Services{
		Products:   shopapi.NewProductService(public),
		Categories: shopapi.NewCategoryService(public),
		Brands:     shopapi.NewBrandService(public),
		RemoteCart: cartSvc,
		Wishlist:   shopapi.NewWishlistService(auth),
		Reviews:    shopapi.NewReviewService(auth),
		Orders:     orderSvc,
		Auth:       shopapi.NewAuthService(public, auth, sess),
		Local:      local,
		Session:    sess,
		Checkout:   rec,
		Draft:      checkout.NewAddressDraft(kv),
	})

	return &testEnv{
		router:  NewRouter(handlers, sess),
		session: sess,
		local:   local,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) signIn(t *testing.T) {
	t.Helper()
	require.NoError(t, e.session.Establish("tok", "refresh", session.User{
		Name: "Mona", Email: "mona@example.com",
	}))
}

// ============================================
// Local Cart Endpoint Tests
// ============================================

func TestCartEndpoints_AnonymousFlow(t *testing.T) {
	env := newTestEnv(t)

	// Add twice: quantity accumulates on one entry.
	rec := env.do(t, http.MethodPost, "/api/cart/items", map[string]string{"productId": "p1"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/cart/items", map[string]string{"productId": "p1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cart struct {
		Items      []store.Item `json:"items"`
		TotalItems int          `json:"totalItems"`
		TotalPrice float64      `json:"totalPrice"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 2, cart.TotalItems)
	assert.Equal(t, 20.0, cart.TotalPrice)

	// Quantity update and removal.
	rec = env.do(t, http.MethodPut, "/api/cart/items/p1", map[string]int{"quantity": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, env.local.TotalItemCount())

	rec = env.do(t, http.MethodDelete, "/api/cart/items/p1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, env.local.TotalItemCount())
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/cart/items", map[string]string{"productId": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, env.local.TotalItemCount())
}

func TestAddToCart_MissingProductID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/cart/items", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ============================================
// Wishlist Endpoint Tests
// ============================================

func TestWishlistToggle_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/wishlist", map[string]string{"productId": "p1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.local.IsInWishlist("p1"), "anonymous toggle must not touch the store")
}

func TestWishlistToggle_SignedInMirrorsRemote(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)

	rec := env.do(t, http.MethodPost, "/api/wishlist", map[string]string{"productId": "p1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.local.IsInWishlist("p1"))

	rec = env.do(t, http.MethodPost, "/api/wishlist", map[string]string{"productId": "p1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, env.local.IsInWishlist("p1"))
}

func TestRemoteWishlist_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/wishlist/remote", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================
// Review Endpoint Tests
// ============================================

func TestProductReviews_ListIsOpen(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/products/p1/reviews", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Great"`)
}

func TestAddReview_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/reviews",
		map[string]any{"productId": "p1", "title": "Solid", "ratings": 4})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddReview_SignedIn(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)

	rec := env.do(t, http.MethodPost, "/api/reviews",
		map[string]any{"productId": "p1", "title": "Solid", "ratings": 4})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"r2"`)
}

func TestAddReview_RejectsOutOfRangeRating(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)

	rec := env.do(t, http.MethodPost, "/api/reviews",
		map[string]any{"productId": "p1", "title": "Nope", "ratings": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ============================================
// Checkout Endpoint Tests
// ============================================

func TestCheckout_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/checkout/reconcile", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckout_ReconcileSyncsLocalCart(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)

	rec := env.do(t, http.MethodPost, "/api/cart/items", map[string]string{"productId": "p1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/checkout/reconcile", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		CartID      string   `json:"cartId"`
		ItemsSynced int      `json:"itemsSynced"`
		Errors      []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "remote-cart-1", result.CartID)
	assert.Equal(t, 1, result.ItemsSynced)
	assert.Empty(t, result.Errors)
}

func TestRemoteCart_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/checkout/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRemoteCart_GetAndClear(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)

	// No remote cart yet reads as null, not an error.
	rec := env.do(t, http.MethodGet, "/api/checkout/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cart":null`)

	rec = env.do(t, http.MethodDelete, "/api/checkout/cart", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAddressDraft_Endpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/checkout/address", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"saved":false`)

	addr := map[string]string{"details": "1 Main St", "phone": "01000000000", "city": "Cairo"}
	rec = env.do(t, http.MethodPut, "/api/checkout/address", addr)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/checkout/address", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"saved":true`)
	assert.Contains(t, rec.Body.String(), "Cairo")
}

// ============================================
// Session Endpoint Tests
// ============================================

func TestGetSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)

	env.signIn(t)

	rec = env.do(t, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)
	assert.Contains(t, rec.Body.String(), "mona@example.com")
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/api/products", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
