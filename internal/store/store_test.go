package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/storage"
)

func newTestStore() *Store {
	return New(storage.NewMemoryKV())
}

func product(id string, price float64) catalog.Product {
	return catalog.Product{ID: id, Title: "Product " + id, Price: price}
}

// ============================================
// Cart Tests
// ============================================

func TestStore_AddToCart_NewEntry(t *testing.T) {
	s := newTestStore()

	total := s.AddToCart(product("p1", 10))

	assert.Equal(t, 1, total)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].Product.ID)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestStore_AddToCart_IncrementsExisting(t *testing.T) {
	s := newTestStore()

	s.AddToCart(product("p1", 10))
	total := s.AddToCart(product("p1", 10))

	assert.Equal(t, 2, total)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestStore_RemoveFromCart_AbsentIsNoOp(t *testing.T) {
	s := newTestStore()
	s.AddToCart(product("p1", 10))

	s.RemoveFromCart("missing")

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].Product.ID)
}

func TestStore_SetQuantity_FloorRemoves(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
	}{
		{"zero removes", 0},
		{"negative removes", -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			s.AddToCart(product("p1", 10))

			s.SetQuantity("p1", tt.quantity)

			assert.Empty(t, s.Items())
		})
	}
}

func TestStore_SetQuantity_Overwrites(t *testing.T) {
	s := newTestStore()
	s.AddToCart(product("p1", 10))

	s.SetQuantity("p1", 7)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestStore_ClearCart(t *testing.T) {
	s := newTestStore()
	s.AddToCart(product("p1", 10))
	s.AddToCart(product("p2", 20))

	s.ClearCart()

	assert.Empty(t, s.Items())
	assert.Equal(t, 0, s.TotalItemCount())
}

func TestStore_TotalPrice_MatchesRecomputation(t *testing.T) {
	s := newTestStore()

	s.AddToCart(product("p1", 10))
	s.AddToCart(product("p1", 10))
	s.AddToCart(product("p2", 99.5))
	s.SetQuantity("p2", 3)
	s.AddToCart(product("free", 0)) // zero price contributes 0, entry still counts

	var expected float64
	for _, it := range s.Items() {
		expected += it.Product.Price * float64(it.Quantity)
	}

	assert.Equal(t, expected, s.TotalPrice())
	assert.Equal(t, 10*2+99.5*3+0.0, s.TotalPrice())
	assert.Equal(t, 6, s.TotalItemCount())
}

// ============================================
// Wishlist Tests
// ============================================

func TestStore_ToggleWishlist_DoubleToggleRestoresMembership(t *testing.T) {
	s := newTestStore()

	assert.True(t, s.ToggleWishlist("p1"))
	assert.True(t, s.IsInWishlist("p1"))

	assert.False(t, s.ToggleWishlist("p1"))
	assert.False(t, s.IsInWishlist("p1"))
	assert.Empty(t, s.Wishlist())
}

func TestStore_Wishlist_SetSemantics(t *testing.T) {
	s := newTestStore()

	s.ToggleWishlist("p1")
	s.ToggleWishlist("p2")
	s.ToggleWishlist("p3")
	s.ToggleWishlist("p2")

	assert.Equal(t, []string{"p1", "p3"}, s.Wishlist())
}

// ============================================
// Persistence Tests
// ============================================

func TestStore_SurvivesRestart(t *testing.T) {
	kv := storage.NewMemoryKV()

	s := New(kv)
	s.AddToCart(product("p1", 10))
	s.AddToCart(product("p1", 10))
	s.ToggleWishlist("p9")

	// New store over the same storage simulates a process restart.
	restarted := New(kv)
	restarted.Load()

	items := restarted.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].Product.ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 10.0, items[0].Product.Price)
	assert.True(t, restarted.IsInWishlist("p9"))
}

func TestStore_Load_FiltersInvalidEntries(t *testing.T) {
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set("cart", []byte(`[
		{"product":{"_id":"p1","price":10},"quantity":2},
		{"product":{"price":5},"quantity":1},
		{"product":{"_id":"p3","price":7},"quantity":0}
	]`)))

	s := New(kv)
	s.Load()

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].Product.ID)
}

func TestStore_Load_CorruptStateDegradesToEmpty(t *testing.T) {
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set("cart", []byte("{broken")))
	require.NoError(t, kv.Set("wishlist", []byte("also broken")))

	s := New(kv)
	s.Load()

	assert.Empty(t, s.Items())
	assert.Empty(t, s.Wishlist())
}
