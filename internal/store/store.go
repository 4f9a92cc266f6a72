package store

import (
	"log"
	"sync"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/storage"
)

const (
	cartKey     = "cart"
	wishlistKey = "wishlist"
)

// Item is one cart entry: a product snapshot plus a quantity. The snapshot is
// denormalized so the cart renders without a network call. Quantity is always
// at least 1; setting it lower removes the entry.
type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Store holds the client-local cart and wishlist. It is valid independent of
// any session: anonymous visitors accumulate entries here and the checkout
// reconciler pushes them to the remote cart later. Every mutation persists
// synchronously so the state survives a restart without a network call.
type Store struct {
	mu       sync.Mutex
	items    []Item
	wishlist []string
	kv       storage.KV
}

func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// Load hydrates the store from persisted state. Entries missing a product
// identifier or carrying a quantity below 1 are filtered out instead of
// failing the load.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []Item
	if storage.GetJSON(s.kv, cartKey, &items) {
		valid := items[:0]
		for _, it := range items {
			if it.Product.ID != "" && it.Quantity >= 1 {
				valid = append(valid, it)
			}
		}
		if len(valid) != len(items) {
			log.Printf("[Store] Dropped %d invalid cart entries on load", len(items)-len(valid))
		}
		s.items = valid
	}

	var wishlist []string
	if storage.GetJSON(s.kv, wishlistKey, &wishlist) {
		valid := wishlist[:0]
		for _, id := range wishlist {
			if id != "" {
				valid = append(valid, id)
			}
		}
		s.wishlist = valid
	}
}

// AddToCart inserts the product with quantity 1, or increments the quantity
// of the existing entry. Never fails; returns the updated total item count.
func (s *Store) AddToCart(product catalog.Product) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Product.ID == product.ID {
			s.items[i].Quantity++
			s.persistCart()
			return s.totalItemCount()
		}
	}
	s.items = append(s.items, Item{Product: product, Quantity: 1})
	s.persistCart()
	return s.totalItemCount()
}

// RemoveFromCart deletes the entry for productID. Absent entries are a no-op.
func (s *Store) RemoveFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(productID)
	s.persistCart()
}

// SetQuantity overwrites the entry's quantity. A quantity below 1 removes the
// entry; no upper bound is enforced here, the remote system owns stock limits.
func (s *Store) SetQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		s.removeLocked(productID)
		s.persistCart()
		return
	}
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.persistCart()
}

// ClearCart empties all cart entries.
func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persistCart()
}

// Items returns a copy of the cart entries in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// TotalPrice sums price × quantity over all entries. A missing or zero price
// contributes 0; the entry still counts.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, it := range s.items {
		total += it.Product.Price * float64(it.Quantity)
	}
	return total
}

// TotalItemCount sums quantities over all entries.
func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.totalItemCount()
}

// ToggleWishlist adds productID if absent and removes it if present. Returns
// whether the product is in the wishlist afterwards. Session gating is the
// caller's job; the store has no session awareness.
func (s *Store) ToggleWishlist(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range s.wishlist {
		if id == productID {
			s.wishlist = append(s.wishlist[:i], s.wishlist[i+1:]...)
			s.persistWishlist()
			return false
		}
	}
	s.wishlist = append(s.wishlist, productID)
	s.persistWishlist()
	return true
}

// IsInWishlist reports wishlist membership.
func (s *Store) IsInWishlist(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

// Wishlist returns a copy of the wishlist product ids in insertion order.
func (s *Store) Wishlist() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(s.wishlist))
	copy(ids, s.wishlist)
	return ids
}

// ClearWishlist empties the wishlist.
func (s *Store) ClearWishlist() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wishlist = nil
	s.persistWishlist()
}

func (s *Store) removeLocked(productID string) {
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func (s *Store) totalItemCount() int {
	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// persistCart and persistWishlist are best-effort: mutations never fail, a
// write error only costs durability until the next successful write.
func (s *Store) persistCart() {
	if err := storage.SetJSON(s.kv, cartKey, s.items); err != nil {
		log.Printf("[Store] Failed to persist cart: %v", err)
	}
}

func (s *Store) persistWishlist() {
	if err := storage.SetJSON(s.kv, wishlistKey, s.wishlist); err != nil {
		log.Printf("[Store] Failed to persist wishlist: %v", err)
	}
}
