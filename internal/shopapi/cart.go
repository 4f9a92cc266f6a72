package shopapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/storefront/internal/catalog"
)

// CartLine is one line item of the remote cart. The remote populates the
// product field as a full object on reads but as a bare id string right
// after a mutation; both decode to a product ref here.
type CartLine struct {
	LineID  string
	Count   int
	Price   float64
	Product catalog.Product
}

func (l *CartLine) UnmarshalJSON(data []byte) error {
	var aux struct {
		LineID  string          `json:"_id"`
		Count   int             `json:"count"`
		Price   float64         `json:"price"`
		Product json.RawMessage `json:"product"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.LineID = aux.LineID
	l.Count = aux.Count
	l.Price = aux.Price

	if len(aux.Product) > 0 {
		if aux.Product[0] == '"' {
			var id string
			if err := json.Unmarshal(aux.Product, &id); err != nil {
				return err
			}
			l.Product = catalog.Product{ID: id}
		} else if err := json.Unmarshal(aux.Product, &l.Product); err != nil {
			return err
		}
	}
	return nil
}

// Cart is the server-authoritative cart. TotalPrice is display-only; the
// remote recomputes it at order submission.
type Cart struct {
	ID         string     `json:"_id"`
	Owner      string     `json:"cartOwner,omitempty"`
	Products   []CartLine `json:"products"`
	TotalPrice float64    `json:"totalCartPrice"`
}

// FindLine returns the line holding productID, or nil.
func (c *Cart) FindLine(productID string) *CartLine {
	for i := range c.Products {
		if c.Products[i].Product.ID == productID {
			return &c.Products[i]
		}
	}
	return nil
}

// extractCart normalizes the remote's cart envelopes: the cart object may sit
// under "data" or at the top level, and its id may be "_id" or "cartId".
// Returns nil when no cart id can be resolved.
func extractCart(raw []byte) *Cart {
	var outer struct {
		CartID string          `json:"cartId"`
		Data   json.RawMessage `json:"data"`
	}
	json.Unmarshal(raw, &outer) // best effort

	body := raw
	if len(outer.Data) > 0 && outer.Data[0] == '{' {
		body = outer.Data
	}

	var cart Cart
	if err := json.Unmarshal(body, &cart); err != nil {
		return nil
	}
	if cart.ID == "" {
		cart.ID = outer.CartID
	}
	if cart.ID == "" {
		return nil
	}
	if cart.Products == nil {
		cart.Products = []CartLine{}
	}
	return &cart
}

// CartService operates the per-user remote cart. All calls are authenticated.
type CartService struct {
	client *Client
}

func NewCartService(client *Client) *CartService {
	return &CartService{client: client}
}

// Get fetches the current user's cart. A remote 404 means no cart exists yet
// and yields (nil, nil); a 401 propagates, credentials are the caller's
// blocking condition.
func (s *CartService) Get(ctx context.Context) (*Cart, error) {
	raw, err := s.client.get(ctx, "/cart", nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return extractCart(raw), nil
}

// Add puts one unit of the product into the remote cart, creating the cart
// if none exists.
func (s *CartService) Add(ctx context.Context, productID string) (*Cart, error) {
	raw, err := s.client.post(ctx, "/cart", map[string]string{"productId": productID})
	if err != nil {
		return nil, err
	}
	cart := extractCart(raw)
	if cart == nil {
		return nil, fmt.Errorf("invalid cart response")
	}
	return cart, nil
}

// SetItemQuantity overwrites the count of an existing line item. The line id
// is only known after Add returns.
func (s *CartService) SetItemQuantity(ctx context.Context, lineID string, count int) (*Cart, error) {
	raw, err := s.client.put(ctx, "/cart/"+lineID, map[string]int{"count": count})
	if err != nil {
		return nil, err
	}
	cart := extractCart(raw)
	if cart == nil {
		return nil, fmt.Errorf("invalid cart response")
	}
	return cart, nil
}

// RemoveItem deletes a line item.
func (s *CartService) RemoveItem(ctx context.Context, lineID string) (*Cart, error) {
	raw, err := s.client.delete(ctx, "/cart/"+lineID)
	if err != nil {
		return nil, err
	}
	return extractCart(raw), nil
}

// Clear empties the remote cart.
func (s *CartService) Clear(ctx context.Context) error {
	_, err := s.client.delete(ctx, "/cart")
	return err
}

// ApplyCoupon applies a discount coupon to the cart.
func (s *CartService) ApplyCoupon(ctx context.Context, coupon string) (*Cart, error) {
	raw, err := s.client.put(ctx, "/cart/applyCoupon", map[string]string{"coupon": coupon})
	if err != nil {
		return nil, err
	}
	cart := extractCart(raw)
	if cart == nil {
		return nil, fmt.Errorf("invalid cart response")
	}
	return cart, nil
}
