package shopapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ShippingAddress is the delivery address attached to an order.
type ShippingAddress struct {
	Details string `json:"details"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
}

// Order is a placed order as reported by the remote API.
type Order struct {
	ID              string          `json:"_id"`
	CartItems       []OrderItem     `json:"cartItems"`
	TotalOrderPrice float64         `json:"totalOrderPrice"`
	PaymentMethod   string          `json:"paymentMethodType"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	IsPaid          bool            `json:"isPaid"`
	IsDelivered     bool            `json:"isDelivered"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// OrderItem references a product within an order. The product field arrives
// as an id string or a populated object depending on the endpoint.
type OrderItem struct {
	ProductID string
	Quantity  int
	Price     float64
}

func (o *OrderItem) UnmarshalJSON(data []byte) error {
	var aux struct {
		Product  json.RawMessage `json:"product"`
		Quantity int             `json:"quantity"`
		Count    int             `json:"count"`
		Price    float64         `json:"price"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	o.Quantity = aux.Quantity
	if o.Quantity == 0 {
		o.Quantity = aux.Count
	}
	o.Price = aux.Price

	if len(aux.Product) > 0 {
		if aux.Product[0] == '"' {
			json.Unmarshal(aux.Product, &o.ProductID)
		} else {
			var p struct {
				MongoID string `json:"_id"`
				AltID   string `json:"id"`
			}
			if err := json.Unmarshal(aux.Product, &p); err == nil {
				o.ProductID = p.MongoID
				if o.ProductID == "" {
					o.ProductID = p.AltID
				}
			}
		}
	}
	return nil
}

// OrderService submits and lists orders (authenticated).
type OrderService struct {
	client *Client
}

func NewOrderService(client *Client) *OrderService {
	return &OrderService{client: client}
}

// List returns the user's orders. A 404 means no orders yet.
func (s *OrderService) List(ctx context.Context) ([]Order, error) {
	raw, err := s.client.get(ctx, "/orders", nil)
	if err != nil {
		if IsNotFound(err) {
			return []Order{}, nil
		}
		return nil, err
	}
	return unwrapList[Order](raw), nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*Order, error) {
	raw, err := s.client.get(ctx, "/orders/"+id, nil)
	if err != nil {
		return nil, err
	}
	order := unwrapObject[Order](raw)
	if order == nil {
		return nil, fmt.Errorf("invalid order response")
	}
	return order, nil
}

// CreateCashOrder turns the remote cart into a cash-on-delivery order.
// Mutating calls are never retried; a duplicate submission would double the
// order.
func (s *OrderService) CreateCashOrder(ctx context.Context, cartID string, addr ShippingAddress) (*Order, error) {
	raw, err := s.client.post(ctx, "/orders/"+cartID,
		map[string]ShippingAddress{"shippingAddress": addr})
	if err != nil {
		return nil, err
	}
	order := unwrapObject[Order](raw)
	if order == nil {
		return nil, fmt.Errorf("invalid order response")
	}
	return order, nil
}

// CreateCheckoutSession starts hosted online payment and returns the URL the
// shopper must be redirected to.
func (s *OrderService) CreateCheckoutSession(ctx context.Context, cartID string, addr ShippingAddress) (string, error) {
	raw, err := s.client.post(ctx, "/orders/checkout-session/"+cartID,
		map[string]ShippingAddress{"shippingAddress": addr})
	if err != nil {
		return "", err
	}

	var resp struct {
		Session struct {
			URL string `json:"url"`
		} `json:"session"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Session.URL == "" {
		return "", fmt.Errorf("payment session response contained no redirect url")
	}
	return resp.Session.URL, nil
}
