package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/example/storefront/internal/events"
	"github.com/example/storefront/internal/shopapi"
	"github.com/example/storefront/internal/store"
)

// ErrAuthRequired aborts reconciliation when the session cannot be used.
// Credentials, not individual products, are the blocking condition.
var ErrAuthRequired = errors.New("checkout: authentication required")

// ErrReconcileInFlight rejects a reconciliation started while another one for
// the same checkout is still running.
var ErrReconcileInFlight = errors.New("checkout: reconciliation already in flight")

// CartAPI is the slice of the remote cart the reconciler drives.
type CartAPI interface {
	Get(ctx context.Context) (*shopapi.Cart, error)
	Add(ctx context.Context, productID string) (*shopapi.Cart, error)
	SetItemQuantity(ctx context.Context, lineID string, count int) (*shopapi.Cart, error)
}

// OrderAPI is the slice of the remote order surface checkout uses.
type OrderAPI interface {
	CreateCashOrder(ctx context.Context, cartID string, addr shopapi.ShippingAddress) (*shopapi.Order, error)
	CreateCheckoutSession(ctx context.Context, cartID string, addr shopapi.ShippingAddress) (string, error)
}

// Result is the outcome of one reconciliation run. An empty CartID with a nil
// error means there was nothing to order; order submission must refuse to
// proceed on it.
type Result struct {
	CartID      string
	ItemsSynced int
	ItemErrors  []string
}

// ErrorSummary aggregates the per-item failures into one displayable string.
// Empty when every item synced.
func (r Result) ErrorSummary() string {
	if len(r.ItemErrors) == 0 {
		return ""
	}
	return fmt.Sprintf("%d item(s) could not be synced: %s",
		len(r.ItemErrors), strings.Join(r.ItemErrors, "; "))
}

// Reconciler drains the local cart into the remote per-user cart at checkout.
// Local entries are pushed even when a remote cart already holds the product;
// the remote add increments an existing line, so the contract is additive.
type Reconciler struct {
	cart   CartAPI
	orders OrderAPI
	local  *store.Store
	events events.Publisher

	mu       sync.Mutex
	inflight bool
}

func NewReconciler(cart CartAPI, orders OrderAPI, local *store.Store, pub events.Publisher) *Reconciler {
	if pub == nil {
		pub = events.Noop{}
	}
	return &Reconciler{cart: cart, orders: orders, local: local, events: pub}
}

// Reconcile pushes every local cart entry to the remote cart and returns the
// remote cart id to order against. Per-item failures are recorded and the item
// skipped; only a 401 aborts the run. At most one reconciliation runs at a
// time per Reconciler.
func (r *Reconciler) Reconcile(ctx context.Context) (Result, error) {
	r.mu.Lock()
	if r.inflight {
		r.mu.Unlock()
		return Result{}, ErrReconcileInFlight
	}
	r.inflight = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.inflight = false
		r.mu.Unlock()
	}()

	result, err := r.reconcile(ctx)
	if err == nil {
		r.events.Publish(ctx, events.TypeCartReconciled, events.CartReconciled{
			CartID:      result.CartID,
			ItemsSynced: result.ItemsSynced,
			ItemsFailed: len(result.ItemErrors),
		})
	}
	return result, err
}

func (r *Reconciler) reconcile(ctx context.Context) (Result, error) {
	remote, err := r.cart.Get(ctx)
	if err != nil {
		if shopapi.IsUnauthorized(err) {
			return Result{}, ErrAuthRequired
		}
		return Result{}, err
	}

	items := r.local.Items()
	if remote == nil && len(items) == 0 {
		// Nothing local and nothing remote: a valid "nothing to order" state.
		return Result{}, nil
	}

	result := Result{}
	if remote != nil {
		result.CartID = remote.ID
	}

	for _, item := range items {
		productID := item.Product.ID

		cart, err := r.cart.Add(ctx, productID)
		if err != nil {
			if shopapi.IsUnauthorized(err) {
				return Result{}, ErrAuthRequired
			}
			log.Printf("[Checkout] Failed to sync %s: %v", productID, err)
			result.ItemErrors = append(result.ItemErrors,
				fmt.Sprintf("%s: %s", productID, shopapi.Human(err)))
			continue
		}
		result.CartID = cart.ID

		if item.Quantity > 1 {
			line := cart.FindLine(productID)
			if line == nil {
				result.ItemErrors = append(result.ItemErrors,
					fmt.Sprintf("%s: line item not found after add", productID))
				continue
			}
			// The add already contributed one unit on top of whatever the
			// remote line held.
			cart, err = r.cart.SetItemQuantity(ctx, line.LineID, line.Count+item.Quantity-1)
			if err != nil {
				if shopapi.IsUnauthorized(err) {
					return Result{}, ErrAuthRequired
				}
				log.Printf("[Checkout] Failed to set quantity for %s: %v", productID, err)
				result.ItemErrors = append(result.ItemErrors,
					fmt.Sprintf("%s: %s", productID, shopapi.Human(err)))
				continue
			}
			if cart != nil && cart.ID != "" {
				result.CartID = cart.ID
			}
		}
		result.ItemsSynced++
	}

	return result, nil
}

// PlaceCashOrder submits a cash-on-delivery order against a reconciled cart
// and clears the local cart on success. Refuses to submit without a cart id.
func (r *Reconciler) PlaceCashOrder(ctx context.Context, cartID string, addr shopapi.ShippingAddress) (*shopapi.Order, error) {
	if cartID == "" {
		return nil, fmt.Errorf("checkout: no cart to order")
	}
	if err := validateAddress(addr); err != nil {
		return nil, err
	}

	order, err := r.orders.CreateCashOrder(ctx, cartID, addr)
	if err != nil {
		if shopapi.IsUnauthorized(err) {
			return nil, ErrAuthRequired
		}
		return nil, err
	}

	r.local.ClearCart()
	r.events.Publish(ctx, events.TypeOrderPlaced, events.OrderPlaced{
		OrderID:       order.ID,
		CartID:        cartID,
		PaymentMethod: "cash",
		Total:         order.TotalOrderPrice,
	})
	return order, nil
}

// StartOnlineCheckout opens a hosted payment session for a reconciled cart and
// returns the redirect URL. The local cart survives until payment confirms.
func (r *Reconciler) StartOnlineCheckout(ctx context.Context, cartID string, addr shopapi.ShippingAddress) (string, error) {
	if cartID == "" {
		return "", fmt.Errorf("checkout: no cart to order")
	}
	if err := validateAddress(addr); err != nil {
		return "", err
	}

	url, err := r.orders.CreateCheckoutSession(ctx, cartID, addr)
	if err != nil {
		if shopapi.IsUnauthorized(err) {
			return "", ErrAuthRequired
		}
		return "", err
	}
	return url, nil
}

func validateAddress(addr shopapi.ShippingAddress) error {
	if strings.TrimSpace(addr.Details) == "" ||
		strings.TrimSpace(addr.Phone) == "" ||
		strings.TrimSpace(addr.City) == "" {
		return fmt.Errorf("checkout: shipping address requires details, phone and city")
	}
	return nil
}
