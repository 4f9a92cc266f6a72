package shopapi

import (
	"context"

	"github.com/example/storefront/internal/catalog"
)

// WishlistService operates the per-user remote wishlist (authenticated).
type WishlistService struct {
	client *Client
}

func NewWishlistService(client *Client) *WishlistService {
	return &WishlistService{client: client}
}

// List returns the wishlist products. A remote 404 means an empty wishlist.
func (s *WishlistService) List(ctx context.Context) ([]catalog.Product, error) {
	raw, err := s.client.get(ctx, "/wishlist", nil)
	if err != nil {
		if IsNotFound(err) {
			return []catalog.Product{}, nil
		}
		return nil, err
	}
	return unwrapList[catalog.Product](raw), nil
}

func (s *WishlistService) Add(ctx context.Context, productID string) error {
	_, err := s.client.post(ctx, "/wishlist", map[string]string{"productId": productID})
	return err
}

func (s *WishlistService) Remove(ctx context.Context, productID string) error {
	_, err := s.client.delete(ctx, "/wishlist/"+productID)
	return err
}
