package shopapi

import (
	"context"
	"fmt"
	"time"
)

// Review is a product review as served by the remote API.
type Review struct {
	ID        string     `json:"_id"`
	Title     string     `json:"title"`
	Ratings   float64    `json:"ratings"`
	User      ReviewUser `json:"user"`
	ProductID string     `json:"product"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ReviewUser is the reviewer as embedded in a review payload.
type ReviewUser struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// ReviewInput is the form for creating or updating a review.
type ReviewInput struct {
	Title   string  `json:"title"`
	Ratings float64 `json:"ratings"`
}

// ReviewService reads and writes product reviews (authenticated; the remote
// attributes each review to the signed-in shopper).
type ReviewService struct {
	client *Client
}

func NewReviewService(client *Client) *ReviewService {
	return &ReviewService{client: client}
}

// ListForProduct returns the reviews of one product. A remote 404 means no
// reviews yet.
func (s *ReviewService) ListForProduct(ctx context.Context, productID string) ([]Review, error) {
	raw, err := s.client.get(ctx, "/products/"+productID+"/reviews", nil)
	if err != nil {
		if IsNotFound(err) {
			return []Review{}, nil
		}
		return nil, err
	}
	return unwrapList[Review](raw), nil
}

func (s *ReviewService) Add(ctx context.Context, productID string, input ReviewInput) (*Review, error) {
	raw, err := s.client.post(ctx, "/reviews", map[string]any{
		"title":   input.Title,
		"ratings": input.Ratings,
		"product": productID,
	})
	if err != nil {
		return nil, err
	}
	review := unwrapObject[Review](raw)
	if review == nil {
		return nil, fmt.Errorf("invalid review response")
	}
	return review, nil
}

func (s *ReviewService) Update(ctx context.Context, reviewID string, input ReviewInput) (*Review, error) {
	raw, err := s.client.put(ctx, "/reviews/"+reviewID, input)
	if err != nil {
		return nil, err
	}
	review := unwrapObject[Review](raw)
	if review == nil {
		return nil, fmt.Errorf("invalid review response")
	}
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, reviewID string) error {
	_, err := s.client.delete(ctx, "/reviews/"+reviewID)
	return err
}
