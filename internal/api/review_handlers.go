package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/shopapi"
)

// Review Handlers

func (h *Handlers) ListProductReviews(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSuffix(extractPathParam(r.URL.Path, "/api/products/"), "/reviews")

	reviews, err := h.reviews.ListForProduct(r.Context(), productID)
	if err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

func (h *Handlers) AddReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string  `json:"productId"`
		Title     string  `json:"title"`
		Ratings   float64 `json:"ratings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		respondJSONError(w, "productId is required", http.StatusBadRequest)
		return
	}
	if req.Ratings < 1 || req.Ratings > 5 {
		respondJSONError(w, "ratings must be between 1 and 5", http.StatusBadRequest)
		return
	}

	review, err := h.reviews.Add(r.Context(), req.ProductID, shopapi.ReviewInput{
		Title:   req.Title,
		Ratings: req.Ratings,
	})
	if err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, review)
}

func (h *Handlers) UpdateReview(w http.ResponseWriter, r *http.Request) {
	reviewID := extractPathParam(r.URL.Path, "/api/reviews/")

	var req shopapi.ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	review, err := h.reviews.Update(r.Context(), reviewID, req)
	if err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, review)
}

func (h *Handlers) DeleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID := extractPathParam(r.URL.Path, "/api/reviews/")

	if err := h.reviews.Delete(r.Context(), reviewID); err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Review deleted"})
}
