package api

import (
	"net/http"
	"strconv"
)

// Catalog Handlers
//
// Catalog reads proxy the remote API through the public client, so responses
// are served from the read cache within its freshness window and never carry
// a credential.

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil {
			limit = val
		}
	}

	products, err := h.products.List(r.Context(), limit, query.Get("category"))
	if err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/products/")

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondShopError(w, err)
		return
	}
	if product == nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/categories/")

	category, err := h.categories.Get(r.Context(), id)
	if err != nil {
		respondShopError(w, err)
		return
	}
	if category == nil {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

func (h *Handlers) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.brands.List(r.Context())
	if err != nil {
		respondShopError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"brands": brands})
}

func (h *Handlers) GetBrand(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/api/brands/")

	brand, err := h.brands.Get(r.Context(), id)
	if err != nil {
		respondShopError(w, err)
		return
	}
	if brand == nil {
		http.Error(w, "Brand not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, brand)
}
