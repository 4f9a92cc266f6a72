package shopapi

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/example/storefront/internal/catalog"
)

// Catalog freshness windows. Products churn faster than taxonomies.
const (
	productsCacheTTL   = 5 * time.Minute
	categoriesCacheTTL = 10 * time.Minute
	brandsCacheTTL     = 10 * time.Minute
)

// ProductService reads the public product catalog. It must run on a public
// client: attaching an expired guest credential makes the remote fail reads
// that would succeed anonymously.
type ProductService struct {
	client *Client
}

func NewProductService(client *Client) *ProductService {
	return &ProductService{client: client}
}

// List fetches products, optionally limited and/or filtered by category id.
func (s *ProductService) List(ctx context.Context, limit int, categoryID string) ([]catalog.Product, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if categoryID != "" {
		query.Set("category", categoryID)
	}

	raw, err := s.client.getCached(ctx, "/products", query, productsCacheTTL)
	if err != nil {
		return nil, err
	}
	return unwrapList[catalog.Product](raw), nil
}

// Get fetches a single product by id. Returns (nil, nil) when the payload
// does not contain a resolvable product.
func (s *ProductService) Get(ctx context.Context, id string) (*catalog.Product, error) {
	raw, err := s.client.getCached(ctx, "/products/"+id, nil, productsCacheTTL)
	if err != nil {
		return nil, err
	}
	p := unwrapObject[catalog.Product](raw)
	if p == nil || p.ID == "" {
		return nil, nil
	}
	return p, nil
}

// CategoryService reads the public category taxonomy.
type CategoryService struct {
	client *Client
}

func NewCategoryService(client *Client) *CategoryService {
	return &CategoryService{client: client}
}

func (s *CategoryService) List(ctx context.Context) ([]catalog.Category, error) {
	raw, err := s.client.getCached(ctx, "/categories", nil, categoriesCacheTTL)
	if err != nil {
		return nil, err
	}
	return unwrapList[catalog.Category](raw), nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*catalog.Category, error) {
	raw, err := s.client.getCached(ctx, "/categories/"+id, nil, categoriesCacheTTL)
	if err != nil {
		return nil, err
	}
	c := unwrapObject[catalog.Category](raw)
	if c == nil || c.ID == "" {
		return nil, nil
	}
	return c, nil
}

// BrandService reads the public brand list.
type BrandService struct {
	client *Client
}

func NewBrandService(client *Client) *BrandService {
	return &BrandService{client: client}
}

func (s *BrandService) List(ctx context.Context) ([]catalog.Brand, error) {
	raw, err := s.client.getCached(ctx, "/brands", nil, brandsCacheTTL)
	if err != nil {
		return nil, err
	}
	return unwrapList[catalog.Brand](raw), nil
}

func (s *BrandService) Get(ctx context.Context, id string) (*catalog.Brand, error) {
	raw, err := s.client.getCached(ctx, "/brands/"+id, nil, brandsCacheTTL)
	if err != nil {
		return nil, err
	}
	b := unwrapObject[catalog.Brand](raw)
	if b == nil || b.ID == "" {
		return nil, nil
	}
	return b, nil
}
