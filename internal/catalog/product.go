package catalog

import "encoding/json"

// Product is a catalog product as served by the shop API. The remote system
// carries the identifier under "_id" on most payloads and under "id" on a few
// legacy ones; UnmarshalJSON resolves that here so the rest of the codebase
// only ever sees the canonical ID. An unresolvable identifier stays "".
type Product struct {
	ID                 string    `json:"_id"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	Price              float64   `json:"price"`
	PriceAfterDiscount float64   `json:"priceAfterDiscount,omitempty"`
	ImageCover         string    `json:"imageCover,omitempty"`
	Images             []string  `json:"images,omitempty"`
	Quantity           int       `json:"quantity,omitempty"`
	RatingsAverage     float64   `json:"ratingsAverage,omitempty"`
	Category           *Category `json:"category,omitempty"`
	Brand              *Brand    `json:"brand,omitempty"`
}

func (p *Product) UnmarshalJSON(data []byte) error {
	type product Product
	if err := json.Unmarshal(data, (*product)(p)); err != nil {
		return err
	}
	p.ID = fallbackID(p.ID, data)
	return nil
}

// Category is a product category.
type Category struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Slug  string `json:"slug,omitempty"`
	Image string `json:"image,omitempty"`
}

func (c *Category) UnmarshalJSON(data []byte) error {
	type category Category
	if err := json.Unmarshal(data, (*category)(c)); err != nil {
		return err
	}
	c.ID = fallbackID(c.ID, data)
	return nil
}

// Brand is a product brand.
type Brand struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Slug  string `json:"slug,omitempty"`
	Image string `json:"image,omitempty"`
}

func (b *Brand) UnmarshalJSON(data []byte) error {
	type brand Brand
	if err := json.Unmarshal(data, (*brand)(b)); err != nil {
		return err
	}
	b.ID = fallbackID(b.ID, data)
	return nil
}

// fallbackID returns the already-decoded "_id" value if present, otherwise
// the legacy "id" field. Never substitutes anything else; "" means invalid.
func fallbackID(id string, data []byte) string {
	if id != "" {
		return id
	}
	var alt struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &alt); err != nil {
		return ""
	}
	return alt.ID
}
