package domain

import (
	"fmt"
	"strings"
)

type ItemID int64

type Category string

const (
	CategoryIndian    Category = "Indian"
	CategoryChocolate Category = "Chocolate"
	CategoryBakery    Category = "Bakery"
	CategoryCandy     Category = "Candy"
	CategoryDessert   Category = "Dessert"
	CategoryGeneral   Category = "General"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryIndian,
	CategoryChocolate,
	CategoryBakery,
	CategoryCandy,
	CategoryDessert,
	CategoryGeneral,
}

// ParseCategory matches s against the known categories, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, s)
}

func (c Category) Valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

// Item is the server-owned inventory record. Clients never patch its fields
// locally; they refetch after every mutation.
type Item struct {
	ID       ItemID   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Price    float64  `json:"price"`
	Quantity int      `json:"quantity"`
}

// ItemFields is the writable part of an Item, used for create and update.
type ItemFields struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Price    float64  `json:"price"`
	Quantity int      `json:"quantity"`
}

func (f ItemFields) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !f.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, f.Category)
	}
	if f.Price <= 0 {
		return fmt.Errorf("%w: price must be greater than 0", ErrInvalidInput)
	}
	if f.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidInput)
	}
	return nil
}

// Filter narrows a catalog query. A nil field places no constraint on that
// dimension.
type Filter struct {
	Name     *string   `json:"name,omitempty"`
	Category *Category `json:"category,omitempty"`
	MinPrice *float64  `json:"min_price,omitempty"`
	MaxPrice *float64  `json:"max_price,omitempty"`
}

func (f Filter) IsEmpty() bool {
	return f.Name == nil && f.Category == nil && f.MinPrice == nil && f.MaxPrice == nil
}

// Matches reports whether item satisfies every set constraint. Name and
// category match as case-insensitive substrings; price bounds are inclusive.
func (f Filter) Matches(item Item) bool {
	if f.Name != nil && !containsFold(item.Name, *f.Name) {
		return false
	}
	if f.Category != nil && !containsFold(string(item.Category), string(*f.Category)) {
		return false
	}
	if f.MinPrice != nil && item.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && item.Price > *f.MaxPrice {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
