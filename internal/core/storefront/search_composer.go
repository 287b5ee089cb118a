package storefront

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

// FilterForm is the raw search input. Blank fields are omitted from the query.
type FilterForm struct {
	Name     string
	Category string
	MinPrice string
	MaxPrice string
}

// Build validates the form and turns it into a domain.Filter.
func (f FilterForm) Build() (domain.Filter, error) {
	var filter domain.Filter

	if name := strings.TrimSpace(f.Name); name != "" {
		filter.Name = &name
	}
	if strings.TrimSpace(f.Category) != "" {
		c, err := domain.ParseCategory(f.Category)
		if err != nil {
			return domain.Filter{}, err
		}
		filter.Category = &c
	}

	var err error
	if filter.MinPrice, err = parsePrice("min price", f.MinPrice); err != nil {
		return domain.Filter{}, err
	}
	if filter.MaxPrice, err = parsePrice("max price", f.MaxPrice); err != nil {
		return domain.Filter{}, err
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return domain.Filter{}, fmt.Errorf("%w: min price exceeds max price", domain.ErrInvalidInput)
	}
	return filter, nil
}

func parsePrice(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, field)
	}
	return &v, nil
}

// SearchComposer keeps the search form between queries. It does not filter
// anything itself; results always come from the inventory service.
type SearchComposer struct {
	mu   sync.Mutex
	form FilterForm
}

func NewSearchComposer() *SearchComposer {
	return &SearchComposer{}
}

func (s *SearchComposer) Form() FilterForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

func (s *SearchComposer) SetForm(form FilterForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = form
}

// Compose builds the filter for the current form.
func (s *SearchComposer) Compose() (domain.Filter, error) {
	return s.Form().Build()
}

func (s *SearchComposer) Reset() {
	s.SetForm(FilterForm{})
}
