package storefront

import (
	"sync"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

const DefaultPageSize = 6

// CatalogView holds the item list as last fetched or searched, plus the
// current page of a fixed-size pagination over it.
type CatalogView struct {
	mu       sync.RWMutex
	items    []domain.Item
	page     int
	pageSize int
}

func NewCatalogView(pageSize int) *CatalogView {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &CatalogView{page: 1, pageSize: pageSize}
}

// SetCatalog replaces the list wholesale and returns to page 1.
func (v *CatalogView) SetCatalog(items []domain.Item) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.items = make([]domain.Item, len(items))
	copy(v.items, items)
	v.page = 1
}

func (v *CatalogView) Clear() {
	v.SetCatalog(nil)
}

func (v *CatalogView) Items() []domain.Item {
	v.mu.RLock()
	defer v.mu.RUnlock()

	items := make([]domain.Item, len(v.items))
	copy(items, v.items)
	return items
}

func (v *CatalogView) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.items)
}

func (v *CatalogView) Item(id domain.ItemID) (domain.Item, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, item := range v.items {
		if item.ID == id {
			return item, true
		}
	}
	return domain.Item{}, false
}

// Page returns the 1-indexed slice items[(n-1)*pageSize : n*pageSize],
// empty when n is out of range.
func (v *CatalogView) Page(n, pageSize int) []domain.Item {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return pageOf(v.items, n, pageSize)
}

func pageOf(items []domain.Item, n, pageSize int) []domain.Item {
	if n < 1 || pageSize < 1 {
		return nil
	}
	start := (n - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := min(start+pageSize, len(items))

	page := make([]domain.Item, end-start)
	copy(page, items[start:end])
	return page
}

// TotalPages is ceil(len/pageSize), never less than 1.
func (v *CatalogView) TotalPages(pageSize int) int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return totalPages(len(v.items), pageSize)
}

func totalPages(n, pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	return max((n+pageSize-1)/pageSize, 1)
}

func (v *CatalogView) PageSize() int {
	return v.pageSize
}

func (v *CatalogView) CurrentPage() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.page
}

// SetPage moves to page n, clamped to [1, TotalPages].
func (v *CatalogView) SetPage(n int) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.page = max(min(n, totalPages(len(v.items), v.pageSize)), 1)
	return v.page
}

// Visible returns the items on the current page.
func (v *CatalogView) Visible() []domain.Item {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return pageOf(v.items, v.page, v.pageSize)
}

// Paginated reports whether page controls should be shown at all.
func (v *CatalogView) Paginated() bool {
	return v.TotalPages(v.pageSize) > 1
}
