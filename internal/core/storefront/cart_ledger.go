package storefront

import (
	"sync"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

// CartLedger holds locally reserved quantities per item and the per-item
// quantity selectors. It never talks to the inventory service. Bounds are
// enforced by clamping, never by returning errors.
type CartLedger struct {
	mu        sync.RWMutex
	lines     []domain.CartLine
	index     map[domain.ItemID]int
	selectors map[domain.ItemID]int
}

func NewCartLedger() *CartLedger {
	return &CartLedger{
		index:     make(map[domain.ItemID]int),
		selectors: make(map[domain.ItemID]int),
	}
}

// RemainingStock is the authoritative quantity minus what the cart already
// reserves, floored at zero when the server reports less than is reserved.
func (c *CartLedger) RemainingStock(item domain.Item) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.remaining(item)
}

func (c *CartLedger) remaining(item domain.Item) int {
	reserved := 0
	if i, ok := c.index[item.ID]; ok {
		reserved = c.lines[i].Qty
	}
	return max(item.Quantity-reserved, 0)
}

// CanAdd reports whether AddToCart would reserve anything for item.
func (c *CartLedger) CanAdd(item domain.Item) bool {
	return c.RemainingStock(item) > 0
}

// Selector returns the picker value for id, 1 when unset.
func (c *CartLedger) Selector(id domain.ItemID) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selector(id)
}

func (c *CartLedger) selector(id domain.ItemID) int {
	if q, ok := c.selectors[id]; ok {
		return q
	}
	return 1
}

// IncreaseSelector raises the picker by one without exceeding limit, which
// callers pass as the remaining stock at call time.
func (c *CartLedger) IncreaseSelector(id domain.ItemID, limit int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := max(min(c.selector(id)+1, limit), 1)
	c.selectors[id] = q
	return q
}

// DecreaseSelector lowers the picker by one, never below 1.
func (c *CartLedger) DecreaseSelector(id domain.ItemID) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := max(c.selector(id)-1, 1)
	c.selectors[id] = q
	return q
}

// AddToCart reserves the selector quantity of item, merging into an existing
// line, and resets the selector to 1. It is a no-op returning false when
// nothing remains to reserve. The reserved amount is clamped to the remaining
// stock so a line never exceeds the authoritative quantity.
func (c *CartLedger) AddToCart(item domain.Item) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	remaining := c.remaining(item)
	if remaining == 0 {
		return false
	}
	q := min(c.selector(item.ID), remaining)

	if i, ok := c.index[item.ID]; ok {
		c.lines[i].Qty += q
	} else {
		c.index[item.ID] = len(c.lines)
		c.lines = append(c.lines, domain.CartLine{
			ItemID: item.ID,
			Name:   item.Name,
			Price:  item.Price,
			Qty:    q,
		})
	}
	c.selectors[item.ID] = 1
	return true
}

// Reconcile clamps every selector into [1, remaining] against a freshly
// fetched catalog. Cart lines are left alone.
func (c *CartLedger) Reconcile(items []domain.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range items {
		q, ok := c.selectors[item.ID]
		if !ok {
			continue
		}
		c.selectors[item.ID] = max(min(q, c.remaining(item)), 1)
	}
}

// Line returns the cart line for id, if any.
func (c *CartLedger) Line(id domain.ItemID) (domain.CartLine, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return domain.CartLine{}, false
	}
	return c.lines[i], true
}

// Lines returns a copy of the cart in insertion order.
func (c *CartLedger) Lines() []domain.CartLine {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lines := make([]domain.CartLine, len(c.lines))
	copy(lines, c.lines)
	return lines
}

// Units is the total reserved quantity across all lines.
func (c *CartLedger) Units() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, l := range c.lines {
		n += l.Qty
	}
	return n
}

func (c *CartLedger) Total() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total float64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Clear empties the cart and resets every selector.
func (c *CartLedger) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	c.index = make(map[domain.ItemID]int)
	c.selectors = make(map[domain.ItemID]int)
}
