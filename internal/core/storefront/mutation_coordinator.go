package storefront

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/port"
)

// ItemForm is the raw add-item input.
type ItemForm struct {
	Name     string
	Category string
	Price    string
	Quantity string
}

// NewItemForm returns an empty form with the default category.
func NewItemForm() ItemForm {
	return ItemForm{Category: string(domain.CategoryGeneral)}
}

func (f ItemForm) Fields() (domain.ItemFields, error) {
	category := domain.CategoryGeneral
	if strings.TrimSpace(f.Category) != "" {
		c, err := domain.ParseCategory(f.Category)
		if err != nil {
			return domain.ItemFields{}, err
		}
		category = c
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil {
		return domain.ItemFields{}, fmt.Errorf("%w: price must be a number", domain.ErrInvalidInput)
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(f.Quantity))
	if err != nil {
		return domain.ItemFields{}, fmt.Errorf("%w: quantity must be a whole number", domain.ErrInvalidInput)
	}

	fields := domain.ItemFields{
		Name:     strings.TrimSpace(f.Name),
		Category: category,
		Price:    price,
		Quantity: quantity,
	}
	return fields, fields.Validate()
}

// EditBuffer mirrors the item under in-place edit.
type EditBuffer struct {
	ItemID   domain.ItemID
	Name     string
	Price    float64
	Quantity int
	Category domain.Category
}

func (b EditBuffer) Fields() domain.ItemFields {
	return domain.ItemFields{
		Name:     strings.TrimSpace(b.Name),
		Category: b.Category,
		Price:    b.Price,
		Quantity: b.Quantity,
	}
}

type ReceiptLine struct {
	domain.CartLine
	Purchased int
}

// Receipt records what a checkout actually bought.
type Receipt struct {
	Lines []ReceiptLine
}

func (r Receipt) Total() float64 {
	var total float64
	for _, l := range r.Lines {
		total += l.Price * float64(l.Purchased)
	}
	return total
}

func (r Receipt) Complete() bool {
	for _, l := range r.Lines {
		if l.Purchased != l.Qty {
			return false
		}
	}
	return true
}

type CoordinatorOptions struct {
	// ClearBuffersOnFailure clears the add form, edit buffer and restock
	// entry after every attempt instead of only after a confirmed success.
	ClearBuffersOnFailure bool

	// OnSessionLost runs when the inventory service rejects the token.
	OnSessionLost func(ctx context.Context)
}

// MutationCoordinator runs every state-changing inventory call and follows it
// with a catalog refetch. It never edits catalog items locally.
type MutationCoordinator struct {
	inventory port.Inventory
	gate      *SessionGate
	catalog   *CatalogView
	cart      *CartLedger
	opts      CoordinatorOptions

	mu       sync.Mutex
	inflight map[string]struct{}
	addForm  ItemForm
	edit     *EditBuffer
	restock  map[domain.ItemID]string
}

func NewMutationCoordinator(inventory port.Inventory, gate *SessionGate, catalog *CatalogView, cart *CartLedger, opts CoordinatorOptions) *MutationCoordinator {
	return &MutationCoordinator{
		inventory: inventory,
		gate:      gate,
		catalog:   catalog,
		cart:      cart,
		opts:      opts,
		inflight:  make(map[string]struct{}),
		addForm:   NewItemForm(),
		restock:   make(map[domain.ItemID]string),
	}
}

// Refresh replaces the catalog with the unfiltered item list.
func (c *MutationCoordinator) Refresh(ctx context.Context) error {
	return c.load(ctx, func(ctx context.Context, token string) ([]domain.Item, error) {
		return c.inventory.ListItems(ctx, token)
	})
}

// Search replaces the catalog with the service's filtered result.
func (c *MutationCoordinator) Search(ctx context.Context, filter domain.Filter) error {
	return c.load(ctx, func(ctx context.Context, token string) ([]domain.Item, error) {
		return c.inventory.SearchItems(ctx, token, filter)
	})
}

func (c *MutationCoordinator) load(ctx context.Context, fetch func(context.Context, string) ([]domain.Item, error)) error {
	token, err := c.gate.Authorize(false)
	if err != nil {
		return err
	}

	items, err := fetch(ctx, token)
	if c.sessionLost(ctx, err) {
		return ErrSessionExpired
	}
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}

	c.catalog.SetCatalog(items)
	c.cart.Reconcile(items)
	return nil
}

func (c *MutationCoordinator) AddForm() ItemForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addForm
}

func (c *MutationCoordinator) SetAddForm(form ItemForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addForm = form
}

// Create submits the add-item form.
func (c *MutationCoordinator) Create(ctx context.Context) error {
	fields, err := c.AddForm().Fields()
	if err != nil {
		return err
	}

	return c.mutate(ctx, "create", true, func(ctx context.Context, token string) error {
		_, err := c.inventory.CreateItem(ctx, token, fields)
		return err
	}, func() {
		c.addForm = NewItemForm()
	})
}

// StartEdit enters edit mode for id, replacing any edit in progress.
func (c *MutationCoordinator) StartEdit(id domain.ItemID) error {
	item, ok := c.catalog.Item(id)
	if !ok {
		return ErrItemNotInCatalog
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.edit = &EditBuffer{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: item.Quantity,
		Category: item.Category,
	}
	return nil
}

// Editing returns the active edit buffer.
func (c *MutationCoordinator) Editing() (EditBuffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.edit == nil {
		return EditBuffer{}, false
	}
	return *c.edit, true
}

// UpdateEdit overwrites the active buffer. buf must target the item being edited.
func (c *MutationCoordinator) UpdateEdit(buf EditBuffer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.edit == nil || c.edit.ItemID != buf.ItemID {
		return ErrNotEditing
	}
	*c.edit = buf
	return nil
}

func (c *MutationCoordinator) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edit = nil
}

// SaveEdit sends the edit buffer and leaves edit mode.
func (c *MutationCoordinator) SaveEdit(ctx context.Context) error {
	buf, ok := c.Editing()
	if !ok {
		return ErrNotEditing
	}
	fields := buf.Fields()
	if err := fields.Validate(); err != nil {
		return err
	}

	return c.mutate(ctx, mutationKey("edit", buf.ItemID), true, func(ctx context.Context, token string) error {
		_, err := c.inventory.UpdateItem(ctx, token, buf.ItemID, fields)
		return err
	}, func() {
		if c.edit != nil && c.edit.ItemID == buf.ItemID {
			c.edit = nil
		}
	})
}

func (c *MutationCoordinator) Delete(ctx context.Context, id domain.ItemID) error {
	return c.mutate(ctx, mutationKey("delete", id), true, func(ctx context.Context, token string) error {
		return c.inventory.DeleteItem(ctx, token, id)
	}, func() {
		if c.edit != nil && c.edit.ItemID == id {
			c.edit = nil
		}
		delete(c.restock, id)
	})
}

// Purchase buys one unit immediately, bypassing the cart.
func (c *MutationCoordinator) Purchase(ctx context.Context, id domain.ItemID) error {
	if item, ok := c.catalog.Item(id); ok && item.Quantity == 0 {
		return domain.ErrInsufficientStock
	}

	return c.mutate(ctx, mutationKey("purchase", id), false, func(ctx context.Context, token string) error {
		_, err := c.inventory.PurchaseItem(ctx, token, id)
		return err
	}, nil)
}

func (c *MutationCoordinator) RestockAmount(id domain.ItemID) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restock[id]
}

func (c *MutationCoordinator) SetRestockAmount(id domain.ItemID, amount string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.restock[id] = amount
}

// Restock submits the pending restock amount for id. A missing or
// non-positive amount is rejected without contacting the service.
func (c *MutationCoordinator) Restock(ctx context.Context, id domain.ItemID) error {
	amount, err := strconv.Atoi(strings.TrimSpace(c.RestockAmount(id)))
	if err != nil || amount <= 0 {
		return ErrInvalidRestockAmount
	}

	return c.mutate(ctx, mutationKey("restock", id), true, func(ctx context.Context, token string) error {
		_, err := c.inventory.RestockItem(ctx, token, id, amount)
		return err
	}, func() {
		delete(c.restock, id)
	})
}

// Checkout submits each cart line as single-unit purchases, stopping at the
// first failure. The cart is cleared afterwards whatever the outcome; the
// receipt says what was bought.
func (c *MutationCoordinator) Checkout(ctx context.Context) (Receipt, error) {
	lines := c.cart.Lines()
	if len(lines) == 0 {
		return Receipt{}, nil
	}

	receipt := Receipt{Lines: make([]ReceiptLine, len(lines))}
	for i, l := range lines {
		receipt.Lines[i] = ReceiptLine{CartLine: l}
	}

	err := c.mutate(ctx, "checkout", false, func(ctx context.Context, token string) error {
		defer c.cart.Clear()
		for i := range receipt.Lines {
			line := &receipt.Lines[i]
			for line.Purchased < line.Qty {
				if _, err := c.inventory.PurchaseItem(ctx, token, line.ItemID); err != nil {
					return fmt.Errorf("purchase %s: %w", line.Name, err)
				}
				line.Purchased++
			}
		}
		return nil
	}, nil)
	return receipt, err
}

// Reset drops every buffer, used when the session ends.
func (c *MutationCoordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.addForm = NewItemForm()
	c.edit = nil
	c.restock = make(map[domain.ItemID]string)
}

// mutate runs op under the busy guard for key, applies cleanup, and refetches
// the catalog. cleanup runs with c.mu held.
func (c *MutationCoordinator) mutate(ctx context.Context, key string, privileged bool, op func(context.Context, string) error, cleanup func()) error {
	token, err := c.gate.Authorize(privileged)
	if err != nil {
		return err
	}
	if !c.acquire(key) {
		return ErrBusy
	}
	defer c.release(key)

	err = op(ctx, token)
	if c.sessionLost(ctx, err) {
		return ErrSessionExpired
	}
	if cleanup != nil && (err == nil || c.opts.ClearBuffersOnFailure) {
		c.mu.Lock()
		cleanup()
		c.mu.Unlock()
	}

	if refreshErr := c.Refresh(ctx); refreshErr != nil {
		if errors.Is(refreshErr, ErrSessionExpired) {
			return refreshErr
		}
		return errors.Join(err, refreshErr)
	}
	return err
}

// InFlight reports whether an operation holds the busy guard for key.
func (c *MutationCoordinator) InFlight(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[key]
	return ok
}

func (c *MutationCoordinator) acquire(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.inflight[key]; ok {
		return false
	}
	c.inflight[key] = struct{}{}
	return true
}

func (c *MutationCoordinator) release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
}

func (c *MutationCoordinator) sessionLost(ctx context.Context, err error) bool {
	if !errors.Is(err, domain.ErrUnauthorized) {
		return false
	}
	if c.opts.OnSessionLost != nil {
		c.opts.OnSessionLost(ctx)
	}
	return true
}

func mutationKey(action string, id domain.ItemID) string {
	return fmt.Sprintf("%s:%d", action, id)
}
