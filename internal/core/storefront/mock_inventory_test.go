package storefront

import (
	"context"
	"sort"
	"sync"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

// Mock InventoryService
type mockInventory struct {
	mu      sync.Mutex
	items   map[domain.ItemID]domain.Item
	nextID  domain.ItemID
	session domain.Session
	calls   map[string]int
	errs    map[string]error
	block   chan struct{}
	entered chan struct{}
}

func newMockInventory(items ...domain.Item) *mockInventory {
	m := &mockInventory{
		items:   make(map[domain.ItemID]domain.Item),
		session: domain.Session{Token: "tok", Email: "user@example.com"},
		calls:   make(map[string]int),
		errs:    make(map[string]error),
	}
	for _, item := range items {
		m.items[item.ID] = item
		m.nextID = max(m.nextID, item.ID)
	}
	return m
}

func (m *mockInventory) record(method string) error {
	m.mu.Lock()
	m.calls[method]++
	err := m.errs[method]
	block, entered := m.block, m.entered
	m.mu.Unlock()

	if block != nil && method != "ListItems" {
		entered <- struct{}{}
		<-block
	}
	return err
}

func (m *mockInventory) failWith(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[method] = err
}

func (m *mockInventory) count(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *mockInventory) setQuantity(id domain.ItemID, q int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := m.items[id]
	item.Quantity = q
	m.items[id] = item
}

func (m *mockInventory) list() []domain.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]domain.Item, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (m *mockInventory) Login(ctx context.Context, email, password string) (domain.Session, error) {
	if err := m.record("Login"); err != nil {
		return domain.Session{}, err
	}
	return m.session, nil
}

func (m *mockInventory) Register(ctx context.Context, email, password string) (int64, error) {
	if err := m.record("Register"); err != nil {
		return 0, err
	}
	return 1, nil
}

func (m *mockInventory) ListItems(ctx context.Context, token string) ([]domain.Item, error) {
	if err := m.record("ListItems"); err != nil {
		return nil, err
	}
	return m.list(), nil
}

func (m *mockInventory) SearchItems(ctx context.Context, token string, filter domain.Filter) ([]domain.Item, error) {
	if err := m.record("SearchItems"); err != nil {
		return nil, err
	}
	var out []domain.Item
	for _, item := range m.list() {
		if filter.Matches(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockInventory) CreateItem(ctx context.Context, token string, fields domain.ItemFields) (*domain.Item, error) {
	if err := m.record("CreateItem"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	item := domain.Item{ID: m.nextID, Name: fields.Name, Category: fields.Category, Price: fields.Price, Quantity: fields.Quantity}
	m.items[item.ID] = item
	return &item, nil
}

func (m *mockInventory) UpdateItem(ctx context.Context, token string, id domain.ItemID, fields domain.ItemFields) (*domain.Item, error) {
	if err := m.record("UpdateItem"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item := domain.Item{ID: id, Name: fields.Name, Category: fields.Category, Price: fields.Price, Quantity: fields.Quantity}
	m.items[id] = item
	return &item, nil
}

func (m *mockInventory) DeleteItem(ctx context.Context, token string, id domain.ItemID) error {
	if err := m.record("DeleteItem"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func (m *mockInventory) PurchaseItem(ctx context.Context, token string, id domain.ItemID) (int, error) {
	if err := m.record("PurchaseItem"); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if item.Quantity < 1 {
		return 0, domain.ErrInsufficientStock
	}
	item.Quantity--
	m.items[id] = item
	return item.Quantity, nil
}

func (m *mockInventory) RestockItem(ctx context.Context, token string, id domain.ItemID, amount int) (int, error) {
	if err := m.record("RestockItem"); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item := m.items[id]
	item.Quantity += amount
	m.items[id] = item
	return item.Quantity, nil
}

// Mock SessionStore
type mockSessionStore struct {
	mu      sync.Mutex
	session domain.Session
	saves   int
	clears  int
}

func (s *mockSessionStore) Load(ctx context.Context) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, nil
}

func (s *mockSessionStore) Save(ctx context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.saves++
	return nil
}

func (s *mockSessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{}
	s.clears++
	return nil
}
