package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/port"
)

// MemoryAdapter keeps items and users in process memory. It backs the server
// when no database is configured.
type MemoryAdapter struct {
	mu         sync.Mutex
	items      map[domain.ItemID]domain.Item
	users      map[string]domain.User
	nextItemID domain.ItemID
	nextUserID int64
}

var (
	_ port.ItemRepository = (*MemoryAdapter)(nil)
	_ port.UserRepository = (*MemoryAdapter)(nil)
)

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		items: make(map[domain.ItemID]domain.Item),
		users: make(map[string]domain.User),
	}
}

func (m *MemoryAdapter) ListItems(ctx context.Context) ([]domain.Item, error) {
	return m.SearchItems(ctx, domain.Filter{})
}

func (m *MemoryAdapter) SearchItems(ctx context.Context, filter domain.Filter) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]domain.Item, 0, len(m.items))
	for _, item := range m.items {
		if filter.Matches(item) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *MemoryAdapter) GetItem(ctx context.Context, id domain.ItemID) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

func (m *MemoryAdapter) CreateItem(ctx context.Context, fields domain.ItemFields) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextItemID++
	item := itemFrom(m.nextItemID, fields)
	m.items[item.ID] = item
	return &item, nil
}

func (m *MemoryAdapter) UpdateItem(ctx context.Context, id domain.ItemID, fields domain.ItemFields) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return nil, domain.ErrNotFound
	}
	item := itemFrom(id, fields)
	m.items[id] = item
	return &item, nil
}

func (m *MemoryAdapter) DeleteItem(ctx context.Context, id domain.ItemID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *MemoryAdapter) DecrementStock(ctx context.Context, id domain.ItemID, amount int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if item.Quantity < amount {
		return 0, domain.ErrInsufficientStock
	}
	item.Quantity -= amount
	m.items[id] = item
	return item.Quantity, nil
}

func (m *MemoryAdapter) IncrementStock(ctx context.Context, id domain.ItemID, amount int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	item.Quantity += amount
	m.items[id] = item
	return item.Quantity, nil
}

func (m *MemoryAdapter) CreateUser(ctx context.Context, user domain.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := m.users[key]; ok {
		return 0, domain.ErrEmailTaken
	}
	m.nextUserID++
	user.ID = m.nextUserID
	m.users[key] = user
	return user.ID, nil
}

func (m *MemoryAdapter) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}

func itemFrom(id domain.ItemID, fields domain.ItemFields) domain.Item {
	return domain.Item{
		ID:       id,
		Name:     fields.Name,
		Category: fields.Category,
		Price:    fields.Price,
		Quantity: fields.Quantity,
	}
}

// MemorySessionStore holds a session for the lifetime of the process.
type MemorySessionStore struct {
	mu      sync.Mutex
	session domain.Session
}

var _ port.SessionStore = (*MemorySessionStore)(nil)

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) Load(ctx context.Context) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, nil
}

func (s *MemorySessionStore) Save(ctx context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	return nil
}

func (s *MemorySessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{}
	return nil
}
