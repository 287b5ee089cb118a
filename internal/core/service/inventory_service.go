package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/port"
)

const minPasswordLength = 4

// InventoryService is the server side of port.InventoryService. Successful
// mutations are queued as inventory events for the publisher workers.
type InventoryService struct {
	items  port.ItemRepository
	users  port.UserRepository
	tokens port.TokenService
	hasher port.PasswordHasher
	events chan domain.InventoryEvent
}

var _ port.InventoryService = (*InventoryService)(nil)

func NewInventoryService(items port.ItemRepository, users port.UserRepository, tokens port.TokenService, hasher port.PasswordHasher, queueSize int) *InventoryService {
	return &InventoryService{
		items:  items,
		users:  users,
		tokens: tokens,
		hasher: hasher,
		events: make(chan domain.InventoryEvent, queueSize),
	}
}

func (s *InventoryService) Register(ctx context.Context, email, password string) (int64, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return 0, fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return 0, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	return s.createUser(ctx, email, password, false)
}

// EnsureAdmin creates an admin account unless the email is already registered.
func (s *InventoryService) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.users.FindUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("find admin: %w", err)
	}
	_, err = s.createUser(ctx, email, password, true)
	return err
}

func (s *InventoryService) createUser(ctx context.Context, email, password string, admin bool) (int64, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.users.CreateUser(ctx, domain.User{
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      admin,
		CreatedAt:    time.Now(),
	})
}

func (s *InventoryService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	user, err := s.users.FindUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("find user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return domain.Session{}, err
	}

	token, err := s.tokens.Issue(*user)
	if err != nil {
		return domain.Session{}, fmt.Errorf("issue token: %w", err)
	}
	return domain.Session{Token: token, Email: user.Email, IsAdmin: user.IsAdmin}, nil
}

func (s *InventoryService) ListItems(ctx context.Context, token string) ([]domain.Item, error) {
	if _, err := s.authenticate(token, false); err != nil {
		return nil, err
	}
	return s.items.ListItems(ctx)
}

func (s *InventoryService) SearchItems(ctx context.Context, token string, filter domain.Filter) ([]domain.Item, error) {
	if _, err := s.authenticate(token, false); err != nil {
		return nil, err
	}
	return s.items.SearchItems(ctx, filter)
}

func (s *InventoryService) CreateItem(ctx context.Context, token string, fields domain.ItemFields) (*domain.Item, error) {
	if _, err := s.authenticate(token, true); err != nil {
		return nil, err
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	item, err := s.items.CreateItem(ctx, fields)
	if err != nil {
		return nil, err
	}
	s.emit(domain.EventItemCreated, item.ID, item.Quantity, item.Quantity)
	return item, nil
}

func (s *InventoryService) UpdateItem(ctx context.Context, token string, id domain.ItemID, fields domain.ItemFields) (*domain.Item, error) {
	if _, err := s.authenticate(token, true); err != nil {
		return nil, err
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	item, err := s.items.UpdateItem(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.emit(domain.EventItemUpdated, item.ID, item.Quantity, 0)
	return item, nil
}

func (s *InventoryService) DeleteItem(ctx context.Context, token string, id domain.ItemID) error {
	if _, err := s.authenticate(token, true); err != nil {
		return err
	}
	if err := s.items.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.emit(domain.EventItemDeleted, id, 0, 0)
	return nil
}

func (s *InventoryService) PurchaseItem(ctx context.Context, token string, id domain.ItemID) (int, error) {
	if _, err := s.authenticate(token, false); err != nil {
		return 0, err
	}

	remaining, err := s.items.DecrementStock(ctx, id, 1)
	if err != nil {
		return 0, err
	}
	s.emit(domain.EventItemPurchased, id, remaining, -1)
	return remaining, nil
}

func (s *InventoryService) RestockItem(ctx context.Context, token string, id domain.ItemID, amount int) (int, error) {
	if _, err := s.authenticate(token, true); err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be greater than 0", domain.ErrInvalidInput)
	}

	quantity, err := s.items.IncrementStock(ctx, id, amount)
	if err != nil {
		return 0, err
	}
	s.emit(domain.EventItemRestocked, id, quantity, amount)
	return quantity, nil
}

func (s *InventoryService) authenticate(token string, admin bool) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	p, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Principal{}, err
	}
	if admin && !p.IsAdmin {
		return domain.Principal{}, domain.ErrForbidden
	}
	return p, nil
}

// emit queues an event without blocking; a full queue drops it.
func (s *InventoryService) emit(t domain.EventType, id domain.ItemID, quantity, delta int) {
	event := domain.InventoryEvent{
		ID:        uuid.NewString(),
		Type:      t,
		ItemID:    id,
		Quantity:  quantity,
		Delta:     delta,
		Timestamp: time.Now(),
	}

	select {
	case s.events <- event:
	default:
		log.Printf("event queue full, dropping %s for item %d", t, id)
	}
}

func (s *InventoryService) Events() <-chan domain.InventoryEvent {
	return s.events
}

func (s *InventoryService) Close() {
	close(s.events)
}
