package port

import (
	"context"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

type ItemRepository interface {
	ListItems(ctx context.Context) ([]domain.Item, error)

	// SearchItems returns items matching every set field of filter
	SearchItems(ctx context.Context, filter domain.Filter) ([]domain.Item, error)

	// GetItem returns domain.ErrNotFound when no item has the given ID
	GetItem(ctx context.Context, id domain.ItemID) (*domain.Item, error)

	CreateItem(ctx context.Context, fields domain.ItemFields) (*domain.Item, error)

	UpdateItem(ctx context.Context, id domain.ItemID, fields domain.ItemFields) (*domain.Item, error)

	DeleteItem(ctx context.Context, id domain.ItemID) error

	// DecrementStock atomically decreases stock, failing with
	// domain.ErrInsufficientStock rather than going negative. Returns the new quantity.
	DecrementStock(ctx context.Context, id domain.ItemID, amount int) (int, error)

	// IncrementStock increases stock and returns the new quantity
	IncrementStock(ctx context.Context, id domain.ItemID, amount int) (int, error)
}

type UserRepository interface {
	// CreateUser returns domain.ErrEmailTaken when the email already exists
	CreateUser(ctx context.Context, user domain.User) (int64, error)

	// FindUserByEmail returns domain.ErrNotFound when no such user exists
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}
