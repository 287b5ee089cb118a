package port

import (
	"context"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

// Authenticator issues sessions. Login failure is domain.ErrInvalidCredentials.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (domain.Session, error)
	Register(ctx context.Context, email, password string) (int64, error)
}

// Inventory is the remote inventory contract. Every call carries the session
// token; a rejected token is reported as domain.ErrUnauthorized and nothing else.
type Inventory interface {
	ListItems(ctx context.Context, token string) ([]domain.Item, error)
	SearchItems(ctx context.Context, token string, filter domain.Filter) ([]domain.Item, error)
	CreateItem(ctx context.Context, token string, fields domain.ItemFields) (*domain.Item, error)
	UpdateItem(ctx context.Context, token string, id domain.ItemID, fields domain.ItemFields) (*domain.Item, error)
	DeleteItem(ctx context.Context, token string, id domain.ItemID) error

	// PurchaseItem decrements stock by one and returns the remaining quantity
	PurchaseItem(ctx context.Context, token string, id domain.ItemID) (int, error)

	// RestockItem increases stock by amount and returns the new quantity
	RestockItem(ctx context.Context, token string, id domain.ItemID, amount int) (int, error)
}

type InventoryService interface {
	Authenticator
	Inventory
}
