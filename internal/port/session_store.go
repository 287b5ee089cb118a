package port

import (
	"context"

	"github.com/rl1809/sweet-shop/internal/core/domain"
)

type SessionStore interface {
	// Load returns the zero Session when nothing is stored
	Load(ctx context.Context) (domain.Session, error)

	Save(ctx context.Context, session domain.Session) error

	Clear(ctx context.Context) error
}
