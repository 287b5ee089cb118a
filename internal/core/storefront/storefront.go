// Package storefront is the client-side cart and inventory-reconciliation
// engine. It keeps a local cart consistent with server-reported stock, and
// drives a refetch after every mutating call.
//
// Storefront methods are safe to call from multiple goroutines, but the
// engine assumes a single user acting on it.
package storefront

import (
	"context"
	"errors"
	"log"

	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/port"
)

type Options struct {
	PageSize              int
	ClearBuffersOnFailure bool
}

type Storefront struct {
	gate      *SessionGate
	catalog   *CatalogView
	cart      *CartLedger
	search    *SearchComposer
	mutations *MutationCoordinator
}

func New(service port.InventoryService, store port.SessionStore, opts Options) *Storefront {
	s := &Storefront{
		gate:    NewSessionGate(service, store),
		catalog: NewCatalogView(opts.PageSize),
		cart:    NewCartLedger(),
		search:  NewSearchComposer(),
	}
	s.mutations = NewMutationCoordinator(service, s.gate, s.catalog, s.cart, CoordinatorOptions{
		ClearBuffersOnFailure: opts.ClearBuffersOnFailure,
		OnSessionLost:         s.expire,
	})
	return s
}

func (s *Storefront) Session() *SessionGate { return s.gate }
func (s *Storefront) Catalog() *CatalogView { return s.catalog }
func (s *Storefront) Cart() *CartLedger { return s.cart }
func (s *Storefront) Search() *SearchComposer { return s.search }
func (s *Storefront) Mutations() *MutationCoordinator { return s.mutations }

// Start restores a stored session and, if there is one, loads the catalog.
// It reports whether the storefront ended up logged in.
func (s *Storefront) Start(ctx context.Context) (bool, error) {
	ok, err := s.gate.Restore(ctx)
	if err != nil || !ok {
		return false, err
	}
	if err := s.mutations.Refresh(ctx); err != nil {
		return s.gate.Active(), err
	}
	return true, nil
}

// Login opens a session and loads the catalog.
func (s *Storefront) Login(ctx context.Context, email, password string) error {
	if err := s.gate.Login(ctx, email, password); err != nil {
		return err
	}
	return s.mutations.Refresh(ctx)
}

func (s *Storefront) Register(ctx context.Context, email, password string) (int64, error) {
	return s.gate.Register(ctx, email, password)
}

// Logout ends the session and discards the catalog, the cart and every buffer.
func (s *Storefront) Logout(ctx context.Context) error {
	err := s.gate.End(ctx)
	s.discard()
	return err
}

func (s *Storefront) expire(ctx context.Context) {
	log.Printf("session for %s rejected by server, logging out", s.gate.Session().Email)
	if err := s.gate.End(ctx); err != nil {
		log.Printf("failed to clear stored session: %v", err)
	}
	s.discard()
}

func (s *Storefront) discard() {
	s.catalog.Clear()
	s.cart.Clear()
	s.search.Reset()
	s.mutations.Reset()
}

func (s *Storefront) Refresh(ctx context.Context) error {
	return s.mutations.Refresh(ctx)
}

// ApplySearch stores form and replaces the catalog with the filtered result.
// An invalid form is rejected before any request is made.
func (s *Storefront) ApplySearch(ctx context.Context, form FilterForm) error {
	filter, err := form.Build()
	if err != nil {
		return err
	}
	s.search.SetForm(form)
	return s.mutations.Search(ctx, filter)
}

// ResetSearch clears the form and reloads the unfiltered catalog.
func (s *Storefront) ResetSearch(ctx context.Context) error {
	s.search.Reset()
	return s.mutations.Refresh(ctx)
}

// RemainingStock is the purchasable stock of a catalog item after the cart.
func (s *Storefront) RemainingStock(id domain.ItemID) (int, error) {
	item, ok := s.catalog.Item(id)
	if !ok {
		return 0, ErrItemNotInCatalog
	}
	return s.cart.RemainingStock(item), nil
}

func (s *Storefront) IncreaseSelector(id domain.ItemID) (int, error) {
	item, ok := s.catalog.Item(id)
	if !ok {
		return 0, ErrItemNotInCatalog
	}
	return s.cart.IncreaseSelector(id, s.cart.RemainingStock(item)), nil
}

func (s *Storefront) DecreaseSelector(id domain.ItemID) (int, error) {
	if _, ok := s.catalog.Item(id); !ok {
		return 0, ErrItemNotInCatalog
	}
	return s.cart.DecreaseSelector(id), nil
}

// AddToCart reserves the selected quantity of a catalog item. It reports
// false when the item has no remaining stock.
func (s *Storefront) AddToCart(id domain.ItemID) (bool, error) {
	if !s.gate.Active() {
		return false, ErrNotLoggedIn
	}
	item, ok := s.catalog.Item(id)
	if !ok {
		return false, ErrItemNotInCatalog
	}
	return s.cart.AddToCart(item), nil
}

func (s *Storefront) ClearCart() {
	s.cart.Clear()
}

func (s *Storefront) Checkout(ctx context.Context) (Receipt, error) {
	return s.mutations.Checkout(ctx)
}

// LoggedOut reports whether err ended the session.
func LoggedOut(err error) bool {
	return errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrNotLoggedIn)
}
