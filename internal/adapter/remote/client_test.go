package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/rl1809/sweet-shop/internal/adapter/storage"
	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/core/storefront"
	"github.com/rl1809/sweet-shop/internal/port"
)

// Both transports must behave identically against the same service.
func transports() map[string]func(*testing.T) port.InventoryService {
	return map[string]func(*testing.T) port.InventoryService{
		"http": func(t *testing.T) port.InventoryService { return newHTTPTestClient(t) },
		"grpc": func(t *testing.T) port.InventoryService { return newGRPCTestClient(t) },
	}
}

func TestClient_AuthErrors(t *testing.T) {
	for name, newClient := range transports() {
		t.Run(name, func(t *testing.T) {
			c := newClient(t)
			ctx := context.Background()

			if _, err := c.Login(ctx, adminEmail, "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got: %v", err)
			}
			if _, err := c.ListItems(ctx, "not-a-token"); !errors.Is(err, domain.ErrUnauthorized) {
				t.Errorf("expected ErrUnauthorized, got: %v", err)
			}
			if _, err := c.Register(ctx, "a@b.c", "pw"); !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput for short password, got: %v", err)
			}

			if _, err := c.Register(ctx, "a@b.c", "pass"); err != nil {
				t.Fatalf("register failed: %v", err)
			}
			if _, err := c.Register(ctx, "a@b.c", "pass"); !errors.Is(err, domain.ErrEmailTaken) {
				t.Errorf("expected ErrEmailTaken, got: %v", err)
			}

			session, err := c.Login(ctx, "a@b.c", "pass")
			if err != nil {
				t.Fatalf("login failed: %v", err)
			}
			fields := domain.ItemFields{Name: "Toffee", Category: domain.CategoryCandy, Price: 1, Quantity: 1}
			if _, err := c.CreateItem(ctx, session.Token, fields); !errors.Is(err, domain.ErrForbidden) {
				t.Errorf("expected ErrForbidden, got: %v", err)
			}
		})
	}
}

func TestClient_Inventory(t *testing.T) {
	for name, newClient := range transports() {
		t.Run(name, func(t *testing.T) {
			c := newClient(t)
			ctx := context.Background()

			session, err := c.Login(ctx, adminEmail, adminPassword)
			if err != nil {
				t.Fatalf("login failed: %v", err)
			}
			if !session.IsAdmin || session.Email != adminEmail {
				t.Errorf("unexpected session: %+v", session)
			}
			token := session.Token

			item, err := c.CreateItem(ctx, token, domain.ItemFields{Name: "Peda", Category: domain.CategoryIndian, Price: 3, Quantity: 1})
			if err != nil {
				t.Fatalf("create failed: %v", err)
			}
			c.CreateItem(ctx, token, domain.ItemFields{Name: "Brownie", Category: domain.CategoryBakery, Price: 5, Quantity: 2})

			cat := domain.CategoryBakery
			found, err := c.SearchItems(ctx, token, domain.Filter{Category: &cat})
			if err != nil || len(found) != 1 || found[0].Name != "Brownie" {
				t.Errorf("unexpected search result: %+v, %v", found, err)
			}

			remaining, err := c.PurchaseItem(ctx, token, item.ID)
			if err != nil || remaining != 0 {
				t.Errorf("expected 0 remaining, got %d, %v", remaining, err)
			}
			if _, err := c.PurchaseItem(ctx, token, item.ID); !errors.Is(err, domain.ErrInsufficientStock) {
				t.Errorf("expected ErrInsufficientStock, got: %v", err)
			}

			quantity, err := c.RestockItem(ctx, token, item.ID, 6)
			if err != nil || quantity != 6 {
				t.Errorf("expected restocked quantity 6, got %d, %v", quantity, err)
			}

			updated, err := c.UpdateItem(ctx, token, item.ID, domain.ItemFields{Name: "Kesar Peda", Category: domain.CategoryIndian, Price: 4, Quantity: 6})
			if err != nil || updated.Name != "Kesar Peda" {
				t.Errorf("unexpected update: %+v, %v", updated, err)
			}

			if err := c.DeleteItem(ctx, token, item.ID); err != nil {
				t.Fatalf("delete failed: %v", err)
			}
			if err := c.DeleteItem(ctx, token, item.ID); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got: %v", err)
			}

			items, err := c.ListItems(ctx, token)
			if err != nil || len(items) != 1 {
				t.Errorf("expected 1 item left, got %d, %v", len(items), err)
			}
		})
	}
}

func TestStorefront_EndToEnd(t *testing.T) {
	for name, newClient := range transports() {
		t.Run(name, func(t *testing.T) {
			c := newClient(t)
			ctx := context.Background()

			admin, err := c.Login(ctx, adminEmail, adminPassword)
			if err != nil {
				t.Fatalf("admin login failed: %v", err)
			}
			item, _ := c.CreateItem(ctx, admin.Token, domain.ItemFields{Name: "Soan Papdi", Category: domain.CategoryIndian, Price: 2, Quantity: 5})

			store := storage.NewMemorySessionStore()
			shop := storefront.New(c, store, storefront.Options{})
			if _, err := shop.Register(ctx, "buyer@shop.test", "buyer-pass"); err != nil {
				t.Fatalf("register failed: %v", err)
			}
			if err := shop.Login(ctx, "buyer@shop.test", "buyer-pass"); err != nil {
				t.Fatalf("login failed: %v", err)
			}
			if shop.Catalog().Len() != 1 {
				t.Fatalf("expected catalog loaded, got %d items", shop.Catalog().Len())
			}

			shop.IncreaseSelector(item.ID)
			shop.IncreaseSelector(item.ID)
			shop.AddToCart(item.ID)
			if remaining, _ := shop.RemainingStock(item.ID); remaining != 2 {
				t.Errorf("expected 2 remaining, got %d", remaining)
			}

			receipt, err := shop.Checkout(ctx)
			if err != nil || !receipt.Complete() || receipt.Total() != 6 {
				t.Fatalf("unexpected checkout: %+v, %v", receipt, err)
			}
			got, _ := shop.Catalog().Item(item.ID)
			if got.Quantity != 2 {
				t.Errorf("expected server quantity 2 after checkout, got %d", got.Quantity)
			}

			if err := shop.Mutations().Restock(ctx, item.ID); !errors.Is(err, storefront.ErrInvalidRestockAmount) {
				t.Errorf("expected ErrInvalidRestockAmount, got: %v", err)
			}
			shop.Mutations().SetRestockAmount(item.ID, "3")
			if err := shop.Mutations().Restock(ctx, item.ID); !errors.Is(err, domain.ErrForbidden) {
				t.Errorf("expected ErrForbidden for buyer restock, got: %v", err)
			}
		})
	}
}

func TestStorefront_StaleTokenLogsOut(t *testing.T) {
	for name, newClient := range transports() {
		t.Run(name, func(t *testing.T) {
			c := newClient(t)
			ctx := context.Background()

			store := storage.NewMemorySessionStore()
			store.Save(ctx, domain.Session{Token: "expired-or-forged", Email: "ghost@shop.test"})

			shop := storefront.New(c, store, storefront.Options{})
			ok, err := shop.Start(ctx)
			if ok || !errors.Is(err, storefront.ErrSessionExpired) {
				t.Errorf("expected expired session, got %v, %v", ok, err)
			}

			stored, _ := store.Load(ctx)
			if stored.Active() {
				t.Error("expected stored session cleared")
			}
		})
	}
}
