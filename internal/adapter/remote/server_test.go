package remote

import (
	"context"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rl1809/sweet-shop/internal/adapter/auth"
	"github.com/rl1809/sweet-shop/internal/adapter/handler"
	"github.com/rl1809/sweet-shop/internal/adapter/rpc"
	"github.com/rl1809/sweet-shop/internal/adapter/storage"
	"github.com/rl1809/sweet-shop/internal/core/service"
)

const (
	adminEmail    = "admin@shop.test"
	adminPassword = "admin-pass"
)

func newTestService(t *testing.T) *service.InventoryService {
	t.Helper()
	repo := storage.NewMemoryAdapter()
	svc := service.NewInventoryService(repo, repo, auth.NewJWTTokens("test-secret", time.Hour), auth.NewBcryptHasher(bcrypt.MinCost), 100)
	t.Cleanup(svc.Close)
	go func() {
		for range svc.Events() {
		}
	}()

	if err := svc.EnsureAdmin(context.Background(), adminEmail, adminPassword); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	return svc
}

func newHTTPTestClient(t *testing.T) *HTTPClient {
	t.Helper()
	router := mux.NewRouter()
	handler.NewHTTPHandler(newTestService(t)).RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, srv.Client())
}

func newGRPCTestClient(t *testing.T) *GRPCClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	srv := grpc.NewServer()
	rpc.RegisterInventoryServer(srv, handler.NewGRPCHandler(newTestService(t)))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufnet: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewGRPCClient(conn)
}
