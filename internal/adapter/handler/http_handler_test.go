package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/rl1809/sweet-shop/internal/adapter/auth"
	"github.com/rl1809/sweet-shop/internal/adapter/storage"
	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/core/service"
)

const (
	adminEmail    = "admin@shop.test"
	adminPassword = "admin-pass"
)

func newTestRouter(t *testing.T) *mux.Router {
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

	router := mux.NewRouter()
	NewHTTPHandler(svc).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, router http.Handler, email, password string) LoginHTTPResponse {
	t.Helper()
	rec := serve(router, http.MethodPost, "/api/auth/login", "", CredentialsHTTPRequest{Email: email, Password: password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", email, rec.Code, rec.Body)
	}
	var resp LoginHTTPResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorHTTPResponse {
	t.Helper()
	var resp ErrorHTTPResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRegister(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, http.MethodPost, "/api/auth/register", "", CredentialsHTTPRequest{Email: "a@b.c", Password: "pass"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}

	rec = serve(router, http.MethodPost, "/api/auth/register", "", CredentialsHTTPRequest{Email: "a@b.c", Password: "pass"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate email, got %d", rec.Code)
	}
	if code := decodeError(t, rec).Code; code != "email_taken" {
		t.Errorf("expected email_taken, got %q", code)
	}

	rec = serve(router, http.MethodPost, "/api/auth/register", "", CredentialsHTTPRequest{Email: "bad", Password: "pass"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for invalid email, got %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	router := newTestRouter(t)

	resp := login(t, router, adminEmail, adminPassword)
	if resp.AccessToken == "" || resp.TokenType != "bearer" || !resp.IsAdmin {
		t.Errorf("unexpected login response: %+v", resp)
	}

	rec := serve(router, http.MethodPost, "/api/auth/login", "", CredentialsHTTPRequest{Email: adminEmail, Password: "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if code := decodeError(t, rec).Code; code != "invalid_credentials" {
		t.Errorf("expected invalid_credentials, got %q", code)
	}
}

func TestSweets_RequireToken(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, http.MethodGet, "/api/sweets", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if code := decodeError(t, rec).Code; code != "unauthorized" {
		t.Errorf("expected unauthorized, got %q", code)
	}

	rec = serve(router, http.MethodGet, "/api/sweets", "forged.token.value", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for forged token, got %d", rec.Code)
	}
}

func TestSweets_Lifecycle(t *testing.T) {
	router := newTestRouter(t)
	admin := login(t, router, adminEmail, adminPassword).AccessToken

	fields := domain.ItemFields{Name: "Gulab Jamun", Category: domain.CategoryIndian, Price: 6, Quantity: 1}
	rec := serve(router, http.MethodPost, "/api/sweets", admin, fields)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var item domain.Item
	json.NewDecoder(rec.Body).Decode(&item)

	rec = serve(router, http.MethodGet, "/api/sweets", admin, nil)
	var items []domain.Item
	json.NewDecoder(rec.Body).Decode(&items)
	if len(items) != 1 || items[0].Name != "Gulab Jamun" {
		t.Fatalf("unexpected list: %+v", items)
	}

	path := "/api/sweets/" + itoa(item.ID)
	rec = serve(router, http.MethodPost, path+"/purchase", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("purchase: expected 200, got %d", rec.Code)
	}
	var stock StockHTTPResponse
	json.NewDecoder(rec.Body).Decode(&stock)
	if stock.Quantity != 0 {
		t.Errorf("expected 0 left, got %d", stock.Quantity)
	}

	rec = serve(router, http.MethodPost, path+"/purchase", admin, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 when out of stock, got %d", rec.Code)
	}
	if code := decodeError(t, rec).Code; code != "insufficient_stock" {
		t.Errorf("expected insufficient_stock, got %q", code)
	}

	rec = serve(router, http.MethodPost, path+"/restock", admin, RestockHTTPRequest{Amount: 4})
	json.NewDecoder(rec.Body).Decode(&stock)
	if rec.Code != http.StatusOK || stock.Quantity != 4 {
		t.Errorf("restock: got %d, quantity %d", rec.Code, stock.Quantity)
	}

	fields.Price = 7
	rec = serve(router, http.MethodPut, path, admin, fields)
	if rec.Code != http.StatusOK {
		t.Errorf("update: expected 200, got %d", rec.Code)
	}

	rec = serve(router, http.MethodDelete, path, admin, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete: expected 200, got %d", rec.Code)
	}
	rec = serve(router, http.MethodDelete, path, admin, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestSweets_AdminOnly(t *testing.T) {
	router := newTestRouter(t)
	serve(router, http.MethodPost, "/api/auth/register", "", CredentialsHTTPRequest{Email: "u@b.c", Password: "pass"})
	user := login(t, router, "u@b.c", "pass").AccessToken

	fields := domain.ItemFields{Name: "Fudge", Category: domain.CategoryCandy, Price: 2, Quantity: 5}
	rec := serve(router, http.MethodPost, "/api/sweets", user, fields)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
	if code := decodeError(t, rec).Code; code != "forbidden" {
		t.Errorf("expected forbidden, got %q", code)
	}
}

func TestSearch(t *testing.T) {
	router := newTestRouter(t)
	admin := login(t, router, adminEmail, adminPassword).AccessToken

	serve(router, http.MethodPost, "/api/sweets", admin, domain.ItemFields{Name: "Milk Chocolate", Category: domain.CategoryChocolate, Price: 3, Quantity: 5})
	serve(router, http.MethodPost, "/api/sweets", admin, domain.ItemFields{Name: "Dark Chocolate", Category: domain.CategoryChocolate, Price: 9, Quantity: 5})
	serve(router, http.MethodPost, "/api/sweets", admin, domain.ItemFields{Name: "Rasgulla", Category: domain.CategoryIndian, Price: 4, Quantity: 5})

	tests := []struct {
		query string
		want  int
	}{
		{"name=chocolate", 2},
		{"category=indian", 1},
		{"min_price=3&max_price=4", 2},
		{"name=chocolate&max_price=5", 1},
		{"", 3},
	}
	for _, tt := range tests {
		rec := serve(router, http.MethodGet, "/api/sweets/search?"+tt.query, admin, nil)
		var items []domain.Item
		json.NewDecoder(rec.Body).Decode(&items)
		if len(items) != tt.want {
			t.Errorf("query %q: expected %d items, got %d", tt.query, tt.want, len(items))
		}
	}

	rec := serve(router, http.MethodGet, "/api/sweets/search?min_price=cheap", admin, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for bad price, got %d", rec.Code)
	}
}

func TestFilterHTTP_EmptyResultIsArray(t *testing.T) {
	router := newTestRouter(t)
	admin := login(t, router, adminEmail, adminPassword).AccessToken

	rec := serve(router, http.MethodGet, "/api/sweets/search?name=none", admin, nil)
	if body := bytes.TrimSpace(rec.Body.Bytes()); string(body) != "[]" {
		t.Errorf("expected empty JSON array, got %s", body)
	}
}

func itoa(id domain.ItemID) string {
	return strconv.FormatInt(int64(id), 10)
}
