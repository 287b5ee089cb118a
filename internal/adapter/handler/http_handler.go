package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/port"
)

// HTTPHandler exposes the inventory service as the REST API the storefront
// client speaks.
type HTTPHandler struct {
	inventory port.InventoryService
}

type CredentialsHTTPRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginHTTPResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Email       string `json:"email"`
	IsAdmin     bool   `json:"is_admin"`
}

type RegisterHTTPResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type RestockHTTPRequest struct {
	Amount int `json:"amount"`
}

type StockHTTPResponse struct {
	ID       domain.ItemID `json:"id"`
	Quantity int           `json:"quantity"`
}

type ErrorHTTPResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func NewHTTPHandler(inventory port.InventoryService) *HTTPHandler {
	return &HTTPHandler{inventory: inventory}
}

func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/register", h.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.Login).Methods(http.MethodPost)

	sweets := router.PathPrefix("/api/sweets").Subrouter()
	sweets.HandleFunc("", h.ListItems).Methods(http.MethodGet)
	sweets.HandleFunc("", h.CreateItem).Methods(http.MethodPost)
	sweets.HandleFunc("/search", h.SearchItems).Methods(http.MethodGet)
	sweets.HandleFunc("/{id:[0-9]+}", h.UpdateItem).Methods(http.MethodPut)
	sweets.HandleFunc("/{id:[0-9]+}", h.DeleteItem).Methods(http.MethodDelete)
	sweets.HandleFunc("/{id:[0-9]+}/purchase", h.PurchaseItem).Methods(http.MethodPost)
	sweets.HandleFunc("/{id:[0-9]+}/restock", h.RestockItem).Methods(http.MethodPost)
}

func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body", domain.ErrInvalidInput)
		return
	}

	id, err := h.inventory.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, RegisterHTTPResponse{ID: id, Email: req.Email})
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body", domain.ErrInvalidInput)
		return
	}

	session, err := h.inventory.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginHTTPResponse{
		AccessToken: session.Token,
		TokenType:   "bearer",
		Email:       session.Email,
		IsAdmin:     session.IsAdmin,
	})
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.ListItems(r.Context(), bearerToken(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *HTTPHandler) SearchItems(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items, err := h.inventory.SearchItems(r.Context(), bearerToken(r), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var fields domain.ItemFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body", domain.ErrInvalidInput)
		return
	}

	item, err := h.inventory.CreateItem(r.Context(), bearerToken(r), fields)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var fields domain.ItemFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body", domain.ErrInvalidInput)
		return
	}

	item, err := h.inventory.UpdateItem(r.Context(), bearerToken(r), itemID(r), fields)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *HTTPHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.DeleteItem(r.Context(), bearerToken(r), itemID(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Sweet deleted successfully"})
}

func (h *HTTPHandler) PurchaseItem(w http.ResponseWriter, r *http.Request) {
	id := itemID(r)
	quantity, err := h.inventory.PurchaseItem(r.Context(), bearerToken(r), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StockHTTPResponse{ID: id, Quantity: quantity})
}

func (h *HTTPHandler) RestockItem(w http.ResponseWriter, r *http.Request) {
	var req RestockHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body", domain.ErrInvalidInput)
		return
	}

	id := itemID(r)
	quantity, err := h.inventory.RestockItem(r.Context(), bearerToken(r), id, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StockHTTPResponse{ID: id, Quantity: quantity})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseFilter(r *http.Request) (domain.Filter, error) {
	q := r.URL.Query()
	var filter domain.Filter

	if name := q.Get("name"); name != "" {
		filter.Name = &name
	}
	if category := q.Get("category"); category != "" {
		c := domain.Category(category)
		filter.Category = &c
	}
	bounds := []struct {
		key string
		dst **float64
	}{
		{"min_price", &filter.MinPrice},
		{"max_price", &filter.MaxPrice},
	}
	for _, b := range bounds {
		raw := q.Get(b.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Filter{}, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, b.key)
		}
		*b.dst = &v
	}
	return filter, nil
}

func itemID(r *http.Request) domain.ItemID {
	// the route pattern guarantees digits
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return domain.ItemID(id)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func nonNil(items []domain.Item) []domain.Item {
	if items == nil {
		return []domain.Item{}
	}
	return items
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrEmailTaken):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusUnprocessableEntity
	}

	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = "internal error"
	}
	writeError(w, status, detail, err)
}

func writeError(w http.ResponseWriter, status int, detail string, err error) {
	writeJSON(w, status, ErrorHTTPResponse{Detail: detail, Code: domain.ErrorCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
