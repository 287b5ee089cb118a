package rpc

import "github.com/rl1809/sweet-shop/internal/core/domain"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Email       string `json:"email"`
	IsAdmin     bool   `json:"is_admin"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	ID int64 `json:"id"`
}

type ListRequest struct{}

type SearchRequest struct {
	Filter domain.Filter `json:"filter"`
}

type ItemsResponse struct {
	Items []domain.Item `json:"items"`
}

type CreateRequest struct {
	Fields domain.ItemFields `json:"fields"`
}

type UpdateRequest struct {
	ID     domain.ItemID     `json:"id"`
	Fields domain.ItemFields `json:"fields"`
}

type ItemResponse struct {
	Item domain.Item `json:"item"`
}

type DeleteRequest struct {
	ID domain.ItemID `json:"id"`
}

type DeleteResponse struct{}

type PurchaseRequest struct {
	ID domain.ItemID `json:"id"`
}

type RestockRequest struct {
	ID     domain.ItemID `json:"id"`
	Amount int           `json:"amount"`
}

type StockResponse struct {
	ID       domain.ItemID `json:"id"`
	Quantity int           `json:"quantity"`
}
