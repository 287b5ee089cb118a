package handler

import (
	"context"

	"github.com/rl1809/sweet-shop/internal/adapter/rpc"
	"github.com/rl1809/sweet-shop/internal/port"
)

// GRPCHandler serves the inventory service over gRPC. The bearer token is
// read from the "authorization" metadata key.
type GRPCHandler struct {
	inventory port.InventoryService
}

var _ rpc.InventoryServer = (*GRPCHandler)(nil)

func NewGRPCHandler(inventory port.InventoryService) *GRPCHandler {
	return &GRPCHandler{inventory: inventory}
}

func (h *GRPCHandler) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	session, err := h.inventory.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &rpc.LoginResponse{
		AccessToken: session.Token,
		Email:       session.Email,
		IsAdmin:     session.IsAdmin,
	}, nil
}

func (h *GRPCHandler) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.RegisterResponse, error) {
	id, err := h.inventory.Register(ctx, req.Email, req.Password)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &rpc.RegisterResponse{ID: id}, nil
}

func (h *GRPCHandler) ListItems(ctx context.Context, req *rpc.ListRequest) (*rpc.ItemsResponse, error) {
	items, err := h.inventory.ListItems(ctx, rpc.TokenFrom(ctx))
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &rpc.ItemsResponse{Items: items}, nil
}

func (h *GRPCHandler) SearchItems(ctx context.Context, req *rpc.SearchRequest) (*rpc.ItemsResponse, error) {
	items, err := h.inventory.SearchItems(ctx, rpc.TokenFrom(ctx), req.Filter)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &rpc.ItemsResponse{Items: items}, nil
}

func (h *GRPCHandler) CreateItem(ctx context.Context, req *rpc.CreateRequest) (*rpc.ItemResponse, error) {
	item, err := h.inventory.CreateItem(ctx, rpc.TokenFrom(ctx), req.Fields)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &rpc.ItemResponse{Item: *item}, nil
}

func (h *GRPCHandler) UpdateItem(ctx context.Context, req *rpc.UpdateRequest) (*rpc.ItemResponse, error) {
	item, err := h.inventory.UpdateItem(ctx, rpc.TokenFrom(ctx), req.ID, req.Fields)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &rpc.ItemResponse{Item: *item}, nil
}

func (h *GRPCHandler) DeleteItem(ctx context.Context, req *rpc.DeleteRequest) (*rpc.DeleteResponse, error) {
	if err := h.inventory.DeleteItem(ctx, rpc.TokenFrom(ctx), req.ID); err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &rpc.DeleteResponse{}, nil
}

func (h *GRPCHandler) PurchaseItem(ctx context.Context, req *rpc.PurchaseRequest) (*rpc.StockResponse, error) {
	quantity, err := h.inventory.PurchaseItem(ctx, rpc.TokenFrom(ctx), req.ID)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &rpc.StockResponse{ID: req.ID, Quantity: quantity}, nil
}

func (h *GRPCHandler) RestockItem(ctx context.Context, req *rpc.RestockRequest) (*rpc.StockResponse, error) {
	quantity, err := h.inventory.RestockItem(ctx, rpc.TokenFrom(ctx), req.ID, req.Amount)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return &rpc.StockResponse{ID: req.ID, Quantity: quantity}, nil
}
