package remote

import (
	"context"

	"google.golang.org/grpc"

	"github.com/rl1809/sweet-shop/internal/adapter/rpc"
	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/port"
)

// GRPCClient speaks the gRPC inventory API with the JSON codec.
type GRPCClient struct {
	conn grpc.ClientConnInterface
}

var _ port.InventoryService = (*GRPCClient)(nil)

func NewGRPCClient(conn grpc.ClientConnInterface) *GRPCClient {
	return &GRPCClient{conn: conn}
}

func (c *GRPCClient) invoke(ctx context.Context, method, token string, in, out any) error {
	err := c.conn.Invoke(rpc.WithToken(ctx, token), rpc.FullMethod(method), in, out, grpc.CallContentSubtype(rpc.CodecName))
	return rpc.FromStatus(err)
}

func (c *GRPCClient) Login(ctx context.Context, email, password string) (domain.Session, error) {
	var out rpc.LoginResponse
	if err := c.invoke(ctx, "Login", "", &rpc.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return domain.Session{}, err
	}
	return domain.Session{Token: out.AccessToken, Email: out.Email, IsAdmin: out.IsAdmin}, nil
}

func (c *GRPCClient) Register(ctx context.Context, email, password string) (int64, error) {
	var out rpc.RegisterResponse
	if err := c.invoke(ctx, "Register", "", &rpc.RegisterRequest{Email: email, Password: password}, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *GRPCClient) ListItems(ctx context.Context, token string) ([]domain.Item, error) {
	var out rpc.ItemsResponse
	if err := c.invoke(ctx, "ListItems", token, &rpc.ListRequest{}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *GRPCClient) SearchItems(ctx context.Context, token string, filter domain.Filter) ([]domain.Item, error) {
	var out rpc.ItemsResponse
	if err := c.invoke(ctx, "SearchItems", token, &rpc.SearchRequest{Filter: filter}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *GRPCClient) CreateItem(ctx context.Context, token string, fields domain.ItemFields) (*domain.Item, error) {
	var out rpc.ItemResponse
	if err := c.invoke(ctx, "CreateItem", token, &rpc.CreateRequest{Fields: fields}, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

func (c *GRPCClient) UpdateItem(ctx context.Context, token string, id domain.ItemID, fields domain.ItemFields) (*domain.Item, error) {
	var out rpc.ItemResponse
	if err := c.invoke(ctx, "UpdateItem", token, &rpc.UpdateRequest{ID: id, Fields: fields}, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

func (c *GRPCClient) DeleteItem(ctx context.Context, token string, id domain.ItemID) error {
	return c.invoke(ctx, "DeleteItem", token, &rpc.DeleteRequest{ID: id}, &rpc.DeleteResponse{})
}

func (c *GRPCClient) PurchaseItem(ctx context.Context, token string, id domain.ItemID) (int, error) {
	var out rpc.StockResponse
	if err := c.invoke(ctx, "PurchaseItem", token, &rpc.PurchaseRequest{ID: id}, &out); err != nil {
		return 0, err
	}
	return out.Quantity, nil
}

func (c *GRPCClient) RestockItem(ctx context.Context, token string, id domain.ItemID, amount int) (int, error) {
	var out rpc.StockResponse
	if err := c.invoke(ctx, "RestockItem", token, &rpc.RestockRequest{ID: id, Amount: amount}, &out); err != nil {
		return 0, err
	}
	return out.Quantity, nil
}
