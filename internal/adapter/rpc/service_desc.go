package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "sweetshop.v1.Inventory"

type InventoryServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	ListItems(context.Context, *ListRequest) (*ItemsResponse, error)
	SearchItems(context.Context, *SearchRequest) (*ItemsResponse, error)
	CreateItem(context.Context, *CreateRequest) (*ItemResponse, error)
	UpdateItem(context.Context, *UpdateRequest) (*ItemResponse, error)
	DeleteItem(context.Context, *DeleteRequest) (*DeleteResponse, error)
	PurchaseItem(context.Context, *PurchaseRequest) (*StockResponse, error)
	RestockItem(context.Context, *RestockRequest) (*StockResponse, error)
}

// FullMethod returns the invocation path of an Inventory method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func RegisterInventoryServer(s grpc.ServiceRegistrar, srv InventoryServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Login", InventoryServer.Login),
		unary("Register", InventoryServer.Register),
		unary("ListItems", InventoryServer.ListItems),
		unary("SearchItems", InventoryServer.SearchItems),
		unary("CreateItem", InventoryServer.CreateItem),
		unary("UpdateItem", InventoryServer.UpdateItem),
		unary("DeleteItem", InventoryServer.DeleteItem),
		unary("PurchaseItem", InventoryServer.PurchaseItem),
		unary("RestockItem", InventoryServer.RestockItem),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sweetshop/v1/inventory",
}

func unary[Req, Resp any](method string, call func(InventoryServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(InventoryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(InventoryServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
