package inventoryv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	InventoryServiceName  = "inventory.v1.InventoryService"
	ProductServiceName    = "inventory.v1.ProductService"
	PermissionServiceName = "inventory.v1.PermissionService"
)

// unary builds a method descriptor that decodes Req, runs the interceptor chain and dispatches to call.
func unary[S, Req, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

type InventoryServiceServer interface {
	CreateProduct(context.Context, *CreateProductRequest) (*CreateProductResponse, error)
	AddStock(context.Context, *AddStockRequest) (*AddStockResponse, error)
	SelectLot(context.Context, *SelectLotRequest) (*LotResponse, error)
	Sell(context.Context, *SellRequest) (*SellResponse, error)
	Transfer(context.Context, *TransferRequest) (*TransferResponse, error)
	ApproveTransfer(context.Context, *TransitionRequest) (*TransferStatusResponse, error)
	DispatchTransfer(context.Context, *TransitionRequest) (*TransferStatusResponse, error)
	CompleteTransfer(context.Context, *TransitionRequest) (*TransferStatusResponse, error)
	RejectTransfer(context.Context, *TransitionRequest) (*TransferStatusResponse, error)
	GetTransfer(context.Context, *GetTransferRequest) (*TransferStatusResponse, error)
	ListTransfers(context.Context, *ListTransfersRequest) (*ListTransfersResponse, error)
	ListLots(context.Context, *ProductIDRequest) (*ListLotsResponse, error)
	StockByLocation(context.Context, *ProductIDRequest) (*StockByLocationResponse, error)
	ListMovements(context.Context, *ListMovementsRequest) (*ListMovementsResponse, error)
	RecomputeStock(context.Context, *ProductIDRequest) (*ProductResponse, error)
	mustEmbedUnimplementedInventoryServiceServer()
}

type UnimplementedInventoryServiceServer struct{}

func (UnimplementedInventoryServiceServer) CreateProduct(context.Context, *CreateProductRequest) (*CreateProductResponse, error) {
	return nil, unimplemented("CreateProduct")
}
func (UnimplementedInventoryServiceServer) AddStock(context.Context, *AddStockRequest) (*AddStockResponse, error) {
	return nil, unimplemented("AddStock")
}
func (UnimplementedInventoryServiceServer) SelectLot(context.Context, *SelectLotRequest) (*LotResponse, error) {
	return nil, unimplemented("SelectLot")
}
func (UnimplementedInventoryServiceServer) Sell(context.Context, *SellRequest) (*SellResponse, error) {
	return nil, unimplemented("Sell")
}
func (UnimplementedInventoryServiceServer) Transfer(context.Context, *TransferRequest) (*TransferResponse, error) {
	return nil, unimplemented("Transfer")
}
func (UnimplementedInventoryServiceServer) ApproveTransfer(context.Context, *TransitionRequest) (*TransferStatusResponse, error) {
	return nil, unimplemented("ApproveTransfer")
}
func (UnimplementedInventoryServiceServer) DispatchTransfer(context.Context, *TransitionRequest) (*TransferStatusResponse, error) {
	return nil, unimplemented("DispatchTransfer")
}
func (UnimplementedInventoryServiceServer) CompleteTransfer(context.Context, *TransitionRequest) (*TransferStatusResponse, error) {
	return nil, unimplemented("CompleteTransfer")
}
func (UnimplementedInventoryServiceServer) RejectTransfer(context.Context, *TransitionRequest) (*TransferStatusResponse, error) {
	return nil, unimplemented("RejectTransfer")
}
func (UnimplementedInventoryServiceServer) GetTransfer(context.Context, *GetTransferRequest) (*TransferStatusResponse, error) {
	return nil, unimplemented("GetTransfer")
}
func (UnimplementedInventoryServiceServer) ListTransfers(context.Context, *ListTransfersRequest) (*ListTransfersResponse, error) {
	return nil, unimplemented("ListTransfers")
}
func (UnimplementedInventoryServiceServer) ListLots(context.Context, *ProductIDRequest) (*ListLotsResponse, error) {
	return nil, unimplemented("ListLots")
}
func (UnimplementedInventoryServiceServer) StockByLocation(context.Context, *ProductIDRequest) (*StockByLocationResponse, error) {
	return nil, unimplemented("StockByLocation")
}
func (UnimplementedInventoryServiceServer) ListMovements(context.Context, *ListMovementsRequest) (*ListMovementsResponse, error) {
	return nil, unimplemented("ListMovements")
}
func (UnimplementedInventoryServiceServer) RecomputeStock(context.Context, *ProductIDRequest) (*ProductResponse, error) {
	return nil, unimplemented("RecomputeStock")
}
func (UnimplementedInventoryServiceServer) mustEmbedUnimplementedInventoryServiceServer() {}

var InventoryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: InventoryServiceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(InventoryServiceName, "CreateProduct", InventoryServiceServer.CreateProduct),
		unary(InventoryServiceName, "AddStock", InventoryServiceServer.AddStock),
		unary(InventoryServiceName, "SelectLot", InventoryServiceServer.SelectLot),
		unary(InventoryServiceName, "Sell", InventoryServiceServer.Sell),
		unary(InventoryServiceName, "Transfer", InventoryServiceServer.Transfer),
		unary(InventoryServiceName, "ApproveTransfer", InventoryServiceServer.ApproveTransfer),
		unary(InventoryServiceName, "DispatchTransfer", InventoryServiceServer.DispatchTransfer),
		unary(InventoryServiceName, "CompleteTransfer", InventoryServiceServer.CompleteTransfer),
		unary(InventoryServiceName, "RejectTransfer", InventoryServiceServer.RejectTransfer),
		unary(InventoryServiceName, "GetTransfer", InventoryServiceServer.GetTransfer),
		unary(InventoryServiceName, "ListTransfers", InventoryServiceServer.ListTransfers),
		unary(InventoryServiceName, "ListLots", InventoryServiceServer.ListLots),
		unary(InventoryServiceName, "StockByLocation", InventoryServiceServer.StockByLocation),
		unary(InventoryServiceName, "ListMovements", InventoryServiceServer.ListMovements),
		unary(InventoryServiceName, "RecomputeStock", InventoryServiceServer.RecomputeStock),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory/v1/inventory.proto",
}

func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&InventoryService_ServiceDesc, srv)
}

type ProductServiceServer interface {
	GetProduct(context.Context, *GetProductRequest) (*ProductResponse, error)
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	UpdateProduct(context.Context, *UpdateProductRequest) (*ProductResponse, error)
	mustEmbedUnimplementedProductServiceServer()
}

type UnimplementedProductServiceServer struct{}

func (UnimplementedProductServiceServer) GetProduct(context.Context, *GetProductRequest) (*ProductResponse, error) {
	return nil, unimplemented("GetProduct")
}
func (UnimplementedProductServiceServer) ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error) {
	return nil, unimplemented("ListProducts")
}
func (UnimplementedProductServiceServer) UpdateProduct(context.Context, *UpdateProductRequest) (*ProductResponse, error) {
	return nil, unimplemented("UpdateProduct")
}
func (UnimplementedProductServiceServer) mustEmbedUnimplementedProductServiceServer() {}

var ProductService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ProductServiceName,
	HandlerType: (*ProductServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ProductServiceName, "GetProduct", ProductServiceServer.GetProduct),
		unary(ProductServiceName, "ListProducts", ProductServiceServer.ListProducts),
		unary(ProductServiceName, "UpdateProduct", ProductServiceServer.UpdateProduct),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory/v1/product.proto",
}

func RegisterProductServiceServer(s grpc.ServiceRegistrar, srv ProductServiceServer) {
	s.RegisterService(&ProductService_ServiceDesc, srv)
}

type PermissionServiceServer interface {
	Check(context.Context, *CheckRequest) (*CheckResponse, error)
	ListLocations(context.Context, *emptypb.Empty) (*ListLocationsResponse, error)
	mustEmbedUnimplementedPermissionServiceServer()
}

type UnimplementedPermissionServiceServer struct{}

func (UnimplementedPermissionServiceServer) Check(context.Context, *CheckRequest) (*CheckResponse, error) {
	return nil, unimplemented("Check")
}
func (UnimplementedPermissionServiceServer) ListLocations(context.Context, *emptypb.Empty) (*ListLocationsResponse, error) {
	return nil, unimplemented("ListLocations")
}
func (UnimplementedPermissionServiceServer) mustEmbedUnimplementedPermissionServiceServer() {}

var PermissionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: PermissionServiceName,
	HandlerType: (*PermissionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(PermissionServiceName, "Check", PermissionServiceServer.Check),
		unary(PermissionServiceName, "ListLocations", PermissionServiceServer.ListLocations),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory/v1/permission.proto",
}

func RegisterPermissionServiceServer(s grpc.ServiceRegistrar, srv PermissionServiceServer) {
	s.RegisterService(&PermissionService_ServiceDesc, srv)
}
