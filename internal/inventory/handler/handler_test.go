package handler_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	inventoryv1 "github.com/fekuna/omnipos-inventory-service/api/inventoryv1"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/handler"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/location"
	locationrepo "github.com/fekuna/omnipos-inventory-service/internal/location/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/permission"
	productuc "github.com/fekuna/omnipos-inventory-service/internal/product/usecase"
	"github.com/fekuna/omnipos-inventory-service/pkg/cache"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	warehouse int64 = 1
	showroom  int64 = 2
)

type nopPublisher struct{}

func (nopPublisher) PublishJSON(ctx context.Context, key string, v any) error { return nil }

func newHandler(t *testing.T) *handler.InventoryHandler {
	t.Helper()
	log := logger.NewNop()
	mr := miniredis.RunT(t)
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	repo := repository.NewMemoryRepository()
	products := productuc.NewProductUseCase(repo, rc, nil, log)
	inv := usecase.NewInventoryUseCase(repo, rc, nopPublisher{}, products, log)

	dir := location.NewDirectory(locationrepo.NewMemoryRepository(
		model.Location{ID: warehouse, Name: "Central Warehouse", Type: model.LocationWarehouse, Status: model.LocationActive},
		model.Location{ID: showroom, Name: "City Showroom", Type: model.LocationShowroom, Status: model.LocationActive},
	), log)
	require.NoError(t, dir.Load(context.Background()))

	return handler.NewInventoryHandler(inv, products, permission.NewEvaluator(dir, log), log)
}

func as(u *model.User) context.Context {
	return auth.WithUser(context.Background(), u)
}

func superAdmin() *model.User {
	return &model.User{BaseModel: model.BaseModel{ID: "root"}, Role: model.RoleSuperAdmin}
}

func admin() *model.User {
	return &model.User{
		BaseModel:   model.BaseModel{ID: "admin-1"},
		Role:        model.RoleAdmin,
		Permissions: &model.Permissions{Locations: []int64{warehouse, showroom}},
	}
}

func salesManager() *model.User {
	loc := showroom
	return &model.User{
		BaseModel:          model.BaseModel{ID: "sm-1"},
		Role:               model.RoleSalesManager,
		Permissions:        &model.Permissions{},
		AssignedLocationID: &loc,
	}
}

func code(err error) codes.Code {
	return status.Code(err)
}

func createProduct(t *testing.T, h *handler.InventoryHandler, qty int64) *inventoryv1.CreateProductResponse {
	t.Helper()
	res, err := h.CreateProduct(as(admin()), &inventoryv1.CreateProductRequest{
		Name:            "Walnut Side Table",
		LocationID:      warehouse,
		InitialQuantity: qty,
		PurchasePrice:   "800",
		SellingPrice:    "1200",
	})
	require.NoError(t, err)
	return res
}

func TestCreateProduct_RequiresUser(t *testing.T) {
	h := newHandler(t)
	_, err := h.CreateProduct(context.Background(), &inventoryv1.CreateProductRequest{Name: "x", LocationID: warehouse})
	assert.Equal(t, codes.Unauthenticated, code(err))
}

func TestCreateProduct_AdminAtWarehouse(t *testing.T) {
	h := newHandler(t)
	res := createProduct(t, h, 10)

	assert.Equal(t, int64(10), res.Product.TotalStock)
	require.NotNil(t, res.Lot)
	assert.Equal(t, int64(1), res.Lot.LotNumber)
	assert.Equal(t, "120", res.Lot.PerUnitPrice)
}

func TestCreateProduct_Denied(t *testing.T) {
	h := newHandler(t)

	_, err := h.CreateProduct(as(admin()), &inventoryv1.CreateProductRequest{Name: "x", LocationID: showroom})
	assert.Equal(t, codes.PermissionDenied, code(err))

	_, err = h.CreateProduct(as(salesManager()), &inventoryv1.CreateProductRequest{Name: "x", LocationID: warehouse})
	assert.Equal(t, codes.PermissionDenied, code(err))
}

func TestCreateProduct_BadPrice(t *testing.T) {
	h := newHandler(t)
	_, err := h.CreateProduct(as(admin()), &inventoryv1.CreateProductRequest{
		Name: "x", LocationID: warehouse, PurchasePrice: "abc",
	})
	assert.Equal(t, codes.InvalidArgument, code(err))
}

func TestSell_SalesManagerScopedToShowroom(t *testing.T) {
	h := newHandler(t)
	p := createProduct(t, h, 10)

	_, err := h.Sell(as(salesManager()), &inventoryv1.SellRequest{ProductID: p.Product.ID, Quantity: 1, LocationID: warehouse})
	assert.Equal(t, codes.PermissionDenied, code(err))

	_, err = h.Sell(as(salesManager()), &inventoryv1.SellRequest{ProductID: p.Product.ID, Quantity: 11, LocationID: showroom})
	assert.Equal(t, codes.FailedPrecondition, code(err))
}

func TestSell_LotOutsideCallerScope(t *testing.T) {
	h := newHandler(t)
	p := createProduct(t, h, 10)

	_, err := h.Sell(as(salesManager()), &inventoryv1.SellRequest{ProductID: p.Product.ID, Quantity: 3, LocationID: showroom})
	assert.Equal(t, codes.PermissionDenied, code(err))

	_, err = h.Sell(as(salesManager()), &inventoryv1.SellRequest{
		ProductID: p.Product.ID, Quantity: 3, LocationID: showroom, LotID: p.Lot.ID,
	})
	assert.Equal(t, codes.PermissionDenied, code(err))

	lots, err := h.ListLots(as(admin()), &inventoryv1.ProductIDRequest{ProductID: p.Product.ID})
	require.NoError(t, err)
	require.Len(t, lots.Lots, 1)
	assert.Equal(t, int64(10), lots.Lots[0].Quantity)

	_, err = h.Sell(as(admin()), &inventoryv1.SellRequest{ProductID: p.Product.ID, Quantity: 3, LocationID: showroom})
	assert.Equal(t, codes.PermissionDenied, code(err))

	sold, err := h.Sell(as(superAdmin()), &inventoryv1.SellRequest{ProductID: p.Product.ID, Quantity: 3, LocationID: showroom})
	require.NoError(t, err)
	assert.Equal(t, int64(7), sold.Lot.Quantity)
}

func TestSell_MissingProduct(t *testing.T) {
	h := newHandler(t)
	_, err := h.Sell(as(admin()), &inventoryv1.SellRequest{ProductID: "missing", Quantity: 1})
	assert.Equal(t, codes.NotFound, code(err))

	_, err = h.RecomputeStock(as(admin()), &inventoryv1.ProductIDRequest{ProductID: "missing"})
	assert.Equal(t, codes.NotFound, code(err))
}

func TestTransferLifecycle(t *testing.T) {
	h := newHandler(t)
	p := createProduct(t, h, 10)

	tr, err := h.Transfer(as(admin()), &inventoryv1.TransferRequest{
		ProductID:      p.Product.ID,
		FromLocationID: warehouse,
		ToLocationID:   showroom,
		Quantity:       4,
		SourceLotID:    p.Lot.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "requested", tr.Transfer.Status)
	assert.Equal(t, int64(6), tr.SourceLot.Quantity)
	assert.Equal(t, int64(4), tr.DestinationLot.Quantity)
	assert.Equal(t, p.Lot.ID, tr.DestinationLot.SourceLotID)

	id := tr.Transfer.ID

	_, err = h.ApproveTransfer(as(admin()), &inventoryv1.TransitionRequest{TransferID: id})
	assert.Equal(t, codes.PermissionDenied, code(err))

	_, err = h.DispatchTransfer(as(superAdmin()), &inventoryv1.TransitionRequest{TransferID: id})
	assert.Equal(t, codes.FailedPrecondition, code(err))

	res, err := h.ApproveTransfer(as(superAdmin()), &inventoryv1.TransitionRequest{TransferID: id})
	require.NoError(t, err)
	assert.Equal(t, "approved", res.Transfer.Status)

	res, err = h.DispatchTransfer(as(admin()), &inventoryv1.TransitionRequest{TransferID: id})
	require.NoError(t, err)
	assert.Equal(t, "in_transit", res.Transfer.Status)

	res, err = h.CompleteTransfer(as(admin()), &inventoryv1.TransitionRequest{TransferID: id})
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Transfer.Status)

	sold, err := h.Sell(as(salesManager()), &inventoryv1.SellRequest{
		ProductID: p.Product.ID, Quantity: 2, LocationID: showroom, LotID: tr.DestinationLot.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), sold.Lot.Quantity)
	assert.Equal(t, "240", sold.Movement.Amount)
}

func TestTransfer_SalesManagerCannotTransfer(t *testing.T) {
	h := newHandler(t)
	_, err := h.Transfer(as(salesManager()), &inventoryv1.TransferRequest{
		ProductID: "p", FromLocationID: showroom, ToLocationID: warehouse, Quantity: 1, SourceLotID: "l",
	})
	assert.Equal(t, codes.PermissionDenied, code(err))
}

func TestGetTransfer_NotFound(t *testing.T) {
	h := newHandler(t)
	_, err := h.GetTransfer(as(admin()), &inventoryv1.GetTransferRequest{TransferID: "missing"})
	assert.Equal(t, codes.NotFound, code(err))
}

func TestAddStock_DefaultsToProductLocation(t *testing.T) {
	h := newHandler(t)
	p := createProduct(t, h, 5)

	res, err := h.AddStock(as(admin()), &inventoryv1.AddStockRequest{
		ProductID: p.Product.ID, Quantity: 3, PurchasePrice: "300", SellingPrice: "450",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Lot.LotNumber)
	assert.Equal(t, warehouse, res.Lot.LocationID)
	assert.Equal(t, int64(8), res.Product.TotalStock)

	_, err = h.AddStock(as(admin()), &inventoryv1.AddStockRequest{ProductID: "missing", Quantity: 1})
	assert.Equal(t, codes.NotFound, code(err))
}

func TestListLotsAndStock(t *testing.T) {
	h := newHandler(t)
	p := createProduct(t, h, 5)

	lots, err := h.ListLots(as(salesManager()), &inventoryv1.ProductIDRequest{ProductID: p.Product.ID})
	require.NoError(t, err)
	assert.Len(t, lots.Lots, 1)

	stock, err := h.StockByLocation(as(admin()), &inventoryv1.ProductIDRequest{ProductID: p.Product.ID})
	require.NoError(t, err)
	require.Len(t, stock.Locations, 1)
	assert.Equal(t, int64(5), stock.Locations[0].Quantity)
}
