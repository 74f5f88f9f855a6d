package handler_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	inventoryv1 "github.com/fekuna/omnipos-inventory-service/api/inventoryv1"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/location"
	locationrepo "github.com/fekuna/omnipos-inventory-service/internal/location/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/permission"
	"github.com/fekuna/omnipos-inventory-service/internal/product/handler"
	"github.com/fekuna/omnipos-inventory-service/internal/product/usecase"
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

func newHandler(t *testing.T) *handler.ProductHandler {
	t.Helper()
	log := logger.NewNop()
	mr := miniredis.RunT(t)
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	repo := repository.NewMemoryRepository()
	now := time.Now()
	for _, p := range []model.Product{
		{BaseModel: model.BaseModel{ID: "p1", CreatedAt: now, UpdatedAt: now}, Name: "Oak Table", ProductCode: "PRD-0000000A", LocationID: warehouse, TotalStock: 2, MinimumThreshold: 5},
		{BaseModel: model.BaseModel{ID: "p2", CreatedAt: now, UpdatedAt: now}, Name: "Rattan Lamp", ProductCode: "PRD-0000000B", LocationID: showroom, TotalStock: 9},
	} {
		p := p
		require.NoError(t, repo.InsertProduct(context.Background(), &p))
	}

	dir := location.NewDirectory(locationrepo.NewMemoryRepository(
		model.Location{ID: warehouse, Name: "Central Warehouse", Type: model.LocationWarehouse},
		model.Location{ID: showroom, Name: "City Showroom", Type: model.LocationShowroom},
	), log)
	require.NoError(t, dir.Load(context.Background()))

	return handler.NewProductHandler(usecase.NewProductUseCase(repo, rc, nil, log), permission.NewEvaluator(dir, log), log)
}

func salesManager() context.Context {
	loc := showroom
	return auth.WithUser(context.Background(), &model.User{
		BaseModel:          model.BaseModel{ID: "sm-1"},
		Role:               model.RoleSalesManager,
		Permissions:        &model.Permissions{},
		AssignedLocationID: &loc,
	})
}

func admin() context.Context {
	return auth.WithUser(context.Background(), &model.User{
		BaseModel:   model.BaseModel{ID: "admin-1"},
		Role:        model.RoleAdmin,
		Permissions: &model.Permissions{Locations: []int64{warehouse, showroom}},
	})
}

func TestGetProduct_ScopedByHomeLocation(t *testing.T) {
	h := newHandler(t)

	res, err := h.GetProduct(salesManager(), &inventoryv1.GetProductRequest{ID: "p2"})
	require.NoError(t, err)
	assert.Equal(t, "Rattan Lamp", res.Product.Name)

	_, err = h.GetProduct(salesManager(), &inventoryv1.GetProductRequest{ID: "p1"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = h.GetProduct(admin(), &inventoryv1.GetProductRequest{ID: "nope"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = h.GetProduct(context.Background(), &inventoryv1.GetProductRequest{ID: "p1"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestListProducts_LowStock(t *testing.T) {
	h := newHandler(t)

	res, err := h.ListProducts(admin(), &inventoryv1.ListProductsRequest{LowStock: true})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "p1", res.Products[0].ID)
	assert.Equal(t, int32(1), res.Total)
}

func TestUpdateProduct(t *testing.T) {
	h := newHandler(t)

	_, err := h.UpdateProduct(salesManager(), &inventoryv1.UpdateProductRequest{ID: "p2", Name: "Rattan Floor Lamp"})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = h.UpdateProduct(admin(), &inventoryv1.UpdateProductRequest{ID: "p2", MinimumThreshold: -1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	res, err := h.UpdateProduct(admin(), &inventoryv1.UpdateProductRequest{ID: "p2", Name: "Rattan Floor Lamp", MinimumThreshold: 3})
	require.NoError(t, err)
	assert.Equal(t, "Rattan Floor Lamp", res.Product.Name)
	assert.Equal(t, int64(3), res.Product.MinimumThreshold)
}
