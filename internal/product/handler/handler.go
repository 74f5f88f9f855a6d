package handler

import (
	"context"
	"errors"

	inventoryv1 "github.com/fekuna/omnipos-inventory-service/api/inventoryv1"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/permission"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	"github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	productuc "github.com/fekuna/omnipos-inventory-service/internal/product/usecase"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ProductHandler struct {
	inventoryv1.UnimplementedProductServiceServer
	uc        product.UseCase
	evaluator *permission.Evaluator
	logger    logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, evaluator *permission.Evaluator, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:        uc,
		evaluator: evaluator,
		logger:    log,
	}
}

func (h *ProductHandler) statusError(op string, err error) error {
	switch {
	case errors.Is(err, productuc.ErrProductNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, productuc.ErrInvalidProduct):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, permission.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, permission.ErrDirectoryNotReady):
		return status.Error(codes.Unavailable, err.Error())
	}
	h.logger.Error(op+" failed", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}

func (h *ProductHandler) require(ctx context.Context, action permission.Action, locationID *int64) error {
	user := auth.UserFromContext(ctx)
	if user == nil {
		return status.Error(codes.Unauthenticated, "unauthenticated")
	}
	if err := h.evaluator.Require(user, permission.ModuleProducts, action, locationID); err != nil {
		return h.statusError("authorize", err)
	}
	return nil
}

// load fetches the product and checks action at its home location.
func (h *ProductHandler) load(ctx context.Context, id string, action permission.Action) (*model.Product, error) {
	if auth.UserFromContext(ctx) == nil {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	p, err := h.uc.GetProduct(ctx, id)
	if err != nil {
		return nil, h.statusError("get product", err)
	}
	if err := h.require(ctx, action, &p.LocationID); err != nil {
		return nil, err
	}
	return p, nil
}

func (h *ProductHandler) GetProduct(ctx context.Context, req *inventoryv1.GetProductRequest) (*inventoryv1.ProductResponse, error) {
	p, err := h.load(ctx, req.ID, permission.ActionView)
	if err != nil {
		return nil, err
	}
	return &inventoryv1.ProductResponse{Product: inventoryv1.FromProduct(p)}, nil
}

func (h *ProductHandler) ListProducts(ctx context.Context, req *inventoryv1.ListProductsRequest) (*inventoryv1.ListProductsResponse, error) {
	var loc *int64
	if req.LocationID != 0 {
		loc = &req.LocationID
	}
	if err := h.require(ctx, permission.ActionView, loc); err != nil {
		return nil, err
	}

	filters := &dto.ProductFilters{
		LocationID:  loc,
		CategoryID:  req.CategoryID,
		SupplierID:  req.SupplierID,
		SearchQuery: req.Search,
		LowStock:    req.LowStock,
		SortBy:      req.SortBy,
		SortOrder:   req.SortOrder,
		Page:        int(req.Page),
		PageSize:    int(req.PageSize),
	}

	products, count, err := h.uc.ListProducts(ctx, filters)
	if err != nil {
		return nil, h.statusError("list products", err)
	}

	out := make([]*inventoryv1.Product, len(products))
	for i := range products {
		out[i] = inventoryv1.FromProduct(&products[i])
	}

	return &inventoryv1.ListProductsResponse{
		Products: out,
		Total:    int32(count),
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

func (h *ProductHandler) UpdateProduct(ctx context.Context, req *inventoryv1.UpdateProductRequest) (*inventoryv1.ProductResponse, error) {
	if _, err := h.load(ctx, req.ID, permission.ActionEdit); err != nil {
		return nil, err
	}

	p, err := h.uc.UpdateProduct(ctx, &dto.UpdateProductInput{
		ID:                req.ID,
		Name:              req.Name,
		CategoryID:        req.CategoryID,
		SupplierID:        req.SupplierID,
		UnitOfMeasurement: req.UnitOfMeasurement,
		MinimumThreshold:  req.MinimumThreshold,
	})
	if err != nil {
		return nil, h.statusError("update product", err)
	}
	return &inventoryv1.ProductResponse{Product: inventoryv1.FromProduct(p)}, nil
}
