package handler

import (
	"context"

	inventoryv1 "github.com/fekuna/omnipos-inventory-service/api/inventoryv1"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/permission"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ProductLookup resolves a product's home location.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
}

type InventoryHandler struct {
	inventoryv1.UnimplementedInventoryServiceServer
	uc        inventory.UseCase
	products  ProductLookup
	evaluator *permission.Evaluator
	logger    logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, products ProductLookup, evaluator *permission.Evaluator, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:        uc,
		products:  products,
		evaluator: evaluator,
		logger:    log,
	}
}

// authorize resolves the caller and checks module.action at the given location.
func (h *InventoryHandler) authorize(ctx context.Context, module permission.Module, action permission.Action, locationID *int64) (*model.User, error) {
	user := auth.UserFromContext(ctx)
	if user == nil {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	if err := h.evaluator.Require(user, module, action, locationID); err != nil {
		return nil, toStatus(h.logger, "authorize", err)
	}
	return user, nil
}

func parsePrice(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid %s %q", field, s)
	}
	return d, nil
}

func locationPtr(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func (h *InventoryHandler) CreateProduct(ctx context.Context, req *inventoryv1.CreateProductRequest) (*inventoryv1.CreateProductResponse, error) {
	if req.LocationID == 0 {
		return nil, status.Error(codes.InvalidArgument, "location_id is required")
	}
	user, err := h.authorize(ctx, permission.ModuleProducts, permission.ActionAdd, &req.LocationID)
	if err != nil {
		return nil, err
	}
	purchase, err := parsePrice("purchase_price", req.PurchasePrice)
	if err != nil {
		return nil, err
	}
	selling, err := parsePrice("selling_price", req.SellingPrice)
	if err != nil {
		return nil, err
	}

	res, err := h.uc.CreateProduct(ctx, &dto.CreateProductInput{
		Name:              req.Name,
		ProductCode:       req.ProductCode,
		CategoryID:        req.CategoryID,
		SupplierID:        req.SupplierID,
		LocationID:        req.LocationID,
		UnitOfMeasurement: req.UnitOfMeasurement,
		MinimumThreshold:  req.MinimumThreshold,
		InitialQuantity:   req.InitialQuantity,
		PurchasePrice:     purchase,
		SellingPrice:      selling,
		UserID:            user.ID,
	})
	if err != nil {
		return nil, toStatus(h.logger, "create product", err)
	}

	return &inventoryv1.CreateProductResponse{
		Product:  inventoryv1.FromProduct(res.Product),
		Lot:      inventoryv1.FromLot(res.Lot),
		Warnings: res.Warnings,
	}, nil
}

func (h *InventoryHandler) AddStock(ctx context.Context, req *inventoryv1.AddStockRequest) (*inventoryv1.AddStockResponse, error) {
	target := locationPtr(req.LocationID)
	if target == nil {
		p, err := h.productLocation(ctx, req.ProductID)
		if err != nil {
			return nil, err
		}
		target = &p
	}
	user, err := h.authorize(ctx, permission.ModuleInventory, permission.ActionAdd, target)
	if err != nil {
		return nil, err
	}
	purchase, err := parsePrice("purchase_price", req.PurchasePrice)
	if err != nil {
		return nil, err
	}
	selling, err := parsePrice("selling_price", req.SellingPrice)
	if err != nil {
		return nil, err
	}

	input := &dto.AddStockInput{
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		PurchasePrice: purchase,
		SellingPrice:  selling,
		LocationID:    target,
		UserID:        user.ID,
	}
	if req.SupplierID != "" {
		input.SupplierID = &req.SupplierID
	}

	res, err := h.uc.AddStock(ctx, input)
	if err != nil {
		return nil, toStatus(h.logger, "add stock", err)
	}
	return &inventoryv1.AddStockResponse{
		Product: inventoryv1.FromProduct(res.Product),
		Lot:     inventoryv1.FromLot(res.Lot),
	}, nil
}

func (h *InventoryHandler) SelectLot(ctx context.Context, req *inventoryv1.SelectLotRequest) (*inventoryv1.LotResponse, error) {
	loc, err := h.productLocation(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if _, err := h.authorize(ctx, permission.ModuleInventory, permission.ActionView, &loc); err != nil {
		return nil, err
	}

	lot, err := h.uc.SelectLotFIFO(ctx, req.ProductID, req.Quantity, req.LotID)
	if err != nil {
		return nil, toStatus(h.logger, "select lot", err)
	}
	return &inventoryv1.LotResponse{Lot: inventoryv1.FromLot(lot)}, nil
}

func (h *InventoryHandler) Sell(ctx context.Context, req *inventoryv1.SellRequest) (*inventoryv1.SellResponse, error) {
	loc := req.LocationID
	if loc == 0 {
		p, err := h.productLocation(ctx, req.ProductID)
		if err != nil {
			return nil, err
		}
		loc = p
	}
	user, err := h.authorize(ctx, permission.ModuleSales, permission.ActionAdd, &loc)
	if err != nil {
		return nil, err
	}

	// The consumed lot may sit elsewhere; the caller must also be allowed to sell there.
	lot, err := h.uc.SelectLotFIFO(ctx, req.ProductID, req.Quantity, req.LotID)
	if err != nil {
		return nil, toStatus(h.logger, "sell", err)
	}
	if lot.LocationID != loc {
		lotLoc := lot.LocationID
		if _, err := h.authorize(ctx, permission.ModuleSales, permission.ActionAdd, &lotLoc); err != nil {
			return nil, err
		}
	}

	res, err := h.uc.Sell(ctx, &dto.SellInput{
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		LotID:       lot.ID,
		LocationID:  loc,
		ReferenceID: req.ReferenceID,
		UserID:      user.ID,
	})
	if err != nil {
		return nil, toStatus(h.logger, "sell", err)
	}
	return &inventoryv1.SellResponse{
		Product:  inventoryv1.FromProduct(res.Product),
		Lot:      inventoryv1.FromLot(res.Lot),
		Movement: inventoryv1.FromMovement(res.Movement),
	}, nil
}

func (h *InventoryHandler) Transfer(ctx context.Context, req *inventoryv1.TransferRequest) (*inventoryv1.TransferResponse, error) {
	if req.FromLocationID == 0 || req.ToLocationID == 0 {
		return nil, status.Error(codes.InvalidArgument, "from_location_id and to_location_id are required")
	}
	user, err := h.authorize(ctx, permission.ModuleInventory, permission.ActionTransfer, &req.FromLocationID)
	if err != nil {
		return nil, err
	}

	res, err := h.uc.TransferWithLot(ctx, &dto.TransferInput{
		ProductID:      req.ProductID,
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		Quantity:       req.Quantity,
		SourceLotID:    req.SourceLotID,
		Notes:          req.Notes,
		UserID:         user.ID,
	})
	if err != nil {
		return nil, toStatus(h.logger, "transfer", err)
	}
	return &inventoryv1.TransferResponse{
		Transfer:       inventoryv1.FromTransfer(res.Transfer),
		SourceLot:      inventoryv1.FromLot(res.SourceLot),
		DestinationLot: inventoryv1.FromLot(res.DestinationLot),
		Product:        inventoryv1.FromProduct(res.Product),
	}, nil
}

type transitionFunc func(context.Context, *dto.TransitionInput) (*model.Transfer, error)

// transition loads the transfer, authorizes at the end selected by at, then applies fn.
func (h *InventoryHandler) transition(ctx context.Context, req *inventoryv1.TransitionRequest, action permission.Action, at func(*model.Transfer) int64, op string, fn transitionFunc) (*inventoryv1.TransferStatusResponse, error) {
	if auth.UserFromContext(ctx) == nil {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	t, err := h.uc.GetTransfer(ctx, req.TransferID)
	if err != nil {
		return nil, toStatus(h.logger, op, err)
	}
	loc := at(t)
	user, err := h.authorize(ctx, permission.ModuleInventory, action, &loc)
	if err != nil {
		return nil, err
	}

	updated, err := fn(ctx, &dto.TransitionInput{TransferID: req.TransferID, Notes: req.Notes, UserID: user.ID})
	if err != nil {
		return nil, toStatus(h.logger, op, err)
	}
	return &inventoryv1.TransferStatusResponse{Transfer: inventoryv1.FromTransfer(updated)}, nil
}

func fromEnd(t *model.Transfer) int64 { return t.FromLocationID }

func toEnd(t *model.Transfer) int64 { return t.ToLocationID }

func (h *InventoryHandler) ApproveTransfer(ctx context.Context, req *inventoryv1.TransitionRequest) (*inventoryv1.TransferStatusResponse, error) {
	return h.transition(ctx, req, permission.ActionApprove, toEnd, "approve transfer", h.uc.ApproveTransfer)
}

func (h *InventoryHandler) DispatchTransfer(ctx context.Context, req *inventoryv1.TransitionRequest) (*inventoryv1.TransferStatusResponse, error) {
	return h.transition(ctx, req, permission.ActionEdit, fromEnd, "dispatch transfer", h.uc.DispatchTransfer)
}

func (h *InventoryHandler) CompleteTransfer(ctx context.Context, req *inventoryv1.TransitionRequest) (*inventoryv1.TransferStatusResponse, error) {
	return h.transition(ctx, req, permission.ActionEdit, toEnd, "complete transfer", h.uc.CompleteTransfer)
}

func (h *InventoryHandler) RejectTransfer(ctx context.Context, req *inventoryv1.TransitionRequest) (*inventoryv1.TransferStatusResponse, error) {
	return h.transition(ctx, req, permission.ActionApprove, toEnd, "reject transfer", h.uc.RejectTransfer)
}

func (h *InventoryHandler) GetTransfer(ctx context.Context, req *inventoryv1.GetTransferRequest) (*inventoryv1.TransferStatusResponse, error) {
	user := auth.UserFromContext(ctx)
	if user == nil {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	t, err := h.uc.GetTransfer(ctx, req.TransferID)
	if err != nil {
		return nil, toStatus(h.logger, "get transfer", err)
	}
	// Visible from either end.
	if !h.evaluator.Can(user, "inventory", "view", &t.FromLocationID) &&
		!h.evaluator.Can(user, "inventory", "view", &t.ToLocationID) {
		return nil, status.Error(codes.PermissionDenied, permission.ErrPermissionDenied.Error())
	}
	return &inventoryv1.TransferStatusResponse{Transfer: inventoryv1.FromTransfer(t)}, nil
}

func (h *InventoryHandler) ListTransfers(ctx context.Context, req *inventoryv1.ListTransfersRequest) (*inventoryv1.ListTransfersResponse, error) {
	loc := locationPtr(req.LocationID)
	if _, err := h.authorize(ctx, permission.ModuleInventory, permission.ActionView, loc); err != nil {
		return nil, err
	}

	st := model.TransferStatus(req.Status)
	if st != "" && !st.Valid() {
		return nil, toStatus(h.logger, "list transfers", inventory.ErrInvalidInput)
	}
	items, total, err := h.uc.ListTransfers(ctx, &dto.TransferFilters{
		ProductID:  req.ProductID,
		Status:     st,
		LocationID: loc,
		Page:       int(req.Page),
		PageSize:   int(req.PageSize),
	})
	if err != nil {
		return nil, toStatus(h.logger, "list transfers", err)
	}

	transfers := make([]*inventoryv1.Transfer, len(items))
	for i := range items {
		transfers[i] = inventoryv1.FromTransfer(&items[i])
	}
	return &inventoryv1.ListTransfersResponse{
		Transfers: transfers,
		Total:     int32(total),
		Page:      req.Page,
		PageSize:  req.PageSize,
	}, nil
}

func (h *InventoryHandler) ListLots(ctx context.Context, req *inventoryv1.ProductIDRequest) (*inventoryv1.ListLotsResponse, error) {
	if _, err := h.authorize(ctx, permission.ModuleInventory, permission.ActionView, nil); err != nil {
		return nil, err
	}
	lots, err := h.uc.ListLots(ctx, req.ProductID)
	if err != nil {
		return nil, toStatus(h.logger, "list lots", err)
	}

	out := make([]*inventoryv1.Lot, len(lots))
	for i := range lots {
		out[i] = inventoryv1.FromLot(&lots[i])
	}
	return &inventoryv1.ListLotsResponse{Lots: out}, nil
}

func (h *InventoryHandler) StockByLocation(ctx context.Context, req *inventoryv1.ProductIDRequest) (*inventoryv1.StockByLocationResponse, error) {
	if _, err := h.authorize(ctx, permission.ModuleInventory, permission.ActionView, nil); err != nil {
		return nil, err
	}
	rows, err := h.uc.StockByLocation(ctx, req.ProductID)
	if err != nil {
		return nil, toStatus(h.logger, "stock by location", err)
	}

	out := make([]*inventoryv1.LocationStock, len(rows))
	for i, r := range rows {
		out[i] = &inventoryv1.LocationStock{LocationID: r.LocationID, Quantity: r.Quantity, Lots: int32(r.Lots)}
	}
	return &inventoryv1.StockByLocationResponse{Locations: out}, nil
}

func (h *InventoryHandler) ListMovements(ctx context.Context, req *inventoryv1.ListMovementsRequest) (*inventoryv1.ListMovementsResponse, error) {
	if _, err := h.authorize(ctx, permission.ModuleInventory, permission.ActionView, nil); err != nil {
		return nil, err
	}
	items, total, err := h.uc.ListMovements(ctx, &dto.MovementFilters{
		ProductID:    req.ProductID,
		LotID:        req.LotID,
		MovementType: model.MovementType(req.MovementType),
		ReferenceID:  req.ReferenceID,
		Page:         int(req.Page),
		PageSize:     int(req.PageSize),
	})
	if err != nil {
		return nil, toStatus(h.logger, "list movements", err)
	}

	out := make([]*inventoryv1.Movement, len(items))
	for i := range items {
		out[i] = inventoryv1.FromMovement(&items[i])
	}
	return &inventoryv1.ListMovementsResponse{
		Movements: out,
		Total:     int32(total),
		Page:      req.Page,
		PageSize:  req.PageSize,
	}, nil
}

func (h *InventoryHandler) RecomputeStock(ctx context.Context, req *inventoryv1.ProductIDRequest) (*inventoryv1.ProductResponse, error) {
	loc, err := h.productLocation(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if _, err := h.authorize(ctx, permission.ModuleInventory, permission.ActionEdit, &loc); err != nil {
		return nil, err
	}
	p, err := h.uc.RecomputeStock(ctx, req.ProductID)
	if err != nil {
		return nil, toStatus(h.logger, "recompute stock", err)
	}
	return &inventoryv1.ProductResponse{Product: inventoryv1.FromProduct(p)}, nil
}

// productLocation returns the home location of a product, used as the permission scope when the request names none.
func (h *InventoryHandler) productLocation(ctx context.Context, productID string) (int64, error) {
	if auth.UserFromContext(ctx) == nil {
		return 0, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	p, err := h.products.GetProduct(ctx, productID)
	if err != nil {
		return 0, toStatus(h.logger, "resolve product", err)
	}
	return p.LocationID, nil
}
