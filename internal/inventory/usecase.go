package inventory

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*dto.CreateProductResult, error)
	AddStock(ctx context.Context, input *dto.AddStockInput) (*dto.AddStockResult, error)
	SelectLotFIFO(ctx context.Context, productID string, quantity int64, overrideLotID string) (*model.ProductLot, error)
	Sell(ctx context.Context, input *dto.SellInput) (*dto.SellResult, error)
	TransferWithLot(ctx context.Context, input *dto.TransferInput) (*dto.TransferResult, error)
	RecomputeStock(ctx context.Context, productID string) (*model.Product, error)

	ApproveTransfer(ctx context.Context, input *dto.TransitionInput) (*model.Transfer, error)
	DispatchTransfer(ctx context.Context, input *dto.TransitionInput) (*model.Transfer, error)
	CompleteTransfer(ctx context.Context, input *dto.TransitionInput) (*model.Transfer, error)
	RejectTransfer(ctx context.Context, input *dto.TransitionInput) (*model.Transfer, error)
	GetTransfer(ctx context.Context, id string) (*model.Transfer, error)
	ListTransfers(ctx context.Context, filters *dto.TransferFilters) ([]model.Transfer, int, error)

	ListLots(ctx context.Context, productID string) ([]model.ProductLot, error)
	StockByLocation(ctx context.Context, productID string) ([]dto.LocationStock, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}

// CatalogSync is told about every product whose fields or aggregates changed.
type CatalogSync interface {
	SyncProduct(ctx context.Context, p *model.Product)
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}
