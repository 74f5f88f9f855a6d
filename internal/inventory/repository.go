package inventory

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// Repository returns nil, nil for missing rows. InsertLot reports a taken lot number as ErrDuplicateLotNumber.
type Repository interface {
	// Products
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	InsertProduct(ctx context.Context, p *model.Product) error
	UpdateProduct(ctx context.Context, p *model.Product) error
	IsProductCodeUnique(ctx context.Context, code, excludeID string) (bool, error)

	// Lots
	ListLots(ctx context.Context, productID string) ([]model.ProductLot, error)
	GetLot(ctx context.Context, id string) (*model.ProductLot, error)
	InsertLot(ctx context.Context, lot *model.ProductLot) error
	UpdateLot(ctx context.Context, lot *model.ProductLot) error
	NextLotNumber(ctx context.Context, productID string) (int64, error)
	// ReleaseLotNumber hands back n if it is still the last number issued for the product.
	ReleaseLotNumber(ctx context.Context, productID string, n int64) error

	// Transfers
	InsertTransfer(ctx context.Context, t *model.Transfer) error
	UpdateTransfer(ctx context.Context, t *model.Transfer) error
	GetTransfer(ctx context.Context, id string) (*model.Transfer, error)
	ListTransfers(ctx context.Context, filters *dto.TransferFilters) ([]model.Transfer, int, error)

	// Movements / Audit
	LogMovement(ctx context.Context, m *model.InventoryMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}
