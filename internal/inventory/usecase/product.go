package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	productCodePrefix   = "PRD-"
	productCodeAttempts = 3
	defaultUnit         = "pcs"
)

// GenerateProductCode returns PRD- followed by eight upper-case hex characters.
func GenerateProductCode() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return productCodePrefix + strings.ToUpper(id[:8])
}

func (uc *inventoryUseCase) resolveProductCode(ctx context.Context, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code != "" {
		unique, err := uc.repo.IsProductCodeUnique(ctx, code, "")
		if err != nil {
			return "", inventory.StoreErr("check product code", err)
		}
		if !unique {
			return "", fmt.Errorf("%w: %s", inventory.ErrProductCodeTaken, code)
		}
		return code, nil
	}

	for i := 0; i < productCodeAttempts; i++ {
		candidate := GenerateProductCode()
		unique, err := uc.repo.IsProductCodeUnique(ctx, candidate, "")
		if err != nil {
			return "", inventory.StoreErr("check product code", err)
		}
		if unique {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: could not generate a free code", inventory.ErrProductCodeTaken)
}

// CreateProduct keeps the product when its first lot cannot be written and reports a warning instead.
func (uc *inventoryUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*dto.CreateProductResult, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", inventory.ErrInvalidInput)
	}
	if input.LocationID <= 0 {
		return nil, fmt.Errorf("%w: location is required", inventory.ErrInvalidInput)
	}
	if input.InitialQuantity < 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	if input.PurchasePrice.IsNegative() || input.SellingPrice.IsNegative() {
		return nil, fmt.Errorf("%w: prices cannot be negative", inventory.ErrInvalidInput)
	}

	code, err := uc.resolveProductCode(ctx, input.ProductCode)
	if err != nil {
		return nil, err
	}

	unit := input.UnitOfMeasurement
	if unit == "" {
		unit = defaultUnit
	}

	now := time.Now()
	p := &model.Product{
		BaseModel:         model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:              strings.TrimSpace(input.Name),
		ProductCode:       code,
		CategoryID:        optional(input.CategoryID),
		SupplierID:        optional(input.SupplierID),
		LocationID:        input.LocationID,
		UnitOfMeasurement: unit,
		CurrentStock:      input.InitialQuantity,
		TotalStock:        input.InitialQuantity,
		MinimumThreshold:  input.MinimumThreshold,
	}

	if err := uc.repo.InsertProduct(ctx, p); err != nil {
		return nil, inventory.StoreErr("insert product", err)
	}

	result := &dto.CreateProductResult{Product: p}

	if input.InitialQuantity > 0 {
		lot := newLot(p.ID, input.InitialQuantity, input.PurchasePrice, input.SellingPrice, p.LocationID, p.SupplierID, now)
		if err := uc.insertNextLot(ctx, lot); err != nil {
			uc.logger.Warn("product created without its initial lot",
				zap.String("product_id", p.ID),
				zap.Error(err),
			)
			result.Warnings = append(result.Warnings, fmt.Sprintf("initial lot was not created: %v", err))
		} else {
			p.TotalPurchased = input.InitialQuantity
			result.Lot = lot
			uc.logMovement(ctx, lot, model.MovementStockIn, 0, lot.PurchasePrice, movementRef{
				refType: "product",
				refID:   p.ID,
				notes:   "initial stock",
				userID:  input.UserID,
			})
		}
	}

	if err := uc.applyAggregates(ctx, p, input.InitialQuantity); err != nil {
		uc.logger.Warn("product created but its stock aggregate was not persisted",
			zap.String("product_id", p.ID),
			zap.Error(err),
		)
		result.Warnings = append(result.Warnings, fmt.Sprintf("stock aggregate was not updated: %v", err))
	}

	uc.publish(ctx, inventory.EventProductCreated, p.ID, p)
	if result.Lot != nil {
		uc.publish(ctx, inventory.EventLotCreated, p.ID, result.Lot)
	}

	return result, nil
}

// AddStock receives a new lot. Product pricing is never touched; prices live on the lot.
func (uc *inventoryUseCase) AddStock(ctx context.Context, input *dto.AddStockInput) (*dto.AddStockResult, error) {
	if input.Quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	if input.PurchasePrice.IsNegative() || input.SellingPrice.IsNegative() {
		return nil, fmt.Errorf("%w: prices cannot be negative", inventory.ErrInvalidInput)
	}

	var result *dto.AddStockResult
	err := uc.withProductLock(ctx, input.ProductID, func() error {
		p, err := uc.getProduct(ctx, input.ProductID)
		if err != nil {
			return err
		}

		supplierID := p.SupplierID
		if input.SupplierID != nil && *input.SupplierID != "" {
			supplierID = input.SupplierID
		}
		locationID := p.LocationID
		if input.LocationID != nil && *input.LocationID > 0 {
			locationID = *input.LocationID
		}

		lot := newLot(p.ID, input.Quantity, input.PurchasePrice, input.SellingPrice, locationID, supplierID, time.Now())
		if err := uc.insertNextLot(ctx, lot); err != nil {
			return err
		}

		uc.logMovement(ctx, lot, model.MovementStockIn, 0, lot.PurchasePrice, movementRef{
			refType: "restock",
			refID:   lot.ID,
			userID:  input.UserID,
		})

		expected := p.TotalStock
		if lot.LocationID == p.LocationID {
			expected += input.Quantity
		}
		p.TotalPurchased += input.Quantity
		if err := uc.applyAggregates(ctx, p, expected); err != nil {
			return err
		}

		result = &dto.AddStockResult{Product: p, Lot: lot}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, inventory.EventLotCreated, result.Product.ID, result.Lot)
	return result, nil
}
