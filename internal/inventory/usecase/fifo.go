package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

// SelectFIFO picks the lot with the lowest lot number that still holds stock, or the override lot.
// It never clamps: a request larger than the chosen lot fails with ErrInsufficientLotQuantity.
func SelectFIFO(lots []model.ProductLot, quantity int64, overrideLotID string) (*model.ProductLot, error) {
	if quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	var selected *model.ProductLot
	if overrideLotID != "" {
		for i := range lots {
			if lots[i].ID == overrideLotID {
				lot := lots[i]
				selected = &lot
				break
			}
		}
		if selected == nil {
			return nil, fmt.Errorf("%w: %s", inventory.ErrLotNotFound, overrideLotID)
		}
	} else {
		candidates := make([]model.ProductLot, 0, len(lots))
		for _, l := range lots {
			if l.Quantity > 0 {
				candidates = append(candidates, l)
			}
		}
		if len(candidates) == 0 {
			return nil, fmt.Errorf("%w: no lot has stock", inventory.ErrInsufficientLotQuantity)
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].LotNumber < candidates[j].LotNumber
		})
		selected = &candidates[0]
	}

	if quantity > selected.Quantity {
		return nil, fmt.Errorf("%w: lot #%d holds %d, requested %d",
			inventory.ErrInsufficientLotQuantity, selected.LotNumber, selected.Quantity, quantity)
	}
	return selected, nil
}

func (uc *inventoryUseCase) SelectLotFIFO(ctx context.Context, productID string, quantity int64, overrideLotID string) (*model.ProductLot, error) {
	if _, err := uc.getProduct(ctx, productID); err != nil {
		return nil, err
	}
	lots, err := uc.repo.ListLots(ctx, productID)
	if err != nil {
		return nil, inventory.StoreErr("list lots", err)
	}
	return SelectFIFO(lots, quantity, overrideLotID)
}

// Sell consumes quantity from one lot and records the sale amount at the lot's unit price.
func (uc *inventoryUseCase) Sell(ctx context.Context, input *dto.SellInput) (*dto.SellResult, error) {
	if input.Quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	var result *dto.SellResult
	err := uc.withProductLock(ctx, input.ProductID, func() error {
		p, err := uc.getProduct(ctx, input.ProductID)
		if err != nil {
			return err
		}
		lots, err := uc.repo.ListLots(ctx, p.ID)
		if err != nil {
			return inventory.StoreErr("list lots", err)
		}
		lot, err := SelectFIFO(lots, input.Quantity, input.LotID)
		if err != nil {
			return err
		}

		before := lot.Quantity
		lot.Quantity -= input.Quantity
		lot.UpdatedAt = time.Now()
		if err := uc.repo.UpdateLot(ctx, lot); err != nil {
			return inventory.StoreErr("update lot", err)
		}

		amount := lot.PerUnitPrice.Mul(decimal.NewFromInt(input.Quantity))
		movement := uc.logMovement(ctx, lot, model.MovementSale, before, amount, movementRef{
			refType: "sale",
			refID:   input.ReferenceID,
			notes:   fmt.Sprintf("sold at location %d", input.LocationID),
			userID:  input.UserID,
		})

		expected := p.TotalStock
		if lot.LocationID == p.LocationID {
			expected -= input.Quantity
		}
		if err := uc.applyAggregates(ctx, p, expected); err != nil {
			return err
		}

		result = &dto.SellResult{Product: p, Lot: lot, Movement: movement}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, inventory.EventLotConsumed, result.Product.ID, map[string]any{
		"lot_id":       result.Lot.ID,
		"lot_number":   result.Lot.LotNumber,
		"quantity":     input.Quantity,
		"remaining":    result.Lot.Quantity,
		"location_id":  input.LocationID,
		"reference_id": input.ReferenceID,
		"amount":       result.Movement.Amount,
	})
	return result, nil
}
