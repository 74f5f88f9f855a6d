package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransferWithLot moves quantity out of a source lot into a new lot at the destination.
// A failure after the transfer row exists leaves it requested and is returned as is.
func (uc *inventoryUseCase) TransferWithLot(ctx context.Context, input *dto.TransferInput) (*dto.TransferResult, error) {
	if input.Quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	if input.SourceLotID == "" {
		return nil, fmt.Errorf("%w: source lot is required", inventory.ErrInvalidInput)
	}
	if input.ToLocationID <= 0 {
		return nil, fmt.Errorf("%w: destination location is required", inventory.ErrInvalidInput)
	}

	var result *dto.TransferResult
	err := uc.withProductLock(ctx, input.ProductID, func() error {
		p, err := uc.getProduct(ctx, input.ProductID)
		if err != nil {
			return err
		}
		src, err := uc.getLot(ctx, p.ID, input.SourceLotID)
		if err != nil {
			return err
		}

		from := input.FromLocationID
		if from == 0 {
			from = src.LocationID
		}
		if from != src.LocationID {
			return fmt.Errorf("%w: lot #%d is at location %d", inventory.ErrLotLocationMismatch, src.LotNumber, src.LocationID)
		}
		if from == input.ToLocationID {
			return fmt.Errorf("%w: source and destination are the same location", inventory.ErrInvalidInput)
		}
		if input.Quantity > src.Quantity {
			return fmt.Errorf("%w: lot #%d holds %d, requested %d",
				inventory.ErrInsufficientLotQuantity, src.LotNumber, src.Quantity, input.Quantity)
		}

		now := time.Now()
		t := &model.Transfer{
			BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			ProductID:      p.ID,
			SourceLotID:    src.ID,
			FromLocationID: from,
			ToLocationID:   input.ToLocationID,
			Quantity:       input.Quantity,
			Status:         model.TransferRequested,
			RequestedBy:    optionalUser(input.UserID),
			Notes:          input.Notes,
		}
		if err := uc.repo.InsertTransfer(ctx, t); err != nil {
			return inventory.StoreErr("insert transfer", err)
		}

		ref := movementRef{refType: "transfer", refID: t.ID, userID: input.UserID}

		before := src.Quantity
		src.Quantity -= input.Quantity
		src.UpdatedAt = now
		if err := uc.repo.UpdateLot(ctx, src); err != nil {
			return inventory.StoreErr("update source lot", err)
		}
		uc.logMovement(ctx, src, model.MovementTransferOut, before, decimal.Zero, ref)
		t.SourceDebited = true

		dest := newLot(p.ID, input.Quantity, src.PurchasePrice, src.SellingPrice, input.ToLocationID, src.SupplierID, now)
		dest.PerUnitPrice = src.PerUnitPrice
		dest.SourceLotID = &src.ID
		destErr := uc.insertNextLot(ctx, dest)

		expected := p.TotalStock
		if src.LocationID == p.LocationID {
			expected -= input.Quantity
		}
		if destErr == nil && dest.LocationID == p.LocationID {
			expected += input.Quantity
		}
		aggErr := uc.applyAggregates(ctx, p, expected)

		if destErr != nil {
			uc.logger.Error("transfer left requested without a destination lot",
				zap.String("transfer_id", t.ID),
				zap.Error(destErr),
			)
			t.UpdatedAt = time.Now()
			if err := uc.repo.UpdateTransfer(ctx, t); err != nil {
				uc.logger.Error("failed to mark transfer source as debited",
					zap.String("transfer_id", t.ID),
					zap.Error(err),
				)
			}
			return destErr
		}
		uc.logMovement(ctx, dest, model.MovementTransferIn, 0, decimal.Zero, ref)

		t.DestinationLotID = &dest.ID
		t.UpdatedAt = time.Now()
		if err := uc.repo.UpdateTransfer(ctx, t); err != nil {
			return inventory.StoreErr("update transfer", err)
		}
		if aggErr != nil {
			return aggErr
		}

		result = &dto.TransferResult{Transfer: t, SourceLot: src, DestinationLot: dest, Product: p}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, inventory.EventTransferRequested, result.Product.ID, result.Transfer)
	return result, nil
}

func (uc *inventoryUseCase) ApproveTransfer(ctx context.Context, input *dto.TransitionInput) (*model.Transfer, error) {
	return uc.transition(ctx, input, model.TransferApproved)
}

func (uc *inventoryUseCase) DispatchTransfer(ctx context.Context, input *dto.TransitionInput) (*model.Transfer, error) {
	return uc.transition(ctx, input, model.TransferInTransit)
}

func (uc *inventoryUseCase) CompleteTransfer(ctx context.Context, input *dto.TransitionInput) (*model.Transfer, error) {
	return uc.transition(ctx, input, model.TransferCompleted)
}

// RejectTransfer returns the moved units to the source lot, from the destination lot when one was created.
func (uc *inventoryUseCase) RejectTransfer(ctx context.Context, input *dto.TransitionInput) (*model.Transfer, error) {
	return uc.transition(ctx, input, model.TransferRejected)
}

func (uc *inventoryUseCase) transition(ctx context.Context, input *dto.TransitionInput, next model.TransferStatus) (*model.Transfer, error) {
	t, err := uc.getTransfer(ctx, input.TransferID)
	if err != nil {
		return nil, err
	}

	var prev model.TransferStatus
	err = uc.withProductLock(ctx, t.ProductID, func() error {
		// reload under the lock
		t, err = uc.getTransfer(ctx, input.TransferID)
		if err != nil {
			return err
		}
		if !t.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", inventory.ErrInvalidTransferTransition, t.Status, next)
		}

		if next == model.TransferRejected {
			if err := uc.reverseTransfer(ctx, t, input.UserID); err != nil {
				return err
			}
		}

		prev = t.Status
		t.Status = next
		if input.Notes != "" {
			t.Notes = input.Notes
		}
		t.UpdatedAt = time.Now()
		if err := uc.repo.UpdateTransfer(ctx, t); err != nil {
			return inventory.StoreErr("update transfer", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, inventory.EventTransferStatusChanged, t.ProductID, map[string]any{
		"transfer_id": t.ID,
		"from_status": prev,
		"to_status":   t.Status,
	})
	return t, nil
}

func (uc *inventoryUseCase) reverseTransfer(ctx context.Context, t *model.Transfer, userID string) error {
	if t.DestinationLotID == nil {
		if !t.SourceDebited {
			uc.logger.Warn("rejecting transfer that never moved stock",
				zap.String("transfer_id", t.ID),
			)
			return nil
		}
		return uc.refundSource(ctx, t, userID)
	}

	p, err := uc.getProduct(ctx, t.ProductID)
	if err != nil {
		return err
	}
	dest, err := uc.getLot(ctx, t.ProductID, *t.DestinationLotID)
	if err != nil {
		return err
	}
	src, err := uc.getLot(ctx, t.ProductID, t.SourceLotID)
	if err != nil {
		return err
	}
	if dest.Quantity < t.Quantity {
		return fmt.Errorf("%w: destination lot #%d already consumed, holds %d of %d",
			inventory.ErrInsufficientLotQuantity, dest.LotNumber, dest.Quantity, t.Quantity)
	}

	now := time.Now()
	ref := movementRef{refType: "transfer_rejection", refID: t.ID, userID: userID}

	destBefore := dest.Quantity
	dest.Quantity -= t.Quantity
	dest.UpdatedAt = now
	if err := uc.repo.UpdateLot(ctx, dest); err != nil {
		return inventory.StoreErr("update destination lot", err)
	}
	uc.logMovement(ctx, dest, model.MovementTransferOut, destBefore, decimal.Zero, ref)

	srcBefore := src.Quantity
	src.Quantity += t.Quantity
	src.UpdatedAt = now
	if err := uc.repo.UpdateLot(ctx, src); err != nil {
		return inventory.StoreErr("update source lot", err)
	}
	uc.logMovement(ctx, src, model.MovementTransferIn, srcBefore, decimal.Zero, ref)

	expected := p.TotalStock
	if dest.LocationID == p.LocationID {
		expected -= t.Quantity
	}
	if src.LocationID == p.LocationID {
		expected += t.Quantity
	}
	return uc.applyAggregates(ctx, p, expected)
}

// refundSource credits a debited source lot for a transfer whose destination lot was never created.
func (uc *inventoryUseCase) refundSource(ctx context.Context, t *model.Transfer, userID string) error {
	p, err := uc.getProduct(ctx, t.ProductID)
	if err != nil {
		return err
	}
	src, err := uc.getLot(ctx, t.ProductID, t.SourceLotID)
	if err != nil {
		return err
	}

	before := src.Quantity
	src.Quantity += t.Quantity
	src.UpdatedAt = time.Now()
	if err := uc.repo.UpdateLot(ctx, src); err != nil {
		return inventory.StoreErr("update source lot", err)
	}
	uc.logMovement(ctx, src, model.MovementTransferIn, before, decimal.Zero,
		movementRef{refType: "transfer_rejection", refID: t.ID, userID: userID})
	t.SourceDebited = false

	expected := p.TotalStock
	if src.LocationID == p.LocationID {
		expected += t.Quantity
	}
	return uc.applyAggregates(ctx, p, expected)
}

func (uc *inventoryUseCase) GetTransfer(ctx context.Context, id string) (*model.Transfer, error) {
	return uc.getTransfer(ctx, id)
}

func (uc *inventoryUseCase) ListTransfers(ctx context.Context, filters *dto.TransferFilters) ([]model.Transfer, int, error) {
	items, count, err := uc.repo.ListTransfers(ctx, filters)
	if err != nil {
		return nil, 0, inventory.StoreErr("list transfers", err)
	}
	return items, count, nil
}
