package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/cache"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	lockAttempts      = 3
	lockTTL           = 5 * time.Second
	lockRetryDelay    = 100 * time.Millisecond
	lotNumberAttempts = 3
)

type inventoryUseCase struct {
	repo      inventory.Repository
	cache     *cache.RedisClient
	publisher inventory.EventPublisher
	catalog   inventory.CatalogSync
	logger    logger.ZapLogger
}

// NewInventoryUseCase builds the lot accountant. publisher and catalog may be nil.
func NewInventoryUseCase(
	repo inventory.Repository,
	cache *cache.RedisClient,
	publisher inventory.EventPublisher,
	catalog inventory.CatalogSync,
	log logger.ZapLogger,
) inventory.UseCase {
	return &inventoryUseCase{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		catalog:   catalog,
		logger:    log,
	}
}

// withProductLock serialises stock mutations of one product across instances.
func (uc *inventoryUseCase) withProductLock(ctx context.Context, productID string, fn func() error) error {
	lockKey := fmt.Sprintf("lock:inventory:%s", productID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < lockAttempts; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, lockTTL)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
	if !acquired {
		return inventory.ErrSystemBusy
	}

	defer func() {
		if err := uc.cache.ReleaseLock(context.Background(), lockKey, lockValue); err != nil {
			uc.logger.Warn("failed to release lock", zap.String("key", lockKey), zap.Error(err))
		}
	}()

	return fn()
}

func (uc *inventoryUseCase) getProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, inventory.StoreErr("get product", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", inventory.ErrProductNotFound, id)
	}
	return p, nil
}

func (uc *inventoryUseCase) getLot(ctx context.Context, productID, lotID string) (*model.ProductLot, error) {
	lot, err := uc.repo.GetLot(ctx, lotID)
	if err != nil {
		return nil, inventory.StoreErr("get lot", err)
	}
	if lot == nil || lot.ProductID != productID {
		return nil, fmt.Errorf("%w: %s", inventory.ErrLotNotFound, lotID)
	}
	return lot, nil
}

func (uc *inventoryUseCase) getTransfer(ctx context.Context, id string) (*model.Transfer, error) {
	t, err := uc.repo.GetTransfer(ctx, id)
	if err != nil {
		return nil, inventory.StoreErr("get transfer", err)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s", inventory.ErrTransferNotFound, id)
	}
	return t, nil
}

func newLot(productID string, quantity int64, purchase, selling decimal.Decimal, locationID int64, supplierID *string, now time.Time) *model.ProductLot {
	return &model.ProductLot{
		BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		ProductID:       productID,
		Quantity:        quantity,
		InitialQuantity: quantity,
		PurchasePrice:   purchase,
		SellingPrice:    selling,
		PerUnitPrice:    model.PerUnit(selling, quantity),
		LocationID:      locationID,
		SupplierID:      supplierID,
		ReceivedDate:    now,
	}
}

// insertNextLot numbers the lot from the per-product sequence and retries when the number is already taken.
func (uc *inventoryUseCase) insertNextLot(ctx context.Context, lot *model.ProductLot) error {
	for attempt := 1; attempt <= lotNumberAttempts; attempt++ {
		n, err := uc.repo.NextLotNumber(ctx, lot.ProductID)
		if err != nil {
			return inventory.StoreErr("next lot number", err)
		}
		lot.LotNumber = n

		err = uc.repo.InsertLot(ctx, lot)
		if err == nil {
			return nil
		}
		if !errors.Is(err, inventory.ErrDuplicateLotNumber) {
			if relErr := uc.repo.ReleaseLotNumber(ctx, lot.ProductID, n); relErr != nil {
				uc.logger.Warn("failed to release lot number",
					zap.String("product_id", lot.ProductID),
					zap.Int64("lot_number", n),
					zap.Error(relErr),
				)
			}
			return inventory.StoreErr("insert lot", err)
		}
		uc.logger.Warn("lot number already taken, retrying",
			zap.String("product_id", lot.ProductID),
			zap.Int64("lot_number", n),
			zap.Int("attempt", attempt),
		)
	}
	return inventory.StoreErr("insert lot", inventory.ErrDuplicateLotNumber)
}

// homeStock is the sum of the product's lots located at its home location.
func homeStock(p *model.Product, lots []model.ProductLot) int64 {
	var sum int64
	for _, l := range lots {
		if l.LocationID == p.LocationID {
			sum += l.Quantity
		}
	}
	return sum
}

// applyAggregates recomputes total_stock and current_stock from the lots and persists them.
// expected is what the stored aggregate should read after the caller's mutation.
func (uc *inventoryUseCase) applyAggregates(ctx context.Context, p *model.Product, expected int64) error {
	lots, err := uc.repo.ListLots(ctx, p.ID)
	if err != nil {
		return inventory.StoreErr("list lots", err)
	}

	recomputed := homeStock(p, lots)
	if recomputed != expected || p.CurrentStock != p.TotalStock {
		uc.logger.Warn("repairing product stock aggregate",
			zap.String("product_id", p.ID),
			zap.Int64("stored_total", p.TotalStock),
			zap.Int64("stored_current", p.CurrentStock),
			zap.Int64("expected", expected),
			zap.Int64("recomputed", recomputed),
			zap.Error(inventory.ErrInconsistentStockState),
		)
	}

	p.TotalStock = recomputed
	p.CurrentStock = recomputed
	p.UpdatedAt = time.Now()
	if err := uc.repo.UpdateProduct(ctx, p); err != nil {
		return inventory.StoreErr("update product", err)
	}

	if uc.catalog != nil {
		uc.catalog.SyncProduct(ctx, p)
	}
	return nil
}

func (uc *inventoryUseCase) RecomputeStock(ctx context.Context, productID string) (*model.Product, error) {
	var out *model.Product
	err := uc.withProductLock(ctx, productID, func() error {
		p, err := uc.getProduct(ctx, productID)
		if err != nil {
			return err
		}
		if err := uc.applyAggregates(ctx, p, p.TotalStock); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

type movementRef struct {
	refType string
	refID   string
	notes   string
	userID  string
}

func (uc *inventoryUseCase) logMovement(ctx context.Context, lot *model.ProductLot, kind model.MovementType, before int64, amount decimal.Decimal, ref movementRef) *model.InventoryMovement {
	m := &model.InventoryMovement{
		ID:             uuid.New().String(),
		ProductID:      lot.ProductID,
		LotID:          &lot.ID,
		LocationID:     lot.LocationID,
		MovementType:   kind,
		QuantityChange: lot.Quantity - before,
		QuantityBefore: before,
		QuantityAfter:  lot.Quantity,
		Amount:         amount,
		ReferenceType:  optional(ref.refType),
		ReferenceID:    optional(ref.refID),
		Notes:          ref.notes,
		CreatedBy:      optionalUser(ref.userID),
		CreatedAt:      time.Now(),
	}

	// the lot change is already persisted, so a lost audit row is logged rather than failing the call
	if err := uc.repo.LogMovement(ctx, m); err != nil {
		uc.logger.Error("failed to log inventory movement",
			zap.String("product_id", m.ProductID),
			zap.String("movement_type", string(kind)),
			zap.Error(err),
		)
	}
	return m
}

func (uc *inventoryUseCase) publish(ctx context.Context, eventType, productID string, payload any) {
	if uc.publisher == nil {
		return
	}
	event := inventory.StockEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		ProductID: productID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	if err := uc.publisher.PublishJSON(ctx, productID, event); err != nil {
		uc.logger.Error("failed to publish stock event",
			zap.String("event_type", eventType),
			zap.String("product_id", productID),
			zap.Error(err),
		)
	}
}

func (uc *inventoryUseCase) ListLots(ctx context.Context, productID string) ([]model.ProductLot, error) {
	if _, err := uc.getProduct(ctx, productID); err != nil {
		return nil, err
	}
	lots, err := uc.repo.ListLots(ctx, productID)
	if err != nil {
		return nil, inventory.StoreErr("list lots", err)
	}
	sort.SliceStable(lots, func(i, j int) bool { return lots[i].LotNumber < lots[j].LotNumber })
	return lots, nil
}

func (uc *inventoryUseCase) StockByLocation(ctx context.Context, productID string) ([]dto.LocationStock, error) {
	lots, err := uc.ListLots(ctx, productID)
	if err != nil {
		return nil, err
	}

	byLocation := map[int64]*dto.LocationStock{}
	for _, l := range lots {
		s, ok := byLocation[l.LocationID]
		if !ok {
			s = &dto.LocationStock{LocationID: l.LocationID}
			byLocation[l.LocationID] = s
		}
		s.Quantity += l.Quantity
		if l.Quantity > 0 {
			s.Lots++
		}
	}

	out := make([]dto.LocationStock, 0, len(byLocation))
	for _, s := range byLocation {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
	return out, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	items, count, err := uc.repo.ListMovements(ctx, filters)
	if err != nil {
		return nil, 0, inventory.StoreErr("list movements", err)
	}
	return items, count, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalUser(id string) *string {
	if id == "" || id == "unknown" {
		return nil
	}
	return &id
}
