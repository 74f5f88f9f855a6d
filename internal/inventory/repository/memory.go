package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	productdto "github.com/fekuna/omnipos-inventory-service/internal/product/dto"
)

// MemoryRepository backs both the lot accountant and the product catalog for tests and local runs.
type MemoryRepository struct {
	mu        sync.RWMutex
	products  map[string]model.Product
	lots      map[string]model.ProductLot
	sequences map[string]int64
	transfers map[string]model.Transfer
	movements []model.InventoryMovement
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		products:  map[string]model.Product{},
		lots:      map[string]model.ProductLot{},
		sequences: map[string]int64{},
		transfers: map[string]model.Transfer{},
	}
}

func (r *MemoryRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *MemoryRepository) InsertProduct(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; ok {
		return errors.New("product already exists")
	}
	for _, existing := range r.products {
		if existing.ProductCode == p.ProductCode {
			return inventory.ErrProductCodeTaken
		}
	}
	r.products[p.ID] = *p
	return nil
}

func (r *MemoryRepository) UpdateProduct(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return errors.New("product does not exist")
	}
	r.products[p.ID] = *p
	return nil
}

func (r *MemoryRepository) IsProductCodeUnique(ctx context.Context, code, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.ProductCode == code && p.ID != excludeID {
			return false, nil
		}
	}
	return true, nil
}

func (r *MemoryRepository) ListLots(ctx context.Context, productID string) ([]model.ProductLot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.ProductLot{}
	for _, l := range r.lots {
		if l.ProductID == productID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LotNumber < out[j].LotNumber })
	return out, nil
}

func (r *MemoryRepository) GetLot(ctx context.Context, id string) (*model.ProductLot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.lots[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *MemoryRepository) InsertLot(ctx context.Context, lot *model.ProductLot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lot.Quantity < 0 {
		return errors.New("lot quantity cannot be negative")
	}
	for _, l := range r.lots {
		if l.ProductID == lot.ProductID && l.LotNumber == lot.LotNumber {
			return inventory.ErrDuplicateLotNumber
		}
	}
	r.lots[lot.ID] = *lot
	return nil
}

func (r *MemoryRepository) UpdateLot(ctx context.Context, lot *model.ProductLot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lots[lot.ID]; !ok {
		return errors.New("lot does not exist")
	}
	if lot.Quantity < 0 {
		return errors.New("lot quantity cannot be negative")
	}
	r.lots[lot.ID] = *lot
	return nil
}

func (r *MemoryRepository) NextLotNumber(ctx context.Context, productID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.sequences[productID]
	for _, l := range r.lots {
		if l.ProductID == productID && l.LotNumber > next {
			next = l.LotNumber
		}
	}
	next++
	r.sequences[productID] = next
	return next, nil
}

func (r *MemoryRepository) ReleaseLotNumber(ctx context.Context, productID string, n int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sequences[productID] == n {
		r.sequences[productID] = n - 1
	}
	return nil
}

func (r *MemoryRepository) InsertTransfer(ctx context.Context, t *model.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers[t.ID] = *t
	return nil
}

func (r *MemoryRepository) UpdateTransfer(ctx context.Context, t *model.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transfers[t.ID]; !ok {
		return errors.New("transfer does not exist")
	}
	r.transfers[t.ID] = *t
	return nil
}

func (r *MemoryRepository) GetTransfer(ctx context.Context, id string) (*model.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transfers[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *MemoryRepository) ListTransfers(ctx context.Context, f *dto.TransferFilters) ([]model.Transfer, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := []model.Transfer{}
	for _, t := range r.transfers {
		if f.ProductID != "" && t.ProductID != f.ProductID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.LocationID != nil && t.FromLocationID != *f.LocationID && t.ToLocationID != *f.LocationID {
			continue
		}
		items = append(items, t)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return paginate(items, f.Page, f.PageSize), len(items), nil
}

func (r *MemoryRepository) LogMovement(ctx context.Context, m *model.InventoryMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *MemoryRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := []model.InventoryMovement{}
	// newest first
	for i := len(r.movements) - 1; i >= 0; i-- {
		m := r.movements[i]
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.LotID != "" && (m.LotID == nil || *m.LotID != f.LotID) {
			continue
		}
		if f.MovementType != "" && m.MovementType != f.MovementType {
			continue
		}
		if f.ReferenceID != "" && (m.ReferenceID == nil || *m.ReferenceID != f.ReferenceID) {
			continue
		}
		items = append(items, m)
	}
	return paginate(items, f.Page, f.PageSize), len(items), nil
}

// Catalog side

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return r.GetProduct(ctx, id)
}

func (r *MemoryRepository) FindAll(ctx context.Context, f *productdto.ProductFilters) ([]model.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	search := strings.ToLower(strings.TrimSpace(f.SearchQuery))
	items := []model.Product{}
	for _, p := range r.products {
		if f.LocationID != nil && p.LocationID != *f.LocationID {
			continue
		}
		if f.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != f.CategoryID) {
			continue
		}
		if f.SupplierID != "" && (p.SupplierID == nil || *p.SupplierID != f.SupplierID) {
			continue
		}
		if f.LowStock && !p.IsLowStock() {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.ProductCode), search) {
			continue
		}
		items = append(items, p)
	}

	desc := strings.EqualFold(f.SortOrder, "desc")
	sort.SliceStable(items, func(i, j int) bool {
		var less bool
		switch f.SortBy {
		case "product_code":
			less = items[i].ProductCode < items[j].ProductCode
		case "total_stock":
			less = items[i].TotalStock < items[j].TotalStock
		case "created_at":
			less = items[i].CreatedAt.Before(items[j].CreatedAt)
		default:
			less = items[i].Name < items[j].Name
		}
		if desc {
			return !less
		}
		return less
	})
	return paginate(items, f.Page, f.PageSize), len(items), nil
}

func (r *MemoryRepository) Update(ctx context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.products[p.ID]
	if !ok {
		return errors.New("product does not exist")
	}
	stored.Name = p.Name
	stored.CategoryID = p.CategoryID
	stored.SupplierID = p.SupplierID
	stored.UnitOfMeasurement = p.UnitOfMeasurement
	stored.MinimumThreshold = p.MinimumThreshold
	stored.UpdatedAt = p.UpdatedAt
	r.products[p.ID] = stored
	return nil
}

func paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
