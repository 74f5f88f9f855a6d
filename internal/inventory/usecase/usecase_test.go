package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/cache"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	warehouse int64 = 1
	showroom  int64 = 2
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []inventory.StockEvent
}

func (p *recordingPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, v.(inventory.StockEvent))
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}

type recordingCatalog struct {
	synced []string
}

func (c *recordingCatalog) SyncProduct(ctx context.Context, p *model.Product) {
	c.synced = append(c.synced, p.ID)
}

type fixture struct {
	uc      inventory.UseCase
	repo    *repository.MemoryRepository
	pub     *recordingPublisher
	catalog *recordingCatalog
	redis   *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	repo := repository.NewMemoryRepository()
	return newFixtureWithRepo(t, repo, repo)
}

func newFixtureWithRepo(t *testing.T, mem *repository.MemoryRepository, repo inventory.Repository) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	pub := &recordingPublisher{}
	catalog := &recordingCatalog{}
	return &fixture{
		uc:      usecase.NewInventoryUseCase(repo, rc, pub, catalog, logger.NewNop()),
		repo:    mem,
		pub:     pub,
		catalog: catalog,
		redis:   mr,
	}
}

func (f *fixture) createProduct(t *testing.T, qty int64) *dto.CreateProductResult {
	t.Helper()
	res, err := f.uc.CreateProduct(context.Background(), &dto.CreateProductInput{
		Name:            "Teak Dining Chair",
		LocationID:      warehouse,
		SupplierID:      "sup-1",
		InitialQuantity: qty,
		PurchasePrice:   decimal.NewFromInt(1000),
		SellingPrice:    decimal.NewFromInt(1500),
		UserID:          "user-1",
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) product(t *testing.T, id string) *model.Product {
	t.Helper()
	p, err := f.repo.GetProduct(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f *fixture) lot(t *testing.T, id string) *model.ProductLot {
	t.Helper()
	l, err := f.repo.GetLot(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, l)
	return l
}

func TestLotAccountant_EndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// create with 100
	created := f.createProduct(t, 100)
	assert.Empty(t, created.Warnings)
	require.NotNil(t, created.Lot)
	assert.Equal(t, int64(1), created.Lot.LotNumber)
	assert.Equal(t, int64(100), created.Lot.Quantity)
	assert.True(t, decimal.NewFromInt(15).Equal(created.Lot.PerUnitPrice))
	productID := created.Product.ID
	assert.Equal(t, int64(100), f.product(t, productID).TotalStock)
	lot1 := created.Lot.ID

	// restock 50
	restock, err := f.uc.AddStock(ctx, &dto.AddStockInput{
		ProductID:     productID,
		Quantity:      50,
		PurchasePrice: decimal.NewFromInt(600),
		SellingPrice:  decimal.NewFromInt(800),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), restock.Lot.LotNumber)
	assert.Equal(t, int64(50), restock.Lot.Quantity)
	assert.Equal(t, "sup-1", *restock.Lot.SupplierID)
	p := f.product(t, productID)
	assert.Equal(t, int64(150), p.TotalStock)
	assert.Equal(t, int64(150), p.CurrentStock)
	assert.Equal(t, int64(150), p.TotalPurchased)

	// sell 30 from the FIFO lot
	sale, err := f.uc.Sell(ctx, &dto.SellInput{ProductID: productID, Quantity: 30, LocationID: showroom, ReferenceID: "sale-1"})
	require.NoError(t, err)
	assert.Equal(t, lot1, sale.Lot.ID)
	assert.Equal(t, int64(70), f.lot(t, lot1).Quantity)
	assert.True(t, decimal.NewFromInt(450).Equal(sale.Movement.Amount))
	p = f.product(t, productID)
	assert.Equal(t, int64(120), p.TotalStock)
	assert.Equal(t, int64(120), p.CurrentStock)

	// oversell fails without mutation
	_, err = f.uc.Sell(ctx, &dto.SellInput{ProductID: productID, Quantity: 200, LocationID: showroom})
	assert.ErrorIs(t, err, inventory.ErrInsufficientLotQuantity)
	assert.Equal(t, int64(70), f.lot(t, lot1).Quantity)
	assert.Equal(t, int64(120), f.product(t, productID).TotalStock)

	// transfer 40 from lot #1
	tr, err := f.uc.TransferWithLot(ctx, &dto.TransferInput{
		ProductID:    productID,
		ToLocationID: showroom,
		Quantity:     40,
		SourceLotID:  lot1,
		UserID:       "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, model.TransferRequested, tr.Transfer.Status)
	assert.Equal(t, warehouse, tr.Transfer.FromLocationID)
	assert.Equal(t, int64(30), f.lot(t, lot1).Quantity)
	assert.Equal(t, int64(3), tr.DestinationLot.LotNumber)
	assert.Equal(t, int64(40), tr.DestinationLot.Quantity)
	assert.Equal(t, showroom, tr.DestinationLot.LocationID)
	require.NotNil(t, tr.DestinationLot.SourceLotID)
	assert.Equal(t, lot1, *tr.DestinationLot.SourceLotID)
	assert.True(t, f.lot(t, lot1).PerUnitPrice.Equal(tr.DestinationLot.PerUnitPrice))
	assert.Equal(t, int64(80), f.product(t, productID).TotalStock)

	byLocation, err := f.uc.StockByLocation(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, []dto.LocationStock{
		{LocationID: warehouse, Quantity: 80, Lots: 2},
		{LocationID: showroom, Quantity: 40, Lots: 1},
	}, byLocation)

	movements, total, err := f.uc.ListMovements(ctx, &dto.MovementFilters{ProductID: productID})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, model.MovementTransferIn, movements[0].MovementType)

	assert.Equal(t, []string{
		inventory.EventProductCreated,
		inventory.EventLotCreated,
		inventory.EventLotCreated,
		inventory.EventLotConsumed,
		inventory.EventTransferRequested,
	}, f.pub.types())
	assert.NotEmpty(t, f.catalog.synced)
}

func TestCreateProduct_WithoutInitialStock(t *testing.T) {
	f := newFixture(t)
	res := f.createProduct(t, 0)

	assert.Nil(t, res.Lot)
	assert.Empty(t, res.Warnings)
	assert.Regexp(t, `^PRD-[0-9A-F]{8}$`, res.Product.ProductCode)
	assert.Equal(t, "pcs", res.Product.UnitOfMeasurement)

	lots, err := f.uc.ListLots(context.Background(), res.Product.ID)
	require.NoError(t, err)
	assert.Empty(t, lots)
}

func TestCreateProduct_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.CreateProduct(ctx, &dto.CreateProductInput{LocationID: warehouse})
	assert.ErrorIs(t, err, inventory.ErrInvalidInput)

	_, err = f.uc.CreateProduct(ctx, &dto.CreateProductInput{Name: "x", LocationID: warehouse, InitialQuantity: -1})
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)

	_, err = f.uc.CreateProduct(ctx, &dto.CreateProductInput{Name: "x", ProductCode: "SKU-1", LocationID: warehouse})
	require.NoError(t, err)
	_, err = f.uc.CreateProduct(ctx, &dto.CreateProductInput{Name: "y", ProductCode: "SKU-1", LocationID: warehouse})
	assert.ErrorIs(t, err, inventory.ErrProductCodeTaken)
}

type failingLotRepo struct {
	*repository.MemoryRepository
}

func (r failingLotRepo) InsertLot(ctx context.Context, lot *model.ProductLot) error {
	return errors.New("disk full")
}

func TestCreateProduct_LotFailureKeepsProduct(t *testing.T) {
	mem := repository.NewMemoryRepository()
	f := newFixtureWithRepo(t, mem, failingLotRepo{mem})

	res := f.createProduct(t, 100)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "initial lot was not created")
	assert.Nil(t, res.Lot)

	p := f.product(t, res.Product.ID)
	assert.Equal(t, int64(0), p.TotalStock)
	assert.Equal(t, int64(0), p.TotalPurchased)
}

func TestCreateProduct_LotFailureDoesNotConsumeLotNumber(t *testing.T) {
	mem := repository.NewMemoryRepository()
	failing := newFixtureWithRepo(t, mem, failingLotRepo{mem})
	res := failing.createProduct(t, 100)
	require.Nil(t, res.Lot)

	f := newFixtureWithRepo(t, mem, mem)
	added, err := f.uc.AddStock(context.Background(), &dto.AddStockInput{ProductID: res.Product.ID, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(1), added.Lot.LotNumber)
}

func TestAddStock_LotFailureLeavesProductUntouched(t *testing.T) {
	mem := repository.NewMemoryRepository()
	ok := newFixtureWithRepo(t, mem, mem)
	created := ok.createProduct(t, 10)

	f := newFixtureWithRepo(t, mem, failingLotRepo{mem})
	_, err := f.uc.AddStock(context.Background(), &dto.AddStockInput{ProductID: created.Product.ID, Quantity: 5})
	assert.ErrorIs(t, err, inventory.ErrStoreOperationFailed)

	var storeErr *inventory.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "insert lot", storeErr.Op)

	p := f.product(t, created.Product.ID)
	assert.Equal(t, int64(10), p.TotalStock)
	assert.Equal(t, int64(10), p.TotalPurchased)
}

func TestAddStock_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.AddStock(ctx, &dto.AddStockInput{ProductID: "missing", Quantity: 1})
	assert.ErrorIs(t, err, inventory.ErrProductNotFound)

	_, err = f.uc.AddStock(ctx, &dto.AddStockInput{ProductID: "missing", Quantity: 0})
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)
}

func TestAddStock_OtherLocationDoesNotChangeHomeAggregate(t *testing.T) {
	f := newFixture(t)
	created := f.createProduct(t, 10)
	other := showroom

	res, err := f.uc.AddStock(context.Background(), &dto.AddStockInput{
		ProductID:  created.Product.ID,
		Quantity:   5,
		LocationID: &other,
	})
	require.NoError(t, err)
	assert.Equal(t, showroom, res.Lot.LocationID)
	assert.Equal(t, int64(10), res.Product.TotalStock)
	assert.Equal(t, int64(15), res.Product.TotalPurchased)
}

func TestLotNumbering_NeverReusesEmptiedLots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createProduct(t, 5)

	_, err := f.uc.Sell(ctx, &dto.SellInput{ProductID: created.Product.ID, Quantity: 5, LocationID: warehouse})
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.lot(t, created.Lot.ID).Quantity)

	res, err := f.uc.AddStock(ctx, &dto.AddStockInput{ProductID: created.Product.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Lot.LotNumber)
}

type staleSequenceRepo struct {
	*repository.MemoryRepository
	stale int64
	calls int
}

func (r *staleSequenceRepo) NextLotNumber(ctx context.Context, productID string) (int64, error) {
	r.calls++
	if r.calls == 1 {
		return r.stale, nil
	}
	return r.MemoryRepository.NextLotNumber(ctx, productID)
}

func TestAddStock_RetriesTakenLotNumber(t *testing.T) {
	mem := repository.NewMemoryRepository()
	base := newFixtureWithRepo(t, mem, mem)
	created := base.createProduct(t, 5)

	repo := &staleSequenceRepo{MemoryRepository: mem, stale: 1}
	f := newFixtureWithRepo(t, mem, repo)

	res, err := f.uc.AddStock(context.Background(), &dto.AddStockInput{ProductID: created.Product.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Lot.LotNumber)
	assert.Equal(t, 2, repo.calls)
}

func TestRecomputeStock_IdempotentAndRepairs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createProduct(t, 40)

	first, err := f.uc.RecomputeStock(ctx, created.Product.ID)
	require.NoError(t, err)
	second, err := f.uc.RecomputeStock(ctx, created.Product.ID)
	require.NoError(t, err)
	assert.Equal(t, first.TotalStock, second.TotalStock)
	assert.Equal(t, int64(40), second.TotalStock)

	corrupted := f.product(t, created.Product.ID)
	corrupted.TotalStock = 999
	corrupted.CurrentStock = 3
	require.NoError(t, f.repo.UpdateProduct(ctx, corrupted))

	repaired, err := f.uc.RecomputeStock(ctx, created.Product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), repaired.TotalStock)
	assert.Equal(t, int64(40), repaired.CurrentStock)

	_, err = f.uc.RecomputeStock(ctx, "missing")
	assert.ErrorIs(t, err, inventory.ErrProductNotFound)
}

func TestSell_Override(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createProduct(t, 10)
	restock, err := f.uc.AddStock(ctx, &dto.AddStockInput{ProductID: created.Product.ID, Quantity: 20})
	require.NoError(t, err)

	sale, err := f.uc.Sell(ctx, &dto.SellInput{ProductID: created.Product.ID, Quantity: 15, LotID: restock.Lot.ID, LocationID: warehouse})
	require.NoError(t, err)
	assert.Equal(t, restock.Lot.ID, sale.Lot.ID)
	assert.Equal(t, int64(5), f.lot(t, restock.Lot.ID).Quantity)
	assert.Equal(t, int64(10), f.lot(t, created.Lot.ID).Quantity)

	_, err = f.uc.Sell(ctx, &dto.SellInput{ProductID: created.Product.ID, Quantity: 1, LotID: "nope", LocationID: warehouse})
	assert.ErrorIs(t, err, inventory.ErrLotNotFound)
}

func TestSell_LockHeldElsewhere(t *testing.T) {
	f := newFixture(t)
	created := f.createProduct(t, 10)
	require.NoError(t, f.redis.Set("lock:inventory:"+created.Product.ID, "another-instance"))

	_, err := f.uc.Sell(context.Background(), &dto.SellInput{ProductID: created.Product.ID, Quantity: 1, LocationID: warehouse})
	assert.ErrorIs(t, err, inventory.ErrSystemBusy)
	assert.Equal(t, int64(10), f.lot(t, created.Lot.ID).Quantity)
}

func TestSelectLotFIFO(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createProduct(t, 10)
	restock, err := f.uc.AddStock(ctx, &dto.AddStockInput{ProductID: created.Product.ID, Quantity: 20})
	require.NoError(t, err)

	lot, err := f.uc.SelectLotFIFO(ctx, created.Product.ID, 10, "")
	require.NoError(t, err)
	assert.Equal(t, created.Lot.ID, lot.ID)

	_, err = f.uc.SelectLotFIFO(ctx, created.Product.ID, 11, "")
	assert.ErrorIs(t, err, inventory.ErrInsufficientLotQuantity)

	lot, err = f.uc.SelectLotFIFO(ctx, created.Product.ID, 11, restock.Lot.ID)
	require.NoError(t, err)
	assert.Equal(t, restock.Lot.ID, lot.ID)

	_, err = f.uc.SelectLotFIFO(ctx, "missing", 1, "")
	assert.ErrorIs(t, err, inventory.ErrProductNotFound)
}
