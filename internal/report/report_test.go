package report_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/repository"
	inventoryuc "github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/location"
	locationrepo "github.com/fekuna/omnipos-inventory-service/internal/location/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	productuc "github.com/fekuna/omnipos-inventory-service/internal/product/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/report"
	"github.com/fekuna/omnipos-inventory-service/pkg/cache"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type nopPublisher struct{}

func (nopPublisher) PublishJSON(ctx context.Context, key string, v any) error { return nil }

func newExporter(t *testing.T) *report.Exporter {
	t.Helper()
	ctx := context.Background()
	log := logger.NewNop()
	mr := miniredis.RunT(t)
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	repo := repository.NewMemoryRepository()
	products := productuc.NewProductUseCase(repo, rc, nil, log)
	inv := inventoryuc.NewInventoryUseCase(repo, rc, nopPublisher{}, products, log)

	dir := location.NewDirectory(locationrepo.NewMemoryRepository(
		model.Location{ID: 1, Name: "Central Warehouse", Type: model.LocationWarehouse},
		model.Location{ID: 2, Name: "City Showroom", Type: model.LocationShowroom},
	), log)
	require.NoError(t, dir.Load(ctx))

	a, err := inv.CreateProduct(ctx, &dto.CreateProductInput{
		Name: "Alpha Chair", ProductCode: "PRD-A", LocationID: 1, InitialQuantity: 10,
		PurchasePrice: decimal.NewFromInt(800), SellingPrice: decimal.NewFromInt(1200),
	})
	require.NoError(t, err)
	_, err = inv.CreateProduct(ctx, &dto.CreateProductInput{
		Name: "Beta Stool", ProductCode: "PRD-B", LocationID: 1, InitialQuantity: 4,
		PurchasePrice: decimal.NewFromInt(100), SellingPrice: decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	_, err = inv.TransferWithLot(ctx, &dto.TransferInput{
		ProductID: a.Product.ID, FromLocationID: 1, ToLocationID: 2, Quantity: 3, SourceLotID: a.Lot.ID,
	})
	require.NoError(t, err)

	return report.NewExporter(products, inv, dir, log)
}

func readSheet(t *testing.T, buf *bytes.Buffer, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestWriteStock(t *testing.T) {
	e := newExporter(t)
	var buf bytes.Buffer
	require.NoError(t, e.WriteStock(context.Background(), &buf, nil))
	data := buf.Bytes()

	lots := readSheet(t, bytes.NewBuffer(data), report.LotsSheet)
	require.Len(t, lots, 4)
	assert.Equal(t, "Product Code", lots[0][0])
	assert.Equal(t, []string{"PRD-A", "Alpha Chair", "1", "Central Warehouse", "7", "10"}, lots[1][:6])
	assert.Equal(t, []string{"PRD-A", "Alpha Chair", "2", "City Showroom", "3", "3"}, lots[2][:6])
	assert.Equal(t, "120", lots[2][8])
	assert.Equal(t, []string{"PRD-B", "Beta Stool", "1", "Central Warehouse", "4", "4"}, lots[3][:6])

	summary := readSheet(t, bytes.NewBuffer(data), report.SummarySheet)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"Central Warehouse", "2", "2", "11", "1040"}, summary[1])
	assert.Equal(t, []string{"City Showroom", "1", "1", "3", "360"}, summary[2])
}

func TestWriteStock_SingleLocation(t *testing.T) {
	e := newExporter(t)
	var buf bytes.Buffer
	showroom := int64(2)
	require.NoError(t, e.WriteStock(context.Background(), &buf, &showroom))
	data := buf.Bytes()

	lots := readSheet(t, bytes.NewBuffer(data), report.LotsSheet)
	require.Len(t, lots, 2)
	assert.Equal(t, "City Showroom", lots[1][3])

	summary := readSheet(t, bytes.NewBuffer(data), report.SummarySheet)
	require.Len(t, summary, 2)
}
