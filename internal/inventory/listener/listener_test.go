package listener

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/cache"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopPublisher struct{}

func (nopPublisher) PublishJSON(ctx context.Context, key string, v any) error { return nil }

type nopCatalog struct{}

func (nopCatalog) SyncProduct(ctx context.Context, p *model.Product) {}

// queueReader hands out queued messages, then blocks until the context ends.
type queueReader struct {
	msgs []kafka.Message
	errs int
}

func (r *queueReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if r.errs > 0 {
		r.errs--
		return kafka.Message{}, errors.New("broker unavailable")
	}
	if len(r.msgs) > 0 {
		m := r.msgs[0]
		r.msgs = r.msgs[1:]
		return m, nil
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func setup(t *testing.T) (inventory.UseCase, *dto.CreateProductResult) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	uc := usecase.NewInventoryUseCase(repository.NewMemoryRepository(), rc, nopPublisher{}, nopCatalog{}, logger.NewNop())

	res, err := uc.CreateProduct(context.Background(), &dto.CreateProductInput{
		Name:            "Linen Cushion",
		LocationID:      2,
		InitialQuantity: 20,
		PurchasePrice:   decimal.NewFromInt(100),
		SellingPrice:    decimal.NewFromInt(400),
	})
	require.NoError(t, err)
	return uc, res
}

func saleMessage(t *testing.T, items ...SaleItemPayload) kafka.Message {
	t.Helper()
	value, err := json.Marshal(SaleCompletedEvent{
		EventID:   "evt-1",
		EventType: inventory.EventSaleCompleted,
		Payload:   SalePayload{ID: "sale-1", LocationID: 2, Items: items},
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestProcessMessage_SellsEachItem(t *testing.T) {
	uc, res := setup(t)
	l := NewSalesListener(nil, uc, logger.NewNop())

	msg := saleMessage(t,
		SaleItemPayload{ProductID: res.Product.ID, Quantity: 5},
		SaleItemPayload{ProductID: "missing", Quantity: 1},
		SaleItemPayload{ProductID: res.Product.ID, Quantity: 3},
	)
	l.processMessage(context.Background(), msg.Value)

	lots, err := uc.ListLots(context.Background(), res.Product.ID)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, int64(12), lots[0].Quantity)

	movements, _, err := uc.ListMovements(context.Background(), &dto.MovementFilters{
		ProductID:    res.Product.ID,
		MovementType: model.MovementSale,
	})
	require.NoError(t, err)
	require.Len(t, movements, 2)
	for _, m := range movements {
		require.NotNil(t, m.ReferenceID)
		assert.Equal(t, "sale-1", *m.ReferenceID)
		require.NotNil(t, m.CreatedBy)
		assert.Equal(t, "system", *m.CreatedBy)
	}
}

func TestProcessMessage_RedeliveredSaleIsSoldOnce(t *testing.T) {
	uc, res := setup(t)
	l := NewSalesListener(nil, uc, logger.NewNop())

	msg := saleMessage(t,
		SaleItemPayload{ProductID: res.Product.ID, Quantity: 5},
		SaleItemPayload{ProductID: res.Product.ID, Quantity: 3},
	)
	l.processMessage(context.Background(), msg.Value)
	l.processMessage(context.Background(), msg.Value)

	lots, err := uc.ListLots(context.Background(), res.Product.ID)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, int64(12), lots[0].Quantity)

	_, count, err := uc.ListMovements(context.Background(), &dto.MovementFilters{
		ProductID:    res.Product.ID,
		MovementType: model.MovementSale,
		ReferenceID:  "sale-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestProcessMessage_RedeliveryRetriesOnlyFailedItems(t *testing.T) {
	uc, res := setup(t)
	l := NewSalesListener(nil, uc, logger.NewNop())

	msg := saleMessage(t,
		SaleItemPayload{ProductID: res.Product.ID, Quantity: 25},
		SaleItemPayload{ProductID: res.Product.ID, Quantity: 4},
	)
	l.processMessage(context.Background(), msg.Value)
	l.processMessage(context.Background(), msg.Value)

	lots, err := uc.ListLots(context.Background(), res.Product.ID)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, int64(16), lots[0].Quantity)
}

func TestProcessMessage_IgnoresOtherEvents(t *testing.T) {
	uc, res := setup(t)
	l := NewSalesListener(nil, uc, logger.NewNop())

	value, _ := json.Marshal(map[string]any{"event_type": "OrderCreated", "payload": map[string]any{}})
	l.processMessage(context.Background(), value)
	l.processMessage(context.Background(), []byte("not json"))

	lots, err := uc.ListLots(context.Background(), res.Product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), lots[0].Quantity)
}

func TestStart_ConsumesUntilCancelled(t *testing.T) {
	uc, res := setup(t)
	reader := &queueReader{
		errs: 1,
		msgs: []kafka.Message{saleMessage(t, SaleItemPayload{ProductID: res.Product.ID, Quantity: 4})},
	}
	l := NewSalesListener(reader, uc, logger.NewNop())
	l.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		p, err := uc.RecomputeStock(context.Background(), res.Product.ID)
		return err == nil && p.TotalStock == 16
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
}
