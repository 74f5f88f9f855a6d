package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const systemUser = "system"

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// SalesListener consumes completed sales and draws each item from stock.
type SalesListener struct {
	consumer MessageReader
	uc       inventory.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewSalesListener(consumer MessageReader, uc inventory.UseCase, logger logger.ZapLogger) *SalesListener {
	return &SalesListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

func (l *SalesListener) Start(ctx context.Context) {
	l.logger.Info("Starting sales Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping sales Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.backoff):
				}
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type SaleCompletedEvent struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Payload   SalePayload `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type SalePayload struct {
	ID         string            `json:"id"`
	LocationID int64             `json:"location_id"`
	Items      []SaleItemPayload `json:"items"`
}

type SaleItemPayload struct {
	ProductID string `json:"product_id"`
	LotID     string `json:"lot_id"`
	Quantity  int64  `json:"quantity"`
}

// processMessage sells every item independently. A failed item is logged and does not stop the rest.
// Items already recorded as sale movements for the same sale are skipped, so redelivery is harmless.
func (l *SalesListener) processMessage(ctx context.Context, value []byte) {
	var event SaleCompletedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != inventory.EventSaleCompleted {
		return
	}

	l.logger.Info("Processing SaleCompleted event", zap.String("sale_id", event.Payload.ID))

	seen := map[SaleItemPayload]int{}
	for _, item := range event.Payload.Items {
		nth := seen[item]
		seen[item]++

		done, err := l.alreadySold(ctx, event.Payload.ID, item, nth)
		if err != nil {
			l.logger.Error("Failed to check previous sale movements",
				zap.String("sale_id", event.Payload.ID),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
			continue
		}
		if done {
			l.logger.Info("Sale item already processed, skipping",
				zap.String("sale_id", event.Payload.ID),
				zap.String("product_id", item.ProductID),
			)
			continue
		}

		_, err = l.uc.Sell(ctx, &dto.SellInput{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			LotID:       item.LotID,
			LocationID:  event.Payload.LocationID,
			ReferenceID: event.Payload.ID,
			UserID:      systemUser,
		})
		if err != nil {
			l.logger.Error("Failed to sell sale item",
				zap.String("sale_id", event.Payload.ID),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
		}
	}
}

// alreadySold reports whether the nth identical item of the sale already has a recorded sale movement.
func (l *SalesListener) alreadySold(ctx context.Context, saleID string, item SaleItemPayload, nth int) (bool, error) {
	if saleID == "" {
		return false, nil
	}
	movements, _, err := l.uc.ListMovements(ctx, &dto.MovementFilters{
		ProductID:    item.ProductID,
		LotID:        item.LotID,
		MovementType: model.MovementSale,
		ReferenceID:  saleID,
	})
	if err != nil {
		return false, err
	}
	matched := 0
	for _, m := range movements {
		if m.QuantityChange == -item.Quantity {
			matched++
		}
	}
	return matched > nth, nil
}
