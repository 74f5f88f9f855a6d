package inventory

import "time"

const (
	EventProductCreated        = "ProductCreated"
	EventLotCreated            = "LotCreated"
	EventLotConsumed           = "LotConsumed"
	EventTransferRequested     = "TransferRequested"
	EventTransferStatusChanged = "TransferStatusChanged"

	// consumed from the sales topic
	EventSaleCompleted = "SaleCompleted"
)

type StockEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ProductID string    `json:"product_id"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}
