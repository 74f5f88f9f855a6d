package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementStockIn     MovementType = "stock_in"
	MovementStockOut    MovementType = "stock_out"
	MovementSale        MovementType = "sale"
	MovementTransferOut MovementType = "transfer_out"
	MovementTransferIn  MovementType = "transfer_in"
)

// InventoryMovement is one audit row per lot quantity change. Before and after refer to the lot.
type InventoryMovement struct {
	ID             string          `db:"id" json:"id"`
	ProductID      string          `db:"product_id" json:"product_id"`
	LotID          *string         `db:"lot_id" json:"lot_id"`
	LocationID     int64           `db:"location_id" json:"location_id"`
	MovementType   MovementType    `db:"movement_type" json:"movement_type"`
	QuantityChange int64           `db:"quantity_change" json:"quantity_change"`
	QuantityBefore int64           `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int64           `db:"quantity_after" json:"quantity_after"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	ReferenceType  *string         `db:"reference_type" json:"reference_type"`
	ReferenceID    *string         `db:"reference_id" json:"reference_id"`
	Notes          string          `db:"notes" json:"notes"`
	CreatedBy      *string         `db:"created_by" json:"created_by"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
