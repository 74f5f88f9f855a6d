package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductLot struct {
	BaseModel
	ProductID       string          `db:"product_id" json:"product_id"`
	LotNumber       int64           `db:"lot_number" json:"lot_number"`
	Quantity        int64           `db:"quantity" json:"quantity"`
	InitialQuantity int64           `db:"initial_quantity" json:"initial_quantity"`
	PurchasePrice   decimal.Decimal `db:"purchase_price" json:"purchase_price"`
	SellingPrice    decimal.Decimal `db:"selling_price" json:"selling_price"`
	PerUnitPrice    decimal.Decimal `db:"per_unit_price" json:"per_unit_price"`
	LocationID      int64           `db:"location_id" json:"location_id"`
	SupplierID      *string         `db:"supplier_id" json:"supplier_id"`
	SourceLotID     *string         `db:"source_lot_id" json:"source_lot_id"` // set on transfer-destination lots
	ReceivedDate    time.Time       `db:"received_date" json:"received_date"`
}

// PerUnit derives the unit sale price from a lot's total selling price.
func PerUnit(sellingPrice decimal.Decimal, quantity int64) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return sellingPrice.DivRound(decimal.NewFromInt(quantity), 4)
}
