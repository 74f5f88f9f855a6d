package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	Name              string
	ProductCode       string // generated when empty
	CategoryID        string
	SupplierID        string
	LocationID        int64
	UnitOfMeasurement string
	MinimumThreshold  int64
	InitialQuantity   int64
	PurchasePrice     decimal.Decimal
	SellingPrice      decimal.Decimal
	UserID            string
}

type AddStockInput struct {
	ProductID     string
	Quantity      int64
	PurchasePrice decimal.Decimal
	SellingPrice  decimal.Decimal
	SupplierID    *string // defaults to the product's
	LocationID    *int64  // defaults to the product's
	UserID        string
}

type SellInput struct {
	ProductID   string
	Quantity    int64
	LotID       string // FIFO when empty
	LocationID  int64
	ReferenceID string
	UserID      string
}

type TransferInput struct {
	ProductID      string
	FromLocationID int64 // defaults to the source lot's location
	ToLocationID   int64
	Quantity       int64
	SourceLotID    string
	Notes          string
	UserID         string
}

type TransitionInput struct {
	TransferID string
	Notes      string
	UserID     string
}
