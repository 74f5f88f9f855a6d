package dto

import "github.com/fekuna/omnipos-inventory-service/internal/model"

type TransferFilters struct {
	ProductID  string
	Status     model.TransferStatus
	LocationID *int64 // matches either end
	Page       int
	PageSize   int
}

type MovementFilters struct {
	ProductID    string
	LotID        string
	MovementType model.MovementType
	ReferenceID  string
	Page         int
	PageSize     int
}

type CreateProductResult struct {
	Product  *model.Product
	Lot      *model.ProductLot
	Warnings []string
}

type AddStockResult struct {
	Product *model.Product
	Lot     *model.ProductLot
}

type SellResult struct {
	Product  *model.Product
	Lot      *model.ProductLot
	Movement *model.InventoryMovement
}

type TransferResult struct {
	Transfer       *model.Transfer
	SourceLot      *model.ProductLot
	DestinationLot *model.ProductLot
	Product        *model.Product
}

type LocationStock struct {
	LocationID int64 `json:"location_id"`
	Quantity   int64 `json:"quantity"`
	Lots       int   `json:"lots"`
}
