package inventoryv1

type Product struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	ProductCode       string `json:"product_code"`
	CategoryID        string `json:"category_id,omitempty"`
	SupplierID        string `json:"supplier_id,omitempty"`
	LocationID        int64  `json:"location_id"`
	UnitOfMeasurement string `json:"unit_of_measurement"`
	CurrentStock      int64  `json:"current_stock"`
	TotalStock        int64  `json:"total_stock"`
	TotalPurchased    int64  `json:"total_purchased"`
	MinimumThreshold  int64  `json:"minimum_threshold"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

// Lot prices are decimal strings.
type Lot struct {
	ID              string `json:"id"`
	ProductID       string `json:"product_id"`
	LotNumber       int64  `json:"lot_number"`
	Quantity        int64  `json:"quantity"`
	InitialQuantity int64  `json:"initial_quantity"`
	PurchasePrice   string `json:"purchase_price"`
	SellingPrice    string `json:"selling_price"`
	PerUnitPrice    string `json:"per_unit_price"`
	LocationID      int64  `json:"location_id"`
	SupplierID      string `json:"supplier_id,omitempty"`
	SourceLotID     string `json:"source_lot_id,omitempty"`
	ReceivedDate    string `json:"received_date"`
}

type Transfer struct {
	ID               string `json:"id"`
	ProductID        string `json:"product_id"`
	SourceLotID      string `json:"source_lot_id"`
	DestinationLotID string `json:"destination_lot_id,omitempty"`
	FromLocationID   int64  `json:"from_location_id"`
	ToLocationID     int64  `json:"to_location_id"`
	Quantity         int64  `json:"quantity"`
	Status           string `json:"status"`
	RequestedBy      string `json:"requested_by,omitempty"`
	Notes            string `json:"notes,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

type Movement struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	LotID          string `json:"lot_id,omitempty"`
	LocationID     int64  `json:"location_id"`
	MovementType   string `json:"movement_type"`
	QuantityChange int64  `json:"quantity_change"`
	QuantityBefore int64  `json:"quantity_before"`
	QuantityAfter  int64  `json:"quantity_after"`
	Amount         string `json:"amount"`
	ReferenceType  string `json:"reference_type,omitempty"`
	ReferenceID    string `json:"reference_id,omitempty"`
	Notes          string `json:"notes,omitempty"`
	CreatedBy      string `json:"created_by,omitempty"`
	CreatedAt      string `json:"created_at"`
}

type LocationStock struct {
	LocationID int64 `json:"location_id"`
	Quantity   int64 `json:"quantity"`
	Lots       int32 `json:"lots"`
}

type Location struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// InventoryService

type CreateProductRequest struct {
	Name              string `json:"name"`
	ProductCode       string `json:"product_code"`
	CategoryID        string `json:"category_id"`
	SupplierID        string `json:"supplier_id"`
	LocationID        int64  `json:"location_id"`
	UnitOfMeasurement string `json:"unit_of_measurement"`
	MinimumThreshold  int64  `json:"minimum_threshold"`
	InitialQuantity   int64  `json:"initial_quantity"`
	PurchasePrice     string `json:"purchase_price"`
	SellingPrice      string `json:"selling_price"`
}

type CreateProductResponse struct {
	Product  *Product `json:"product"`
	Lot      *Lot     `json:"lot,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type AddStockRequest struct {
	ProductID     string `json:"product_id"`
	Quantity      int64  `json:"quantity"`
	PurchasePrice string `json:"purchase_price"`
	SellingPrice  string `json:"selling_price"`
	SupplierID    string `json:"supplier_id"`
	LocationID    int64  `json:"location_id"`
}

type AddStockResponse struct {
	Product *Product `json:"product"`
	Lot     *Lot     `json:"lot"`
}

type SelectLotRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	LotID     string `json:"lot_id"`
}

type LotResponse struct {
	Lot *Lot `json:"lot"`
}

type SellRequest struct {
	ProductID   string `json:"product_id"`
	Quantity    int64  `json:"quantity"`
	LotID       string `json:"lot_id"`
	LocationID  int64  `json:"location_id"`
	ReferenceID string `json:"reference_id"`
}

type SellResponse struct {
	Product  *Product  `json:"product"`
	Lot      *Lot      `json:"lot"`
	Movement *Movement `json:"movement"`
}

type TransferRequest struct {
	ProductID      string `json:"product_id"`
	FromLocationID int64  `json:"from_location_id"`
	ToLocationID   int64  `json:"to_location_id"`
	Quantity       int64  `json:"quantity"`
	SourceLotID    string `json:"source_lot_id"`
	Notes          string `json:"notes"`
}

type TransferResponse struct {
	Transfer       *Transfer `json:"transfer"`
	SourceLot      *Lot      `json:"source_lot"`
	DestinationLot *Lot      `json:"destination_lot"`
	Product        *Product  `json:"product"`
}

type ProductIDRequest struct {
	ProductID string `json:"product_id"`
}

type ProductResponse struct {
	Product *Product `json:"product"`
}

type TransitionRequest struct {
	TransferID string `json:"transfer_id"`
	Notes      string `json:"notes"`
}

type GetTransferRequest struct {
	TransferID string `json:"transfer_id"`
}

type TransferStatusResponse struct {
	Transfer *Transfer `json:"transfer"`
}

type ListTransfersRequest struct {
	ProductID  string `json:"product_id"`
	Status     string `json:"status"`
	LocationID int64  `json:"location_id"`
	Page       int32  `json:"page"`
	PageSize   int32  `json:"page_size"`
}

type ListTransfersResponse struct {
	Transfers []*Transfer `json:"transfers"`
	Total     int32       `json:"total"`
	Page      int32       `json:"page"`
	PageSize  int32       `json:"page_size"`
}

type ListLotsResponse struct {
	Lots []*Lot `json:"lots"`
}

type StockByLocationResponse struct {
	Locations []*LocationStock `json:"locations"`
}

type ListMovementsRequest struct {
	ProductID    string `json:"product_id"`
	LotID        string `json:"lot_id"`
	MovementType string `json:"movement_type"`
	ReferenceID  string `json:"reference_id"`
	Page         int32  `json:"page"`
	PageSize     int32  `json:"page_size"`
}

type ListMovementsResponse struct {
	Movements []*Movement `json:"movements"`
	Total     int32       `json:"total"`
	Page      int32       `json:"page"`
	PageSize  int32       `json:"page_size"`
}

// ProductService

type GetProductRequest struct {
	ID string `json:"id"`
}

type ListProductsRequest struct {
	LocationID int64  `json:"location_id"`
	CategoryID string `json:"category_id"`
	SupplierID string `json:"supplier_id"`
	Search     string `json:"search"`
	LowStock   bool   `json:"low_stock"`
	SortBy     string `json:"sort_by"`
	SortOrder  string `json:"sort_order"`
	Page       int32  `json:"page"`
	PageSize   int32  `json:"page_size"`
}

type ListProductsResponse struct {
	Products []*Product `json:"products"`
	Total    int32      `json:"total"`
	Page     int32      `json:"page"`
	PageSize int32      `json:"page_size"`
}

type UpdateProductRequest struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	CategoryID        string `json:"category_id"`
	SupplierID        string `json:"supplier_id"`
	UnitOfMeasurement string `json:"unit_of_measurement"`
	MinimumThreshold  int64  `json:"minimum_threshold"`
}

// PermissionService

type CheckRequest struct {
	Module     string `json:"module"`
	Action     string `json:"action"`
	LocationID string `json:"location_id"`
}

type CheckResponse struct {
	Allowed bool `json:"allowed"`
}

type ListLocationsResponse struct {
	Locations []*Location `json:"locations"`
}
