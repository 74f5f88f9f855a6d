package dto

type ProductFilters struct {
	LocationID  *int64
	CategoryID  string
	SupplierID  string
	SearchQuery string // name or product code
	LowStock    bool   // total_stock <= minimum_threshold
	SortBy      string // name, product_code, total_stock, created_at
	SortOrder   string // asc, desc
	Page        int
	PageSize    int
}
