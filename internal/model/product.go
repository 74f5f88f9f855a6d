package model

type Product struct {
	BaseModel
	Name              string  `db:"name" json:"name"`
	ProductCode       string  `db:"product_code" json:"product_code"`
	CategoryID        *string `db:"category_id" json:"category_id"`
	SupplierID        *string `db:"supplier_id" json:"supplier_id"`
	LocationID        int64   `db:"location_id" json:"location_id"` // home location
	UnitOfMeasurement string  `db:"unit_of_measurement" json:"unit_of_measurement"`
	CurrentStock      int64   `db:"current_stock" json:"current_stock"`
	TotalStock        int64   `db:"total_stock" json:"total_stock"`
	TotalPurchased    int64   `db:"total_purchased" json:"total_purchased"`
	MinimumThreshold  int64   `db:"minimum_threshold" json:"minimum_threshold"`
}

// IsLowStock reports whether the home stock has fallen to the reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.TotalStock <= p.MinimumThreshold
}
