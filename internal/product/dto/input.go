package dto

// UpdateProductInput carries descriptive fields only. Stock and pricing are owned by lots.
type UpdateProductInput struct {
	ID                string
	Name              string
	CategoryID        string
	SupplierID        string
	UnitOfMeasurement string
	MinimumThreshold  int64
}
