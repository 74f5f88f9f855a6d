package inventoryv1

import (
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func FromProduct(p *model.Product) *Product {
	if p == nil {
		return nil
	}
	return &Product{
		ID:                p.ID,
		Name:              p.Name,
		ProductCode:       p.ProductCode,
		CategoryID:        deref(p.CategoryID),
		SupplierID:        deref(p.SupplierID),
		LocationID:        p.LocationID,
		UnitOfMeasurement: p.UnitOfMeasurement,
		CurrentStock:      p.CurrentStock,
		TotalStock:        p.TotalStock,
		TotalPurchased:    p.TotalPurchased,
		MinimumThreshold:  p.MinimumThreshold,
		CreatedAt:         formatTime(p.CreatedAt),
		UpdatedAt:         formatTime(p.UpdatedAt),
	}
}

func FromLot(l *model.ProductLot) *Lot {
	if l == nil {
		return nil
	}
	return &Lot{
		ID:              l.ID,
		ProductID:       l.ProductID,
		LotNumber:       l.LotNumber,
		Quantity:        l.Quantity,
		InitialQuantity: l.InitialQuantity,
		PurchasePrice:   l.PurchasePrice.String(),
		SellingPrice:    l.SellingPrice.String(),
		PerUnitPrice:    l.PerUnitPrice.String(),
		LocationID:      l.LocationID,
		SupplierID:      deref(l.SupplierID),
		SourceLotID:     deref(l.SourceLotID),
		ReceivedDate:    formatTime(l.ReceivedDate),
	}
}

func FromTransfer(t *model.Transfer) *Transfer {
	if t == nil {
		return nil
	}
	return &Transfer{
		ID:               t.ID,
		ProductID:        t.ProductID,
		SourceLotID:      t.SourceLotID,
		DestinationLotID: deref(t.DestinationLotID),
		FromLocationID:   t.FromLocationID,
		ToLocationID:     t.ToLocationID,
		Quantity:         t.Quantity,
		Status:           string(t.Status),
		RequestedBy:      deref(t.RequestedBy),
		Notes:            t.Notes,
		CreatedAt:        formatTime(t.CreatedAt),
		UpdatedAt:        formatTime(t.UpdatedAt),
	}
}

func FromMovement(m *model.InventoryMovement) *Movement {
	if m == nil {
		return nil
	}
	return &Movement{
		ID:             m.ID,
		ProductID:      m.ProductID,
		LotID:          deref(m.LotID),
		LocationID:     m.LocationID,
		MovementType:   string(m.MovementType),
		QuantityChange: m.QuantityChange,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Amount:         m.Amount.String(),
		ReferenceType:  deref(m.ReferenceType),
		ReferenceID:    deref(m.ReferenceID),
		Notes:          m.Notes,
		CreatedBy:      deref(m.CreatedBy),
		CreatedAt:      formatTime(m.CreatedAt),
	}
}

func FromLocation(l *model.Location) *Location {
	return &Location{ID: l.ID, Name: l.Name, Type: string(l.Type), Status: string(l.Status)}
}
