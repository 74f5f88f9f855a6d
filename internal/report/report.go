// Package report renders stock exports as xlsx workbooks.
package report

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product"
	"github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	LotsSheet     = "Lots"
	SummarySheet  = "By Location"
	productsBatch = 100
)

var (
	lotHeader     = []interface{}{"Product Code", "Product", "Lot #", "Location", "Quantity", "Initial Quantity", "Purchase Price", "Selling Price", "Per Unit Price", "Received"}
	summaryHeader = []interface{}{"Location", "Products", "Lots", "Units", "Stock Value"}
)

type LotLister interface {
	ListLots(ctx context.Context, productID string) ([]model.ProductLot, error)
}

type LocationNamer interface {
	Name(id int64) string
}

type Exporter struct {
	products  product.UseCase
	lots      LotLister
	locations LocationNamer
	logger    logger.ZapLogger
}

func NewExporter(products product.UseCase, lots LotLister, locations LocationNamer, log logger.ZapLogger) *Exporter {
	return &Exporter{
		products:  products,
		lots:      lots,
		locations: locations,
		logger:    log,
	}
}

type locationTotals struct {
	products map[string]struct{}
	lots     int
	units    int64
	value    decimal.Decimal
}

// WriteStock writes one row per lot holding stock and a per-location summary.
// A non-nil locationID limits both sheets to lots placed there.
func (e *Exporter) WriteStock(ctx context.Context, w io.Writer, locationID *int64) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", LotsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := writeHeader(f, LotsSheet, lotHeader, bold); err != nil {
		return err
	}
	if err := writeHeader(f, SummarySheet, summaryHeader, bold); err != nil {
		return err
	}

	totals := map[int64]*locationTotals{}
	row := 2
	for page := 1; ; page++ {
		products, total, err := e.products.ListProducts(ctx, &dto.ProductFilters{
			SortBy:   "product_code",
			Page:     page,
			PageSize: productsBatch,
		})
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}

		for _, p := range products {
			lots, err := e.lots.ListLots(ctx, p.ID)
			if err != nil {
				return fmt.Errorf("list lots of %s: %w", p.ID, err)
			}
			for _, l := range lots {
				if l.Quantity <= 0 || (locationID != nil && l.LocationID != *locationID) {
					continue
				}
				if err := e.writeLot(f, row, &p, &l); err != nil {
					return err
				}
				row++

				t, ok := totals[l.LocationID]
				if !ok {
					t = &locationTotals{products: map[string]struct{}{}}
					totals[l.LocationID] = t
				}
				t.products[p.ID] = struct{}{}
				t.lots++
				t.units += l.Quantity
				t.value = t.value.Add(l.PerUnitPrice.Mul(decimal.NewFromInt(l.Quantity)))
			}
		}

		if len(products) == 0 || page*productsBatch >= total {
			break
		}
	}

	if err := e.writeSummary(f, totals); err != nil {
		return err
	}
	return f.Write(w)
}

func writeHeader(f *excelize.File, sheet string, header []interface{}, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func (e *Exporter) writeLot(f *excelize.File, row int, p *model.Product, l *model.ProductLot) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := []interface{}{
		p.ProductCode,
		p.Name,
		l.LotNumber,
		e.locations.Name(l.LocationID),
		l.Quantity,
		l.InitialQuantity,
		l.PurchasePrice.InexactFloat64(),
		l.SellingPrice.InexactFloat64(),
		l.PerUnitPrice.InexactFloat64(),
		l.ReceivedDate.Format("2006-01-02"),
	}
	return f.SetSheetRow(LotsSheet, cell, &values)
}

func (e *Exporter) writeSummary(f *excelize.File, totals map[int64]*locationTotals) error {
	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for i, id := range ids {
		t := totals[id]
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			e.locations.Name(id),
			len(t.products),
			t.lots,
			t.units,
			t.value.InexactFloat64(),
		}
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
