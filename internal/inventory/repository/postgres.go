package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const (
	uniqueViolation       = "23505"
	lotNumberConstraint   = "product_lots_product_id_lot_number_key"
	productCodeConstraint = "products_product_code_key"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func (r *PGRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	query := `SELECT * FROM products WHERE id = $1 LIMIT 1`
	if err := r.DB.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) InsertProduct(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, name, product_code, category_id, supplier_id, location_id, unit_of_measurement,
            current_stock, total_stock, total_purchased, minimum_threshold, created_at, updated_at
        )
        VALUES (
            :id, :name, :product_code, :category_id, :supplier_id, :location_id, :unit_of_measurement,
            :current_stock, :total_stock, :total_purchased, :minimum_threshold, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	if name, ok := uniqueConstraint(err); ok && name == productCodeConstraint {
		return inventory.ErrProductCodeTaken
	}
	return err
}

// UpdateProduct persists the stock aggregates. Descriptive fields go through the catalog repository.
func (r *PGRepository) UpdateProduct(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products SET
            current_stock = :current_stock,
            total_stock = :total_stock,
            total_purchased = :total_purchased,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *PGRepository) IsProductCodeUnique(ctx context.Context, code, excludeID string) (bool, error) {
	var count int
	query := `SELECT count(*) FROM products WHERE product_code = $1`
	args := []interface{}{code}
	if excludeID != "" {
		query += ` AND id <> $2`
		args = append(args, excludeID)
	}
	if err := r.DB.GetContext(ctx, &count, query, args...); err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *PGRepository) ListLots(ctx context.Context, productID string) ([]model.ProductLot, error) {
	lots := []model.ProductLot{}
	query := `SELECT * FROM product_lots WHERE product_id = $1 ORDER BY lot_number ASC`
	if err := r.DB.SelectContext(ctx, &lots, query, productID); err != nil {
		return nil, err
	}
	return lots, nil
}

func (r *PGRepository) GetLot(ctx context.Context, id string) (*model.ProductLot, error) {
	var lot model.ProductLot
	query := `SELECT * FROM product_lots WHERE id = $1 LIMIT 1`
	if err := r.DB.GetContext(ctx, &lot, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

func (r *PGRepository) InsertLot(ctx context.Context, lot *model.ProductLot) error {
	query := `
        INSERT INTO product_lots (
            id, product_id, lot_number, quantity, initial_quantity,
            purchase_price, selling_price, per_unit_price,
            location_id, supplier_id, source_lot_id, received_date, created_at, updated_at
        )
        VALUES (
            :id, :product_id, :lot_number, :quantity, :initial_quantity,
            :purchase_price, :selling_price, :per_unit_price,
            :location_id, :supplier_id, :source_lot_id, :received_date, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, lot)
	if name, ok := uniqueConstraint(err); ok && name == lotNumberConstraint {
		return inventory.ErrDuplicateLotNumber
	}
	return err
}

func (r *PGRepository) UpdateLot(ctx context.Context, lot *model.ProductLot) error {
	query := `
        UPDATE product_lots SET
            quantity = :quantity,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, lot)
	return err
}

// NextLotNumber bumps the per-product counter atomically. The counter never falls behind lots
// that were written without it.
func (r *PGRepository) NextLotNumber(ctx context.Context, productID string) (int64, error) {
	var next int64
	query := `
        INSERT INTO lot_sequences (product_id, last_number)
        VALUES ($1, (SELECT COALESCE(MAX(lot_number), 0) + 1 FROM product_lots WHERE product_id = $1))
        ON CONFLICT (product_id) DO UPDATE SET last_number = GREATEST(
            lot_sequences.last_number,
            (SELECT COALESCE(MAX(lot_number), 0) FROM product_lots WHERE product_id = $1)
        ) + 1
        RETURNING last_number
    `
	if err := r.DB.GetContext(ctx, &next, query, productID); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *PGRepository) ReleaseLotNumber(ctx context.Context, productID string, n int64) error {
	query := `UPDATE lot_sequences SET last_number = last_number - 1 WHERE product_id = $1 AND last_number = $2`
	_, err := r.DB.ExecContext(ctx, query, productID, n)
	return err
}

func (r *PGRepository) InsertTransfer(ctx context.Context, t *model.Transfer) error {
	query := `
        INSERT INTO transfers (
            id, product_id, source_lot_id, destination_lot_id, from_location_id, to_location_id,
            source_debited, quantity, status, requested_by, notes, created_at, updated_at
        )
        VALUES (
            :id, :product_id, :source_lot_id, :destination_lot_id, :from_location_id, :to_location_id,
            :source_debited, :quantity, :status, :requested_by, :notes, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, t)
	return err
}

func (r *PGRepository) UpdateTransfer(ctx context.Context, t *model.Transfer) error {
	query := `
        UPDATE transfers SET
            destination_lot_id = :destination_lot_id,
            source_debited = :source_debited,
            status = :status,
            notes = :notes,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, t)
	return err
}

func (r *PGRepository) GetTransfer(ctx context.Context, id string) (*model.Transfer, error) {
	var t model.Transfer
	query := `SELECT * FROM transfers WHERE id = $1 LIMIT 1`
	if err := r.DB.GetContext(ctx, &t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGRepository) ListTransfers(ctx context.Context, f *dto.TransferFilters) ([]model.Transfer, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = string(f.Status)
	}
	if f.LocationID != nil {
		conditions = append(conditions, "(from_location_id = :location_id OR to_location_id = :location_id)")
		args["location_id"] = *f.LocationID
	}

	items := []model.Transfer{}
	count, err := r.namedList(ctx, "transfers", conditions, args, "created_at DESC", f.Page, f.PageSize, &items)
	return items, count, err
}

func (r *PGRepository) LogMovement(ctx context.Context, m *model.InventoryMovement) error {
	query := `
        INSERT INTO inventory_movements (
            id, product_id, lot_id, location_id,
            movement_type, quantity_change, quantity_before, quantity_after, amount,
            reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :product_id, :lot_id, :location_id,
            :movement_type, :quantity_change, :quantity_before, :quantity_after, :amount,
            :reference_type, :reference_id, :notes, :created_by, :created_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, m)
	return err
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.LotID != "" {
		conditions = append(conditions, "lot_id = :lot_id")
		args["lot_id"] = f.LotID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = string(f.MovementType)
	}
	if f.ReferenceID != "" {
		conditions = append(conditions, "reference_id = :reference_id")
		args["reference_id"] = f.ReferenceID
	}

	items := []model.InventoryMovement{}
	count, err := r.namedList(ctx, "inventory_movements", conditions, args, "created_at DESC", f.Page, f.PageSize, &items)
	return items, count, err
}

// namedList runs a filtered count and a paginated select against one table.
func (r *PGRepository) namedList(ctx context.Context, table string, conditions []string, args map[string]interface{}, orderBy string, page, pageSize int, dest interface{}) (int, error) {
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM "+table+whereClause, args)
	if err != nil {
		return 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return 0, err
	}

	query := "SELECT * FROM " + table + whereClause + " ORDER BY " + orderBy
	if pageSize > 0 {
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, dest, args); err != nil {
		return 0, err
	}
	return count, nil
}
