package repository

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.Location, error) {
	var locations []model.Location
	query := `SELECT id, name, type, status, created_at, updated_at FROM locations ORDER BY id`
	if err := r.DB.SelectContext(ctx, &locations, query); err != nil {
		return nil, err
	}
	return locations, nil
}
