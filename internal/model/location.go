package model

import "time"

type LocationType string

const (
	LocationWarehouse LocationType = "warehouse"
	LocationShowroom  LocationType = "showroom"
)

type LocationStatus string

const (
	LocationActive   LocationStatus = "active"
	LocationInactive LocationStatus = "inactive"
)

type Location struct {
	ID        int64          `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Type      LocationType   `db:"type" json:"type"`
	Status    LocationStatus `db:"status" json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
