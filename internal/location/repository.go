package location

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type Repository interface {
	FindAll(ctx context.Context) ([]model.Location, error)
}
