package handler

import (
	"errors"

	"github.com/fekuna/omnipos-inventory-service/internal/inventory"
	"github.com/fekuna/omnipos-inventory-service/internal/permission"
	productuc "github.com/fekuna/omnipos-inventory-service/internal/product/usecase"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps domain errors onto gRPC codes. Store failures are logged and hidden from the caller.
func toStatus(log logger.ZapLogger, op string, err error) error {
	switch {
	case errors.Is(err, permission.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, permission.ErrDirectoryNotReady):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, inventory.ErrSystemBusy):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, inventory.ErrProductNotFound),
		errors.Is(err, productuc.ErrProductNotFound),
		errors.Is(err, inventory.ErrLotNotFound),
		errors.Is(err, inventory.ErrTransferNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrInvalidInput),
		errors.Is(err, permission.ErrInvalidLocationID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, inventory.ErrProductCodeTaken):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, inventory.ErrInsufficientLotQuantity),
		errors.Is(err, inventory.ErrInvalidTransferTransition),
		errors.Is(err, inventory.ErrLotLocationMismatch):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	log.Error(op+" failed", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}
