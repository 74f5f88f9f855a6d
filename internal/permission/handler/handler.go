package handler

import (
	"context"
	"errors"

	inventoryv1 "github.com/fekuna/omnipos-inventory-service/api/inventoryv1"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/permission"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

type LocationLister interface {
	List() ([]model.Location, error)
}

// PermissionHandler lets clients ask the evaluator before showing an action.
type PermissionHandler struct {
	inventoryv1.UnimplementedPermissionServiceServer
	evaluator *permission.Evaluator
	locations LocationLister
	logger    logger.ZapLogger
}

func NewPermissionHandler(evaluator *permission.Evaluator, locations LocationLister, log logger.ZapLogger) *PermissionHandler {
	return &PermissionHandler{
		evaluator: evaluator,
		locations: locations,
		logger:    log,
	}
}

func (h *PermissionHandler) Check(ctx context.Context, req *inventoryv1.CheckRequest) (*inventoryv1.CheckResponse, error) {
	user := auth.UserFromContext(ctx)
	if user == nil {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	loc, err := permission.ParseLocationID(req.LocationID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return &inventoryv1.CheckResponse{
		Allowed: h.evaluator.Can(user, req.Module, req.Action, loc),
	}, nil
}

func (h *PermissionHandler) ListLocations(ctx context.Context, _ *emptypb.Empty) (*inventoryv1.ListLocationsResponse, error) {
	if auth.UserFromContext(ctx) == nil {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	locations, err := h.locations.List()
	if err != nil {
		if errors.Is(err, permission.ErrDirectoryNotReady) {
			return nil, status.Error(codes.Unavailable, err.Error())
		}
		h.logger.Error("list locations failed", zap.Error(err))
		return nil, status.Error(codes.Internal, "internal error")
	}

	out := make([]*inventoryv1.Location, len(locations))
	for i := range locations {
		out[i] = inventoryv1.FromLocation(&locations[i])
	}
	return &inventoryv1.ListLocationsResponse{Locations: out}, nil
}
