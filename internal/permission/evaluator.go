package permission

import (
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	// ErrDirectoryNotReady is returned while location types are still unknown.
	ErrDirectoryNotReady = errors.New("location directory not ready")
)

// LocationDirectory resolves location types. Unknown locations are neither warehouses nor showrooms.
type LocationDirectory interface {
	IsWarehouse(locationID int64) (bool, error)
	IsShowroom(locationID int64) (bool, error)
}

type Request struct {
	Module     Module
	Action     Action
	LocationID *int64
}

type ruleContext struct {
	user *model.User
	req  Request
	dir  LocationDirectory
}

// Rule decides one role. An error only signals that the decision cannot be made yet.
type Rule func(rc ruleContext) (bool, error)

type Evaluator struct {
	dir    LocationDirectory
	rules  map[string]Rule
	logger logger.ZapLogger
}

func NewEvaluator(dir LocationDirectory, log logger.ZapLogger) *Evaluator {
	return &Evaluator{
		dir:    dir,
		rules:  roleRules(),
		logger: log,
	}
}

// Evaluate runs the role rules in priority order. It is pure with respect to the user and directory snapshot.
func (e *Evaluator) Evaluate(user *model.User, req Request) (bool, error) {
	allowed, reason, err := e.evaluate(user, req)

	fields := []zap.Field{
		zap.String("module", req.Module.String()),
		zap.String("action", req.Action.String()),
		zap.Bool("allowed", allowed),
		zap.String("reason", reason),
	}
	if user != nil {
		fields = append(fields, zap.String("user_id", user.ID), zap.String("role", user.Role))
	}
	if req.LocationID != nil {
		fields = append(fields, zap.Int64("location_id", *req.LocationID))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	e.logger.Debug("permission decision", fields...)

	return allowed, err
}

func (e *Evaluator) evaluate(user *model.User, req Request) (bool, string, error) {
	if user == nil {
		return false, "no user", nil
	}
	if user.Role == model.RoleSuperAdmin {
		return true, "super admin", nil
	}
	if user.Permissions == nil {
		return false, "no permissions", nil
	}

	rule, ok := e.rules[user.Role]
	if !ok {
		rule = genericRule
	}
	allowed, err := rule(ruleContext{user: user, req: req, dir: e.dir})
	if err != nil {
		return false, "undecided", err
	}
	return allowed, "role rule", nil
}

// Can is the string facing entry point. Anything unparseable or undecidable is denied.
func (e *Evaluator) Can(user *model.User, module, action string, locationID *int64) bool {
	m, err := ParseModule(module)
	if err != nil {
		return false
	}
	a, err := ParseAction(action)
	if err != nil {
		return false
	}
	allowed, err := e.Evaluate(user, Request{Module: m, Action: a, LocationID: locationID})
	if err != nil {
		return false
	}
	return allowed
}

// Require returns ErrPermissionDenied when the action is not allowed.
func (e *Evaluator) Require(user *model.User, module Module, action Action, locationID *int64) error {
	allowed, err := e.Evaluate(user, Request{Module: module, Action: action, LocationID: locationID})
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: %s.%s", ErrPermissionDenied, module, action)
	}
	return nil
}
