package permission

import (
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

func roleRules() map[string]Rule {
	return map[string]Rule{
		model.RoleAdmin:        adminRule,
		model.RoleSalesManager: salesManagerRule,
		model.RoleInvestor:     investorRule,
	}
}

func adminRule(rc ruleContext) (bool, error) {
	m, a := rc.req.Module, rc.req.Action
	if a == ActionDelete {
		return false, nil
	}
	if m == ModuleUsers && a == ActionAdd {
		return false, nil
	}

	adminLocations := rc.user.Permissions.Locations
	if rc.req.LocationID != nil && !containsID(adminLocations, *rc.req.LocationID) {
		return false, nil
	}

	switch m {
	case ModuleProducts:
		if a == ActionAdd {
			return rc.hasLocationAccess(adminLocations, model.LocationWarehouse)
		}
		return oneOf(a, ActionView, ActionEdit), nil
	case ModuleInventory:
		if a == ActionTransfer {
			return rc.hasLocationAccess(adminLocations, model.LocationWarehouse)
		}
		return oneOf(a, ActionView, ActionAdd, ActionEdit), nil
	case ModuleSales:
		if a == ActionAdd {
			return rc.hasLocationAccess(adminLocations, model.LocationShowroom)
		}
		return oneOf(a, ActionView, ActionEdit), nil
	case ModuleCustomers, ModuleSuppliers, ModuleCategories:
		return oneOf(a, ActionView, ActionAdd, ActionEdit), nil
	case ModuleReports:
		return oneOf(a, ActionView, ActionExport), nil
	case ModuleDashboard:
		return a == ActionView, nil
	default:
		return oneOf(a, ActionView, ActionEdit), nil
	}
}

// hasLocationAccess checks the requested location when one is given, otherwise any location in scope.
func (rc ruleContext) hasLocationAccess(scope []int64, want model.LocationType) (bool, error) {
	if rc.req.LocationID != nil {
		if !containsID(scope, *rc.req.LocationID) {
			return false, nil
		}
		return rc.isType(*rc.req.LocationID, want)
	}
	for _, id := range scope {
		ok, err := rc.isType(id, want)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (rc ruleContext) isType(id int64, want model.LocationType) (bool, error) {
	if rc.dir == nil {
		return false, ErrDirectoryNotReady
	}
	if want == model.LocationWarehouse {
		return rc.dir.IsWarehouse(id)
	}
	return rc.dir.IsShowroom(id)
}

func salesManagerRule(rc ruleContext) (bool, error) {
	m, a := rc.req.Module, rc.req.Action
	if a == ActionDelete || a == ActionTransfer {
		return false, nil
	}

	if rc.req.LocationID != nil {
		assigned, ok := singleAssignment(rc.user)
		if !ok || assigned != *rc.req.LocationID {
			return false, nil
		}
	}

	switch m {
	case ModuleDashboard:
		return a == ActionView, nil
	case ModuleSales, ModuleCustomers:
		return oneOf(a, ActionView, ActionAdd, ActionEdit), nil
	case ModuleProducts, ModuleInventory:
		return a == ActionView, nil
	case ModuleReports:
		return oneOf(a, ActionView, ActionExport), nil
	default:
		return false, nil
	}
}

// singleAssignment resolves the one location a sales manager works at.
func singleAssignment(u *model.User) (int64, bool) {
	if u.AssignedLocationID != nil {
		return *u.AssignedLocationID, true
	}
	if len(u.AssignedLocations) == 1 {
		return u.AssignedLocations[0], true
	}
	return 0, false
}

func investorRule(rc ruleContext) (bool, error) {
	m, a := rc.req.Module, rc.req.Action
	if a != ActionView && a != ActionExport {
		return false, nil
	}

	switch m {
	case ModuleDashboard, ModuleProducts, ModuleSales, ModuleCustomers, ModuleHelp:
		return a == ActionView, nil
	case ModuleReports:
		return true, nil
	default:
		return false, nil
	}
}

// genericRule serves configured roles from their per-module grants.
func genericRule(rc ruleContext) (bool, error) {
	grant, ok := rc.user.Permissions.Modules[rc.req.Module.String()]
	if !ok {
		return false, nil
	}

	granted := false
	if grant.Granted != nil {
		granted = *grant.Granted
	} else {
		granted = grant.Actions[rc.req.Action.String()]
	}
	if !granted {
		return false, nil
	}

	if rc.req.LocationID == nil {
		return true, nil
	}
	loc := *rc.req.LocationID
	if len(rc.user.AssignedLocations) > 0 {
		return rc.user.AssignedLocations.Contains(loc), nil
	}
	if grant.LocationRestrictions != nil {
		return containsID(grant.LocationRestrictions, loc), nil
	}
	return true, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
