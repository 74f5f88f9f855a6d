package permission

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownModule     = errors.New("unknown module")
	ErrUnknownAction     = errors.New("unknown action")
	ErrInvalidLocationID = errors.New("invalid location id")
)

type Module int

const (
	ModuleDashboard Module = iota + 1
	ModuleProducts
	ModuleInventory
	ModuleSales
	ModuleCustomers
	ModuleSuppliers
	ModuleCategories
	ModuleReports
	ModuleUsers
	ModuleSamples
	ModuleNotifications
	ModuleActivityLogs
	ModuleSettings
	ModuleHelp
)

var moduleNames = map[Module]string{
	ModuleDashboard:     "dashboard",
	ModuleProducts:      "products",
	ModuleInventory:     "inventory",
	ModuleSales:         "sales",
	ModuleCustomers:     "customers",
	ModuleSuppliers:     "suppliers",
	ModuleCategories:    "categories",
	ModuleReports:       "reports",
	ModuleUsers:         "users",
	ModuleSamples:       "samples",
	ModuleNotifications: "notifications",
	ModuleActivityLogs:  "activitylogs",
	ModuleSettings:      "settings",
	ModuleHelp:          "help",
}

var modulesByName = func() map[string]Module {
	m := make(map[string]Module, len(moduleNames))
	for k, v := range moduleNames {
		m[v] = k
	}
	return m
}()

func (m Module) String() string {
	if name, ok := moduleNames[m]; ok {
		return name
	}
	return "Module(" + strconv.Itoa(int(m)) + ")"
}

// ParseModule is case-insensitive.
func ParseModule(s string) (Module, error) {
	if m, ok := modulesByName[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModule, s)
}

type Action int

const (
	ActionView Action = iota + 1
	ActionAdd
	ActionEdit
	ActionDelete
	ActionApprove
	ActionTransfer
	ActionExport
	ActionInvoice
)

var actionNames = map[Action]string{
	ActionView:     "view",
	ActionAdd:      "add",
	ActionEdit:     "edit",
	ActionDelete:   "delete",
	ActionApprove:  "approve",
	ActionTransfer: "transfer",
	ActionExport:   "export",
	ActionInvoice:  "invoice",
}

var actionsByName = map[string]Action{
	"view":     ActionView,
	"read":     ActionView,
	"add":      ActionAdd,
	"create":   ActionAdd,
	"edit":     ActionEdit,
	"update":   ActionEdit,
	"delete":   ActionDelete,
	"remove":   ActionDelete,
	"approve":  ActionApprove,
	"transfer": ActionTransfer,
	"export":   ActionExport,
	"invoice":  ActionInvoice,
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Action(" + strconv.Itoa(int(a)) + ")"
}

// ParseAction maps aliases onto canonical actions. An empty string means view.
func ParseAction(s string) (Action, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ActionView, nil
	}
	if a, ok := actionsByName[s]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// ParseLocationID coerces a client supplied location. An empty string means no location.
func ParseLocationID(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocationID, s)
	}
	return &id, nil
}

func oneOf(a Action, set ...Action) bool {
	for _, s := range set {
		if a == s {
			return true
		}
	}
	return false
}
