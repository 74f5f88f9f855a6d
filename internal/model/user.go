package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	RoleSuperAdmin   = "super_admin"
	RoleAdmin        = "admin"
	RoleSalesManager = "sales_manager"
	RoleInvestor     = "investor"
)

type User struct {
	BaseModel
	Email              string       `db:"email" json:"email"`
	Name               string       `db:"name" json:"name"`
	Role               string       `db:"role" json:"role"`
	PasswordHash       string       `db:"password_hash" json:"-"`
	Permissions        *Permissions `db:"permissions" json:"permissions"` // nil means no grants at all
	AssignedLocations  Int64List    `db:"assigned_locations" json:"assigned_locations"`
	AssignedLocationID *int64       `db:"assigned_location_id" json:"assigned_location_id"`
	Status             string       `db:"status" json:"status"`
}

// Permissions is stored as one JSON object. The "locations" key carries the admin location scope,
// every other key is a module name mapped to a boolean or to a per-action object.
type Permissions struct {
	Locations []int64
	Modules   map[string]ModuleGrant
}

type ModuleGrant struct {
	Granted              *bool // set when the module value is a plain boolean
	Actions              map[string]bool
	LocationRestrictions []int64
}

func (p *Permissions) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("permissions: %w", err)
	}

	p.Locations = nil
	p.Modules = make(map[string]ModuleGrant, len(raw))
	for key, value := range raw {
		name := strings.ToLower(strings.TrimSpace(key))
		if name == "locations" {
			ids, err := decodeIDs(value)
			if err != nil {
				return fmt.Errorf("permissions.locations: %w", err)
			}
			p.Locations = ids
			continue
		}

		var granted bool
		if err := json.Unmarshal(value, &granted); err == nil {
			p.Modules[name] = ModuleGrant{Granted: &granted}
			continue
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(value, &fields); err != nil {
			// anything else carries no grant
			continue
		}
		grant := ModuleGrant{Actions: map[string]bool{}}
		for field, fv := range fields {
			switch field {
			case "locationRestrictions", "location_restrictions":
				ids, err := decodeIDs(fv)
				if err != nil {
					return fmt.Errorf("permissions.%s.%s: %w", name, field, err)
				}
				if ids == nil {
					ids = []int64{}
				}
				grant.LocationRestrictions = ids
			default:
				var allowed bool
				if err := json.Unmarshal(fv, &allowed); err == nil {
					grant.Actions[strings.ToLower(field)] = allowed
				}
			}
		}
		p.Modules[name] = grant
	}
	return nil
}

func (p Permissions) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Modules)+1)
	if p.Locations != nil {
		out["locations"] = p.Locations
	}
	for name, grant := range p.Modules {
		if grant.Granted != nil {
			out[name] = *grant.Granted
			continue
		}
		obj := make(map[string]any, len(grant.Actions)+1)
		for action, allowed := range grant.Actions {
			obj[action] = allowed
		}
		if grant.LocationRestrictions != nil {
			obj["locationRestrictions"] = grant.LocationRestrictions
		}
		out[name] = obj
	}
	return json.Marshal(out)
}

func (p *Permissions) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil || data == nil {
		return err
	}
	return json.Unmarshal(data, p)
}

func (p Permissions) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Int64List is a JSONB array of location IDs.
type Int64List []int64

func (l *Int64List) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if data == nil {
		*l = nil
		return nil
	}
	ids, err := decodeIDs(data)
	if err != nil {
		return err
	}
	*l = ids
	return nil
}

func (l Int64List) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int64(l))
}

func (l Int64List) Contains(id int64) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json source %T", src)
	}
}

// decodeIDs accepts numbers or numeric strings, as location IDs arrive both ways from clients.
func decodeIDs(data []byte) ([]int64, error) {
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		return nil, nil
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case float64:
			ids = append(ids, int64(v))
		case string:
			id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid location id %q", v)
			}
			ids = append(ids, id)
		default:
			return nil, fmt.Errorf("invalid location id %v", item)
		}
	}
	return ids, nil
}
