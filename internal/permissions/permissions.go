// Package permissions replaces the loosely-typed permission blob the
// dashboard used to carry with an enumerated permission set and a single
// policy check shared by every gated endpoint.
package permissions

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type Permission string

const (
	ViewEmployees Permission = "employees.view"
	EditEmployees Permission = "employees.edit"
	ViewProducts  Permission = "products.view"
	EditProducts  Permission = "products.edit"
	ViewCustomers Permission = "customers.view"
	EditCustomers Permission = "customers.edit"
	ViewSales     Permission = "sales.view"
	EditSales     Permission = "sales.edit"
	ManageUsers   Permission = "users.manage"
	ViewAudit     Permission = "audit.view"
)

// Set is stored as a JSON array in a text column.
type Set []Permission

func All() Set {
	return Set{
		ViewEmployees, EditEmployees,
		ViewProducts, EditProducts,
		ViewCustomers, EditCustomers,
		ViewSales, EditSales,
		ManageUsers, ViewAudit,
	}
}

func (s Set) Has(p Permission) bool {
	for _, have := range s {
		if have == p {
			return true
		}
	}
	return false
}

func (s *Set) Scan(value interface{}) error {
	if value == nil {
		*s = Set{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("failed to scan permission set: %v", value)
	}
}

func (s Set) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Check is the policy decision for every permission-gated action.
// Admins pass unconditionally.
func Check(isAdmin bool, set Set, p Permission) bool {
	if isAdmin {
		return true
	}
	return set.Has(p)
}
