// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"encoding/json"
	"slices"
)

// # User Roles

// UserRole is an authority name granted by the backend.
type UserRole string

const (
	// Full catalog and order management
	RoleAdmin UserRole = "ROLE_ADMIN"

	// Default role for registered shoppers
	RoleCustomer UserRole = "ROLE_CUSTOMER"
)

// # Role Set

// RoleSet is an unordered set of roles. The zero value is an empty set.
type RoleSet map[UserRole]struct{}

// NewRoleSet builds a set from raw authority names. Blank names are ignored.
func NewRoleSet(names ...string) RoleSet {
	set := make(RoleSet, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		set[UserRole(name)] = struct{}{}
	}
	return set
}

// Has reports whether role is a member of the set.
func (set RoleSet) Has(role UserRole) bool {
	_, ok := set[role]
	return ok
}

// List returns the roles sorted by name.
func (set RoleSet) List() []string {
	names := make([]string, 0, len(set))
	for role := range set {
		names = append(names, string(role))
	}
	slices.Sort(names)
	return names
}

// MarshalJSON encodes the set as a sorted array.
func (set RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(set.List())
}
