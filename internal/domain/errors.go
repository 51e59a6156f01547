package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotAMember  = errors.New("not a member of this party")
	ErrUnknownRole = errors.New("unknown role")
)

// RoleFullError carries the occupancy numbers so callers can tell the actor
// exactly which role is full and by how much.
type RoleFullError struct {
	Role     Role
	Current  int
	Capacity int
}

func (e *RoleFullError) Error() string {
	return fmt.Sprintf("%s slots are full (%d/%d)", e.Role.Label(), e.Current, e.Capacity)
}

// NoSlotsError means the role's capacity is zero, so no join can ever
// succeed until an edit raises it.
type NoSlotsError struct {
	Role Role
}

func (e *NoSlotsError) Error() string {
	return fmt.Sprintf("no %s slots available", e.Role.Label())
}
