package domain

import "time"

// Roster mutation rules. These operate on an in-memory snapshot only; the
// caller decides what to persist afterwards.

// CountByRole tallies current members per role.
func (p *Party) CountByRole() map[Role]int {
	counts := map[Role]int{RoleTank: 0, RoleHealer: 0, RoleDPS: 0, RoleCantAttend: 0}
	for _, m := range p.Members {
		if _, ok := counts[m.Role]; ok {
			counts[m.Role]++
		}
	}
	return counts
}

// AttendingCount is the member total shown in footers; "can't attend"
// entries do not count.
func (p *Party) AttendingCount() int {
	n := 0
	for _, m := range p.Members {
		if m.Role != RoleCantAttend {
			n++
		}
	}
	return n
}

// IsRoleFull reports whether a join into role would be rejected. The
// sentinel role is never full; a zero-capacity role always is.
func (p *Party) IsRoleFull(role Role) bool {
	if !role.CapacityBound() {
		return false
	}
	limit := p.Slots.Of(role)
	if limit == 0 {
		return true
	}
	return p.occupancy(role, "") >= limit
}

// occupancy counts members holding role, optionally ignoring one actor.
func (p *Party) occupancy(role Role, ignoreActor string) int {
	n := 0
	for id, m := range p.Members {
		if id == ignoreActor {
			continue
		}
		if m.Role == role {
			n++
		}
	}
	return n
}

// Join adds the actor to role, or switches their role if they already hold a
// record. The switch is a single map write, so no intermediate state where
// the actor occupies two roles (or none) is ever visible. The capacity check
// ignores the actor's own prior record: moving off a seat frees it.
func (p *Party) Join(actorID, displayName string, role Role, now time.Time) error {
	if !role.Valid() {
		return ErrUnknownRole
	}
	if role.CapacityBound() {
		limit := p.Slots.Of(role)
		if limit == 0 {
			return &NoSlotsError{Role: role}
		}
		if cur := p.occupancy(role, actorID); cur >= limit {
			return &RoleFullError{Role: role, Current: cur, Capacity: limit}
		}
	}
	if p.Members == nil {
		p.Members = make(map[string]Member)
	}
	p.Members[actorID] = Member{DisplayName: displayName, Role: role, JoinedAt: now}
	return nil
}

// Leave removes the actor's record.
func (p *Party) Leave(actorID string) error {
	if _, ok := p.Members[actorID]; !ok {
		return ErrNotAMember
	}
	delete(p.Members, actorID)
	return nil
}

// ApplyEdit replaces name, start time and capacities unconditionally.
// Members already over a shrunk capacity stay; only future joins see the new
// limit. Edits never kick people out.
func (p *Party) ApplyEdit(name string, startAt *time.Time, startText string, slots Capacities, now time.Time) {
	p.Name = name
	p.StartAt = startAt
	p.StartText = startText
	p.Slots = slots
	p.UpdatedAt = now
}
