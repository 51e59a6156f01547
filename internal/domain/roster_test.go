package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParty(slots Capacities) *Party {
	now := time.Now().UTC()
	return &Party{
		ID:        uuid.New(),
		GuildID:   "guild-1",
		ChannelID: "chan-1",
		Name:      "Avalon Raid",
		Slots:     slots,
		Members:   map[string]Member{},
		CreatedBy: "creator",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestJoin_CapacityEnforced(t *testing.T) {
	now := time.Now()
	p := newTestParty(Capacities{Tank: 1, Healer: 0, DPS: 2})

	// A takes the only tank seat.
	require.NoError(t, p.Join("actor-a", "Alice", RoleTank, now))
	assert.Equal(t, 1, p.CountByRole()[RoleTank])

	// B bounces off the full tank role with the numbers attached.
	err := p.Join("actor-b", "Bob", RoleTank, now)
	var full *RoleFullError
	require.ErrorAs(t, err, &full)
	assert.Equal(t, RoleTank, full.Role)
	assert.Equal(t, 1, full.Current)
	assert.Equal(t, 1, full.Capacity)

	// Healer capacity is zero, so C is rejected before any occupancy check.
	err = p.Join("actor-c", "Cara", RoleHealer, now)
	var none *NoSlotsError
	require.ErrorAs(t, err, &none)
	assert.Equal(t, RoleHealer, none.Role)

	// A leaves, B retries and wins the seat.
	require.NoError(t, p.Leave("actor-a"))
	assert.Equal(t, 0, p.CountByRole()[RoleTank])
	require.NoError(t, p.Join("actor-b", "Bob", RoleTank, now))
	assert.Equal(t, 1, p.CountByRole()[RoleTank])
}

func TestJoin_RoleSwitchIsAtomic(t *testing.T) {
	now := time.Now()
	p := newTestParty(DefaultCapacities())

	require.NoError(t, p.Join("actor-a", "Alice", RoleTank, now))
	require.NoError(t, p.Join("actor-a", "Alice", RoleHealer, now))

	counts := p.CountByRole()
	assert.Equal(t, 0, counts[RoleTank])
	assert.Equal(t, 1, counts[RoleHealer])
	require.Len(t, p.Members, 1)
	assert.Equal(t, RoleHealer, p.Members["actor-a"].Role)
}

func TestJoin_SwitchBackIntoOwnFullRole(t *testing.T) {
	// actor-a already holds the single tank seat; rejoining tank must not
	// count their own record against the capacity.
	now := time.Now()
	p := newTestParty(Capacities{Tank: 1, Healer: 1, DPS: 1})
	require.NoError(t, p.Join("actor-a", "Alice", RoleTank, now))
	require.NoError(t, p.Join("actor-a", "Alice", RoleTank, now))
	assert.Equal(t, 1, p.CountByRole()[RoleTank])
}

func TestJoin_CantAttendIsUncapped(t *testing.T) {
	now := time.Now()
	p := newTestParty(Capacities{Tank: 0, Healer: 0, DPS: 0})
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, p.Join(id, "user-"+id, RoleCantAttend, now))
	}
	assert.Equal(t, 5, p.CountByRole()[RoleCantAttend])
	assert.Equal(t, 0, p.AttendingCount())
	assert.False(t, p.IsRoleFull(RoleCantAttend))
}

func TestJoin_UnknownRole(t *testing.T) {
	p := newTestParty(DefaultCapacities())
	err := p.Join("actor-a", "Alice", Role("bard"), time.Now())
	assert.ErrorIs(t, err, ErrUnknownRole)
	assert.Empty(t, p.Members)
}

func TestLeave(t *testing.T) {
	now := time.Now()
	p := newTestParty(DefaultCapacities())

	assert.ErrorIs(t, p.Leave("ghost"), ErrNotAMember)

	// join then leave puts the roster back where it started
	require.NoError(t, p.Join("actor-a", "Alice", RoleDPS, now))
	require.NoError(t, p.Leave("actor-a"))
	assert.Empty(t, p.Members)
}

func TestApplyEdit_GrandfathersExcessMembers(t *testing.T) {
	now := time.Now()
	p := newTestParty(Capacities{Tank: 2, Healer: 2, DPS: 4})
	require.NoError(t, p.Join("actor-a", "Alice", RoleDPS, now))
	require.NoError(t, p.Join("actor-b", "Bob", RoleDPS, now))

	p.ApplyEdit("Avalon Raid v2", nil, "saturday night", Capacities{Tank: 2, Healer: 2, DPS: 1}, now)

	// nobody got kicked
	assert.Equal(t, 2, p.CountByRole()[RoleDPS])
	assert.Equal(t, "Avalon Raid v2", p.Name)
	assert.Equal(t, "saturday night", p.StartText)

	// but new joins are blocked until occupancy drops under the new limit
	var full *RoleFullError
	require.ErrorAs(t, p.Join("actor-c", "Cara", RoleDPS, now), &full)
	assert.Equal(t, 2, full.Current)
	assert.Equal(t, 1, full.Capacity)

	require.NoError(t, p.Leave("actor-a"))
	require.NoError(t, p.Leave("actor-b"))
	require.NoError(t, p.Join("actor-c", "Cara", RoleDPS, now))
}

func TestIsRoleFull(t *testing.T) {
	now := time.Now()
	p := newTestParty(Capacities{Tank: 1, Healer: 0, DPS: 2})

	assert.False(t, p.IsRoleFull(RoleTank))
	assert.True(t, p.IsRoleFull(RoleHealer), "zero capacity reads as full")

	require.NoError(t, p.Join("actor-a", "Alice", RoleTank, now))
	assert.True(t, p.IsRoleFull(RoleTank))
}

func TestCapacityInvariantAfterJoins(t *testing.T) {
	// hammer a small party with joins from many actors; every successful
	// join must keep each capacity-bound role at or under its limit
	now := time.Now()
	p := newTestParty(Capacities{Tank: 1, Healer: 2, DPS: 3})
	roles := []Role{RoleTank, RoleHealer, RoleDPS, RoleCantAttend}
	for i := 0; i < 40; i++ {
		actor := string(rune('a'+i%26)) + "-actor"
		_ = p.Join(actor, "user", roles[i%len(roles)], now)
		counts := p.CountByRole()
		for _, r := range CapacityRoles {
			assert.LessOrEqual(t, counts[r], p.Slots.Of(r))
		}
	}
}

func TestCreatorName(t *testing.T) {
	p := newTestParty(DefaultCapacities())
	assert.Equal(t, "", p.CreatorName())

	p.CreatedByName = "Morgan"
	assert.Equal(t, "Morgan", p.CreatorName())

	// The roster record wins once the creator signs up.
	require.NoError(t, p.Join("creator", "Morgana", RoleHealer, time.Now()))
	assert.Equal(t, "Morgana", p.CreatorName())
}
