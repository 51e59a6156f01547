package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a roster slot category. Three of them are capacity-bound; the
// "can't attend" sentinel accepts anyone and never counts against slots.
type Role string

const (
	RoleTank       Role = "tank"
	RoleHealer     Role = "healer"
	RoleDPS        Role = "dps"
	RoleCantAttend Role = "cant_attend"
)

var roleLabels = map[Role]string{
	RoleTank:       "Tank",
	RoleHealer:     "Healer",
	RoleDPS:        "DPS",
	RoleCantAttend: "Can't Attend",
}

func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

func (r Role) CapacityBound() bool {
	return r == RoleTank || r == RoleHealer || r == RoleDPS
}

func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

// CapacityRoles in display order.
var CapacityRoles = []Role{RoleTank, RoleHealer, RoleDPS}

const (
	DefaultTankSlots   = 2
	DefaultHealerSlots = 2
	DefaultDPSSlots    = 4

	MaxSlotValue       = 99
	MaxNameLength      = 50
	MaxStartTimeLength = 100
)

// Capacities holds the slot limits for the three capacity-bound roles.
type Capacities struct {
	Tank   int `json:"tank"`
	Healer int `json:"healer"`
	DPS    int `json:"dps"`
}

func DefaultCapacities() Capacities {
	return Capacities{Tank: DefaultTankSlots, Healer: DefaultHealerSlots, DPS: DefaultDPSSlots}
}

func (c Capacities) Of(r Role) int {
	switch r {
	case RoleTank:
		return c.Tank
	case RoleHealer:
		return c.Healer
	case RoleDPS:
		return c.DPS
	}
	return 0
}

func (c Capacities) Total() int { return c.Tank + c.Healer + c.DPS }

// Member is one signed-up actor on a party roster.
type Member struct {
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Party is a roster document. Members is keyed by actor id, so an actor
// holds at most one record per party; switching roles overwrites in place.
type Party struct {
	ID        uuid.UUID
	GuildID   string
	ChannelID string

	// MessageID is empty until the first render lands. A party without it is
	// valid but not live; see Rendered.
	MessageID string

	Name string

	// StartAt is the resolved instant when parsing succeeded; otherwise it is
	// nil and StartText carries the creator's literal input.
	StartAt   *time.Time
	StartText string

	Slots   Capacities
	Members map[string]Member

	CreatedBy string
	// CreatedByName is the creator's display name at creation time, for the
	// message footer. The roster record, when the creator signs up, is fresher.
	CreatedByName string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Rendered reports whether the party has a live external representation.
// Unrendered parties still accept mutations; only the display is missing.
func (p *Party) Rendered() bool { return p.MessageID != "" }

// CreatorName prefers the creator's roster display name over the one
// captured at creation; a nick change shows up once they sign up.
func (p *Party) CreatorName() string {
	if m, ok := p.Members[p.CreatedBy]; ok {
		return m.DisplayName
	}
	return p.CreatedByName
}
