package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/guildtools/party-bot/internal/domain"
)

// PartyStore is implemented by internal/infra/storage.PartyRepo.
//
// PutMember and RemoveMember must be single-key updates on the stored
// membership map; the full map is never re-sent. That is the only atomicity
// the engine relies on (see the race note on PartyService.Join).
type PartyStore interface {
	Create(ctx context.Context, p *domain.Party) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Party, error)
	SetMessageID(ctx context.Context, id uuid.UUID, messageID string) error
	UpdateMeta(ctx context.Context, id uuid.UUID, name string, startAt *time.Time, startText string, slots domain.Capacities) error
	PutMember(ctx context.Context, id uuid.UUID, actorID string, m domain.Member) error
	RemoveMember(ctx context.Context, id uuid.UUID, actorID string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByGuild(ctx context.Context, guildID string) (int64, error)
	ListByGuild(ctx context.Context, guildID string) ([]*domain.Party, error)
	ListRendered(ctx context.Context) ([]*domain.Party, error)
	FindByIDPrefix(ctx context.Context, guildID, prefix string) (*domain.Party, error)
}

// Presenter owns the rendered party message. Implemented by the discord
// router. Each render is a full re-derivation from the snapshot, so calls
// are idempotent and last-write-wins between concurrent refreshes.
type Presenter interface {
	// Refresh re-renders the live message for p.
	Refresh(ctx context.Context, p *domain.Party) error
	// Attach re-binds interactive components after a restart.
	Attach(ctx context.Context, p *domain.Party) error
	// Neutralize disables the interactive components of a deleted party.
	Neutralize(ctx context.Context, p *domain.Party) error
}

// AdminSource answers guild-administrator checks. Implemented by the discord
// adapter over member role permissions.
type AdminSource interface {
	IsGuildAdministrator(guildID, actorID string) bool
}

// TimeResolver turns free-text start times into instants, best effort. A
// false return is not an error: the literal text is kept for display.
type TimeResolver interface {
	Resolve(raw string) (time.Time, bool)
}
