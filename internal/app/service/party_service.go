package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guildtools/party-bot/internal/domain"
	"github.com/guildtools/party-bot/internal/infra/storage"
	"github.com/guildtools/party-bot/internal/metrics"
)

// PartyService orchestrates the party lifecycle: load snapshot, authorize,
// let the roster rules decide, persist, then ask the presenter to repaint.
// There is no in-process locking between concurrent interactions; all
// coordination is the store's per-document atomicity.
type PartyService struct {
	store    PartyStore
	policy   *Policy
	times    TimeResolver
	confirms *confirmRegistry
	present  Presenter
	log      *zap.Logger
	now      func() time.Time
}

func NewPartyService(store PartyStore, policy *Policy, times TimeResolver, log *zap.Logger) *PartyService {
	return &PartyService{
		store:    store,
		policy:   policy,
		times:    times,
		confirms: newConfirmRegistry(DefaultConfirmTTL),
		log:      log,
		now:      time.Now,
	}
}

// SetPresenter wires the render side. The router needs the service and the
// service needs the router, so this is set after both exist.
func (s *PartyService) SetPresenter(p Presenter) { s.present = p }

// CanManage reports whether actorID may edit or delete p. Adapters use it
// to gate UI they would otherwise show, the mutating paths re-check it.
func (s *PartyService) CanManage(p *domain.Party, actorID string) bool {
	return s.policy.CanManage(p, actorID)
}

// mapStoreErr translates the storage sentinel into the service taxonomy.
func mapStoreErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// load fetches the current snapshot for id.
func (s *PartyService) load(ctx context.Context, id uuid.UUID) (*domain.Party, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return p, nil
}

// Create persists a new party with default capacities. This is phase one of
// the two-phase create: the caller publishes the message and then calls
// AttachMessage with the resulting id. A party whose AttachMessage never
// lands stays valid but unrendered.
func (s *PartyService) Create(ctx context.Context, guildID, channelID, name, startRaw, creatorID, creatorName string) (*domain.Party, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	startAt, startText, err := s.resolveStart(startRaw)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &domain.Party{
		ID:            uuid.New(),
		GuildID:       guildID,
		ChannelID:     channelID,
		Name:          strings.TrimSpace(name),
		StartAt:       startAt,
		StartText:     startText,
		Slots:         domain.DefaultCapacities(),
		Members:       map[string]domain.Member{},
		CreatedBy:     creatorID,
		CreatedByName: creatorName,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	metrics.PartiesCreated.Inc()
	s.log.Info("party created",
		zap.String("party", p.ID.String()),
		zap.String("guild", guildID),
		zap.String("name", p.Name))
	return p, nil
}

// AttachMessage records the rendered message id, completing the create.
// Retryable on its own: failing here leaves the party unrendered, not gone.
func (s *PartyService) AttachMessage(ctx context.Context, id uuid.UUID, messageID string) error {
	return mapStoreErr(s.store.SetMessageID(ctx, id, messageID))
}

func (s *PartyService) Get(ctx context.Context, id uuid.UUID) (*domain.Party, error) {
	return s.load(ctx, id)
}

func (s *PartyService) List(ctx context.Context, guildID string) ([]*domain.Party, error) {
	return s.store.ListByGuild(ctx, guildID)
}

// Join signs the actor up for role, or switches their role in place.
//
// Known race: the capacity check reads a snapshot and the member write is a
// separate round trip. Two actors racing for the last seat can both pass the
// check, overbooking the role by at most (racers - 1). We accept that bound
// instead of paying for a distributed lock; the next render shows the real
// counts and further joins are rejected.
func (s *PartyService) Join(ctx context.Context, id uuid.UUID, actorID, displayName string, role domain.Role) (*domain.Party, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Join(actorID, displayName, role, s.now().UTC()); err != nil {
		metrics.JoinRejections.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}
	if err := s.store.PutMember(ctx, id, actorID, p.Members[actorID]); err != nil {
		return nil, err
	}
	metrics.Joins.WithLabelValues(string(role)).Inc()
	s.refresh(ctx, p)
	return p, nil
}

// Leave removes the actor's membership record.
func (s *PartyService) Leave(ctx context.Context, id uuid.UUID, actorID string) (*domain.Party, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, ok := p.Members[actorID]; !ok {
		return nil, domain.ErrNotAMember
	}
	removed, err := s.store.RemoveMember(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	if !removed {
		// a concurrent leave beat us to the single-key delete
		return nil, domain.ErrNotAMember
	}
	delete(p.Members, actorID)
	s.refresh(ctx, p)
	return p, nil
}

// EditInput carries the raw modal fields; slot counts arrive as text.
type EditInput struct {
	Name      string
	StartRaw  string
	TankRaw   string
	HealerRaw string
	DPSRaw    string
}

// Edit validates and applies a creator/admin edit. Invalid input never
// touches storage. Shrinking a capacity below occupancy keeps the existing
// members (grandfathered); only future joins see the new limit.
func (s *PartyService) Edit(ctx context.Context, id uuid.UUID, actorID string, in EditInput) (*domain.Party, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.RequireManage(p, actorID); err != nil {
		return nil, err
	}

	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	slots, err := parseSlots(in.TankRaw, in.HealerRaw, in.DPSRaw)
	if err != nil {
		return nil, err
	}
	startAt, startText, err := s.resolveStart(in.StartRaw)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p.ApplyEdit(strings.TrimSpace(in.Name), startAt, startText, slots, now)
	if err := s.store.UpdateMeta(ctx, id, p.Name, p.StartAt, p.StartText, p.Slots); err != nil {
		return nil, mapStoreErr(err)
	}
	s.log.Info("party edited", zap.String("party", id.String()), zap.String("actor", actorID))
	s.refresh(ctx, p)
	return p, nil
}

// RequestDelete starts the two-step delete. It authorizes the actor, then
// parks the request behind a confirmation token that expires after
// DefaultConfirmTTL. Nothing is deleted yet.
func (s *PartyService) RequestDelete(ctx context.Context, id uuid.UUID, actorID string) (string, *domain.Party, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if err := s.policy.RequireManage(p, actorID); err != nil {
		return "", nil, err
	}
	token := s.confirms.Add(id, actorID)
	return token, p, nil
}

// ConfirmDelete consumes the token, deletes the party, and neutralizes its
// rendered message. A failed neutralize is logged and swallowed; the delete
// itself is authoritative.
func (s *PartyService) ConfirmDelete(ctx context.Context, token, actorID string) (*domain.Party, error) {
	pd, ok := s.confirms.Take(token, actorID)
	if !ok {
		return nil, ErrConfirmationExpired
	}
	p, err := s.load(ctx, pd.PartyID)
	if err != nil {
		return nil, err
	}
	deleted, err := s.store.Delete(ctx, pd.PartyID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrNotFound
	}
	metrics.PartiesDeleted.Inc()
	s.log.Info("party deleted", zap.String("party", pd.PartyID.String()), zap.String("actor", actorID))
	if s.present != nil && p.Rendered() {
		if err := s.present.Neutralize(ctx, p); err != nil {
			s.log.Warn("neutralize after delete failed",
				zap.String("party", p.ID.String()), zap.Error(err))
		}
	}
	return p, nil
}

// CancelDelete abandons a pending delete. Also a no-op if the window already
// expired; the party is untouched either way.
func (s *PartyService) CancelDelete(token, actorID string) bool {
	return s.confirms.Cancel(token, actorID)
}

// RestoreAll re-attaches interactive handles for every stored party with a
// rendered message. One party failing to re-attach does not stop the scan;
// the return value counts only the successes.
func (s *PartyService) RestoreAll(ctx context.Context) (int, error) {
	parties, err := s.store.ListRendered(ctx)
	if err != nil {
		return 0, err
	}
	restored := 0
	for _, p := range parties {
		if err := s.present.Attach(ctx, p); err != nil {
			s.log.Warn("restore: re-attach failed",
				zap.String("party", p.ID.String()), zap.Error(err))
			continue
		}
		restored++
	}
	s.log.Info("party views restored", zap.Int("restored", restored), zap.Int("total", len(parties)))
	return restored, nil
}

// ClearGuild bulk-deletes every party in the guild. Admin only.
func (s *PartyService) ClearGuild(ctx context.Context, guildID, actorID string) (int64, error) {
	if !s.policy.admins.IsGuildAdministrator(guildID, actorID) {
		return 0, ErrForbidden
	}
	n, err := s.store.DeleteByGuild(ctx, guildID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("guild parties cleared",
			zap.String("guild", guildID), zap.String("actor", actorID), zap.Int64("count", n))
	}
	return n, nil
}

// ForceDelete removes a party looked up by id prefix, skipping the
// confirmation step. Admin only.
func (s *PartyService) ForceDelete(ctx context.Context, guildID, prefix, actorID string) (*domain.Party, error) {
	if !s.policy.admins.IsGuildAdministrator(guildID, actorID) {
		return nil, ErrForbidden
	}
	p, err := s.store.FindByIDPrefix(ctx, guildID, prefix)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if _, err := s.store.Delete(ctx, p.ID); err != nil {
		return nil, err
	}
	metrics.PartiesDeleted.Inc()
	if s.present != nil && p.Rendered() {
		if err := s.present.Neutralize(ctx, p); err != nil {
			s.log.Warn("neutralize after force delete failed",
				zap.String("party", p.ID.String()), zap.Error(err))
		}
	}
	return p, nil
}

// refresh repaints the rendered message. Refresh failures never undo the
// committed mutation; they are logged and dropped.
func (s *PartyService) refresh(ctx context.Context, p *domain.Party) {
	if s.present == nil || !p.Rendered() {
		return
	}
	if err := s.present.Refresh(ctx, p); err != nil {
		s.log.Warn("party view refresh failed",
			zap.String("party", p.ID.String()), zap.Error(err))
	}
}

func (s *PartyService) resolveStart(raw string) (*time.Time, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, "", nil
	}
	if utf8.RuneCountInString(raw) > domain.MaxStartTimeLength {
		return nil, "", &ValidationError{Field: "start time", Reason: "too long"}
	}
	if t, ok := s.times.Resolve(raw); ok {
		u := t.UTC()
		return &u, raw, nil
	}
	// parsing is best effort; the literal text is the fallback, not an error
	return nil, raw, nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(name) > domain.MaxNameLength {
		return &ValidationError{Field: "name", Reason: "too long"}
	}
	return nil
}

func parseSlots(tankRaw, healerRaw, dpsRaw string) (domain.Capacities, error) {
	parse := func(field, raw string) (int, error) {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return 0, &ValidationError{Field: field, Reason: "must be a number"}
		}
		if n < 0 || n > domain.MaxSlotValue {
			return 0, &ValidationError{Field: field, Reason: "must be between 0 and 99"}
		}
		return n, nil
	}
	tank, err := parse("tank slots", tankRaw)
	if err != nil {
		return domain.Capacities{}, err
	}
	healer, err := parse("healer slots", healerRaw)
	if err != nil {
		return domain.Capacities{}, err
	}
	dps, err := parse("dps slots", dpsRaw)
	if err != nil {
		return domain.Capacities{}, err
	}
	return domain.Capacities{Tank: tank, Healer: healer, DPS: dps}, nil
}

func rejectionReason(err error) string {
	var full *domain.RoleFullError
	var none *domain.NoSlotsError
	switch {
	case errors.As(err, &full):
		return "role_full"
	case errors.As(err, &none):
		return "no_slots"
	case errors.Is(err, domain.ErrUnknownRole):
		return "unknown_role"
	default:
		return "other"
	}
}
