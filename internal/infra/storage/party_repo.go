package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/guildtools/party-bot/internal/domain"
)

var ErrNotFound = errors.New("not found")

// PartyRepo persists parties in Postgres. The membership map lives in a
// jsonb column so a single join/leave is one jsonb_set / delete-key update;
// the full map never travels on a mutation.
type PartyRepo struct{ db *sql.DB }

func NewPartyRepo(db *sql.DB) *PartyRepo { return &PartyRepo{db: db} }

const partyColumns = `id, guild_id, channel_id, message_id, name, start_at, start_text,
       tank_slots, healer_slots, dps_slots, members, created_by, created_by_name, created_at, updated_at`

func (r *PartyRepo) Create(ctx context.Context, p *domain.Party) error {
	members, err := json.Marshal(p.Members)
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO parties
  (id, guild_id, channel_id, message_id, name, start_at, start_text,
   tank_slots, healer_slots, dps_slots, members, created_by, created_by_name)
VALUES ($1,$2,$3,NULL,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		p.ID, p.GuildID, p.ChannelID, p.Name, nullTime(p.StartAt), p.StartText,
		p.Slots.Tank, p.Slots.Healer, p.Slots.DPS, members, p.CreatedBy, p.CreatedByName,
	)
	return err
}

func (r *PartyRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Party, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+partyColumns+`
  FROM parties
 WHERE id = $1
`, id)
	return scanParty(row)
}

func (r *PartyRepo) SetMessageID(ctx context.Context, id uuid.UUID, messageID string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE parties
   SET message_id = $2, updated_at = now()
 WHERE id = $1
`, id, messageID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PartyRepo) UpdateMeta(ctx context.Context, id uuid.UUID, name string, startAt *time.Time, startText string, slots domain.Capacities) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE parties
   SET name = $2, start_at = $3, start_text = $4,
       tank_slots = $5, healer_slots = $6, dps_slots = $7,
       updated_at = now()
 WHERE id = $1
`, id, name, nullTime(startAt), startText, slots.Tank, slots.Healer, slots.DPS)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// PutMember writes one membership entry atomically. Overwrites any prior
// record for the actor, which is what makes a role switch a single visible
// step.
func (r *PartyRepo) PutMember(ctx context.Context, id uuid.UUID, actorID string, m domain.Member) error {
	entry, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal member: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE parties
   SET members = jsonb_set(members, ARRAY[$2], $3::jsonb, true),
       updated_at = now()
 WHERE id = $1
`, id, actorID, entry)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveMember deletes one membership key. Returns false when the actor had
// no record (or the party is gone).
func (r *PartyRepo) RemoveMember(ctx context.Context, id uuid.UUID, actorID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE parties
   SET members = members - $2::text, updated_at = now()
 WHERE id = $1 AND jsonb_exists(members, $2::text)
`, id, actorID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *PartyRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM parties WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *PartyRepo) DeleteByGuild(ctx context.Context, guildID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM parties WHERE guild_id = $1`, guildID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *PartyRepo) ListByGuild(ctx context.Context, guildID string) ([]*domain.Party, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+partyColumns+`
  FROM parties
 WHERE guild_id = $1
 ORDER BY created_at DESC
`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanParties(rows)
}

func (r *PartyRepo) ListRendered(ctx context.Context) ([]*domain.Party, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+partyColumns+`
  FROM parties
 WHERE message_id IS NOT NULL
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanParties(rows)
}

// FindByIDPrefix resolves the short ids shown by the list command. Newest
// match wins when the prefix is ambiguous.
func (r *PartyRepo) FindByIDPrefix(ctx context.Context, guildID, prefix string) (*domain.Party, error) {
	if prefix == "" {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+partyColumns+`
  FROM parties
 WHERE guild_id = $1 AND id::text LIKE $2 || '%'
 ORDER BY created_at DESC
 LIMIT 1
`, guildID, prefix)
	return scanParty(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParty(row rowScanner) (*domain.Party, error) {
	var (
		p         domain.Party
		messageID sql.NullString
		startAt   sql.NullTime
		members   []byte
	)
	err := row.Scan(
		&p.ID, &p.GuildID, &p.ChannelID, &messageID, &p.Name, &startAt, &p.StartText,
		&p.Slots.Tank, &p.Slots.Healer, &p.Slots.DPS, &members, &p.CreatedBy,
		&p.CreatedByName, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if messageID.Valid {
		p.MessageID = messageID.String
	}
	if startAt.Valid {
		at := startAt.Time
		p.StartAt = &at
	}
	p.Members = map[string]domain.Member{}
	if len(members) > 0 {
		if err := json.Unmarshal(members, &p.Members); err != nil {
			return nil, fmt.Errorf("unmarshal members: %w", err)
		}
	}
	return &p, nil
}

func scanParties(rows *sql.Rows) ([]*domain.Party, error) {
	var out []*domain.Party
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
