package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guildtools/party-bot/internal/domain"
	"github.com/guildtools/party-bot/internal/infra/storage"
)

// fakeStore implements PartyStore in memory. Writes are tracked so tests can
// assert that rejected actions never touched storage.
type fakeStore struct {
	mu      sync.Mutex
	parties map[uuid.UUID]*domain.Party
	writes  int
	failAll error
}

func newFakeStore() *fakeStore {
	return &fakeStore{parties: map[uuid.UUID]*domain.Party{}}
}

func clone(p *domain.Party) *domain.Party {
	cp := *p
	cp.Members = make(map[string]domain.Member, len(p.Members))
	for k, v := range p.Members {
		cp.Members[k] = v
	}
	if p.StartAt != nil {
		at := *p.StartAt
		cp.StartAt = &at
	}
	return &cp
}

func (f *fakeStore) Create(_ context.Context, p *domain.Party) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	f.writes++
	f.parties[p.ID] = clone(p)
	return nil
}

func (f *fakeStore) Get(_ context.Context, id uuid.UUID) (*domain.Party, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.parties[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clone(p), nil
}

func (f *fakeStore) SetMessageID(_ context.Context, id uuid.UUID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.parties[id]
	if !ok {
		return storage.ErrNotFound
	}
	f.writes++
	p.MessageID = messageID
	return nil
}

func (f *fakeStore) UpdateMeta(_ context.Context, id uuid.UUID, name string, startAt *time.Time, startText string, slots domain.Capacities) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.parties[id]
	if !ok {
		return storage.ErrNotFound
	}
	f.writes++
	p.Name = name
	p.StartAt = startAt
	p.StartText = startText
	p.Slots = slots
	p.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) PutMember(_ context.Context, id uuid.UUID, actorID string, m domain.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	p, ok := f.parties[id]
	if !ok {
		return storage.ErrNotFound
	}
	f.writes++
	p.Members[actorID] = m
	return nil
}

func (f *fakeStore) RemoveMember(_ context.Context, id uuid.UUID, actorID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.parties[id]
	if !ok {
		return false, storage.ErrNotFound
	}
	if _, ok := p.Members[actorID]; !ok {
		return false, nil
	}
	f.writes++
	delete(p.Members, actorID)
	return true, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.parties[id]; !ok {
		return false, nil
	}
	f.writes++
	delete(f.parties, id)
	return true, nil
}

func (f *fakeStore) DeleteByGuild(_ context.Context, guildID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, p := range f.parties {
		if p.GuildID == guildID {
			delete(f.parties, id)
			n++
		}
	}
	if n > 0 {
		f.writes++
	}
	return n, nil
}

func (f *fakeStore) ListByGuild(_ context.Context, guildID string) ([]*domain.Party, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Party
	for _, p := range f.parties {
		if p.GuildID == guildID {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (f *fakeStore) ListRendered(_ context.Context) ([]*domain.Party, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Party
	for _, p := range f.parties {
		if p.Rendered() {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (f *fakeStore) FindByIDPrefix(_ context.Context, guildID, prefix string) (*domain.Party, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.parties {
		if p.GuildID == guildID && len(prefix) > 0 && len(p.ID.String()) >= len(prefix) && p.ID.String()[:len(prefix)] == prefix {
			return clone(p), nil
		}
	}
	return nil, storage.ErrNotFound
}

// fakeAdmins grants admin to a fixed set of actor ids.
type fakeAdmins struct{ admins map[string]bool }

func (f *fakeAdmins) IsGuildAdministrator(_, actorID string) bool { return f.admins[actorID] }

// fakeResolver resolves a single known phrase.
type fakeResolver struct {
	known map[string]time.Time
}

func (f *fakeResolver) Resolve(raw string) (time.Time, bool) {
	t, ok := f.known[raw]
	return t, ok
}

// fakePresenter records calls; optionally fails for chosen parties.
type fakePresenter struct {
	mu          sync.Mutex
	refreshed   []uuid.UUID
	attached    []uuid.UUID
	neutralized []uuid.UUID
	failAttach  map[uuid.UUID]bool
	failRefresh bool
}

func newFakePresenter() *fakePresenter {
	return &fakePresenter{failAttach: map[uuid.UUID]bool{}}
}

func (f *fakePresenter) Refresh(_ context.Context, p *domain.Party) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRefresh {
		return errors.New("render backend down")
	}
	f.refreshed = append(f.refreshed, p.ID)
	return nil
}

func (f *fakePresenter) Attach(_ context.Context, p *domain.Party) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAttach[p.ID] {
		return errors.New("message gone")
	}
	f.attached = append(f.attached, p.ID)
	return nil
}

func (f *fakePresenter) Neutralize(_ context.Context, p *domain.Party) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.neutralized = append(f.neutralized, p.ID)
	return nil
}
