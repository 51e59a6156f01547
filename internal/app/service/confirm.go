package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultConfirmTTL is how long a pending delete waits for its confirmation
// click before it is silently abandoned.
const DefaultConfirmTTL = 30 * time.Second

type pendingDelete struct {
	PartyID   uuid.UUID
	ActorID   string
	ExpiresAt time.Time
}

// confirmRegistry holds pending delete confirmations, keyed by a one-shot
// token. Entries expire on a timer; expiry is a no-op for the party itself.
// Pending confirmations are in-process state and do not survive a restart.
type confirmRegistry struct {
	mu      sync.Mutex
	pending map[string]pendingDelete
	timers  map[string]*time.Timer
	ttl     time.Duration
}

func newConfirmRegistry(ttl time.Duration) *confirmRegistry {
	if ttl <= 0 {
		ttl = DefaultConfirmTTL
	}
	return &confirmRegistry{
		pending: make(map[string]pendingDelete),
		timers:  make(map[string]*time.Timer),
		ttl:     ttl,
	}
}

// Add registers a pending delete and returns its confirmation token.
func (r *confirmRegistry) Add(partyID uuid.UUID, actorID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	token := uuid.NewString()
	r.pending[token] = pendingDelete{
		PartyID:   partyID,
		ActorID:   actorID,
		ExpiresAt: time.Now().Add(r.ttl),
	}
	r.timers[token] = time.AfterFunc(r.ttl, func() { r.expire(token) })
	return token
}

// Take consumes the token. It fails when the token is unknown, expired, or
// was issued to a different actor.
func (r *confirmRegistry) Take(token, actorID string) (pendingDelete, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pd, ok := r.pending[token]
	if !ok || pd.ActorID != actorID {
		return pendingDelete{}, false
	}
	r.removeLocked(token)
	return pd, true
}

// Cancel drops the pending delete. Returns false if there was nothing to
// cancel (already confirmed or expired).
func (r *confirmRegistry) Cancel(token, actorID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	pd, ok := r.pending[token]
	if !ok || pd.ActorID != actorID {
		return false
	}
	r.removeLocked(token)
	return true
}

func (r *confirmRegistry) expire(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pending[token]; ok {
		r.removeLocked(token)
	}
}

func (r *confirmRegistry) removeLocked(token string) {
	delete(r.pending, token)
	if t, ok := r.timers[token]; ok {
		t.Stop()
		delete(r.timers, token)
	}
}
