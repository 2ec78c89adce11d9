package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmorgan81/captionbot/internal/caption"
	"github.com/dmorgan81/captionbot/internal/log"
	"github.com/dmorgan81/captionbot/internal/media"
	"github.com/google/uuid"
)

// DefaultTTL is how long an unused session is kept.
const DefaultTTL = 30 * time.Minute

type entry struct {
	session  *Session
	lastUsed time.Time
}

// Registry keeps sessions in memory. A session unused for longer than the
// TTL is dropped together with its results, unless a generation is running.
type Registry struct {
	assembler *media.Assembler
	generator caption.Generator
	ttl       time.Duration
	now       func() time.Time

	mu        sync.Mutex
	sessions  map[string]*entry
	lastSweep time.Time
}

func NewRegistry(assembler *media.Assembler, generator caption.Generator, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		assembler: assembler,
		generator: generator,
		ttl:       ttl,
		now:       time.Now,
		sessions:  make(map[string]*entry),
	}
}

// Lookup returns the live session for id without creating one.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.maybeSweep(now)
	return r.touch(id, now)
}

// Session returns the session for id, starting a new one under a fresh id
// when id is unknown, expired or malformed.
func (r *Registry) Session(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.maybeSweep(now)
	if s, ok := r.touch(id, now); ok {
		return s
	}

	s := New(uuid.NewString(), r.assembler, r.generator)
	r.sessions[s.ID] = &entry{session: s, lastUsed: now}
	return s
}

// Sweep drops every expired session and reports how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweep(r.now())
}

// Run sweeps once per TTL until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	log := log.FromContextOrDiscard(ctx).WithGroup("sessions")
	ticker := time.NewTicker(r.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.Info("evicted idle sessions", "evicted", n, "remaining", r.Len())
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) touch(id string, now time.Time) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	if r.expired(e, now) {
		delete(r.sessions, id)
		return nil, false
	}
	e.lastUsed = now
	return e.session, true
}

// expired reports whether e has been unused for longer than the ttl. A
// running generation counts as use.
func (r *Registry) expired(e *entry, now time.Time) bool {
	if e.session.Snapshot().State == Loading {
		e.lastUsed = now
		return false
	}
	return now.Sub(e.lastUsed) > r.ttl
}

// maybeSweep bounds the cost of lookups to one full scan per TTL.
func (r *Registry) maybeSweep(now time.Time) {
	if now.Sub(r.lastSweep) < r.ttl {
		return
	}
	r.sweep(now)
}

func (r *Registry) sweep(now time.Time) int {
	r.lastSweep = now
	n := 0
	for id, e := range r.sessions {
		if r.expired(e, now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}
