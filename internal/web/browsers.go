package web

import (
	"sync"
	"time"

	"travelsnap/internal/explorer"
	"travelsnap/internal/session"
)

// sweepEvery bounds how often idle browsers are looked for
const sweepEvery = time.Minute

// Browsers keeps one explorer per browser session. Each explorer reads its
// token from its own slot in the shared store.
type Browsers struct {
	mu        sync.Mutex
	store     session.Store
	ttl       time.Duration
	build     func(session.Manager) *explorer.Explorer
	sessions  map[string]*browser
	lastSweep time.Time
}

type browser struct {
	explorer *explorer.Explorer
	seen     time.Time
}

// NewBrowsers creates the registry. build makes the explorer for a new
// session. Explorers idle longer than ttl are dropped from memory; ttl also
// bounds how long a stored token lives. Zero keeps both forever.
func NewBrowsers(store session.Store, ttl time.Duration, build func(session.Manager) *explorer.Explorer) *Browsers {
	return &Browsers{
		store:    store,
		ttl:      ttl,
		build:    build,
		sessions: make(map[string]*browser),
	}
}

// Get returns the explorer of sessionID, creating it on first use
func (b *Browsers) Get(sessionID string) *explorer.Explorer {
	now := time.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.sweep(now)

	br, ok := b.sessions[sessionID]
	if !ok {
		br = &browser{explorer: b.build(session.NewBrowserManager(b.store, sessionID, b.ttl))}
		b.sessions[sessionID] = br
	}
	br.seen = now
	return br.explorer
}

// Len returns the number of browsers held in memory
func (b *Browsers) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

func (b *Browsers) sweep(now time.Time) {
	if b.ttl <= 0 || now.Sub(b.lastSweep) < sweepEvery {
		return
	}
	b.lastSweep = now

	for id, br := range b.sessions {
		if now.Sub(br.seen) > b.ttl {
			delete(b.sessions, id)
		}
	}
}
