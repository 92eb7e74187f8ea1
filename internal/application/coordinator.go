package application

import (
	"sync"
	"time"

	"github.com/bnema/shipscan/internal/domain"
	"github.com/bnema/shipscan/internal/ports"
)

type sessionKey struct {
	actorID    string
	shipmentID string
}

// SessionHandle is the live per-(actor, shipment) scanning surface: one
// session, one duplicate guard, one mutex serializing transitions. The
// mutex is never held across a ledger call; single-writer during the
// confirm is enforced by the session's scanning state itself.
type SessionHandle struct {
	ActorID    string
	ShipmentID string

	mu           sync.Mutex
	session      *domain.ScanSession
	guard        *domain.DuplicateGuard
	lastActivity time.Time
}

// Session runs fn with exclusive access to the handle's session and
// guard, stamping last activity.
func (h *SessionHandle) Session(now time.Time, fn func(s *domain.ScanSession, g *domain.DuplicateGuard)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastActivity = now
	fn(h.session, h.guard)
}

// LastActivity returns when the handle last performed a transition.
// Expiry is the caller's policy; the engine never expires sessions on
// its own.
func (h *SessionHandle) LastActivity() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastActivity
}

// GuardConfig shapes the per-surface duplicate guard of each new handle.
type GuardConfig struct {
	Window          time.Duration
	SameCodeLockout bool
}

// SessionCoordinator owns the mapping from (actor, shipment) to a live
// session. It is the only cross-request shared structure; its map is
// mutex-guarded so two concurrent requests for the same pair always
// observe the same session object.
type SessionCoordinator struct {
	guardCfg GuardConfig
	clock    ports.Clock

	mu       sync.Mutex
	sessions map[sessionKey]*SessionHandle
}

func NewSessionCoordinator(guardCfg GuardConfig, clock ports.Clock) *SessionCoordinator {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &SessionCoordinator{
		guardCfg: guardCfg,
		clock:    clock,
		sessions: map[sessionKey]*SessionHandle{},
	}
}

// GetOrCreate returns the live handle for the pair, creating an empty
// session on first use.
func (c *SessionCoordinator) GetOrCreate(actorID, shipmentID string) *SessionHandle {
	key := sessionKey{actorID: actorID, shipmentID: shipmentID}

	c.mu.Lock()
	defer c.mu.Unlock()

	if handle, ok := c.sessions[key]; ok {
		return handle
	}

	handle := &SessionHandle{
		ActorID:      actorID,
		ShipmentID:   shipmentID,
		session:      domain.NewScanSession(),
		guard:        domain.NewDuplicateGuard(c.guardCfg.Window, c.guardCfg.SameCodeLockout),
		lastActivity: c.clock.Now(),
	}
	c.sessions[key] = handle
	return handle
}

// Lookup returns the live handle without creating one.
func (c *SessionCoordinator) Lookup(actorID, shipmentID string) (*SessionHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	handle, ok := c.sessions[sessionKey{actorID: actorID, shipmentID: shipmentID}]
	return handle, ok
}

// Drop forgets the pair's session. Records already committed to the
// ledger are unaffected; a later GetOrCreate starts from a brand-new
// empty session.
func (c *SessionCoordinator) Drop(actorID, shipmentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, sessionKey{actorID: actorID, shipmentID: shipmentID})
}

// Active returns the handles currently held, in no particular order.
func (c *SessionCoordinator) Active() []*SessionHandle {
	c.mu.Lock()
	defer c.mu.Unlock()

	handles := make([]*SessionHandle, 0, len(c.sessions))
	for _, handle := range c.sessions {
		handles = append(handles, handle)
	}
	return handles
}

// DropIdle removes non-terminal sessions whose last activity is older
// than maxIdle and returns how many were dropped. Terminal sessions are
// kept until explicitly reset so their outcome stays observable.
func (c *SessionCoordinator) DropIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := c.clock.Now().Add(-maxIdle)

	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for key, handle := range c.sessions {
		handle.mu.Lock()
		idle := handle.lastActivity.Before(cutoff) && !handle.session.State().Terminal()
		handle.mu.Unlock()
		if idle {
			delete(c.sessions, key)
			dropped++
		}
	}
	return dropped
}
