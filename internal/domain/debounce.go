package domain

import "time"

// DefaultDebounceWindow is the minimum gap between two accepted scans.
const DefaultDebounceWindow = 1500 * time.Millisecond

// DuplicateGuard suppresses sensor/motion duplicates from a single
// scanning surface. It is a short-lived UX debounce, orthogonal to the
// session's permanent already-scanned check: one guard per active camera
// or input stream, never shared across actors.
type DuplicateGuard struct {
	window          time.Duration
	sameCodeLockout bool

	lastSeen       map[string]time.Time
	lastAccepted   string
	lastAcceptedAt time.Time
}

// NewDuplicateGuard builds a guard with the given debounce window.
// Zero means DefaultDebounceWindow; a negative window disables the
// debounce entirely. With sameCodeLockout set, a code is refused until a
// different code has been accepted in between, even outside the window.
func NewDuplicateGuard(window time.Duration, sameCodeLockout bool) *DuplicateGuard {
	if window == 0 {
		window = DefaultDebounceWindow
	}
	if window < 0 {
		window = 0
	}

	return &DuplicateGuard{
		window:          window,
		sameCodeLockout: sameCodeLockout,
		lastSeen:        map[string]time.Time{},
	}
}

// ShouldAccept reports whether raw may proceed to the session, and on
// acceptance records it as the last accepted code.
func (g *DuplicateGuard) ShouldAccept(raw string, now time.Time) bool {
	defer func() { g.lastSeen[raw] = now }()

	if g.lastAccepted != "" && now.Sub(g.lastAcceptedAt) < g.window {
		return false
	}
	if g.sameCodeLockout && raw == g.lastAccepted {
		return false
	}

	g.lastAccepted = raw
	g.lastAcceptedAt = now
	return true
}

// Release clears the lockout for raw after a scan that did not end in a
// confirmed record, so the same physical label can be presented again
// without waiting for a different code.
func (g *DuplicateGuard) Release(raw string) {
	if g.lastAccepted == raw {
		g.lastAccepted = ""
		g.lastAcceptedAt = time.Time{}
	}
}

// LastSeen returns when raw was last presented to the guard, accepted or
// not.
func (g *DuplicateGuard) LastSeen(raw string) (time.Time, bool) {
	at, ok := g.lastSeen[raw]
	return at, ok
}
