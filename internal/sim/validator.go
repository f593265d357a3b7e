package sim

import (
	"sync"
	"time"

	"tusk-arena/server/internal/geom"
)

// RateLimiter tracks per-connection command counts over a rolling wall-clock
// window. Over-limit calls return false; the caller drops the command and
// nothing else happens (no escalation, no disconnect).
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	windows map[uint64]*rateWindow
}

type rateWindow struct {
	start time.Time
	count int
}

// NewRateLimiter builds a limiter with the given per-window ceiling. A zero
// limit falls back to MaxInputPerSecond.
func NewRateLimiter(limit int) *RateLimiter {
	if limit <= 0 {
		limit = MaxInputPerSecond
	}
	return &RateLimiter{
		limit:   limit,
		window:  time.Second,
		windows: make(map[uint64]*rateWindow),
	}
}

// Allow counts one command for the connection and reports whether it is still
// inside the window budget.
func (l *RateLimiter) Allow(connID uint64, now time.Time) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	win, ok := l.windows[connID]
	if !ok {
		win = &rateWindow{start: now}
		l.windows[connID] = win
	}
	if now.Sub(win.start) >= l.window {
		win.start = now
		win.count = 0
	}
	win.count++
	return win.count <= l.limit
}

// Forget drops the tracked window for a connection. Safe to call twice.
func (l *RateLimiter) Forget(connID uint64) {
	if l == nil {
		return
	}
	l.mu.Lock()
	delete(l.windows, connID)
	l.mu.Unlock()
}

// ValidateDash reports whether the player may dash right now: a charge must be
// available and the previous dash must be at least DashMinInterval old. Pure
// predicate; the caller spends the charge.
func ValidateDash(p *Player, now time.Time) bool {
	if p == nil || p.DashCharge <= 0 {
		return false
	}
	if !p.lastDash.IsZero() && now.Sub(p.lastDash) < DashMinInterval {
		return false
	}
	return true
}

// ValidatePosition checks a client-asserted displacement for plausibility.
// The 2x factor tolerates one missed or late tick. The authoritative movement
// path never trusts client positions, so this guards only auxiliary protocol
// paths.
func ValidatePosition(oldPos, newPos geom.Vec2, dt float64) bool {
	maxDistance := MaxVelocity * dt
	return geom.Distance(oldPos, newPos) <= 2*maxDistance
}
