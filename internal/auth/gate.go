// Package auth decides what a verified Telegram principal may do. It wraps
// the initdata verification with the statically configured admin allow-list
// and the optional auth_date freshness window.
//
// The Gate is immutable after construction and safe for concurrent use; all
// state comes from deployment configuration, never from ambient lookups.
package auth

import (
	"strconv"
	"time"

	"github.com/edupay/go-course-backend/internal/initdata"
)

// Gate authenticates credential tokens and answers admin membership queries.
type Gate struct {
	botToken string
	admins   map[string]struct{}
	maxAge   time.Duration
	now      func() time.Time
}

// Option customizes Gate construction.
type Option func(*Gate)

// WithMaxAge enables the auth_date freshness check. Zero (the default)
// disables it, matching the historical behavior of the protocol's clients.
func WithMaxAge(d time.Duration) Option {
	return func(g *Gate) { g.maxAge = d }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// NewGate builds a Gate for botToken with the given admin identities
// (decimal Telegram ids, already split from deployment configuration).
func NewGate(botToken string, adminIDs []string, opts ...Option) *Gate {
	g := &Gate{
		botToken: botToken,
		admins:   make(map[string]struct{}, len(adminIDs)),
		now:      time.Now,
	}
	for _, id := range adminIDs {
		if id != "" {
			g.admins[id] = struct{}{}
		}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authenticate verifies raw and returns the derived principal.
//
// All failures (missing hash, bad signature, malformed profile, stale
// auth_date when a window is configured) surface as errors from the initdata
// package; callers translate them into an unauthorized outcome.
func (g *Gate) Authenticate(raw string) (*initdata.Principal, error) {
	fields, err := initdata.Verify(g.botToken, raw)
	if err != nil {
		return nil, err
	}
	p, err := initdata.Extract(fields)
	if err != nil {
		return nil, err
	}
	if err := initdata.CheckFreshness(p, g.maxAge, g.now()); err != nil {
		return nil, err
	}
	return p, nil
}

// IsAdmin reports whether raw authenticates to an allow-listed identity.
// Verification failures of any kind yield false; this method never errors.
func (g *Gate) IsAdmin(raw string) bool {
	p, err := g.Authenticate(raw)
	if err != nil {
		return false
	}
	return g.IsAdminPrincipal(p)
}

// IsAdminPrincipal checks allow-list membership for an already-authenticated
// principal. Membership is an exact match on the decimal string form.
func (g *Gate) IsAdminPrincipal(p *initdata.Principal) bool {
	if p == nil {
		return false
	}
	_, ok := g.admins[strconv.FormatInt(p.ID, 10)]
	return ok
}
