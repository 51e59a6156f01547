// Package timeparse resolves free-text start times, best effort. Inputs it
// cannot parse are not errors; the caller keeps the literal text for display.
package timeparse

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

type Resolver struct {
	loc *time.Location
}

// New returns a resolver that interprets zone-less inputs as UTC, which is
// what the party prompts ask users to type.
func New() *Resolver { return &Resolver{loc: time.UTC} }

func (r *Resolver) Resolve(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(raw, r.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
