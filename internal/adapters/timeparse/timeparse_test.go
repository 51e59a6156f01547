package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	r := New()

	t.Run("parses absolute timestamps as UTC", func(t *testing.T) {
		got, ok := r.Resolve("2026-09-05 20:00")
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, 9, 5, 20, 0, 0, 0, time.UTC), got.UTC())
	})

	t.Run("parses common date formats", func(t *testing.T) {
		for _, raw := range []string{
			"Sep 5, 2026 8:00pm",
			"2026-09-05T20:00:00Z",
			"09/05/2026 20:00",
		} {
			_, ok := r.Resolve(raw)
			assert.True(t, ok, raw)
		}
	})

	t.Run("falls back on relative phrases", func(t *testing.T) {
		// these stay as display text, not errors
		for _, raw := range []string{"tomorrow 7PM", "after the zvz", ""} {
			_, ok := r.Resolve(raw)
			assert.False(t, ok, raw)
		}
	})
}
