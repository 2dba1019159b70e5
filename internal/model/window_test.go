package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowContains(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	w := &Window{StartsAt: start, EndsAt: start.Add(90 * time.Minute)}

	// Both bounds are inclusive.
	assert.True(t, w.Contains(start))
	assert.True(t, w.Contains(w.EndsAt))
	assert.True(t, w.Contains(start.Add(45*time.Minute)))
	assert.False(t, w.Contains(start.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(w.EndsAt.Add(time.Nanosecond)))
}
