package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPINLimiter_Burst(t *testing.T) {
	l := NewPINLimiter(3, 2)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("VEH-00001"))
	assert.True(t, l.Allow("VEH-00001"))
	assert.False(t, l.Allow("VEH-00001"), "burst exhausted")

	// Other vehicles have their own bucket
	assert.True(t, l.Allow("VEH-00002"))

	// 3 per minute refills one attempt every 20s
	now = now.Add(21 * time.Second)
	assert.True(t, l.Allow("VEH-00001"))
	assert.False(t, l.Allow("VEH-00001"))
}

func TestPINLimiter_Reset(t *testing.T) {
	l := NewPINLimiter(1, 1)
	assert.True(t, l.Allow("VEH-00001"))
	assert.False(t, l.Allow("VEH-00001"))

	l.Reset("VEH-00001")
	assert.True(t, l.Allow("VEH-00001"))
}

func TestPINLimiter_EvictsIdleBuckets(t *testing.T) {
	l := NewPINLimiter(0, 0)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("VEH-00001")
	assert.Len(t, l.buckets, 1)

	now = now.Add(31 * time.Minute)
	l.Allow("VEH-00002")
	assert.Len(t, l.buckets, 1)
	_, ok := l.buckets["VEH-00002"]
	assert.True(t, ok)
}
