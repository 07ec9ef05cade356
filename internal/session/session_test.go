package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPacer_FirstCallImmediate(t *testing.T) {
	p := NewPacer(200 * time.Millisecond)

	start := time.Now()
	p.Wait()
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestPacer_SecondCallBlocksForInterval(t *testing.T) {
	interval := 150 * time.Millisecond
	p := NewPacer(interval)

	p.Wait()
	start := time.Now()
	p.Wait()
	elapsed := time.Since(start)

	// The second call must not be admitted before the interval since the
	// first permitted call has elapsed.
	assert.GreaterOrEqual(t, elapsed, interval-20*time.Millisecond)
}

func TestPacer_ZeroIntervalGetsDefault(t *testing.T) {
	p := NewPacer(0)
	assert.NotNil(t, p.limiter)
}

func TestSession_DisableServiceIsSticky(t *testing.T) {
	s := New(false, 10*time.Millisecond)
	assert.False(t, s.ServiceDisabled())

	s.DisableService("quota exhausted")
	assert.True(t, s.ServiceDisabled())

	// A second disable is a no-op, not a reset.
	s.DisableService("again")
	assert.True(t, s.ServiceDisabled())
}

func TestSession_ElevatedFlag(t *testing.T) {
	assert.True(t, New(true, time.Second).Elevated)
	assert.False(t, New(false, time.Second).Elevated)
}
