// Package session carries per-run state shared by every enrichment
// component: the inference pacer and the sticky quota flag.
package session

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Pacer enforces a minimum interval between inference-service calls.
// Single global slot, no per-caller fairness: exactly one in-flight budget.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacer that admits one call per interval.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		interval = 4 * time.Second
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until at least the configured interval has elapsed since the
// last permitted call, then records the new call time.
func (p *Pacer) Wait() {
	// Background context: pacing exists only to stay under the inference
	// service's quota, not to be cancellable.
	_ = p.limiter.Wait(context.Background())
}

// Session is the enrichment-run context passed to every component. It replaces
// hidden global state: the quota flag is set once on the first quota-exceeded
// error and read thereafter for the remainder of the run.
type Session struct {
	// Elevated enables the grounded search backend and the shorter pacing
	// interval.
	Elevated bool

	pacer    *Pacer
	disabled atomic.Bool
}

// New creates a session for one enrichment run.
func New(elevated bool, paceInterval time.Duration) *Session {
	return &Session{
		Elevated: elevated,
		pacer:    NewPacer(paceInterval),
	}
}

// WaitInference consumes the single-slot inference budget, blocking as needed.
func (s *Session) WaitInference() {
	s.pacer.Wait()
}

// ServiceDisabled reports whether the inference path has been sticky-disabled.
func (s *Session) ServiceDisabled() bool {
	return s.disabled.Load()
}

// DisableService sticky-disables the inference path for the rest of the run.
// Called once, on the first quota-exceeded error.
func (s *Session) DisableService(reason string) {
	if s.disabled.CompareAndSwap(false, true) {
		zap.L().Warn("inference service disabled for remainder of run",
			zap.String("reason", reason),
		)
	}
}
