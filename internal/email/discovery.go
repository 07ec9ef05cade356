package email

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/talentbridge/enrich-cli/internal/model"
	"github.com/talentbridge/enrich-cli/internal/resilience"
	"github.com/talentbridge/enrich-cli/pkg/hunter"
)

// Discoverer runs pattern generation plus verification for a founder list.
type Discoverer struct {
	verifier    hunter.Client
	maxPatterns int
	confScale   float64
	cap         *rate.Limiter
	retry       resilience.RetryConfig
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithHourlyCap bounds verification calls per hour. Zero or negative
// disables the cap.
func WithHourlyCap(n int) Option {
	return func(d *Discoverer) {
		if n > 0 {
			d.cap = rate.NewLimiter(rate.Every(time.Hour/time.Duration(n)), n)
		}
	}
}

// WithRetry overrides the per-verification retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(d *Discoverer) { d.retry = cfg }
}

// New builds a Discoverer. confScale discounts the verifier's own score to
// reflect that a pattern guess is weaker evidence than a scraped address;
// zero means the 0.85 default.
func New(verifier hunter.Client, maxPatterns int, confScale float64, opts ...Option) *Discoverer {
	if maxPatterns <= 0 {
		maxPatterns = 6
	}
	if confScale <= 0 {
		confScale = 0.85
	}
	d := &Discoverer{
		verifier:    verifier,
		maxPatterns: maxPatterns,
		confScale:   confScale,
		retry:       resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Discover fills in verified addresses for founders that lack one. Each
// founder's candidates are checked in pattern order until the first
// deliverable hit; exhausted or skipped founders are flagged for manual
// review instead of being guessed at. Returns the updated list and how many
// addresses were found.
func (d *Discoverer) Discover(ctx context.Context, founders []model.FounderRecord, domain string) ([]model.FounderRecord, int) {
	out := make([]model.FounderRecord, len(founders))
	copy(out, founders)

	found := 0
	for i := range out {
		f := &out[i]
		if f.Email != "" {
			continue
		}

		candidates := Candidates(f.FirstName, f.LastName, domain, d.maxPatterns)
		if len(candidates) == 0 {
			zap.L().Debug("skipping founder with implausible name",
				zap.String("name", f.FullName()))
			f.NeedsManualReview = true
			continue
		}

		v := d.firstDeliverable(ctx, candidates)
		if v == nil {
			f.NeedsManualReview = true
			continue
		}

		f.Email = v.Email
		f.EmailSource = model.EmailSourcePattern
		f.EmailVerified = true
		if conf := float64(v.Score) / 100 * d.confScale; conf > f.Confidence {
			f.Confidence = conf
		}
		found++
	}
	return out, found
}

// firstDeliverable verifies candidates in order and returns the first
// deliverable verdict, or nil. A verification failure on one candidate does
// not stop the rest.
func (d *Discoverer) firstDeliverable(ctx context.Context, candidates []model.EmailCandidate) *hunter.Verification {
	for _, c := range candidates {
		if d.cap != nil && !d.cap.Allow() {
			zap.L().Warn("verification hourly cap reached, deferring remaining candidates")
			return nil
		}

		v, err := resilience.DoVal(ctx, d.retry, func(ctx context.Context) (*hunter.Verification, error) {
			return d.verifier.Verify(ctx, c.Address)
		})
		if err != nil {
			zap.L().Debug("verification failed",
				zap.String("address", c.Address), zap.Error(err))
			continue
		}
		if v.Deliverable() {
			zap.L().Debug("deliverable address found",
				zap.String("address", c.Address), zap.String("pattern", c.Pattern))
			return v
		}
	}
	return nil
}
