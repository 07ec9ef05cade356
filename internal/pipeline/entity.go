package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/talentbridge/enrich-cli/internal/extract"
	"github.com/talentbridge/enrich-cli/internal/merge"
	"github.com/talentbridge/enrich-cli/internal/model"
)

// enrichEntity runs every tier for one startup and persists the outcome.
// Partial failures degrade to whatever the remaining tiers produced; the
// record stays eligible for a future pass when nothing stuck.
func (p *Pipeline) enrichEntity(ctx context.Context, r *model.StartupRecord) model.EntityResult {
	log := zap.L().With(zap.String("startup", r.Name), zap.String("id", r.ID))
	start := time.Now()
	result := model.EntityResult{StartupID: r.ID, Name: r.Name}

	if err := p.store.SetStatus(ctx, r.ID, model.StatusInProgress); err != nil {
		log.Warn("failed to mark in progress", zap.Error(err))
	}

	// Tier 1: profile page.
	var page *model.PageData
	if p.scraper != nil && r.ProfileURL != "" {
		var err error
		page, err = p.scraper.Scrape(ctx, r.ProfileURL, r.Name)
		if err != nil {
			log.Warn("profile scrape failed, continuing with search tier", zap.Error(err))
		}
	}

	// Tier 2: targeted searches plus structured extraction.
	extracted := p.searchExtract(ctx, r.Name)

	fieldsSet := p.applyFacts(r, page, extracted)

	// Founder observations from both tiers, merged by identity.
	observed := merge.Founders(pageFounders(page), extractFounders(extracted))
	result.FoundersSeen = len(observed)

	// Rows an earlier pass already persisted join the merge first, with
	// their stored confidence, so a weaker sighting this run can never
	// replace a verified email or a higher-confidence field.
	founders := observed
	if len(observed) > 0 {
		existing, err := p.store.ListFounders(ctx, r.ID)
		if err != nil {
			log.Warn("could not load stored founders, merging observations only", zap.Error(err))
		}
		founders = merge.FoldByName(merge.Founders(existing, observed))
	}

	// Tier 3: pattern-verified addresses for founders still without one.
	if p.discoverer != nil && len(founders) > 0 {
		domain := resolvedDomain(r, page, extracted)
		if domain != "" {
			var found int
			founders, found = p.discoverer.Discover(ctx, founders, domain)
			result.EmailsFound = found
		}
	}

	fieldsSet += applyFounderSummary(r, founders)
	result.FieldsSet = fieldsSet

	if len(founders) > 0 {
		if err := p.store.UpsertFounders(ctx, r.ID, founders); err != nil {
			log.Error("failed to persist founders", zap.Error(err))
			result.Outcome = model.OutcomeFailed
			result.Reason = "persist founders: " + err.Error()
			p.finishEntity(ctx, r, model.StatusFailed, true)
			result.Duration = time.Since(start)
			return result
		}
	}

	switch {
	case fieldsSet == 0 && len(founders) == 0:
		result.Outcome = model.OutcomeSkipped
		result.Reason = "no validated facts from any tier"
		p.finishEntity(ctx, r, model.StatusPending, true)
	case anyNeedsReview(founders):
		result.Outcome = model.OutcomeEnriched
		p.finishEntity(ctx, r, model.StatusNeedsReview, false)
	default:
		result.Outcome = model.OutcomeEnriched
		p.finishEntity(ctx, r, model.StatusComplete, false)
	}

	result.Duration = time.Since(start)
	log.Info("entity finished",
		zap.String("outcome", string(result.Outcome)),
		zap.Int("fields", result.FieldsSet),
		zap.Int("founders", result.FoundersSeen),
		zap.Duration("duration", result.Duration))
	return result
}

// finishEntity writes the final record state.
func (p *Pipeline) finishEntity(ctx context.Context, r *model.StartupRecord, status model.EnrichmentStatus, needsEnrichment bool) {
	r.Status = status
	r.NeedsEnrichment = needsEnrichment
	if err := p.store.UpdateRecord(ctx, r); err != nil {
		zap.L().Error("failed to persist record", zap.String("id", r.ID), zap.Error(err))
	}
}

// applyFacts patches empty record fields from the page tier first, then the
// extraction tier. A field the record already holds is never overwritten.
func (p *Pipeline) applyFacts(r *model.StartupRecord, page *model.PageData, extracted model.ExtractionResult) int {
	set := 0
	patch := func(dst *string, pageVal, extractVal string) {
		if *dst != "" {
			return
		}
		switch {
		case pageVal != "":
			*dst = pageVal
		case extractVal != "":
			*dst = extractVal
		default:
			return
		}
		set++
	}

	var pv model.PageData
	if page != nil {
		pv = *page
	}
	patch(&r.Website, pv.Website, extracted.Get(extract.FieldWebsite))
	patch(&r.Location, pv.Location, extracted.Get(extract.FieldLocation))
	patch(&r.TeamSize, pv.TeamSize, extracted.Get(extract.FieldTeamSize))
	patch(&r.FundingStage, pv.FundingStage, extracted.Get(extract.FieldFundingStage))
	patch(&r.AmountRaised, pv.AmountRaised, extracted.Get(extract.FieldAmountRaised))
	patch(&r.DateRaised, pv.DateRaised, extracted.Get(extract.FieldDateRaised))
	patch(&r.Industry, "", extracted.Get(extract.FieldIndustry))
	patch(&r.JobOpenings, joinJobTitles(pv.Jobs), extracted.Get(extract.FieldJobOpenings))
	return set
}

// applyFounderSummary copies the strongest founder into the record's summary
// columns and returns how many it filled.
func applyFounderSummary(r *model.StartupRecord, founders []model.FounderRecord) int {
	var best *model.FounderRecord
	for i := range founders {
		if best == nil || founders[i].Confidence > best.Confidence {
			best = &founders[i]
		}
	}
	if best == nil {
		return 0
	}
	set := 0
	if r.FounderFirst == "" && r.FounderLast == "" && best.FirstName != "" {
		r.FounderFirst = best.FirstName
		r.FounderLast = best.LastName
		set++
	}
	if r.FounderEmail == "" && best.Email != "" {
		r.FounderEmail = best.Email
		set++
	}
	if r.FounderLinkedIn == "" && best.LinkedIn != "" {
		r.FounderLinkedIn = best.LinkedIn
		set++
	}
	return set
}

func anyNeedsReview(founders []model.FounderRecord) bool {
	for _, f := range founders {
		if f.NeedsManualReview {
			return true
		}
	}
	return false
}

func joinJobTitles(jobs []model.JobPosting) string {
	if len(jobs) == 0 {
		return ""
	}
	out := ""
	for i, j := range jobs {
		if i > 0 {
			out += "; "
		}
		out += j.Title
	}
	return out
}
