package model

import "time"

// SearchResult is one normalized hit from any search backend. Ephemeral;
// produced per query and never persisted.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// ExtractedField is a single value with the confidence the extractor
// assigned to it.
type ExtractedField struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// ExtractionResult maps field keys to extracted values. Only fields that
// cleared both the confidence threshold and their validator appear here.
type ExtractionResult map[string]ExtractedField

// Get returns the value for key, or "" if absent.
func (r ExtractionResult) Get(key string) string {
	return r[key].Value
}

// EmailCandidate is a generated address awaiting verification.
type EmailCandidate struct {
	Address string `json:"address"`
	Pattern string `json:"pattern"`
}

// JobPosting is one job listing found on a profile or jobs page.
type JobPosting struct {
	Title    string `json:"title"`
	Location string `json:"location,omitempty"`
	URL      string `json:"url,omitempty"`
}

// PageData is everything the scraper recovered from one profile page.
type PageData struct {
	URL          string          `json:"url"`
	CompanyName  string          `json:"company_name,omitempty"`
	Website      string          `json:"website,omitempty"`
	Location     string          `json:"location,omitempty"`
	TeamSize     string          `json:"team_size,omitempty"`
	FundingStage string          `json:"funding_stage,omitempty"`
	AmountRaised string          `json:"amount_raised,omitempty"`
	DateRaised   string          `json:"date_raised,omitempty"`
	Founders     []FounderRecord `json:"founders,omitempty"`
	Jobs         []JobPosting    `json:"jobs,omitempty"`
}

// EntityOutcome classifies how one startup fared in a batch pass.
type EntityOutcome string

const (
	OutcomeEnriched EntityOutcome = "enriched"
	OutcomeSkipped  EntityOutcome = "skipped"
	OutcomeFailed   EntityOutcome = "failed"
)

// EntityResult records the outcome for a single startup.
type EntityResult struct {
	StartupID    string        `json:"startup_id"`
	Name         string        `json:"name"`
	Outcome      EntityOutcome `json:"outcome"`
	Reason       string        `json:"reason,omitempty"`
	FieldsSet    int           `json:"fields_set"`
	FoundersSeen int           `json:"founders_seen"`
	EmailsFound  int           `json:"emails_found"`
	Duration     time.Duration `json:"duration"`
}

// BatchSummary is the batch-level report. No entity failure ever aborts the
// batch; this is the only operator-visible failure surface.
type BatchSummary struct {
	Processed int            `json:"processed"`
	Enriched  int            `json:"enriched"`
	Skipped   int            `json:"skipped"`
	Failed    int            `json:"failed"`
	Results   []EntityResult `json:"results"`
	StartedAt time.Time      `json:"started_at"`
	Elapsed   time.Duration  `json:"elapsed"`
}

// Add folds one entity result into the summary.
func (s *BatchSummary) Add(r EntityResult) {
	s.Processed++
	s.Results = append(s.Results, r)
	switch r.Outcome {
	case OutcomeEnriched:
		s.Enriched++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}
