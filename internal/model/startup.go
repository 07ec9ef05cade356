package model

import "time"

// EnrichmentStatus represents the lifecycle state of a startup record.
type EnrichmentStatus string

const (
	StatusPending     EnrichmentStatus = "pending"
	StatusInProgress  EnrichmentStatus = "in_progress"
	StatusNeedsReview EnrichmentStatus = "needs_review"
	StatusComplete    EnrichmentStatus = "complete"
	StatusFailed      EnrichmentStatus = "failed"
)

// StartupRecord is a company row owned by the persistence store. The pipeline
// only patches fields it has validated; everything else is left untouched.
type StartupRecord struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Website         string           `json:"website,omitempty"`
	ProfileURL      string           `json:"profile_url,omitempty"`
	Industry        string           `json:"industry,omitempty"`
	Location        string           `json:"location,omitempty"`
	Batch           string           `json:"batch,omitempty"`
	TeamSize        string           `json:"team_size,omitempty"`
	FundingStage    string           `json:"funding_stage,omitempty"`
	AmountRaised    string           `json:"amount_raised,omitempty"`
	DateRaised      string           `json:"date_raised,omitempty"`
	JobOpenings     string           `json:"job_openings,omitempty"`
	FounderFirst    string           `json:"founder_first_name,omitempty"`
	FounderLast     string           `json:"founder_last_name,omitempty"`
	FounderEmail    string           `json:"founder_email,omitempty"`
	FounderLinkedIn string           `json:"founder_linkedin,omitempty"`
	Status          EnrichmentStatus `json:"enrichment_status"`
	NeedsEnrichment bool             `json:"needs_enrichment"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// FounderRecord is one founder observation attached to a startup.
//
// Created when a name is first seen by the scraper or extractor; later tiers
// update it but never overwrite a field with lower-confidence data.
type FounderRecord struct {
	ID                string  `json:"id,omitempty"`
	StartupID         string  `json:"startup_id,omitempty"`
	FirstName         string  `json:"first_name"`
	LastName          string  `json:"last_name"`
	Email             string  `json:"email,omitempty"`
	Role              string  `json:"role,omitempty"`
	LinkedIn          string  `json:"linkedin,omitempty"`
	Background        string  `json:"background,omitempty"`
	EmailSource       string  `json:"email_source,omitempty"`
	EmailVerified     bool    `json:"email_verified"`
	Confidence        float64 `json:"confidence"`
	NeedsManualReview bool    `json:"needs_manual_review"`
}

// FullName returns "First Last", trimmed of surrounding whitespace.
func (f FounderRecord) FullName() string {
	switch {
	case f.FirstName == "":
		return f.LastName
	case f.LastName == "":
		return f.FirstName
	default:
		return f.FirstName + " " + f.LastName
	}
}

// Email source tags, ordered roughly by trust.
const (
	EmailSourceScrape  = "profile_scrape"
	EmailSourceExtract = "search_extract"
	EmailSourcePattern = "pattern_verify"
	EmailSourceManual  = "manual_review"
)
