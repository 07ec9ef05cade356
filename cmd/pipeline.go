package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/talentbridge/enrich-cli/internal/email"
	"github.com/talentbridge/enrich-cli/internal/extract"
	"github.com/talentbridge/enrich-cli/internal/pipeline"
	"github.com/talentbridge/enrich-cli/internal/resilience"
	"github.com/talentbridge/enrich-cli/internal/scrape"
	"github.com/talentbridge/enrich-cli/internal/search"
	"github.com/talentbridge/enrich-cli/internal/session"
	"github.com/talentbridge/enrich-cli/internal/store"
	anthropicpkg "github.com/talentbridge/enrich-cli/pkg/anthropic"
	"github.com/talentbridge/enrich-cli/pkg/browser"
	"github.com/talentbridge/enrich-cli/pkg/hunter"
	"github.com/talentbridge/enrich-cli/pkg/jina"
)

// pipelineEnv holds the initialized store, clients, and pipeline shared by
// the enrich, founders, and serve commands.
type pipelineEnv struct {
	Store    store.Store
	Session  *session.Session
	Pipeline *pipeline.Pipeline
	Browser  *browser.Session // may be nil
}

// Close releases resources held by the environment.
func (pe *pipelineEnv) Close() {
	if pe.Browser != nil {
		pe.Browser.Close()
	}
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
}

// initPipeline sets up the store, clients, and pipeline. Optional tiers
// degrade instead of failing: no browser means no page scraping, no Hunter
// key means no email verification.
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	sess := session.New(cfg.Anthropic.Elevated, cfg.Anthropic.PaceInterval())

	var aiClient anthropicpkg.Client
	if cfg.Anthropic.Key != "" {
		aiClient = anthropicpkg.NewClient(cfg.Anthropic.Key)
	} else {
		zap.L().Warn("ENRICH_ANTHROPIC_KEY not set, extraction will use the pattern fallback only")
	}

	var backends []search.Backend
	if aiClient != nil {
		backends = append(backends, search.NewGrounded(aiClient, cfg.Anthropic.Model, int64(cfg.Anthropic.MaxTokens)))
	}
	if cfg.Jina.Key != "" {
		jinaOpts := []jina.Option{}
		if cfg.Jina.SearchBaseURL != "" {
			jinaOpts = append(jinaOpts, jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL))
		}
		backends = append(backends, search.NewAPI(jina.NewClient(cfg.Jina.Key, jinaOpts...)))
	}

	// The browser serves both the rendered search backend and the scraper.
	var browserSess *browser.Session
	var scraper *scrape.Scraper
	browserSess, err = browser.NewSession(browser.Config{
		ChromePath: cfg.Browser.ChromePath,
		Headless:   cfg.Browser.Headless,
	})
	if err != nil {
		zap.L().Warn("browser unavailable, skipping rendered search and page scraping", zap.Error(err))
		browserSess = nil
	} else {
		backends = append(backends, search.NewRendered(browserSess))
		navTimeout := time.Duration(cfg.Browser.NavTimeoutS) * time.Second
		scraper = scrape.New(browserSess, navTimeout, cfg.Pipeline.MinJobsPrimary)
	}

	retryCfg := resilience.DefaultRetryConfig()
	if cfg.Search.RetryAttempts > 0 {
		retryCfg.MaxAttempts = cfg.Search.RetryAttempts
	}
	if cfg.Search.RetryBaseMS > 0 {
		retryCfg.InitialBackoff = time.Duration(cfg.Search.RetryBaseMS) * time.Millisecond
	}
	searcher := search.New(sess, cfg.Search.MaxResults, backends...).WithRetry(retryCfg)

	schema, err := loadSchema()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	extractor := extract.New(aiClient, cfg.Anthropic.Model, int64(cfg.Anthropic.MaxTokens), schema).
		WithFallbackConfidence(cfg.Extract.FallbackConfidence)

	var discoverer *email.Discoverer
	if cfg.Hunter.Key != "" {
		verifier := hunter.NewClient(cfg.Hunter.Key, hunter.WithBaseURL(cfg.Hunter.BaseURL))
		discoverer = email.New(verifier, cfg.Email.MaxPatterns, cfg.Email.ConfidenceScale,
			email.WithHourlyCap(cfg.Hunter.HourlyCap))
	} else {
		zap.L().Warn("ENRICH_HUNTER_KEY not set, email discovery disabled")
	}

	p := pipeline.New(st, sess, scraper, searcher, extractor, discoverer, schema, pipeline.Options{
		EntityDelay:      time.Duration(cfg.Pipeline.EntityDelayMS) * time.Millisecond,
		QueryConcurrency: cfg.Pipeline.QueryConcurrency,
	})

	return &pipelineEnv{Store: st, Session: sess, Pipeline: p, Browser: browserSess}, nil
}

func loadSchema() (extract.Schema, error) {
	if cfg.Extract.SchemaPath != "" {
		schema, err := extract.LoadSchema(cfg.Extract.SchemaPath)
		if err != nil {
			return extract.Schema{}, eris.Wrap(err, "load field schema")
		}
		return schema, nil
	}
	schema := extract.DefaultSchema()
	if cfg.Extract.MinConfidence > 0 {
		schema.DefaultMinConfidence = cfg.Extract.MinConfidence
	}
	if cfg.Extract.EmailMinConfidence > 0 {
		for i := range schema.Fields {
			if schema.Fields[i].Key == extract.FieldFounderEmail {
				schema.Fields[i].MinConfidence = cfg.Extract.EmailMinConfidence
			}
		}
	}
	return schema, nil
}
