package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/enrich-cli/internal/model"
	"github.com/talentbridge/enrich-cli/internal/store"
)

// routerStore backs the status API tests with a fixed record set.
type routerStore struct {
	records  map[string]model.StartupRecord
	founders map[string][]model.FounderRecord
}

func (s *routerStore) GetRecord(_ context.Context, id string) (*model.StartupRecord, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, eris.Wrapf(store.ErrNotFound, "startup %s", id)
	}
	return &r, nil
}

func (s *routerStore) ListRecords(_ context.Context, filter store.RecordFilter) ([]model.StartupRecord, error) {
	var out []model.StartupRecord
	for _, r := range s.records {
		if filter.Batch != "" && r.Batch != filter.Batch {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *routerStore) RecordsNeedingEnrichment(ctx context.Context, limit int) ([]model.StartupRecord, error) {
	return s.ListRecords(ctx, store.RecordFilter{NeedsEnrichment: true, Limit: limit})
}

func (s *routerStore) UpdateRecord(context.Context, *model.StartupRecord) error { return nil }

func (s *routerStore) SetStatus(context.Context, string, model.EnrichmentStatus) error { return nil }

func (s *routerStore) UpsertFounders(context.Context, string, []model.FounderRecord) error {
	return nil
}

func (s *routerStore) ListFounders(_ context.Context, startupID string) ([]model.FounderRecord, error) {
	return s.founders[startupID], nil
}

func (s *routerStore) Migrate(context.Context) error { return nil }
func (s *routerStore) Close() error                  { return nil }

func testServer(t *testing.T, enqueue func(id string)) (*httptest.Server, *routerStore) {
	t.Helper()
	st := &routerStore{
		records: map[string]model.StartupRecord{
			"s1": {ID: "s1", Name: "Acme", Batch: "s25"},
		},
		founders: map[string][]model.FounderRecord{
			"s1": {{StartupID: "s1", FirstName: "Jane", LastName: "Doe"}},
		},
	}
	if enqueue == nil {
		enqueue = func(string) {}
	}
	srv := httptest.NewServer(serveRouter(st, enqueue))
	t.Cleanup(srv.Close)
	return srv, st
}

func TestServeRouter_Health(t *testing.T) {
	srv, _ := testServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeRouter_RecordNotFound(t *testing.T) {
	srv, _ := testServer(t, nil)

	resp, err := http.Get(srv.URL + "/records/missing")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeRouter_Founders(t *testing.T) {
	srv, _ := testServer(t, nil)

	resp, err := http.Get(srv.URL + "/records/s1/founders")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServeRouter_EnrichAcceptsAndEnqueues(t *testing.T) {
	enqueued := make(chan string, 1)
	srv, _ := testServer(t, func(id string) { enqueued <- id })

	resp, err := http.Post(srv.URL+"/records/s1/enrich", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "s1", <-enqueued)
}

func TestRedactKey(t *testing.T) {
	assert.Empty(t, redactKey(""))
	assert.Equal(t, "[set]", redactKey("sk-secret"))
}
