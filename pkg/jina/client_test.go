package jina

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/enrich-cli/internal/resilience"
)

func TestSearch_ParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Acme Robotics funding", r.URL.Query().Get("q"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": 200,
			"data": [
				{"title": "Acme raises $2M", "url": "https://technews.example.dev/acme", "description": "Seed round", "content": "Acme Robotics raised $2M."}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithSearchBaseURL(srv.URL))
	resp, err := c.Search(context.Background(), "Acme Robotics funding")
	require.NoError(t, err)

	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Acme raises $2M", resp.Data[0].Title)
	assert.Equal(t, "https://technews.example.dev/acme", resp.Data[0].URL)
	assert.Equal(t, "Acme Robotics raised $2M.", resp.Data[0].Content)
}

func TestSearch_SiteFilterHeader(t *testing.T) {
	var gotSite string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSite = r.Header.Get("X-Site")
		_, _ = w.Write([]byte(`{"code": 200, "data": []}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithSearchBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "founders", WithSiteFilter("acme.io"))
	require.NoError(t, err)
	assert.Equal(t, "acme.io", gotSite)
}

func TestSearch_NoAuthHeaderWithoutKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"code": 200, "data": []}`))
	}))
	defer srv.Close()

	c := NewClient("", WithSearchBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "founders")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestSearch_RateLimitIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithSearchBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "founders")
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestSearch_BadRequestIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithSearchBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "founders")
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
}
