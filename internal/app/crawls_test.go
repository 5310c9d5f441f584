// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/agentberlin/sitesnake/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	st, err := store.NewStoreForTesting(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return NewApp(st)
}

func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/":
			w.Write([]byte(`<html><head><title>Home sweet home page title here</title></head><body><a href="/about">About</a></body></html>`))
		case "/about":
			w.Write([]byte(`<html><head><title>About this little testing site</title></head><body><h1>About</h1></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestStartCrawlEndToEnd(t *testing.T) {
	application := newTestApp(t)
	srv := newTestSite(t)

	crawlID, err := application.StartCrawl(context.Background(), srv.URL, StartCrawlOptions{})
	require.NoError(t, err)

	crawl, err := application.Store().GetCrawlByID(crawlID)
	require.NoError(t, err)
	assert.Equal(t, store.CrawlStateCompleted, crawl.State)
	assert.Equal(t, 2, crawl.PagesCrawled)
	assert.NotZero(t, crawl.FinishedAt)

	summary, err := application.CrawlSummary(crawlID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalPages)
	assert.Equal(t, 2, summary.ContentPages)

	// The project and its config row were created along the way.
	projects, err := application.ListProjects()
	require.NoError(t, err)
	require.Len(t, projects, 1)

	config, err := application.Store().GetOrCreateConfig(projects[0].ID)
	require.NoError(t, err)
	assert.Equal(t, store.DefaultMaxPages, config.MaxPages)
}

func TestStartCrawlPersistsLimitOverrides(t *testing.T) {
	application := newTestApp(t)
	srv := newTestSite(t)

	_, err := application.StartCrawl(context.Background(), srv.URL, StartCrawlOptions{
		MaxPages: 100,
		Workers:  2,
	})
	require.NoError(t, err)

	projects, err := application.ListProjects()
	require.NoError(t, err)
	require.Len(t, projects, 1)

	config, err := application.Store().GetOrCreateConfig(projects[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 100, config.MaxPages)
	assert.Equal(t, 2, config.Workers)
}

func TestStartCrawlInvalidURL(t *testing.T) {
	application := newTestApp(t)

	_, err := application.StartCrawl(context.Background(), "   ", StartCrawlOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid start URL")
}

func TestControlOpsRequireActiveCrawl(t *testing.T) {
	application := newTestApp(t)

	assert.Error(t, application.PauseCrawl(42))
	assert.Error(t, application.StopCrawl(42))
	assert.Empty(t, application.ActiveCrawls())
}

func TestResumeRejectsNonStoppedCrawl(t *testing.T) {
	application := newTestApp(t)
	srv := newTestSite(t)

	crawlID, err := application.StartCrawl(context.Background(), srv.URL, StartCrawlOptions{})
	require.NoError(t, err)

	// The crawl finished as completed; only stopped crawls can restart.
	err = application.ResumeCrawl(context.Background(), crawlID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only stopped crawls")
}

func TestCrawlSummaryNoPages(t *testing.T) {
	application := newTestApp(t)

	project, err := application.Store().GetOrCreateProject("https://example.com", "example.com")
	require.NoError(t, err)
	crawl, err := application.Store().CreateCrawl(project.ID, "https://example.com", "example.com", false)
	require.NoError(t, err)

	_, err = application.CrawlSummary(crawl.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pages found")
}
