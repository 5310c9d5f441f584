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
	"fmt"
	"log"
	"time"

	"github.com/agentberlin/sitesnake/internal/crawler"
	"github.com/agentberlin/sitesnake/internal/report"
	"github.com/agentberlin/sitesnake/internal/store"
	"github.com/agentberlin/sitesnake/internal/urlutil"
)

// StartCrawlOptions tunes one crawl run.
type StartCrawlOptions struct {
	// IgnoreRobots disables robots.txt Disallow enforcement; the robots
	// snapshot and bot analysis are still taken.
	IgnoreRobots bool
	// MaxPages and Workers override the project's stored config when > 0,
	// and the new values are persisted for the next run.
	MaxPages int
	Workers  int
	// TimeoutSeconds bounds the crawl's wall time for this run only.
	TimeoutSeconds int
}

// crawlLimits folds the project's stored config with per-run overrides.
// Overrides are written back so a re-audit keeps the operator's last settings.
func (a *App) crawlLimits(projectID uint, opts StartCrawlOptions) crawler.Limits {
	budget := time.Duration(opts.TimeoutSeconds) * time.Second

	config, err := a.store.GetOrCreateConfig(projectID)
	if err != nil {
		log.Printf("Config load failed for project %d: %v - using defaults", projectID, err)
		return crawler.Limits{MaxPages: opts.MaxPages, Workers: opts.Workers, Budget: budget}
	}

	changed := false
	if opts.MaxPages > 0 && opts.MaxPages != config.MaxPages {
		config.MaxPages = opts.MaxPages
		changed = true
	}
	if opts.Workers > 0 && opts.Workers != config.Workers {
		config.Workers = opts.Workers
		changed = true
	}
	if changed {
		if err := a.store.UpdateConfig(config); err != nil {
			log.Printf("Config save failed for project %d: %v", projectID, err)
		}
	}

	return crawler.Limits{MaxPages: config.MaxPages, Workers: config.Workers, Budget: budget}
}

// StartCrawl validates the start URL, creates the project and crawl rows,
// and runs the crawl synchronously. Returns the crawl ID.
func (a *App) StartCrawl(ctx context.Context, rawURL string, opts StartCrawlOptions) (uint, error) {
	startURL, host, err := urlutil.NormalizeStartURL(rawURL)
	if err != nil {
		return 0, fmt.Errorf("invalid start URL: %v", err)
	}
	domain := urlutil.NormalizeHost(host)

	project, err := a.store.GetOrCreateProject(startURL, domain)
	if err != nil {
		return 0, err
	}

	crawl, err := a.store.CreateCrawl(project.ID, startURL, domain, opts.IgnoreRobots)
	if err != nil {
		return 0, err
	}

	a.runCrawl(ctx, crawl.ID, startURL, opts.IgnoreRobots, a.crawlLimits(project.ID, opts), false)
	return crawl.ID, nil
}

// StartCrawlAsync is StartCrawl with the crawl itself running in the
// background; the crawl ID returns immediately for use with PauseCrawl,
// StopCrawl and CrawlSummary.
func (a *App) StartCrawlAsync(ctx context.Context, rawURL string, opts StartCrawlOptions) (uint, error) {
	startURL, host, err := urlutil.NormalizeStartURL(rawURL)
	if err != nil {
		return 0, fmt.Errorf("invalid start URL: %v", err)
	}
	domain := urlutil.NormalizeHost(host)

	project, err := a.store.GetOrCreateProject(startURL, domain)
	if err != nil {
		return 0, err
	}

	crawl, err := a.store.CreateCrawl(project.ID, startURL, domain, opts.IgnoreRobots)
	if err != nil {
		return 0, err
	}

	go a.runCrawl(ctx, crawl.ID, startURL, opts.IgnoreRobots, a.crawlLimits(project.ID, opts), false)
	return crawl.ID, nil
}

func (a *App) runCrawl(ctx context.Context, crawlID uint, startURL string, ignoreRobots bool, limits crawler.Limits, resume bool) {
	engine := crawler.NewEngine(crawlID, startURL, a.store, ignoreRobots, limits)
	a.registry.Add(engine)
	defer a.registry.Remove(crawlID)
	// A panic during startup (robots, sitemaps) would otherwise leave the
	// crawl row stuck in running; the state field is how callers learn a
	// crawl died.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Crawl %d failed: %v", crawlID, r)
			if err := a.store.FinishCrawl(crawlID, store.CrawlStateFailed, engine.Pages(), fmt.Sprintf("panic: %v", r)); err != nil {
				log.Printf("Crawl %d: failure update failed: %v", crawlID, err)
			}
		}
	}()
	engine.Run(ctx, resume)
}

// PauseCrawl pauses a running crawl.
func (a *App) PauseCrawl(crawlID uint) error {
	engine := a.registry.Get(crawlID)
	if engine == nil {
		return fmt.Errorf("crawl %d is not active", crawlID)
	}
	engine.Pause()
	return a.store.UpdateCrawlState(crawlID, store.CrawlStatePaused)
}

// ResumeCrawl resumes a paused crawl in this process, or restarts a stopped
// crawl with its visited set preloaded so already-saved pages are not fetched
// again.
func (a *App) ResumeCrawl(ctx context.Context, crawlID uint) error {
	if engine := a.registry.Get(crawlID); engine != nil {
		engine.Resume()
		return a.store.UpdateCrawlState(crawlID, store.CrawlStateRunning)
	}

	crawl, err := a.store.GetCrawlByID(crawlID)
	if err != nil {
		return err
	}
	if crawl.State != store.CrawlStateStopped {
		return fmt.Errorf("crawl %d is %s, only stopped crawls can be restarted", crawlID, crawl.State)
	}

	// Mark running before the engine spins up so callers polling the state
	// never see the stale stopped row.
	if err := a.store.UpdateCrawlState(crawlID, store.CrawlStateRunning); err != nil {
		return err
	}
	// The restarted crawl keeps the robots choice made when it was started.
	go a.runCrawl(ctx, crawlID, crawl.StartURL, crawl.IgnoreRobots, a.crawlLimits(crawl.ProjectID, StartCrawlOptions{}), true)
	return nil
}

// StopCrawl stops a running or paused crawl. The engine records the stopped
// state when it winds down.
func (a *App) StopCrawl(crawlID uint) error {
	engine := a.registry.Get(crawlID)
	if engine == nil {
		return fmt.Errorf("crawl %d is not active", crawlID)
	}
	engine.Stop()
	return nil
}

// ActiveCrawls returns the IDs of crawls currently running in this process.
func (a *App) ActiveCrawls() []uint {
	return a.registry.Active()
}

// CrawlSummary builds the site-wide aggregation for a crawl.
func (a *App) CrawlSummary(crawlID uint) (*report.Summary, error) {
	crawl, err := a.store.GetCrawlByID(crawlID)
	if err != nil {
		return nil, err
	}
	pages, err := a.store.GetCrawlPages(crawlID)
	if err != nil {
		return nil, err
	}
	summary := report.BuildSummary(crawl, pages)
	if summary == nil {
		return nil, fmt.Errorf("no pages found for crawl %d", crawlID)
	}
	return summary, nil
}

// ListProjects returns all projects.
func (a *App) ListProjects() ([]store.Project, error) {
	return a.store.GetAllProjects()
}

// ListCrawls returns all crawls for a project, newest first.
func (a *App) ListCrawls(projectID uint) ([]store.Crawl, error) {
	return a.store.GetProjectCrawls(projectID)
}
