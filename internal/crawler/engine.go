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

// Package crawler runs site-wide SEO crawls.
//
// An Engine owns one crawl: it resolves the start URL, snapshots robots.txt,
// seeds the queue from sitemaps, and fans work out to a fixed pool of
// workers. URLs are kept exactly as the server returns them; a normalized
// deduplication key decides whether two URLs are the same page. Redirects are
// followed manually and only the final page is saved.
package crawler

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/agentberlin/sitesnake/internal/analyzer"
	"github.com/agentberlin/sitesnake/internal/robots"
	"github.com/agentberlin/sitesnake/internal/sitemap"
	"github.com/agentberlin/sitesnake/internal/urlutil"
)

const (
	// MaxPages caps how many pages a single crawl may save.
	MaxPages = 10000
	// Concurrency is the size of the worker pool.
	Concurrency = 10
	// crawlBudget bounds the total wall time of one crawl.
	crawlBudget = 7200 * time.Second
	// queueCapacity bounds the frontier; enqueue drops silently when full.
	queueCapacity = 10000
)

// Store is what the engine needs from persistence. *store.Store satisfies it.
type Store interface {
	UpdateCrawlState(crawlID uint, state string) error
	UpdateCrawlProgress(crawlID uint, pagesCrawled, totalDiscovered int) error
	FinishCrawl(crawlID uint, state string, pagesCrawled int, errMsg string) error
	SaveRobotsSnapshot(crawlID uint, content string, statusCode int, access []robots.BotAccess) error
	SaveSitemapResults(crawlID uint, descriptors []sitemap.Descriptor, urlCount int) error
	SavePage(crawlID uint, dedupKey string, rec *analyzer.PageRecord) error
	GetCrawlDedupKeys(crawlID uint) ([]string, error)
}

// Limits tunes one crawl run. Zero values fall back to the package defaults.
type Limits struct {
	// MaxPages caps how many pages this crawl may save (default MaxPages).
	MaxPages int
	// Workers sets the worker pool size (default Concurrency).
	Workers int
	// Budget bounds the total wall time of the crawl (default 7200s).
	Budget time.Duration
}

// Crawl state names, shared with the store layer.
const (
	StateRunning   = "running"
	StatePaused    = "paused"
	StateStopped   = "stopped"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// Engine crawls one site. Construct with NewEngine, start with Run; Pause,
// Resume and Stop are safe to call from any goroutine while Run is active.
type Engine struct {
	CrawlID uint

	store        Store
	client       *http.Client // no auto-redirects, used for page fetches
	followClient *http.Client // follows redirects, used for robots/sitemaps

	baseURL    string
	domain     string // host as given, used for logs
	baseDomain string // normalized host all crawled URLs must match

	ignoreRobots bool
	policy       *robots.Policy

	maxPages int
	workers  int
	budget   time.Duration

	queue chan string
	// pending counts enqueued-but-unprocessed URLs, the Go rendition of a
	// joinable queue: when it drains, the crawl is done.
	pending sync.WaitGroup
	quit    chan struct{}

	mu              sync.Mutex
	visited         map[string]bool
	pageCount       int
	totalDiscovered int

	pauseMu sync.Mutex
	// pauseGate is closed while running; Pause swaps in an open channel
	// workers block on until Resume closes it again.
	pauseGate chan struct{}

	stopMu  sync.Mutex
	stopped bool
	stopCh  chan struct{}

	failMu  sync.Mutex
	failure string
}

// NewEngine prepares a crawl engine. startURL should already be normalized
// (see urlutil.NormalizeStartURL). ignoreRobots disables Disallow enforcement
// for the crawl itself; the robots snapshot is still taken for the report.
func NewEngine(crawlID uint, startURL string, st Store, ignoreRobots bool, limits Limits) *Engine {
	running := make(chan struct{})
	close(running)

	client := NewHTTPClient()
	follow := NewHTTPClient()
	follow.CheckRedirect = nil

	if limits.MaxPages <= 0 || limits.MaxPages > MaxPages {
		limits.MaxPages = MaxPages
	}
	if limits.Workers <= 0 {
		limits.Workers = Concurrency
	}
	if limits.Budget <= 0 {
		limits.Budget = crawlBudget
	}

	e := &Engine{
		CrawlID:      crawlID,
		store:        st,
		client:       client,
		followClient: follow,
		baseURL:      strings.TrimRight(startURL, "/"),
		ignoreRobots: ignoreRobots,
		maxPages:     limits.MaxPages,
		workers:      limits.Workers,
		budget:       limits.Budget,
		queue:        make(chan string, queueCapacity),
		quit:         make(chan struct{}),
		visited:      map[string]bool{},
		pauseGate:    running,
		stopCh:       make(chan struct{}),
	}
	e.setDomainFrom(e.baseURL)
	return e
}

func (e *Engine) setDomainFrom(rawURL string) {
	if _, host, err := urlutil.NormalizeStartURL(rawURL); err == nil {
		e.domain = host
		e.baseDomain = urlutil.NormalizeHost(host)
	}
}

// Pause blocks the workers after their current page. Idempotent.
func (e *Engine) Pause() {
	e.pauseMu.Lock()
	defer e.pauseMu.Unlock()
	select {
	case <-e.pauseGate:
		e.pauseGate = make(chan struct{})
		log.Printf("Crawl %d paused", e.CrawlID)
	default:
		// already paused
	}
}

// Resume unblocks paused workers. Idempotent.
func (e *Engine) Resume() {
	e.pauseMu.Lock()
	defer e.pauseMu.Unlock()
	select {
	case <-e.pauseGate:
		// already running
	default:
		close(e.pauseGate)
		log.Printf("Crawl %d resumed", e.CrawlID)
	}
}

// Stop ends the crawl; workers exit after their current page. Also resumes a
// paused crawl so blocked workers can exit. Idempotent.
func (e *Engine) Stop() {
	e.stopMu.Lock()
	defer e.stopMu.Unlock()
	if e.stopped {
		return
	}
	e.stopped = true
	close(e.stopCh)
	log.Printf("Crawl %d stopped", e.CrawlID)
	e.Resume()
}

func (e *Engine) isStopped() bool {
	e.stopMu.Lock()
	defer e.stopMu.Unlock()
	return e.stopped
}

// fail records the first crawl-level error and stops the crawl.
func (e *Engine) fail(msg string) {
	e.failMu.Lock()
	if e.failure == "" {
		e.failure = msg
	}
	e.failMu.Unlock()
	e.Stop()
}

func (e *Engine) failureMsg() string {
	e.failMu.Lock()
	defer e.failMu.Unlock()
	return e.failure
}

// Pages returns how many pages the crawl has saved so far.
func (e *Engine) Pages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pageCount
}

func (e *Engine) waitIfPaused() {
	e.pauseMu.Lock()
	gate := e.pauseGate
	e.pauseMu.Unlock()
	select {
	case <-gate:
	case <-e.stopCh:
	}
}

// Run executes the crawl to completion. With resumeFromStopped, the visited
// set is preloaded from pages already saved under this crawl so nothing is
// fetched twice.
func (e *Engine) Run(ctx context.Context, resumeFromStopped bool) {
	log.Printf("Starting crawl %d for %s (resume=%v)", e.CrawlID, e.baseURL, resumeFromStopped)

	if err := e.store.UpdateCrawlState(e.CrawlID, StateRunning); err != nil {
		log.Printf("Crawl %d: state update failed: %v", e.CrawlID, err)
	}

	e.resolveStartURL(ctx)
	log.Printf("Resolved base domain: %s", e.domain)

	if resumeFromStopped {
		keys, err := e.store.GetCrawlDedupKeys(e.CrawlID)
		if err != nil {
			log.Printf("Crawl %d: loading visited URLs failed: %v", e.CrawlID, err)
		}
		e.mu.Lock()
		for _, key := range keys {
			e.visited[key] = true
		}
		e.pageCount = len(e.visited)
		e.mu.Unlock()
		log.Printf("Resumed with %d already-crawled URLs", len(keys))
	}

	// robots.txt is always fetched for the per-bot report, even when its
	// restrictions are ignored for crawling.
	log.Printf("Fetching robots.txt...")
	e.policy = robots.Fetch(ctx, e.followClient, e.baseURL)
	if e.ignoreRobots {
		log.Printf("Ignoring robots.txt restrictions (user override)")
	}
	if err := e.store.SaveRobotsSnapshot(e.CrawlID, e.policy.Content, e.policy.StatusCode, e.policy.AnalyzeBotAccess()); err != nil {
		log.Printf("Crawl %d: robots snapshot save failed: %v", e.CrawlID, err)
	}

	log.Printf("Fetching sitemaps...")
	discoverer := sitemap.NewDiscoverer(e.followClient, e.baseURL)
	sitemapURLs := discoverer.Discover(ctx, e.policy.Sitemaps())
	log.Printf("Found %d URLs in sitemaps", len(sitemapURLs))
	if err := e.store.SaveSitemapResults(e.CrawlID, discoverer.Found(), len(sitemapURLs)); err != nil {
		log.Printf("Crawl %d: sitemap save failed: %v", e.CrawlID, err)
	}

	// Seed the queue, start URL first so the homepage is always crawled.
	e.enqueue(e.baseURL)
	for i, u := range sitemapURLs {
		if i >= e.maxPages {
			break
		}
		e.enqueue(u)
	}
	log.Printf("Queue seeded with %d URLs. Starting workers...", len(e.queue))

	var workers sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			e.worker(ctx)
		}()
	}

	drained := make(chan struct{})
	go func() {
		e.pending.Wait()
		close(drained)
	}()

	timedOut := false
	select {
	case <-drained:
	case <-time.After(e.budget):
		timedOut = true
		log.Printf("Crawl %d timed out after %s", e.CrawlID, e.budget)
	case <-e.stopCh:
	}

	close(e.quit)
	workers.Wait()

	// On stop or timeout the workers exit with URLs still queued; release
	// their pending slots so the drained watcher can finish too.
	for draining := true; draining; {
		select {
		case <-e.queue:
			e.pending.Done()
		default:
			draining = false
		}
	}

	finalState := StateCompleted
	errMsg := e.failureMsg()
	if errMsg != "" {
		finalState = StateFailed
	} else if e.isStopped() {
		finalState = StateStopped
	}
	_ = timedOut // a timed-out crawl still completes with what it gathered

	e.mu.Lock()
	pages := e.pageCount
	e.mu.Unlock()

	if err := e.store.FinishCrawl(e.CrawlID, finalState, pages, errMsg); err != nil {
		log.Printf("Crawl %d: finish update failed: %v", e.CrawlID, err)
	}
	log.Printf("Crawl %s. %d pages crawled.", finalState, pages)
}

// resolveStartURL follows redirects on the starting URL so the crawl runs
// under the real domain (www.example.com -> example.com).
func (e *Engine) resolveStartURL(ctx context.Context) {
	result, err := Fetch(ctx, e.client, e.baseURL)
	if err != nil {
		log.Printf("Could not resolve start URL: %v - using original", err)
		return
	}

	finalURL := strings.TrimRight(result.FinalURL, "/")
	if finalURL == e.baseURL {
		return
	}

	_, finalHost, err := urlutil.NormalizeStartURL(finalURL)
	if err != nil {
		return
	}
	if finalHost != e.domain {
		log.Printf("Start URL redirected: %s (%s) -> %s (%s)", e.baseURL, e.domain, finalURL, finalHost)
		e.baseURL = finalURL
		e.setDomainFrom(finalURL)
	} else {
		log.Printf("Start URL resolved to: %s", finalURL)
		e.baseURL = finalURL
	}
}

// enqueue adds a URL to the frontier when it is unvisited, on-domain, not a
// skippable resource, and the page cap leaves room. A full queue drops the
// URL silently.
func (e *Engine) enqueue(rawURL string) {
	key, err := urlutil.DedupKey(rawURL)
	if err != nil {
		return
	}

	e.mu.Lock()
	if e.visited[key] || e.pageCount >= e.maxPages {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	_, host, err := urlutil.NormalizeStartURL(rawURL)
	if err != nil || urlutil.NormalizeHost(host) != e.baseDomain {
		return
	}
	if shouldSkipURL(rawURL) {
		return
	}

	e.pending.Add(1)
	select {
	case e.queue <- rawURL:
		e.mu.Lock()
		e.totalDiscovered++
		e.mu.Unlock()
	default:
		e.pending.Done()
	}
}

func (e *Engine) worker(ctx context.Context) {
	for {
		if e.isStopped() {
			return
		}
		e.waitIfPaused()

		select {
		case rawURL := <-e.queue:
			e.processOne(ctx, rawURL)
		case <-e.quit:
			return
		}
	}
}

// processOne guards a single URL: the pending slot is always released, and a
// panic anywhere in fetching or analysis fails the crawl instead of killing
// the process.
func (e *Engine) processOne(ctx context.Context, rawURL string) {
	defer e.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Crawl %d: panic while processing %s: %v", e.CrawlID, rawURL, r)
			e.fail(fmt.Sprintf("panic while processing %s: %v", rawURL, r))
		}
	}()
	e.processURL(ctx, rawURL)
}

func (e *Engine) processURL(ctx context.Context, rawURL string) {
	if e.isStopped() {
		return
	}
	e.waitIfPaused()
	if e.isStopped() {
		return
	}

	key, err := urlutil.DedupKey(rawURL)
	if err != nil {
		return
	}

	e.mu.Lock()
	if e.visited[key] || e.pageCount >= e.maxPages {
		e.mu.Unlock()
		return
	}
	e.visited[key] = true
	count := e.pageCount
	e.mu.Unlock()

	if !e.ignoreRobots && e.policy != nil && !e.policy.Allowed(rawURL) {
		log.Printf("Blocked by robots.txt: %s", rawURL)
		return
	}

	log.Printf("Crawling [%d]: %s", count, rawURL)
	e.crawlPage(ctx, rawURL)
}

// crawlPage fetches and analyzes a single page. Redirect chains resolve to
// the final page; only that page is saved, under its own URL.
func (e *Engine) crawlPage(ctx context.Context, rawURL string) {
	result, err := Fetch(ctx, e.client, rawURL)
	if err != nil {
		log.Printf("Request failed for %s: %v", rawURL, err)
		return
	}

	finalURL := result.FinalURL
	redirectTarget := ""

	if result.WasRedirected() {
		first := result.Redirects[0]
		log.Printf("URL %s redirected (%d) -> %s (status %d)", rawURL, first.StatusCode, finalURL, result.StatusCode)
		// The saved record carries the URL that redirected here, so reports
		// can still show the address the crawler originally requested.
		redirectTarget = rawURL

		_, finalHost, err := urlutil.NormalizeStartURL(finalURL)
		if err != nil || urlutil.NormalizeHost(finalHost) != e.baseDomain {
			log.Printf("Redirect landed off-domain (%s), skipping", finalHost)
			return
		}

		normFinal, err1 := urlutil.DedupKey(finalURL)
		normOriginal, err2 := urlutil.DedupKey(rawURL)
		if err1 != nil || err2 != nil {
			return
		}
		if normFinal != normOriginal {
			// Real redirect to a different page: skip if the final page was
			// already crawled from another entry point, otherwise claim it.
			e.mu.Lock()
			if e.visited[normFinal] {
				e.mu.Unlock()
				return
			}
			e.visited[normFinal] = true
			e.mu.Unlock()
		}
		// Trivial redirects (trailing slash, www) share the dedup key the
		// worker already marked; fall through and analyze the final page.
	}

	saveKey, err := urlutil.DedupKey(finalURL)
	if err != nil {
		return
	}

	// 4xx/5xx: save a minimal record with no SEO issues. The status code is
	// the finding.
	if result.StatusCode >= 400 {
		log.Printf("Error status %d for %s", result.StatusCode, finalURL)
		contentType := result.ContentType
		if contentType == "" {
			contentType = "error"
		}
		rec := analyzer.ErrorRecord(finalURL, result.StatusCode, result.ResponseTime, contentType, len(result.Body))
		rec.RedirectTarget = redirectTarget
		e.savePage(saveKey, rec)
		return
	}

	if !strings.Contains(result.ContentType, "text/html") {
		log.Printf("Skipping non-HTML: %s (%s)", finalURL, result.ContentType)
		return
	}

	log.Printf("Got %d bytes from %s (status %d)", len(result.Body), finalURL, result.StatusCode)

	rec := analyzer.Analyze(finalURL, result.Body, result.StatusCode, result.ResponseTime)
	rec.ContentType = result.ContentType
	rec.RedirectTarget = redirectTarget
	if !e.savePage(saveKey, rec) {
		return
	}

	e.discoverLinks(finalURL, result.Body)
}

func (e *Engine) savePage(dedupKey string, rec *analyzer.PageRecord) bool {
	if err := e.store.SavePage(e.CrawlID, dedupKey, rec); err != nil {
		log.Printf("DB save failed for %s: %v", rec.URL, err)
		return false
	}

	e.mu.Lock()
	e.pageCount++
	pages, discovered := e.pageCount, e.totalDiscovered
	e.mu.Unlock()

	if err := e.store.UpdateCrawlProgress(e.CrawlID, pages, discovered); err != nil {
		log.Printf("Progress update failed: %v", err)
	}
	return true
}

// discoverLinks extracts same-domain URLs from every navigable source on the
// page and feeds them to the frontier.
func (e *Engine) discoverLinks(pageURL string, html []byte) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return
	}

	found := map[string]bool{}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		found[s.AttrOr("href", "")] = true
	})
	// Language versions and canonical targets are pages too.
	doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		for _, rel := range strings.Fields(s.AttrOr("rel", "")) {
			if strings.EqualFold(rel, "alternate") || strings.EqualFold(rel, "canonical") {
				found[s.AttrOr("href", "")] = true
			}
		}
	})
	doc.Find("area[href]").Each(func(_ int, s *goquery.Selection) {
		found[s.AttrOr("href", "")] = true
	})
	doc.Find("iframe[src]").Each(func(_ int, s *goquery.Selection) {
		found[s.AttrOr("src", "")] = true
	})

	discovered := 0
	for href := range found {
		if href == "" ||
			strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "data:") {
			continue
		}
		fullURL, err := urlutil.Canonical(pageURL, href)
		if err != nil {
			continue
		}
		e.enqueue(fullURL)
		discovered++
	}

	log.Printf("Discovered %d new URLs from %s", discovered, pageURL)
}
