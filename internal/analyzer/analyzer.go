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

// Package analyzer extracts the SEO signal set from a single HTML page.
//
// Analyze is a pure function: it performs no I/O and shares no state, so the
// crawler can run it from any worker. The HTML is parsed once with goquery
// and the parse tree is shared read-only by every extractor. Malformed or
// missing markup is never fatal; each extractor falls back to a neutral
// default and emits only its own issues.
package analyzer

import (
	"bytes"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// HreflangEntry is one <link rel="alternate" hreflang=...> declaration.
type HreflangEntry struct {
	Lang string `json:"lang"`
	Href string `json:"href"`
}

// PlaceholderHit is one detected piece of placeholder/dev content, with a
// short context snippet around the match.
type PlaceholderHit struct {
	Match   string `json:"match"`
	Context string `json:"context"`
}

// Sample URL lists (images without alt, nofollow internal links, placeholder
// hits) are capped so a single pathological page cannot bloat its record.
const sampleCap = 20

// PageRecord holds every signal extracted from one page, plus the issues the
// extractors emitted and the derived score. One record is persisted per
// unique deduplication key per crawl.
type PageRecord struct {
	URL           string  `json:"url"`
	StatusCode    int     `json:"status_code"`
	ResponseTime  float64 `json:"response_time"`
	ContentType   string  `json:"content_type"`
	ContentLength int     `json:"content_length"`

	Title                 string   `json:"title"`
	TitleLength           int      `json:"title_length"`
	MetaDescription       string   `json:"meta_description"`
	MetaDescriptionLength int      `json:"meta_description_length"`
	CanonicalURL          string   `json:"canonical_url"`
	CanonicalIssueTags    []string `json:"canonical_issues"`
	RobotsMeta            string   `json:"robots_meta"`
	IsNoindex             bool     `json:"is_noindex"`
	IsNofollowMeta        bool     `json:"is_nofollow_meta"`

	H1Count int      `json:"h1_count"`
	H1Texts []string `json:"h1_texts"`
	H2Count int      `json:"h2_count"`
	H3Count int      `json:"h3_count"`
	H4Count int      `json:"h4_count"`
	H5Count int      `json:"h5_count"`
	H6Count int      `json:"h6_count"`

	TotalImages            int      `json:"total_images"`
	ImagesWithoutAlt       int      `json:"images_without_alt"`
	ImagesWithoutAltURLs   []string `json:"images_without_alt_urls"`
	ImagesWithEmptyAlt     int      `json:"images_with_empty_alt"`
	ImagesWithEmptyAltURLs []string `json:"images_with_empty_alt_urls"`

	InternalLinks         int      `json:"internal_links"`
	ExternalLinks         int      `json:"external_links"`
	NofollowLinks         int      `json:"nofollow_links"`
	NofollowInternalLinks []string `json:"nofollow_internal_links"`

	HasSchemaMarkup bool     `json:"has_schema_markup"`
	SchemaTypes     []string `json:"schema_types"`
	HasViewportMeta bool     `json:"has_viewport_meta"`
	WordCount       int      `json:"word_count"`
	HasLazyLoading  bool     `json:"has_lazy_loading"`

	CodeToTextRatio float64 `json:"code_to_text_ratio"`
	HTMLSize        int     `json:"html_size"`
	TextSize        int     `json:"text_size"`

	OGTitle       string `json:"og_title"`
	OGDescription string `json:"og_description"`
	OGImage       string `json:"og_image"`

	HasHreflang     bool            `json:"has_hreflang"`
	HreflangEntries []HreflangEntry `json:"hreflang_entries"`
	HreflangIssues  []string        `json:"hreflang_issues"`

	HasPlaceholders bool             `json:"has_placeholders"`
	PlaceholderHits []PlaceholderHit `json:"placeholder_content"`

	// RedirectTarget is populated by the crawler only when this page was
	// reached through a redirect; it holds the URL that redirected here.
	RedirectTarget string `json:"redirect_target"`

	Issues []Issue `json:"issues"`
	Score  int     `json:"score"`
}

// analysis carries the shared parse state for one Analyze call.
type analysis struct {
	url  string
	host string
	html []byte
	doc  *goquery.Document
	rec  *PageRecord
}

// Analyze runs the full extractor pipeline over one fetched HTML document.
// Extractors run in a fixed order so the issue list is deterministic for a
// given input.
func Analyze(pageURL string, html []byte, statusCode int, elapsed time.Duration) *PageRecord {
	rec := &PageRecord{
		URL:           pageURL,
		StatusCode:    statusCode,
		ResponseTime:  roundTo(elapsed.Seconds(), 3),
		ContentLength: len(html),
	}

	host := ""
	if parsed, err := url.Parse(pageURL); err == nil {
		host = parsed.Host
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		// Unparseable bytes: every signal stays at its neutral default, and
		// the absence issues still apply.
		doc = emptyDocument()
	}

	a := &analysis{url: pageURL, host: host, html: html, rec: rec, doc: doc}

	a.analyzeTitle()
	a.analyzeMetaDescription()
	a.analyzeCanonical()
	a.analyzeRobotsMeta()
	a.analyzeHeadings()
	a.analyzeImages()
	a.analyzeLinks()
	a.analyzeStructuredData()
	a.analyzeViewport()
	a.analyzeContent()
	a.analyzeOpenGraph()
	a.analyzePerformanceHints()
	a.analyzeHreflang()
	a.analyzeNofollow()
	a.analyzeCodeToTextRatio()
	a.analyzePlaceholders()

	rec.Score = Score(rec.Issues)
	return rec
}

// ErrorRecord builds the lightweight record saved for 4xx/5xx responses.
// Signals stay empty and no issues are emitted; the status code itself is the
// diagnostic, surfaced later by the status-code breakdown in aggregation.
func ErrorRecord(pageURL string, statusCode int, elapsed time.Duration, contentType string, contentLength int) *PageRecord {
	return &PageRecord{
		URL:           pageURL,
		StatusCode:    statusCode,
		ResponseTime:  roundTo(elapsed.Seconds(), 3),
		ContentType:   contentType,
		ContentLength: contentLength,
		Issues:        []Issue{},
	}
}

func (a *analysis) addIssue(issueType, message string) {
	a.rec.Issues = append(a.rec.Issues, Issue{
		Severity: SeverityOf(issueType),
		Type:     issueType,
		Message:  message,
	})
}

func emptyDocument() *goquery.Document {
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(""))
	return doc
}

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow10(decimals)
	return math.Round(v*pow) / pow
}
