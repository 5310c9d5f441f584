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

// Package report aggregates the pages of a finished (or in-flight) crawl
// into a site-wide summary.
//
// BuildSummary is a pure fold over the stored pages: no I/O, and the same
// input always produces the same output. Map-derived groups are sorted with
// total orders so repeated runs serialize identically.
package report

import (
	"math"
	"sort"

	"github.com/agentberlin/sitesnake/internal/analyzer"
	"github.com/agentberlin/sitesnake/internal/store"
)

// Issue groups keep at most this many example pages each.
const issueGroupPageCap = 50

// Response times above this many seconds mark a page as slow.
const slowPageThreshold = 3.0

// PageRef points at one page of the crawl.
type PageRef struct {
	URL    string `json:"url"`
	PageID uint   `json:"page_id"`
}

// IssuePageRef is a page reference with the concrete issue message.
type IssuePageRef struct {
	URL    string `json:"url"`
	PageID uint   `json:"page_id"`
	Detail string `json:"detail"`
}

// IssueGroup is every occurrence of one issue type across the crawl.
type IssueGroup struct {
	Category string            `json:"category"`
	Severity analyzer.Severity `json:"severity"`
	Count    int               `json:"count"`
	Pages    []IssuePageRef    `json:"pages"`
}

// DuplicateGroup is a set of pages sharing an identical title or meta
// description.
type DuplicateGroup struct {
	Value string    `json:"value"`
	Count int       `json:"count"`
	Pages []PageRef `json:"pages"`
}

// StatusCodeGroup is the set of pages that returned one HTTP status.
type StatusCodeGroup struct {
	StatusCode int       `json:"status_code"`
	Count      int       `json:"count"`
	Pages      []PageRef `json:"pages"`
}

// CanonicalIssuePage is a page with canonical tag problems.
type CanonicalIssuePage struct {
	URL          string   `json:"url"`
	PageID       uint     `json:"page_id"`
	CanonicalURL string   `json:"canonical_url"`
	Issues       []string `json:"issues"`
}

// NofollowPage is a page carrying a nofollow meta directive.
type NofollowPage struct {
	URL              string   `json:"url"`
	PageID           uint     `json:"page_id"`
	NofollowInternal []string `json:"nofollow_internal"`
}

// AltIssuePage is a page with images missing or blanking their alt text.
type AltIssuePage struct {
	URL          string   `json:"url"`
	PageID       uint     `json:"page_id"`
	MissingCount int      `json:"missing_count,omitempty"`
	EmptyCount   int      `json:"empty_count,omitempty"`
	TotalImages  int      `json:"total_images"`
	MissingURLs  []string `json:"missing_urls,omitempty"`
}

// HreflangIssuePage is a page whose hreflang set has problems.
type HreflangIssuePage struct {
	URL     string                   `json:"url"`
	PageID  uint                     `json:"page_id"`
	Issues  []string                 `json:"issues"`
	Entries []analyzer.HreflangEntry `json:"entries"`
}

// ContentIssuePage is a page flagged for thin content or a low text ratio.
type ContentIssuePage struct {
	URL       string  `json:"url"`
	PageID    uint    `json:"page_id"`
	WordCount int     `json:"word_count,omitempty"`
	Ratio     float64 `json:"ratio,omitempty"`
}

// PlaceholderPage is a page containing placeholder/dev content.
type PlaceholderPage struct {
	URL     string                    `json:"url"`
	PageID  uint                      `json:"page_id"`
	Content []analyzer.PlaceholderHit `json:"content"`
}

// SlowPage is a page whose response time exceeded the slow threshold.
type SlowPage struct {
	URL          string  `json:"url"`
	PageID       uint    `json:"page_id"`
	ResponseTime float64 `json:"response_time"`
}

// Summary is the site-wide aggregation of one crawl.
type Summary struct {
	TotalPages    int     `json:"total_pages"`
	ContentPages  int     `json:"content_pages"`
	RedirectPages int     `json:"redirect_pages"`
	ErrorPages    int     `json:"error_pages"`
	AvgScore      float64 `json:"avg_score"`

	CriticalIssues int `json:"critical_issues"`
	Warnings       int `json:"warnings"`
	InfoIssues     int `json:"info_issues"`
	// RedirectIssues tallies issues found on 3xx records (terminal redirects
	// whose body was still analyzable).
	RedirectIssues int `json:"redirect_issues"`

	IssueGroups []IssueGroup `json:"issue_groups"`

	DuplicateTitles           []DuplicateGroup `json:"duplicate_titles"`
	DuplicateMetaDescriptions []DuplicateGroup `json:"duplicate_meta_descriptions"`

	StatusCodeBreakdown []StatusCodeGroup `json:"status_code_breakdown"`

	CanonicalIssues []CanonicalIssuePage `json:"canonical_issues"`
	NoindexPages    []PageRef            `json:"noindex_pages"`
	NofollowPages   []NofollowPage       `json:"nofollow_pages"`

	PagesMissingAlt       []AltIssuePage `json:"pages_missing_alt"`
	TotalImagesMissingAlt int            `json:"total_images_missing_alt"`
	PagesEmptyAlt         []AltIssuePage `json:"pages_empty_alt"`
	TotalImagesEmptyAlt   int            `json:"total_images_empty_alt"`

	HreflangIssues    []HreflangIssuePage `json:"hreflang_issues"`
	ThinContentPages  []ContentIssuePage  `json:"thin_content_pages"`
	LowTextRatioPages []ContentIssuePage  `json:"low_text_ratio_pages"`
	PlaceholderPages  []PlaceholderPage   `json:"placeholder_pages"`

	PagesMissingTitle    int `json:"pages_missing_title"`
	PagesMissingMeta     int `json:"pages_missing_meta"`
	PagesMissingH1       int `json:"pages_missing_h1"`
	PagesMissingViewport int `json:"pages_missing_viewport"`
	PagesWithoutSchema   int `json:"pages_without_schema"`

	AvgResponseTime float64    `json:"avg_response_time"`
	SlowPages       []SlowPage `json:"slow_pages"`

	RobotsTxtStatus string              `json:"robots_txt_status"`
	SitemapsFound   []sitemapDescriptor `json:"sitemaps_found"`
}

type sitemapDescriptor struct {
	URL       string `json:"url"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	URLsCount int    `json:"urls_count"`
}

// BuildSummary folds the crawl's pages into a summary. Returns nil when the
// crawl produced no pages.
func BuildSummary(crawl *store.Crawl, pages []store.Page) *Summary {
	if len(pages) == 0 {
		return nil
	}

	s := &Summary{
		TotalPages:      len(pages),
		RobotsTxtStatus: "not_found",
	}
	if crawl != nil {
		if crawl.RobotsContent != "" {
			s.RobotsTxtStatus = "found"
		}
		for _, desc := range crawl.GetSitemaps() {
			s.SitemapsFound = append(s.SitemapsFound, sitemapDescriptor{
				URL: desc.URL, Type: desc.Type, Status: desc.Status, URLsCount: desc.URLsCount,
			})
		}
	}

	issueMap := map[string][]IssuePageRef{}
	titleGroups := map[string][]PageRef{}
	metaGroups := map[string][]PageRef{}
	statusGroups := map[int][]PageRef{}

	scoreSum := 0
	respSum := 0.0

	for i := range pages {
		p := &pages[i]
		ref := PageRef{URL: p.URL, PageID: p.ID}
		rec := p.GetRecord()

		switch {
		case p.StatusCode >= 200 && p.StatusCode < 300:
			s.ContentPages++
			// Error and redirect records carry a zero score that would drag
			// the site average down, so only rendered pages count.
			scoreSum += p.Score
		case p.StatusCode >= 300 && p.StatusCode < 400:
			s.RedirectPages++
		case p.StatusCode >= 400:
			s.ErrorPages++
		}

		respSum += p.ResponseTime
		if p.ResponseTime > slowPageThreshold {
			s.SlowPages = append(s.SlowPages, SlowPage{URL: p.URL, PageID: p.ID, ResponseTime: p.ResponseTime})
		}

		if p.StatusCode != 0 {
			statusGroups[p.StatusCode] = append(statusGroups[p.StatusCode], ref)
		}
		if p.Title != "" {
			titleGroups[p.Title] = append(titleGroups[p.Title], ref)
		}

		if rec == nil {
			continue
		}

		if p.StatusCode >= 300 && p.StatusCode < 400 {
			s.RedirectIssues += len(rec.Issues)
		}

		for _, issue := range rec.Issues {
			switch issue.Severity {
			case analyzer.SeverityCritical:
				s.CriticalIssues++
			case analyzer.SeverityWarning:
				s.Warnings++
			case analyzer.SeverityInfo:
				s.InfoIssues++
			}
			issueMap[issue.Type] = append(issueMap[issue.Type], IssuePageRef{
				URL: p.URL, PageID: p.ID, Detail: issue.Message,
			})
		}

		if rec.MetaDescription != "" {
			metaGroups[rec.MetaDescription] = append(metaGroups[rec.MetaDescription], ref)
		}

		if len(rec.CanonicalIssueTags) > 0 {
			s.CanonicalIssues = append(s.CanonicalIssues, CanonicalIssuePage{
				URL: p.URL, PageID: p.ID, CanonicalURL: rec.CanonicalURL, Issues: rec.CanonicalIssueTags,
			})
		}
		if rec.IsNoindex {
			s.NoindexPages = append(s.NoindexPages, ref)
		}
		if rec.IsNofollowMeta {
			s.NofollowPages = append(s.NofollowPages, NofollowPage{
				URL: p.URL, PageID: p.ID, NofollowInternal: rec.NofollowInternalLinks,
			})
		}

		if rec.ImagesWithoutAlt > 0 {
			s.PagesMissingAlt = append(s.PagesMissingAlt, AltIssuePage{
				URL: p.URL, PageID: p.ID,
				MissingCount: rec.ImagesWithoutAlt,
				TotalImages:  rec.TotalImages,
				MissingURLs:  rec.ImagesWithoutAltURLs,
			})
			s.TotalImagesMissingAlt += rec.ImagesWithoutAlt
		}
		if rec.ImagesWithEmptyAlt > 0 {
			s.PagesEmptyAlt = append(s.PagesEmptyAlt, AltIssuePage{
				URL: p.URL, PageID: p.ID,
				EmptyCount:  rec.ImagesWithEmptyAlt,
				TotalImages: rec.TotalImages,
			})
			s.TotalImagesEmptyAlt += rec.ImagesWithEmptyAlt
		}

		if len(rec.HreflangIssues) > 0 {
			s.HreflangIssues = append(s.HreflangIssues, HreflangIssuePage{
				URL: p.URL, PageID: p.ID, Issues: rec.HreflangIssues, Entries: rec.HreflangEntries,
			})
		}

		// Content-page thresholds only make sense on pages that rendered.
		if p.StatusCode >= 200 && p.StatusCode < 300 {
			if rec.WordCount < 300 {
				s.ThinContentPages = append(s.ThinContentPages, ContentIssuePage{
					URL: p.URL, PageID: p.ID, WordCount: rec.WordCount,
				})
			}
			if rec.CodeToTextRatio < 10 {
				s.LowTextRatioPages = append(s.LowTextRatioPages, ContentIssuePage{
					URL: p.URL, PageID: p.ID, Ratio: rec.CodeToTextRatio,
				})
			}
			if rec.Title == "" {
				s.PagesMissingTitle++
			}
			if rec.MetaDescription == "" {
				s.PagesMissingMeta++
			}
			if rec.H1Count == 0 {
				s.PagesMissingH1++
			}
			if !rec.HasViewportMeta {
				s.PagesMissingViewport++
			}
			if !rec.HasSchemaMarkup {
				s.PagesWithoutSchema++
			}
		}

		if rec.HasPlaceholders {
			s.PlaceholderPages = append(s.PlaceholderPages, PlaceholderPage{
				URL: p.URL, PageID: p.ID, Content: rec.PlaceholderHits,
			})
		}
	}

	if s.ContentPages > 0 {
		s.AvgScore = roundTo(float64(scoreSum)/float64(s.ContentPages), 1)
	}
	s.AvgResponseTime = roundTo(respSum/float64(len(pages)), 3)

	s.IssueGroups = buildIssueGroups(issueMap)
	s.DuplicateTitles = buildDuplicateGroups(titleGroups)
	s.DuplicateMetaDescriptions = buildDuplicateGroups(metaGroups)
	s.StatusCodeBreakdown = buildStatusBreakdown(statusGroups)

	return s
}

func buildIssueGroups(issueMap map[string][]IssuePageRef) []IssueGroup {
	groups := make([]IssueGroup, 0, len(issueMap))
	for issueType, pageRefs := range issueMap {
		capped := pageRefs
		if len(capped) > issueGroupPageCap {
			capped = capped[:issueGroupPageCap]
		}
		groups = append(groups, IssueGroup{
			Category: issueType,
			Severity: analyzer.SeverityOf(issueType),
			Count:    len(pageRefs),
			Pages:    capped,
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		ri, rj := analyzer.SeverityRank(groups[i].Severity), analyzer.SeverityRank(groups[j].Severity)
		if ri != rj {
			return ri < rj
		}
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Category < groups[j].Category
	})
	return groups
}

func buildDuplicateGroups(valueGroups map[string][]PageRef) []DuplicateGroup {
	var groups []DuplicateGroup
	for value, pageRefs := range valueGroups {
		if len(pageRefs) > 1 {
			groups = append(groups, DuplicateGroup{Value: value, Count: len(pageRefs), Pages: pageRefs})
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Value < groups[j].Value
	})
	return groups
}

func buildStatusBreakdown(statusGroups map[int][]PageRef) []StatusCodeGroup {
	groups := make([]StatusCodeGroup, 0, len(statusGroups))
	for code, pageRefs := range statusGroups {
		groups = append(groups, StatusCodeGroup{StatusCode: code, Count: len(pageRefs), Pages: pageRefs})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].StatusCode < groups[j].StatusCode
	})
	return groups
}

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow10(decimals)
	return math.Round(v*pow) / pow
}
