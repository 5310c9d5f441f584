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

package analyzer

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Title: 30-60 characters is the healthy range.
const (
	titleMin = 30
	titleMax = 60

	metaDescMin = 120
	metaDescMax = 160

	thinContentWords = 300

	lowTextRatio  = 10.0
	highTextRatio = 90.0

	// no_lazy_loading only applies to image-heavy pages.
	lazyLoadingImageThreshold = 5
)

func (a *analysis) analyzeTitle() {
	title := strings.TrimSpace(a.doc.Find("title").First().Text())
	length := utf8.RuneCountInString(title)

	a.rec.Title = title
	a.rec.TitleLength = length

	switch {
	case title == "":
		a.addIssue("missing_title", "Page is missing a <title> tag")
	case length < titleMin:
		a.addIssue("short_title", fmt.Sprintf("Title too short (%d chars). Aim for 30-60.", length))
	case length > titleMax:
		a.addIssue("long_title", fmt.Sprintf("Title too long (%d chars). Aim for 30-60.", length))
	}
}

func (a *analysis) analyzeMetaDescription() {
	desc := strings.TrimSpace(findMetaByName(a.doc, "description"))
	length := utf8.RuneCountInString(desc)

	a.rec.MetaDescription = desc
	a.rec.MetaDescriptionLength = length

	switch {
	case desc == "":
		a.addIssue("missing_meta_description", "Missing meta description")
	case length < metaDescMin:
		a.addIssue("short_meta_description", fmt.Sprintf("Meta description short (%d chars). Aim for 120-160.", length))
	case length > metaDescMax:
		a.addIssue("long_meta_description", fmt.Sprintf("Meta description long (%d chars). Aim for 120-160.", length))
	}
}

func (a *analysis) analyzeCanonical() {
	canonical := strings.TrimSpace(findLinkHrefByRel(a.doc, "canonical"))
	a.rec.CanonicalURL = canonical
	tags := []string{}

	if canonical == "" {
		a.addIssue("missing_canonical", "Missing canonical URL")
		tags = append(tags, "missing")
		a.rec.CanonicalIssueTags = tags
		return
	}

	parsed, err := url.Parse(canonical)
	if err == nil {
		if parsed.Host != "" && parsed.Host != a.host {
			a.addIssue("canonical_external", fmt.Sprintf("Canonical points to external domain: %s", parsed.Host))
			tags = append(tags, "external")
		}
		if parsed.Scheme == "" {
			a.addIssue("canonical_relative", "Canonical URL is relative, should be absolute")
			tags = append(tags, "relative")
		}
	}

	// Recorded without an issue: interpretation is left to consumers and it
	// never affects the score.
	if canonNorm := stripQueryFragment(canonical); canonNorm != "" && canonNorm != stripQueryFragment(a.url) {
		tags = append(tags, "not_self_referencing")
	}

	a.rec.CanonicalIssueTags = tags
}

func (a *analysis) analyzeRobotsMeta() {
	content := strings.TrimSpace(findMetaByName(a.doc, "robots"))
	a.rec.RobotsMeta = content
	if content == "" {
		return
	}

	lower := strings.ToLower(content)
	if strings.Contains(lower, "noindex") {
		a.rec.IsNoindex = true
		a.addIssue("noindex", "Page has noindex directive")
	}
	if strings.Contains(lower, "nofollow") {
		a.rec.IsNofollowMeta = true
		a.addIssue("nofollow_meta", "Page has nofollow meta directive")
	}
}

func (a *analysis) analyzeHeadings() {
	h1s := a.doc.Find("h1")
	texts := []string{}
	h1s.Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(s.Text()))
	})

	a.rec.H1Count = h1s.Length()
	a.rec.H1Texts = texts
	a.rec.H2Count = a.doc.Find("h2").Length()
	a.rec.H3Count = a.doc.Find("h3").Length()
	a.rec.H4Count = a.doc.Find("h4").Length()
	a.rec.H5Count = a.doc.Find("h5").Length()
	a.rec.H6Count = a.doc.Find("h6").Length()

	if a.rec.H1Count == 0 {
		a.addIssue("missing_h1", "Missing H1 heading")
	} else if a.rec.H1Count > 1 {
		a.addIssue("multiple_h1", fmt.Sprintf("Page has %d H1 headings. Use only one.", a.rec.H1Count))
	}
}

func (a *analysis) analyzeImages() {
	images := a.doc.Find("img")
	total := images.Length()

	withoutAlt := []string{}
	emptyAlt := 0
	emptyAltURLs := []string{}

	images.Each(func(_ int, s *goquery.Selection) {
		src := imageSrc(s)
		alt, exists := s.Attr("alt")
		if !exists {
			withoutAlt = append(withoutAlt, src)
		} else if strings.TrimSpace(alt) == "" {
			emptyAlt++
			emptyAltURLs = append(emptyAltURLs, src)
		}
	})

	// Elements styled as images need an accessible name too.
	roleImgMissing := 0
	a.doc.Find("[role='img']").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "img" {
			return // already covered by the alt check above
		}
		label := s.AttrOr("aria-label", s.AttrOr("aria-labelledby", ""))
		if strings.TrimSpace(label) == "" {
			roleImgMissing++
		}
	})

	svgMissing := 0
	a.doc.Find("svg").Each(func(_ int, s *goquery.Selection) {
		if s.Find("title").Length() > 0 {
			return
		}
		if s.AttrOr("aria-label", "") != "" || s.AttrOr("aria-labelledby", "") != "" {
			return
		}
		svgMissing++
	})

	a.rec.TotalImages = total
	a.rec.ImagesWithoutAlt = len(withoutAlt)
	a.rec.ImagesWithoutAltURLs = capStrings(withoutAlt, sampleCap)
	a.rec.ImagesWithEmptyAlt = emptyAlt
	a.rec.ImagesWithEmptyAltURLs = capStrings(emptyAltURLs, sampleCap)

	if len(withoutAlt) > 0 {
		a.addIssue("images_missing_alt", fmt.Sprintf("%d of %d images missing alt attribute", len(withoutAlt), total))
	}
	if emptyAlt > 0 {
		a.addIssue("images_empty_alt", fmt.Sprintf("%d of %d images have empty alt text (alt='')", emptyAlt, total))
	}
	if roleImgMissing > 0 {
		a.addIssue("role_img_missing_label", fmt.Sprintf("%d elements with role='img' missing aria-label", roleImgMissing))
	}
	if svgMissing > 0 {
		a.addIssue("svg_missing_title", fmt.Sprintf("%d inline SVGs missing <title> or aria-label", svgMissing))
	}
}

func (a *analysis) analyzeLinks() {
	internal, external, nofollow := 0, 0, 0

	a.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if skipHref(href) {
			return
		}
		if hasRelToken(s, "nofollow") {
			nofollow++
		}
		if a.isInternalHref(href) {
			internal++
		} else {
			external++
		}
	})

	a.rec.InternalLinks = internal
	a.rec.ExternalLinks = external
	a.rec.NofollowLinks = nofollow
}

func (a *analysis) analyzeStructuredData() {
	types := []string{}

	a.doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		var data interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return // invalid JSON-LD is silently skipped
		}
		types = append(types, schemaTypes(data)...)
	})

	a.rec.HasSchemaMarkup = len(types) > 0
	a.rec.SchemaTypes = types

	if !a.rec.HasSchemaMarkup {
		a.addIssue("no_schema_markup", "No structured data (JSON-LD) found")
	}
}

func (a *analysis) analyzeViewport() {
	a.rec.HasViewportMeta = a.doc.Find("meta[name='viewport']").Length() > 0
	if !a.rec.HasViewportMeta {
		a.addIssue("missing_viewport", "Missing viewport meta tag")
	}
}

func (a *analysis) analyzeContent() {
	words := len(strings.Fields(a.visibleText()))
	a.rec.WordCount = words
	if words < thinContentWords {
		a.addIssue("thin_content", fmt.Sprintf("Thin content: only %d words. Aim for 300+.", words))
	}
}

func (a *analysis) analyzeOpenGraph() {
	a.rec.OGTitle = a.doc.Find("meta[property='og:title']").First().AttrOr("content", "")
	a.rec.OGDescription = a.doc.Find("meta[property='og:description']").First().AttrOr("content", "")
	a.rec.OGImage = a.doc.Find("meta[property='og:image']").First().AttrOr("content", "")

	if a.doc.Find("meta[property='og:title']").Length() == 0 {
		a.addIssue("missing_og_title", "Missing Open Graph title")
	}
	if a.doc.Find("meta[property='og:image']").Length() == 0 {
		a.addIssue("missing_og_image", "Missing Open Graph image")
	}
}

func (a *analysis) analyzePerformanceHints() {
	images := a.doc.Find("img")
	hasLazy := false
	images.Each(func(_ int, s *goquery.Selection) {
		if s.AttrOr("loading", "") == "lazy" {
			hasLazy = true
		}
	})

	a.rec.HasLazyLoading = hasLazy
	if !hasLazy && images.Length() > lazyLoadingImageThreshold {
		a.addIssue("no_lazy_loading", "No lazy-loaded images. Add loading='lazy'.")
	}
}

func (a *analysis) analyzeHreflang() {
	entries := []HreflangEntry{}
	issues := []string{}

	a.doc.Find("link").Each(func(_ int, s *goquery.Selection) {
		if !hasRelToken(s, "alternate") {
			return
		}
		lang, exists := s.Attr("hreflang")
		if !exists {
			return
		}
		lang = strings.TrimSpace(lang)
		href := strings.TrimSpace(s.AttrOr("href", ""))
		entries = append(entries, HreflangEntry{Lang: lang, Href: href})

		if href == "" {
			issues = append(issues, fmt.Sprintf("Hreflang '%s' has empty href", lang))
		}
		if lang == "" {
			issues = append(issues, "Hreflang tag has empty language code")
		}
	})

	if len(entries) > 0 {
		hasDefault := false
		selfRef := false
		for _, e := range entries {
			if e.Lang == "x-default" {
				hasDefault = true
			}
			if strings.TrimRight(e.Href, "/") == strings.TrimRight(a.url, "/") {
				selfRef = true
			}
		}
		if !hasDefault {
			issues = append(issues, "Hreflang set found but missing x-default")
		}
		if !selfRef {
			issues = append(issues, "Hreflang set doesn't include self-referencing tag")
		}

		// Conflicting signals: a canonical pointing elsewhere, or a noindex,
		// makes search engines ignore the hreflang set.
		canonical := strings.TrimSpace(findLinkHrefByRel(a.doc, "canonical"))
		if canonical != "" {
			if canonNorm := stripQueryFragment(canonical); canonNorm != "" && canonNorm != stripQueryFragment(a.url) {
				issues = append(issues, fmt.Sprintf("Canonical points to %s but page has hreflang tags — conflicting signals", canonical))
			}
		}
		if robots := strings.ToLower(findMetaByName(a.doc, "robots")); strings.Contains(robots, "noindex") {
			issues = append(issues, "Page has noindex meta but also hreflang tags — search engines will ignore hreflang")
		}
	}

	for _, msg := range issues {
		a.addIssue("hreflang_issue", msg)
	}

	a.rec.HasHreflang = len(entries) > 0
	a.rec.HreflangEntries = entries
	a.rec.HreflangIssues = issues
}

func (a *analysis) analyzeNofollow() {
	nofollowInternal := []string{}

	a.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if skipHref(href) {
			return
		}
		if hasRelToken(s, "nofollow") && a.isInternalHref(href) {
			nofollowInternal = append(nofollowInternal, href)
		}
	})

	if len(nofollowInternal) > 0 {
		a.addIssue("nofollow_internal", fmt.Sprintf("%d internal links have nofollow", len(nofollowInternal)))
	}
	a.rec.NofollowInternalLinks = capStrings(nofollowInternal, sampleCap)
}

func (a *analysis) analyzeCodeToTextRatio() {
	htmlSize := len(a.html)
	textSize := len(a.visibleText())

	ratio := 0.0
	if htmlSize > 0 {
		ratio = roundTo(float64(textSize)/float64(htmlSize)*100, 1)
	}

	a.rec.CodeToTextRatio = ratio
	a.rec.HTMLSize = htmlSize
	a.rec.TextSize = textSize

	if ratio < lowTextRatio {
		a.addIssue("low_text_ratio", fmt.Sprintf("Low text-to-HTML ratio (%.1f%%). Aim for 25-70%%.", ratio))
	} else if ratio > highTextRatio {
		a.addIssue("high_text_ratio", fmt.Sprintf("Very high text-to-HTML ratio (%.1f%%). Page may lack structure.", ratio))
	}
}

// Placeholder patterns. The lorem-ipsum family is case-insensitive; TODO: and
// FIXME: are case-sensitive on purpose so ordinary words like the Spanish
// "todo" never match.
var (
	placeholderRe       = regexp.MustCompile(`(?i)lorem\s+ipsum|dolor\s+sit\s+amet|consectetur\s+adipiscing`)
	placeholderStrictRe = regexp.MustCompile(`TODO:\s|FIXME:\s`)
)

func (a *analysis) analyzePlaceholders() {
	// noscript content stays in scope here: hidden placeholder text is still
	// placeholder text.
	text := extractText(a.doc, "script, style")

	hits := []PlaceholderHit{}
	for _, re := range []*regexp.Regexp{placeholderRe, placeholderStrictRe} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			hits = append(hits, PlaceholderHit{
				Match:   text[loc[0]:loc[1]],
				Context: contextSnippet(text, loc[0], loc[1], 20),
			})
		}
	}

	a.rec.HasPlaceholders = len(hits) > 0
	if len(hits) > sampleCap {
		a.rec.PlaceholderHits = hits[:sampleCap]
	} else {
		a.rec.PlaceholderHits = hits
	}

	if len(hits) > 0 {
		a.addIssue("placeholder_content", fmt.Sprintf("Found %d placeholder/lorem ipsum content on page", len(hits)))
	}
}

// visibleText is the page text with script, style and noscript subtrees
// removed, used for the word count and the code-to-text ratio.
func (a *analysis) visibleText() string {
	return extractText(a.doc, "script, style, noscript")
}

// isInternalHref classifies a link target by host equality against the page
// host after resolving relative references. Unresolvable hrefs count as
// internal (no host means same-origin).
func (a *analysis) isInternalHref(href string) bool {
	base, err := url.Parse(a.url)
	if err != nil {
		return true
	}
	ref, err := url.Parse(href)
	if err != nil {
		return true
	}
	resolved := base.ResolveReference(ref)
	return resolved.Host == a.host || resolved.Host == ""
}

func skipHref(href string) bool {
	return strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "javascript:")
}

// findMetaByName returns the content of the first <meta> whose name attribute
// contains the given token, case-insensitive. Substring matching mirrors how
// browsers and crawlers treat vendor-prefixed names.
func findMetaByName(doc *goquery.Document, nameToken string) string {
	content := ""
	doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name := strings.ToLower(s.AttrOr("name", ""))
		if strings.Contains(name, nameToken) {
			content = s.AttrOr("content", "")
			return false
		}
		return true
	})
	return content
}

// findLinkHrefByRel returns the href of the first <link> whose rel attribute
// contains the given token. rel is a space-separated token list, so an exact
// attribute selector would miss rel="canonical something".
func findLinkHrefByRel(doc *goquery.Document, relToken string) string {
	href := ""
	doc.Find("link[rel]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if hasRelToken(s, relToken) {
			href = s.AttrOr("href", "")
			return false
		}
		return true
	})
	return href
}

func hasRelToken(s *goquery.Selection, token string) bool {
	for _, t := range strings.Fields(s.AttrOr("rel", "")) {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}

func imageSrc(s *goquery.Selection) string {
	if src, ok := s.Attr("src"); ok {
		return src
	}
	if src, ok := s.Attr("data-src"); ok {
		return src
	}
	return s.AttrOr("data-lazy-src", "")
}

// schemaTypes collects @type values from a decoded JSON-LD document,
// accepting object, list and @graph shapes.
func schemaTypes(data interface{}) []string {
	var types []string

	appendType := func(v interface{}) {
		switch t := v.(type) {
		case string:
			types = append(types, t)
		case []interface{}:
			for _, item := range t {
				if s, ok := item.(string); ok {
					types = append(types, s)
				}
			}
		}
	}

	switch d := data.(type) {
	case map[string]interface{}:
		if t, ok := d["@type"]; ok {
			appendType(t)
		}
		if graph, ok := d["@graph"].([]interface{}); ok {
			for _, item := range graph {
				if obj, ok := item.(map[string]interface{}); ok {
					if t, ok := obj["@type"]; ok {
						appendType(t)
					}
				}
			}
		}
	case []interface{}:
		for _, item := range d {
			if obj, ok := item.(map[string]interface{}); ok {
				if t, ok := obj["@type"]; ok {
					appendType(t)
				}
			}
		}
	}

	return types
}

func stripQueryFragment(raw string) string {
	raw = strings.SplitN(raw, "#", 2)[0]
	raw = strings.SplitN(raw, "?", 2)[0]
	return strings.TrimRight(raw, "/")
}

func capStrings(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func contextSnippet(text string, start, end, around int) string {
	from := start - around
	if from < 0 {
		from = 0
	}
	to := end + around
	if to > len(text) {
		to = len(text)
	}
	return strings.TrimSpace(strings.ToValidUTF8(text[from:to], ""))
}
