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
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://example.com/page"

func analyzeHTML(t *testing.T, html string) *PageRecord {
	t.Helper()
	return Analyze(pageURL, []byte(html), 200, 100*time.Millisecond)
}

func hasIssue(rec *PageRecord, issueType string) bool {
	for _, issue := range rec.Issues {
		if issue.Type == issueType {
			return true
		}
	}
	return false
}

func pageWith(head, body string) string {
	return "<!DOCTYPE html><html><head>" + head + "</head><body>" + body + "</body></html>"
}

func TestTitleBoundaries(t *testing.T) {
	tests := []struct {
		length    int
		wantIssue string
	}{
		{29, "short_title"},
		{30, ""},
		{60, ""},
		{61, "long_title"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("length_%d", tt.length), func(t *testing.T) {
			title := strings.Repeat("a", tt.length)
			rec := analyzeHTML(t, pageWith("<title>"+title+"</title>", ""))

			assert.Equal(t, tt.length, rec.TitleLength)
			assert.False(t, hasIssue(rec, "missing_title"))
			for _, issueType := range []string{"short_title", "long_title"} {
				if issueType == tt.wantIssue {
					assert.True(t, hasIssue(rec, issueType), "expected %s", issueType)
				} else {
					assert.False(t, hasIssue(rec, issueType), "unexpected %s", issueType)
				}
			}
		})
	}
}

func TestMissingTitle(t *testing.T) {
	rec := analyzeHTML(t, pageWith("", "<p>content</p>"))
	assert.True(t, hasIssue(rec, "missing_title"))
	assert.Equal(t, SeverityCritical, SeverityOf("missing_title"))
}

func TestMetaDescriptionBoundaries(t *testing.T) {
	tests := []struct {
		length    int
		wantIssue string
	}{
		{119, "short_meta_description"},
		{120, ""},
		{160, ""},
		{161, "long_meta_description"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("length_%d", tt.length), func(t *testing.T) {
			desc := strings.Repeat("d", tt.length)
			head := `<meta name="description" content="` + desc + `">`
			rec := analyzeHTML(t, pageWith(head, ""))

			assert.Equal(t, tt.length, rec.MetaDescriptionLength)
			assert.False(t, hasIssue(rec, "missing_meta_description"))
			for _, issueType := range []string{"short_meta_description", "long_meta_description"} {
				if issueType == tt.wantIssue {
					assert.True(t, hasIssue(rec, issueType), "expected %s", issueType)
				} else {
					assert.False(t, hasIssue(rec, issueType), "unexpected %s", issueType)
				}
			}
		})
	}
}

func TestTitleLengthCountsRunes(t *testing.T) {
	// 30 multibyte characters must not trip the short-title check.
	title := strings.Repeat("ä", 30)
	rec := analyzeHTML(t, pageWith("<title>"+title+"</title>", ""))
	assert.Equal(t, 30, rec.TitleLength)
	assert.False(t, hasIssue(rec, "short_title"))
}

func TestHeadings(t *testing.T) {
	t.Run("MissingH1", func(t *testing.T) {
		rec := analyzeHTML(t, pageWith("", "<h2>only</h2>"))
		assert.Equal(t, 0, rec.H1Count)
		assert.True(t, hasIssue(rec, "missing_h1"))
	})

	t.Run("MultipleH1", func(t *testing.T) {
		rec := analyzeHTML(t, pageWith("", "<h1>one</h1><h1>two</h1>"))
		assert.Equal(t, 2, rec.H1Count)
		assert.Equal(t, []string{"one", "two"}, rec.H1Texts)
		assert.True(t, hasIssue(rec, "multiple_h1"))
	})

	t.Run("SingleH1", func(t *testing.T) {
		rec := analyzeHTML(t, pageWith("", "<h1>one</h1><h2>a</h2><h2>b</h2><h3>c</h3>"))
		assert.Equal(t, 1, rec.H1Count)
		assert.Equal(t, 2, rec.H2Count)
		assert.Equal(t, 1, rec.H3Count)
		assert.False(t, hasIssue(rec, "missing_h1"))
		assert.False(t, hasIssue(rec, "multiple_h1"))
	})
}

func TestImages(t *testing.T) {
	body := `<img src="/a.jpg" alt="ok">` +
		`<img src="/b.jpg">` +
		`<img src="/c.jpg" alt="">` +
		`<img data-src="/lazy.jpg">`
	rec := analyzeHTML(t, pageWith("", body))

	assert.Equal(t, 4, rec.TotalImages)
	assert.Equal(t, 2, rec.ImagesWithoutAlt)
	assert.Equal(t, []string{"/b.jpg", "/lazy.jpg"}, rec.ImagesWithoutAltURLs)
	assert.Equal(t, 1, rec.ImagesWithEmptyAlt)
	assert.Equal(t, []string{"/c.jpg"}, rec.ImagesWithEmptyAltURLs)
	assert.True(t, hasIssue(rec, "images_missing_alt"))
	assert.True(t, hasIssue(rec, "images_empty_alt"))
}

func TestLinkClassification(t *testing.T) {
	body := `<a href="/internal">in</a>` +
		`<a href="https://example.com/other">in-absolute</a>` +
		`<a href="https://other.com/x">out</a>` +
		`<a href="/nf" rel="nofollow">nf</a>` +
		`<a href="#anchor">skip</a>` +
		`<a href="mailto:a@b.c">skip</a>`
	rec := analyzeHTML(t, pageWith("", body))

	assert.Equal(t, 3, rec.InternalLinks)
	assert.Equal(t, 1, rec.ExternalLinks)
	assert.Equal(t, 1, rec.NofollowLinks)
	assert.Equal(t, []string{"/nf"}, rec.NofollowInternalLinks)
	assert.True(t, hasIssue(rec, "nofollow_internal"))
}

func TestCanonical(t *testing.T) {
	t.Run("Missing", func(t *testing.T) {
		rec := analyzeHTML(t, pageWith("", ""))
		assert.True(t, hasIssue(rec, "missing_canonical"))
		assert.Contains(t, rec.CanonicalIssueTags, "missing")
	})

	t.Run("External", func(t *testing.T) {
		head := `<link rel="canonical" href="https://other.com/page">`
		rec := analyzeHTML(t, pageWith(head, ""))
		assert.True(t, hasIssue(rec, "canonical_external"))
	})

	t.Run("Relative", func(t *testing.T) {
		head := `<link rel="canonical" href="/page">`
		rec := analyzeHTML(t, pageWith(head, ""))
		assert.True(t, hasIssue(rec, "canonical_relative"))
	})

	t.Run("SelfReferencingWithQueryStripped", func(t *testing.T) {
		head := `<link rel="canonical" href="https://example.com/page?utm=1">`
		rec := analyzeHTML(t, pageWith(head, ""))
		assert.False(t, hasIssue(rec, "canonical_external"))
		assert.NotContains(t, rec.CanonicalIssueTags, "not_self_referencing")
	})
}

func TestRobotsMeta(t *testing.T) {
	head := `<meta name="robots" content="NOINDEX, nofollow">`
	rec := analyzeHTML(t, pageWith(head, ""))
	assert.True(t, rec.IsNoindex)
	assert.True(t, rec.IsNofollowMeta)
	assert.True(t, hasIssue(rec, "noindex"))
	assert.True(t, hasIssue(rec, "nofollow_meta"))
}

func TestWordCountBoundary(t *testing.T) {
	t.Run("299_words", func(t *testing.T) {
		body := "<p>" + strings.TrimSpace(strings.Repeat("word ", 299)) + "</p>"
		rec := analyzeHTML(t, pageWith("", body))
		assert.Equal(t, 299, rec.WordCount)
		assert.True(t, hasIssue(rec, "thin_content"))
	})

	t.Run("300_words", func(t *testing.T) {
		body := "<p>" + strings.TrimSpace(strings.Repeat("word ", 300)) + "</p>"
		rec := analyzeHTML(t, pageWith("", body))
		assert.Equal(t, 300, rec.WordCount)
		assert.False(t, hasIssue(rec, "thin_content"))
	})
}

func TestWordCountSplitsAdjacentElements(t *testing.T) {
	rec := analyzeHTML(t, pageWith("", "<p>alpha</p><p>beta</p>"))
	assert.Equal(t, 2, rec.WordCount)
}

func TestWordCountExcludesScriptAndStyle(t *testing.T) {
	body := `<p>visible text here</p><script>var a = "hidden words everywhere";</script><style>.x{color:red}</style>`
	rec := analyzeHTML(t, pageWith("", body))
	assert.Equal(t, 3, rec.WordCount)
}

func TestLazyLoading(t *testing.T) {
	t.Run("ManyImagesNoLazy", func(t *testing.T) {
		rec := analyzeHTML(t, pageWith("", strings.Repeat(`<img src="/i.jpg" alt="x">`, 6)))
		assert.False(t, rec.HasLazyLoading)
		assert.True(t, hasIssue(rec, "no_lazy_loading"))
	})

	t.Run("FewImagesNoLazy", func(t *testing.T) {
		rec := analyzeHTML(t, pageWith("", strings.Repeat(`<img src="/i.jpg" alt="x">`, 5)))
		assert.False(t, hasIssue(rec, "no_lazy_loading"))
	})

	t.Run("LazyPresent", func(t *testing.T) {
		body := strings.Repeat(`<img src="/i.jpg" alt="x">`, 6) + `<img src="/j.jpg" alt="y" loading="lazy">`
		rec := analyzeHTML(t, pageWith("", body))
		assert.True(t, rec.HasLazyLoading)
		assert.False(t, hasIssue(rec, "no_lazy_loading"))
	})
}

func TestStructuredData(t *testing.T) {
	t.Run("None", func(t *testing.T) {
		rec := analyzeHTML(t, pageWith("", ""))
		assert.False(t, rec.HasSchemaMarkup)
		assert.True(t, hasIssue(rec, "no_schema_markup"))
	})

	t.Run("GraphAndList", func(t *testing.T) {
		head := `<script type="application/ld+json">{"@graph":[{"@type":"Organization"},{"@type":"WebSite"}]}</script>` +
			`<script type="application/ld+json">{"@type":["Article","NewsArticle"]}</script>`
		rec := analyzeHTML(t, pageWith(head, ""))
		assert.True(t, rec.HasSchemaMarkup)
		assert.Equal(t, []string{"Organization", "WebSite", "Article", "NewsArticle"}, rec.SchemaTypes)
	})

	t.Run("InvalidJSONIgnored", func(t *testing.T) {
		head := `<script type="application/ld+json">{broken</script>`
		rec := analyzeHTML(t, pageWith(head, ""))
		assert.False(t, rec.HasSchemaMarkup)
	})
}

func TestPlaceholders(t *testing.T) {
	t.Run("LoremIsCaseInsensitive", func(t *testing.T) {
		rec := analyzeHTML(t, pageWith("", "<p>LOREM IPSUM something</p>"))
		assert.True(t, rec.HasPlaceholders)
		assert.True(t, hasIssue(rec, "placeholder_content"))
	})

	t.Run("TodoIsCaseSensitive", func(t *testing.T) {
		rec := analyzeHTML(t, pageWith("", "<p>TODO: fix this section</p>"))
		assert.True(t, rec.HasPlaceholders)

		// Lowercase "todo:" is an ordinary word, not a dev marker.
		rec = analyzeHTML(t, pageWith("", "<p>todo: groceries</p>"))
		assert.False(t, rec.HasPlaceholders)
	})

	t.Run("FixmeNeedsColonSpace", func(t *testing.T) {
		rec := analyzeHTML(t, pageWith("", "<p>FIXME later</p>"))
		assert.False(t, rec.HasPlaceholders)

		rec = analyzeHTML(t, pageWith("", "<p>FIXME: later</p>"))
		assert.True(t, rec.HasPlaceholders)
	})
}

func TestHreflang(t *testing.T) {
	t.Run("MissingXDefault", func(t *testing.T) {
		head := `<link rel="alternate" hreflang="en" href="https://example.com/page">` +
			`<link rel="alternate" hreflang="de" href="https://example.com/de/page">`
		rec := analyzeHTML(t, pageWith(head, ""))
		assert.True(t, rec.HasHreflang)
		assert.Len(t, rec.HreflangEntries, 2)
		found := false
		for _, msg := range rec.HreflangIssues {
			if strings.Contains(msg, "x-default") {
				found = true
			}
		}
		assert.True(t, found, "expected x-default issue")
	})

	t.Run("NoSelfReference", func(t *testing.T) {
		head := `<link rel="alternate" hreflang="x-default" href="https://example.com/other">`
		rec := analyzeHTML(t, pageWith(head, ""))
		found := false
		for _, msg := range rec.HreflangIssues {
			if strings.Contains(msg, "self-referencing") {
				found = true
			}
		}
		assert.True(t, found, "expected self-referencing issue")
	})

	t.Run("CleanSet", func(t *testing.T) {
		head := `<link rel="alternate" hreflang="x-default" href="https://example.com/page">` +
			`<link rel="alternate" hreflang="en" href="https://example.com/page">`
		rec := analyzeHTML(t, pageWith(head, ""))
		assert.Empty(t, rec.HreflangIssues)
	})
}

func TestOpenGraph(t *testing.T) {
	head := `<meta property="og:title" content="OG Title"><meta property="og:description" content="OG Desc">`
	rec := analyzeHTML(t, pageWith(head, ""))
	assert.Equal(t, "OG Title", rec.OGTitle)
	assert.Equal(t, "OG Desc", rec.OGDescription)
	assert.False(t, hasIssue(rec, "missing_og_title"))
	assert.True(t, hasIssue(rec, "missing_og_image"))
}

func TestViewport(t *testing.T) {
	rec := analyzeHTML(t, pageWith(`<meta name="viewport" content="width=device-width">`, ""))
	assert.True(t, rec.HasViewportMeta)
	assert.False(t, hasIssue(rec, "missing_viewport"))

	rec = analyzeHTML(t, pageWith("", ""))
	assert.True(t, hasIssue(rec, "missing_viewport"))
}

func TestCodeToTextRatio(t *testing.T) {
	t.Run("LowRatio", func(t *testing.T) {
		// Lots of markup, almost no text.
		body := strings.Repeat(`<div class="wrapper container layout grid"></div>`, 50) + "<p>hi</p>"
		rec := analyzeHTML(t, pageWith("", body))
		assert.Less(t, rec.CodeToTextRatio, 10.0)
		assert.True(t, hasIssue(rec, "low_text_ratio"))
	})

	t.Run("SizesRecorded", func(t *testing.T) {
		rec := analyzeHTML(t, pageWith("", "<p>hello world</p>"))
		assert.Equal(t, len(pageWith("", "<p>hello world</p>")), rec.HTMLSize)
		assert.Equal(t, len("hello world"), rec.TextSize)
	})
}

func TestScore(t *testing.T) {
	t.Run("Arithmetic", func(t *testing.T) {
		issues := []Issue{
			{Severity: SeverityCritical}, // -15
			{Severity: SeverityWarning},  // -7
			{Severity: SeverityWarning},  // -7
			{Severity: SeverityInfo},     // -2
		}
		assert.Equal(t, 69, Score(issues))
	})

	t.Run("ClampedAtZero", func(t *testing.T) {
		issues := make([]Issue, 10)
		for i := range issues {
			issues[i] = Issue{Severity: SeverityCritical}
		}
		assert.Equal(t, 0, Score(issues))
	})

	t.Run("NoIssues", func(t *testing.T) {
		assert.Equal(t, 100, Score(nil))
	})
}

func TestAnalyzeDeterministic(t *testing.T) {
	html := pageWith(
		`<title>Deterministic page title for testing!</title><meta name="description" content="x">`,
		`<h1>One</h1><img src="/a.jpg"><a href="/x">x</a><p>some words</p>`,
	)
	first := analyzeHTML(t, html)
	second := analyzeHTML(t, html)
	require.True(t, reflect.DeepEqual(first, second), "Analyze must be deterministic")
}

func TestErrorRecord(t *testing.T) {
	rec := ErrorRecord("https://example.com/missing", 404, 50*time.Millisecond, "text/html", 120)
	assert.Equal(t, 404, rec.StatusCode)
	assert.Equal(t, 0, rec.Score)
	assert.Empty(t, rec.Issues)
	assert.NotNil(t, rec.Issues)
	assert.Equal(t, "", rec.Title)
	assert.Equal(t, 120, rec.ContentLength)
}

func TestAnalyzeEmptyDocument(t *testing.T) {
	rec := Analyze(pageURL, nil, 200, time.Millisecond)
	assert.True(t, hasIssue(rec, "missing_title"))
	assert.True(t, hasIssue(rec, "missing_h1"))
	assert.True(t, hasIssue(rec, "missing_meta_description"))
	assert.Equal(t, 0, rec.WordCount)
}
