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

// Severity classifies how strongly an issue affects a page's SEO health.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Issue is a single finding emitted by one extractor against one page.
type Issue struct {
	Severity Severity `json:"severity"`
	Type     string   `json:"type"`
	Message  string   `json:"message"`
}

// severityByType is the fixed issue taxonomy. Every issue type the analyzer
// can emit maps to exactly one severity; the aggregator uses the same map so
// per-page scoring and site-wide grouping never disagree.
var severityByType = map[string]Severity{
	"missing_title":            SeverityCritical,
	"missing_meta_description": SeverityCritical,
	"missing_h1":               SeverityCritical,
	"missing_viewport":         SeverityCritical,
	"placeholder_content":      SeverityCritical,

	"short_title":            SeverityWarning,
	"long_title":             SeverityWarning,
	"short_meta_description": SeverityWarning,
	"long_meta_description":  SeverityWarning,
	"missing_canonical":      SeverityWarning,
	"canonical_external":     SeverityWarning,
	"noindex":                SeverityWarning,
	"nofollow_meta":          SeverityWarning,
	"multiple_h1":            SeverityWarning,
	"images_missing_alt":     SeverityWarning,
	"images_empty_alt":       SeverityWarning,
	"role_img_missing_label": SeverityWarning,
	"nofollow_internal":      SeverityWarning,
	"thin_content":           SeverityWarning,
	"hreflang_issue":         SeverityWarning,
	"low_text_ratio":         SeverityWarning,

	"canonical_relative": SeverityInfo,
	"svg_missing_title":  SeverityInfo,
	"no_schema_markup":   SeverityInfo,
	"missing_og_title":   SeverityInfo,
	"missing_og_image":   SeverityInfo,
	"no_lazy_loading":    SeverityInfo,
	"high_text_ratio":    SeverityInfo,
}

// SeverityOf returns the severity for an issue type identifier. Unknown
// identifiers (for example from records saved by a newer analyzer) default
// to info.
func SeverityOf(issueType string) Severity {
	if sev, ok := severityByType[issueType]; ok {
		return sev
	}
	return SeverityInfo
}

// SeverityRank orders severities for sorting: critical < warning < info.
func SeverityRank(sev Severity) int {
	switch sev {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	}
	return 3
}

// Score penalties per issue severity.
const (
	penaltyCritical = 15
	penaltyWarning  = 7
	penaltyInfo     = 2
)

// Score derives the 0-100 page score from a list of issues. Starts at 100 and
// subtracts a fixed penalty per issue, clamped to [0, 100].
func Score(issues []Issue) int {
	score := 100
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityCritical:
			score -= penaltyCritical
		case SeverityWarning:
			score -= penaltyWarning
		case SeverityInfo:
			score -= penaltyInfo
		}
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
