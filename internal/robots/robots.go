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

// Package robots fetches and evaluates a site's robots.txt.
//
// A Policy answers two different questions. Allowed decides whether our own
// crawler may fetch a URL, evaluated with the robotstxt matcher (longest-match
// rules, Allow/Disallow precedence). AnalyzeBotAccess reports, per well-known
// bot, whether the site blocks it; that needs the raw per-agent rule groups,
// which the matcher does not expose, so the policy also keeps its own parse of
// the file.
package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/temoto/robotstxt"
)

// CrawlerAgent is the product token robots.txt rules are matched against for
// our own crawler.
const CrawlerAgent = "SitesnakeBot"

const fetchTimeout = 10 * time.Second

// BotAccess is the robots.txt verdict for one well-known bot.
type BotAccess struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Status   string   `json:"status"` // allowed, partially_blocked, blocked
	Disallow []string `json:"disallow"`
	Allow    []string `json:"allow"`
}

type knownBot struct {
	name     string
	agents   []string
	category string
}

// knownBots is the catalogue checked by AnalyzeBotAccess: search engines,
// social preview fetchers, AI/LLM crawlers and SEO tools.
var knownBots = []knownBot{
	{"Googlebot", []string{"Googlebot"}, "Search Engine"},
	{"Googlebot-Image", []string{"Googlebot-Image"}, "Search Engine"},
	{"Googlebot-News", []string{"Googlebot-News"}, "Search Engine"},
	{"Googlebot-Video", []string{"Googlebot-Video"}, "Search Engine"},
	{"Google-InspectionTool", []string{"Google-InspectionTool"}, "Search Engine"},
	{"Bingbot", []string{"bingbot", "msnbot"}, "Search Engine"},
	{"Yandex", []string{"YandexBot", "Yandex"}, "Search Engine"},
	{"Baiduspider", []string{"Baiduspider"}, "Search Engine"},
	{"DuckDuckBot", []string{"DuckDuckBot"}, "Search Engine"},
	{"Yahoo! Slurp", []string{"Slurp"}, "Search Engine"},
	{"Applebot", []string{"Applebot"}, "Search Engine"},

	{"Twitterbot", []string{"Twitterbot"}, "Social Media"},
	{"facebookexternalhit", []string{"facebookexternalhit"}, "Social Media"},
	{"LinkedInBot", []string{"LinkedInBot"}, "Social Media"},

	{"GPTBot (OpenAI)", []string{"GPTBot"}, "AI / LLM"},
	{"ChatGPT-User", []string{"ChatGPT-User"}, "AI / LLM"},
	{"OAI-SearchBot", []string{"OAI-SearchBot"}, "AI / LLM"},
	{"ClaudeBot (Anthropic)", []string{"ClaudeBot", "anthropic-ai", "Claude-Web"}, "AI / LLM"},
	{"Google-Extended", []string{"Google-Extended"}, "AI / LLM"},
	{"Bytespider (TikTok)", []string{"Bytespider"}, "AI / LLM"},
	{"CCBot (Common Crawl)", []string{"CCBot"}, "AI / LLM"},
	{"PerplexityBot", []string{"PerplexityBot"}, "AI / LLM"},
	{"Cohere-ai", []string{"cohere-ai"}, "AI / LLM"},
	{"Meta-ExternalAgent", []string{"Meta-ExternalAgent"}, "AI / LLM"},
	{"Amazonbot", []string{"Amazonbot"}, "AI / LLM"},
	{"Diffbot", []string{"Diffbot"}, "AI / LLM"},
	{"Omgilibot", []string{"Omgilibot"}, "AI / LLM"},

	{"AhrefsBot", []string{"AhrefsBot"}, "SEO Tool"},
	{"SemrushBot", []string{"SemrushBot"}, "SEO Tool"},
	{"DotBot (Moz)", []string{"DotBot", "dotbot"}, "SEO Tool"},
	{"MJ12bot (Majestic)", []string{"MJ12bot"}, "SEO Tool"},
	{"Screaming Frog", []string{"Screaming Frog SEO Spider"}, "SEO Tool"},
}

// agentRules is one user-agent group's raw directives in file order.
type agentRules struct {
	allow    []string
	disallow []string
}

// Policy is the parsed robots.txt state for one site.
type Policy struct {
	// URL is the robots.txt URL that was fetched.
	URL string
	// Content is the raw file body, empty when the fetch failed or the
	// server returned a non-200.
	Content string
	// StatusCode is the HTTP status of the fetch, 0 on network error.
	StatusCode int

	data     *robotstxt.RobotsData
	group    *robotstxt.Group
	groups   map[string]*agentRules
	sitemaps []string
}

// Fetch retrieves and parses /robots.txt for the site. A missing file, a
// non-200 status or a network error all yield an allow-everything policy;
// robots problems never abort a crawl.
func Fetch(ctx context.Context, client *http.Client, baseURL string) *Policy {
	p := &Policy{groups: map[string]*agentRules{}}

	base, err := url.Parse(baseURL)
	if err != nil {
		return p
	}
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"}).String()
	p.URL = robotsURL

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return p
	}
	resp, err := client.Do(req)
	if err != nil {
		return p
	}
	defer resp.Body.Close()

	p.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		return p
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return p
	}

	p.Content = string(body)
	p.parse(p.Content)

	if data, err := robotstxt.FromBytes(body); err == nil {
		p.data = data
		p.group = data.FindGroup(CrawlerAgent)
	}
	return p
}

// Parse builds a policy directly from robots.txt content, used when the file
// is already in hand (resuming a crawl with a stored snapshot).
func Parse(content string) *Policy {
	p := &Policy{Content: content, StatusCode: http.StatusOK, groups: map[string]*agentRules{}}
	p.parse(content)
	if data, err := robotstxt.FromBytes([]byte(content)); err == nil {
		p.data = data
		p.group = data.FindGroup(CrawlerAgent)
	}
	return p
}

// Allowed reports whether our crawler may fetch the URL.
func (p *Policy) Allowed(rawURL string) bool {
	if p == nil || p.group == nil {
		return true
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}
	return p.group.Test(path)
}

// Sitemaps returns the Sitemap: directive values in file order.
func (p *Policy) Sitemaps() []string {
	if p == nil {
		return nil
	}
	return p.sitemaps
}

// AnalyzeBotAccess evaluates every known bot against the parsed rule groups.
// A bot's own group wins over the wildcard group; with neither present the
// bot is allowed.
func (p *Policy) AnalyzeBotAccess() []BotAccess {
	results := make([]BotAccess, 0, len(knownBots))

	for _, bot := range knownBots {
		var rules *agentRules
		for _, agent := range bot.agents {
			if r, ok := p.groups[strings.ToLower(agent)]; ok {
				rules = r
				break
			}
		}
		if rules == nil {
			rules = p.groups["*"]
		}

		access := BotAccess{
			Name:     bot.name,
			Category: bot.category,
			Status:   "allowed",
			Disallow: []string{},
			Allow:    []string{},
		}
		if rules != nil {
			access.Disallow = append(access.Disallow, rules.disallow...)
			access.Allow = append(access.Allow, rules.allow...)
			access.Status = accessStatus(rules)
		}
		results = append(results, access)
	}

	return results
}

func accessStatus(rules *agentRules) string {
	switch {
	case len(rules.disallow) == 1 && rules.disallow[0] == "/" && len(rules.allow) == 0:
		return "blocked"
	case len(rules.disallow) > 0:
		return "partially_blocked"
	default:
		return "allowed"
	}
}

// parse extracts per-agent rule groups and sitemap directives. Consecutive
// User-agent lines share the directives that follow them.
func (p *Policy) parse(content string) {
	var currentAgents []string
	lastWasAgent := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		// Strip a trailing inline comment.
		if i := strings.Index(value, " #"); i >= 0 {
			value = strings.TrimSpace(value[:i])
		}

		switch key {
		case "user-agent":
			if !lastWasAgent {
				currentAgents = nil
			}
			currentAgents = append(currentAgents, value)
			agentKey := strings.ToLower(value)
			if _, ok := p.groups[agentKey]; !ok {
				p.groups[agentKey] = &agentRules{}
			}
			lastWasAgent = true
		case "disallow":
			for _, agent := range currentAgents {
				rules := p.rulesFor(agent)
				if value != "" {
					rules.disallow = append(rules.disallow, value)
				}
			}
			lastWasAgent = false
		case "allow":
			for _, agent := range currentAgents {
				rules := p.rulesFor(agent)
				if value != "" {
					rules.allow = append(rules.allow, value)
				}
			}
			lastWasAgent = false
		case "sitemap":
			if value != "" {
				p.sitemaps = append(p.sitemaps, value)
			}
			lastWasAgent = false
		default:
			lastWasAgent = false
		}
	}
}

func (p *Policy) rulesFor(agent string) *agentRules {
	agentKey := strings.ToLower(agent)
	rules, ok := p.groups[agentKey]
	if !ok {
		rules = &agentRules{}
		p.groups[agentKey] = rules
	}
	return rules
}

// String summarizes the policy for logs.
func (p *Policy) String() string {
	if p == nil || p.Content == "" {
		return "robots.txt: none"
	}
	return fmt.Sprintf("robots.txt: %d bytes, %d agent groups, %d sitemaps",
		len(p.Content), len(p.groups), len(p.sitemaps))
}
