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

// Package sitemap discovers crawl seed URLs from a site's XML sitemaps.
//
// Discovery probes a catalogue of conventional sitemap locations, follows any
// Sitemap: directives handed over from robots.txt, and expands sitemap
// indexes one level deep. Every fetched sitemap is recorded as a Descriptor
// so the crawl report can show what was found, of what type, and how many
// URLs each contributed.
package sitemap

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
)

// Conventional sitemap locations, probed in order.
var defaultPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemaps.xml",
	"/sitemap/sitemap.xml",
	"/wp-sitemap.xml",
	"/sitemap-index.xml",
	"/post-sitemap.xml",
	"/page-sitemap.xml",
	"/news-sitemap.xml",
	"/video-sitemap.xml",
	"/image-sitemap.xml",
}

const (
	fetchTimeout = 10 * time.Second

	// A sitemap index is expanded at most this many children deep; indexes on
	// large sites can reference hundreds of sub-sitemaps.
	maxIndexChildren = 20
)

// Descriptor records one sitemap that discovery touched.
type Descriptor struct {
	URL       string `json:"url"`
	Type      string `json:"type"` // sitemap_index, urlset, video_sitemap, image_sitemap, news_sitemap, sub_sitemap, unknown
	Status    string `json:"status"`
	URLsCount int    `json:"urls_count"`
}

// Discoverer accumulates URLs and sitemap descriptors for one site.
type Discoverer struct {
	client  *http.Client
	baseURL string

	urls  []string
	seen  map[string]bool
	found []Descriptor
}

// NewDiscoverer returns a discoverer for the site at baseURL using the given
// HTTP client.
func NewDiscoverer(client *http.Client, baseURL string) *Discoverer {
	return &Discoverer{
		client:  client,
		baseURL: baseURL,
		seen:    map[string]bool{},
	}
}

// Discover probes the default sitemap locations plus any robots.txt Sitemap:
// directives and returns every unique URL found. Failures are silent; a site
// without sitemaps simply contributes no seeds.
func (d *Discoverer) Discover(ctx context.Context, robotsSitemaps []string) []string {
	for _, path := range defaultPaths {
		sitemapURL, err := resolve(d.baseURL, path)
		if err != nil {
			continue
		}
		d.tryFetch(ctx, sitemapURL)
	}

	for _, sitemapURL := range robotsSitemaps {
		if d.alreadyFound(sitemapURL) {
			continue
		}
		d.tryFetch(ctx, sitemapURL)
	}

	return d.urls
}

// Found returns descriptors for every sitemap touched during discovery.
func (d *Discoverer) Found() []Descriptor {
	return d.found
}

func (d *Discoverer) alreadyFound(sitemapURL string) bool {
	for _, desc := range d.found {
		if desc.URL == sitemapURL {
			return true
		}
	}
	return false
}

// tryFetch fetches one candidate location and, if it looks like XML, parses
// it and records a descriptor.
func (d *Discoverer) tryFetch(ctx context.Context, sitemapURL string) {
	body, resp, err := d.get(ctx, sitemapURL)
	if err != nil || resp.StatusCode != http.StatusOK {
		return
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, "xml") && !bytes.HasPrefix(bytes.TrimSpace(body), []byte("<?xml")) {
		return
	}

	smType := detectType(body)
	countBefore := len(d.urls)
	d.parse(ctx, body)
	d.found = append(d.found, Descriptor{
		URL:       sitemapURL,
		Type:      smType,
		Status:    "found",
		URLsCount: len(d.urls) - countBefore,
	})
	log.Printf("Sitemap found: %s (%s)", sitemapURL, smType)
}

// parse handles both sitemap indexes and urlsets. Indexes are expanded one
// level: each child sitemap is fetched and its urlset parsed, but a child
// that is itself an index is not expanded further.
func (d *Discoverer) parse(ctx context.Context, body []byte) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return
	}

	if xmlquery.FindOne(doc, "//sitemapindex") != nil {
		children := xmlquery.Find(doc, "//sitemap/loc")
		if len(children) > maxIndexChildren {
			children = children[:maxIndexChildren]
		}
		for _, loc := range children {
			childURL := strings.TrimSpace(loc.InnerText())
			if childURL == "" {
				continue
			}
			childBody, resp, err := d.get(ctx, childURL)
			if err != nil || resp.StatusCode != http.StatusOK {
				d.found = append(d.found, Descriptor{
					URL: childURL, Type: "sub_sitemap", Status: "error",
				})
				continue
			}
			countBefore := len(d.urls)
			d.parseURLSet(childBody)
			d.found = append(d.found, Descriptor{
				URL:       childURL,
				Type:      detectType(childBody),
				Status:    "found",
				URLsCount: len(d.urls) - countBefore,
			})
		}
	}

	if xmlquery.FindOne(doc, "//urlset") != nil {
		d.parseURLSet(body)
	}
}

func (d *Discoverer) parseURLSet(body []byte) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return
	}
	for _, loc := range xmlquery.Find(doc, "//url/loc") {
		u := strings.TrimSpace(loc.InnerText())
		if u != "" && !d.seen[u] {
			d.seen[u] = true
			d.urls = append(d.urls, u)
		}
	}
}

func (d *Discoverer) get(ctx context.Context, rawURL string) ([]byte, *http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, err
	}
	return body, resp, nil
}

// detectType classifies sitemap content by its root and extension markers.
func detectType(body []byte) string {
	content := string(body)
	if strings.Contains(content, "<sitemapindex") {
		return "sitemap_index"
	}
	if strings.Contains(content, "<urlset") {
		switch {
		case strings.Contains(content, "<video:"):
			return "video_sitemap"
		case strings.Contains(content, "<image:"):
			return "image_sitemap"
		case strings.Contains(content, "<news:"):
			return "news_sitemap"
		}
		return "urlset"
	}
	return "unknown"
}

func resolve(base, path string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	return parsed.ResolveReference(ref).String(), nil
}
