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

// Package urlutil provides URL canonicalization for the crawler.
//
// Every URL has two forms: the canonical form, which is what the server
// returned and is preserved verbatim for display, and the deduplication key,
// a lossy normalization used to decide whether two URLs are the same logical
// page. Keys lowercase the scheme and host, strip a leading "www.", drop the
// query and fragment, and trim a trailing slash from the path.
package urlutil

import (
	"fmt"
	"net/url"
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

// Lenient WHATWG parser so real-world URLs (unencoded spaces, stray percent
// signs) survive parsing the same way browsers treat them.
var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

// Canonical resolves ref against base and returns the absolute URL with the
// query and fragment stripped. An empty base parses ref as an absolute URL.
func Canonical(base, ref string) (string, error) {
	var (
		u   *whatwgUrl.Url
		err error
	)
	if base == "" {
		u, err = urlParser.Parse(ref)
	} else {
		u, err = urlParser.ParseRef(base, ref)
	}
	if err != nil {
		return "", fmt.Errorf("unparseable URL %q: %v", ref, err)
	}

	parsed, err := url.Parse(u.Href(true))
	if err != nil {
		return "", fmt.Errorf("unparseable URL %q: %v", ref, err)
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String(), nil
}

// DedupKey returns the lossy deduplication form of a URL. Two URLs with the
// same key are treated as the same logical page.
func DedupKey(raw string) (string, error) {
	u, err := urlParser.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("unparseable URL %q: %v", raw, err)
	}

	parsed, err := url.Parse(u.Href(true))
	if err != nil {
		return "", fmt.Errorf("unparseable URL %q: %v", raw, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	host := NormalizeHost(parsed.Host)
	path := strings.TrimRight(parsed.Path, "/")

	return scheme + "://" + host + path, nil
}

// NormalizeHost lowercases a host and strips a leading "www." so
// www.example.com and example.com compare equal. The port is preserved.
func NormalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// NormalizeStartURL validates and normalizes a user-supplied starting URL.
// A missing scheme defaults to https. Returns the normalized URL (no trailing
// slash) and the lowercased host, including any non-standard port.
func NormalizeStartURL(input string) (string, string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "", fmt.Errorf("empty URL")
	}

	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		input = "https://" + input
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL: %v", err)
	}
	if parsed.Hostname() == "" {
		return "", "", fmt.Errorf("no hostname in URL")
	}

	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	normalized := strings.TrimSuffix(parsed.String(), "/")

	return normalized, parsed.Host, nil
}
