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

package crawler

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"time"
)

// UserAgent identifies the crawler in every request.
const UserAgent = "Mozilla/5.0 (compatible; SitesnakeBot/1.0; +https://snake.blue)"

const (
	fetchTimeout = 15 * time.Second
	maxRedirects = 10

	// HTML bodies larger than this are truncated before analysis.
	maxBodySize = 10 << 20
)

// RedirectHop is one intermediate 3xx response in a redirect chain.
type RedirectHop struct {
	URL        string
	StatusCode int
	Location   string
}

// FetchResult is the outcome of fetching one URL with redirects resolved.
type FetchResult struct {
	// FinalURL is the URL of the final response exactly as resolved, with
	// any fragment dropped.
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
	// Redirects holds the intermediate 3xx hops, empty when the first
	// response was final.
	Redirects    []RedirectHop
	ResponseTime time.Duration
}

// WasRedirected reports whether the fetch followed at least one redirect.
func (r *FetchResult) WasRedirected() bool {
	return len(r.Redirects) > 0
}

// NewHTTPClient builds the crawler's HTTP client. Redirects are not followed
// by the client itself; Fetch follows them manually so the hop chain can be
// recorded. Certificate errors are ignored: an SEO audit of a site with a
// broken certificate should still produce a report.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: fetchTimeout,
		Transport: &http.Transport{
			TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
			MaxIdleConnsPerHost: 10,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Fetch retrieves a URL, following up to maxRedirects redirects manually so
// every intermediate hop is captured.
func Fetch(ctx context.Context, client *http.Client, rawURL string) (*FetchResult, error) {
	start := time.Now()
	result := &FetchResult{}

	currentURL := rawURL
	for i := 0; i <= maxRedirects; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, currentURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", UserAgent)

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 300 && resp.StatusCode < 400 {
			location := resp.Header.Get("Location")
			if location == "" {
				// 3xx without Location is terminal.
				body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
				resp.Body.Close()
				result.FinalURL = stripFragment(resp.Request.URL.String())
				result.StatusCode = resp.StatusCode
				result.ContentType = resp.Header.Get("Content-Type")
				result.Body = body
				result.ResponseTime = time.Since(start)
				return result, nil
			}

			redirectURL, err := resp.Request.URL.Parse(location)
			if err != nil {
				resp.Body.Close()
				return nil, err
			}

			result.Redirects = append(result.Redirects, RedirectHop{
				URL:        stripFragment(resp.Request.URL.String()),
				StatusCode: resp.StatusCode,
				Location:   redirectURL.String(),
			})
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			resp.Body.Close()

			currentURL = redirectURL.String()
			continue
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		result.FinalURL = stripFragment(resp.Request.URL.String())
		result.StatusCode = resp.StatusCode
		result.ContentType = resp.Header.Get("Content-Type")
		result.Body = body
		result.ResponseTime = time.Since(start)
		return result, nil
	}

	return nil, errors.New("stopped after 10 redirects")
}

func stripFragment(rawURL string) string {
	for i := 0; i < len(rawURL); i++ {
		if rawURL[i] == '#' {
			return rawURL[:i]
		}
	}
	return rawURL
}
