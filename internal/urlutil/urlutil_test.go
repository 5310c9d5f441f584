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

package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStartURL(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantURL     string
		wantHost    string
		shouldError bool
	}{
		{
			name:     "HTTPS URL",
			input:    "https://example.com",
			wantURL:  "https://example.com",
			wantHost: "example.com",
		},
		{
			name:     "HTTP URL kept",
			input:    "http://example.com",
			wantURL:  "http://example.com",
			wantHost: "example.com",
		},
		{
			name:     "Missing scheme defaults to https",
			input:    "example.com",
			wantURL:  "https://example.com",
			wantHost: "example.com",
		},
		{
			name:     "Trailing slash stripped",
			input:    "https://example.com/",
			wantURL:  "https://example.com",
			wantHost: "example.com",
		},
		{
			name:     "Path preserved",
			input:    "https://example.com/docs/",
			wantURL:  "https://example.com/docs",
			wantHost: "example.com",
		},
		{
			name:     "Host lowercased",
			input:    "https://EXAMPLE.com/About",
			wantURL:  "https://example.com/About",
			wantHost: "example.com",
		},
		{
			name:     "Port preserved",
			input:    "https://example.com:8080",
			wantURL:  "https://example.com:8080",
			wantHost: "example.com:8080",
		},
		{
			name:        "Empty input",
			input:       "  ",
			shouldError: true,
		},
		{
			name:        "No hostname",
			input:       "https:///path",
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotURL, gotHost, err := NormalizeStartURL(tt.input)
			if tt.shouldError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, gotURL)
			assert.Equal(t, tt.wantHost, gotHost)
		})
	}
}

func TestDedupKey(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		same bool
	}{
		{"www vs bare host", "https://www.example.com/page", "https://example.com/page", true},
		{"trailing slash", "https://example.com/page/", "https://example.com/page", true},
		{"query dropped", "https://example.com/page?utm=1", "https://example.com/page", true},
		{"fragment dropped", "https://example.com/page#section", "https://example.com/page", true},
		{"host case", "https://EXAMPLE.com/page", "https://example.com/page", true},
		{"different path case", "https://example.com/Page", "https://example.com/page", false},
		{"different scheme", "http://example.com/page", "https://example.com/page", false},
		{"different page", "https://example.com/a", "https://example.com/b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyA, err := DedupKey(tt.a)
			require.NoError(t, err)
			keyB, err := DedupKey(tt.b)
			require.NoError(t, err)
			if tt.same {
				assert.Equal(t, keyA, keyB)
			} else {
				assert.NotEqual(t, keyA, keyB)
			}
		})
	}
}

func TestDedupKeyIdempotent(t *testing.T) {
	inputs := []string{
		"https://www.example.com/page/",
		"https://example.com/a?q=1#frag",
		"https://example.com",
	}
	for _, input := range inputs {
		key, err := DedupKey(input)
		require.NoError(t, err)
		again, err := DedupKey(key)
		require.NoError(t, err)
		assert.Equal(t, key, again, "DedupKey must be idempotent for %q", input)
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		base string
		ref  string
		want string
	}{
		{"relative path", "https://example.com/docs/intro", "../about", "https://example.com/about"},
		{"root relative", "https://example.com/docs/", "/contact", "https://example.com/contact"},
		{"absolute", "https://example.com/", "https://other.com/page", "https://other.com/page"},
		{"query stripped", "https://example.com/", "/page?x=1", "https://example.com/page"},
		{"fragment stripped", "https://example.com/", "/page#top", "https://example.com/page"},
		{"no base", "", "https://example.com/page", "https://example.com/page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonical(tt.base, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeHost(t *testing.T) {
	assert.Equal(t, "example.com", NormalizeHost("www.Example.COM"))
	assert.Equal(t, "example.com:8080", NormalizeHost("WWW.example.com:8080"))
	assert.Equal(t, "sub.example.com", NormalizeHost("sub.example.com"))
}
