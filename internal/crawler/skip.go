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
	"net/url"
	"strings"
)

// File extensions that are never HTML pages.
var skipExtensions = map[string]bool{
	// Data / API
	".json": true, ".xml": true, ".rss": true, ".atom": true, ".rdf": true,
	// Stylesheets / Scripts
	".css": true, ".js": true, ".mjs": true, ".ts": true, ".map": true,
	// Documents / Archives
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
	".zip": true, ".gz": true, ".tar": true, ".rar": true, ".7z": true, ".bz2": true,
	// Images
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".bmp": true, ".tiff": true, ".avif": true,
	// Fonts
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true, ".otf": true,
	// Media
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".wmv": true,
	".flv": true, ".webm": true, ".ogg": true, ".wav": true,
	// Other
	".exe": true, ".dmg": true, ".apk": true, ".ics": true, ".vcf": true,
	".csv": true, ".txt": true, ".log": true,
}

// URL path prefixes that are known non-HTML endpoints.
var skipPathPrefixes = []string{
	"/wp-json/", "/wp-json", "/feed/", "/feed",
	"/xmlrpc.php", "/wp-admin/",
	"/api/", "/_api/",
}

// shouldSkipURL reports whether a URL points to a non-HTML resource and is
// not worth a request.
func shouldSkipURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	path := strings.ToLower(parsed.Path)

	if dot := strings.LastIndex(path, "."); dot != -1 {
		if skipExtensions[path[dot:]] {
			return true
		}
	}

	for _, prefix := range skipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}
