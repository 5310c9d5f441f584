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

package store

import (
	"testing"

	"github.com/agentberlin/sitesnake/internal/analyzer"
)

func savePageRecord(t *testing.T, store *Store, crawlID uint, url string, dedupKey string) {
	t.Helper()
	rec := &analyzer.PageRecord{
		URL:          url,
		StatusCode:   200,
		ResponseTime: 0.125,
		ContentType:  "text/html",
		Title:        "Test Page",
		Score:        85,
	}
	if err := store.SavePage(crawlID, dedupKey, rec); err != nil {
		t.Fatalf("SavePage() failed: %v", err)
	}
}

func TestSavePage(t *testing.T) {
	store := newTestStore(t)
	crawl := createTestCrawl(t, store)

	rec := &analyzer.PageRecord{
		URL:          "https://example.com/about",
		StatusCode:   200,
		ResponseTime: 0.42,
		ContentType:  "text/html; charset=utf-8",
		Title:        "About Us",
		Score:        93,
		WordCount:    512,
		Issues: []analyzer.Issue{
			{Severity: analyzer.SeverityInfo, Type: "no_schema_markup", Message: "No structured data (schema.org) found"},
		},
	}
	if err := store.SavePage(crawl.ID, "example.com/about", rec); err != nil {
		t.Fatalf("SavePage() failed: %v", err)
	}

	pages, err := store.GetCrawlPages(crawl.ID)
	if err != nil {
		t.Fatalf("GetCrawlPages() failed: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("Expected 1 page, got %d", len(pages))
	}

	page := pages[0]
	if page.URL != rec.URL {
		t.Errorf("Expected URL column promoted, got %s", page.URL)
	}
	if page.StatusCode != 200 || page.Score != 93 || page.Title != "About Us" {
		t.Errorf("Promoted columns did not match record: %+v", page)
	}

	loaded := page.GetRecord()
	if loaded == nil {
		t.Fatal("GetRecord() returned nil for valid JSON")
	}
	if loaded.WordCount != 512 {
		t.Errorf("Expected word count 512 in record, got %d", loaded.WordCount)
	}
	if len(loaded.Issues) != 1 || loaded.Issues[0].Type != "no_schema_markup" {
		t.Errorf("Issues did not round-trip: %+v", loaded.Issues)
	}
}

func TestSavePageRejectsDuplicateDedupKey(t *testing.T) {
	store := newTestStore(t)
	crawl := createTestCrawl(t, store)

	savePageRecord(t, store, crawl.ID, "https://example.com/page", "example.com/page")

	rec := &analyzer.PageRecord{URL: "https://www.example.com/page/", StatusCode: 200}
	err := store.SavePage(crawl.ID, "example.com/page", rec)
	if err == nil {
		t.Error("Expected unique index violation for duplicate dedup key, got nil")
	}
}

func TestSamePageAcrossCrawls(t *testing.T) {
	store := newTestStore(t)

	project, err := store.GetOrCreateProject("https://example.com", "example.com")
	if err != nil {
		t.Fatalf("GetOrCreateProject() failed: %v", err)
	}
	first, err := store.CreateCrawl(project.ID, "https://example.com", "example.com", false)
	if err != nil {
		t.Fatalf("CreateCrawl() failed: %v", err)
	}
	second, err := store.CreateCrawl(project.ID, "https://example.com", "example.com", false)
	if err != nil {
		t.Fatalf("CreateCrawl() failed: %v", err)
	}

	// The unique index is scoped per crawl; a re-audit stores its own copy.
	savePageRecord(t, store, first.ID, "https://example.com/page", "example.com/page")
	savePageRecord(t, store, second.ID, "https://example.com/page", "example.com/page")

	for _, crawlID := range []uint{first.ID, second.ID} {
		count, err := store.CountCrawlPages(crawlID)
		if err != nil {
			t.Fatalf("CountCrawlPages() failed: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 page in crawl %d, got %d", crawlID, count)
		}
	}
}

func TestGetCrawlDedupKeys(t *testing.T) {
	store := newTestStore(t)
	crawl := createTestCrawl(t, store)

	savePageRecord(t, store, crawl.ID, "https://example.com/", "example.com")
	savePageRecord(t, store, crawl.ID, "https://example.com/about", "example.com/about")

	keys, err := store.GetCrawlDedupKeys(crawl.ID)
	if err != nil {
		t.Fatalf("GetCrawlDedupKeys() failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("Expected 2 dedup keys, got %d", len(keys))
	}
	seen := map[string]bool{}
	for _, k := range keys {
		seen[k] = true
	}
	if !seen["example.com"] || !seen["example.com/about"] {
		t.Errorf("Unexpected dedup keys: %v", keys)
	}
}

func TestGetCrawlPageRecordsSkipsCorruptRows(t *testing.T) {
	store := newTestStore(t)
	crawl := createTestCrawl(t, store)

	savePageRecord(t, store, crawl.ID, "https://example.com/good", "example.com/good")

	corrupt := Page{
		CrawlID:  crawl.ID,
		URL:      "https://example.com/bad",
		DedupKey: "example.com/bad",
		Record:   "{not json",
	}
	if err := store.DB().Create(&corrupt).Error; err != nil {
		t.Fatalf("Failed to insert corrupt row: %v", err)
	}

	records, err := store.GetCrawlPageRecords(crawl.ID)
	if err != nil {
		t.Fatalf("GetCrawlPageRecords() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected corrupt row to be skipped, got %d records", len(records))
	}
	if records[0].URL != "https://example.com/good" {
		t.Errorf("Unexpected surviving record: %+v", records[0])
	}
}
