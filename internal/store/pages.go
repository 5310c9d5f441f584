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
	"fmt"

	"github.com/agentberlin/sitesnake/internal/analyzer"
)

// SavePage persists one analyzed page record under its deduplication key.
// The unique (crawl_id, dedup_key) index rejects duplicates; callers that
// already hold the visited set never hit it, so a violation is a real error.
func (s *Store) SavePage(crawlID uint, dedupKey string, rec *analyzer.PageRecord) error {
	page := Page{
		CrawlID:  crawlID,
		DedupKey: dedupKey,
	}
	if err := page.SetRecord(rec); err != nil {
		return fmt.Errorf("failed to serialize page record: %v", err)
	}
	if err := s.db.Create(&page).Error; err != nil {
		return fmt.Errorf("failed to save page: %v", err)
	}
	return nil
}

// GetCrawlPages returns all pages for a crawl in insertion order
func (s *Store) GetCrawlPages(crawlID uint) ([]Page, error) {
	var pages []Page
	result := s.db.Where("crawl_id = ?", crawlID).Order("id ASC").Find(&pages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get pages: %v", result.Error)
	}
	return pages, nil
}

// GetCrawlPageRecords returns the deserialized records for every page of a
// crawl, skipping rows with corrupt JSON.
func (s *Store) GetCrawlPageRecords(crawlID uint) ([]*analyzer.PageRecord, error) {
	pages, err := s.GetCrawlPages(crawlID)
	if err != nil {
		return nil, err
	}
	records := make([]*analyzer.PageRecord, 0, len(pages))
	for i := range pages {
		if rec := pages[i].GetRecord(); rec != nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

// GetCrawlDedupKeys returns the deduplication keys already persisted for a
// crawl, used to preload the visited set when resuming a stopped crawl.
func (s *Store) GetCrawlDedupKeys(crawlID uint) ([]string, error) {
	var keys []string
	result := s.db.Model(&Page{}).Where("crawl_id = ?", crawlID).Pluck("dedup_key", &keys)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get dedup keys: %v", result.Error)
	}
	return keys, nil
}

// CountCrawlPages returns the number of pages saved for a crawl
func (s *Store) CountCrawlPages(crawlID uint) (int, error) {
	var count int64
	result := s.db.Model(&Page{}).Where("crawl_id = ?", crawlID).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count pages: %v", result.Error)
	}
	return int(count), nil
}
