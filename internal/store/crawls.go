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
	"time"

	"github.com/agentberlin/sitesnake/internal/robots"
	"github.com/agentberlin/sitesnake/internal/sitemap"
	"gorm.io/gorm"
)

// CreateCrawl creates a new crawl in the pending state; the engine moves it
// to running when it starts. ignoreRobots is kept on the row so a restarted
// crawl keeps the original choice.
func (s *Store) CreateCrawl(projectID uint, startURL string, domain string, ignoreRobots bool) (*Crawl, error) {
	crawl := Crawl{
		ProjectID:    projectID,
		StartURL:     startURL,
		Domain:       domain,
		State:        CrawlStatePending,
		IgnoreRobots: ignoreRobots,
		StartedAt:    time.Now().Unix(),
	}

	if err := s.db.Create(&crawl).Error; err != nil {
		return nil, fmt.Errorf("failed to create crawl: %v", err)
	}

	return &crawl, nil
}

// GetCrawlByID gets a crawl by ID
func (s *Store) GetCrawlByID(id uint) (*Crawl, error) {
	var crawl Crawl
	if err := s.db.First(&crawl, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get crawl: %v", err)
	}
	return &crawl, nil
}

// GetProjectCrawls returns all crawls for a project, newest first
func (s *Store) GetProjectCrawls(projectID uint) ([]Crawl, error) {
	var crawls []Crawl
	result := s.db.Where("project_id = ?", projectID).Order("started_at DESC").Find(&crawls)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get crawls: %v", result.Error)
	}
	return crawls, nil
}

// GetLatestCrawl gets the most recent crawl for a project, nil when the
// project has no crawls yet
func (s *Store) GetLatestCrawl(projectID uint) (*Crawl, error) {
	var crawl Crawl
	result := s.db.Where("project_id = ?", projectID).Order("started_at DESC").First(&crawl)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest crawl: %v", result.Error)
	}
	return &crawl, nil
}

// UpdateCrawlState transitions a crawl to a new state
func (s *Store) UpdateCrawlState(crawlID uint, state string) error {
	return s.db.Model(&Crawl{}).Where("id = ?", crawlID).Update("state", state).Error
}

// UpdateCrawlProgress updates the running counters for a crawl
func (s *Store) UpdateCrawlProgress(crawlID uint, pagesCrawled int, totalDiscovered int) error {
	return s.db.Model(&Crawl{}).Where("id = ?", crawlID).Updates(map[string]interface{}{
		"pages_crawled":    pagesCrawled,
		"total_discovered": totalDiscovered,
	}).Error
}

// FinishCrawl records the terminal state of a crawl. errMsg is only stored
// for failed crawls.
func (s *Store) FinishCrawl(crawlID uint, state string, pagesCrawled int, errMsg string) error {
	return s.db.Model(&Crawl{}).Where("id = ?", crawlID).Updates(map[string]interface{}{
		"state":         state,
		"pages_crawled": pagesCrawled,
		"finished_at":   time.Now().Unix(),
		"error":         errMsg,
	}).Error
}

// SaveRobotsSnapshot stores the robots.txt content and per-bot access
// analysis taken at crawl start
func (s *Store) SaveRobotsSnapshot(crawlID uint, content string, statusCode int, access []robots.BotAccess) error {
	crawl := Crawl{}
	if err := crawl.SetBotAccess(access); err != nil {
		return fmt.Errorf("failed to serialize bot access: %v", err)
	}
	return s.db.Model(&Crawl{}).Where("id = ?", crawlID).Updates(map[string]interface{}{
		"robots_content": content,
		"robots_status":  statusCode,
		"bot_access":     crawl.BotAccess,
	}).Error
}

// SaveSitemapResults stores the sitemap discovery outcome for a crawl
func (s *Store) SaveSitemapResults(crawlID uint, descriptors []sitemap.Descriptor, urlCount int) error {
	crawl := Crawl{}
	if err := crawl.SetSitemaps(descriptors); err != nil {
		return fmt.Errorf("failed to serialize sitemaps: %v", err)
	}
	return s.db.Model(&Crawl{}).Where("id = ?", crawlID).Updates(map[string]interface{}{
		"sitemaps":          crawl.Sitemaps,
		"sitemap_url_count": urlCount,
	}).Error
}

// DeleteCrawl deletes a crawl and all its pages (cascade)
func (s *Store) DeleteCrawl(crawlID uint) error {
	return s.db.Delete(&Crawl{}, crawlID).Error
}
