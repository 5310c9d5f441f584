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
	"encoding/json"

	"github.com/agentberlin/sitesnake/internal/analyzer"
	"github.com/agentberlin/sitesnake/internal/robots"
	"github.com/agentberlin/sitesnake/internal/sitemap"
)

// Project represents a site (domain) that can have multiple crawls
type Project struct {
	ID        uint    `gorm:"primaryKey"`
	URL       string  `gorm:"not null"`             // Normalized start URL for the project
	Domain    string  `gorm:"uniqueIndex;not null"` // Host with www. stripped
	Crawls    []Crawl `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CreatedAt int64   `gorm:"autoCreateTime"`
	UpdatedAt int64   `gorm:"autoUpdateTime"`
}

// Crawl state constants
const (
	CrawlStatePending   = "pending"
	CrawlStateRunning   = "running"
	CrawlStatePaused    = "paused"
	CrawlStateStopped   = "stopped"
	CrawlStateCompleted = "completed"
	CrawlStateFailed    = "failed"
)

// Crawl represents a single crawl session for a project
type Crawl struct {
	ID              uint   `gorm:"primaryKey"`
	ProjectID       uint   `gorm:"not null;index"`
	StartURL        string `gorm:"not null"`
	Domain          string `gorm:"not null"`
	State           string `gorm:"not null;default:'pending'"` // pending, running, paused, stopped, completed, failed
	IgnoreRobots    bool   `gorm:"not null;default:false"`
	PagesCrawled    int    `gorm:"not null;default:0"`
	TotalDiscovered int    `gorm:"not null;default:0"`
	StartedAt       int64  `gorm:"not null"`
	FinishedAt      int64  `gorm:"default:0"`
	Error           string `gorm:"type:text"`

	// robots.txt snapshot taken at crawl start
	RobotsContent string `gorm:"type:text"`
	RobotsStatus  int    `gorm:"default:0"`
	BotAccess     string `gorm:"type:text"` // JSON array of robots.BotAccess

	// Sitemap discovery results
	Sitemaps        string `gorm:"type:text"` // JSON array of sitemap.Descriptor
	SitemapURLCount int    `gorm:"default:0"`

	Pages     []Page   `gorm:"foreignKey:CrawlID;constraint:OnDelete:CASCADE"`
	Project   *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CreatedAt int64    `gorm:"autoCreateTime"`
	UpdatedAt int64    `gorm:"autoUpdateTime"`
}

// GetBotAccess deserializes the BotAccess JSON
func (c *Crawl) GetBotAccess() []robots.BotAccess {
	if c.BotAccess == "" {
		return nil
	}
	var access []robots.BotAccess
	if err := json.Unmarshal([]byte(c.BotAccess), &access); err != nil {
		return nil
	}
	return access
}

// SetBotAccess serializes bot access results to JSON
func (c *Crawl) SetBotAccess(access []robots.BotAccess) error {
	data, err := json.Marshal(access)
	if err != nil {
		return err
	}
	c.BotAccess = string(data)
	return nil
}

// GetSitemaps deserializes the Sitemaps JSON
func (c *Crawl) GetSitemaps() []sitemap.Descriptor {
	if c.Sitemaps == "" {
		return nil
	}
	var descriptors []sitemap.Descriptor
	if err := json.Unmarshal([]byte(c.Sitemaps), &descriptors); err != nil {
		return nil
	}
	return descriptors
}

// SetSitemaps serializes sitemap descriptors to JSON
func (c *Crawl) SetSitemaps(descriptors []sitemap.Descriptor) error {
	data, err := json.Marshal(descriptors)
	if err != nil {
		return err
	}
	c.Sitemaps = string(data)
	return nil
}

// Page represents one analyzed page within a crawl. The full signal set is
// stored as JSON in Record; columns the aggregator and CLI filter on are
// promoted to their own fields.
type Page struct {
	ID       uint   `gorm:"primaryKey"`
	CrawlID  uint   `gorm:"not null;index"`
	URL      string `gorm:"not null"`
	DedupKey string `gorm:"not null"`

	StatusCode     int     `gorm:"not null"`
	ResponseTime   float64 `gorm:"default:0"`
	ContentType    string  `gorm:"type:text"`
	Title          string  `gorm:"type:text"`
	Score          int     `gorm:"default:0"`
	RedirectTarget string  `gorm:"type:text"`

	Record    string `gorm:"type:text"` // JSON analyzer.PageRecord
	CreatedAt int64  `gorm:"autoCreateTime"`
}

// GetRecord deserializes the full page record. Returns nil when the stored
// JSON is missing or corrupt.
func (p *Page) GetRecord() *analyzer.PageRecord {
	if p.Record == "" {
		return nil
	}
	var rec analyzer.PageRecord
	if err := json.Unmarshal([]byte(p.Record), &rec); err != nil {
		return nil
	}
	return &rec
}

// SetRecord serializes the full page record and promotes the filterable
// columns.
func (p *Page) SetRecord(rec *analyzer.PageRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	p.Record = string(data)
	p.URL = rec.URL
	p.StatusCode = rec.StatusCode
	p.ResponseTime = rec.ResponseTime
	p.ContentType = rec.ContentType
	p.Title = rec.Title
	p.Score = rec.Score
	p.RedirectTarget = rec.RedirectTarget
	return nil
}
