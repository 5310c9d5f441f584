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

	"gorm.io/gorm"
)

// Default crawl settings applied when a project has no stored config.
const (
	DefaultMaxPages = 10000
	DefaultWorkers  = 10
)

// Config holds per-project crawl settings. One row per project; created
// lazily with defaults on first use and reused by subsequent crawls.
type Config struct {
	ID        uint  `gorm:"primaryKey"`
	ProjectID uint  `gorm:"uniqueIndex;not null"`
	MaxPages  int   `gorm:"not null;default:10000"`
	Workers   int   `gorm:"not null;default:10"`
	CreatedAt int64 `gorm:"autoCreateTime"`
	UpdatedAt int64 `gorm:"autoUpdateTime"`
}

// GetOrCreateConfig returns the crawl config for a project, creating it with
// defaults when none exists yet.
func (s *Store) GetOrCreateConfig(projectID uint) (*Config, error) {
	var config Config
	result := s.db.Where("project_id = ?", projectID).First(&config)

	if result.Error == gorm.ErrRecordNotFound {
		config = Config{
			ProjectID: projectID,
			MaxPages:  DefaultMaxPages,
			Workers:   DefaultWorkers,
		}
		if err := s.db.Create(&config).Error; err != nil {
			return nil, fmt.Errorf("failed to create config: %v", err)
		}
		return &config, nil
	}

	if result.Error != nil {
		return nil, fmt.Errorf("failed to get config: %v", result.Error)
	}
	return &config, nil
}

// UpdateConfig persists changed crawl settings for a project.
func (s *Store) UpdateConfig(config *Config) error {
	if config.ID == 0 {
		return fmt.Errorf("config has no ID")
	}
	if err := s.db.Save(config).Error; err != nil {
		return fmt.Errorf("failed to update config: %v", err)
	}
	return nil
}
