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

// GetOrCreateProject gets or creates a project by domain
func (s *Store) GetOrCreateProject(urlStr string, domain string) (*Project, error) {
	var project Project
	result := s.db.Where("domain = ?", domain).First(&project)

	if result.Error == gorm.ErrRecordNotFound {
		project = Project{
			URL:    urlStr,
			Domain: domain,
		}
		if err := s.db.Create(&project).Error; err != nil {
			return nil, fmt.Errorf("failed to create project: %v", err)
		}
		return &project, nil
	}

	if result.Error != nil {
		return nil, fmt.Errorf("failed to get project: %v", result.Error)
	}

	// Update URL if it has changed (should be the normalized URL)
	if project.URL != urlStr {
		if err := s.db.Model(&project).Update("url", urlStr).Error; err != nil {
			return nil, fmt.Errorf("failed to update project URL: %v", err)
		}
		project.URL = urlStr
	}

	return &project, nil
}

// GetProjectByID gets a project by ID
func (s *Store) GetProjectByID(id uint) (*Project, error) {
	var project Project
	if err := s.db.First(&project, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get project: %v", err)
	}
	return &project, nil
}

// GetProjectByDomain gets a project by domain
func (s *Store) GetProjectByDomain(domain string) (*Project, error) {
	var project Project
	result := s.db.Where("domain = ?", domain).First(&project)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %v", result.Error)
	}
	return &project, nil
}

// GetAllProjects returns all projects ordered by creation time
func (s *Store) GetAllProjects() ([]Project, error) {
	var projects []Project
	if err := s.db.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to get projects: %v", err)
	}
	return projects, nil
}

// DeleteProject deletes a project and all its crawls (cascade)
func (s *Store) DeleteProject(projectID uint) error {
	return s.db.Select("Crawls").Delete(&Project{ID: projectID}).Error
}
