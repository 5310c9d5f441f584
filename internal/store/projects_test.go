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
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := newStoreWithPath(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestGetOrCreateProject(t *testing.T) {
	store := newTestStore(t)

	t.Run("CreatesNewProject", func(t *testing.T) {
		project, err := store.GetOrCreateProject("https://example.com", "example.com")
		if err != nil {
			t.Fatalf("GetOrCreateProject() failed: %v", err)
		}
		if project.ID == 0 {
			t.Error("Expected project to have an ID after creation")
		}
		if project.Domain != "example.com" {
			t.Errorf("Expected domain example.com, got %s", project.Domain)
		}
	})

	t.Run("ReturnsExistingProject", func(t *testing.T) {
		first, err := store.GetOrCreateProject("https://test.com", "test.com")
		if err != nil {
			t.Fatalf("First GetOrCreateProject() failed: %v", err)
		}
		second, err := store.GetOrCreateProject("https://test.com", "test.com")
		if err != nil {
			t.Fatalf("Second GetOrCreateProject() failed: %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("Expected same project ID, got %d and %d", first.ID, second.ID)
		}
	})

	t.Run("UpdatesURLOnChange", func(t *testing.T) {
		_, err := store.GetOrCreateProject("http://shop.com", "shop.com")
		if err != nil {
			t.Fatalf("GetOrCreateProject() failed: %v", err)
		}
		updated, err := store.GetOrCreateProject("https://shop.com", "shop.com")
		if err != nil {
			t.Fatalf("GetOrCreateProject() failed: %v", err)
		}
		if updated.URL != "https://shop.com" {
			t.Errorf("Expected URL to be updated to https://shop.com, got %s", updated.URL)
		}
	})
}

func TestGetProjectByDomain(t *testing.T) {
	store := newTestStore(t)

	created, err := store.GetOrCreateProject("https://example.com", "example.com")
	if err != nil {
		t.Fatalf("GetOrCreateProject() failed: %v", err)
	}

	t.Run("Found", func(t *testing.T) {
		project, err := store.GetProjectByDomain("example.com")
		if err != nil {
			t.Fatalf("GetProjectByDomain() failed: %v", err)
		}
		if project == nil {
			t.Fatal("Expected project, got nil")
		}
		if project.ID != created.ID {
			t.Errorf("Expected project ID %d, got %d", created.ID, project.ID)
		}
	})

	t.Run("NotFoundReturnsNil", func(t *testing.T) {
		project, err := store.GetProjectByDomain("nowhere.com")
		if err != nil {
			t.Fatalf("GetProjectByDomain() failed: %v", err)
		}
		if project != nil {
			t.Errorf("Expected nil for unknown domain, got project %d", project.ID)
		}
	})
}

func TestDeleteProjectCascadesToCrawls(t *testing.T) {
	store := newTestStore(t)

	project, err := store.GetOrCreateProject("https://example.com", "example.com")
	if err != nil {
		t.Fatalf("GetOrCreateProject() failed: %v", err)
	}

	crawl, err := store.CreateCrawl(project.ID, "https://example.com", "example.com", false)
	if err != nil {
		t.Fatalf("CreateCrawl() failed: %v", err)
	}

	if err := store.DeleteProject(project.ID); err != nil {
		t.Fatalf("DeleteProject() failed: %v", err)
	}

	projects, err := store.GetAllProjects()
	if err != nil {
		t.Fatalf("GetAllProjects() failed: %v", err)
	}
	for _, p := range projects {
		if p.ID == project.ID {
			t.Errorf("Project %d should have been deleted but still exists", project.ID)
		}
	}

	crawls, err := store.GetProjectCrawls(project.ID)
	if err != nil {
		t.Fatalf("GetProjectCrawls() failed: %v", err)
	}
	for _, c := range crawls {
		if c.ID == crawl.ID {
			t.Errorf("Crawl %d should have been deleted with its project", crawl.ID)
		}
	}
}
