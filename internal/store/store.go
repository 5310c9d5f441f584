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
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Store represents the database store
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store and initializes the database under
// ~/.sitesnake.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %v", err)
	}

	dbDir := filepath.Join(homeDir, ".sitesnake")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %v", err)
	}

	if info, err := os.Stat(dbDir); err != nil {
		return nil, fmt.Errorf("database directory does not exist after creation: %v", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("database path exists but is not a directory: %s", dbDir)
	}

	dbPath := filepath.Join(dbDir, "sitesnake.db")
	return newStoreWithPath(dbPath)
}

// NewStoreAtPath creates a Store backed by a database at an explicit path,
// creating the parent directory when needed.
func NewStoreAtPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %v", err)
	}
	return newStoreWithPath(dbPath)
}

// NewStoreForTesting creates a store with a custom database path (used for testing)
func NewStoreForTesting(dbPath string) (*Store, error) {
	return newStoreWithPath(dbPath)
}

func newStoreWithPath(dbPath string) (*Store, error) {
	dbDir := filepath.Dir(dbPath)
	if _, err := os.Stat(dbDir); err != nil {
		return nil, fmt.Errorf("database directory does not exist: %s, error: %v", dbDir, err)
	}

	// Configure SQLite with pragmas for better concurrency.
	// WAL mode enables concurrent reads and writes; busy_timeout prevents
	// immediate "database is locked" errors when workers save pages while a
	// summary query runs.
	// foreign_keys must be on for the ON DELETE CASCADE constraints to fire.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_cache_size=1000000000&_foreign_keys=1", dbPath)

	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	if err := database.AutoMigrate(&Project{}, &Config{}, &Crawl{}, &Page{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	// One page record per unique deduplication key per crawl.
	if err := database.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_pages_crawl_dedup ON pages(crawl_id, dedup_key)").Error; err != nil {
		return nil, fmt.Errorf("failed to create unique index: %v", err)
	}

	return &Store{db: database}, nil
}

// DB returns the underlying GORM database instance
func (s *Store) DB() *gorm.DB {
	return s.db
}
