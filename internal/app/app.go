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

// Package app is the application root: it owns the store and the registry of
// active crawl engines, and exposes the operations a CLI or API surface
// calls.
package app

import (
	"github.com/agentberlin/sitesnake/internal/crawler"
	"github.com/agentberlin/sitesnake/internal/store"
)

// App represents the core application logic
type App struct {
	store    *store.Store
	registry *crawler.Registry
}

// NewApp creates a new App instance with dependencies injected
func NewApp(st *store.Store) *App {
	return &App{
		store:    st,
		registry: crawler.NewRegistry(),
	}
}

// Store returns the underlying store, used by read-only consumers like the
// CLI's listing commands.
func (a *App) Store() *store.Store {
	return a.store
}
