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

import "sync"

// Registry tracks the engines of currently active crawls so pause, resume
// and stop requests can reach them.
type Registry struct {
	mu      sync.Mutex
	engines map[uint]*Engine
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{engines: map[uint]*Engine{}}
}

// Add registers an engine under its crawl ID.
func (r *Registry) Add(e *Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[e.CrawlID] = e
}

// Remove unregisters the engine for a crawl ID.
func (r *Registry) Remove(crawlID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.engines, crawlID)
}

// Get returns the active engine for a crawl ID, nil when the crawl is not
// running in this process.
func (r *Registry) Get(crawlID uint) *Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engines[crawlID]
}

// Active returns the crawl IDs with running engines.
func (r *Registry) Active() []uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint, 0, len(r.engines))
	for id := range r.engines {
		ids = append(ids, id)
	}
	return ids
}
