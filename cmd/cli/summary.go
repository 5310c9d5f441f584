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

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/agentberlin/sitesnake/internal/app"
)

func runSummary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)

	var crawlID uint64
	var dbPath string
	fs.Uint64Var(&crawlID, "crawl-id", 0, "Crawl ID to summarize")
	fs.StringVar(&dbPath, "db", "", "Database file path (default ~/.sitesnake/sitesnake.db)")

	fs.Usage = func() {
		fmt.Println(`Usage: sitesnake summary --crawl-id <id>

Print the aggregated SEO report for a crawl as JSON.

Flags:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if crawlID == 0 {
		fs.Usage()
		return fmt.Errorf("--crawl-id is required")
	}

	st, err := openStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	summary, err := app.NewApp(st).CrawlSummary(uint(crawlID))
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
