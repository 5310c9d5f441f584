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

// Sitesnake CLI
//
// Command-line interface for the Sitesnake SEO auditor. Crawls a site,
// stores per-page SEO analysis in a local database, and prints site-wide
// summaries.
//
// Usage:
//
//	sitesnake <command> [flags]
//
// Commands:
//
//	crawl     Crawl a site and analyze every page
//	summary   Print the aggregated report for a crawl
//	list      List projects or crawls
//	export    Export crawl results to CSV or JSON files
//	version   Show version information
package main

import (
	"fmt"
	"os"

	"github.com/agentberlin/sitesnake/internal/store"
)

const version = "1.0.0"

// openStore opens the default database, or the one at dbPath when set.
func openStore(dbPath string) (*store.Store, error) {
	if dbPath != "" {
		return store.NewStoreAtPath(dbPath)
	}
	return store.NewStore()
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "crawl":
		if err := runCrawl(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "summary":
		if err := runSummary(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "list":
		if err := runList(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "export":
		if err := runExport(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version", "-v", "--version":
		fmt.Printf("Sitesnake CLI %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Sitesnake CLI - Site-wide SEO auditor

Usage:
  sitesnake <command> [flags]

Commands:
  crawl     Crawl a site and analyze every page
  summary   Print the aggregated report for a crawl
  list      List projects or crawls
  export    Export crawl results to CSV or JSON files
  version   Show version information
  help      Show this help message

Examples:
  # Audit a website
  sitesnake crawl https://example.com

  # Audit while ignoring robots.txt restrictions
  sitesnake crawl https://example.com --ignore-robots

  # Print the report for a crawl
  sitesnake summary --crawl-id 1

  # List all projects
  sitesnake list projects

  # List crawls for a project
  sitesnake list crawls --project-id 1

Use "sitesnake <command> --help" for more information about a command.`)
}
