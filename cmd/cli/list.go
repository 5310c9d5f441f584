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
	"flag"
	"fmt"
	"time"

	"github.com/agentberlin/sitesnake/internal/app"
)

func runList(args []string) error {
	if len(args) < 1 {
		printListUsage()
		return fmt.Errorf("subcommand required: projects or crawls")
	}

	subcommand := args[0]

	switch subcommand {
	case "projects":
		return runListProjects(args[1:])
	case "crawls":
		return runListCrawls(args[1:])
	case "help", "-h", "--help":
		printListUsage()
		return nil
	default:
		printListUsage()
		return fmt.Errorf("unknown subcommand: %s", subcommand)
	}
}

func printListUsage() {
	fmt.Println(`Usage: sitesnake list <subcommand> [flags]

Subcommands:
  projects    List all projects
  crawls      List crawls for a project

Examples:
  # List all projects
  sitesnake list projects

  # List crawls for a project
  sitesnake list crawls --project-id 1`)
}

func runListProjects(args []string) error {
	fs := flag.NewFlagSet("list projects", flag.ExitOnError)

	var jsonOutput bool
	var dbPath string
	fs.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	fs.StringVar(&dbPath, "db", "", "Database file path (default ~/.sitesnake/sitesnake.db)")

	fs.Usage = func() {
		fmt.Println(`Usage: sitesnake list projects [flags]

List all audited projects.

Flags:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := openStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	projects, err := app.NewApp(st).ListProjects()
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(projects)
	}

	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return nil
	}

	fmt.Printf("%-6s %-30s %s\n", "ID", "DOMAIN", "URL")
	for _, p := range projects {
		fmt.Printf("%-6d %-30s %s\n", p.ID, p.Domain, p.URL)
	}
	return nil
}

func runListCrawls(args []string) error {
	fs := flag.NewFlagSet("list crawls", flag.ExitOnError)

	var projectID uint64
	var jsonOutput bool
	var dbPath string
	fs.Uint64Var(&projectID, "project-id", 0, "Project ID")
	fs.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	fs.StringVar(&dbPath, "db", "", "Database file path (default ~/.sitesnake/sitesnake.db)")

	fs.Usage = func() {
		fmt.Println(`Usage: sitesnake list crawls --project-id <id> [flags]

List all crawls for a project, newest first.

Flags:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if projectID == 0 {
		fs.Usage()
		return fmt.Errorf("--project-id is required")
	}

	st, err := openStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	crawls, err := app.NewApp(st).ListCrawls(uint(projectID))
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(crawls)
	}

	if len(crawls) == 0 {
		fmt.Println("No crawls found.")
		return nil
	}

	fmt.Printf("%-6s %-12s %-8s %s\n", "ID", "STATE", "PAGES", "STARTED")
	for _, c := range crawls {
		started := time.Unix(c.StartedAt, 0).Format("2006-01-02 15:04:05")
		fmt.Printf("%-6d %-12s %-8d %s\n", c.ID, c.State, c.PagesCrawled, started)
	}
	return nil
}
