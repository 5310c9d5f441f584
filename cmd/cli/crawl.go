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
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentberlin/sitesnake/internal/app"
	"github.com/agentberlin/sitesnake/internal/store"
)

// crawlFlags holds all the flags for the crawl command
type crawlFlags struct {
	ignoreRobots bool
	resume       bool
	crawlID      uint
	summary      bool
	quiet        bool
	maxPages     int
	workers      int
	timeout      int
	dbPath       string
}

func runCrawl(args []string) error {
	fs := flag.NewFlagSet("crawl", flag.ExitOnError)

	var flags crawlFlags
	var crawlID uint64

	fs.BoolVar(&flags.ignoreRobots, "ignore-robots", false, "Crawl pages disallowed by robots.txt")
	fs.BoolVar(&flags.resume, "resume", false, "Resume a stopped crawl (requires --crawl-id)")
	fs.Uint64Var(&crawlID, "crawl-id", 0, "Crawl ID to resume")
	fs.BoolVar(&flags.summary, "summary", true, "Print the aggregated report when the crawl finishes")
	fs.BoolVar(&flags.quiet, "quiet", false, "Suppress the report output")
	fs.BoolVar(&flags.quiet, "q", false, "Suppress the report output (shorthand)")
	fs.IntVar(&flags.maxPages, "max-pages", 0, "Page cap for this crawl (persisted per project, 0 = keep current)")
	fs.IntVar(&flags.workers, "workers", 0, "Worker pool size (persisted per project, 0 = keep current)")
	fs.IntVar(&flags.timeout, "timeout", 0, "Crawl time limit in seconds (0 = default 7200)")
	fs.StringVar(&flags.dbPath, "db", "", "Database file path (default ~/.sitesnake/sitesnake.db)")

	fs.Usage = func() {
		fmt.Println(`Usage: sitesnake crawl <url> [flags]

Crawl a site and run SEO analysis on every page.

Flags:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  # Basic audit
  sitesnake crawl https://example.com

  # Ignore robots.txt restrictions
  sitesnake crawl https://example.com --ignore-robots

  # Resume a stopped crawl
  sitesnake crawl --resume --crawl-id 3`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	flags.crawlID = uint(crawlID)

	st, err := openStore(flags.dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	application := app.NewApp(st)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl-C stops the crawl cleanly; what was gathered so far is kept.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if flags.resume {
		if flags.crawlID == 0 {
			return fmt.Errorf("--resume requires --crawl-id")
		}
		go watchInterrupt(sigCh, application, flags.crawlID)
		if err := application.ResumeCrawl(ctx, flags.crawlID); err != nil {
			return err
		}
		waitForCrawl(application, flags.crawlID)
		if flags.summary && !flags.quiet {
			summary, err := application.CrawlSummary(flags.crawlID)
			if err != nil {
				return err
			}
			return printJSON(summary)
		}
		return nil
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("URL argument required")
	}
	startURL := fs.Arg(0)

	id, err := application.StartCrawlAsync(ctx, startURL, app.StartCrawlOptions{
		IgnoreRobots:   flags.ignoreRobots,
		MaxPages:       flags.maxPages,
		Workers:        flags.workers,
		TimeoutSeconds: flags.timeout,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Started crawl %d for %s\n", id, startURL)

	go watchInterrupt(sigCh, application, id)
	waitForCrawl(application, id)

	if flags.summary && !flags.quiet {
		summary, err := application.CrawlSummary(id)
		if err != nil {
			return err
		}
		return printJSON(summary)
	}
	return nil
}

func watchInterrupt(sigCh <-chan os.Signal, application *app.App, crawlID uint) {
	<-sigCh
	fmt.Fprintln(os.Stderr, "\nStopping crawl...")
	if err := application.StopCrawl(crawlID); err != nil {
		fmt.Fprintf(os.Stderr, "Stop failed: %v\n", err)
	}
}

// waitForCrawl blocks until the crawl reaches a terminal state.
func waitForCrawl(application *app.App, crawlID uint) {
	for {
		crawl, err := application.Store().GetCrawlByID(crawlID)
		if err != nil {
			return
		}
		switch crawl.State {
		case store.CrawlStateStopped, store.CrawlStateCompleted, store.CrawlStateFailed:
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}
