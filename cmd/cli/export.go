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
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/agentberlin/sitesnake/internal/app"
	"github.com/agentberlin/sitesnake/internal/store"
)

// Exporter writes the pages and the aggregated report of one crawl to disk.
type Exporter struct {
	app       *app.App
	store     *store.Store
	crawlID   uint
	domain    string
	outputDir string
	format    string
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	var crawlID uint64
	var format, outputDir, dbPath string
	fs.Uint64Var(&crawlID, "crawl-id", 0, "Crawl ID to export")
	fs.StringVar(&format, "format", "csv", "Page export format: csv or json")
	fs.StringVar(&outputDir, "out", "", "Output directory (default sitesnake-export-<crawl-id>)")
	fs.StringVar(&dbPath, "db", "", "Database file path (default ~/.sitesnake/sitesnake.db)")

	fs.Usage = func() {
		fmt.Println(`Usage: sitesnake export --crawl-id <id> [flags]

Export the per-page analysis and the aggregated report of a crawl.

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
	if format != "csv" && format != "json" {
		return fmt.Errorf("unknown format: %s (want csv or json)", format)
	}
	if outputDir == "" {
		outputDir = fmt.Sprintf("sitesnake-export-%d", crawlID)
	}

	st, err := openStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	crawl, err := st.GetCrawlByID(uint(crawlID))
	if err != nil {
		return err
	}

	e := &Exporter{
		app:       app.NewApp(st),
		store:     st,
		crawlID:   uint(crawlID),
		domain:    crawl.Domain,
		outputDir: outputDir,
		format:    format,
	}
	if err := e.Export(); err != nil {
		return err
	}
	fmt.Printf("Exported crawl %d to %s/\n", crawlID, outputDir)
	return nil
}

// Export writes the page export and the summary report.
func (e *Exporter) Export() error {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}

	if err := e.exportPages(); err != nil {
		return fmt.Errorf("failed to export pages: %v", err)
	}
	if err := e.exportSummary(); err != nil {
		return fmt.Errorf("failed to export summary: %v", err)
	}
	return nil
}

func (e *Exporter) exportPages() error {
	pages, err := e.store.GetCrawlPages(e.crawlID)
	if err != nil {
		return err
	}
	if e.format == "json" {
		return e.exportPagesJSON(pages)
	}
	return e.exportPagesCSV(pages)
}

func (e *Exporter) exportPagesJSON(pages []store.Page) error {
	records := make([]json.RawMessage, 0, len(pages))
	for i := range pages {
		if pages[i].Record != "" {
			records = append(records, json.RawMessage(pages[i].Record))
		}
	}

	output := struct {
		CrawlID    uint              `json:"crawl_id"`
		Domain     string            `json:"domain"`
		ExportedAt string            `json:"exported_at"`
		TotalPages int               `json:"total_pages"`
		Pages      []json.RawMessage `json:"pages"`
	}{
		CrawlID:    e.crawlID,
		Domain:     e.domain,
		ExportedAt: time.Now().Format(time.RFC3339),
		TotalPages: len(records),
		Pages:      records,
	}

	f, err := os.Create(filepath.Join(e.outputDir, "pages.json"))
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func (e *Exporter) exportPagesCSV(pages []store.Page) error {
	f, err := os.Create(filepath.Join(e.outputDir, "pages.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"URL",
		"Status Code",
		"Response Time (s)",
		"Content Type",
		"Title",
		"Title Length",
		"Meta Description Length",
		"H1 Count",
		"Word Count",
		"Internal Links",
		"External Links",
		"Images Missing Alt",
		"Issues",
		"Score",
		"Redirect Target",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range pages {
		p := &pages[i]
		rec := p.GetRecord()
		if rec == nil {
			continue
		}
		row := []string{
			p.URL,
			strconv.Itoa(p.StatusCode),
			strconv.FormatFloat(p.ResponseTime, 'f', 3, 64),
			p.ContentType,
			p.Title,
			strconv.Itoa(rec.TitleLength),
			strconv.Itoa(rec.MetaDescriptionLength),
			strconv.Itoa(rec.H1Count),
			strconv.Itoa(rec.WordCount),
			strconv.Itoa(rec.InternalLinks),
			strconv.Itoa(rec.ExternalLinks),
			strconv.Itoa(rec.ImagesWithoutAlt),
			strconv.Itoa(len(rec.Issues)),
			strconv.Itoa(p.Score),
			p.RedirectTarget,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) exportSummary() error {
	summary, err := e.app.CrawlSummary(e.crawlID)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(e.outputDir, "summary.json"))
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}
