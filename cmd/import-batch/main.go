// import-batch runs one import flow end to end from the command line: read
// a document, extract candidates, classify against the demo dataset, print
// the review summary, and (with --commit) apply it and write an XLSX report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kpcollege/studentportal/internal/common"
	"github.com/kpcollege/studentportal/internal/doctext"
	"github.com/kpcollege/studentportal/internal/export"
	"github.com/kpcollege/studentportal/internal/importer"
	"github.com/kpcollege/studentportal/internal/llm/openai"
	"github.com/kpcollege/studentportal/internal/seed"
	"github.com/kpcollege/studentportal/internal/store"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		file     = flag.String("file", "", "document to import (required)")
		kind     = flag.String("kind", "roster", "import kind: roster | attendance")
		doCommit = flag.Bool("commit", false, "apply the eligible rows instead of stopping at review")
		out      = flag.String("out", "", "output XLSX report path (optional)")
		skipSeed = flag.Bool("empty", false, "start from an empty collection instead of the demo dataset")
	)
	flag.Parse()

	if *file == "" {
		printError("Error: --file is required\n")
		os.Exit(1)
	}

	logger := slog.Default()
	cfg, err := common.LoadConfig()
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	st := store.New(logger)
	if !*skipSeed {
		if err := seed.Load(st, logger); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
	}

	docs := doctext.NewExtractor(doctext.Config{Pdftotext: cfg.Extractor.Pdftotext, MaxBytes: cfg.Extractor.MaxBytes}, logger)
	extractor := openai.NewClient(openai.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}, logger)
	imp := importer.New(importer.Config{ExtractTimeout: cfg.LLM.Timeout}, st, docs, extractor, logger)

	data, err := os.ReadFile(*file)
	if err != nil {
		printError("Error: read %s: %v\n", *file, err)
		os.Exit(1)
	}

	ctx := context.Background()
	var sess *importer.Session
	switch *kind {
	case "roster":
		sess, err = imp.StartRoster(ctx, filepath.Base(*file), data, nil)
	case "attendance":
		sess, err = imp.StartAttendance(ctx, filepath.Base(*file), data)
	default:
		printError("Error: unknown kind %q\n", *kind)
		os.Exit(1)
	}
	if err != nil {
		printError("Import failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(sess.Message)
	for _, row := range sess.StudentRows {
		fmt.Printf("  %-16s %-24s %s\n", row.Status, row.Candidate.Name, row.RollNumber)
	}
	for _, row := range sess.AttendanceRows {
		fmt.Printf("  %-16s %-14s %s %d\n", row.Status, row.Record.RollNumber, row.Record.Month, row.Record.Year)
	}

	if !*doCommit {
		if _, err := imp.Cancel(sess.ID); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Review only; nothing committed. Re-run with --commit to apply.")
		return
	}

	if _, err := imp.Commit(sess.ID); err != nil {
		printError("Commit failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Committed %d record(s).\n", sess.Summary.Eligible)

	if *out != "" {
		exp := export.NewService(st, logger)
		var report []byte
		if *kind == "roster" {
			report, err = exp.ExportRosterXLSX("")
		} else {
			report, err = exp.ExportAttendanceXLSX()
		}
		if err != nil {
			printError("Export failed: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, report, 0o644); err != nil {
			printError("Error: write %s: %v\n", *out, err)
			os.Exit(1)
		}
		fmt.Printf("Report written to %s\n", *out)
	}
}
