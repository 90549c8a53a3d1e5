// Command deckimport converts a .pptx or raw JSON presentation into the
// editor's document form and persists it to a deck database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/slidekit/slidekit/deckdb"
	"github.com/slidekit/slidekit/export"
	"github.com/slidekit/slidekit/importer"
	"github.com/slidekit/slidekit/pptx"
	"github.com/slidekit/slidekit/raw"
	"github.com/slidekit/slidekit/resource"
	"github.com/slidekit/slidekit/storage"
	_ "modernc.org/sqlite"
)

func main() {
	var (
		in      = flag.String("in", "", "input file (.pptx or raw .json tree)")
		dbPath  = flag.String("db", "db/deck.db", "deck database path")
		title   = flag.String("title", "", "override the document title")
		outJSON = flag.String("json", "", "also write the imported document as a JSON envelope")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	lvl := slog.LevelInfo
	if *verbose {
		lvl = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: deckimport -in deck.pptx [-db db/deck.db] [-title name] [-json out.json]")
		os.Exit(2)
	}
	if err := run(*in, *dbPath, *title, *outJSON, logger); err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(in, dbPath, title, outJSON string, logger *slog.Logger) error {
	ctx := context.Background()

	tree, err := parseInput(in, logger)
	if err != nil {
		return err
	}
	if title != "" {
		tree.Title = title
	}

	doc, err := importer.New(importer.Config{Logger: logger}).ImportDocument(tree)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	db, err := deckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	resources := resource.New(db, resource.Config{Logger: logger})
	if err := resources.Init(ctx); err != nil {
		return err
	}
	persist := storage.New(db, resources, storage.Config{Logger: logger})
	if err := persist.Init(ctx); err != nil {
		return err
	}
	if err := persist.Save(ctx, doc); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	if outJSON != "" {
		f, err := os.Create(outJSON)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteJSON(f, doc); err != nil {
			return err
		}
	}

	stats, err := resources.Stats(ctx)
	if err != nil {
		return err
	}
	elements := 0
	for _, slide := range doc.Slides {
		elements += len(slide.Elements)
	}
	fmt.Printf("imported %q: %d slides, %d elements, %d resources (%d bytes)\n",
		doc.Title, len(doc.Slides), elements, stats.Count, stats.TotalBytes)
	return nil
}

func parseInput(in string, logger *slog.Logger) (*raw.Document, error) {
	switch strings.ToLower(filepath.Ext(in)) {
	case ".pptx":
		return pptx.New(pptx.Config{Logger: logger}).ParseFile(in)
	case ".json":
		data, err := os.ReadFile(in)
		if err != nil {
			return nil, err
		}
		tree := &raw.Document{}
		if err := json.Unmarshal(data, tree); err != nil {
			return nil, fmt.Errorf("parse raw tree: %w", err)
		}
		return tree, nil
	default:
		return nil, fmt.Errorf("unsupported input %q (want .pptx or .json)", in)
	}
}
