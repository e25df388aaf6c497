package ingest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mhollis/packworth/internal/pack/config"
	"github.com/mhollis/packworth/internal/pack/store"
	"github.com/mhollis/packworth/pkg/packs"
)

// Options controls one ingestion pass.
type Options struct {
	Store  *store.Store
	Config *config.Ingestion
	Logger *slog.Logger

	// OCRBlocks are raw text blocks supplied by the OCR collaborator.
	OCRBlocks []TextBlock
	// ReviewedPath optionally points at a human-reviewed OCR packs file
	// whose packs are merged into the result.
	ReviewedPath string
	// Persist writes the processed packs/items JSON when true.
	Persist bool
}

// Result is the outcome of one ingestion pass.
type Result struct {
	Packs []*packs.Pack
	Items []packs.ItemDefinition
	RunID string
}

// IngestAll parses every supported file under the raw data directory, plus
// any OCR text blocks and reviewed OCR packs, and derives the item catalog.
// A failure on one file is logged and that file skipped; the pass continues.
func IngestAll(opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	result := &Result{RunID: uuid.NewString()}

	rawDir := opts.Store.RawDir()
	entries, err := os.ReadDir(rawDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading raw directory %s: %w", rawDir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(rawDir, entry.Name())
		parsed, err := parseFile(path, opts.Store.ImagesDir(), opts.Config, log)
		if err != nil {
			log.Warn("skipping unreadable file", "file", entry.Name(), "error", err)
			continue
		}
		result.Packs = append(result.Packs, parsed...)
	}

	if len(opts.OCRBlocks) > 0 {
		ocrPacks := IngestTextBlocks(opts.OCRBlocks, opts.Config.DefaultCurrency)
		log.Info("ingested OCR text blocks", "packs", len(ocrPacks))
		result.Packs = append(result.Packs, ocrPacks...)
	}

	if opts.ReviewedPath != "" {
		reviewed, err := LoadReviewedPacks(opts.ReviewedPath)
		if err != nil {
			return nil, err
		}
		if len(reviewed) > 0 {
			log.Info("loaded reviewed OCR packs", "packs", len(reviewed), "path", opts.ReviewedPath)
			result.Packs = append(result.Packs, reviewed...)
		}
	}

	result.Items = BuildItemDefinitions(result.Packs)
	itemCount := 0
	for _, p := range result.Packs {
		itemCount += len(p.Items)
	}
	log.Info("ingestion complete", "packs", len(result.Packs), "items", itemCount)

	if opts.Persist {
		now := time.Now().UTC().Format(time.RFC3339)
		packsDoc := packs.ProcessedPacksDoc{GeneratedAt: now, RunID: result.RunID, Packs: result.Packs}
		if err := store.SaveJSON(opts.Store.ProcessedPath(store.ProcessedPacksFile), packsDoc); err != nil {
			return nil, err
		}
		itemsDoc := packs.ProcessedItemsDoc{GeneratedAt: now, RunID: result.RunID, Items: result.Items}
		if err := store.SaveJSON(opts.Store.ProcessedPath(store.ProcessedItemsFile), itemsDoc); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// parseFile dispatches on file extension.
func parseFile(path, imagesDir string, cfg *config.Ingestion, log *slog.Logger) ([]*packs.Pack, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		log.Info("ingesting tabular file", "file", filepath.Base(path))
		table, err := ParseCSVTable(path)
		if err != nil {
			return nil, err
		}
		if len(table.Rows) == 0 {
			return nil, nil
		}
		stem := fileStem(path)
		rows := Normalize(table, stem, cfg.DefaultCurrency)
		return Assemble(rows, Source{File: path, Stem: stem}, nil, false), nil
	case ".xlsx", ".xlsm":
		log.Info("ingesting workbook", "file", filepath.Base(path))
		return ParseXLSX(path, imagesDir, cfg, log)
	default:
		log.Warn("skipping unsupported file", "file", filepath.Base(path))
		return nil, nil
	}
}

// BuildItemDefinitions derives the catalog of distinct items across packs.
// The first occurrence of each item id wins.
func BuildItemDefinitions(allPacks []*packs.Pack) []packs.ItemDefinition {
	seen := map[string]bool{}
	var defs []packs.ItemDefinition
	for _, pack := range allPacks {
		for _, item := range pack.Items {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			defs = append(defs, packs.ItemDefinition{
				ID:        item.ID,
				Name:      item.Name,
				Category:  item.Category,
				Icon:      item.Icon,
				BaseValue: item.BaseValue,
			})
		}
	}
	return defs
}
