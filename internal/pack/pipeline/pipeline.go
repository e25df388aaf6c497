// Package pipeline orchestrates a full run: ingestion, valuation, site
// export, ranking, validation, and an optional history snapshot.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mhollis/packworth/internal/pack/analysis"
	"github.com/mhollis/packworth/internal/pack/config"
	"github.com/mhollis/packworth/internal/pack/export"
	"github.com/mhollis/packworth/internal/pack/history"
	"github.com/mhollis/packworth/internal/pack/ingest"
	"github.com/mhollis/packworth/internal/pack/store"
	"github.com/mhollis/packworth/internal/pack/validation"
	"github.com/mhollis/packworth/internal/pack/valuation"
	"github.com/mhollis/packworth/pkg/packs"
)

// Options configures one pipeline run.
type Options struct {
	Store      *store.Store
	ConfigRoot string
	GameKey    string

	// ReferenceModeOverride, when set, wins over the configured
	// reference_handling.mode.
	ReferenceModeOverride string

	OCRBlocks    []ingest.TextBlock
	ReviewedPath string

	// SummaryOnly skips all writes; only the run summary is produced.
	SummaryOnly      bool
	EnableValidation bool
	Snapshot         bool
	ProfileName      string

	Logger *slog.Logger
}

// Summary reports what a run did.
type Summary struct {
	RunID          string `json:"run_id"`
	PacksTotal     int    `json:"packs_total"`
	PacksReference int    `json:"packs_reference"`
	PacksValuated  int    `json:"packs_valuated"`
	ItemsTotal     int    `json:"items_total"`
	ReferenceMode  string `json:"reference_mode"`
	SnapshotDir    string `json:"snapshot_dir,omitempty"`
}

// Run executes the pipeline end to end and returns its summary.
func Run(opts Options) (*Summary, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Info("starting pipeline")

	game, err := analysis.GetGameProfile(opts.ConfigRoot, opts.GameKey)
	if err != nil {
		return nil, err
	}

	ingestionCfg, err := config.LoadIngestion(analysis.ResolveConfigPath("ingestion.yaml", game, opts.ConfigRoot))
	if err != nil {
		return nil, err
	}
	refMode := ingestionCfg.ReferenceHandling.Mode
	if opts.ReferenceModeOverride != "" {
		refMode = opts.ReferenceModeOverride
	}

	ingested, err := ingest.IngestAll(ingest.Options{
		Store:        opts.Store,
		Config:       ingestionCfg,
		Logger:       log,
		OCRBlocks:    opts.OCRBlocks,
		ReviewedPath: opts.ReviewedPath,
		Persist:      !opts.SummaryOnly,
	})
	if err != nil {
		return nil, err
	}

	var referencePacks, normalPacks []*packs.Pack
	for _, p := range ingested.Packs {
		if p.IsReference {
			referencePacks = append(referencePacks, p)
		} else {
			normalPacks = append(normalPacks, p)
		}
	}
	valuationInput := ingested.Packs
	if refMode == "exclude" || refMode == "separate" {
		valuationInput = normalPacks
	}

	valuationCfg, err := config.LoadValuation(analysis.ResolveConfigPath("values.yaml", game, opts.ConfigRoot))
	if err != nil {
		return nil, err
	}
	engine := valuation.New(valuationCfg, log)
	valued := engine.ValuePacks(valuationInput)

	summary := &Summary{
		RunID:          ingested.RunID,
		PacksTotal:     len(ingested.Packs),
		PacksReference: len(referencePacks),
		PacksValuated:  len(valuationInput),
		ReferenceMode:  refMode,
	}
	for _, p := range ingested.Packs {
		summary.ItemsTotal += len(p.Items)
	}

	if opts.SummaryOnly {
		log.Info("run summary", "packs", summary.PacksTotal, "reference", summary.PacksReference,
			"valuated", summary.PacksValuated, "items", summary.ItemsTotal, "ref_mode", refMode)
		return summary, nil
	}

	valuations := make([]packs.PackValuation, 0, len(valued))
	for _, vp := range valued {
		valuations = append(valuations, vp.Valuation)
	}
	valuationsPath := opts.Store.ProcessedPath(store.ProcessedValuationsFile)
	if err := store.SaveJSON(valuationsPath, valuations); err != nil {
		return nil, fmt.Errorf("saving valuations: %w", err)
	}

	categories, err := analysis.LoadItemCategoryConfig(analysis.ResolveConfigPath("item_categories.yaml", game, opts.ConfigRoot))
	if err != nil {
		return nil, err
	}
	presets, err := analysis.LoadPlannerPresets(analysis.ResolveConfigPath("planner_presets.yaml", game, opts.ConfigRoot))
	if err != nil {
		return nil, err
	}

	sitePacks, err := export.ExportSiteJSON(valued, export.Options{
		Store:          opts.Store,
		Game:           game,
		Items:          ingested.Items,
		Categories:     categories,
		Presets:        presets,
		ReferenceMode:  refMode,
		ReferencePacks: referencePacks,
		ProfileName:    opts.ProfileName,
		RunID:          ingested.RunID,
		Logger:         log,
	})
	if err != nil {
		return nil, err
	}

	analysisCfg, err := config.LoadAnalysis(analysis.ResolveConfigPath("analysis.yaml", game, opts.ConfigRoot))
	if err != nil {
		return nil, err
	}
	overall, byCategory := analysis.AnalyzePacks(sitePacks, analysisCfg)
	if err := store.SaveJSON(opts.Store.SitePath(store.SiteAnalysisOverallFile), analysis.OverallDoc{Packs: overall}); err != nil {
		return nil, fmt.Errorf("saving overall ranking: %w", err)
	}
	if err := store.SaveJSON(opts.Store.SitePath(store.SiteAnalysisCategory), analysis.ByCategoryDoc{ByCategory: byCategory}); err != nil {
		return nil, fmt.Errorf("saving per-category ranking: %w", err)
	}

	if opts.EnableValidation {
		validationCfg, err := config.LoadValidation(analysis.ResolveConfigPath("validation.yaml", game, opts.ConfigRoot))
		if err != nil {
			return nil, err
		}
		if validationCfg.Enabled {
			report := validation.Validate(sitePacks, ingested.Items, validationCfg)
			reportPath, err := validation.Export(opts.Store, report, validationCfg.ReportFilename)
			if err != nil {
				return nil, err
			}
			log.Info("validation summary",
				"packs", report.Summary.TotalPacks,
				"missing_price", report.Summary.PacksMissingPrice,
				"invalid_price", report.Summary.PacksInvalidPrice,
				"extreme_vpd", report.Summary.PacksExtremeVPD,
				"unknown_items", report.Summary.UnknownItems,
				"duplicates", report.Summary.DuplicatePacks,
				"report", reportPath)
		}
	}

	if opts.Snapshot {
		snapDir, err := history.Snapshot(opts.Store, time.Now())
		if err != nil {
			return nil, err
		}
		summary.SnapshotDir = snapDir
		log.Info("snapshot written", "dir", snapDir)
	}

	log.Info("run summary", "packs", summary.PacksTotal, "reference", summary.PacksReference,
		"valuated", summary.PacksValuated, "items", summary.ItemsTotal, "ref_mode", refMode)
	log.Info("pipeline finished")
	return summary, nil
}
