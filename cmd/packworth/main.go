// Packworth game pack valuation toolkit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mhollis/packworth/internal/pack/analysis"
	"github.com/mhollis/packworth/internal/pack/config"
	"github.com/mhollis/packworth/internal/pack/history"
	"github.com/mhollis/packworth/internal/pack/knowledge"
	"github.com/mhollis/packworth/internal/pack/pipeline"
	"github.com/mhollis/packworth/internal/pack/store"
	"github.com/mhollis/packworth/pkg/packs"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: packworth <command> [flags]

Commands:
  run          Run ingestion + valuation + export
  analyze      Re-run ranking analysis on existing site exports
  plan-budget  Suggest packs to buy under a budget
  plan-goal    Plan purchases to reach a target item amount
  scrape       Scrape wiki tables into the knowledge base and link items
  snapshot     Snapshot site exports into the history directory
  diff         Diff two packs.json snapshots

Run 'packworth <command> -h' for command flags.`)
}

func newLogger(verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// loadSitePacks reads the exported packs document, failing with a pointer
// to the run command when it is missing.
func loadSitePacks(st *store.Store) ([]packs.SitePack, error) {
	var doc packs.SitePacksDoc
	if err := store.LoadArtifact(st.SitePath(store.SitePacksFile), &doc, "run"); err != nil {
		return nil, err
	}
	return doc.Packs, nil
}

// loadOverall reads the overall ranking export if present.
func loadOverall(st *store.Store) []analysis.PackAnalysis {
	var doc analysis.OverallDoc
	if err := store.LoadJSON(st.SitePath(store.SiteAnalysisOverallFile), &doc); err != nil {
		return nil
	}
	return doc.Packs
}

func runCmd(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	dataDir := fs.String("data", ".", "Data root directory")
	configRoot := fs.String("config", "config", "Config directory")
	game := fs.String("game", "", "Game key (default from game_profiles.yaml)")
	referenceMode := fs.String("reference-mode", "", "Override reference handling mode (tag/exclude/separate)")
	reviewedPath := fs.String("ocr-reviewed", "", "Path to reviewed OCR packs JSON")
	summaryOnly := fs.Bool("summary-only", false, "Run without writing outputs")
	noValidation := fs.Bool("no-validation", false, "Skip validation checks/report")
	snapshot := fs.Bool("snapshot", false, "Snapshot site exports after the run")
	profile := fs.String("profile", "", "Player profile name used for summaries")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	fs.Parse(args)

	logger := newLogger(*verbose)
	summary, err := pipeline.Run(pipeline.Options{
		Store:                 store.New(*dataDir),
		ConfigRoot:            *configRoot,
		GameKey:               *game,
		ReferenceModeOverride: *referenceMode,
		ReviewedPath:          *reviewedPath,
		SummaryOnly:           *summaryOnly,
		EnableValidation:      !*noValidation,
		Snapshot:              *snapshot,
		ProfileName:           *profile,
		Logger:                logger,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Processed %d packs (%d reference, %d valuated), %d items\n",
		summary.PacksTotal, summary.PacksReference, summary.PacksValuated, summary.ItemsTotal)
	return nil
}

func analyzeCmd(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	dataDir := fs.String("data", ".", "Data root directory")
	configRoot := fs.String("config", "config", "Config directory")
	game := fs.String("game", "", "Game key")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	fs.Parse(args)

	newLogger(*verbose)
	st := store.New(*dataDir)
	gameProfile, err := analysis.GetGameProfile(*configRoot, *game)
	if err != nil {
		return err
	}
	cfg, err := config.LoadAnalysis(analysis.ResolveConfigPath("analysis.yaml", gameProfile, *configRoot))
	if err != nil {
		return err
	}
	sitePacks, err := loadSitePacks(st)
	if err != nil {
		return err
	}
	overall, byCategory := analysis.AnalyzePacks(sitePacks, cfg)
	if err := store.SaveJSON(st.SitePath(store.SiteAnalysisOverallFile), analysis.OverallDoc{Packs: overall}); err != nil {
		return err
	}
	if err := store.SaveJSON(st.SitePath(store.SiteAnalysisCategory), analysis.ByCategoryDoc{ByCategory: byCategory}); err != nil {
		return err
	}
	fmt.Printf("Ranked %d packs\n", len(overall))
	return nil
}

func planBudgetCmd(args []string) error {
	fs := flag.NewFlagSet("plan-budget", flag.ExitOnError)
	dataDir := fs.String("data", ".", "Data root directory")
	configRoot := fs.String("config", "config", "Config directory")
	game := fs.String("game", "", "Game key")
	budget := fs.Float64("budget", 0, "Total budget to allocate")
	currency := fs.String("currency", "USD", "Currency label (display only)")
	maxCount := fs.Int("max-count", 0, "Maximum number of packs to include (0 = no limit)")
	includeReference := fs.Bool("include-reference", false, "Include reference/library packs")
	profileName := fs.String("profile", "default", "Player profile name")
	out := fs.String("out", "", "JSON output path (default <data>/site_data/budget_plan.json)")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	fs.Parse(args)

	newLogger(*verbose)
	if *budget <= 0 {
		return errors.New("budget must be greater than 0")
	}
	st := store.New(*dataDir)
	gameProfile, err := analysis.GetGameProfile(*configRoot, *game)
	if err != nil {
		return err
	}
	profile, err := analysis.GetPlayerProfile(*profileName, analysis.ResolveConfigPath("player_profiles.yaml", gameProfile, *configRoot))
	if err != nil {
		return err
	}
	sitePacks, err := loadSitePacks(st)
	if err != nil {
		return err
	}
	candidates := analysis.MergePacksWithRankings(sitePacks, loadOverall(st))

	selected, summary := analysis.PlanBudget(candidates, analysis.BudgetOptions{
		Budget:           *budget,
		Currency:         *currency,
		MaxCount:         *maxCount,
		IncludeReference: *includeReference,
		Profile:          profile,
	})

	fmt.Printf("Budget planner (profile: %s, currency: %s)\n", profile.Name, *currency)
	fmt.Printf("Budget: %.2f\n", *budget)
	fmt.Printf("Packs considered: %d, excluded: %d\n", summary.Considered, summary.Excluded)
	if len(selected) == 0 {
		fmt.Println("No packs selected within budget.")
	} else {
		fmt.Println("Selected packs:")
		for i, p := range selected {
			fmt.Printf("  %d) %s - price: %.2f, value: %.2f, value_per_dollar: %.2f\n",
				i+1, p.Name, p.Price, p.TotalValue, p.ValuePerDollar)
		}
	}
	fmt.Printf("Total spent: %.2f\n", summary.TotalSpent)
	fmt.Printf("Remaining budget: %.2f\n", summary.RemainingBudget)
	fmt.Printf("Total value: %.2f\n", summary.TotalValue)

	outPath := *out
	if outPath == "" {
		outPath = st.SitePath("budget_plan.json")
	}
	doc := analysis.BudgetPlanDoc{Profile: profile.Name, Summary: summary, Packs: selected}
	if err := store.SaveJSON(outPath, doc); err != nil {
		return err
	}
	fmt.Printf("Plan written to %s\n", outPath)
	return nil
}

func planGoalCmd(args []string) error {
	fs := flag.NewFlagSet("plan-goal", flag.ExitOnError)
	dataDir := fs.String("data", ".", "Data root directory")
	configRoot := fs.String("config", "config", "Config directory")
	game := fs.String("game", "", "Game key")
	target := fs.String("target", "", "Target item name or id (substring match)")
	amount := fs.Float64("amount", 0, "Desired amount of the target item")
	budget := fs.Float64("budget", 0, "Maximum budget (0 = unlimited)")
	currency := fs.String("currency", "USD", "Currency label (display only)")
	includeReference := fs.Bool("include-reference", false, "Include reference/library packs")
	profileName := fs.String("profile", "default", "Player profile name for tie-breaking")
	out := fs.String("out", "", "JSON output path (default <data>/site_data/goal_plan.json)")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	fs.Parse(args)

	newLogger(*verbose)
	if *target == "" || *amount <= 0 {
		return errors.New("target and amount are required (amount must be > 0)")
	}
	st := store.New(*dataDir)
	gameProfile, err := analysis.GetGameProfile(*configRoot, *game)
	if err != nil {
		return err
	}
	profile, err := analysis.GetPlayerProfile(*profileName, analysis.ResolveConfigPath("player_profiles.yaml", gameProfile, *configRoot))
	if err != nil {
		return err
	}
	sitePacks, err := loadSitePacks(st)
	if err != nil {
		return err
	}

	opts := analysis.GoalOptions{
		TargetName:       *target,
		TargetAmount:     *amount,
		Currency:         *currency,
		IncludeReference: *includeReference,
		Profile:          profile,
	}
	if *budget > 0 {
		opts.Budget = budget
	}
	result := analysis.PlanGoal(sitePacks, loadOverall(st), opts)

	fmt.Println("Goal planner")
	fmt.Printf("  Target item: %s\n", *target)
	fmt.Printf("  Requested amount: %g\n", *amount)
	fmt.Printf("  Packs considered: %d, excluded: %d\n", result.Summary.Considered, result.Summary.Excluded)
	if len(result.Selected) == 0 {
		fmt.Println("No packs selected.")
	} else {
		fmt.Println("Selected packs:")
		for i, p := range result.Selected {
			cpuDisplay := "n/a"
			if p.CostPerUnit != nil {
				cpuDisplay = fmt.Sprintf("%.4f", *p.CostPerUnit)
			}
			fmt.Printf("  %d) %s - price: %.2f, target qty: %.2f, cost/unit: %s\n",
				i+1, p.Name, p.Price, p.TargetQuantity, cpuDisplay)
		}
	}
	fmt.Printf("  Obtained: %g, spent: %.2f\n", result.Summary.TargetAmountObtained, result.Summary.TotalSpent)
	for _, note := range result.Summary.Notes {
		fmt.Printf("  %s\n", note)
	}

	outPath := *out
	if outPath == "" {
		outPath = st.SitePath("goal_plan.json")
	}
	doc := analysis.GoalPlanDoc{Profile: profile.Name, Summary: result.Summary, Selected: result.Selected}
	if err := store.SaveJSON(outPath, doc); err != nil {
		return err
	}
	fmt.Printf("Plan written to %s\n", outPath)
	return nil
}

func scrapeCmd(args []string) error {
	fs := flag.NewFlagSet("scrape", flag.ExitOnError)
	dataDir := fs.String("data", ".", "Data root directory")
	game := fs.String("game", "whiteout_survival", "Game key stamped on scraped entities")
	source := fs.String("source", "wiki", "Source label stamped on scraped entities")
	baseURL := fs.String("base-url", "", "Base URL of the site to scrape")
	paths := fs.String("paths", "", "Comma-separated page paths under the base URL")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	fs.Parse(args)

	logger := newLogger(*verbose)
	if *baseURL == "" || *paths == "" {
		return errors.New("both -base-url and -paths are required")
	}
	var pagePaths []string
	for _, p := range strings.Split(*paths, ",") {
		if p = strings.TrimSpace(p); p != "" {
			pagePaths = append(pagePaths, p)
		}
	}

	st := store.New(*dataDir)
	scraper := knowledge.NewScraper(logger)
	entities, err := scraper.ScrapeSite(context.Background(), *game, *source, *baseURL, pagePaths)
	if err != nil {
		return err
	}
	entitiesPath := filepath.Join(st.KnowledgeDir(), "entities.json")
	if err := knowledge.SaveEntities(entitiesPath, entities); err != nil {
		return err
	}
	fmt.Printf("Saved %d entities to %s\n", len(entities), entitiesPath)

	// Link items when a prior ingest left item definitions behind.
	var itemsDoc packs.ProcessedItemsDoc
	if err := store.LoadJSON(st.ProcessedPath(store.ProcessedItemsFile), &itemsDoc); err != nil {
		return nil
	}
	links := knowledge.BuildItemLinks(itemsDoc.Items, entities)
	linksPath := filepath.Join(st.KnowledgeDir(), "item_links.json")
	if err := store.SaveJSON(linksPath, links); err != nil {
		return err
	}
	fmt.Printf("Linked %d items, links written to %s\n", len(links), linksPath)
	return nil
}

func snapshotCmd(args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	dataDir := fs.String("data", ".", "Data root directory")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	fs.Parse(args)

	newLogger(*verbose)
	snapDir, err := history.Snapshot(store.New(*dataDir), time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Snapshot written to %s\n", snapDir)
	return nil
}

func diffCmd(args []string) error {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	previous := fs.String("previous", "", "Path to the previous packs.json")
	current := fs.String("current", "", "Path to the current packs.json")
	out := fs.String("out", "", "Optional JSON output path for the diff")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	fs.Parse(args)

	newLogger(*verbose)
	if *previous == "" || *current == "" {
		return errors.New("both -previous and -current are required")
	}
	diff, err := history.DiffPacks(*previous, *current)
	if err != nil {
		return err
	}
	fmt.Printf("Packs: %d -> %d (new: %d, removed: %d, changed: %d)\n",
		diff.Summary.PacksPrevious, diff.Summary.PacksCurrent,
		diff.Summary.NewPacks, diff.Summary.RemovedPacks, diff.Summary.ChangedPacks)
	if *out != "" {
		if err := store.SaveJSON(*out, diff); err != nil {
			return err
		}
		fmt.Printf("Diff written to %s\n", *out)
	}
	return nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(os.Args[2:])
	case "analyze":
		err = analyzeCmd(os.Args[2:])
	case "plan-budget":
		err = planBudgetCmd(os.Args[2:])
	case "plan-goal":
		err = planGoalCmd(os.Args[2:])
	case "scrape":
		err = scrapeCmd(os.Args[2:])
	case "snapshot":
		err = snapshotCmd(os.Args[2:])
	case "diff":
		err = diffCmd(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
