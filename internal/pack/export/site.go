// Package export flattens valued packs into the static JSON documents the
// site frontend consumes.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mhollis/packworth/internal/pack/analysis"
	"github.com/mhollis/packworth/internal/pack/store"
	"github.com/mhollis/packworth/pkg/packs"
)

// Options configures a site export.
type Options struct {
	Store          *store.Store
	Game           analysis.GameProfile
	Items          []packs.ItemDefinition // nil = derive from packs
	Categories     analysis.ItemCategoryConfig
	Presets        []analysis.PlannerPreset
	ReferenceMode  string // "tag", "exclude", or "separate"
	ReferencePacks []*packs.Pack
	ProfileName    string
	RunID          string
	Logger         *slog.Logger
}

// presetsDoc is the planner presets export payload.
type presetsDoc struct {
	Game      string                  `json:"game"`
	GameLabel string                  `json:"game_label"`
	Presets   []analysis.PlannerPreset `json:"presets"`
}

// referenceDoc is the separate reference packs export payload.
type referenceDoc struct {
	GeneratedAt    string        `json:"generated_at"`
	ReferencePacks []*packs.Pack `json:"reference_packs"`
}

// siteItem is an ItemDefinition stamped with its game for the items export.
type siteItem struct {
	packs.ItemDefinition
	Game      string `json:"game"`
	GameLabel string `json:"game_label"`
}

// deriveItems collects one definition per distinct item id, first
// occurrence wins.
func deriveItems(valued []packs.ValuedPack) []packs.ItemDefinition {
	seen := map[string]bool{}
	var items []packs.ItemDefinition
	for _, vp := range valued {
		for _, item := range vp.Pack.Items {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			items = append(items, packs.ItemDefinition{
				ID:        item.ID,
				Name:      item.Name,
				Category:  item.Category,
				Icon:      item.Icon,
				BaseValue: item.BaseValue,
			})
		}
	}
	return items
}

// BuildSitePacks flattens valued packs into site pack payloads, attaching
// category values and generated summaries.
func BuildSitePacks(valued []packs.ValuedPack, opts Options) []packs.SitePack {
	sitePacks := make([]packs.SitePack, 0, len(valued))
	for _, vp := range valued {
		pack := vp.Pack
		val := vp.Valuation
		vpd := 0.0
		if pack.Price > 0 {
			vpd = val.TotalValue / pack.Price
		}
		categoryValues := opts.Categories.AggregateCategoryValues(pack.Items, val.Breakdown)

		items := make([]packs.SiteItem, 0, len(pack.Items))
		for _, item := range pack.Items {
			items = append(items, packs.SiteItem{
				ID:       item.ID,
				Name:     item.Name,
				Quantity: item.Quantity,
				Category: item.Category,
				Icon:     item.Icon,
				Value:    val.Breakdown[item.ID],
			})
		}

		sitePacks = append(sitePacks, packs.SitePack{
			Game:           opts.Game.Key,
			GameLabel:      opts.Game.Label,
			ID:             pack.ID,
			Name:           pack.Name,
			Price:          packs.SitePrice{Amount: pack.Price, Currency: pack.Currency},
			Source:         packs.SiteSource{File: pack.SourceFile, Sheet: pack.SourceSheet},
			Tags:           pack.Tags,
			IsReference:    pack.IsReference,
			ValuePerDollar: vpd,
			Items:          items,
			Value:          val.TotalValue,
			PriceToValue:   val.Ratio,
			Score:          val.Score,
			Label:          val.Label,
			Color:          val.Color,
			CategoryValues: categoryValues,
		})
	}

	summaries := analysis.GenerateAllPackSummaries(sitePacks, opts.ProfileName)
	for i := range sitePacks {
		sitePacks[i].Summary = summaries[sitePacks[i].ID]
	}
	return sitePacks
}

// ExportSiteJSON writes the packs and items site documents, plus planner
// presets and, in "separate" reference mode, the reference packs file.
// It returns the site packs it wrote so later stages can reuse them.
func ExportSiteJSON(valued []packs.ValuedPack, opts Options) ([]packs.SitePack, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	now := time.Now().UTC().Format(time.RFC3339)

	sitePacks := BuildSitePacks(valued, opts)
	packsPath := opts.Store.SitePath(store.SitePacksFile)
	if err := store.SaveJSON(packsPath, packs.SitePacksDoc{GeneratedAt: now, RunID: opts.RunID, Packs: sitePacks}); err != nil {
		return nil, fmt.Errorf("exporting site packs: %w", err)
	}

	defs := opts.Items
	if defs == nil {
		defs = deriveItems(valued)
	}
	stamped := make([]siteItem, 0, len(defs))
	for _, def := range defs {
		stamped = append(stamped, siteItem{ItemDefinition: def, Game: opts.Game.Key, GameLabel: opts.Game.Label})
	}
	itemsPath := opts.Store.SitePath(store.SiteItemsFile)
	itemsDoc := struct {
		GeneratedAt string     `json:"generated_at"`
		RunID       string     `json:"run_id,omitempty"`
		Items       []siteItem `json:"items"`
	}{GeneratedAt: now, RunID: opts.RunID, Items: stamped}
	if err := store.SaveJSON(itemsPath, itemsDoc); err != nil {
		return nil, fmt.Errorf("exporting site items: %w", err)
	}

	if len(opts.Presets) > 0 {
		presetsPath := opts.Store.SitePath(store.SitePresetsFile)
		doc := presetsDoc{Game: opts.Game.Key, GameLabel: opts.Game.Label, Presets: opts.Presets}
		if err := store.SaveJSON(presetsPath, doc); err != nil {
			return nil, fmt.Errorf("exporting planner presets: %w", err)
		}
	}

	if opts.ReferenceMode == "separate" && len(opts.ReferencePacks) > 0 {
		refPath := opts.Store.SitePath(store.SiteReferencesFile)
		if err := store.SaveJSON(refPath, referenceDoc{GeneratedAt: now, ReferencePacks: opts.ReferencePacks}); err != nil {
			return nil, fmt.Errorf("exporting reference packs: %w", err)
		}
	}

	log.Info("exported site data", "packs", packsPath, "items", itemsPath, "count", len(sitePacks))
	return sitePacks, nil
}
