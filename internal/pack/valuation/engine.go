// Package valuation computes monetary values, inferred prices, and scores
// for packs.
package valuation

import (
	"log/slog"
	"math"
	"sort"

	"github.com/mhollis/packworth/internal/pack/config"
	"github.com/mhollis/packworth/pkg/packs"
)

// Engine values packs against a resolved valuation config.
type Engine struct {
	cfg *config.Valuation
	log *slog.Logger
}

// New creates an Engine.
func New(cfg *config.Valuation, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{cfg: cfg, log: log}
}

// ValuePacks computes a valuation for every pack. Prices of packs with no
// explicit price are inferred in place and their provenance recorded in the
// pack metadata.
func (e *Engine) ValuePacks(list []*packs.Pack) []packs.ValuedPack {
	valued := make([]packs.ValuedPack, 0, len(list))
	for _, pack := range list {
		breakdown := map[string]float64{}
		total := 0.0
		for i := range pack.Items {
			value, category := e.itemValue(&pack.Items[i])
			if pack.Items[i].Meta == nil {
				pack.Items[i].Meta = map[string]any{}
			}
			pack.Items[i].Meta["valuation_category"] = category
			breakdown[pack.Items[i].ID] = value
			total += value
		}

		price, _ := e.InferPrice(pack)
		ratio := 0.0
		if price > 0 {
			ratio = total / price
		}
		score := e.scoreFromRatio(ratio)
		label, color := e.bandForScore(score)

		valued = append(valued, packs.ValuedPack{
			Pack: pack,
			Valuation: packs.PackValuation{
				PackID:     pack.ID,
				TotalValue: round2(total),
				Price:      price,
				Ratio:      round2(ratio),
				Score:      score,
				Label:      label,
				Color:      color,
				Breakdown:  breakdown,
			},
		})
	}
	e.log.Info("valued packs", "count", len(valued))
	return valued
}

// itemValue resolves one item's monetary value and effective category.
// Resolution order for the unit value: explicit per-item config override,
// the item's own carried base value, then the category's configured base
// value. The category multiplier applies to all three.
func (e *Engine) itemValue(item *packs.PackItem) (float64, string) {
	category := item.Category
	if category == "" {
		category = "unknown"
	}

	value := 0.0
	override, ok := e.cfg.Items[item.Name]
	if !ok {
		override, ok = e.cfg.Items[item.ID]
	}
	switch {
	case ok:
		if override.Category != "" {
			category = override.Category
		}
		value = override.BaseValue * item.Quantity
	case item.BaseValue != nil:
		value = *item.BaseValue * item.Quantity
	default:
		cat, found := e.cfg.Categories[category]
		if !found {
			cat = e.cfg.Categories["unknown"]
		}
		if cat.BaseValue != nil {
			value = *cat.BaseValue * item.Quantity
		}
	}

	multiplier := 1.0
	if cat, found := e.cfg.Categories[category]; found && cat.Multiplier != 0 {
		multiplier = cat.Multiplier
	}
	return value * multiplier, category
}

// scoreFromRatio maps a value/price ratio onto the bounded 0-100 score.
func (e *Engine) scoreFromRatio(ratio float64) float64 {
	maxRatio := e.cfg.Scoring.RatioScale.MaxRatio
	if maxRatio <= 0 {
		maxRatio = 10.0
	}
	bounded := math.Max(0, math.Min(ratio, maxRatio))
	return round2(bounded / maxRatio * 100)
}

// bandForScore picks the highest ascending band whose Min does not exceed
// the score. The lowest band is the floor for score 0.
func (e *Engine) bandForScore(score float64) (string, string) {
	bands := make([]config.ScoreBand, len(e.cfg.Scoring.ScoreBands))
	copy(bands, e.cfg.Scoring.ScoreBands)
	sort.Slice(bands, func(i, j int) bool { return bands[i].Min < bands[j].Min })
	if len(bands) == 0 {
		return "Unknown", "#999999"
	}
	selected := bands[0]
	for _, band := range bands {
		if score >= band.Min {
			selected = band
		}
	}
	return selected.Label, selected.Color
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
