// Package analysis ranks valued packs and plans purchases over the
// rankings.
package analysis

import (
	"math"
	"sort"

	"github.com/mhollis/packworth/internal/pack/config"
	"github.com/mhollis/packworth/pkg/packs"
)

// PackAnalysis is the ranking record computed for one pack.
type PackAnalysis struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Price          float64            `json:"price"`
	Currency       string             `json:"currency"`
	Source         packs.SiteSource   `json:"source"`
	TotalValue     float64            `json:"total_value"`
	ValuePerDollar float64            `json:"value_per_dollar"`
	CategoryValues map[string]float64 `json:"category_values"`
	OverallScore   float64            `json:"overall_score"`
	WeightedScore  float64            `json:"weighted_score"`
	FocusScores    map[string]float64 `json:"focus_scores"`
	IsReference    bool               `json:"is_reference"`
	RankOverall    int                `json:"rank_overall"`
	// CategoryRanks holds the pack's rank within each focus category.
	CategoryRanks map[string]int `json:"category_ranks,omitempty"`
}

// CategoryRank is one entry of a per-focus-category ranking list.
type CategoryRank struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	ValuePerDollar float64 `json:"value_per_dollar"`
	Score          float64 `json:"score"`
	Rank           int     `json:"rank"`
}

// OverallDoc is the on-disk shape of the overall ranking export.
type OverallDoc struct {
	Packs []PackAnalysis `json:"packs"`
}

// ByCategoryDoc is the on-disk shape of the per-category ranking export.
type ByCategoryDoc struct {
	ByCategory map[string][]CategoryRank `json:"by_category"`
}

// AnalyzePacks filters, scores, and ranks site packs. The overall ranking
// sorts descending by value per dollar (rank 1 = highest); each focus
// category additionally gets its own ranking by that category's score.
func AnalyzePacks(sitePacks []packs.SitePack, cfg *config.Analysis) ([]PackAnalysis, map[string][]CategoryRank) {
	maxVPD := cfg.MaxValuePerDollar
	if maxVPD <= 0 {
		maxVPD = 20.0
	}

	var records []PackAnalysis
	for _, p := range sitePacks {
		if cfg.ExcludeReference && p.IsReference {
			continue
		}
		if p.Price.Amount < cfg.MinPrice {
			continue
		}
		records = append(records, computeMetrics(p, cfg.CategoryWeights, cfg.FocusCategories, maxVPD))
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ValuePerDollar > records[j].ValuePerDollar
	})
	for i := range records {
		records[i].RankOverall = i + 1
	}

	byCategory := map[string][]CategoryRank{}
	for _, cat := range cfg.FocusCategories {
		order := make([]int, len(records))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return records[order[a]].FocusScores[cat] > records[order[b]].FocusScores[cat]
		})
		list := make([]CategoryRank, 0, len(order))
		for rank, idx := range order {
			rec := &records[idx]
			if rec.CategoryRanks == nil {
				rec.CategoryRanks = map[string]int{}
			}
			rec.CategoryRanks[cat] = rank + 1
			list = append(list, CategoryRank{
				ID:             rec.ID,
				Name:           rec.Name,
				Price:          rec.Price,
				ValuePerDollar: rec.ValuePerDollar,
				Score:          rec.FocusScores[cat],
				Rank:           rank + 1,
			})
		}
		byCategory[cat] = list
	}
	return records, byCategory
}

func computeMetrics(p packs.SitePack, weights map[string]float64, focus []string, maxVPD float64) PackAnalysis {
	price := p.Price.Amount
	totalValue := p.Value
	vpd := 0.0
	if price > 0 {
		vpd = totalValue / price
	}

	categoryValues := map[string]float64{}
	for _, item := range p.Items {
		cat := item.Category
		if cat == "" {
			cat = "unknown"
		}
		categoryValues[cat] += item.Value
	}

	overall := 0.0
	if maxVPD > 0 {
		overall = math.Min(100, vpd/maxVPD*100)
	}

	focusScores := map[string]float64{}
	for _, cat := range focus {
		score := 0.0
		if price > 0 && maxVPD > 0 {
			score = math.Min(100, (categoryValues[cat]/price)/maxVPD*100)
		}
		focusScores[cat] = round2(score)
	}

	weighted := 0.0
	weightSum := 0.0
	for cat, w := range weights {
		weightSum += w
		weighted += w * categoryValues[cat]
	}
	weightedScore := 0.0
	if weightSum > 0 && price > 0 && maxVPD > 0 {
		weightedScore = math.Min(100, (weighted/weightSum)/price/maxVPD*100)
	}

	rounded := map[string]float64{}
	for cat, v := range categoryValues {
		rounded[cat] = round2(v)
	}

	return PackAnalysis{
		ID:             p.ID,
		Name:           p.Name,
		Price:          price,
		Currency:       p.Price.Currency,
		Source:         p.Source,
		TotalValue:     round2(totalValue),
		ValuePerDollar: round2(vpd),
		CategoryValues: rounded,
		OverallScore:   round2(overall),
		WeightedScore:  round2(weightedScore),
		FocusScores:    focusScores,
		IsReference:    p.IsReference,
	}
}

// ComputeProfileScore scores a pack for a player profile. With non-empty
// weights the score is the weighted sum of category values divided by
// price; with empty weights it falls back to plain value per dollar, which
// is the required default-profile behavior.
func ComputeProfileScore(price float64, valuePerDollar float64, categoryValues map[string]float64, profile PlayerProfile) float64 {
	if len(profile.Weights) == 0 {
		return valuePerDollar
	}
	if price <= 0 {
		return 0
	}
	weighted := 0.0
	for cat, w := range profile.Weights {
		weighted += w * categoryValues[cat]
	}
	return weighted / price
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
