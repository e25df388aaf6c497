package analysis

import (
	"sort"

	"github.com/mhollis/packworth/pkg/packs"
)

// PlannedPack is one candidate considered by the budget planner.
type PlannedPack struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	TotalValue     float64 `json:"total_value"`
	ValuePerDollar float64 `json:"value_per_dollar"`
	RankOverall    int     `json:"rank_overall,omitempty"`
	IsReference    bool    `json:"is_reference"`

	categoryValues map[string]float64
}

// PlanSummary reports the outcome of a budget plan.
type PlanSummary struct {
	Budget                 float64 `json:"budget"`
	Currency               string  `json:"currency"`
	TotalSpent             float64 `json:"total_spent"`
	RemainingBudget        float64 `json:"remaining_budget"`
	TotalValue             float64 `json:"total_value"`
	AverageValuePerDollar  float64 `json:"average_value_per_dollar"`
	Considered             int     `json:"considered"`
	Excluded               int     `json:"excluded"`
}

// BudgetPlanDoc is the exported plan payload.
type BudgetPlanDoc struct {
	Profile string        `json:"profile"`
	Summary PlanSummary   `json:"summary"`
	Packs   []PlannedPack `json:"packs"`
}

// MergePacksWithRankings pairs site packs with their overall ranking info to
// build planner candidates.
func MergePacksWithRankings(sitePacks []packs.SitePack, overall []PackAnalysis) []PlannedPack {
	rankings := make(map[string]PackAnalysis, len(overall))
	for _, rec := range overall {
		rankings[rec.ID] = rec
	}
	merged := make([]PlannedPack, 0, len(sitePacks))
	for _, p := range sitePacks {
		vpd := 0.0
		if p.Price.Amount > 0 {
			vpd = p.Value / p.Price.Amount
		}
		candidate := PlannedPack{
			ID:             p.ID,
			Name:           p.Name,
			Price:          p.Price.Amount,
			TotalValue:     p.Value,
			ValuePerDollar: vpd,
			IsReference:    p.IsReference,
			categoryValues: p.CategoryValues,
		}
		if rec, ok := rankings[p.ID]; ok {
			candidate.RankOverall = rec.RankOverall
			if rec.ValuePerDollar > 0 {
				candidate.ValuePerDollar = rec.ValuePerDollar
			}
			if len(rec.CategoryValues) > 0 {
				candidate.categoryValues = rec.CategoryValues
			}
		}
		merged = append(merged, candidate)
	}
	return merged
}

// BudgetOptions controls a budget plan.
type BudgetOptions struct {
	Budget           float64
	Currency         string
	MaxCount         int // 0 = unlimited
	IncludeReference bool
	Profile          PlayerProfile
}

// PlanBudget greedily selects packs by descending score (profile score when
// the profile carries weights, plain value per dollar otherwise) while the
// cumulative spend stays within budget. Ties keep input order.
func PlanBudget(candidates []PlannedPack, opts BudgetOptions) ([]PlannedPack, PlanSummary) {
	var eligible []PlannedPack
	excluded := 0
	for _, p := range candidates {
		if p.Price <= 0 || p.ValuePerDollar <= 0 {
			excluded++
			continue
		}
		if p.IsReference && !opts.IncludeReference {
			excluded++
			continue
		}
		eligible = append(eligible, p)
	}

	scoreOf := func(p PlannedPack) float64 {
		return ComputeProfileScore(p.Price, p.ValuePerDollar, p.categoryValues, opts.Profile)
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return scoreOf(eligible[i]) > scoreOf(eligible[j])
	})

	var selected []PlannedPack
	spent := 0.0
	totalValue := 0.0
	for _, p := range eligible {
		if opts.MaxCount > 0 && len(selected) >= opts.MaxCount {
			break
		}
		if spent+p.Price <= opts.Budget+1e-9 {
			selected = append(selected, p)
			spent += p.Price
			totalValue += p.TotalValue
		}
	}

	remaining := opts.Budget - spent
	if remaining < 0 {
		remaining = 0
	}
	avgVPD := 0.0
	if spent > 0 {
		avgVPD = totalValue / spent
	}
	summary := PlanSummary{
		Budget:                opts.Budget,
		Currency:              opts.Currency,
		TotalSpent:            round2(spent),
		RemainingBudget:       round2(remaining),
		TotalValue:            round2(totalValue),
		AverageValuePerDollar: round2(avgVPD),
		Considered:            len(eligible),
		Excluded:              excluded,
	}
	return selected, summary
}
