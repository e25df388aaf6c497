package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mhollis/packworth/pkg/packs"
)

// Plan note strings. Exact wording is part of the plan contract.
const (
	NoteTargetReached    = "Target amount reached."
	NoteTargetNotReached = "Target amount not reached with available packs."
	NoteBudgetExceeded   = "Budget exceeded."
)

// GoalCandidate is one pack able to supply the targeted item.
type GoalCandidate struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	ValuePerDollar float64  `json:"value_per_dollar"`
	TargetQuantity float64  `json:"target_quantity"`
	CostPerUnit    *float64 `json:"cost_per_unit"`
	ProfileScore   *float64 `json:"profile_score,omitempty"`
	IsReference    bool     `json:"is_reference"`

	categoryValues map[string]float64
}

// costPerUnit is price per unit of the target item; +Inf when undefined.
func (c GoalCandidate) costPerUnit() float64 {
	if c.TargetQuantity <= 0 || c.Price <= 0 {
		return math.Inf(1)
	}
	return c.Price / c.TargetQuantity
}

// GoalPlanSummary reports the outcome of a goal plan.
type GoalPlanSummary struct {
	Target                 string   `json:"target"`
	TargetAmountRequested  float64  `json:"target_amount_requested"`
	TargetAmountObtained   float64  `json:"target_amount_obtained"`
	Budget                 *float64 `json:"budget"`
	Currency               string   `json:"currency"`
	TotalSpent             float64  `json:"total_spent"`
	RemainingBudget        *float64 `json:"remaining_budget"`
	EffectiveCostPerUnit   *float64 `json:"effective_cost_per_unit"`
	Considered             int      `json:"considered"`
	Excluded               int      `json:"excluded"`
	Notes                  []string `json:"notes"`
}

// GoalPlanResult pairs the selected candidates with the summary.
type GoalPlanResult struct {
	Selected []GoalCandidate `json:"selected_packs"`
	Summary  GoalPlanSummary `json:"summary"`
}

// GoalPlanDoc is the exported plan payload.
type GoalPlanDoc struct {
	Profile  string          `json:"profile"`
	Summary  GoalPlanSummary `json:"summary"`
	Selected []GoalCandidate `json:"selected_packs"`
}

// GoalOptions controls a goal plan.
type GoalOptions struct {
	TargetName       string
	TargetAmount     float64
	Budget           *float64 // nil = no cap
	Currency         string
	IncludeReference bool
	Profile          PlayerProfile
}

// matchTarget matches an item by case-insensitive substring of its name or
// exact id/name match.
func matchTarget(item packs.SiteItem, target string) bool {
	name := strings.ToLower(item.Name)
	id := strings.ToLower(item.ID)
	t := strings.ToLower(target)
	return strings.Contains(name, t) || t == id
}

// BuildGoalCandidates filters site packs down to those containing the
// target item, summing target quantity across matching items per pack.
func BuildGoalCandidates(sitePacks []packs.SitePack, overall []PackAnalysis, opts GoalOptions) ([]GoalCandidate, int) {
	rankings := make(map[string]PackAnalysis, len(overall))
	for _, rec := range overall {
		rankings[rec.ID] = rec
	}

	var candidates []GoalCandidate
	excluded := 0
	for _, p := range sitePacks {
		if p.IsReference && !opts.IncludeReference {
			excluded++
			continue
		}
		targetQty := 0.0
		for _, item := range p.Items {
			if matchTarget(item, opts.TargetName) {
				targetQty += item.Quantity
			}
		}
		if p.Price.Amount <= 0 || targetQty <= 0 {
			excluded++
			continue
		}

		vpd := 0.0
		if p.Price.Amount > 0 {
			vpd = p.Value / p.Price.Amount
		}
		categoryValues := p.CategoryValues
		if rec, ok := rankings[p.ID]; ok {
			if rec.ValuePerDollar > 0 {
				vpd = rec.ValuePerDollar
			}
			if len(rec.CategoryValues) > 0 {
				categoryValues = rec.CategoryValues
			}
		}

		candidate := GoalCandidate{
			ID:             p.ID,
			Name:           p.Name,
			Price:          p.Price.Amount,
			ValuePerDollar: vpd,
			TargetQuantity: targetQty,
			IsReference:    p.IsReference,
			categoryValues: categoryValues,
		}
		cpu := candidate.costPerUnit()
		if !math.IsInf(cpu, 1) {
			v := cpu
			candidate.CostPerUnit = &v
		}
		if len(opts.Profile.Weights) > 0 {
			score := ComputeProfileScore(candidate.Price, candidate.ValuePerDollar, candidate.categoryValues, opts.Profile)
			candidate.ProfileScore = &score
		}
		candidates = append(candidates, candidate)
	}
	return candidates, excluded
}

// PlanGoal greedily accumulates the target item, cheapest cost-per-unit
// first (ties broken by descending profile score, or value per dollar when
// no weighted profile is supplied), until the target amount is met,
// candidates run out, or the budget blocks every remaining pack.
func PlanGoal(sitePacks []packs.SitePack, overall []PackAnalysis, opts GoalOptions) GoalPlanResult {
	candidates, excluded := BuildGoalCandidates(sitePacks, overall, opts)
	if len(candidates) == 0 {
		return GoalPlanResult{Summary: GoalPlanSummary{
			Target:                opts.TargetName,
			TargetAmountRequested: opts.TargetAmount,
			Budget:                opts.Budget,
			Currency:              opts.Currency,
			RemainingBudget:       opts.Budget,
			Considered:            0,
			Excluded:              excluded,
			Notes:                 []string{fmt.Sprintf("No packs contain item matching %q.", opts.TargetName)},
		}}
	}

	tieBreak := func(c GoalCandidate) float64 {
		if c.ProfileScore != nil {
			return *c.ProfileScore
		}
		return c.ValuePerDollar
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i].costPerUnit(), candidates[j].costPerUnit()
		if ci != cj {
			return ci < cj
		}
		return tieBreak(candidates[i]) > tieBreak(candidates[j])
	})

	var selected []GoalCandidate
	totalQty := 0.0
	spent := 0.0
	for _, c := range candidates {
		if opts.Budget != nil && spent+c.Price > *opts.Budget+1e-9 {
			continue
		}
		selected = append(selected, c)
		spent += c.Price
		totalQty += c.TargetQuantity
		if totalQty >= opts.TargetAmount {
			break
		}
	}

	var remaining *float64
	if opts.Budget != nil {
		v := round2(*opts.Budget - spent)
		remaining = &v
	}
	var effectiveCPU *float64
	if totalQty > 0 {
		v := math.Round(spent/totalQty*10000) / 10000
		effectiveCPU = &v
	}

	notes := []string{NoteTargetNotReached}
	if totalQty >= opts.TargetAmount {
		notes = []string{NoteTargetReached}
	}
	if remaining != nil && *remaining < 0 {
		notes = append(notes, NoteBudgetExceeded)
	}

	return GoalPlanResult{
		Selected: selected,
		Summary: GoalPlanSummary{
			Target:                opts.TargetName,
			TargetAmountRequested: opts.TargetAmount,
			TargetAmountObtained:  round2(totalQty),
			Budget:                opts.Budget,
			Currency:              opts.Currency,
			TotalSpent:            round2(spent),
			RemainingBudget:       remaining,
			EffectiveCostPerUnit:  effectiveCPU,
			Considered:            len(candidates),
			Excluded:              excluded,
			Notes:                 notes,
		},
	}
}
