package analysis

import "testing"

func TestPlanBudgetGreedy(t *testing.T) {
	candidates := []PlannedPack{
		{ID: "a", Name: "A", Price: 10, TotalValue: 100, ValuePerDollar: 10},
		{ID: "b", Name: "B", Price: 15, TotalValue: 120, ValuePerDollar: 8},
		{ID: "c", Name: "C", Price: 20, TotalValue: 100, ValuePerDollar: 5},
	}
	selected, summary := PlanBudget(candidates, BudgetOptions{Budget: 30, Currency: "USD"})
	if len(selected) != 2 {
		t.Fatalf("expected 2 packs, got %d", len(selected))
	}
	if selected[0].ID != "a" || selected[1].ID != "b" {
		t.Fatalf("selected order = %q, %q; want a, b", selected[0].ID, selected[1].ID)
	}
	if summary.TotalSpent != 25 {
		t.Fatalf("total spent = %v, want 25", summary.TotalSpent)
	}
	if summary.RemainingBudget != 5 {
		t.Fatalf("remaining = %v, want 5", summary.RemainingBudget)
	}
	if summary.TotalValue != 220 {
		t.Fatalf("total value = %v, want 220", summary.TotalValue)
	}
	if summary.Considered != 3 {
		t.Fatalf("considered = %d, want 3", summary.Considered)
	}
}

func TestPlanBudgetExcludesUnusable(t *testing.T) {
	candidates := []PlannedPack{
		{ID: "free", Price: 0, ValuePerDollar: 10},
		{ID: "worthless", Price: 5, ValuePerDollar: 0},
		{ID: "ref", Price: 5, TotalValue: 50, ValuePerDollar: 10, IsReference: true},
		{ID: "good", Price: 5, TotalValue: 50, ValuePerDollar: 10},
	}
	selected, summary := PlanBudget(candidates, BudgetOptions{Budget: 100})
	if len(selected) != 1 || selected[0].ID != "good" {
		t.Fatalf("selected = %+v", selected)
	}
	if summary.Excluded != 3 {
		t.Fatalf("excluded = %d, want 3", summary.Excluded)
	}
}

func TestPlanBudgetIncludeReference(t *testing.T) {
	candidates := []PlannedPack{
		{ID: "ref", Price: 5, TotalValue: 50, ValuePerDollar: 10, IsReference: true},
	}
	selected, _ := PlanBudget(candidates, BudgetOptions{Budget: 10, IncludeReference: true})
	if len(selected) != 1 {
		t.Fatalf("reference pack should be selectable when included, got %d", len(selected))
	}
}

func TestPlanBudgetMaxCount(t *testing.T) {
	candidates := []PlannedPack{
		{ID: "a", Price: 1, TotalValue: 10, ValuePerDollar: 10},
		{ID: "b", Price: 1, TotalValue: 9, ValuePerDollar: 9},
		{ID: "c", Price: 1, TotalValue: 8, ValuePerDollar: 8},
	}
	selected, _ := PlanBudget(candidates, BudgetOptions{Budget: 100, MaxCount: 2})
	if len(selected) != 2 {
		t.Fatalf("max count ignored: got %d packs", len(selected))
	}
}

func TestPlanBudgetWeightedProfilePrefersCategory(t *testing.T) {
	candidates := []PlannedPack{
		{ID: "speed", Price: 10, TotalValue: 120, ValuePerDollar: 12, categoryValues: map[string]float64{"speedup": 120}},
		{ID: "crystal", Price: 10, TotalValue: 100, ValuePerDollar: 10, categoryValues: map[string]float64{"crystal": 100}},
	}
	profile := PlayerProfile{Name: "crystal_fan", Weights: map[string]float64{"crystal": 1}}
	selected, _ := PlanBudget(candidates, BudgetOptions{Budget: 10, Profile: profile})
	if len(selected) != 1 || selected[0].ID != "crystal" {
		t.Fatalf("weighted profile should prefer crystal pack, got %+v", selected)
	}
}
