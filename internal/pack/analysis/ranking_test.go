package analysis

import (
	"testing"

	"github.com/mhollis/packworth/internal/pack/config"
	"github.com/mhollis/packworth/pkg/packs"
)

func sitePack(id string, price, value float64, isRef bool, items ...packs.SiteItem) packs.SitePack {
	vpd := 0.0
	if price > 0 {
		vpd = value / price
	}
	return packs.SitePack{
		ID:             id,
		Name:           id,
		Price:          packs.SitePrice{Amount: price, Currency: "USD"},
		Value:          value,
		ValuePerDollar: vpd,
		IsReference:    isRef,
		Items:          items,
	}
}

func TestAnalyzePacksOrdering(t *testing.T) {
	cfg := &config.Analysis{ExcludeReference: true, MaxValuePerDollar: 20}
	input := []packs.SitePack{
		sitePack("low", 10, 50, false),
		sitePack("high", 10, 150, false),
		sitePack("ref", 10, 500, true),
	}
	overall, _ := AnalyzePacks(input, cfg)
	if len(overall) != 2 {
		t.Fatalf("expected reference pack excluded, got %d records", len(overall))
	}
	if overall[0].ID != "high" || overall[0].RankOverall != 1 {
		t.Fatalf("rank 1 = %+v", overall[0])
	}
	if overall[1].ID != "low" || overall[1].RankOverall != 2 {
		t.Fatalf("rank 2 = %+v", overall[1])
	}
	// vpd 15 of max 20 = 75.
	if overall[0].OverallScore != 75 {
		t.Fatalf("overall score = %v, want 75", overall[0].OverallScore)
	}
}

func TestAnalyzePacksFocusCategories(t *testing.T) {
	cfg := &config.Analysis{
		MaxValuePerDollar: 20,
		FocusCategories:   []string{"crystal"},
	}
	input := []packs.SitePack{
		sitePack("a", 10, 100, false, packs.SiteItem{ID: "x", Category: "crystal", Value: 100}),
		sitePack("b", 10, 100, false, packs.SiteItem{ID: "y", Category: "speedup", Value: 100}),
	}
	overall, byCategory := AnalyzePacks(input, cfg)
	ranks := byCategory["crystal"]
	if len(ranks) != 2 {
		t.Fatalf("expected 2 category ranks, got %d", len(ranks))
	}
	if ranks[0].ID != "a" {
		t.Fatalf("crystal rank 1 = %q, want a", ranks[0].ID)
	}
	// a: 100 crystal value / 10 price / 20 max * 100 = 50.
	if ranks[0].Score != 50 {
		t.Fatalf("crystal focus score = %v, want 50", ranks[0].Score)
	}
	for _, rec := range overall {
		if rec.ID == "a" && rec.CategoryRanks["crystal"] != 1 {
			t.Fatalf("category rank on record = %v", rec.CategoryRanks)
		}
	}
}

func TestAnalyzePacksMinPrice(t *testing.T) {
	cfg := &config.Analysis{MinPrice: 1, MaxValuePerDollar: 20}
	input := []packs.SitePack{
		sitePack("free", 0, 100, false),
		sitePack("paid", 5, 100, false),
	}
	overall, _ := AnalyzePacks(input, cfg)
	if len(overall) != 1 || overall[0].ID != "paid" {
		t.Fatalf("min price filter failed: %+v", overall)
	}
}

func TestComputeProfileScore(t *testing.T) {
	categoryValues := map[string]float64{"crystal": 50, "speedup": 20}
	profile := PlayerProfile{Name: "f2p", Weights: map[string]float64{"crystal": 1, "speedup": 0.5}}
	got := ComputeProfileScore(10, 7, categoryValues, profile)
	// (50*1 + 20*0.5) / 10 = 6.0
	if got != 6.0 {
		t.Fatalf("profile score = %v, want 6.0", got)
	}

	empty := PlayerProfile{Name: "default", Weights: map[string]float64{}}
	if got := ComputeProfileScore(10, 7, categoryValues, empty); got != 7 {
		t.Fatalf("empty-weight profile score = %v, want value per dollar 7", got)
	}

	if got := ComputeProfileScore(0, 7, categoryValues, profile); got != 0 {
		t.Fatalf("zero price weighted score = %v, want 0", got)
	}
}
