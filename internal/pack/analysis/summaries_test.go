package analysis

import (
	"strings"
	"testing"

	"github.com/mhollis/packworth/pkg/packs"
)

func TestPercentile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	if got := percentile(values, 0.5); got != 3 {
		t.Fatalf("p50 = %v, want 3", got)
	}
	if got := percentile(values, 0.75); got != 4 {
		t.Fatalf("p75 = %v, want 4", got)
	}
	if got := percentile([]float64{7}, 0.9); got != 7 {
		t.Fatalf("single-value percentile = %v, want 7", got)
	}
	if got := percentile(nil, 0.9); got != 0 {
		t.Fatalf("empty percentile = %v, want 0", got)
	}
}

func TestGeneratePackSummaryFallback(t *testing.T) {
	got := GeneratePackSummary(0, 0, 0, nil, SummaryContext{})
	if got != fallbackSummary {
		t.Fatalf("summary = %q", got)
	}
}

func TestGenerateAllPackSummaries(t *testing.T) {
	input := []packs.SitePack{
		sitePack("best", 10, 200, false),
		sitePack("mid", 10, 100, false),
		sitePack("worst", 10, 10, false),
	}
	summaries := GenerateAllPackSummaries(input, "f2p")
	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(summaries))
	}
	if !strings.Contains(summaries["best"], "exceptional overall value") {
		t.Fatalf("best summary = %q", summaries["best"])
	}
	if !strings.Contains(summaries["best"], "F2P") {
		t.Fatalf("profile hint missing: %q", summaries["best"])
	}
	if !strings.Contains(summaries["worst"], "average or situational value") {
		t.Fatalf("worst summary = %q", summaries["worst"])
	}
}

func TestGenerateAllPackSummariesCategoryPhrase(t *testing.T) {
	strong := sitePack("strong", 10, 100, false)
	strong.CategoryValues = map[string]float64{"hero_gear": 100}
	weak := sitePack("weak", 10, 100, false)
	weak.CategoryValues = map[string]float64{"hero_gear": 10}

	summaries := GenerateAllPackSummaries([]packs.SitePack{strong, weak}, "")
	if !strings.Contains(summaries["strong"], "Hero Gear") {
		t.Fatalf("category label missing: %q", summaries["strong"])
	}
}
