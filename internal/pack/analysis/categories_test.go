package analysis

import (
	"testing"

	"github.com/mhollis/packworth/pkg/packs"
)

func TestLoadItemCategoryConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "item_categories.yaml", `categories:
  hero_gear:
    match:
      name_contains: ["Gear", "Exclusive Weapon"]
  fire_crystal:
    match:
      name_exact: ["Fire Crystal"]
`)
	cfg, err := LoadItemCategoryConfig(path)
	if err != nil {
		t.Fatalf("LoadItemCategoryConfig: %v", err)
	}
	if len(cfg.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cfg.Categories))
	}
	// Tokens are lowercased on load.
	if cfg.Categories["hero_gear"].NameContains[0] != "gear" {
		t.Fatalf("rules not lowercased: %v", cfg.Categories["hero_gear"])
	}
}

func TestClassifyItem(t *testing.T) {
	cfg := ItemCategoryConfig{Categories: map[string]CategoryRule{
		"hero_gear":    {NameContains: []string{"gear"}},
		"fire_crystal": {NameExact: []string{"fire crystal"}},
	}}

	if got := cfg.ClassifyItem("Mythic Gear Chest", ""); len(got) != 1 || got[0] != "hero_gear" {
		t.Fatalf("substring classify = %v", got)
	}
	if got := cfg.ClassifyItem("Fire Crystal", "fire-crystal"); len(got) != 1 || got[0] != "fire_crystal" {
		t.Fatalf("exact classify = %v", got)
	}
	if got := cfg.ClassifyItem("Fire Crystal Chest", ""); len(got) != 0 {
		t.Fatalf("exact rule must not substring-match, got %v", got)
	}
	if got := cfg.ClassifyItem("Wood", ""); len(got) != 0 {
		t.Fatalf("unmatched item classified: %v", got)
	}
}

func TestAggregateCategoryValues(t *testing.T) {
	cfg := ItemCategoryConfig{Categories: map[string]CategoryRule{
		"hero_gear": {NameContains: []string{"gear"}},
	}}
	items := []packs.PackItem{
		{ID: "gear-chest", Name: "Gear Chest", Category: "chest"},
		{ID: "wood", Name: "Wood", Category: "resource"},
	}
	breakdown := map[string]float64{"gear-chest": 80, "wood": 20}
	totals := cfg.AggregateCategoryValues(items, breakdown)
	if totals["hero_gear"] != 80 {
		t.Fatalf("hero_gear total = %v, want 80", totals["hero_gear"])
	}
	// Base category always counts too.
	if totals["chest"] != 80 {
		t.Fatalf("chest total = %v, want 80", totals["chest"])
	}
	if totals["resource"] != 20 {
		t.Fatalf("resource total = %v, want 20", totals["resource"])
	}
}
