package analysis

import "testing"

func TestLoadPlannerPresets(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "planner_presets.yaml", `presets:
  - key: starter_budget
    label: Starter Budget
    mode: budget
    budget: 20.0
    profile: f2p
  - key: fire_crystal_push
    label: Fire Crystal Push
    mode: goal
    target_item: fire crystal
    target_amount: 500
`)
	presets, err := LoadPlannerPresets(path)
	if err != nil {
		t.Fatalf("LoadPlannerPresets: %v", err)
	}
	if len(presets) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(presets))
	}
	if presets[0].Key != "starter_budget" || presets[0].Budget == nil || *presets[0].Budget != 20 {
		t.Fatalf("preset 0 = %+v", presets[0])
	}
	if presets[1].Mode != "goal" || presets[1].TargetAmount != 500 {
		t.Fatalf("preset 1 = %+v", presets[1])
	}
}

func TestLoadPlannerPresetsMissingFile(t *testing.T) {
	presets, err := LoadPlannerPresets("/nonexistent/planner_presets.yaml")
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if presets != nil {
		t.Fatalf("expected nil presets, got %v", presets)
	}
}

func TestFindPreset(t *testing.T) {
	presets := []PlannerPreset{{Key: "starter_budget"}, {Key: "whale_weekly"}}
	if _, ok := FindPreset(presets, "Starter_Budget"); !ok {
		t.Fatal("case-insensitive lookup failed")
	}
	if _, ok := FindPreset(presets, "missing"); ok {
		t.Fatal("unexpected match for missing key")
	}
}

func TestLoadPlannerPresetsDefaultMode(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "presets.yaml", `presets:
  - key: plain
    label: Plain
`)
	presets, err := LoadPlannerPresets(path)
	if err != nil {
		t.Fatalf("LoadPlannerPresets: %v", err)
	}
	if presets[0].Mode != "budget" {
		t.Fatalf("default mode = %q, want budget", presets[0].Mode)
	}
}
