package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mhollis/packworth/internal/pack/store"
	"github.com/mhollis/packworth/pkg/packs"
)

const sampleCSV = `pack_name,item,quantity,price,gem per unit
Gold Pack,Fire Crystal,300,4.99,5
Gold Pack,Speedup,50,4.99,2
Silver Pack,Shards,10,0.99,3
`

func TestIngestAllFromCSV(t *testing.T) {
	dir := t.TempDir()
	st := store.New(dir)
	if err := os.MkdirAll(st.RawDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(st.RawDir(), "packs.csv"), []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultIngestionConfig(t)
	result, err := IngestAll(Options{Store: st, Config: cfg, Persist: true})
	if err != nil {
		t.Fatalf("IngestAll: %v", err)
	}
	if len(result.Packs) != 2 {
		t.Fatalf("expected 2 packs, got %d", len(result.Packs))
	}
	if result.RunID == "" {
		t.Error("expected a run id")
	}
	if len(result.Items) != 3 {
		t.Fatalf("expected 3 item definitions, got %d", len(result.Items))
	}

	var doc packs.ProcessedPacksDoc
	if err := store.LoadJSON(st.ProcessedPath(store.ProcessedPacksFile), &doc); err != nil {
		t.Fatalf("loading persisted packs: %v", err)
	}
	if len(doc.Packs) != 2 {
		t.Fatalf("persisted doc has %d packs, want 2", len(doc.Packs))
	}
	if doc.Packs[0].Items[0].BaseValue == nil || *doc.Packs[0].Items[0].BaseValue != 5 {
		t.Errorf("gem per unit column should carry base value 5, got %v", doc.Packs[0].Items[0].BaseValue)
	}
}

func TestIngestAllSkipsUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	st := store.New(dir)
	if err := os.MkdirAll(st.RawDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(st.RawDir(), "notes.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	result, err := IngestAll(Options{Store: st, Config: defaultIngestionConfig(t)})
	if err != nil {
		t.Fatalf("IngestAll: %v", err)
	}
	if len(result.Packs) != 0 {
		t.Fatalf("expected no packs, got %d", len(result.Packs))
	}
}

func TestBuildItemDefinitionsFirstOccurrenceWins(t *testing.T) {
	v1, v2 := 5.0, 9.0
	list := []*packs.Pack{
		{Items: []packs.PackItem{{ID: "fire-crystal", Name: "Fire Crystal", Category: "crystal", BaseValue: &v1}}},
		{Items: []packs.PackItem{{ID: "fire-crystal", Name: "Fire Crystal", Category: "other", BaseValue: &v2}}},
	}
	defs := BuildItemDefinitions(list)
	if len(defs) != 1 {
		t.Fatalf("expected 1 definition, got %d", len(defs))
	}
	if defs[0].Category != "crystal" || *defs[0].BaseValue != 5 {
		t.Errorf("first occurrence should win: %+v", defs[0])
	}
}
