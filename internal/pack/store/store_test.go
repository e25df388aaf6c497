package store

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveLoadJSONRoundTrip(t *testing.T) {
	type payload struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	path := filepath.Join(t.TempDir(), "nested", "dir", "doc.json")
	if err := SaveJSON(path, payload{Name: "Mega Pack", Price: 4.99}); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	var got payload
	if err := LoadJSON(path, &got); err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if got.Name != "Mega Pack" || got.Price != 4.99 {
		t.Fatalf("round trip = %+v", got)
	}
}

func TestLoadJSONMissingFile(t *testing.T) {
	var v map[string]any
	if err := LoadJSON(filepath.Join(t.TempDir(), "absent.json"), &v); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadArtifactMissing(t *testing.T) {
	var v map[string]any
	err := LoadArtifact(filepath.Join(t.TempDir(), "packs.json"), &v, "run")
	if !errors.Is(err, ErrArtifactMissing) {
		t.Fatalf("error = %v, want ErrArtifactMissing", err)
	}
	if !strings.Contains(err.Error(), `(run "run" first)`) {
		t.Fatalf("error message = %q", err.Error())
	}
}

func TestStorePaths(t *testing.T) {
	st := New("/data")
	if got := st.SitePath(SitePacksFile); got != filepath.Join("/data", "site_data", "packs.json") {
		t.Fatalf("SitePath = %q", got)
	}
	if got := st.ProcessedPath(ProcessedItemsFile); got != filepath.Join("/data", "data_processed", "items.json") {
		t.Fatalf("ProcessedPath = %q", got)
	}
	if got := st.HistoryDir(); got != filepath.Join("/data", "history") {
		t.Fatalf("HistoryDir = %q", got)
	}
}
