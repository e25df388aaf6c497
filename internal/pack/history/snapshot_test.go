package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mhollis/packworth/internal/pack/store"
)

func TestSnapshotCopiesSiteFiles(t *testing.T) {
	st := store.New(t.TempDir())
	if err := os.MkdirAll(st.SiteDir(), 0o755); err != nil {
		t.Fatalf("creating site dir: %v", err)
	}
	for _, name := range []string{store.SitePacksFile, store.SiteItemsFile} {
		if err := os.WriteFile(st.SitePath(name), []byte(`{"packs":[]}`), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	snapDir, err := Snapshot(st, at)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	want := filepath.Join(st.HistoryDir(), "2026-03-14_092653", "site_data")
	if snapDir != want {
		t.Fatalf("snapshot dir = %q, want %q", snapDir, want)
	}
	for _, name := range []string{store.SitePacksFile, store.SiteItemsFile} {
		if _, err := os.Stat(filepath.Join(snapDir, name)); err != nil {
			t.Fatalf("%s not copied: %v", name, err)
		}
	}
	// Files that were never produced are skipped, not errors.
	if _, err := os.Stat(filepath.Join(snapDir, store.SiteValidationFile)); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be absent, got err=%v", store.SiteValidationFile, err)
	}
}

func TestListSnapshots(t *testing.T) {
	st := store.New(t.TempDir())
	names, err := ListSnapshots(st)
	if err != nil {
		t.Fatalf("ListSnapshots on empty store: %v", err)
	}
	if names != nil {
		t.Fatalf("expected no snapshots, got %v", names)
	}

	for _, stamp := range []string{"2026-03-14_092653", "2026-01-02_080000"} {
		if err := os.MkdirAll(filepath.Join(st.HistoryDir(), stamp), 0o755); err != nil {
			t.Fatalf("creating snapshot dir: %v", err)
		}
	}
	names, err = ListSnapshots(st)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(names) != 2 || names[0] != "2026-01-02_080000" || names[1] != "2026-03-14_092653" {
		t.Fatalf("snapshots = %v", names)
	}
}
