// Package history snapshots site exports into timestamped directories and
// diffs pack documents between runs.
package history

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mhollis/packworth/internal/pack/store"
)

// snapshotFiles are the site exports copied into each snapshot. Missing
// files are skipped so a partial run still snapshots cleanly.
var snapshotFiles = []string{
	store.SitePacksFile,
	store.SiteItemsFile,
	store.SiteAnalysisOverallFile,
	store.SiteAnalysisCategory,
	store.SiteValidationFile,
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// Snapshot copies the site exports into history/<timestamp>/site_data and
// returns the snapshot directory.
func Snapshot(st *store.Store, at time.Time, extraFiles ...string) (string, error) {
	if at.IsZero() {
		at = time.Now()
	}
	snapDir := filepath.Join(st.HistoryDir(), at.Format("2006-01-02_150405"), "site_data")
	if err := os.MkdirAll(snapDir, 0o755); err != nil {
		return "", fmt.Errorf("creating snapshot dir %s: %w", snapDir, err)
	}

	candidates := append(append([]string{}, snapshotFiles...), extraFiles...)
	for _, name := range candidates {
		src := st.SitePath(name)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := copyFile(src, filepath.Join(snapDir, name)); err != nil {
			return "", fmt.Errorf("snapshotting %s: %w", name, err)
		}
	}
	return snapDir, nil
}

// ListSnapshots returns snapshot directory names under the history root,
// oldest first. The timestamped naming makes lexical order chronological.
func ListSnapshots(st *store.Store) ([]string, error) {
	entries, err := os.ReadDir(st.HistoryDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
