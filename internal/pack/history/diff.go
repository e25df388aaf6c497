package history

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mhollis/packworth/internal/pack/store"
	"github.com/mhollis/packworth/pkg/packs"
)

// valueTol is the tolerance below which value drift is ignored.
const valueTol = 1e-6

// PackSummary is the condensed view of a pack inside a diff.
type PackSummary struct {
	PackID         string  `json:"pack_id"`
	PackName       string  `json:"pack_name"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
	ValuePerDollar float64 `json:"value_per_dollar"`
	Value          float64 `json:"value"`
	IsReference    bool    `json:"is_reference"`
}

// PackChange records a pack whose price or value moved between snapshots.
type PackChange struct {
	PackID   string        `json:"pack_id"`
	PackName string        `json:"pack_name"`
	Before   ChangedFields `json:"before"`
	After    ChangedFields `json:"after"`
}

// ChangedFields holds the compared fields on one side of a change.
type ChangedFields struct {
	Price          float64 `json:"price"`
	ValuePerDollar float64 `json:"value_per_dollar"`
	Value          float64 `json:"value"`
}

// DiffSummary counts the differences between two snapshots.
type DiffSummary struct {
	PacksPrevious int `json:"num_packs_previous"`
	PacksCurrent  int `json:"num_packs_current"`
	NewPacks      int `json:"num_new_packs"`
	RemovedPacks  int `json:"num_removed_packs"`
	ChangedPacks  int `json:"num_changed_packs"`
}

// Diff is the full comparison between two pack documents.
type Diff struct {
	PreviousSnapshot string        `json:"previous_snapshot"`
	CurrentSnapshot  string        `json:"current_snapshot"`
	Summary          DiffSummary   `json:"summary"`
	NewPacks         []PackSummary `json:"new_packs"`
	RemovedPacks     []PackSummary `json:"removed_packs"`
	ChangedPacks     []PackChange  `json:"changed_packs"`
}

// packKey identifies a pack across snapshots, preferring its id and
// falling back to a name|price composite.
func packKey(p packs.SitePack) string {
	if p.ID != "" {
		return p.ID
	}
	return fmt.Sprintf("%s|%g", strings.ToLower(p.Name), p.Price.Amount)
}

func summarize(p packs.SitePack) PackSummary {
	return PackSummary{
		PackID:         p.ID,
		PackName:       p.Name,
		Price:          p.Price.Amount,
		Currency:       p.Price.Currency,
		ValuePerDollar: p.ValuePerDollar,
		Value:          p.Value,
		IsReference:    p.IsReference,
	}
}

// DiffPacks compares two packs.json files and reports new, removed, and
// changed packs.
func DiffPacks(previousPath, currentPath string) (*Diff, error) {
	var prevDoc, currDoc packs.SitePacksDoc
	if err := store.LoadJSON(previousPath, &prevDoc); err != nil {
		return nil, fmt.Errorf("loading previous snapshot: %w", err)
	}
	if err := store.LoadJSON(currentPath, &currDoc); err != nil {
		return nil, fmt.Errorf("loading current snapshot: %w", err)
	}

	prevMap := make(map[string]packs.SitePack, len(prevDoc.Packs))
	for _, p := range prevDoc.Packs {
		prevMap[packKey(p)] = p
	}
	currMap := make(map[string]packs.SitePack, len(currDoc.Packs))
	for _, p := range currDoc.Packs {
		currMap[packKey(p)] = p
	}

	diff := &Diff{
		PreviousSnapshot: previousPath,
		CurrentSnapshot:  currentPath,
		NewPacks:         []PackSummary{},
		RemovedPacks:     []PackSummary{},
		ChangedPacks:     []PackChange{},
	}

	var newKeys, removedKeys, commonKeys []string
	for key := range currMap {
		if _, ok := prevMap[key]; ok {
			commonKeys = append(commonKeys, key)
		} else {
			newKeys = append(newKeys, key)
		}
	}
	for key := range prevMap {
		if _, ok := currMap[key]; !ok {
			removedKeys = append(removedKeys, key)
		}
	}
	sort.Strings(newKeys)
	sort.Strings(removedKeys)
	sort.Strings(commonKeys)

	for _, key := range newKeys {
		diff.NewPacks = append(diff.NewPacks, summarize(currMap[key]))
	}
	for _, key := range removedKeys {
		diff.RemovedPacks = append(diff.RemovedPacks, summarize(prevMap[key]))
	}
	for _, key := range commonKeys {
		prev, curr := prevMap[key], currMap[key]
		if prev.Price.Amount != curr.Price.Amount ||
			math.Abs(prev.ValuePerDollar-curr.ValuePerDollar) > valueTol ||
			math.Abs(prev.Value-curr.Value) > valueTol {
			diff.ChangedPacks = append(diff.ChangedPacks, PackChange{
				PackID:   curr.ID,
				PackName: curr.Name,
				Before:   ChangedFields{Price: prev.Price.Amount, ValuePerDollar: prev.ValuePerDollar, Value: prev.Value},
				After:    ChangedFields{Price: curr.Price.Amount, ValuePerDollar: curr.ValuePerDollar, Value: curr.Value},
			})
		}
	}

	diff.Summary = DiffSummary{
		PacksPrevious: len(prevDoc.Packs),
		PacksCurrent:  len(currDoc.Packs),
		NewPacks:      len(diff.NewPacks),
		RemovedPacks:  len(diff.RemovedPacks),
		ChangedPacks:  len(diff.ChangedPacks),
	}
	return diff, nil
}
