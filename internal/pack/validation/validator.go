// Package validation checks valued pack data for pricing gaps, outliers,
// unknown items, and suspected duplicates, and writes a JSON report for
// review alongside the site export.
package validation

import (
	"fmt"
	"math"
	"sort"

	"github.com/mhollis/packworth/internal/pack/config"
	"github.com/mhollis/packworth/internal/pack/store"
	"github.com/mhollis/packworth/pkg/packs"
)

// PackIssue flags one pack with a pricing or valuation problem.
type PackIssue struct {
	PackID         string  `json:"pack_id"`
	PackName       string  `json:"pack_name"`
	Price          float64 `json:"price"`
	ValuePerDollar float64 `json:"value_per_dollar"`
	Detail         string  `json:"detail"`
}

// ItemIssue flags one item definition with a data problem.
type ItemIssue struct {
	ItemID   string   `json:"item_id"`
	ItemName string   `json:"item_name"`
	Detail   string   `json:"detail"`
	Packs    []string `json:"packs"`
}

// Summary counts the issues found in a validation pass.
type Summary struct {
	TotalPacks              int `json:"total_packs"`
	TotalItems              int `json:"total_items"`
	PacksMissingPrice       int `json:"num_packs_missing_price"`
	PacksInvalidPrice       int `json:"num_packs_invalid_price"`
	PacksExtremeVPD         int `json:"num_packs_extreme_value_per_dollar"`
	UnknownItems            int `json:"num_unknown_items"`
	DuplicatePacks          int `json:"num_duplicate_packs"`
}

// Report is the full validation output.
type Report struct {
	Summary           Summary     `json:"summary"`
	PacksMissingPrice []PackIssue `json:"packs_missing_price"`
	PacksInvalidPrice []PackIssue `json:"packs_invalid_price"`
	PacksExtremeVPD   []PackIssue `json:"packs_extreme_value_per_dollar"`
	UnknownItems      []ItemIssue `json:"unknown_items"`
	DuplicatePacks    [][]string  `json:"duplicate_packs"`
}

// stdThreshold is mean + multiplier * sample standard deviation. With fewer
// than two samples no outlier call can be made, so the threshold is +Inf.
func stdThreshold(values []float64, multiplier float64) float64 {
	if len(values) < 2 {
		return math.Inf(1)
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values) - 1)
	return mean + multiplier*math.Sqrt(variance)
}

// detectDuplicates groups packs sharing a price and an identical sorted
// item multiset. Each returned group holds two or more pack ids.
func detectDuplicates(sitePacks []packs.SitePack) [][]string {
	groups := map[string][]string{}
	var order []string
	for _, p := range sitePacks {
		entries := make([]string, 0, len(p.Items))
		for _, item := range p.Items {
			entries = append(entries, fmt.Sprintf("%s=%g", item.ID, item.Quantity))
		}
		sort.Strings(entries)
		key := fmt.Sprintf("%g|%v", p.Price.Amount, entries)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p.ID)
	}
	var duplicates [][]string
	for _, key := range order {
		if ids := groups[key]; len(ids) > 1 {
			duplicates = append(duplicates, ids)
		}
	}
	return duplicates
}

// Validate inspects site packs and item definitions and returns a report.
func Validate(sitePacks []packs.SitePack, items []packs.ItemDefinition, cfg *config.Validation) *Report {
	thresholdStd := 3.0
	if cfg != nil && cfg.ValuePerDollarThresholdStd > 0 {
		thresholdStd = cfg.ValuePerDollarThresholdStd
	}

	report := &Report{
		PacksMissingPrice: []PackIssue{},
		PacksInvalidPrice: []PackIssue{},
		PacksExtremeVPD:   []PackIssue{},
		UnknownItems:      []ItemIssue{},
		DuplicatePacks:    [][]string{},
	}
	report.Summary.TotalPacks = len(sitePacks)
	report.Summary.TotalItems = len(items)

	var vpdValues []float64
	for _, p := range sitePacks {
		switch {
		case p.Price.Amount == 0 && p.Price.Currency == "":
			report.PacksMissingPrice = append(report.PacksMissingPrice, PackIssue{
				PackID: p.ID, PackName: p.Name, ValuePerDollar: p.ValuePerDollar, Detail: "Missing price",
			})
		case p.Price.Amount <= 0:
			report.PacksInvalidPrice = append(report.PacksInvalidPrice, PackIssue{
				PackID: p.ID, PackName: p.Name, Price: p.Price.Amount, ValuePerDollar: p.ValuePerDollar, Detail: "Non-positive price",
			})
		default:
			vpdValues = append(vpdValues, p.ValuePerDollar)
		}
	}

	if len(vpdValues) > 0 {
		threshold := stdThreshold(vpdValues, thresholdStd)
		for _, p := range sitePacks {
			if p.Price.Amount > 0 && p.ValuePerDollar > threshold {
				report.PacksExtremeVPD = append(report.PacksExtremeVPD, PackIssue{
					PackID:         p.ID,
					PackName:       p.Name,
					Price:          p.Price.Amount,
					ValuePerDollar: p.ValuePerDollar,
					Detail:         fmt.Sprintf("VPD above threshold (%.2f > %.2f)", p.ValuePerDollar, threshold),
				})
			}
		}
	}

	for _, item := range items {
		if item.BaseValue == nil || *item.BaseValue == 0 {
			report.UnknownItems = append(report.UnknownItems, ItemIssue{
				ItemID:   item.ID,
				ItemName: item.Name,
				Detail:   "Missing or zero base value",
				Packs:    []string{},
			})
		}
	}

	report.DuplicatePacks = detectDuplicates(sitePacks)

	report.Summary.PacksMissingPrice = len(report.PacksMissingPrice)
	report.Summary.PacksInvalidPrice = len(report.PacksInvalidPrice)
	report.Summary.PacksExtremeVPD = len(report.PacksExtremeVPD)
	report.Summary.UnknownItems = len(report.UnknownItems)
	report.Summary.DuplicatePacks = len(report.DuplicatePacks)
	return report
}

// Export writes the report into the site directory.
func Export(st *store.Store, report *Report, filename string) (string, error) {
	if filename == "" {
		filename = "validation_report.json"
	}
	path := st.SitePath(filename)
	if err := store.SaveJSON(path, report); err != nil {
		return "", fmt.Errorf("exporting validation report: %w", err)
	}
	return path, nil
}
