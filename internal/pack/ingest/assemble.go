package ingest

import (
	"fmt"
	"strings"

	"github.com/mhollis/packworth/pkg/packs"
)

// summaryRows maps summary-row item names (lowercased) to the pack metadata
// field they populate. Summary rows never become items.
var summaryRows = map[string]string{
	"gem total":         "gem_total",
	"pack %":            "pack_pct",
	"true pack value %": "true_pack_value_pct",
}

// ignoredRows are dropped silently.
var ignoredRows = map[string]bool{
	"exclude resources": true,
}

// Source identifies where a table's rows came from.
type Source struct {
	File  string
	Stem  string
	Sheet string
}

// Assemble groups normalized rows into de-duplicated Pack entities. Rows
// that share a pack id (slug of name + price + source stem) merge into the
// same pack with their items appended, which is how multi-row packs in a
// spreadsheet are reassembled.
func Assemble(rows []Row, src Source, imageMap map[int]string, isReference bool) []*packs.Pack {
	byID := map[string]*packs.Pack{}
	var order []string

	for _, row := range rows {
		packName := row.PackName
		if packName == "" {
			packName = "Unnamed Pack"
		}
		currency := strings.ToUpper(strings.TrimSpace(row.Currency))
		if currency == "" {
			currency = "USD"
		}

		id := packs.Slug(fmt.Sprintf("%s-%v-%s", packName, row.Price, src.Stem))
		pack := byID[id]
		if pack == nil {
			pack = &packs.Pack{
				ID:          id,
				Name:        packName,
				Price:       row.Price,
				Currency:    currency,
				SourceFile:  src.File,
				SourceSheet: src.Sheet,
				IsReference: isReference,
				Tags:        splitTags(row.Tags),
			}
			byID[id] = pack
			order = append(order, id)
		}

		lowered := strings.ToLower(strings.TrimSpace(row.ItemName))
		if field, ok := summaryRows[lowered]; ok {
			total := row.Extra["total"]
			if strings.TrimSpace(total) == "" {
				total = row.Extra["equivalent_gem_cost"]
			}
			pack.SetMeta(field, Coerce(total))
			continue
		}
		if ignoredRows[lowered] {
			continue
		}

		category := strings.ToLower(strings.TrimSpace(row.Category))
		if category == "" {
			category = "unknown"
		}

		item := packs.PackItem{
			ID:        packs.Slug(row.ItemName),
			Name:      row.ItemName,
			Quantity:  row.Quantity,
			Category:  category,
			SourceRow: row.SourceRow,
		}
		if icon, ok := imageMap[row.SourceRow]; ok && row.SourceRow > 0 {
			item.Icon = icon
		}
		if bv := baseValue(row); bv != 0 {
			v := bv
			item.BaseValue = &v
		}
		item.Meta = itemMeta(row)
		pack.Items = append(pack.Items, item)
	}

	result := make([]*packs.Pack, 0, len(order))
	for _, id := range order {
		result = append(result, byID[id])
	}
	return result
}

// baseValue resolves the per-unit value carried on the row, in priority
// order: gem_per_unit, gem_value, weighted_gem_value, equivalent_gem_cost
// divided by quantity. The first column present wins even if its cell is
// blank, so a blank gem_per_unit yields "no carried value" rather than
// falling through to a weaker column.
func baseValue(row Row) float64 {
	switch {
	case row.Has("gem_per_unit"):
		return row.Float("gem_per_unit")
	case row.Has("gem_value"):
		return row.Float("gem_value")
	case row.Has("weighted_gem_value"):
		return row.Float("weighted_gem_value")
	case row.Has("equivalent_gem_cost") && row.Quantity != 0:
		return row.Float("equivalent_gem_cost") / row.Quantity
	}
	return 0
}

func itemMeta(row Row) map[string]any {
	meta := map[string]any{}
	if row.Has("token_cost") {
		meta["token_cost"] = row.Float("token_cost")
	}
	if row.Has("equivalent_gem_cost") {
		meta["equivalent_gem_cost"] = row.Float("equivalent_gem_cost")
	}
	if total, ok := row.Extra["total"]; ok && strings.TrimSpace(total) != "" {
		meta["row_total"] = Coerce(total)
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

func splitTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(tags, ",") {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
