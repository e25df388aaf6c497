package ingest

import (
	"strconv"
	"strings"
)

// columnAliases maps cleaned header text (lowercased, whitespace replaced by
// underscores, parentheses stripped) to canonical field names. Headers with
// no alias pass through unchanged so provenance columns like
// equivalent_gem_cost survive to the assembler.
var columnAliases = map[string]string{
	"pack":        "pack_name",
	"bundle":      "pack_name",
	"bundle_name": "pack_name",
	"name":        "pack_name",
	"price":       "price",
	"price_usd":   "price",
	"price$":      "price",
	"cost":        "price",
	"usd":         "price",
	"currency":    "currency",
	"$":           "currency",
	"item":        "item_name",
	"items":       "item_name",
	"reward":      "item_name",
	"quantity":    "quantity",
	"qty":         "quantity",
	"amount":      "quantity",
	"count":       "quantity",
	"category":    "category",
	"type":        "category",
	"tag":         "tags",
	"tags":        "tags",
	"note":        "notes",
	"gems_per_unit": "gem_per_unit",
}

// canonical fields pulled out of Extra into Row fields.
var canonicalFields = map[string]bool{
	"pack_name": true,
	"item_name": true,
	"quantity":  true,
	"price":     true,
	"currency":  true,
	"category":  true,
	"tags":      true,
	"notes":     true,
}

// Row is the canonical normalized line-item row. Extra carries every
// pass-through column keyed by its normalized header; a key is present
// whenever the source table had the column, even if the cell was blank.
type Row struct {
	PackName  string
	ItemName  string
	Quantity  float64
	Price     float64
	Currency  string
	Category  string
	Tags      string
	Notes     string
	SourceRow int
	Extra     map[string]string
}

// Has reports whether the source table carried the named pass-through column.
func (r Row) Has(column string) bool {
	_, ok := r.Extra[column]
	return ok
}

// Float coerces a pass-through column to a number (0 for garbage or absence).
func (r Row) Float(column string) float64 {
	return Coerce(r.Extra[column])
}

// NormalizeHeader cleans one header cell and resolves its alias.
func NormalizeHeader(h string) string {
	key := strings.ToLower(strings.TrimSpace(h))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "(", "")
	key = strings.ReplaceAll(key, ")", "")
	if alias, ok := columnAliases[key]; ok {
		return alias
	}
	return key
}

// Normalize maps a detected table onto canonical rows, filling missing
// fields from the supplied per-table defaults.
func Normalize(t Table, defaultPackName, defaultCurrency string) []Row {
	headers := make([]string, len(t.Header))
	for i, h := range t.Header {
		headers[i] = NormalizeHeader(h)
	}

	hasColumn := map[string]bool{}
	for _, h := range headers {
		hasColumn[h] = true
	}

	rows := make([]Row, 0, len(t.Rows))
	for i, raw := range t.Rows {
		cells := map[string]string{}
		for c, h := range headers {
			if c < len(raw) {
				cells[h] = strings.TrimSpace(raw[c])
			} else {
				cells[h] = ""
			}
		}

		packName := cells["pack_name"]
		if packName == "" && hasColumn["event_shop"] {
			packName = cells["event_shop"]
		}
		if packName == "" && !hasColumn["event_shop"] && hasColumn["shop_type"] {
			packName = cells["shop_type"]
		}
		if packName == "" {
			packName = defaultPackName
		}

		itemName := cells["item_name"]
		if itemName == "" {
			itemName = "Unknown Item"
		}
		currency := cells["currency"]
		if currency == "" {
			currency = defaultCurrency
		}

		extra := map[string]string{}
		for h, v := range cells {
			if !canonicalFields[h] {
				extra[h] = v
			}
		}

		sourceRow := 0
		if i < len(t.RowNumbers) {
			sourceRow = t.RowNumbers[i]
		}

		rows = append(rows, Row{
			PackName:  strings.TrimSpace(packName),
			ItemName:  strings.TrimSpace(itemName),
			Quantity:  Coerce(cells["quantity"]),
			Price:     Coerce(cells["price"]),
			Currency:  currency,
			Category:  cells["category"],
			Tags:      cells["tags"],
			Notes:     cells["notes"],
			SourceRow: sourceRow,
			Extra:     extra,
		})
	}
	return rows
}

// Coerce parses a numeric cell, stripping currency symbols and thousands
// separators. Garbage resolves to 0 rather than an error: this workflow
// favors completeness over strictness.
func Coerce(s string) float64 {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, "€", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}
