package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mhollis/packworth/pkg/packs"
)

// TextBlock is one unit of raw OCR output supplied by the external OCR
// collaborator: a source label (usually the screenshot file name) and the
// extracted text.
type TextBlock struct {
	Source string
	Text   string
}

var (
	priceAmountPattern = regexp.MustCompile(`([0-9]+(?:[.,][0-9]+)?)`)
	itemQtyFirst       = regexp.MustCompile(`^([0-9]+(?:[.,][0-9]+)?)\s*[xX]?\s*(.+)$`)
	itemQtyLast        = regexp.MustCompile(`^(.+?)\s*[xX]\s*([0-9]+(?:[.,][0-9]+)?)$`)
)

// ParseOCRText parses raw OCR text into a Pack. Line 1 is the pack name,
// lines containing a currency marker are price lines, and lines shaped like
// "<qty> [x] <name>" or "<name> x<qty>" become items. Unparseable lines are
// ignored.
func ParseOCRText(text, source, defaultCurrency string) *packs.Pack {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(ln); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	stem := fileStem(source)
	name := stem
	if len(lines) > 0 {
		name = lines[0]
	}

	price := 0.0
	currency := defaultCurrency
	var items []packs.PackItem

	rest := lines
	if len(lines) > 0 {
		rest = lines[1:]
	}
	for _, line := range rest {
		if isPriceLine(line) {
			amount, cur := parsePriceLine(line)
			if amount > 0 {
				price = amount
			}
			if cur != "" {
				currency = cur
			}
			continue
		}
		if itemName, qty, ok := parseItemLine(line); ok {
			items = append(items, packs.PackItem{
				ID:       packs.Slug(itemName),
				Name:     itemName,
				Quantity: qty,
				Category: "unknown",
			})
		}
	}

	priceSource := "ocr"
	if price == 0 {
		priceSource = "ocr|unpriced"
	}
	return &packs.Pack{
		ID:         packs.Slug(fmt.Sprintf("%s-%v-%s", name, price, stem)),
		Name:       name,
		Price:      price,
		Currency:   currency,
		SourceFile: source,
		Items:      items,
		Meta: map[string]any{
			"price_source":     priceSource,
			"ingestion_source": "ocr",
		},
	}
}

// IngestTextBlocks converts pre-extracted OCR text blocks into Packs.
func IngestTextBlocks(blocks []TextBlock, defaultCurrency string) []*packs.Pack {
	result := make([]*packs.Pack, 0, len(blocks))
	for _, block := range blocks {
		result = append(result, ParseOCRText(block.Text, block.Source, defaultCurrency))
	}
	return result
}

func isPriceLine(line string) bool {
	low := strings.ToLower(line)
	return strings.Contains(line, "$") || strings.Contains(line, "€") ||
		strings.Contains(low, "usd") || strings.Contains(low, "eur")
}

func parsePriceLine(line string) (float64, string) {
	currency := ""
	low := strings.ToLower(line)
	switch {
	case strings.Contains(line, "$"):
		currency = "USD"
	case strings.Contains(line, "€") || strings.Contains(low, "eur"):
		currency = "EUR"
	}
	m := priceAmountPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, currency
	}
	return Coerce(strings.ReplaceAll(m[1], ",", ".")), currency
}

func parseItemLine(line string) (string, float64, bool) {
	if m := itemQtyFirst.FindStringSubmatch(line); m != nil {
		qty := Coerce(strings.ReplaceAll(m[1], ",", "."))
		return strings.TrimSpace(m[2]), qty, true
	}
	if m := itemQtyLast.FindStringSubmatch(line); m != nil {
		qty := Coerce(strings.ReplaceAll(m[2], ",", "."))
		return strings.TrimSpace(m[1]), qty, true
	}
	return "", 0, false
}
