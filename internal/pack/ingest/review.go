package ingest

import (
	"fmt"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mhollis/packworth/internal/pack/store"
	"github.com/mhollis/packworth/pkg/packs"
)

// ReviewEntry is one raw OCR pack awaiting human review. The _ocr suffixed
// fields hold the machine-read values; the reviewer adds corrected name,
// price, currency, and items fields (or marks the entry discarded) before
// the file is loaded back.
type ReviewEntry struct {
	ID          string       `json:"id"`
	SourceImage string       `json:"source_image"`
	NameOCR     string       `json:"name_ocr"`
	PriceOCR    float64      `json:"price_ocr"`
	CurrencyOCR string       `json:"currency_ocr"`
	ItemsOCR    []ReviewItem `json:"items_ocr"`
	Metadata    ReviewMeta   `json:"metadata"`
}

// ReviewItem is the minimal item form used in review files.
type ReviewItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// ReviewMeta records how the raw entry was produced.
type ReviewMeta struct {
	OCRLanguage string `json:"ocr_language"`
	Timestamp   string `json:"timestamp"`
}

// DumpRawOCRPacks writes OCR-detected packs to a review JSON file.
func DumpRawOCRPacks(path string, ocrPacks []*packs.Pack, lang string) error {
	entries := make([]ReviewEntry, 0, len(ocrPacks))
	for i, pack := range ocrPacks {
		id := pack.ID
		if id == "" {
			id = fmt.Sprintf("ocr_pack_%03d", i+1)
		}
		entry := ReviewEntry{
			ID:          id,
			SourceImage: pack.SourceFile,
			NameOCR:     pack.Name,
			PriceOCR:    pack.Price,
			CurrencyOCR: pack.Currency,
			Metadata: ReviewMeta{
				OCRLanguage: lang,
				Timestamp:   time.Now().UTC().Format(time.RFC3339),
			},
		}
		for _, item := range pack.Items {
			entry.ItemsOCR = append(entry.ItemsOCR, ReviewItem{Name: item.Name, Quantity: item.Quantity})
		}
		entries = append(entries, entry)
	}
	return store.SaveJSON(path, entries)
}

// LoadReviewedPacks reads a human-reviewed OCR file back into Packs. The
// file is hand-edited, so its shape is loose: the root may be an array or an
// object with a "packs" key, and reviewed fields fall back to their _ocr
// originals. Entries marked discarded and items with non-positive quantity
// are skipped. A missing file yields no packs.
func LoadReviewedPacks(path string) ([]*packs.Pack, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading review file %s: %w", path, err)
	}

	root := gjson.ParseBytes(data)
	entries := root
	if !root.IsArray() {
		entries = root.Get("packs")
	}

	var result []*packs.Pack
	entries.ForEach(func(_, entry gjson.Result) bool {
		if entry.Get("discarded").Bool() {
			return true
		}
		name := firstString(entry, "name", "name_ocr")
		if name == "" {
			name = "Unnamed Pack"
		}
		id := entry.Get("id").String()
		if id == "" {
			id = packs.Slug(name)
		}
		currency := firstString(entry, "currency", "currency_ocr")
		if currency == "" {
			currency = "USD"
		}

		items := entry.Get("items")
		if !items.Exists() {
			items = entry.Get("items_ocr")
		}
		var packItems []packs.PackItem
		idx := 0
		items.ForEach(func(_, it gjson.Result) bool {
			idx++
			qty := it.Get("quantity").Float()
			if qty <= 0 {
				return true
			}
			itemName := it.Get("name").String()
			if itemName == "" {
				itemName = fmt.Sprintf("Item %d", idx)
			}
			packItems = append(packItems, packs.PackItem{
				ID:       packs.Slug(itemName),
				Name:     itemName,
				Quantity: qty,
				Category: "unknown",
			})
			return true
		})

		result = append(result, &packs.Pack{
			ID:         id,
			Name:       name,
			Price:      entry.Get("price").Float(),
			Currency:   currency,
			SourceFile: entry.Get("source_image").String(),
			Items:      packItems,
			Meta:       map[string]any{"ingestion_source": "ocr_review"},
		})
		return true
	})
	return result, nil
}

func firstString(entry gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := entry.Get(key).String(); v != "" {
			return v
		}
	}
	return ""
}
