package valuation

import (
	"strings"
	"testing"

	"github.com/mhollis/packworth/internal/pack/config"
	"github.com/mhollis/packworth/pkg/packs"
)

func defaultValuationConfig(t *testing.T) *config.Valuation {
	t.Helper()
	cfg, err := config.LoadValuation("")
	if err != nil {
		t.Fatalf("LoadValuation: %v", err)
	}
	return cfg
}

func TestInferPriceExplicitWins(t *testing.T) {
	cfg := defaultValuationConfig(t)
	e := New(cfg, nil)
	pack := &packs.Pack{Name: "Gold Pack", Price: 4.99, Currency: "USD"}
	price, source := e.InferPrice(pack)
	if price != 4.99 {
		t.Fatalf("price = %v, want 4.99", price)
	}
	// An exact tier price still records the snap.
	if source != "pack|snap:usd_default" {
		t.Fatalf("source = %q, want pack|snap:usd_default", source)
	}
}

func TestInferPriceHintSnapsToTier(t *testing.T) {
	cfg := defaultValuationConfig(t)
	cfg.PriceHints = map[string]config.PriceHint{
		"value pack": {Amount: 10.0, Currency: "USD"},
	}
	e := New(cfg, nil)
	pack := &packs.Pack{Name: "Great Value Pack", Currency: "USD"}
	price, source := e.InferPrice(pack)
	if price != 9.99 {
		t.Fatalf("price = %v, want 9.99 (hint 10.0 snapped)", price)
	}
	if source != "hint:value pack|snap:usd_default" {
		t.Fatalf("source = %q", source)
	}
	if pack.Meta["price_source"] != source {
		t.Fatalf("price_source meta = %v", pack.Meta["price_source"])
	}
}

func TestInferPriceFromGemTotalEUR(t *testing.T) {
	cfg := defaultValuationConfig(t)
	e := New(cfg, nil)
	pack := &packs.Pack{Name: "Euro Pack", Currency: "EUR"}
	pack.SetMeta("gem_total", 1800.0)

	price, source := e.InferPrice(pack)
	// 1800 gems / 300 per USD = 6.00, snapped to the 5.99 EUR tier.
	if price != 5.99 {
		t.Fatalf("price = %v, want 5.99", price)
	}
	if !strings.HasPrefix(source, "gem_total|snap:") {
		t.Fatalf("source = %q, want gem_total|snap:*", source)
	}
}

func TestInferPriceGemTotalFromRowTotals(t *testing.T) {
	cfg := defaultValuationConfig(t)
	e := New(cfg, nil)
	pack := &packs.Pack{
		Name:     "Row Total Pack",
		Currency: "USD",
		Items: []packs.PackItem{
			{ID: "a", Name: "A", Meta: map[string]any{"row_total": 900.0}},
			{ID: "b", Name: "B", Meta: map[string]any{"row_total": 600.0}},
		},
	}
	price, source := e.InferPrice(pack)
	// 1500 gems / 300 per USD = 5.00, snapped to 4.99.
	if price != 4.99 {
		t.Fatalf("price = %v, want 4.99", price)
	}
	if !strings.HasPrefix(source, "gem_total") {
		t.Fatalf("source = %q, want gem_total prefix", source)
	}
}

func TestSnapMaxDeltaBlocksFarSnap(t *testing.T) {
	cfg := defaultValuationConfig(t)
	delta := 0.1
	cfg.PriceInference.SnapMaxDelta = &delta
	e := New(cfg, nil)
	pack := &packs.Pack{Name: "Odd Price", Price: 7.5, Currency: "USD"}
	price, source := e.InferPrice(pack)
	if price != 7.5 {
		t.Fatalf("price = %v, want 7.5 (snap blocked by delta)", price)
	}
	if source != "pack" {
		t.Fatalf("source = %q, want pack", source)
	}
}

func TestInferPriceFallback(t *testing.T) {
	cfg := defaultValuationConfig(t)
	cfg.PriceInference.UseGemTotalWhenMissing = false
	cfg.PriceDefaults.FallbackPrice = 1.23
	cfg.PriceInference.SnapToTiers = false
	e := New(cfg, nil)
	pack := &packs.Pack{Name: "No Signals"}
	price, source := e.InferPrice(pack)
	if price != 1.23 {
		t.Fatalf("price = %v, want 1.23", price)
	}
	if source != "fallback" {
		t.Fatalf("source = %q, want fallback", source)
	}
}

func TestGemTotalTierMatching(t *testing.T) {
	cfg := defaultValuationConfig(t)
	cfg.PriceInference.Tiers = []config.Tier{
		{
			Name:      "usd_gems",
			Currency:  "USD",
			Prices:    []float64{4.99, 9.99},
			GemTotals: map[string]float64{"4.99": 1500, "9.99": 3200},
		},
	}
	e := New(cfg, nil)
	pack := &packs.Pack{Name: "Gem Pack", Currency: "USD"}
	pack.SetMeta("gem_total", 1520.0)
	price, source := e.InferPrice(pack)
	if price != 4.99 {
		t.Fatalf("price = %v, want 4.99 from gem-total tier match", price)
	}
	if !strings.HasSuffix(source, "snap:usd_gems") {
		t.Fatalf("source = %q", source)
	}
}
