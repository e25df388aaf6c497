// Package config loads the toolkit's YAML configuration surfaces.
//
// Every loader follows the same layering: built-in defaults are registered
// first, an optional YAML file is merged over them, and the result is
// unmarshalled once into an immutable typed struct. A missing file yields the
// pure defaults; a malformed file is an error.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Valuation is the resolved item/category/price configuration.
type Valuation struct {
	Items          map[string]ItemOverride   `mapstructure:"items"`
	Categories     map[string]CategoryConfig `mapstructure:"categories"`
	PriceDefaults  PriceDefaults             `mapstructure:"price_defaults"`
	PriceInference PriceInference            `mapstructure:"price_inference"`
	Scoring        Scoring                   `mapstructure:"valuation"`

	// RawPriceHints holds the hint table as loaded; entries may be plain
	// numbers or {amount, currency} objects. Use PriceHints after Load.
	RawPriceHints map[string]any `mapstructure:"pack_price_hints"`

	// PriceHints is the normalized hint table, keyed by lowercase hint text.
	PriceHints map[string]PriceHint `mapstructure:"-"`
}

// ItemOverride pins an explicit value and category for a named item.
type ItemOverride struct {
	Category  string  `mapstructure:"category"`
	BaseValue float64 `mapstructure:"base_value"`
}

// CategoryConfig holds per-category valuation parameters.
type CategoryConfig struct {
	// BaseValue is the per-unit value applied when neither an item override
	// nor a carried row value is available. Nil means "no category value".
	BaseValue  *float64 `mapstructure:"base_value"`
	Multiplier float64  `mapstructure:"multiplier"`
}

// PriceDefaults supplies the currency and fallback price for packs whose
// price cannot be inferred.
type PriceDefaults struct {
	Currency      string  `mapstructure:"currency"`
	FallbackPrice float64 `mapstructure:"fallback_price"`
}

// PriceHint maps a pack-name fragment to a known price.
type PriceHint struct {
	Amount   float64
	Currency string
}

// PriceInference controls how missing prices are derived.
type PriceInference struct {
	UseGemTotalWhenMissing bool     `mapstructure:"use_gem_total_when_missing"`
	GemValuePerUSD         float64  `mapstructure:"gem_value_per_usd"`
	SnapToTiers            bool     `mapstructure:"snap_to_tiers"`
	SnapMaxDelta           *float64 `mapstructure:"snap_max_delta"`
	Tiers                  []Tier   `mapstructure:"tiers"`
}

// Tier is one currency-scoped list of canonical storefront prices. GemTotals
// optionally maps a price (as its decimal string, e.g. "4.99") to the gem
// total that price buys, enabling gem-total based snapping.
type Tier struct {
	Name      string             `mapstructure:"name"`
	Currency  string             `mapstructure:"currency"`
	Prices    []float64          `mapstructure:"prices"`
	GemTotals map[string]float64 `mapstructure:"gem_totals"`
}

// Scoring maps value/price ratios onto the bounded 0-100 score.
type Scoring struct {
	RatioScale RatioScale  `mapstructure:"ratio_scale"`
	ScoreBands []ScoreBand `mapstructure:"score_bands"`
}

// RatioScale bounds the ratio-to-score mapping.
type RatioScale struct {
	TargetRatio float64 `mapstructure:"target_ratio"`
	MaxRatio    float64 `mapstructure:"max_ratio"`
}

// ScoreBand labels a score range starting at Min.
type ScoreBand struct {
	Min   float64 `mapstructure:"min"`
	Label string  `mapstructure:"label"`
	Color string  `mapstructure:"color"`
}

func valuationDefaults(v *viper.Viper) {
	v.SetDefault("categories", map[string]any{
		"unknown": map[string]any{"base_value": 0.0, "multiplier": 1.0},
	})
	v.SetDefault("price_defaults.currency", "USD")
	v.SetDefault("price_defaults.fallback_price", 0.0)
	v.SetDefault("price_inference.use_gem_total_when_missing", true)
	v.SetDefault("price_inference.gem_value_per_usd", 300.0)
	v.SetDefault("price_inference.snap_to_tiers", true)
	v.SetDefault("price_inference.snap_max_delta", 3.0)
	v.SetDefault("price_inference.tiers", []map[string]any{
		{
			"name":     "usd_default",
			"currency": "USD",
			"prices":   []float64{0.99, 2.99, 4.99, 9.99, 14.99, 19.99, 24.99, 49.99, 74.99, 99.99},
		},
		{
			"name":     "eur_default",
			"currency": "EUR",
			"prices":   []float64{5.99, 10.99, 21.99, 54.99, 109.99},
		},
	})
	v.SetDefault("valuation.ratio_scale.target_ratio", 5.0)
	v.SetDefault("valuation.ratio_scale.max_ratio", 10.0)
	v.SetDefault("valuation.score_bands", []map[string]any{
		{"min": 0, "label": "Trash", "color": "#d11141"},
		{"min": 25, "label": "Bad", "color": "#f37735"},
		{"min": 50, "label": "Okay", "color": "#ffc425"},
		{"min": 70, "label": "Good", "color": "#00b159"},
		{"min": 85, "label": "Excellent", "color": "#00a388"},
	})
}

// LoadValuation reads the valuation config from path (may be empty or point
// to a missing file, in which case built-in defaults are returned).
func LoadValuation(path string) (*Valuation, error) {
	v, err := read(path, valuationDefaults)
	if err != nil {
		return nil, err
	}
	cfg := &Valuation{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing valuation config: %w", err)
	}
	cfg.finalize()
	return cfg, nil
}

func (c *Valuation) finalize() {
	if c.Categories == nil {
		c.Categories = map[string]CategoryConfig{}
	}
	for name, cat := range c.Categories {
		if cat.Multiplier == 0 {
			cat.Multiplier = 1.0
			c.Categories[name] = cat
		}
	}
	c.PriceHints = normalizeHints(c.RawPriceHints, c.PriceDefaults.Currency)
}

// normalizeHints accepts both plain-number and {amount, currency} hint forms.
func normalizeHints(raw map[string]any, defaultCurrency string) map[string]PriceHint {
	hints := make(map[string]PriceHint, len(raw))
	for key, val := range raw {
		switch h := val.(type) {
		case float64:
			hints[key] = PriceHint{Amount: h, Currency: defaultCurrency}
		case int:
			hints[key] = PriceHint{Amount: float64(h), Currency: defaultCurrency}
		case map[string]any:
			hint := PriceHint{Currency: defaultCurrency}
			switch amt := h["amount"].(type) {
			case float64:
				hint.Amount = amt
			case int:
				hint.Amount = float64(amt)
			}
			if cur, ok := h["currency"].(string); ok && cur != "" {
				hint.Currency = cur
			}
			hints[key] = hint
		}
	}
	return hints
}

// Ingestion configures the tabular ingestion stage.
type Ingestion struct {
	DefaultCurrency   string            `mapstructure:"default_currency"`
	ReferenceHandling ReferenceHandling `mapstructure:"reference_handling"`
	Splitter          Splitter          `mapstructure:"splitter"`
}

// ReferenceHandling controls how reference/library tables are treated.
// Mode is one of "tag", "exclude", or "separate".
type ReferenceHandling struct {
	Mode              string   `mapstructure:"mode"`
	SheetNamePatterns []string `mapstructure:"sheet_name_patterns"`
}

// Splitter tunes the logical-table detection. The thresholds are deliberate
// tunables: lowering HeaderScoreThreshold makes ordinary name or price rows
// false-positive as headers, and the blank-run threshold decides when a
// table body ends.
type Splitter struct {
	HeaderScoreThreshold int      `mapstructure:"header_score_threshold"`
	BlankRunThreshold    int      `mapstructure:"blank_run_threshold"`
	HeaderKeywords       []string `mapstructure:"header_keywords"`
}

func ingestionDefaults(v *viper.Viper) {
	v.SetDefault("default_currency", "USD")
	v.SetDefault("reference_handling.mode", "tag")
	v.SetDefault("reference_handling.sheet_name_patterns", []string{"library", "ref", "lookup", "rate"})
	v.SetDefault("splitter.header_score_threshold", 2)
	v.SetDefault("splitter.blank_run_threshold", 2)
	v.SetDefault("splitter.header_keywords", []string{
		"item", "quantity", "qty", "gem per unit", "gems per unit",
		"gem value", "total", "price", "cost", "currency", "token",
	})
}

// LoadIngestion reads the ingestion config from path.
func LoadIngestion(path string) (*Ingestion, error) {
	v, err := read(path, ingestionDefaults)
	if err != nil {
		return nil, err
	}
	cfg := &Ingestion{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing ingestion config: %w", err)
	}
	return cfg, nil
}

// Analysis configures the ranking layer.
type Analysis struct {
	ExcludeReference   bool               `mapstructure:"exclude_reference"`
	MinPrice           float64            `mapstructure:"min_price"`
	MaxValuePerDollar  float64            `mapstructure:"max_value_per_dollar"`
	CategoryWeights    map[string]float64 `mapstructure:"category_weights"`
	FocusCategories    []string           `mapstructure:"focus_categories"`
}

func analysisDefaults(v *viper.Viper) {
	v.SetDefault("analysis.exclude_reference", true)
	v.SetDefault("analysis.min_price", 0.0)
	v.SetDefault("analysis.max_value_per_dollar", 20.0)
}

// LoadAnalysis reads the analysis config from path.
func LoadAnalysis(path string) (*Analysis, error) {
	v, err := read(path, analysisDefaults)
	if err != nil {
		return nil, err
	}
	wrapper := struct {
		Analysis Analysis `mapstructure:"analysis"`
	}{}
	if err := v.Unmarshal(&wrapper); err != nil {
		return nil, fmt.Errorf("parsing analysis config: %w", err)
	}
	return &wrapper.Analysis, nil
}

// Validation configures the data-quality report.
type Validation struct {
	Enabled                    bool    `mapstructure:"enabled"`
	ValuePerDollarThresholdStd float64 `mapstructure:"value_per_dollar_threshold_std"`
	ReportFilename             string  `mapstructure:"report_filename"`
}

func validationDefaults(v *viper.Viper) {
	v.SetDefault("validation.enabled", true)
	v.SetDefault("validation.value_per_dollar_threshold_std", 3.0)
	v.SetDefault("validation.report_filename", "validation_report.json")
}

// LoadValidation reads the validation config from path.
func LoadValidation(path string) (*Validation, error) {
	v, err := read(path, validationDefaults)
	if err != nil {
		return nil, err
	}
	wrapper := struct {
		Validation Validation `mapstructure:"validation"`
	}{}
	if err := v.Unmarshal(&wrapper); err != nil {
		return nil, fmt.Errorf("parsing validation config: %w", err)
	}
	return &wrapper.Validation, nil
}

// read builds a viper instance with defaults applied and, when the file
// exists, the file's values merged on top.
func read(path string, defaults func(*viper.Viper)) (*viper.Viper, error) {
	v := viper.New()
	defaults(v)
	if path == "" {
		return v, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return v, nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return v, nil
}
