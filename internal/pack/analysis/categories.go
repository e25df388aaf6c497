package analysis

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/mhollis/packworth/pkg/packs"
)

// CategoryRule matches items into a category by name.
type CategoryRule struct {
	NameContains []string `mapstructure:"name_contains"`
	NameExact    []string `mapstructure:"name_exact"`
}

// ItemCategoryConfig holds the name-based classification rules. An empty
// config classifies nothing; items then fall back to their base category.
type ItemCategoryConfig struct {
	Categories map[string]CategoryRule
}

// LoadItemCategoryConfig reads classification rules from a YAML file.
// A missing file yields an empty config.
func LoadItemCategoryConfig(path string) (ItemCategoryConfig, error) {
	cfg := ItemCategoryConfig{Categories: map[string]CategoryRule{}}
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("reading item categories %s: %w", path, err)
	}
	var doc struct {
		Categories map[string]struct {
			Match CategoryRule `mapstructure:"match"`
		} `mapstructure:"categories"`
	}
	if err := v.Unmarshal(&doc); err != nil {
		return cfg, fmt.Errorf("parsing item categories %s: %w", path, err)
	}
	for key, entry := range doc.Categories {
		rule := CategoryRule{}
		for _, s := range entry.Match.NameContains {
			rule.NameContains = append(rule.NameContains, strings.ToLower(s))
		}
		for _, s := range entry.Match.NameExact {
			rule.NameExact = append(rule.NameExact, strings.ToLower(s))
		}
		cfg.Categories[key] = rule
	}
	return cfg, nil
}

// ClassifyItem returns the category keys matching an item's name or id.
// A substring match wins over exact matching within a category.
func (c ItemCategoryConfig) ClassifyItem(name, itemID string) []string {
	if len(c.Categories) == 0 {
		return nil
	}
	loweredName := strings.ToLower(name)
	loweredID := strings.ToLower(itemID)

	keys := make([]string, 0, len(c.Categories))
	for key := range c.Categories {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var matched []string
	for _, key := range keys {
		rule := c.Categories[key]
		contains := false
		for _, token := range rule.NameContains {
			if token != "" && strings.Contains(loweredName, token) {
				contains = true
				break
			}
		}
		if contains {
			matched = append(matched, key)
			continue
		}
		for _, exact := range rule.NameExact {
			if loweredName == exact || loweredID == exact {
				matched = append(matched, key)
				break
			}
		}
	}
	return matched
}

// AggregateCategoryValues sums per-item values from a valuation breakdown
// into category buckets. An item always counts toward its base category in
// addition to any rule matches.
func (c ItemCategoryConfig) AggregateCategoryValues(items []packs.PackItem, breakdown map[string]float64) map[string]float64 {
	totals := map[string]float64{}
	for _, item := range items {
		value := breakdown[item.ID]
		categories := c.ClassifyItem(item.Name, item.ID)
		if item.Category != "" {
			seen := false
			for _, cat := range categories {
				if cat == item.Category {
					seen = true
					break
				}
			}
			if !seen {
				categories = append(categories, item.Category)
			}
		}
		for _, cat := range categories {
			totals[cat] += value
		}
	}
	return totals
}
