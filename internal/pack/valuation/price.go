package valuation

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mhollis/packworth/internal/pack/config"
	"github.com/mhollis/packworth/pkg/packs"
)

// InferPrice produces a definitive price for the pack and records its
// provenance in the pack metadata under price_source. Strategy order for
// packs without an explicit price: name hint, gem-total conversion,
// configured fallback. Any obtained price may then be snapped to a
// canonical storefront tier.
func (e *Engine) InferPrice(pack *packs.Pack) (float64, string) {
	price := pack.Price
	source := "pack"

	if price <= 0 {
		nameLower := strings.ToLower(pack.Name)
		for _, key := range sortedHintKeys(e.cfg.PriceHints) {
			if strings.Contains(nameLower, strings.ToLower(key)) {
				price = e.cfg.PriceHints[key].Amount
				source = "hint:" + key
				break
			}
		}
	}

	if price <= 0 && e.cfg.PriceInference.UseGemTotalWhenMissing {
		if gt, ok := gemTotal(pack); ok && e.cfg.PriceInference.GemValuePerUSD > 0 {
			price = gt / e.cfg.PriceInference.GemValuePerUSD
			source = "gem_total"
		}
	}

	if price <= 0 {
		price = e.cfg.PriceDefaults.FallbackPrice
		source = "fallback"
	}

	gt, hasGT := gemTotal(pack)
	if snapped, tier := e.snapPrice(price, pack.Currency, gt, hasGT); tier != "" {
		price = snapped
		source = fmt.Sprintf("%s|snap:%s", source, tier)
	}

	pack.SetMeta("price_source", source)
	pack.Price = price
	return price, source
}

// gemTotal returns the pack's premium-currency total, either carried
// explicitly in metadata or summed from item row totals.
func gemTotal(pack *packs.Pack) (float64, bool) {
	if v := pack.MetaFloat("gem_total"); v != 0 {
		return v, true
	}
	sum := 0.0
	found := false
	for _, item := range pack.Items {
		if item.Meta == nil {
			continue
		}
		switch v := item.Meta["row_total"].(type) {
		case float64:
			sum += v
			found = true
		case int:
			sum += float64(v)
			found = true
		}
	}
	return sum, found
}

// snapPrice snaps an inferred price to the nearest configured storefront
// tier for the pack's currency. Gem-total matching is preferred when tier
// gem totals are configured: the candidate with the smallest normalized
// distance wins, accepted only if distance * price stays within
// snap_max_delta. Otherwise plain price distance applies under the same
// cap. Returns the tier name on success, empty string when no snap applies.
func (e *Engine) snapPrice(price float64, currency string, gt float64, hasGT bool) (float64, string) {
	inf := e.cfg.PriceInference
	if !inf.SnapToTiers || price <= 0 {
		return price, ""
	}
	if currency == "" {
		currency = e.cfg.PriceDefaults.Currency
	}
	currency = strings.ToUpper(currency)

	if hasGT && gt > 0 {
		bestNorm := math.Inf(1)
		bestPrice := 0.0
		bestTier := ""
		for _, tier := range inf.Tiers {
			if tier.Currency != "" && strings.ToUpper(tier.Currency) != currency {
				continue
			}
			for amountKey, tierGT := range tier.GemTotals {
				amount, err := strconv.ParseFloat(amountKey, 64)
				if err != nil {
					continue
				}
				norm := math.Abs(tierGT-gt) / math.Max(tierGT, 1)
				if norm < bestNorm {
					bestNorm = norm
					bestPrice = amount
					bestTier = tier.Name
				}
			}
		}
		if bestTier != "" {
			if inf.SnapMaxDelta == nil || bestNorm*bestPrice <= *inf.SnapMaxDelta {
				return bestPrice, bestTier
			}
		}
	}

	bestDiff := math.Inf(1)
	bestPrice := 0.0
	bestTier := ""
	for _, tier := range inf.Tiers {
		if tier.Currency != "" && strings.ToUpper(tier.Currency) != currency {
			continue
		}
		for _, amount := range tier.Prices {
			diff := math.Abs(price - amount)
			if inf.SnapMaxDelta != nil && diff > *inf.SnapMaxDelta {
				continue
			}
			if diff < bestDiff {
				bestDiff = diff
				bestPrice = amount
				bestTier = tier.Name
			}
		}
	}
	if bestTier == "" {
		return price, ""
	}
	return bestPrice, bestTier
}

// sortedHintKeys keeps hint matching deterministic across runs.
func sortedHintKeys(hints map[string]config.PriceHint) []string {
	keys := make([]string, 0, len(hints))
	for key := range hints {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
