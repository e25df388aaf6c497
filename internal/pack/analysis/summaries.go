package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mhollis/packworth/pkg/packs"
)

// SummaryContext carries the fleet-wide percentile thresholds a single
// pack summary is phrased against.
type SummaryContext struct {
	OverallPercentiles  map[string]float64
	CategoryPercentiles map[string]map[string]float64
	ProfileName         string
}

const fallbackSummary = "This pack's value is hard to estimate with current data."

var profileHints = map[string]string{
	"default":     "Suitable for general spending.",
	"f2p":         "Good fit for F2P players focused on efficiency.",
	"mid_spender": "Balanced choice for moderate spenders.",
	"whale":       "Appeals to whales seeking specific rare items.",
}

// percentile interpolates linearly between order statistics.
func percentile(values []float64, pct float64) float64 {
	if len(values) == 0 {
		return 0
	}
	ordered := append([]float64(nil), values...)
	sort.Float64s(ordered)
	if len(ordered) == 1 {
		return ordered[0]
	}
	pos := float64(len(ordered)-1) * pct
	low := int(pos)
	high := low + 1
	if high > len(ordered)-1 {
		high = len(ordered) - 1
	}
	fraction := pos - float64(low)
	return ordered[low] + (ordered[high]-ordered[low])*fraction
}

func computeOverallPercentiles(values []float64) map[string]float64 {
	if len(values) == 0 {
		return map[string]float64{"p90": 0, "p75": 0, "p50": 0, "p25": 0}
	}
	return map[string]float64{
		"p90": percentile(values, 0.90),
		"p75": percentile(values, 0.75),
		"p50": percentile(values, 0.50),
		"p25": percentile(values, 0.25),
	}
}

func describeOverall(vpd float64, percentiles map[string]float64) string {
	if vpd <= 0 {
		return ""
	}
	switch {
	case percentiles["p90"] > 0 && vpd >= percentiles["p90"]:
		return "exceptional overall value"
	case percentiles["p75"] > 0 && vpd >= percentiles["p75"]:
		return "very strong overall value"
	case percentiles["p50"] > 0 && vpd >= percentiles["p50"]:
		return "solid overall value"
	}
	return "average or situational value"
}

func humanLabel(category string) string {
	label := strings.TrimSpace(strings.ReplaceAll(category, "_", " "))
	if label == "" {
		return "General"
	}
	return strings.Title(label)
}

func describeCategory(categoryValues map[string]float64, price float64, categoryPercentiles map[string]map[string]float64) string {
	if len(categoryValues) == 0 || price <= 0 {
		return ""
	}
	bestCat := ""
	bestVPD := 0.0
	cats := make([]string, 0, len(categoryValues))
	for cat := range categoryValues {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		vpd := categoryValues[cat] / price
		if vpd > bestVPD {
			bestCat = cat
			bestVPD = vpd
		}
	}
	if bestCat == "" || bestVPD <= 0 {
		return ""
	}
	thresholds := categoryPercentiles[bestCat]
	label := humanLabel(bestCat)
	switch {
	case thresholds["p80"] > 0 && bestVPD >= thresholds["p80"]:
		return fmt.Sprintf("especially strong for %s", label)
	case thresholds["p60"] > 0 && bestVPD >= thresholds["p60"]:
		return fmt.Sprintf("notably good for %s", label)
	}
	return fmt.Sprintf("leans toward %s", strings.ToLower(label))
}

// GeneratePackSummary phrases a one-to-three sentence summary for a pack
// from its metrics and the fleet context.
func GeneratePackSummary(price, totalValue, vpd float64, categoryValues map[string]float64, ctx SummaryContext) string {
	if price <= 0 || totalValue <= 0 || vpd <= 0 {
		return fallbackSummary
	}
	var sentences []string
	if desc := describeOverall(vpd, ctx.OverallPercentiles); desc != "" {
		sentences = append(sentences, fmt.Sprintf("This pack offers %s.", desc))
	}
	if desc := describeCategory(categoryValues, price, ctx.CategoryPercentiles); desc != "" {
		sentences = append(sentences, fmt.Sprintf("It is %s.", desc))
	}
	profile := strings.ToLower(ctx.ProfileName)
	if profile == "" {
		profile = "default"
	}
	if hint, ok := profileHints[profile]; ok {
		sentences = append(sentences, hint)
	}
	if len(sentences) == 0 {
		return fallbackSummary
	}
	return strings.Join(sentences, " ")
}

// GenerateAllPackSummaries builds summaries for every site pack, keyed by
// pack id. Percentile thresholds are computed across the whole slice so a
// pack's phrasing reflects its standing among its peers.
func GenerateAllPackSummaries(sitePacks []packs.SitePack, profileName string) map[string]string {
	var vpds []float64
	for _, p := range sitePacks {
		if p.Price.Amount > 0 {
			vpds = append(vpds, p.Value/p.Price.Amount)
		}
	}

	categoryVPDs := map[string][]float64{}
	for _, p := range sitePacks {
		if p.Price.Amount <= 0 {
			continue
		}
		for cat, val := range p.CategoryValues {
			categoryVPDs[cat] = append(categoryVPDs[cat], val/p.Price.Amount)
		}
	}
	categoryPercentiles := make(map[string]map[string]float64, len(categoryVPDs))
	for cat, values := range categoryVPDs {
		categoryPercentiles[cat] = map[string]float64{
			"p80": percentile(values, 0.80),
			"p60": percentile(values, 0.60),
		}
	}

	ctx := SummaryContext{
		OverallPercentiles:  computeOverallPercentiles(vpds),
		CategoryPercentiles: categoryPercentiles,
		ProfileName:         profileName,
	}

	summaries := make(map[string]string, len(sitePacks))
	for i, p := range sitePacks {
		id := p.ID
		if id == "" {
			id = fmt.Sprintf("pack-%d", i)
		}
		vpd := 0.0
		if p.Price.Amount > 0 {
			vpd = p.Value / p.Price.Amount
		}
		summaries[id] = GeneratePackSummary(p.Price.Amount, p.Value, vpd, p.CategoryValues, ctx)
	}
	return summaries
}
