// Package packs contains the core types shared across the pack valuation toolkit.
package packs

// ============================================
// DOMAIN TYPES
// ============================================

// ItemDefinition is a catalog entry for one distinct in-game reward type.
// Definitions are derived once per ingestion run and immutable afterward.
type ItemDefinition struct {
	ID          string         `json:"item_id"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Icon        string         `json:"icon,omitempty"`
	BaseValue   *float64       `json:"base_value,omitempty"`
	Description string         `json:"description,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// PackItem is one line entry inside a Pack. It is owned exclusively by its
// parent pack and never shared between packs.
type PackItem struct {
	ID       string `json:"item_id"`
	Name     string `json:"name"`
	Quantity float64 `json:"quantity"`
	Category string `json:"category"`
	Icon     string `json:"icon,omitempty"`
	// BaseValue carries a per-row unit value captured during ingestion.
	// Nil means "unknown", which lets valuation fall back to category defaults.
	BaseValue *float64 `json:"base_value,omitempty"`
	// SourceRow is the 1-based sheet row the item came from (0 if unknown).
	// Used to associate embedded cell images with items.
	SourceRow int            `json:"source_row,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Pack is a purchasable (or reference-only) bundle of items at a price.
type Pack struct {
	ID     string `json:"pack_id"`
	Name   string `json:"name"`
	// Price 0 means "unknown, to be inferred".
	Price       float64        `json:"price"`
	Currency    string         `json:"currency"`
	SourceFile  string         `json:"source_file"`
	SourceSheet string         `json:"source_sheet,omitempty"`
	IsReference bool           `json:"is_reference"`
	Tags        []string       `json:"tags,omitempty"`
	Items       []PackItem     `json:"items"`
	Notes       string         `json:"notes,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// SetMeta stores a metadata value, allocating the map on first use.
func (p *Pack) SetMeta(key string, value any) {
	if p.Meta == nil {
		p.Meta = map[string]any{}
	}
	p.Meta[key] = value
}

// MetaFloat returns a numeric metadata value, or 0 if absent or non-numeric.
func (p *Pack) MetaFloat(key string) float64 {
	if p.Meta == nil {
		return 0
	}
	switch v := p.Meta[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// ============================================
// VALUATION TYPES
// ============================================

// PackValuation is the computed result for one pack. It is recomputed
// wholesale each run and never mutated once built.
type PackValuation struct {
	PackID     string             `json:"pack_id"`
	TotalValue float64            `json:"total_value"`
	Price      float64            `json:"price"`
	Ratio      float64            `json:"ratio"`
	Score      float64            `json:"score"`
	Label      string             `json:"label"`
	Color      string             `json:"color"`
	Breakdown  map[string]float64 `json:"breakdown"`
}

// ValuedPack pairs a pack with its valuation. It is the unit passed to
// ranking, export, and planning.
type ValuedPack struct {
	Pack      *Pack         `json:"pack"`
	Valuation PackValuation `json:"valuation"`
}

// ============================================
// SITE EXPORT TYPES
// ============================================

// SitePrice is the flattened price representation used in site exports.
type SitePrice struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// SiteSource records where a pack was ingested from.
type SiteSource struct {
	File  string `json:"file"`
	Sheet string `json:"sheet,omitempty"`
}

// SiteItem is the flattened per-item view inside a site pack.
type SiteItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Category string  `json:"category"`
	Icon     string  `json:"icon,omitempty"`
	Value    float64 `json:"value"`
}

// SitePack is the flattened, site-facing view of a valued pack.
type SitePack struct {
	Game           string             `json:"game"`
	GameLabel      string             `json:"game_label"`
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Price          SitePrice          `json:"price"`
	Source         SiteSource         `json:"source"`
	Tags           []string           `json:"tags,omitempty"`
	IsReference    bool               `json:"is_reference"`
	ValuePerDollar float64            `json:"value_per_dollar"`
	Items          []SiteItem         `json:"items"`
	Value          float64            `json:"value"`
	PriceToValue   float64            `json:"price_to_value"`
	Score          float64            `json:"score"`
	Label          string             `json:"label"`
	Color          string             `json:"color"`
	CategoryValues map[string]float64 `json:"category_values"`
	Summary        string             `json:"summary,omitempty"`
}

// SitePacksDoc is the on-disk shape of the site packs export.
type SitePacksDoc struct {
	GeneratedAt string     `json:"generated_at"`
	RunID       string     `json:"run_id,omitempty"`
	Packs       []SitePack `json:"packs"`
}

// SiteItemsDoc is the on-disk shape of the site items export.
type SiteItemsDoc struct {
	GeneratedAt string           `json:"generated_at"`
	RunID       string           `json:"run_id,omitempty"`
	Items       []ItemDefinition `json:"items"`
}

// ProcessedPacksDoc is the on-disk shape of the intermediate packs export.
type ProcessedPacksDoc struct {
	GeneratedAt string  `json:"generated_at"`
	RunID       string  `json:"run_id,omitempty"`
	Packs       []*Pack `json:"packs"`
}

// ProcessedItemsDoc is the on-disk shape of the intermediate items export.
type ProcessedItemsDoc struct {
	GeneratedAt string           `json:"generated_at"`
	RunID       string           `json:"run_id,omitempty"`
	Items       []ItemDefinition `json:"items"`
}

// ============================================
// KNOWLEDGE TYPES
// ============================================

// KnowledgeEntity is a structured fact imported from an external knowledge
// source (scraped table row, wiki page, repository file).
type KnowledgeEntity struct {
	ID           string         `json:"id"`
	Game         string         `json:"game"`
	EntityType   string         `json:"entity_type"` // hero/building/tech/resource/guide/table/page/unknown
	Name         string         `json:"name"`
	Source       string         `json:"source"`
	SourceDetail string         `json:"source_detail"`
	Tags         []string       `json:"tags,omitempty"`
	Attributes   map[string]any `json:"attributes,omitempty"`
	Raw          map[string]any `json:"raw,omitempty"`
}
