package knowledge

import (
	"strings"

	"github.com/mhollis/packworth/pkg/packs"
)

// BuildItemLinks maps item ids to matching knowledge entity ids. Hero
// entities match by substring of the item name (a "Jessie Shard" item links
// to the hero Jessie); everything else requires an exact name match.
func BuildItemLinks(items []packs.ItemDefinition, entities []packs.KnowledgeEntity) map[string][]string {
	links := map[string][]string{}
	if len(items) == 0 || len(entities) == 0 {
		return links
	}
	for _, item := range items {
		name := strings.ToLower(item.Name)
		var matched []string
		for _, ent := range entities {
			entName := strings.ToLower(ent.Name)
			if ent.EntityType == "hero" {
				if name != "" && entName != "" && strings.Contains(name, entName) {
					matched = append(matched, ent.ID)
				}
			} else if name == entName {
				matched = append(matched, ent.ID)
			}
		}
		if len(matched) > 0 && item.ID != "" {
			links[item.ID] = matched
		}
	}
	return links
}
