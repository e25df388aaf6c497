// Package knowledge maintains a small knowledge base of game entities
// (heroes, buildings, scraped wiki tables) and links pack items to them.
package knowledge

import (
	"fmt"

	"github.com/mhollis/packworth/internal/pack/store"
	"github.com/mhollis/packworth/pkg/packs"
)

// SaveEntities writes knowledge entities to a JSON file.
func SaveEntities(path string, entities []packs.KnowledgeEntity) error {
	if err := store.SaveJSON(path, entities); err != nil {
		return fmt.Errorf("saving knowledge entities: %w", err)
	}
	return nil
}

// LoadEntities reads knowledge entities from a JSON file.
func LoadEntities(path string) ([]packs.KnowledgeEntity, error) {
	var entities []packs.KnowledgeEntity
	if err := store.LoadJSON(path, &entities); err != nil {
		return nil, fmt.Errorf("loading knowledge entities: %w", err)
	}
	return entities, nil
}
