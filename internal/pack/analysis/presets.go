package analysis

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// PlannerPreset is a canned planner invocation shipped with a game's
// config directory and surfaced on the site UI.
type PlannerPreset struct {
	Key          string   `json:"key" mapstructure:"key"`
	Label        string   `json:"label" mapstructure:"label"`
	Description  string   `json:"description,omitempty" mapstructure:"description"`
	Mode         string   `json:"mode" mapstructure:"mode"` // "budget" or "goal"
	Budget       *float64 `json:"budget,omitempty" mapstructure:"budget"`
	TargetItem   string   `json:"target_item,omitempty" mapstructure:"target_item"`
	TargetAmount float64  `json:"target_amount,omitempty" mapstructure:"target_amount"`
	Profile      string   `json:"profile,omitempty" mapstructure:"profile"`
	MaxCount     int      `json:"max_count,omitempty" mapstructure:"max_count"`
}

// LoadPlannerPresets reads planner presets from a YAML file. A missing
// file yields an empty list.
func LoadPlannerPresets(path string) ([]PlannerPreset, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading planner presets %s: %w", path, err)
	}
	var doc struct {
		Presets []PlannerPreset `mapstructure:"presets"`
	}
	if err := v.Unmarshal(&doc); err != nil {
		return nil, fmt.Errorf("parsing planner presets %s: %w", path, err)
	}
	for i := range doc.Presets {
		if doc.Presets[i].Mode == "" {
			doc.Presets[i].Mode = "budget"
		}
	}
	return doc.Presets, nil
}

// FindPreset looks a preset up by key, case-insensitively.
func FindPreset(presets []PlannerPreset, key string) (PlannerPreset, bool) {
	for _, p := range presets {
		if strings.EqualFold(p.Key, key) {
			return p, true
		}
	}
	return PlannerPreset{}, false
}
