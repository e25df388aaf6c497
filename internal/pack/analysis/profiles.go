package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// PlayerProfile weights categories according to a player's priorities.
// An empty weight map means "no preference": scoring falls back to plain
// value per dollar.
type PlayerProfile struct {
	Name        string             `mapstructure:"-" json:"name"`
	Description string             `mapstructure:"description" json:"description"`
	Weights     map[string]float64 `mapstructure:"weights" json:"weights"`
}

// LoadPlayerProfiles reads the player profile config. A missing file yields
// just the baseline default profile; a "default" profile is always present.
func LoadPlayerProfiles(path string) (map[string]PlayerProfile, error) {
	profiles := map[string]PlayerProfile{}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v := viper.New()
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading player profiles %s: %w", path, err)
			}
			wrapper := struct {
				Profiles map[string]PlayerProfile `mapstructure:"profiles"`
			}{}
			if err := v.Unmarshal(&wrapper); err != nil {
				return nil, fmt.Errorf("parsing player profiles %s: %w", path, err)
			}
			for name, profile := range wrapper.Profiles {
				profile.Name = name
				profiles[name] = profile
			}
		}
	}
	if _, ok := profiles["default"]; !ok {
		profiles["default"] = PlayerProfile{Name: "default", Description: "Baseline profile", Weights: map[string]float64{}}
	}
	return profiles, nil
}

// GetPlayerProfile looks up a profile by name, falling back to the default
// profile when the name is empty or unknown.
func GetPlayerProfile(name, path string) (PlayerProfile, error) {
	profiles, err := LoadPlayerProfiles(path)
	if err != nil {
		return PlayerProfile{}, err
	}
	if name != "" {
		if profile, ok := profiles[name]; ok {
			return profile, nil
		}
	}
	return profiles["default"], nil
}

// GameProfile names a per-game configuration root.
type GameProfile struct {
	Key         string `mapstructure:"-" json:"key"`
	Label       string `mapstructure:"label" json:"label"`
	Description string `mapstructure:"description" json:"description"`
	ConfigDir   string `mapstructure:"config_dir" json:"config_dir,omitempty"`
}

const defaultGameKey = "whiteout_survival"

func defaultGameProfile(configRoot string) GameProfile {
	return GameProfile{
		Key:         defaultGameKey,
		Label:       "Whiteout Survival",
		Description: "Default configuration for Whiteout Survival packs.",
		ConfigDir:   filepath.Join(configRoot, "games", defaultGameKey),
	}
}

// LoadGameProfiles reads game_profiles.yaml under the config root. A missing
// file yields only the built-in default game.
func LoadGameProfiles(configRoot string) (map[string]GameProfile, string, error) {
	path := filepath.Join(configRoot, "game_profiles.yaml")
	if _, err := os.Stat(path); err != nil {
		def := defaultGameProfile(configRoot)
		return map[string]GameProfile{def.Key: def}, def.Key, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, "", fmt.Errorf("reading game profiles %s: %w", path, err)
	}
	wrapper := struct {
		DefaultGame string                 `mapstructure:"default_game"`
		Games       map[string]GameProfile `mapstructure:"games"`
	}{}
	if err := v.Unmarshal(&wrapper); err != nil {
		return nil, "", fmt.Errorf("parsing game profiles %s: %w", path, err)
	}

	games := map[string]GameProfile{}
	for key, game := range wrapper.Games {
		game.Key = key
		if game.Label == "" {
			game.Label = key
		}
		if game.ConfigDir != "" && !filepath.IsAbs(game.ConfigDir) {
			game.ConfigDir = filepath.Join(configRoot, game.ConfigDir)
		}
		games[key] = game
	}
	if len(games) == 0 {
		def := defaultGameProfile(configRoot)
		games[def.Key] = def
	}
	defaultKey := wrapper.DefaultGame
	if defaultKey == "" {
		defaultKey = defaultGameKey
	}
	return games, defaultKey, nil
}

// GetGameProfile resolves a game key (empty means the configured default).
// An unknown key is a fatal error naming the known games.
func GetGameProfile(configRoot, gameKey string) (GameProfile, error) {
	games, defaultKey, err := LoadGameProfiles(configRoot)
	if err != nil {
		return GameProfile{}, err
	}
	if gameKey == "" {
		gameKey = defaultKey
	}
	game, ok := games[gameKey]
	if !ok {
		known := make([]string, 0, len(games))
		for key := range games {
			known = append(known, key)
		}
		sort.Strings(known)
		return GameProfile{}, fmt.Errorf("unknown game %q (known: %s)", gameKey, strings.Join(known, ", "))
	}
	return game, nil
}

// ResolveConfigPath prefers the game-specific config file when it exists,
// otherwise falls back to the root config directory.
func ResolveConfigPath(baseName string, game GameProfile, configRoot string) string {
	if game.ConfigDir != "" {
		gamePath := filepath.Join(game.ConfigDir, baseName)
		if _, err := os.Stat(gamePath); err == nil {
			return gamePath
		}
	}
	return filepath.Join(configRoot, baseName)
}
