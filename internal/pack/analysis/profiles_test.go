package analysis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPlayerProfiles(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "player_profiles.yaml", `profiles:
  f2p:
    description: Free to play
    weights:
      speedup: 1.0
      resource: 0.5
  whale:
    description: Heavy spender
    weights:
      hero: 2.0
`)
	profiles, err := LoadPlayerProfiles(path)
	if err != nil {
		t.Fatalf("LoadPlayerProfiles: %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("expected f2p, whale, and injected default; got %d", len(profiles))
	}
	if profiles["f2p"].Weights["speedup"] != 1.0 {
		t.Fatalf("f2p weights = %v", profiles["f2p"].Weights)
	}
	if len(profiles["default"].Weights) != 0 {
		t.Fatalf("default profile must have empty weights, got %v", profiles["default"].Weights)
	}
}

func TestGetPlayerProfileFallsBackToDefault(t *testing.T) {
	profile, err := GetPlayerProfile("nonexistent", "")
	if err != nil {
		t.Fatalf("GetPlayerProfile: %v", err)
	}
	if profile.Name != "default" {
		t.Fatalf("profile = %q, want default", profile.Name)
	}
}

func TestLoadGameProfiles(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "game_profiles.yaml", `default_game: whiteout_survival
games:
  whiteout_survival:
    label: Whiteout Survival
  frost_kingdom:
    label: Frost Kingdom
    config_dir: games/frost_kingdom
`)
	games, defaultKey, err := LoadGameProfiles(dir)
	if err != nil {
		t.Fatalf("LoadGameProfiles: %v", err)
	}
	if defaultKey != "whiteout_survival" {
		t.Fatalf("default key = %q", defaultKey)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
	frost := games["frost_kingdom"]
	if frost.Key != "frost_kingdom" || frost.Label != "Frost Kingdom" {
		t.Fatalf("frost profile = %+v", frost)
	}
	if frost.ConfigDir != filepath.Join(dir, "games", "frost_kingdom") {
		t.Fatalf("config dir not rooted: %q", frost.ConfigDir)
	}
}

func TestGetGameProfileUnknownKey(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "game_profiles.yaml", `games:
  whiteout_survival:
    label: Whiteout Survival
`)
	_, err := GetGameProfile(dir, "no_such_game")
	if err == nil {
		t.Fatal("expected an error for an unknown game key")
	}
	if !strings.Contains(err.Error(), "whiteout_survival") {
		t.Fatalf("error should list known games, got %v", err)
	}
}

func TestGetGameProfileMissingConfigUsesDefault(t *testing.T) {
	game, err := GetGameProfile(t.TempDir(), "")
	if err != nil {
		t.Fatalf("GetGameProfile: %v", err)
	}
	if game.Key != "whiteout_survival" {
		t.Fatalf("game = %q, want whiteout_survival", game.Key)
	}
}

func TestResolveConfigPathPrefersGameDir(t *testing.T) {
	root := t.TempDir()
	gameDir := filepath.Join(root, "games", "wos")
	if err := os.MkdirAll(gameDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, gameDir, "values.yaml", "categories: {}\n")

	game := GameProfile{Key: "wos", ConfigDir: gameDir}
	if got := ResolveConfigPath("values.yaml", game, root); got != filepath.Join(gameDir, "values.yaml") {
		t.Fatalf("resolved = %q, want game dir path", got)
	}
	if got := ResolveConfigPath("analysis.yaml", game, root); got != filepath.Join(root, "analysis.yaml") {
		t.Fatalf("resolved = %q, want root fallback", got)
	}
}
