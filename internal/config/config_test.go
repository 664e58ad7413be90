package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
listen: ":8080"
storage:
  database: "data/arena.db"
cache:
  addr: "localhost:6379"
  leaderboard_active_ttl: 5
judge:
  url: "http://localhost:9000"
  workers: 4
auth:
  jwt:
    secret: "test-secret"
    expire_hours: 24
`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("expected listen :8080, got %q", cfg.Listen)
	}
	if cfg.Cache.LeaderboardActiveTTL != 5 {
		t.Errorf("expected configured active TTL 5, got %d", cfg.Cache.LeaderboardActiveTTL)
	}
	if cfg.Judge.Workers != 4 {
		t.Errorf("expected configured workers 4, got %d", cfg.Judge.Workers)
	}

	// Unset values fall back to defaults.
	if cfg.Cache.LeaderboardFinalTTL != 86400 {
		t.Errorf("expected default final TTL, got %d", cfg.Cache.LeaderboardFinalTTL)
	}
	if cfg.Judge.TimeoutSeconds != 60 {
		t.Errorf("expected default judge timeout, got %d", cfg.Judge.TimeoutSeconds)
	}
	if cfg.Contest.PenaltyPerWrong != 20 || cfg.Contest.PointsPerProblem != 100 {
		t.Errorf("expected default scoring config, got %+v", cfg.Contest)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
