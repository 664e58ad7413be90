package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Config struct {
	Listen  string  `yaml:"listen"`
	Logger  Logger  `yaml:"logger"`
	Storage Storage `yaml:"storage"`
	Cache   Cache   `yaml:"cache"`
	Judge   Judge   `yaml:"judge"`
	Contest Contest `yaml:"contest"`
	Auth    Auth    `yaml:"auth"`
	CORS    CORS    `yaml:"cors"`
}

type Logger struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Storage struct {
	Database string `yaml:"database"`
}

type Cache struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// Leaderboard TTLs in seconds. Live contests get a short window so
	// reads stay cache-backed between invalidations; finished contests
	// never change again and can live much longer.
	LeaderboardActiveTTL int `yaml:"leaderboard_active_ttl"`
	LeaderboardFinalTTL  int `yaml:"leaderboard_final_ttl"`
}

type Judge struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Workers        int    `yaml:"workers"`
	QueueSize      int    `yaml:"queue_size"`
}

type Contest struct {
	// Defaults applied at contest creation when the owner leaves them unset.
	PenaltyPerWrong     int `yaml:"penalty_per_wrong"`
	PointsPerProblem    int `yaml:"points_per_problem"`
	StatusSweepInterval int `yaml:"status_sweep_interval"` // seconds
}

type Auth struct {
	JWT JWT `yaml:"jwt"`
}

type JWT struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Cache.LeaderboardActiveTTL <= 0 {
		c.Cache.LeaderboardActiveTTL = 10
	}
	if c.Cache.LeaderboardFinalTTL <= 0 {
		c.Cache.LeaderboardFinalTTL = 86400
	}
	if c.Judge.TimeoutSeconds <= 0 {
		c.Judge.TimeoutSeconds = 60
	}
	if c.Judge.Workers <= 0 {
		c.Judge.Workers = 8
	}
	if c.Judge.QueueSize <= 0 {
		c.Judge.QueueSize = 1024
	}
	if c.Contest.PenaltyPerWrong <= 0 {
		c.Contest.PenaltyPerWrong = 20
	}
	if c.Contest.PointsPerProblem <= 0 {
		c.Contest.PointsPerProblem = 100
	}
	if c.Contest.StatusSweepInterval <= 0 {
		c.Contest.StatusSweepInterval = 60
	}
}
