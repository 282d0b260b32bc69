package main

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr         string      `json:"listen_addr" yaml:"listen_addr"`
	BoardSize          int         `json:"board_size" yaml:"board_size"`
	Difficulty         Difficulty  `json:"difficulty" yaml:"difficulty"`
	AutoPlayIntervalMs int         `json:"auto_play_interval_ms" yaml:"auto_play_interval_ms"`
	CacheCapacity      int         `json:"cache_capacity" yaml:"cache_capacity"`
	CacheMaxAgeMs      int         `json:"cache_max_age_ms" yaml:"cache_max_age_ms"`
	Seed               int64       `json:"seed" yaml:"seed"`
	LeaderboardPath    string      `json:"leaderboard_path" yaml:"leaderboard_path"`
	LogLevel           string      `json:"log_level" yaml:"log_level"`
	LogSearchStats     bool        `json:"log_search_stats" yaml:"log_search_stats"`
	Weights            EvalWeights `json:"weights" yaml:"weights"`
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:         ":8080",
		BoardSize:          fastBoardSize,
		Difficulty:         DifficultyMedium,
		AutoPlayIntervalMs: 150,
		CacheCapacity:      defaultCacheCapacity,
		CacheMaxAgeMs:      int(defaultCacheMaxAge.Milliseconds()),
		Seed:               0,
		LeaderboardPath:    "leaderboard.json",
		LogLevel:           "info",
		LogSearchStats:     false,
		Weights:            DefaultEvalWeights(),
	}
}

// LoadConfigFile overlays a YAML file on top of the defaults. A missing
// file is not an error; the defaults stand.
func LoadConfigFile(path string) (Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config %s: %w", path, err)
	}
	config.Weights = resolvedWeights(config.Weights)
	return config, nil
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}
