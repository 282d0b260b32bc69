package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogging(level string) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger().Level(parsed)
}

func logSearchStats(tag string, stats EngineStats) {
	log.Info().
		Str("phase", tag).
		Int("depth", stats.LastDepth).
		Dur("elapsed", stats.LastDuration).
		Float64("score", stats.LastScore).
		Int("cache_size", stats.Cache.Size).
		Uint64("cache_lookups", stats.Cache.Lookups).
		Float64("cache_hit_rate", stats.Cache.HitRate).
		Msg("search stats")
}
