package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFileMissingUsesDefaults(t *testing.T) {
	config, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if config.BoardSize != fastBoardSize || config.Difficulty != DifficultyMedium {
		t.Fatalf("defaults not applied: %+v", config)
	}
	if config.Weights != DefaultEvalWeights() {
		t.Fatalf("default weights not applied: %+v", config.Weights)
	}
}

func TestLoadConfigFileOverridesAndResolvesWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("board_size: 5\ndifficulty: expert\nweights:\n  openness: 6.0\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	config, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if config.BoardSize != 5 || config.Difficulty != DifficultyExpert {
		t.Fatalf("overrides not applied: %+v", config)
	}
	if config.Weights.Openness != 6.0 {
		t.Fatalf("openness = %f, want 6.0", config.Weights.Openness)
	}
	// Unspecified weight fields fall back to defaults instead of zero.
	if config.Weights.Corner != DefaultEvalWeights().Corner {
		t.Fatalf("corner = %f, want default", config.Weights.Corner)
	}
}

func TestLoadConfigFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestResolvedWeights(t *testing.T) {
	if resolvedWeights(EvalWeights{}) != DefaultEvalWeights() {
		t.Fatalf("zero vector must resolve to defaults")
	}
	partial := EvalWeights{Monotonicity: 9}
	resolved := resolvedWeights(partial)
	if resolved.Monotonicity != 9 {
		t.Fatalf("explicit field overwritten: %+v", resolved)
	}
	if resolved.Openness != DefaultEvalWeights().Openness {
		t.Fatalf("zero field not defaulted: %+v", resolved)
	}
}

func TestWeightsHashDistinguishesVectors(t *testing.T) {
	a := weightsHash(DefaultEvalWeights())
	changed := DefaultEvalWeights()
	changed.Smoothness += 0.1
	b := weightsHash(changed)
	if a == b {
		t.Fatalf("distinct vectors share hash %016x", a)
	}
	if a != weightsHash(DefaultEvalWeights()) {
		t.Fatalf("hash not stable")
	}
}
