package main

import (
	"math/rand"
	"testing"
)

func TestLineHeuristicTerms(t *testing.T) {
	w := EvalWeights{Openness: 1, Smoothness: 1, Monotonicity: 1, Corner: 1}

	// Empty line: openness only.
	if got := lineHeuristic([]uint8{0, 0, 0, 0}, w); got != 4 {
		t.Fatalf("empty line = %f, want 4", got)
	}

	// Monotone ascending line: no empties, smooth deltas 1+1+1 = -3,
	// monotonicity 3, max exponent 4.
	if got := lineHeuristic([]uint8{1, 2, 3, 4}, w); got != 0-3+3+4 {
		t.Fatalf("ascending line = %f, want 4", got)
	}

	// Gap splits smoothness adjacency but not monotonicity deltas:
	// openness 1, smooth 0, mono max(1,1)=1, max exponent 1.
	got := lineHeuristic([]uint8{1, 0, 1, 1}, w)
	want := 1.0 + 0.0 + 1.0 + 1.0
	if got != want {
		t.Fatalf("gapped line = %f, want %f", got, want)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	tables := newLineTables(DefaultEvalWeights())
	eval := newEvaluator(4, tables, DefaultEvalWeights())
	s := mustEncode(t, [][]int{
		{2, 4, 0, 0},
		{0, 16, 0, 2},
		{0, 0, 128, 0},
		{8, 0, 0, 2},
	})
	first := eval.evaluate(s)
	for i := 0; i < 10; i++ {
		if again := eval.evaluate(s); again != first {
			t.Fatalf("evaluate not deterministic: %v then %v", first, again)
		}
	}
}

func TestEvaluateFastPathMatchesDirect(t *testing.T) {
	weights := DefaultEvalWeights()
	tables := newLineTables(weights)
	eval := newEvaluator(4, tables, weights)
	rng := rand.New(rand.NewSource(31))
	line := make([]uint8, 4)
	for trial := 0; trial < 100; trial++ {
		var s PackedState
		for i := 0; i < 16; i++ {
			if rng.Intn(2) == 0 {
				s = s.withCell(i, uint8(1+rng.Intn(12)))
			}
		}
		want := 0.0
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				line[c] = s.cell(r*4 + c)
			}
			want += lineHeuristic(line, weights)
		}
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				line[r] = s.cell(r*4 + c)
			}
			want += lineHeuristic(line, weights)
		}
		if got := eval.evaluate(s); got != want {
			t.Fatalf("fast path %f != direct %f for %016x", got, want, s.words[0])
		}
	}
}

func TestEvaluateGenericBoardSize(t *testing.T) {
	weights := DefaultEvalWeights()
	eval := newEvaluator(5, nil, weights)
	g := NewGrid(5)
	s, err := EncodePacked(g)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	// 5 rows + 5 columns, each fully empty.
	want := 10 * weights.Openness * 5
	if got := eval.evaluate(s); got != want {
		t.Fatalf("empty 5x5 = %f, want %f", got, want)
	}
}

func TestSetWeightsChangesScores(t *testing.T) {
	weights := DefaultEvalWeights()
	tables := newLineTables(weights)
	eval := newEvaluator(4, tables, weights)
	s := mustEncode(t, [][]int{
		{2, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})
	before := eval.evaluate(s)
	changed := weights
	changed.Openness *= 3
	eval.setWeights(changed)
	after := eval.evaluate(s)
	if before == after {
		t.Fatalf("score unchanged after weight change: %f", before)
	}
}
