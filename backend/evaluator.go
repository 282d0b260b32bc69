package main

import "math"

// gameOverScore dominates every reachable heuristic sum, so the search
// prefers any line of play that postpones a dead board.
const gameOverScore = -1000000.0

// EvalWeights is the tunable weight vector of the board heuristic. The
// heuristic table is a pure function of these weights, so changing them
// forces a table rebuild and a cache flush.
type EvalWeights struct {
	Openness     float64 `json:"openness" yaml:"openness"`
	Smoothness   float64 `json:"smoothness" yaml:"smoothness"`
	Monotonicity float64 `json:"monotonicity" yaml:"monotonicity"`
	Corner       float64 `json:"corner" yaml:"corner"`
}

func DefaultEvalWeights() EvalWeights {
	return EvalWeights{
		Openness:     4.0,
		Smoothness:   0.2,
		Monotonicity: 2.0,
		Corner:       1.8,
	}
}

// lineHeuristic scores one line of exponents:
//   - openness: count of empty cells
//   - smoothness: negated sum of |exponent delta| over adjacent occupied
//     pairs, so jagged lines score lower
//   - monotonicity: the larger of the two one-directional ascent sums, so
//     a line ordered either way scores the same
//   - corner: the line's largest exponent, rewarding tall tiles kept on
//     few lines
func lineHeuristic(line []uint8, w EvalWeights) float64 {
	empty := 0
	maxExp := 0
	smooth := 0.0
	prev := -1
	for _, e := range line {
		if e == 0 {
			empty++
			prev = -1
			continue
		}
		if int(e) > maxExp {
			maxExp = int(e)
		}
		if prev >= 0 {
			smooth -= math.Abs(float64(int(e) - prev))
		}
		prev = int(e)
	}
	ascendLeft, ascendRight := 0, 0
	for i := 1; i < len(line); i++ {
		d := int(line[i]) - int(line[i-1])
		if d > 0 {
			ascendLeft += d
		} else {
			ascendRight -= d
		}
	}
	mono := ascendLeft
	if ascendRight > mono {
		mono = ascendRight
	}
	return w.Openness*float64(empty) +
		w.Smoothness*smooth +
		w.Monotonicity*float64(mono) +
		w.Corner*float64(maxExp)
}

// evaluator scores whole boards as the sum of per-line heuristics over
// every row and every column. The 4x4 path reads the precomputed table,
// columns via transpose; other sizes recompute lines directly.
type evaluator struct {
	size    int
	tables  *lineTables
	weights EvalWeights
}

func newEvaluator(size int, tables *lineTables, weights EvalWeights) *evaluator {
	return &evaluator{size: size, tables: tables, weights: weights}
}

func (e *evaluator) evaluate(s PackedState) float64 {
	if e.size == fastBoardSize {
		return e.evaluate4(s.words[0])
	}
	n := e.size
	line := make([]uint8, n)
	score := 0.0
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			line[c] = s.cell(r*n + c)
		}
		score += lineHeuristic(line, e.weights)
	}
	for c := 0; c < n; c++ {
		for r := 0; r < n; r++ {
			line[r] = s.cell(r*n + c)
		}
		score += lineHeuristic(line, e.weights)
	}
	return score
}

func (e *evaluator) evaluate4(w uint64) float64 {
	t := transpose4(w)
	score := 0.0
	for r := 0; r < 4; r++ {
		score += e.tables.heur[row4(w, r)]
		score += e.tables.heur[row4(t, r)]
	}
	return score
}

// setWeights swaps the weight vector and regenerates the heuristic table.
// The caller owns cache invalidation.
func (e *evaluator) setWeights(w EvalWeights) {
	e.weights = w
	e.tables.rebuildHeuristic(w)
}
