package main

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrInvalidDifficulty = errors.New("invalid difficulty")

// Difficulty selects the base search depth. The adaptive rule may still
// deepen the search past the base as the position degrades.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

func ParseDifficulty(token string) (Difficulty, error) {
	switch Difficulty(token) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return Difficulty(token), nil
	default:
		return "", fmt.Errorf("%q: %w", token, ErrInvalidDifficulty)
	}
}

func (d Difficulty) baseDepth() int {
	switch d {
	case DifficultyEasy:
		return 2
	case DifficultyMedium:
		return 3
	case DifficultyHard:
		return 4
	case DifficultyExpert:
		return 5
	default:
		return 3
	}
}

// Engine bundles one board size's tables, simulator, evaluator, search
// and cache behind a single instance. Nothing here is global: two engines
// with different weight vectors coexist without cross-talk. The RWMutex
// lets searches run concurrently while a weight change, which rebuilds
// the heuristic table under everyone's feet, gets the board to itself.
type Engine struct {
	size   int
	mu     sync.RWMutex
	tables *lineTables
	sim    moveSimulator
	eval   *evaluator
	search *searcher
	cache  *SearchCache

	lastMu     sync.Mutex
	lastResult SearchResult
}

func NewEngine(size int, weights EvalWeights) (*Engine, error) {
	if size < minBoardSize || size > maxBoardSize {
		return nil, fmt.Errorf("size %d: %w", size, ErrBoardSize)
	}
	config := GetConfig()
	tables := newLineTables(weights)
	sim := newSimulator(size, tables)
	eval := newEvaluator(size, tables, weights)
	cache := newSearchCache(config.CacheCapacity, time.Duration(config.CacheMaxAgeMs)*time.Millisecond)
	return &Engine{
		size:   size,
		tables: tables,
		sim:    sim,
		eval:   eval,
		search: newSearcher(size, sim, eval, cache),
		cache:  cache,
	}, nil
}

func (e *Engine) Size() int {
	return e.size
}

// GetBestMove searches the given board and returns the chosen direction,
// or found=false when no direction changes the board.
func (e *Engine) GetBestMove(g Grid, diff Difficulty) (Direction, bool, error) {
	if g.Size() != e.size {
		return 0, false, fmt.Errorf("board is %dx%d, engine is %dx%d: %w",
			g.Size(), g.Size(), e.size, e.size, ErrBoardSize)
	}
	st, err := EncodePacked(g)
	if err != nil {
		return 0, false, err
	}
	e.mu.RLock()
	result := e.search.bestMove(st, diff.baseDepth())
	e.mu.RUnlock()

	e.lastMu.Lock()
	e.lastResult = result
	e.lastMu.Unlock()
	return result.Move, result.Found, nil
}

// SimulateMove applies one slide without spawning a tile, reporting the
// successor grid, the merge points and whether the board changed.
func (e *Engine) SimulateMove(g Grid, d Direction) (Grid, int, bool, error) {
	if !d.Valid() {
		return nil, 0, false, fmt.Errorf("direction %d: %w", int(d), ErrInvalidDirection)
	}
	st, err := EncodePacked(g)
	if err != nil {
		return nil, 0, false, err
	}
	e.mu.RLock()
	res := e.sim.Move(st, d)
	e.mu.RUnlock()
	return DecodePacked(res.state, e.size), res.points, res.moved, nil
}

// EvaluateGrid exposes the raw heuristic score, mostly for diagnostics
// and weight tuning.
func (e *Engine) EvaluateGrid(g Grid) (float64, error) {
	st, err := EncodePacked(g)
	if err != nil {
		return 0, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.eval.evaluate(st), nil
}

// IsGameOver reports whether the board has no empty cell and no slide
// changes it. Degenerate boards are the defined terminal state, never an
// error.
func (e *Engine) IsGameOver(g Grid) (bool, error) {
	st, err := EncodePacked(g)
	if err != nil {
		return false, err
	}
	if st.countEmpty(e.size) > 0 {
		return false, nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(legalMoves(e.sim, st)) == 0, nil
}

func (e *Engine) Weights() EvalWeights {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.eval.weights
}

// SetWeights installs a new weight vector, rebuilds the heuristic table
// and drops every cached score, which was computed under the old weights.
func (e *Engine) SetWeights(w EvalWeights) {
	e.mu.Lock()
	e.eval.setWeights(w)
	e.mu.Unlock()
	e.cache.Clear()
}

func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// EngineStats is the diagnostics snapshot served to tuning UIs.
type EngineStats struct {
	BoardSize    int           `json:"board_size"`
	Cache        CacheStats    `json:"cache"`
	LastDepth    int           `json:"last_depth"`
	LastDuration time.Duration `json:"last_duration_ns"`
	LastScore    float64       `json:"last_score"`
	Weights      EvalWeights   `json:"weights"`
	WeightsHash  string        `json:"weights_hash"`
}

func (e *Engine) Stats() EngineStats {
	e.lastMu.Lock()
	last := e.lastResult
	e.lastMu.Unlock()
	weights := e.Weights()
	return EngineStats{
		BoardSize:    e.size,
		Cache:        e.cache.Stats(),
		LastDepth:    last.Depth,
		LastDuration: last.Duration,
		LastScore:    last.Score,
		Weights:      weights,
		WeightsHash:  fmt.Sprintf("0x%016x", weightsHash(weights)),
	}
}
