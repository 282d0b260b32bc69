package main

import (
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// Branches whose cumulative probability falls below this contribute
	// almost nothing to the expectation and are cut off at the leaf value.
	probEpsilon = 1e-4

	// A chance ply enumerates at most this many empty cells; beyond it a
	// position-scored subset stands in for the full expectation.
	chanceCellCap = 6

	maxSearchDepth = 6

	tileTwoProb  = 0.9
	tileFourProb = 0.1
)

// adaptiveDepth widens the search as the position gets riskier: a bigger
// max tile and a fuller board both warrant looking further ahead.
func adaptiveDepth(base, maxExp, empty int) int {
	depth := base
	if maxExp >= 11 {
		depth++
	}
	if maxExp >= 13 || empty <= 3 {
		depth++
	}
	if depth > maxSearchDepth {
		depth = maxSearchDepth
	}
	if depth < 1 {
		depth = 1
	}
	return depth
}

type searcher struct {
	size  int
	sim   moveSimulator
	eval  *evaluator
	cache *SearchCache
}

func newSearcher(size int, sim moveSimulator, eval *evaluator, cache *SearchCache) *searcher {
	return &searcher{size: size, sim: sim, eval: eval, cache: cache}
}

// SearchResult is what one root search reports back, including the data
// the diagnostics endpoints expose.
type SearchResult struct {
	Move     Direction     `json:"move"`
	Found    bool          `json:"found"`
	Score    float64       `json:"score"`
	Depth    int           `json:"depth"`
	Duration time.Duration `json:"duration"`
}

// bestMove runs the root agent ply across all four directions in
// parallel, one goroutine per direction. Subtrees share the cache, which
// is the only mutable state they touch. Ties break on the fixed direction
// order; a board with no legal move reports Found=false.
func (s *searcher) bestMove(st PackedState, baseDepth int) SearchResult {
	start := time.Now()
	depth := adaptiveDepth(baseDepth, st.maxCell(s.size), st.countEmpty(s.size))

	var scores [4]float64
	var valid [4]bool
	g := new(errgroup.Group)
	for i, d := range Directions {
		i, d := i, d
		g.Go(func() error {
			res := s.sim.Move(st, d)
			if !res.moved {
				return nil
			}
			valid[i] = true
			scores[i] = s.chanceScore(res.state, depth-1, 1.0)
			return nil
		})
	}
	g.Wait()

	result := SearchResult{
		Score:    math.Inf(-1),
		Depth:    depth,
		Duration: time.Since(start),
	}
	for i, d := range Directions {
		if valid[i] && scores[i] > result.Score {
			result.Move = d
			result.Found = true
			result.Score = scores[i]
		}
	}
	return result
}

func (s *searcher) agentScore(st PackedState, depth int, cprob float64) float64 {
	if depth == 0 || cprob < probEpsilon {
		return s.leafScore(st)
	}
	key := searchKey{state: st, depth: int8(depth), ply: plyAgent}
	if score, ok := s.cache.probe(key); ok {
		return score
	}
	best := math.Inf(-1)
	moved := false
	for _, d := range Directions {
		res := s.sim.Move(st, d)
		if !res.moved {
			continue
		}
		moved = true
		if score := s.chanceScore(res.state, depth-1, cprob); score > best {
			best = score
		}
	}
	if !moved {
		best = gameOverScore
	}
	s.cache.store(key, best)
	return best
}

func (s *searcher) chanceScore(st PackedState, depth int, cprob float64) float64 {
	if depth == 0 || cprob < probEpsilon {
		return s.leafScore(st)
	}
	key := searchKey{state: st, depth: int8(depth), ply: plyChance}
	if score, ok := s.cache.probe(key); ok {
		return score
	}
	cells := s.chanceCells(st)
	if len(cells) == 0 {
		return s.leafScore(st)
	}
	branchProb := cprob / float64(len(cells))
	total := 0.0
	for _, idx := range cells {
		two := placeTile(st, s.size, idx, 1)
		four := placeTile(st, s.size, idx, 2)
		total += tileTwoProb * s.agentScore(two, depth-1, branchProb*tileTwoProb)
		total += tileFourProb * s.agentScore(four, depth-1, branchProb*tileFourProb)
	}
	score := total / float64(len(cells))
	s.cache.store(key, score)
	return score
}

// leafScore evaluates a node the recursion stops at. A board that is both
// full and stuck is the terminal position and gets the sentinel instead
// of its heuristic sum.
func (s *searcher) leafScore(st PackedState) float64 {
	if st.countEmpty(s.size) == 0 && len(legalMoves(s.sim, st)) == 0 {
		return gameOverScore
	}
	return s.eval.evaluate(st)
}

// chanceCells returns the empty cells a chance ply branches on. When
// there are more than the cap, it keeps the ones closest to the board
// edge: tiles spawning near the rim interfere most with the packed-corner
// structure the heuristic steers toward. Selection is deterministic, so
// repeated searches of one position agree. This is an approximation of
// the full expectation, not an enumeration of it.
func (s *searcher) chanceCells(st PackedState) []int {
	n := s.size
	cells := make([]int, 0, n*n)
	for i := 0; i < n*n; i++ {
		if st.cell(i) == 0 {
			cells = append(cells, i)
		}
	}
	if len(cells) <= chanceCellCap {
		return cells
	}
	edgeDist := func(i int) int {
		r, c := i/n, i%n
		d := r
		if c < d {
			d = c
		}
		if n-1-r < d {
			d = n - 1 - r
		}
		if n-1-c < d {
			d = n - 1 - c
		}
		return d
	}
	sort.SliceStable(cells, func(a, b int) bool {
		da, db := edgeDist(cells[a]), edgeDist(cells[b])
		if da != db {
			return da < db
		}
		return cells[a] < cells[b]
	})
	return cells[:chanceCellCap]
}
