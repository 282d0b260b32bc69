package main

import (
	"math/rand"
	"time"
)

const (
	maxUndoDepth   = 10
	startTileCount = 2
)

type snapshot struct {
	grid  Grid
	score int
	moves int
}

// MoveOutcome is what one applied move reports back to the caller and to
// the event push.
type MoveOutcome struct {
	Moved   bool    `json:"moved"`
	Points  int     `json:"points"`
	Spawned cellRef `json:"spawned"`
	Value   int     `json:"spawned_value"`
}

// Game is the authoritative rules state the engine searches against: the
// live grid, the score, the undo history and the win/over flags. It is
// not safe for concurrent use; the controller serializes access.
type Game struct {
	size        int
	grid        Grid
	score       int
	moves       int
	won         bool
	keepPlaying bool
	over        bool
	history     []snapshot
	rng         *rand.Rand
	startedAt   time.Time
}

func NewGame(size int, seed int64) *Game {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{size: size, rng: rand.New(rand.NewSource(seed))}
	g.Reset(size)
	return g
}

func (g *Game) Reset(size int) {
	g.size = size
	g.grid = NewGrid(size)
	g.score = 0
	g.moves = 0
	g.won = false
	g.keepPlaying = false
	g.over = false
	g.history = g.history[:0]
	g.startedAt = time.Now()
	for i := 0; i < startTileCount; i++ {
		spawnRandomTile(g.grid, g.rng)
	}
}

// ApplyMove slides the board, and on a changed board spawns the random
// tile, records the undo snapshot and refreshes the win/over flags. A
// slide that changes nothing leaves the game untouched.
func (g *Game) ApplyMove(d Direction) MoveOutcome {
	if g.over {
		return MoveOutcome{}
	}
	next, points, moved := applyMoveToGrid(g.grid, d)
	if !moved {
		return MoveOutcome{}
	}
	g.pushSnapshot()
	g.grid = next
	g.score += points
	g.moves++
	cell, value, _ := spawnRandomTile(g.grid, g.rng)
	if !g.won && g.grid.HighestTile() >= winTileValue {
		g.won = true
	}
	if !hasAnyMove(g.grid) {
		g.over = true
	}
	return MoveOutcome{Moved: true, Points: points, Spawned: cell, Value: value}
}

func (g *Game) pushSnapshot() {
	g.history = append(g.history, snapshot{
		grid:  g.grid.Clone(),
		score: g.score,
		moves: g.moves,
	})
	if len(g.history) > maxUndoDepth {
		g.history = g.history[len(g.history)-maxUndoDepth:]
	}
}

// Undo restores the position before the most recent move, including the
// spawned tile. A won or over flag is re-derived from the restored grid.
func (g *Game) Undo() bool {
	if len(g.history) == 0 {
		return false
	}
	last := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	g.grid = last.grid
	g.score = last.score
	g.moves = last.moves
	g.over = false
	g.won = g.grid.HighestTile() >= winTileValue
	return true
}

// KeepPlaying acknowledges a win and lets the game continue past the win
// tile.
func (g *Game) KeepPlaying() {
	if g.won {
		g.keepPlaying = true
	}
}

func (g *Game) Grid() Grid {
	return g.grid.Clone()
}

func (g *Game) Size() int        { return g.size }
func (g *Game) Score() int       { return g.score }
func (g *Game) Over() bool       { return g.over }
func (g *Game) Won() bool        { return g.won }
func (g *Game) CanUndo() bool    { return len(g.history) > 0 }
func (g *Game) MoveCount() int   { return g.moves }
func (g *Game) HighestTile() int { return g.grid.HighestTile() }

// Finished reports whether play should stop: the board is dead, or the
// win tile was reached and the player has not opted to continue.
func (g *Game) Finished() bool {
	return g.over || (g.won && !g.keepPlaying)
}

func (g *Game) State() GameState {
	return GameState{
		Board:       g.grid.Clone(),
		Size:        g.size,
		Score:       g.score,
		Moves:       g.moves,
		HighestTile: g.grid.HighestTile(),
		Won:         g.won,
		KeepPlaying: g.keepPlaying,
		Over:        g.over,
		CanUndo:     len(g.history) > 0,
		StartedAtMs: g.startedAt.UnixMilli(),
	}
}
