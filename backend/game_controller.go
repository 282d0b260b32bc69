package main

import (
	"fmt"
	"sync"
)

// GameController serializes access to the live game and owns one engine
// per board size. Engines are built lazily: the table build is expensive
// enough that switching board sizes should not pay it twice.
type GameController struct {
	mu         sync.Mutex
	game       *Game
	engines    map[int]*Engine
	difficulty Difficulty
	seed       int64
}

func NewGameController(config Config) (*GameController, error) {
	gc := &GameController{
		engines:    make(map[int]*Engine),
		difficulty: config.Difficulty,
		seed:       config.Seed,
	}
	if _, err := gc.engineForLocked(config.BoardSize, config.Weights); err != nil {
		return nil, err
	}
	gc.game = NewGame(config.BoardSize, config.Seed)
	return gc, nil
}

func (gc *GameController) engineForLocked(size int, weights EvalWeights) (*Engine, error) {
	if engine, ok := gc.engines[size]; ok {
		return engine, nil
	}
	engine, err := NewEngine(size, weights)
	if err != nil {
		return nil, err
	}
	gc.engines[size] = engine
	return engine, nil
}

func (gc *GameController) currentEngineLocked() *Engine {
	return gc.engines[gc.game.Size()]
}

func (gc *GameController) State() GameState {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.State()
}

// NewGame restarts on the requested size, building that size's engine on
// first use. Size 0 keeps the current size.
func (gc *GameController) NewGame(size int) (GameState, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if size == 0 {
		size = gc.game.Size()
	}
	weights := DefaultEvalWeights()
	if current := gc.currentEngineLocked(); current != nil {
		weights = current.Weights()
	}
	if _, err := gc.engineForLocked(size, weights); err != nil {
		return GameState{}, err
	}
	gc.game.Reset(size)
	return gc.game.State(), nil
}

func (gc *GameController) ApplyMove(d Direction) (GameState, MoveOutcome, error) {
	if !d.Valid() {
		return GameState{}, MoveOutcome{}, fmt.Errorf("direction %d: %w", int(d), ErrInvalidDirection)
	}
	gc.mu.Lock()
	defer gc.mu.Unlock()
	outcome := gc.game.ApplyMove(d)
	return gc.game.State(), outcome, nil
}

func (gc *GameController) Undo() (GameState, bool) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	ok := gc.game.Undo()
	return gc.game.State(), ok
}

func (gc *GameController) KeepPlaying() GameState {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.KeepPlaying()
	return gc.game.State()
}

// Hint searches the live board without touching the game.
func (gc *GameController) Hint() (Direction, bool, error) {
	gc.mu.Lock()
	grid := gc.game.Grid()
	engine := gc.currentEngineLocked()
	diff := gc.difficulty
	gc.mu.Unlock()
	return engine.GetBestMove(grid, diff)
}

// AutoMove searches and applies the best move in one step. found=false
// means the board is dead and nothing was applied.
func (gc *GameController) AutoMove() (GameState, MoveOutcome, Direction, bool, error) {
	move, found, err := gc.Hint()
	if err != nil || !found {
		return gc.State(), MoveOutcome{}, 0, false, err
	}
	state, outcome, err := gc.ApplyMove(move)
	return state, outcome, move, found, err
}

func (gc *GameController) Difficulty() Difficulty {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.difficulty
}

func (gc *GameController) SetDifficulty(d Difficulty) {
	gc.mu.Lock()
	gc.difficulty = d
	gc.mu.Unlock()
}

func (gc *GameController) EngineStats() EngineStats {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.currentEngineLocked().Stats()
}

func (gc *GameController) EvaluateCurrent() (float64, error) {
	gc.mu.Lock()
	grid := gc.game.Grid()
	engine := gc.currentEngineLocked()
	gc.mu.Unlock()
	return engine.EvaluateGrid(grid)
}

func (gc *GameController) Weights() EvalWeights {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.currentEngineLocked().Weights()
}

// SetWeights applies the new vector to every engine, current size or
// not, so a later size switch does not resurrect stale weights.
func (gc *GameController) SetWeights(w EvalWeights) {
	gc.mu.Lock()
	engines := make([]*Engine, 0, len(gc.engines))
	for _, engine := range gc.engines {
		engines = append(engines, engine)
	}
	gc.mu.Unlock()
	for _, engine := range engines {
		engine.SetWeights(w)
	}
}

func (gc *GameController) ClearCache() {
	gc.mu.Lock()
	engines := make([]*Engine, 0, len(gc.engines))
	for _, engine := range gc.engines {
		engines = append(engines, engine)
	}
	gc.mu.Unlock()
	for _, engine := range engines {
		engine.ClearCache()
	}
}

// GameFinished reports whether auto-play should stop driving moves.
func (gc *GameController) GameFinished() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Finished()
}
