package main

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// AIPlayer drives auto-play: while enabled, it periodically searches the
// live board and applies the chosen move. Searches run off the ticker
// goroutine because a deep expectimax call can block for hundreds of
// milliseconds; there is no way to abort one in flight, so a reset or
// undo that lands mid-search just bumps the generation and the stale
// result is dropped when it arrives.
type AIPlayer struct {
	controller *GameController
	onMove     func(GameState, MoveOutcome, Direction)

	enabled    atomic.Bool
	thinking   atomic.Bool
	generation atomic.Uint64
}

func NewAIPlayer(controller *GameController, onMove func(GameState, MoveOutcome, Direction)) *AIPlayer {
	return &AIPlayer{controller: controller, onMove: onMove}
}

func (a *AIPlayer) Enable()       { a.enabled.Store(true) }
func (a *AIPlayer) Disable()      { a.enabled.Store(false) }
func (a *AIPlayer) Enabled() bool { return a.enabled.Load() }
func (a *AIPlayer) Thinking() bool {
	return a.thinking.Load()
}

// InvalidatePending discards any in-flight search result. Call after any
// operation that changes the board out from under the worker.
func (a *AIPlayer) InvalidatePending() {
	a.generation.Add(1)
}

func (a *AIPlayer) Run(done <-chan struct{}) {
	interval := time.Duration(GetConfig().AutoPlayIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = 150 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			a.step()
		}
	}
}

func (a *AIPlayer) step() {
	if !a.enabled.Load() || !a.thinking.CompareAndSwap(false, true) {
		return
	}
	gen := a.generation.Load()
	go func() {
		defer a.thinking.Store(false)
		move, found, err := a.controller.Hint()
		if err != nil {
			log.Error().Err(err).Msg("auto-play search failed")
			a.enabled.Store(false)
			return
		}
		if !found {
			log.Info().Msg("auto-play stopped: no legal move")
			a.enabled.Store(false)
			return
		}
		if a.generation.Load() != gen {
			return
		}
		state, outcome, err := a.controller.ApplyMove(move)
		if err != nil {
			return
		}
		if a.onMove != nil {
			a.onMove(state, outcome, move)
		}
		if a.controller.GameFinished() {
			log.Info().
				Int("score", state.Score).
				Int("highest", state.HighestTile).
				Int("moves", state.Moves).
				Msg("auto-play finished game")
			a.enabled.Store(false)
		}
	}()
}
