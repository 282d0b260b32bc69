package main

import (
	"errors"
	"testing"
)

func newTestController(t *testing.T) *GameController {
	t.Helper()
	config := DefaultConfig()
	config.Seed = 123
	controller, err := NewGameController(config)
	if err != nil {
		t.Fatalf("NewGameController failed: %v", err)
	}
	return controller
}

func TestControllerNewGameKeepsSize(t *testing.T) {
	controller := newTestController(t)
	state, err := controller.NewGame(0)
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}
	if state.Size != 4 {
		t.Fatalf("size = %d, want 4", state.Size)
	}
	if state.Score != 0 || state.Moves != 0 {
		t.Fatalf("fresh game state = %+v", state)
	}
}

func TestControllerNewGameSwitchesSize(t *testing.T) {
	controller := newTestController(t)
	state, err := controller.NewGame(5)
	if err != nil {
		t.Fatalf("NewGame(5) failed: %v", err)
	}
	if state.Size != 5 {
		t.Fatalf("size = %d, want 5", state.Size)
	}
	if _, err := controller.NewGame(99); !errors.Is(err, ErrBoardSize) {
		t.Fatalf("NewGame(99): expected ErrBoardSize, got %v", err)
	}
}

func TestControllerApplyMoveInvalidDirection(t *testing.T) {
	controller := newTestController(t)
	if _, _, err := controller.ApplyMove(Direction(7)); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("expected ErrInvalidDirection, got %v", err)
	}
}

func TestControllerHintAndAutoMove(t *testing.T) {
	controller := newTestController(t)
	move, found, err := controller.Hint()
	if err != nil {
		t.Fatalf("Hint failed: %v", err)
	}
	if !found || !move.Valid() {
		t.Fatalf("hint = (%s, %v)", move, found)
	}

	before := controller.State()
	state, outcome, applied, found, err := controller.AutoMove()
	if err != nil {
		t.Fatalf("AutoMove failed: %v", err)
	}
	if !found || !outcome.Moved {
		t.Fatalf("AutoMove did not move: found=%v outcome=%+v", found, outcome)
	}
	if !applied.Valid() {
		t.Fatalf("invalid applied move %d", int(applied))
	}
	if state.Moves != before.Moves+1 {
		t.Fatalf("moves %d -> %d", before.Moves, state.Moves)
	}
}

func TestControllerDifficulty(t *testing.T) {
	controller := newTestController(t)
	if controller.Difficulty() != DifficultyMedium {
		t.Fatalf("default difficulty = %s", controller.Difficulty())
	}
	controller.SetDifficulty(DifficultyExpert)
	if controller.Difficulty() != DifficultyExpert {
		t.Fatalf("difficulty not updated")
	}
}

func TestControllerSetWeightsCoversAllSizes(t *testing.T) {
	controller := newTestController(t)
	if _, err := controller.NewGame(5); err != nil {
		t.Fatalf("NewGame(5) failed: %v", err)
	}
	w := DefaultEvalWeights()
	w.Openness *= 2
	controller.SetWeights(w)
	if controller.Weights() != w {
		t.Fatalf("5x5 engine weights = %+v", controller.Weights())
	}
	if _, err := controller.NewGame(4); err != nil {
		t.Fatalf("NewGame(4) failed: %v", err)
	}
	if controller.Weights() != w {
		t.Fatalf("4x4 engine kept stale weights: %+v", controller.Weights())
	}
}

func TestControllerUndo(t *testing.T) {
	controller := newTestController(t)
	if _, ok := controller.Undo(); ok {
		t.Fatalf("undo succeeded on fresh game")
	}
	before := controller.State()
	_, _, _, found, err := controller.AutoMove()
	if err != nil || !found {
		t.Fatalf("AutoMove = (%v, %v)", found, err)
	}
	state, ok := controller.Undo()
	if !ok {
		t.Fatalf("undo failed after move")
	}
	if state.Score != before.Score || state.Moves != before.Moves {
		t.Fatalf("undo state = %+v, want score=%d moves=%d", state, before.Score, before.Moves)
	}
}
