package main

import (
	"errors"
	"fmt"
)

// ErrInvalidDirection reports an unrecognized move token. Callers treat it
// as "not moved", never as a crash.
var ErrInvalidDirection = errors.New("invalid direction")

type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Directions lists all moves in the fixed iteration order used for
// tie-breaking at the search root.
var Directions = [4]Direction{DirUp, DirDown, DirLeft, DirRight}

func ParseDirection(token string) (Direction, error) {
	switch token {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	default:
		return 0, fmt.Errorf("%q: %w", token, ErrInvalidDirection)
	}
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

func (d Direction) Valid() bool {
	return d >= DirUp && d <= DirRight
}
