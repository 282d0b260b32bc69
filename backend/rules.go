package main

import "math/rand"

const (
	winTileValue = 2048
	maxTileValue = 1 << maxExponent
)

// slideValuesLeft is the authoritative merge rule on tile values, the
// same single-scan write-cursor rule the search tables encode: a written
// cell merges at most once per pass, and two max-value tiles stay apart.
func slideValuesLeft(line []int) int {
	write := 0
	points := 0
	lastMerged := false
	for read := 0; read < len(line); read++ {
		v := line[read]
		if v == 0 {
			continue
		}
		if write > 0 && line[write-1] == v && !lastMerged && v < maxTileValue {
			line[write-1] *= 2
			points += line[write-1]
			lastMerged = true
		} else {
			line[write] = v
			write++
			lastMerged = false
		}
	}
	for i := write; i < len(line); i++ {
		line[i] = 0
	}
	return points
}

// applyMoveToGrid slides the whole grid in one direction without spawning
// a tile. The input grid is not mutated.
func applyMoveToGrid(g Grid, d Direction) (Grid, int, bool) {
	n := g.Size()
	out := g.Clone()
	line := make([]int, n)
	points := 0
	moved := false
	for lane := 0; lane < n; lane++ {
		for pos := 0; pos < n; pos++ {
			i := lineCellIndex(n, d, lane, pos)
			line[pos] = out[i/n][i%n]
		}
		points += slideValuesLeft(line)
		for pos := 0; pos < n; pos++ {
			i := lineCellIndex(n, d, lane, pos)
			if out[i/n][i%n] != line[pos] {
				moved = true
			}
			out[i/n][i%n] = line[pos]
		}
	}
	return out, points, moved
}

// spawnRandomTile places a 2 (p=0.9) or 4 (p=0.1) on a uniformly chosen
// empty cell, mutating the grid. Returns false on a full board.
func spawnRandomTile(g Grid, rng *rand.Rand) (cellRef, int, bool) {
	empty := g.EmptyCells()
	if len(empty) == 0 {
		return cellRef{}, 0, false
	}
	cell := empty[rng.Intn(len(empty))]
	value := 2
	if rng.Float64() >= tileTwoProb {
		value = 4
	}
	g[cell.Row][cell.Col] = value
	return cell, value, true
}

// hasAnyMove reports whether at least one direction changes the board.
func hasAnyMove(g Grid) bool {
	if g.CountEmpty() > 0 {
		return true
	}
	for _, d := range Directions {
		if _, _, moved := applyMoveToGrid(g, d); moved {
			return true
		}
	}
	return false
}
