package main

// moveResult is what a single slide produces: the successor state, the
// points gained by merges, and whether anything actually moved. A move
// that changes nothing is illegal and must not spawn a tile.
type moveResult struct {
	state  PackedState
	points int
	moved  bool
}

// A moveSimulator applies one directional slide to a packed board. The
// table-driven simulator covers the 4x4 fast path; the generic simulator
// covers every other supported size with the identical merge rule.
type moveSimulator interface {
	Move(s PackedState, d Direction) moveResult
}

// tableSimulator resolves 4x4 moves by row-table lookup. Left and right
// read the rows directly; up and down transpose, slide, and transpose
// back, so the column rule is the row rule by construction.
type tableSimulator struct {
	tables *lineTables
}

func (ts *tableSimulator) Move(s PackedState, d Direction) moveResult {
	w := s.words[0]
	var out uint64
	points := 0
	switch d {
	case DirLeft:
		for r := 0; r < 4; r++ {
			row := row4(w, r)
			out = setRow4(out, r, ts.tables.left[row])
			points += int(ts.tables.leftScore[row])
		}
	case DirRight:
		for r := 0; r < 4; r++ {
			row := row4(w, r)
			out = setRow4(out, r, ts.tables.right[row])
			points += int(ts.tables.rightScore[row])
		}
	case DirUp:
		t := transpose4(w)
		for r := 0; r < 4; r++ {
			row := row4(t, r)
			out = setRow4(out, r, ts.tables.left[row])
			points += int(ts.tables.leftScore[row])
		}
		out = transpose4(out)
	case DirDown:
		t := transpose4(w)
		for r := 0; r < 4; r++ {
			row := row4(t, r)
			out = setRow4(out, r, ts.tables.right[row])
			points += int(ts.tables.rightScore[row])
		}
		out = transpose4(out)
	default:
		return moveResult{state: s}
	}
	return moveResult{
		state:  PackedState{words: [4]uint64{out}},
		points: points,
		moved:  out != w,
	}
}

// genericSimulator walks cell indices line by line for any board size. It
// shares slideExponentsLeft with the table builder, so on a 4x4 board it
// produces bit-identical results to the table path.
type genericSimulator struct {
	size int
}

func (gs *genericSimulator) Move(s PackedState, d Direction) moveResult {
	n := gs.size
	line := make([]uint8, n)
	out := s
	points := 0
	moved := false
	for lane := 0; lane < n; lane++ {
		for pos := 0; pos < n; pos++ {
			line[pos] = s.cell(lineCellIndex(n, d, lane, pos))
		}
		points += slideExponentsLeft(line)
		for pos := 0; pos < n; pos++ {
			i := lineCellIndex(n, d, lane, pos)
			if out.cell(i) != line[pos] {
				moved = true
			}
			out = out.withCell(i, line[pos])
		}
	}
	return moveResult{state: out, points: points, moved: moved}
}

// lineCellIndex maps (lane, position-along-slide) to a flat cell index so
// that position 0 is always the edge tiles slide toward.
func lineCellIndex(n int, d Direction, lane, pos int) int {
	switch d {
	case DirLeft:
		return lane*n + pos
	case DirRight:
		return lane*n + (n - 1 - pos)
	case DirUp:
		return pos*n + lane
	default: // DirDown
		return (n-1-pos)*n + lane
	}
}

func newSimulator(size int, tables *lineTables) moveSimulator {
	if size == fastBoardSize {
		return &tableSimulator{tables: tables}
	}
	return &genericSimulator{size: size}
}

// legalMoves reports which directions change the board, in the fixed
// tie-break order.
func legalMoves(sim moveSimulator, s PackedState) []Direction {
	moves := make([]Direction, 0, len(Directions))
	for _, d := range Directions {
		if sim.Move(s, d).moved {
			moves = append(moves, d)
		}
	}
	return moves
}
