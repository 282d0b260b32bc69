package main

// slideExponentsLeft applies the merge rule to one line of exponents, in
// place: scan from the leading edge with a write cursor; a cell merges into
// the previously written cell only when the exponents match and that cell
// was not itself produced by a merge in this pass. Returns the points
// gained, i.e. the sum of the merged tile values.
//
// [1,1,1,0] therefore becomes [2,1,0,0] (+4), never [2,2,0,0]. Two tiles
// already at the maximum exponent do not merge; the field cannot hold 16.
func slideExponentsLeft(line []uint8) int {
	write := 0
	points := 0
	lastMerged := false
	for read := 0; read < len(line); read++ {
		v := line[read]
		if v == 0 {
			continue
		}
		if write > 0 && line[write-1] == v && !lastMerged && v < maxExponent {
			line[write-1]++
			points += 1 << line[write-1]
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

func packLine4(line []uint8) uint16 {
	var row uint16
	for i := 0; i < 4; i++ {
		row |= uint16(line[i]) << uint(i*4)
	}
	return row
}

func unpackLine4(row uint16, line []uint8) {
	for i := 0; i < 4; i++ {
		line[i] = uint8(row>>uint(i*4)) & cellMask
	}
}

// lineTables holds the precomputed transforms for every possible 16-bit
// packed line: the result of sliding left or right, the points gained by
// the merges, and the line's heuristic contribution. The slide tables are
// pure functions of the merge rule and never change; the heuristic table
// is a function of the evaluation weights and is regenerated whenever the
// weights change.
type lineTables struct {
	left       [1 << 16]uint16
	right      [1 << 16]uint16
	leftScore  [1 << 16]uint32
	rightScore [1 << 16]uint32
	heur       [1 << 16]float64
}

func newLineTables(weights EvalWeights) *lineTables {
	t := &lineTables{}
	var line [4]uint8
	for row := 0; row < 1<<16; row++ {
		unpackLine4(uint16(row), line[:])
		t.heur[row] = lineHeuristic(line[:], weights)

		points := slideExponentsLeft(line[:])
		result := packLine4(line[:])
		t.left[row] = result
		t.leftScore[row] = uint32(points)

		// A right slide is a left slide on the reversed line; reversal is a
		// bijection over row values, so this fills every right entry.
		rev := reverseRow4(uint16(row))
		t.right[rev] = reverseRow4(result)
		t.rightScore[rev] = uint32(points)
	}
	return t
}

func (t *lineTables) rebuildHeuristic(weights EvalWeights) {
	var line [4]uint8
	for row := 0; row < 1<<16; row++ {
		unpackLine4(uint16(row), line[:])
		t.heur[row] = lineHeuristic(line[:], weights)
	}
}
