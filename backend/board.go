package main

// Grid is the external board representation: a size x size matrix of tile
// values, 0 for empty, otherwise a power of two.
type Grid [][]int

func NewGrid(size int) Grid {
	g := make(Grid, size)
	for r := range g {
		g[r] = make([]int, size)
	}
	return g
}

func GridFromRows(rows [][]int) Grid {
	g := make(Grid, len(rows))
	for r, row := range rows {
		g[r] = append([]int(nil), row...)
	}
	return g
}

func (g Grid) Size() int {
	return len(g)
}

func (g Grid) Clone() Grid {
	return GridFromRows(g)
}

func (g Grid) CountEmpty() int {
	count := 0
	for _, row := range g {
		for _, v := range row {
			if v == 0 {
				count++
			}
		}
	}
	return count
}

func (g Grid) HighestTile() int {
	highest := 0
	for _, row := range g {
		for _, v := range row {
			if v > highest {
				highest = v
			}
		}
	}
	return highest
}

func (g Grid) TileSum() int {
	sum := 0
	for _, row := range g {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}

func (g Grid) Equals(other Grid) bool {
	if g.Size() != other.Size() {
		return false
	}
	for r := range g {
		for c := range g[r] {
			if g[r][c] != other[r][c] {
				return false
			}
		}
	}
	return true
}

type cellRef struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (g Grid) EmptyCells() []cellRef {
	cells := make([]cellRef, 0, g.Size()*g.Size())
	for r, row := range g {
		for c, v := range row {
			if v == 0 {
				cells = append(cells, cellRef{Row: r, Col: c})
			}
		}
	}
	return cells
}
