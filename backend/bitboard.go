package main

import (
	"errors"
	"fmt"
	"math/bits"
)

var (
	// ErrEncodingOverflow reports a tile whose exponent does not fit the
	// 4-bit cell field (value >= 65536). Callers must not truncate: a
	// truncated exponent would silently corrupt merge simulation.
	ErrEncodingOverflow = errors.New("tile exponent exceeds packed field width")
	ErrInvalidTile      = errors.New("tile value is not a power of two")
	ErrBoardSize        = errors.New("unsupported board size")
)

const (
	cellBits     = 4
	cellMask     = 0xF
	maxExponent  = 15
	cellsPerWord = 16
	rowMask      = 0xFFFF

	fastBoardSize = 4
	minBoardSize  = 2
	maxBoardSize  = 8
)

// A PackedState stores one board as 4-bit exponent fields, 16 cells per
// 64-bit word. Cell i (row*size+col) lives at bits (i%16)*4 of words[i/16],
// so a 4x4 board occupies exactly words[0] and an 8x8 board fills all four
// words. Exponent 0 marks an empty cell; exponent k marks tile 2^k.
type PackedState struct {
	words [4]uint64
}

func (s PackedState) cell(i int) uint8 {
	shift := uint(i%cellsPerWord) * cellBits
	return uint8((s.words[i/cellsPerWord] >> shift) & cellMask)
}

func (s PackedState) withCell(i int, exp uint8) PackedState {
	shift := uint(i%cellsPerWord) * cellBits
	w := i / cellsPerWord
	s.words[w] = s.words[w]&^(uint64(cellMask)<<shift) | uint64(exp)<<shift
	return s
}

// EncodePacked converts a grid of tile values into its packed form.
func EncodePacked(g Grid) (PackedState, error) {
	n := g.Size()
	if n < minBoardSize || n > maxBoardSize {
		return PackedState{}, fmt.Errorf("size %d: %w", n, ErrBoardSize)
	}
	var s PackedState
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			v := g[r][c]
			if v == 0 {
				continue
			}
			exp := bits.TrailingZeros(uint(v))
			if v < 2 || 1<<uint(exp) != v {
				return PackedState{}, fmt.Errorf("cell (%d,%d) value %d: %w", r, c, v, ErrInvalidTile)
			}
			if exp > maxExponent {
				return PackedState{}, fmt.Errorf("cell (%d,%d) value %d: %w", r, c, v, ErrEncodingOverflow)
			}
			s = s.withCell(r*n+c, uint8(exp))
		}
	}
	return s, nil
}

// DecodePacked is the inverse of EncodePacked. It succeeds for any packed
// input because every field value 0..15 maps to a valid tile.
func DecodePacked(s PackedState, size int) Grid {
	g := NewGrid(size)
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			exp := s.cell(r*size + c)
			if exp > 0 {
				g[r][c] = 1 << exp
			}
		}
	}
	return g
}

func (s PackedState) countEmpty(size int) int {
	if size == fastBoardSize {
		return countEmpty4(s.words[0])
	}
	count := 0
	for i := 0; i < size*size; i++ {
		if s.cell(i) == 0 {
			count++
		}
	}
	return count
}

func (s PackedState) maxCell(size int) int {
	max := 0
	for i := 0; i < size*size; i++ {
		if exp := int(s.cell(i)); exp > max {
			max = exp
		}
	}
	return max
}

// row4 extracts row r of a 4x4 board as a 16-bit packed line.
func row4(w uint64, r int) uint16 {
	return uint16((w >> uint(r*16)) & rowMask)
}

func setRow4(w uint64, r int, row uint16) uint64 {
	shift := uint(r * 16)
	return w&^(uint64(rowMask)<<shift) | uint64(row)<<shift
}

// transpose4 mirrors a packed 4x4 board along its main diagonal using bit
// shuffles, so column operations can reuse the row tables.
func transpose4(x uint64) uint64 {
	a1 := x & 0xF0F00F0FF0F00F0F
	a2 := x & 0x0000F0F00000F0F0
	a3 := x & 0x0F0F00000F0F0000
	a := a1 | (a2 << 12) | (a3 >> 12)
	b1 := a & 0xFF00FF0000FF00FF
	b2 := a & 0x00FF00FF00000000
	b3 := a & 0x00000000FF00FF00
	return b1 | (b2 >> 24) | (b3 << 24)
}

func reverseRow4(row uint16) uint16 {
	return (row >> 12) | ((row >> 4) & 0x00F0) | ((row << 4) & 0x0F00) | (row << 12)
}

// countEmpty4 counts zero nibbles of a full 4x4 word without a loop. The
// nibble accumulator holds at most 15, so the all-empty word is answered
// before the fold.
func countEmpty4(x uint64) int {
	if x == 0 {
		return 16
	}
	x |= (x >> 2) & 0x3333333333333333
	x |= x >> 1
	x = ^x & 0x1111111111111111
	x += x >> 32
	x += x >> 16
	x += x >> 8
	x += x >> 4
	return int(x & 0xF)
}

// placeTile writes exp into an empty cell. Placing onto an occupied cell is
// a caller-contract violation, not a recoverable condition.
func placeTile(s PackedState, size, cellIndex int, exp uint8) PackedState {
	if s.cell(cellIndex) != 0 {
		panic(fmt.Sprintf("placeTile: cell %d of %dx%d board already occupied", cellIndex, size, size))
	}
	return s.withCell(cellIndex, exp)
}
