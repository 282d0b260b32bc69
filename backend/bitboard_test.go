package main

import (
	"errors"
	"math/rand"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, size := range []int{2, 3, 4, 5, 8} {
		for trial := 0; trial < 50; trial++ {
			g := NewGrid(size)
			for r := 0; r < size; r++ {
				for c := 0; c < size; c++ {
					if rng.Intn(3) == 0 {
						g[r][c] = 1 << uint(1+rng.Intn(maxExponent))
					}
				}
			}
			s, err := EncodePacked(g)
			if err != nil {
				t.Fatalf("size %d: encode failed: %v", size, err)
			}
			back := DecodePacked(s, size)
			if !g.Equals(back) {
				t.Fatalf("size %d: round trip mismatch:\n%v\n%v", size, g, back)
			}
		}
	}
}

func TestEncodeOverflowRejected(t *testing.T) {
	g := NewGrid(4)
	g[0][0] = 65536
	if _, err := EncodePacked(g); !errors.Is(err, ErrEncodingOverflow) {
		t.Fatalf("expected ErrEncodingOverflow, got %v", err)
	}
}

func TestEncodeInvalidTileRejected(t *testing.T) {
	for _, v := range []int{3, 6, 7, 1, 100} {
		g := NewGrid(4)
		g[1][2] = v
		if _, err := EncodePacked(g); !errors.Is(err, ErrInvalidTile) {
			t.Fatalf("value %d: expected ErrInvalidTile, got %v", v, err)
		}
	}
}

func TestEncodeBadSizeRejected(t *testing.T) {
	for _, size := range []int{0, 1, 9} {
		g := NewGrid(size)
		if _, err := EncodePacked(g); !errors.Is(err, ErrBoardSize) {
			t.Fatalf("size %d: expected ErrBoardSize, got %v", size, err)
		}
	}
}

func TestTransposeInvolution(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		w := rng.Uint64()
		if transpose4(transpose4(w)) != w {
			t.Fatalf("transpose not an involution for %016x", w)
		}
	}
}

func TestTransposeMapsRowsToColumns(t *testing.T) {
	g := GridFromRows([][]int{
		{2, 4, 8, 16},
		{0, 2, 0, 4},
		{32, 0, 2, 0},
		{0, 8, 0, 2},
	})
	s, err := EncodePacked(g)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	got := DecodePacked(PackedState{words: [4]uint64{transpose4(s.words[0])}}, 4)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if got[r][c] != g[c][r] {
				t.Fatalf("cell (%d,%d): got %d want %d", r, c, got[r][c], g[c][r])
			}
		}
	}
}

func TestCountEmptyFastMatchesGeneric(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 200; trial++ {
		var s PackedState
		for i := 0; i < 16; i++ {
			if rng.Intn(2) == 0 {
				s = s.withCell(i, uint8(1+rng.Intn(15)))
			}
		}
		want := 0
		for i := 0; i < 16; i++ {
			if s.cell(i) == 0 {
				want++
			}
		}
		if got := s.countEmpty(4); got != want {
			t.Fatalf("countEmpty: got %d want %d", got, want)
		}
	}
}

func TestCountEmptyEmptyBoard(t *testing.T) {
	var s PackedState
	if got := s.countEmpty(4); got != 16 {
		t.Fatalf("empty 4x4 board countEmpty = %d, want 16", got)
	}
	if got := s.countEmpty(5); got != 25 {
		t.Fatalf("empty 5x5 board countEmpty = %d, want 25", got)
	}
	if got := countEmpty4(0); got != 16 {
		t.Fatalf("countEmpty4(0) = %d, want 16", got)
	}
}

func TestReverseRow4(t *testing.T) {
	if got := reverseRow4(0x1234); got != 0x4321 {
		t.Fatalf("reverseRow4(0x1234) = %04x, want 0x4321", got)
	}
	if got := reverseRow4(reverseRow4(0xABCD)); got != 0xABCD {
		t.Fatalf("reverse not an involution: %04x", got)
	}
}

func TestPlaceTilePanicsOnOccupiedCell(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic placing onto occupied cell")
		}
	}()
	var s PackedState
	s = s.withCell(5, 3)
	placeTile(s, 4, 5, 1)
}

func TestMaxCell(t *testing.T) {
	g := GridFromRows([][]int{
		{0, 2, 0, 0},
		{0, 0, 1024, 0},
		{0, 4, 0, 0},
		{0, 0, 0, 2},
	})
	s, err := EncodePacked(g)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if got := s.maxCell(4); got != 10 {
		t.Fatalf("maxCell: got %d want 10", got)
	}
}
