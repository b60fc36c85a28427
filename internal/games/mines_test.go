package games

import (
	"errors"
	"math"
	"sort"
	"testing"
)

func TestNewMinesLayout_Properties(t *testing.T) {
	t.Parallel()

	for _, bombs := range []int{2, 5, 12, 24} {
		bombs := bombs
		for i := 0; i < 200; i++ {
			layout, err := NewMinesLayout(bombs)
			if err != nil {
				t.Fatalf("bombs=%d: %v", bombs, err)
			}
			if len(layout) != bombs {
				t.Fatalf("bombs=%d: layout has %d cells", bombs, len(layout))
			}
			if !sort.IntsAreSorted(layout) {
				t.Fatalf("bombs=%d: layout not sorted: %v", bombs, layout)
			}
			seen := map[int]bool{}
			for _, cell := range layout {
				if cell < 1 || cell > MinesCells {
					t.Fatalf("bombs=%d: cell %d out of range", bombs, cell)
				}
				if seen[cell] {
					t.Fatalf("bombs=%d: duplicate cell %d in %v", bombs, cell, layout)
				}
				seen[cell] = true
			}
		}
	}
}

func TestNewMinesLayout_RejectsBadBombs(t *testing.T) {
	t.Parallel()

	for _, bombs := range []int{-1, 0, 1, 25, 26} {
		_, err := NewMinesLayout(bombs)
		if !errors.Is(err, ErrInvalidParameters) {
			t.Fatalf("bombs=%d: expected ErrInvalidParameters, got %v", bombs, err)
		}
	}
}

func TestMinesMultiplier_Values(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rtp    float64
		bombs  int
		opened int
		want   float64
	}{
		{rtp: 100, bombs: 3, opened: 0, want: 1},
		{rtp: 100, bombs: 3, opened: 1, want: 25.0 / 22.0},
		{rtp: 100, bombs: 24, opened: 1, want: 25},
		{rtp: 97, bombs: 3, opened: 1, want: 25.0 / 22.0 * 0.97},
		// Full clear with 23 bombs: 25/2 * 24/1 fair.
		{rtp: 100, bombs: 23, opened: 2, want: 300},
	}

	for _, tt := range tests {
		got := MinesMultiplier(tt.rtp, tt.bombs, tt.opened)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("MinesMultiplier(%v, %d, %d): want %v, got %v", tt.rtp, tt.bombs, tt.opened, tt.want, got)
		}
	}
}

func TestMinesMultiplier_StrictlyIncreasing(t *testing.T) {
	t.Parallel()

	for bombs := MinesMinBombs; bombs <= MinesMaxBombs; bombs++ {
		prev := MinesMultiplier(DefaultRTP, bombs, 0)
		for opened := 1; opened <= MinesSafeCells(bombs); opened++ {
			cur := MinesMultiplier(DefaultRTP, bombs, opened)
			if cur <= prev {
				t.Fatalf("bombs=%d: multiplier not increasing at opened=%d (%v -> %v)", bombs, opened, prev, cur)
			}
			prev = cur
		}
	}
}

// TestMines_StopAfterK_Return plays a fixed stop-after-k strategy against
// fresh layouts and checks the realized return matches the configured RTP.
func TestMines_StopAfterK_Return(t *testing.T) {
	t.Parallel()

	if testing.Short() {
		t.Skip("statistical test")
	}

	const (
		n     = 100_000
		bombs = 3
		k     = 3
		rtp   = 97.0
		bet   = int64(100)
	)

	var paid int64
	for i := 0; i < n; i++ {
		layout, err := NewMinesLayout(bombs)
		if err != nil {
			t.Fatalf("layout: %v", err)
		}

		bomb := map[int]bool{}
		for _, c := range layout {
			bomb[c] = true
		}

		// Open cells 1..k in order; any bomb among them busts the bet.
		survived := true
		for cell := 1; cell <= k; cell++ {
			if bomb[cell] {
				survived = false
				break
			}
		}
		if survived {
			paid += WinAmount(bet, MinesMultiplier(rtp, bombs, k))
		}
	}

	got := float64(paid) / float64(n*bet) * 100
	if math.Abs(got-rtp) > 2.5 {
		t.Fatalf("realized RTP %.2f%%, want %.2f%% +/- 2.5", got, rtp)
	}
}
