package games

import (
	"errors"
	"math"
	"testing"
)

func TestNewTowerLayout_Properties(t *testing.T) {
	t.Parallel()

	for _, d := range TowerDifficulties {
		d := d
		bombs := TowerBombsPerRow(d)
		for i := 0; i < 100; i++ {
			layout, err := NewTowerLayout(d)
			if err != nil {
				t.Fatalf("difficulty %s: %v", d, err)
			}
			if len(layout) != TowerRows {
				t.Fatalf("difficulty %s: %d rows", d, len(layout))
			}
			for row, cols := range layout {
				if len(cols) != bombs {
					t.Fatalf("difficulty %s row %d: %d bombs, want %d", d, row+1, len(cols), bombs)
				}
				seen := map[int]bool{}
				for _, col := range cols {
					if col < 1 || col > TowerColumns {
						t.Fatalf("difficulty %s row %d: column %d out of range", d, row+1, col)
					}
					if seen[col] {
						t.Fatalf("difficulty %s row %d: duplicate column %d", d, row+1, col)
					}
					seen[col] = true
				}
			}
		}
	}
}

func TestNewTowerLayout_RejectsBadDifficulty(t *testing.T) {
	t.Parallel()

	_, err := NewTowerLayout("nightmare")
	if !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters, got %v", err)
	}
}

func TestTowerMultiplier_Values(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rtp  float64
		d    TowerDifficulty
		row  int
		want float64
	}{
		{rtp: 100, d: TowerMedium, row: 1, want: 2},
		{rtp: 100, d: TowerMedium, row: 9, want: 512},
		{rtp: 100, d: TowerHigh, row: 3, want: 64},
		{rtp: 100, d: TowerLow, row: 1, want: 1.3333},
		{rtp: 97, d: TowerMedium, row: 2, want: 3.88},
		{rtp: 50, d: TowerHigh, row: 1, want: 2},
	}

	for _, tt := range tests {
		got := TowerMultiplier(tt.rtp, tt.d, tt.row)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("TowerMultiplier(%v, %s, %d): want %v, got %v", tt.rtp, tt.d, tt.row, tt.want, got)
		}
	}
}

// TestTower_SingleRow_Return checks the realized return of betting one
// row and cashing out: survival probability times the row-1 multiplier
// should land on the configured RTP.
func TestTower_SingleRow_Return(t *testing.T) {
	t.Parallel()

	if testing.Short() {
		t.Skip("statistical test")
	}

	const (
		n   = 100_000
		rtp = 97.0
		bet = int64(100)
	)

	for _, d := range TowerDifficulties {
		d := d
		var paid int64
		for i := 0; i < n; i++ {
			layout, err := NewTowerLayout(d)
			if err != nil {
				t.Fatalf("layout: %v", err)
			}

			// Always step on column 1 of row 1.
			hit := false
			for _, col := range layout[0] {
				if col == 1 {
					hit = true
					break
				}
			}
			if !hit {
				paid += WinAmount(bet, TowerMultiplier(rtp, d, 1))
			}
		}

		got := float64(paid) / float64(n*bet) * 100
		if math.Abs(got-rtp) > 2.5 {
			t.Fatalf("difficulty %s: realized RTP %.2f%%, want %.2f%% +/- 2.5", d, got, rtp)
		}
	}
}
