package games

import (
	"fmt"

	"github.com/fairhouse/casino-core/internal/rng"
)

const (
	TowerRows    = 9
	TowerColumns = 4
)

// TowerDifficulty selects how many of the four columns per row are bombs.
type TowerDifficulty string

const (
	TowerLow    TowerDifficulty = "low"    // 1 bomb, 3 safe
	TowerMedium TowerDifficulty = "medium" // 2 bombs, 2 safe
	TowerHigh   TowerDifficulty = "high"   // 3 bombs, 1 safe
)

// TowerDifficulties lists the valid difficulties.
var TowerDifficulties = []TowerDifficulty{TowerLow, TowerMedium, TowerHigh}

// towerFair holds the break-even multiplier per completed row, precomputed
// from the per-row survival probability ((4-bombs)/4 per row). The table is
// configuration: RTP tuning scales it at resolution time and never touches
// the hazard probabilities.
var towerFair = map[TowerDifficulty][TowerRows]float64{
	TowerLow:    {1.3333, 1.7778, 2.3704, 3.1605, 4.2140, 5.6187, 7.4915, 9.9887, 13.3183},
	TowerMedium: {2, 4, 8, 16, 32, 64, 128, 256, 512},
	TowerHigh:   {4, 16, 64, 256, 1024, 4096, 16384, 65536, 262144},
}

// ValidateTower checks the difficulty for a new session.
func ValidateTower(d TowerDifficulty) error {
	if _, ok := towerFair[d]; !ok {
		return fmt.Errorf("difficulty %q: %w", d, ErrInvalidParameters)
	}

	return nil
}

// TowerBombsPerRow returns how many bomb columns each row carries.
func TowerBombsPerRow(d TowerDifficulty) int {
	switch d {
	case TowerLow:
		return 1
	case TowerMedium:
		return 2
	default:
		return 3
	}
}

// NewTowerLayout draws the bomb columns for all nine rows, independently
// per row, at session start. Row i of the result lists the bomb columns
// (1-4) of tower row i+1. Like the mines layout it is committed once and
// never re-drawn.
func NewTowerLayout(d TowerDifficulty) ([][]int, error) {
	err := ValidateTower(d)
	if err != nil {
		return nil, err
	}

	bombs := TowerBombsPerRow(d)

	layout := make([][]int, TowerRows)
	for row := range layout {
		layout[row] = rng.PickN(bombs, TowerColumns)
	}

	return layout, nil
}

// TowerMultiplier is the payout multiplier after clearing row (1-based),
// the fair table entry scaled by the target RTP.
func TowerMultiplier(rtp float64, d TowerDifficulty, row int) float64 {
	return towerFair[d][row-1] * (rtp / 100)
}

// TowerMultipliers returns the effective multiplier table for one
// difficulty at the given RTP, for the public game config endpoint.
func TowerMultipliers(rtp float64, d TowerDifficulty) [TowerRows]float64 {
	var out [TowerRows]float64
	for i, fair := range towerFair[d] {
		out[i] = round2(fair * (rtp / 100))
	}

	return out
}
