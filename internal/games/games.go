// Package games converts a target RTP percentage and bet parameters into
// concrete game outcomes. All amounts are int64 minor units (cents); win
// amounts are rounded down to a cent. The target RTP is read from the
// settings store per resolution and passed in; nothing here caches it.
package games

import (
	"errors"
	"math"
)

// Game identifies a game for settings, statistics and history.
type Game string

const (
	Dice    Game = "dice"
	Mines   Game = "mines"
	Tower   Game = "tower"
	Bubbles Game = "bubbles"
	Crash   Game = "crash"
	X100    Game = "x100"
)

// All lists every supported game, in a stable order.
var All = []Game{Dice, Mines, Tower, Bubbles, Crash, X100}

// DefaultRTP is the target return-to-player percentage used when no
// per-game override has been configured.
const DefaultRTP = 97.0

// ErrInvalidParameters is returned for out-of-range bet parameters
// (chance, target, difficulty, bombs count, wheel coefficient).
var ErrInvalidParameters = errors.New("invalid parameters")

// WinAmount converts a multiplier applied to a stake into a payout,
// rounded down to a cent.
func WinAmount(bet int64, multiplier float64) int64 {
	if multiplier <= 0 {
		return 0
	}

	return int64(math.Floor(float64(bet) * multiplier))
}

// round2 truncates a multiplier to two decimals. Truncating (rather than
// rounding half-up) keeps displayed multipliers from overstating payouts.
func round2(v float64) float64 {
	return math.Floor(v*100) / 100
}
