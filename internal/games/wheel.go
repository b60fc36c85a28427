package games

import (
	"fmt"
	"sort"

	"github.com/fairhouse/casino-core/internal/rng"
)

// X100Wheel is the fixed 99-segment wheel. Segment frequencies roughly
// equalize each coefficient's contribution (count * coef / 99 is close to
// 1 for every coefficient); the residual deviation is corrected by the
// payout calibration in WheelCoefficient.
var X100Wheel = []int{
	2, 3, 2, 15, 2, 3, 2, 20, 2, 15, 2, 3, 2, 3, 2, 15, 2, 3, 10, 3, 2, 10, 2, 3, 2,
	100,
	2, 3, 2, 10, 2, 3, 2, 3, 2, 15, 2, 3, 2, 3, 2, 20, 2, 3, 2, 10, 2, 3, 2, 10,
	2, 3, 2, 15, 2, 3, 2, 3, 2, 10, 20, 3, 2, 3, 2, 15, 2, 10, 2, 3, 2, 20, 2, 3, 2,
	15, 2, 3, 2, 10, 2, 3, 2, 3, 2, 10, 2, 3, 2, 3, 2, 10, 2, 3, 2, 3, 2, 3, 2,
}

// wheelCounts maps each selectable coefficient to its segment count.
var wheelCounts = map[int]int{}

func init() {
	for _, c := range X100Wheel {
		wheelCounts[c]++
	}
}

// WheelResult is a fully resolved wheel spin.
type WheelResult struct {
	Position    int
	Segment     int
	Rotation    float64
	Win         bool
	Coefficient float64
	Payout      int64
}

// WheelCoefs lists the selectable coefficients in ascending order.
func WheelCoefs() []int {
	coefs := make([]int, 0, len(wheelCounts))
	for c := range wheelCounts {
		coefs = append(coefs, c)
	}
	sort.Ints(coefs)

	return coefs
}

// ValidateWheelCoef checks the player-selected coefficient against the
// wheel layout.
func ValidateWheelCoef(coef int) error {
	if _, ok := wheelCounts[coef]; !ok {
		return fmt.Errorf("coefficient %d not on the wheel: %w", coef, ErrInvalidParameters)
	}

	return nil
}

// WheelCoefficient is the effective payout multiplier for a winning spin
// on coef. With a uniform draw the hit probability is count/99, so paying
//
//	rtp/100 * 99/count
//
// returns exactly rtp% for every selectable coefficient. For coef 2 this
// lands within a fraction of a percent of the nominal 2x; rarer segments
// absorb a slightly larger correction.
func WheelCoefficient(rtp float64, coef int) float64 {
	return (rtp / 100) * float64(len(X100Wheel)) / float64(wheelCounts[coef])
}

// PlayWheel resolves a single x100 spin: a uniform draw of one segment
// index. The rotation angle is derived from the resolved position for the
// client animation and never feeds back into the outcome.
func PlayWheel(rtp float64, bet int64, coef int) (WheelResult, error) {
	err := ValidateWheelCoef(coef)
	if err != nil {
		return WheelResult{}, err
	}

	position := rng.IntN(len(X100Wheel))
	segment := X100Wheel[position]

	res := WheelResult{
		Position: position,
		Segment:  segment,
		Rotation: float64(position)*(360.0/float64(len(X100Wheel))) + 5*360,
		Win:      segment == coef,
	}

	if res.Win {
		res.Coefficient = round2(WheelCoefficient(rtp, coef))
		res.Payout = WinAmount(bet, WheelCoefficient(rtp, coef))
	}

	return res, nil
}
