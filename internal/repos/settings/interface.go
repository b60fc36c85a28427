package settings

import (
	"context"
	"errors"

	"github.com/fairhouse/casino-core/internal/games"
)

// ErrRTPOutOfRange rejects target RTP values outside [50, 100].
var ErrRTPOutOfRange = errors.New("rtp out of range")

const (
	MinRTP = 50.0
	MaxRTP = 100.0
)

// Settings stores per-game target RTP overrides. Reads happen once per
// bet resolution, so a changed value applies from the next bet on and
// never rewrites an in-flight session.
type Settings interface {
	// RTP returns the configured target for game, or games.DefaultRTP
	// when no override exists.
	RTP(ctx context.Context, game games.Game) (float64, error)
	SetRTP(ctx context.Context, game games.Game, rtp float64) error
	All(ctx context.Context) (map[games.Game]float64, error)
}
