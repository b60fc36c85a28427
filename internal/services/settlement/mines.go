package settlement

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/fairhouse/casino-core/internal/games"
	"github.com/fairhouse/casino-core/internal/repos/sessions"
	"github.com/fairhouse/casino-core/internal/repos/users"
	"github.com/fairhouse/casino-core/internal/services/ledger"
)

// minesParams pins the session's shape at start time. The RTP is frozen
// with it: a config change applies to new sessions only, never to a run
// already in flight.
type minesParams struct {
	Bombs int     `json:"bombs"`
	RTP   float64 `json:"rtp"`
}

// MinesState is the client view of a mines session. Layout stays nil
// until the session reaches a terminal state.
type MinesState struct {
	SessionID  uuid.UUID
	Status     sessions.Status
	Bet        int64
	Bombs      int
	Opened     []int
	Multiplier float64
	CurrentWin int64
	Payout     int64
	Layout     []int
	Balances   users.Balances
}

func (s *Service) StartMines(ctx context.Context, userID uint64, bet int64, bombs int) (*MinesState, error) {
	err := games.ValidateMines(bombs)
	if err != nil {
		return nil, err
	}
	if err := s.validateBet(bet); err != nil {
		return nil, err
	}

	rtp, err := s.settings.RTP(ctx, games.Mines)
	if err != nil {
		return nil, fmt.Errorf("read rtp: %w", err)
	}

	layout, err := games.NewMinesLayout(bombs)
	if err != nil {
		return nil, err
	}

	sess := &sessions.Session{
		ID:     uuid.New(),
		UserID: userID,
		Game:   games.Mines,
		Bet:    bet,
	}
	sess.Params, _ = json.Marshal(minesParams{Bombs: bombs, RTP: rtp})
	sess.Layout, _ = json.Marshal(layout)
	sess.Progress = json.RawMessage(`[]`)

	err = s.withSettlementTx(ctx, games.Mines, userID, func(tx *sql.Tx) error {
		attr, err := s.users.DebitForBet(tx, userID, bet)
		if err != nil {
			return err
		}
		sess.Attribution = attr

		return s.sessions.Insert(tx, sess)
	})
	if err != nil {
		return nil, err
	}

	state := &MinesState{
		SessionID: sess.ID,
		Status:    sessions.StatusActive,
		Bet:       bet,
		Bombs:     bombs,
		Opened:    []int{},
	}

	return state, s.reload(ctx, userID, &state.Balances)
}

// PressMines opens one cell of the active session. A bomb loses the
// whole stake; opening the last safe cell completes the board and
// auto-credits the win.
func (s *Service) PressMines(ctx context.Context, userID uint64, cell int) (*MinesState, error) {
	if cell < 1 || cell > games.MinesCells {
		return nil, fmt.Errorf("cell %d: %w", cell, games.ErrInvalidParameters)
	}

	var state *MinesState
	terminal := false

	err := s.withSettlementTx(ctx, games.Mines, userID, func(tx *sql.Tx) error {
		sess, params, layout, opened, err := s.loadMines(tx, userID)
		if err != nil {
			return err
		}

		if containsInt(opened, cell) {
			return fmt.Errorf("cell %d already opened: %w", cell, ErrInvalidMove)
		}

		if containsInt(layout, cell) {
			if err := s.sessions.Close(tx, sess.ID, sessions.StatusLost); err != nil {
				return err
			}
			if err := s.stats.Record(tx, games.Mines, sess.Bet, 0); err != nil {
				return err
			}

			terminal = true
			state = minesState(sess, params, opened, 0)
			state.Status = sessions.StatusLost
			state.Layout = layout
			return nil
		}

		opened = append(opened, cell)

		if len(opened) == games.MinesSafeCells(params.Bombs) {
			payout := games.WinAmount(sess.Bet, games.MinesMultiplier(params.RTP, params.Bombs, len(opened)))
			if err := s.closeMinesWithWin(tx, sess, payout, sessions.StatusCompleted); err != nil {
				return err
			}

			terminal = true
			state = minesState(sess, params, opened, payout)
			state.Status = sessions.StatusCompleted
			state.Layout = layout
			return nil
		}

		progress, _ := json.Marshal(opened)
		if err := s.sessions.SaveProgress(tx, sess.ID, progress); err != nil {
			return err
		}

		state = minesState(sess, params, opened, 0)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if terminal {
		s.metrics.ObserveBet(games.Mines, state.Bet, state.Payout)
	}

	return state, s.reload(ctx, userID, &state.Balances)
}

// TakeMines cashes out the accrued multiplier and ends the session.
func (s *Service) TakeMines(ctx context.Context, userID uint64) (*MinesState, error) {
	var state *MinesState

	err := s.withSettlementTx(ctx, games.Mines, userID, func(tx *sql.Tx) error {
		sess, params, layout, opened, err := s.loadMines(tx, userID)
		if err != nil {
			return err
		}

		if len(opened) == 0 {
			return ErrNothingToCashOut
		}

		payout := games.WinAmount(sess.Bet, games.MinesMultiplier(params.RTP, params.Bombs, len(opened)))
		if err := s.closeMinesWithWin(tx, sess, payout, sessions.StatusCashedOut); err != nil {
			return err
		}

		state = minesState(sess, params, opened, payout)
		state.Status = sessions.StatusCashedOut
		state.Layout = layout
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveBet(games.Mines, state.Bet, state.Payout)

	return state, s.reload(ctx, userID, &state.Balances)
}

// CurrentMines returns the active session without touching it. The
// hazard layout is withheld.
func (s *Service) CurrentMines(ctx context.Context, userID uint64) (*MinesState, error) {
	sess, err := s.sessions.GetActive(ctx, userID, games.Mines)
	if err != nil {
		return nil, err
	}

	var params minesParams
	var opened []int
	if err := json.Unmarshal(sess.Params, &params); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	if err := json.Unmarshal(sess.Progress, &opened); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}

	state := minesState(sess, params, opened, 0)

	return state, s.reload(ctx, userID, &state.Balances)
}

func (s *Service) loadMines(tx *sql.Tx, userID uint64) (*sessions.Session, minesParams, []int, []int, error) {
	sess, err := s.sessions.GetActiveForUpdate(tx, userID, games.Mines)
	if err != nil {
		return nil, minesParams{}, nil, nil, err
	}

	var params minesParams
	var layout, opened []int
	if err := json.Unmarshal(sess.Params, &params); err != nil {
		return nil, minesParams{}, nil, nil, fmt.Errorf("decode params: %w", err)
	}
	if err := json.Unmarshal(sess.Layout, &layout); err != nil {
		return nil, minesParams{}, nil, nil, fmt.Errorf("decode layout: %w", err)
	}
	if err := json.Unmarshal(sess.Progress, &opened); err != nil {
		return nil, minesParams{}, nil, nil, fmt.Errorf("decode progress: %w", err)
	}

	return sess, params, layout, opened, nil
}

func (s *Service) closeMinesWithWin(tx *sql.Tx, sess *sessions.Session, payout int64, status sessions.Status) error {
	if err := s.sessions.Close(tx, sess.ID, status); err != nil {
		return err
	}

	credit, err := ledger.CreditPlan(payout, sess.Attribution)
	if err != nil {
		return err
	}
	if err := s.users.CreditWin(tx, sess.UserID, credit); err != nil {
		return fmt.Errorf("credit win: %w", err)
	}

	return s.stats.Record(tx, games.Mines, sess.Bet, payout)
}

func minesState(sess *sessions.Session, params minesParams, opened []int, payout int64) *MinesState {
	state := &MinesState{
		SessionID: sess.ID,
		Status:    sessions.StatusActive,
		Bet:       sess.Bet,
		Bombs:     params.Bombs,
		Opened:    opened,
		Payout:    payout,
	}

	if len(opened) > 0 {
		state.Multiplier = games.MinesMultiplier(params.RTP, params.Bombs, len(opened))
		state.CurrentWin = games.WinAmount(sess.Bet, state.Multiplier)
	}

	return state
}

func (s *Service) reload(ctx context.Context, userID uint64, balances *users.Balances) error {
	b, err := s.users.GetBalances(ctx, userID)
	if err != nil {
		return fmt.Errorf("reload balances: %w", err)
	}
	*balances = b

	return nil
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
