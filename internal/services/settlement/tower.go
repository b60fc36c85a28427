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

type towerParams struct {
	Difficulty games.TowerDifficulty `json:"difficulty"`
	RTP        float64               `json:"rtp"`
}

// TowerState is the client view of a tower session. Steps holds the
// chosen column per cleared row; Layout stays nil until the session
// reaches a terminal state.
type TowerState struct {
	SessionID  uuid.UUID
	Status     sessions.Status
	Bet        int64
	Difficulty games.TowerDifficulty
	Steps      []int
	Multiplier float64
	CurrentWin int64
	Payout     int64
	Layout     [][]int
	Balances   users.Balances
}

func (s *Service) StartTower(ctx context.Context, userID uint64, bet int64, difficulty games.TowerDifficulty) (*TowerState, error) {
	err := games.ValidateTower(difficulty)
	if err != nil {
		return nil, err
	}
	if err := s.validateBet(bet); err != nil {
		return nil, err
	}

	rtp, err := s.settings.RTP(ctx, games.Tower)
	if err != nil {
		return nil, fmt.Errorf("read rtp: %w", err)
	}

	layout, err := games.NewTowerLayout(difficulty)
	if err != nil {
		return nil, err
	}

	sess := &sessions.Session{
		ID:     uuid.New(),
		UserID: userID,
		Game:   games.Tower,
		Bet:    bet,
	}
	sess.Params, _ = json.Marshal(towerParams{Difficulty: difficulty, RTP: rtp})
	sess.Layout, _ = json.Marshal(layout)
	sess.Progress = json.RawMessage(`[]`)

	err = s.withSettlementTx(ctx, games.Tower, userID, func(tx *sql.Tx) error {
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

	state := &TowerState{
		SessionID:  sess.ID,
		Status:     sessions.StatusActive,
		Bet:        bet,
		Difficulty: difficulty,
		Steps:      []int{},
	}

	return state, s.reload(ctx, userID, &state.Balances)
}

// StepTower picks a column on the next row of the active session. A bomb
// column loses the stake; clearing the top row completes the tower and
// auto-credits the win.
func (s *Service) StepTower(ctx context.Context, userID uint64, column int) (*TowerState, error) {
	if column < 1 || column > games.TowerColumns {
		return nil, fmt.Errorf("column %d: %w", column, games.ErrInvalidParameters)
	}

	var state *TowerState
	terminal := false

	err := s.withSettlementTx(ctx, games.Tower, userID, func(tx *sql.Tx) error {
		sess, params, layout, steps, err := s.loadTower(tx, userID)
		if err != nil {
			return err
		}

		row := len(steps) // 0-based index of the row being attempted

		if containsInt(layout[row], column) {
			if err := s.sessions.Close(tx, sess.ID, sessions.StatusLost); err != nil {
				return err
			}
			if err := s.stats.Record(tx, games.Tower, sess.Bet, 0); err != nil {
				return err
			}

			terminal = true
			state = towerState(sess, params, steps, 0)
			state.Status = sessions.StatusLost
			state.Layout = layout
			return nil
		}

		steps = append(steps, column)

		if len(steps) == games.TowerRows {
			payout := games.WinAmount(sess.Bet, games.TowerMultiplier(params.RTP, params.Difficulty, len(steps)))
			if err := s.closeTowerWithWin(tx, sess, payout, sessions.StatusCompleted); err != nil {
				return err
			}

			terminal = true
			state = towerState(sess, params, steps, payout)
			state.Status = sessions.StatusCompleted
			state.Layout = layout
			return nil
		}

		progress, _ := json.Marshal(steps)
		if err := s.sessions.SaveProgress(tx, sess.ID, progress); err != nil {
			return err
		}

		state = towerState(sess, params, steps, 0)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if terminal {
		s.metrics.ObserveBet(games.Tower, state.Bet, state.Payout)
	}

	return state, s.reload(ctx, userID, &state.Balances)
}

// TakeTower cashes out the multiplier of the last cleared row and ends
// the session.
func (s *Service) TakeTower(ctx context.Context, userID uint64) (*TowerState, error) {
	var state *TowerState

	err := s.withSettlementTx(ctx, games.Tower, userID, func(tx *sql.Tx) error {
		sess, params, layout, steps, err := s.loadTower(tx, userID)
		if err != nil {
			return err
		}

		if len(steps) == 0 {
			return ErrNothingToCashOut
		}

		payout := games.WinAmount(sess.Bet, games.TowerMultiplier(params.RTP, params.Difficulty, len(steps)))
		if err := s.closeTowerWithWin(tx, sess, payout, sessions.StatusCashedOut); err != nil {
			return err
		}

		state = towerState(sess, params, steps, payout)
		state.Status = sessions.StatusCashedOut
		state.Layout = layout
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveBet(games.Tower, state.Bet, state.Payout)

	return state, s.reload(ctx, userID, &state.Balances)
}

// CurrentTower returns the active session without touching it. The
// hazard layout is withheld.
func (s *Service) CurrentTower(ctx context.Context, userID uint64) (*TowerState, error) {
	sess, err := s.sessions.GetActive(ctx, userID, games.Tower)
	if err != nil {
		return nil, err
	}

	var params towerParams
	var steps []int
	if err := json.Unmarshal(sess.Params, &params); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	if err := json.Unmarshal(sess.Progress, &steps); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}

	state := towerState(sess, params, steps, 0)

	return state, s.reload(ctx, userID, &state.Balances)
}

func (s *Service) loadTower(tx *sql.Tx, userID uint64) (*sessions.Session, towerParams, [][]int, []int, error) {
	sess, err := s.sessions.GetActiveForUpdate(tx, userID, games.Tower)
	if err != nil {
		return nil, towerParams{}, nil, nil, err
	}

	var params towerParams
	var layout [][]int
	var steps []int
	if err := json.Unmarshal(sess.Params, &params); err != nil {
		return nil, towerParams{}, nil, nil, fmt.Errorf("decode params: %w", err)
	}
	if err := json.Unmarshal(sess.Layout, &layout); err != nil {
		return nil, towerParams{}, nil, nil, fmt.Errorf("decode layout: %w", err)
	}
	if err := json.Unmarshal(sess.Progress, &steps); err != nil {
		return nil, towerParams{}, nil, nil, fmt.Errorf("decode progress: %w", err)
	}

	return sess, params, layout, steps, nil
}

func (s *Service) closeTowerWithWin(tx *sql.Tx, sess *sessions.Session, payout int64, status sessions.Status) error {
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

	return s.stats.Record(tx, games.Tower, sess.Bet, payout)
}

func towerState(sess *sessions.Session, params towerParams, steps []int, payout int64) *TowerState {
	state := &TowerState{
		SessionID:  sess.ID,
		Status:     sessions.StatusActive,
		Bet:        sess.Bet,
		Difficulty: params.Difficulty,
		Steps:      steps,
		Payout:     payout,
	}

	if len(steps) > 0 {
		state.Multiplier = games.TowerMultiplier(params.RTP, params.Difficulty, len(steps))
		state.CurrentWin = games.WinAmount(sess.Bet, state.Multiplier)
	}

	return state
}
