package api

import (
	"net/http"

	"github.com/fairhouse/casino-core/internal/games"
	"github.com/fairhouse/casino-core/internal/repos/users"
	"github.com/fairhouse/casino-core/internal/services/ledger"
	"github.com/fairhouse/casino-core/internal/services/settlement"
)

func balancesField(b users.Balances) map[string]any {
	return balancesResponse(b, ledger.ComputeWithdrawable(b))
}

type diceRequest struct {
	Amount    string `json:"amount"`
	Chance    int    `json:"chance"`
	Direction string `json:"direction"`
}

// PlayDiceHandler handles POST /user/{userId}/games/dice
func (h *HandlerProvider) PlayDiceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req diceRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bet, err := parseAmountCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.settle.PlayDice(r.Context(), userID, bet, games.DiceParams{
		Chance:    req.Chance,
		Direction: games.DiceDirection(req.Direction),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"roll":        out.Roll,
		"win":         out.Win,
		"coefficient": out.Coefficient,
		"payout":      formatCents(out.Payout),
		"balances":    balancesField(out.Balances),
	})
}

type bubblesRequest struct {
	Amount string  `json:"amount"`
	Target float64 `json:"target"`
}

// PlayBubblesHandler handles POST /user/{userId}/games/bubbles
func (h *HandlerProvider) PlayBubblesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req bubblesRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bet, err := parseAmountCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.settle.PlayBubbles(r.Context(), userID, bet, req.Target)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pop":      out.Pop,
		"win":      out.Win,
		"target":   out.Target,
		"payout":   formatCents(out.Payout),
		"balances": balancesField(out.Balances),
	})
}

type wheelRequest struct {
	Amount string `json:"amount"`
	Choice int    `json:"choice"`
}

// PlayWheelHandler handles POST /user/{userId}/games/x100
func (h *HandlerProvider) PlayWheelHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req wheelRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bet, err := parseAmountCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.settle.PlayWheel(r.Context(), userID, bet, req.Choice)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"position":    out.Position,
		"segment":     out.Segment,
		"rotation":    out.Rotation,
		"win":         out.Win,
		"coefficient": out.Coefficient,
		"payout":      formatCents(out.Payout),
		"balances":    balancesField(out.Balances),
	})
}

// --- Mines ---

type minesStartRequest struct {
	Amount string `json:"amount"`
	Bombs  int    `json:"bombs"`
}

func minesResponse(state *settlement.MinesState) map[string]any {
	resp := map[string]any{
		"sessionId":  state.SessionID,
		"status":     state.Status,
		"bet":        formatCents(state.Bet),
		"bombs":      state.Bombs,
		"opened":     state.Opened,
		"multiplier": state.Multiplier,
		"currentWin": formatCents(state.CurrentWin),
		"payout":     formatCents(state.Payout),
		"balances":   balancesField(state.Balances),
	}
	if state.Layout != nil {
		resp["layout"] = state.Layout
	}

	return resp
}

// StartMinesHandler handles POST /user/{userId}/games/mines
func (h *HandlerProvider) StartMinesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req minesStartRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bet, err := parseAmountCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.settle.StartMines(r.Context(), userID, bet, req.Bombs)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, minesResponse(state))
}

type minesPressRequest struct {
	Cell int `json:"cell"`
}

// PressMinesHandler handles POST /user/{userId}/games/mines/press
func (h *HandlerProvider) PressMinesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req minesPressRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.settle.PressMines(r.Context(), userID, req.Cell)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, minesResponse(state))
}

// TakeMinesHandler handles POST /user/{userId}/games/mines/cashout
func (h *HandlerProvider) TakeMinesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	state, err := h.settle.TakeMines(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, minesResponse(state))
}

// CurrentMinesHandler handles GET /user/{userId}/games/mines
func (h *HandlerProvider) CurrentMinesHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	state, err := h.settle.CurrentMines(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, minesResponse(state))
}

// --- Tower ---

type towerStartRequest struct {
	Amount     string `json:"amount"`
	Difficulty string `json:"difficulty"`
}

func towerResponse(state *settlement.TowerState) map[string]any {
	resp := map[string]any{
		"sessionId":  state.SessionID,
		"status":     state.Status,
		"bet":        formatCents(state.Bet),
		"difficulty": state.Difficulty,
		"steps":      state.Steps,
		"multiplier": state.Multiplier,
		"currentWin": formatCents(state.CurrentWin),
		"payout":     formatCents(state.Payout),
		"balances":   balancesField(state.Balances),
	}
	if state.Layout != nil {
		resp["layout"] = state.Layout
	}

	return resp
}

// StartTowerHandler handles POST /user/{userId}/games/tower
func (h *HandlerProvider) StartTowerHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req towerStartRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bet, err := parseAmountCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.settle.StartTower(r.Context(), userID, bet, games.TowerDifficulty(req.Difficulty))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, towerResponse(state))
}

type towerStepRequest struct {
	Column int `json:"column"`
}

// StepTowerHandler handles POST /user/{userId}/games/tower/step
func (h *HandlerProvider) StepTowerHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req towerStepRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.settle.StepTower(r.Context(), userID, req.Column)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, towerResponse(state))
}

// TakeTowerHandler handles POST /user/{userId}/games/tower/cashout
func (h *HandlerProvider) TakeTowerHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	state, err := h.settle.TakeTower(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, towerResponse(state))
}

// CurrentTowerHandler handles GET /user/{userId}/games/tower
func (h *HandlerProvider) CurrentTowerHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	state, err := h.settle.CurrentTower(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, towerResponse(state))
}

// GameConfigHandler handles GET /games/config: the effective payout
// tables at the currently configured RTP.
func (h *HandlerProvider) GameConfigHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := h.settle.Settings()

	rtps := make(map[games.Game]float64, len(games.All))
	for _, g := range games.All {
		rtp, err := store.RTP(ctx, g)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		rtps[g] = rtp
	}

	tower := make(map[games.TowerDifficulty][games.TowerRows]float64, len(games.TowerDifficulties))
	for _, d := range games.TowerDifficulties {
		tower[d] = games.TowerMultipliers(rtps[games.Tower], d)
	}

	wheel := make(map[int]float64)
	for _, c := range games.WheelCoefs() {
		wheel[c] = games.WheelCoefficient(rtps[games.X100], c)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"dice": map[string]any{
			"minChance": games.DiceMinChance,
			"maxChance": games.DiceMaxChance,
		},
		"mines": map[string]any{
			"cells":    games.MinesCells,
			"minBombs": games.MinesMinBombs,
			"maxBombs": games.MinesMaxBombs,
		},
		"tower": tower,
		"bubbles": map[string]any{
			"minTarget": games.BubblesMinTarget,
			"maxTarget": games.BubblesMaxTarget,
		},
		"x100": wheel,
	})
}
