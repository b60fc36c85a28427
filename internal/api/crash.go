package api

import (
	"net/http"
	"strconv"

	"github.com/fairhouse/casino-core/internal/repos/crash"
)

// PlaceCrashBetHandler handles POST /user/{userId}/crash/bet
func (h *HandlerProvider) PlaceCrashBetHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req amountRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := parseAmountCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bet, err := h.crash.PlaceBet(r.Context(), userID, amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, crashBetResponse(bet))
}

// CrashCashoutHandler handles POST /user/{userId}/crash/cashout
func (h *HandlerProvider) CrashCashoutHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	bet, err := h.crash.Cashout(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, crashBetResponse(bet))
}

// CrashStateHandler handles GET /crash/state
func (h *HandlerProvider) CrashStateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.crash.State())
}

// CrashHistoryHandler handles GET /crash/history
func (h *HandlerProvider) CrashHistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	rounds, err := h.crash.History(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(rounds))
	for _, round := range rounds {
		resp = append(resp, map[string]any{
			"id":         round.ID,
			"crashPoint": round.CrashPoint,
			"crashedAt":  round.CrashedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func crashBetResponse(bet *crash.Bet) map[string]any {
	resp := map[string]any{
		"roundId": bet.RoundID,
		"amount":  formatCents(bet.Amount),
		"payout":  formatCents(bet.Payout),
	}
	if bet.Cashout != nil {
		resp["cashout"] = *bet.Cashout
	}

	return resp
}
