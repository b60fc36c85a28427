package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fairhouse/casino-core/internal/games"
)

// GetRTPHandler handles GET /admin/rtp
func (h *HandlerProvider) GetRTPHandler(w http.ResponseWriter, r *http.Request) {
	overrides, err := h.settle.Settings().All(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make(map[games.Game]float64, len(games.All))
	for _, g := range games.All {
		rtp, ok := overrides[g]
		if !ok {
			rtp = games.DefaultRTP
		}
		resp[g] = rtp
	}
	writeJSON(w, http.StatusOK, resp)
}

type setRTPRequest struct {
	RTP float64 `json:"rtp"`
}

// SetRTPHandler handles PUT /admin/rtp/{game}
func (h *HandlerProvider) SetRTPHandler(w http.ResponseWriter, r *http.Request) {
	game := games.Game(chi.URLParam(r, "game"))

	known := false
	for _, g := range games.All {
		if g == game {
			known = true
			break
		}
	}
	if !known {
		writeError(w, http.StatusNotFound, "unknown game")
		return
	}

	var req setRTPRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.settle.Settings().SetRTP(r.Context(), game, req.RTP); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"game": game, "rtp": req.RTP})
}

// StatsHandler handles GET /admin/stats
func (h *HandlerProvider) StatsHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := h.settle.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, map[string]any{
			"game":        row.Game,
			"gamesCount":  row.GamesCount,
			"totalBets":   formatCents(row.TotalBets),
			"totalWins":   formatCents(row.TotalWins),
			"observedRtp": row.ObservedRTP(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// PendingWithdrawalsHandler handles GET /admin/withdrawals
func (h *HandlerProvider) PendingWithdrawalsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.ledger.PendingWithdrawals(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(list))
	for _, wd := range list {
		resp = append(resp, withdrawalResponse(wd))
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseWithdrawalID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "withdrawalId"))
}

// ApproveWithdrawalHandler handles POST /admin/withdrawals/{withdrawalId}/approve
func (h *HandlerProvider) ApproveWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseWithdrawalID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid withdrawalId in path")
		return
	}

	if err := h.ledger.ApproveWithdrawal(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

// DeclineWithdrawalHandler handles POST /admin/withdrawals/{withdrawalId}/decline
func (h *HandlerProvider) DeclineWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseWithdrawalID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid withdrawalId in path")
		return
	}

	if err := h.ledger.DeclineWithdrawal(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "declined"})
}

type promoRequest struct {
	Amount string `json:"amount"`
	Wager  string `json:"wager"`
}

// GrantPromoHandler handles POST /admin/user/{userId}/promo
func (h *HandlerProvider) GrantPromoHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	var req promoRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := parseAmountCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	wager, err := parseAmountCents(req.Wager)
	if err != nil {
		writeError(w, http.StatusBadRequest, "wager: "+err.Error())
		return
	}

	if err := h.ledger.GrantPromo(r.Context(), userID, amount, wager); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
