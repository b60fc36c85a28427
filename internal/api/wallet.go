package api

import (
	"net/http"

	"github.com/fairhouse/casino-core/internal/repos/withdrawals"
	"github.com/fairhouse/casino-core/internal/services/ledger"
)

// CreateUserHandler handles POST /user/{userId}
func (h *HandlerProvider) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	if err := h.ledger.CreateUser(r.Context(), userID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"userId": userID})
}

// GetBalanceHandler handles GET /user/{userId}/balance
func (h *HandlerProvider) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	b, err := h.ledger.Balances(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := balancesResponse(b, ledger.ComputeWithdrawable(b))
	resp["userId"] = userID
	writeJSON(w, http.StatusOK, resp)
}

type amountRequest struct {
	Amount string `json:"amount"`
}

// DepositHandler handles POST /user/{userId}/deposit
func (h *HandlerProvider) DepositHandler(w http.ResponseWriter, r *http.Request) {
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

	if err := h.ledger.Deposit(r.Context(), userID, amount); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RequestWithdrawalHandler handles POST /user/{userId}/withdrawals
func (h *HandlerProvider) RequestWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
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

	wd, err := h.ledger.RequestWithdrawal(r.Context(), userID, amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, withdrawalResponse(*wd))
}

// ListWithdrawalsHandler handles GET /user/{userId}/withdrawals
func (h *HandlerProvider) ListWithdrawalsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid userId in path")
		return
	}

	list, err := h.ledger.UserWithdrawals(r.Context(), userID)
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

func withdrawalResponse(wd withdrawals.Withdrawal) map[string]any {
	resp := map[string]any{
		"id":        wd.ID,
		"userId":    wd.UserID,
		"amount":    formatCents(wd.Amount),
		"status":    wd.Status,
		"createdAt": wd.CreatedAt,
	}
	if wd.ResolvedAt != nil {
		resp["resolvedAt"] = wd.ResolvedAt
	}

	return resp
}
