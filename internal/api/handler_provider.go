package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fairhouse/casino-core/internal/games"
	"github.com/fairhouse/casino-core/internal/repos/crash"
	"github.com/fairhouse/casino-core/internal/repos/sessions"
	"github.com/fairhouse/casino-core/internal/repos/settings"
	"github.com/fairhouse/casino-core/internal/repos/users"
	"github.com/fairhouse/casino-core/internal/repos/withdrawals"
	"github.com/fairhouse/casino-core/internal/services/crashround"
	"github.com/fairhouse/casino-core/internal/services/ledger"
	"github.com/fairhouse/casino-core/internal/services/settlement"
)

// HandlerProvider wires the wallet, settlement and crash services into
// HTTP handlers.
type HandlerProvider struct {
	ledger *ledger.Service
	settle *settlement.Service
	crash  *crashround.Service
}

// NewHandler returns a new handler provider.
func NewHandler(l *ledger.Service, s *settlement.Service, c *crashround.Service) *HandlerProvider {
	return &HandlerProvider{ledger: l, settle: s, crash: c}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
		http.Error(w, `{"error":"internal json encode failure"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain sentinel errors onto HTTP statuses. Every
// unmapped error is a 500 with a generic body; details stay in the logs.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, games.ErrInvalidParameters),
		errors.Is(err, settlement.ErrBetTooLarge),
		errors.Is(err, crashround.ErrBetTooLarge),
		errors.Is(err, settlement.ErrInvalidMove),
		errors.Is(err, settings.ErrRTPOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, users.ErrUserNotFound),
		errors.Is(err, sessions.ErrNoActiveSession),
		errors.Is(err, withdrawals.ErrNotFound),
		errors.Is(err, crash.ErrNoBet):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, users.ErrInsufficientFunds),
		errors.Is(err, users.ErrUserExists),
		errors.Is(err, sessions.ErrSessionActive),
		errors.Is(err, settlement.ErrNothingToCashOut),
		errors.Is(err, ledger.ErrNotWithdrawable),
		errors.Is(err, withdrawals.ErrAlreadyResolved),
		errors.Is(err, crash.ErrAlreadyBet),
		errors.Is(err, crash.ErrAlreadyCashedOut),
		errors.Is(err, crashround.ErrBettingClosed),
		errors.Is(err, crashround.ErrNotRunning):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseUserIDFromPath reads `{userId}` from chi routes like:
//
//	GET  /user/{userId}/balance
//	POST /user/{userId}/games/dice
func parseUserIDFromPath(r *http.Request) (uint64, error) {
	idStr := chi.URLParam(r, "userId")
	if idStr == "" {
		return 0, fmt.Errorf("missing userId")
	}

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid userId: %w", err)
	}
	if id == 0 {
		return 0, fmt.Errorf("invalid userId: must be positive")
	}

	return id, nil
}

// decodeBody reads a JSON request body into v with a size cap and
// unknown fields rejected.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body")
		}
		return fmt.Errorf("invalid JSON")
	}

	return nil
}

// parseAmountCents converts a decimal string with up to 2 fractional digits into cents.
func parseAmountCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount required")
	}
	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("invalid amount")
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("invalid amount")
	}
	intPart := parts[0]
	frac := "00"
	if len(parts) == 2 {
		if len(parts[1]) > 2 {
			return 0, fmt.Errorf("amount supports up to 2 decimals")
		}
		frac = parts[1] + strings.Repeat("0", 2-len(parts[1]))
	}
	ip, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount integer")
	}
	fp, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount fractional")
	}
	if ip > (math.MaxInt64-fp)/100 {
		return 0, fmt.Errorf("amount too large")
	}
	total := ip*100 + fp
	if neg {
		total = -total
	}
	if total <= 0 {
		return 0, fmt.Errorf("amount must be > 0")
	}
	return total, nil
}

// formatCents renders a minor-unit amount as a 2-decimal string.
func formatCents(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func balancesResponse(b users.Balances, w ledger.Withdrawable) map[string]any {
	return map[string]any{
		"depositBalance":  formatCents(b.DepositBalance),
		"depositWinnings": formatCents(b.DepositWinnings),
		"promoBalance":    formatCents(b.PromoBalance),
		"promoWinnings":   formatCents(b.PromoWinnings),
		"promoLimit":      formatCents(b.PromoLimit),
		"wager":           formatCents(b.Wager),
		"withdrawable":    formatCents(w.Total),
	}
}
