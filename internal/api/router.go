package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/fairhouse/casino-core/internal/config"
)

// NewRouter registers every API endpoint. A nil redis client disables
// rate limiting; an empty admin token disables the admin group.
func NewRouter(h *HandlerProvider, hub *Hub, metrics http.Handler, rdb *redis.Client, cfg *config.API) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics)

	r.Get("/games/config", h.GameConfigHandler)
	r.Get("/crash/state", h.CrashStateHandler)
	r.Get("/crash/history", h.CrashHistoryHandler)
	if hub != nil {
		r.Get("/ws/crash", hub.ServeWS)
	}

	r.Group(func(r chi.Router) {
		if rdb != nil {
			r.Use(RateLimit(rdb, cfg.RateLimit))
		}

		r.Post("/user/{userId}", h.CreateUserHandler)
		r.Get("/user/{userId}/balance", h.GetBalanceHandler)
		r.Post("/user/{userId}/deposit", h.DepositHandler)
		r.Post("/user/{userId}/withdrawals", h.RequestWithdrawalHandler)
		r.Get("/user/{userId}/withdrawals", h.ListWithdrawalsHandler)

		r.Post("/user/{userId}/games/dice", h.PlayDiceHandler)
		r.Post("/user/{userId}/games/bubbles", h.PlayBubblesHandler)
		r.Post("/user/{userId}/games/x100", h.PlayWheelHandler)

		r.Post("/user/{userId}/games/mines", h.StartMinesHandler)
		r.Get("/user/{userId}/games/mines", h.CurrentMinesHandler)
		r.Post("/user/{userId}/games/mines/press", h.PressMinesHandler)
		r.Post("/user/{userId}/games/mines/cashout", h.TakeMinesHandler)

		r.Post("/user/{userId}/games/tower", h.StartTowerHandler)
		r.Get("/user/{userId}/games/tower", h.CurrentTowerHandler)
		r.Post("/user/{userId}/games/tower/step", h.StepTowerHandler)
		r.Post("/user/{userId}/games/tower/cashout", h.TakeTowerHandler)

		r.Post("/user/{userId}/crash/bet", h.PlaceCrashBetHandler)
		r.Post("/user/{userId}/crash/cashout", h.CrashCashoutHandler)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(AdminAuth(cfg.AdminToken))

		r.Get("/rtp", h.GetRTPHandler)
		r.Put("/rtp/{game}", h.SetRTPHandler)
		r.Get("/stats", h.StatsHandler)
		r.Get("/withdrawals", h.PendingWithdrawalsHandler)
		r.Post("/withdrawals/{withdrawalId}/approve", h.ApproveWithdrawalHandler)
		r.Post("/withdrawals/{withdrawalId}/decline", h.DeclineWithdrawalHandler)
		r.Post("/user/{userId}/promo", h.GrantPromoHandler)
	})

	return r
}
