// Package observability exposes Prometheus metrics for the wagering
// pipeline. Amounts are counted in cents so the observed RTP per game is
// payout_cents_total / bet_cents_total.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fairhouse/casino-core/internal/games"
)

type Metrics struct {
	registry *prometheus.Registry

	betsTotal        *prometheus.CounterVec
	betCentsTotal    *prometheus.CounterVec
	payoutCentsTotal *prometheus.CounterVec

	SettlementInconsistencies prometheus.Counter
	CrashRoundsTotal          prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		betsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casino_bets_total",
			Help: "Resolved bets per game.",
		}, []string{"game"}),
		betCentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casino_bet_cents_total",
			Help: "Total wagered amount per game, in cents.",
		}, []string{"game"}),
		payoutCentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "casino_payout_cents_total",
			Help: "Total paid out amount per game, in cents.",
		}, []string{"game"}),
		SettlementInconsistencies: factory.NewCounter(prometheus.CounterOpts{
			Name: "casino_settlement_inconsistencies_total",
			Help: "Debits whose paired credit or session update failed.",
		}),
		CrashRoundsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "casino_crash_rounds_total",
			Help: "Completed crash rounds.",
		}),
	}
}

// ObserveBet records one fully resolved bet.
func (m *Metrics) ObserveBet(game games.Game, bet, payout int64) {
	label := string(game)
	m.betsTotal.WithLabelValues(label).Inc()
	m.betCentsTotal.WithLabelValues(label).Add(float64(bet))
	m.payoutCentsTotal.WithLabelValues(label).Add(float64(payout))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
