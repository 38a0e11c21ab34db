package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics tracks ledger activity.
type Metrics struct {
	debitsTotal       prometheus.Counter
	debitAmountTotal  prometheus.Counter
	creditsTotal      prometheus.Counter
	creditAmountTotal prometheus.Counter
	insufficientTotal prometheus.Counter
}

// NewMetrics registers ledger metrics on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		debitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_debits_total",
			Help: "Number of successful lookup debits.",
		}),
		debitAmountTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_debit_amount_total",
			Help: "Total amount debited across all accounts.",
		}),
		creditsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_credits_total",
			Help: "Number of successful top-ups.",
		}),
		creditAmountTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_credit_amount_total",
			Help: "Total amount credited across all accounts.",
		}),
		insufficientTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_insufficient_balance_total",
			Help: "Number of charges refused for insufficient balance.",
		}),
	}
}

func (m *Metrics) RecordDebit(amount decimal.Decimal) {
	m.debitsTotal.Inc()
	m.debitAmountTotal.Add(amount.InexactFloat64())
}

func (m *Metrics) RecordCredit(amount decimal.Decimal) {
	m.creditsTotal.Inc()
	m.creditAmountTotal.Add(amount.InexactFloat64())
}

func (m *Metrics) RecordInsufficientBalance() {
	m.insufficientTotal.Inc()
}
