package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	LoansCreatedTotal       prometheus.Counter
	OverdueTransitionsTotal prometheus.Counter
	PaymentsTotal           *prometheus.CounterVec
	ReportRunsTotal         *prometheus.CounterVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_monitor_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		LoansCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loan_monitor_loans_created_total",
				Help: "Total number of loans successfully created.",
			},
		),
		OverdueTransitionsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loan_monitor_overdue_transitions_total",
				Help: "Total number of loans transitioned from Active to Overdue.",
			},
		),
		PaymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_monitor_payments_total",
				Help: "Total number of payment attempts by outcome.",
			},
			[]string{"status"},
		),
		ReportRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loan_monitor_report_runs_total",
				Help: "Total number of due-loan report runs by outcome.",
			},
			[]string{"status"},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordLoanCreated() {
	Business.LoansCreatedTotal.Inc()
}

func RecordOverdueTransition() {
	Business.OverdueTransitionsTotal.Inc()
}

func RecordPayment(status string) {
	Business.PaymentsTotal.WithLabelValues(status).Inc()
}

func RecordReportRun(status string) {
	Business.ReportRunsTotal.WithLabelValues(status).Inc()
}
