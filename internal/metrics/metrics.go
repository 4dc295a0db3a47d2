package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LeadsImported = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_imported_total",
			Help: "Total leads created by CSV imports",
		},
	)

	RowsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csv_rows_skipped_total",
			Help: "CSV rows dropped during parsing or validation",
		},
		[]string{"reason"},
	)

	EmailsGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emails_generated_total",
			Help: "Total outreach emails generated",
		},
	)

	GenerationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "email_generation_failures_total",
			Help: "Leads skipped because generation or saving failed",
		},
	)

	EmailsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total emails marked as sent",
		},
	)

	JobsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_finished_total",
			Help: "Background jobs by kind and final state",
		},
		[]string{"kind", "state"},
	)

	LLMCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_duration_seconds",
			Help:    "Latency of generation endpoint calls",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		},
		[]string{"status"},
	)
)

func Init() {
	prometheus.MustRegister(LeadsImported)
	prometheus.MustRegister(RowsSkipped)
	prometheus.MustRegister(EmailsGenerated)
	prometheus.MustRegister(GenerationFailures)
	prometheus.MustRegister(EmailsSent)
	prometheus.MustRegister(JobsFinished)
	prometheus.MustRegister(LLMCallDuration)
}
