// Prometheus collectors for the submission relay. Label cardinality is kept
// deliberately small: outcome and email kind only.
package relay

import "github.com/prometheus/client_golang/prometheus"

var (
	// submissions counts processed submissions by terminal outcome
	// (accepted, honeypot, invalid, verification_failed, delivery_failed,
	// misconfigured).
	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Total contact submissions by outcome.",
		},
		[]string{"outcome"},
	)

	// emailsSent counts successful provider sends by kind (lead, ack).
	emailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_emails_sent_total",
			Help: "Total emails handed to the provider, by kind.",
		},
		[]string{"kind"},
	)

	// fallbackWrites counts leads persisted to the fallback store.
	fallbackWrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_fallback_writes_total",
			Help: "Total fallback lead records written after delivery failures.",
		},
	)
)

func init() {
	prometheus.MustRegister(submissions, emailsSent, fallbackWrites)
}
