package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Callback-related Prometheus metrics. Defined in a standalone package to
// avoid import cycles between services and HTTP packages.

var (
	CallbackOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_callback_outcomes_total",
		Help: "Callback results by flow (token, code) and outcome",
	}, []string{"flow", "outcome"})

	CallbackDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "auth_callback_duration_ms",
		Help:    "End-to-end callback handling latency in milliseconds",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	ProvisionFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_provision_failures_total",
		Help: "Best-effort post-auth task failures by task",
	}, []string{"task"})

	ReferralApplications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "referral_applications_total",
		Help: "Referral attribution results by status",
	}, []string{"status"})

	ConnectionSyncs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_connection_syncs_total",
		Help: "Third-party connection upserts by provider and result",
	}, []string{"provider", "result"})
)

// Register registers the callback metrics on the given registry (or default if nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		CallbackOutcomes,
		CallbackDuration,
		ProvisionFailures,
		ReferralApplications,
		ConnectionSyncs,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
