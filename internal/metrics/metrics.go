// Package metrics exposes Prometheus counters for the ratchet core:
// encrypt/decrypt throughput, skipped-key cache churn, and DH-step
// rotations. An embedding application scrapes these the usual way
// (promhttp.Handler mounted on its own mux); this package never starts
// an HTTP server itself.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EncryptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ciphera_encrypt_total",
			Help: "Total number of successful session Encrypt calls.",
		},
	)

	DecryptTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ciphera_decrypt_total",
			Help: "Total number of session Decrypt calls by outcome.",
		},
		[]string{"result"}, // ok, duplicate, outside_window, decrypt_failed, bad_identity
	)

	DHRatchetRotations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ciphera_dh_ratchet_rotations_total",
			Help: "Total number of DH ratchet key rotations across all sessions.",
		},
	)

	SkippedKeysStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ciphera_skipped_keys_stored_total",
			Help: "Total number of message keys stored in the skipped-key cache.",
		},
	)

	SkippedKeysConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ciphera_skipped_keys_consumed_total",
			Help: "Total number of skipped-key cache hits consumed by a decrypt.",
		},
	)

	SkippedKeysEvicted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ciphera_skipped_keys_evicted_total",
			Help: "Total number of skipped-key cache entries evicted, by reason.",
		},
		[]string{"reason"}, // ttl, capacity, step_overflow
	)

	SkippedKeysTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ciphera_skipped_keys_tracked",
			Help: "Current number of entries held in the skipped-key cache.",
		},
	)
)
