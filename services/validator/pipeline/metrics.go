// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "aleutian"
	verifySubsystem  = "verify"
)

// Metrics holds the Prometheus metrics for verification runs.
//
// All operations are thread-safe via Prometheus's internal locking.
type Metrics struct {
	// RunsTotal counts pipeline runs by terminal state.
	// Labels: status (done, failed)
	RunsTotal *prometheus.CounterVec

	// AdjudicationsTotal counts individual adjudication outcomes.
	// Labels: method (token_overlap, unverified_quote, timeout, ...)
	AdjudicationsTotal *prometheus.CounterVec

	// VerdictsTotal counts verdicts by label.
	// Labels: label (Supported, Contradicted, ...)
	VerdictsTotal *prometheus.CounterVec

	// RunDurationSeconds measures whole-run wall time.
	RunDurationSeconds prometheus.Histogram

	// ActiveRuns tracks runs currently in flight.
	ActiveRuns prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	metricsOnce    sync.Once
)

// RunMetrics returns the process-wide metrics instance, registering it
// on first use.
func RunMetrics() *Metrics {
	metricsOnce.Do(func() {
		defaultMetrics = &Metrics{
			RunsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: verifySubsystem,
					Name:      "runs_total",
					Help:      "Total pipeline runs by terminal state",
				},
				[]string{"status"},
			),
			AdjudicationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: verifySubsystem,
					Name:      "adjudications_total",
					Help:      "Total adjudication outcomes by matching method",
				},
				[]string{"method"},
			),
			VerdictsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: verifySubsystem,
					Name:      "verdicts_total",
					Help:      "Total verdicts by validation label",
				},
				[]string{"label"},
			),
			RunDurationSeconds: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: metricsNamespace,
					Subsystem: verifySubsystem,
					Name:      "run_duration_seconds",
					Help:      "Whole-run duration in seconds",
					Buckets:   []float64{1, 5, 15, 60, 300, 900, 1800},
				},
			),
			ActiveRuns: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: metricsNamespace,
					Subsystem: verifySubsystem,
					Name:      "active_runs",
					Help:      "Pipeline runs currently in flight",
				},
			),
		}
	})
	return defaultMetrics
}
