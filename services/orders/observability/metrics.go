// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the order records
// service.
//
// # Description
//
// Metrics include:
//   - Store counters by result and a store latency histogram
//   - Legacy rows skipped while parsing existing documents
//   - Schedule regenerations and the last window number written
//   - HTTP requests by route and status
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

const metricsNamespace = "orderrecords"

const (
	ledgerSubsystem = "ledger"
	httpSubsystem   = "http"
)

// Metrics holds every collector the service exports.
//
// # Fields
//
//   - StoresTotal: Store requests by result (stored, invalid, storage_error).
//   - StoreDurationSeconds: Latency of whole store requests by result.
//   - SkippedRowsTotal: Existing rows dropped as unreadable.
//   - ScheduleRegenerationsTotal: Times the schedule was rebuilt.
//   - LastWindowNumber: Number of the last window in the latest schedule.
//   - HTTPRequestsTotal: Requests by route, method and status code.
type Metrics struct {
	StoresTotal                *prometheus.CounterVec
	StoreDurationSeconds       *prometheus.HistogramVec
	SkippedRowsTotal           prometheus.Counter
	ScheduleRegenerationsTotal prometheus.Counter
	LastWindowNumber           prometheus.Gauge
	HTTPRequestsTotal          *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors with reg.
//
// # Inputs
//
//   - reg: Registry to register with. Tests pass prometheus.NewRegistry();
//     the server passes its own registry that /metrics serves.
//
// # Limitations
//
//   - Panics when registered twice with the same registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StoresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: ledgerSubsystem,
				Name:      "stores_total",
				Help:      "Order record store requests by result",
			},
			[]string{"result"},
		),
		StoreDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: ledgerSubsystem,
				Name:      "store_duration_seconds",
				Help:      "Duration of the read-modify-write cycle in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"result"},
		),
		SkippedRowsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: ledgerSubsystem,
				Name:      "skipped_rows_total",
				Help:      "Existing rows skipped because no order id or date could be read",
			},
		),
		ScheduleRegenerationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: ledgerSubsystem,
				Name:      "schedule_regenerations_total",
				Help:      "Times the sprint schedule was rebuilt to extend coverage",
			},
		),
		LastWindowNumber: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: ledgerSubsystem,
				Name:      "last_window_number",
				Help:      "Number of the last sprint window in the most recent schedule",
			},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: httpSubsystem,
				Name:      "requests_total",
				Help:      "HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
	}
}

// =============================================================================
// Ledger observer
// =============================================================================

// ObserveStore records one finished store request.
func (m *Metrics) ObserveStore(result string, elapsed time.Duration) {
	m.StoresTotal.WithLabelValues(result).Inc()
	m.StoreDurationSeconds.WithLabelValues(result).Observe(elapsed.Seconds())
}

// ObserveParse records rows skipped while reading an existing document.
func (m *Metrics) ObserveParse(skipped int) {
	if skipped > 0 {
		m.SkippedRowsTotal.Add(float64(skipped))
	}
}

// ObserveSchedule records the schedule written by a request.
func (m *Metrics) ObserveSchedule(lastNumber int, regenerated bool) {
	m.LastWindowNumber.Set(float64(lastNumber))
	if regenerated {
		m.ScheduleRegenerationsTotal.Inc()
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, status int) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}
