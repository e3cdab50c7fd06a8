// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/OrderRecords/services/orders/ledger"
)

var _ ledger.Observer = (*Metrics)(nil)

func TestMetrics_ObserveStore(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveStore(ledger.ResultStored, 10*time.Millisecond)
	m.ObserveStore(ledger.ResultStored, 20*time.Millisecond)
	m.ObserveStore(ledger.ResultInvalid, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StoresTotal.WithLabelValues("stored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoresTotal.WithLabelValues("invalid")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.StoreDurationSeconds))
}

func TestMetrics_ObserveParseAndSchedule(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveParse(0)
	m.ObserveParse(3)
	m.ObserveSchedule(400, true)
	m.ObserveSchedule(400, false)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.SkippedRowsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScheduleRegenerationsTotal))
	assert.Equal(t, 400.0, testutil.ToFloat64(m.LastWindowNumber))
}

func TestMetrics_ObserveHTTP(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveHTTP("/api/order-records", "POST", 201)
	m.ObserveHTTP("", "GET", 404)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/api/order-records", "POST", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("unmatched", "GET", "404")))
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	require.Panics(t, func() { NewMetrics(reg) })
}
