package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHoldRequest(HoldGranted)
		m.ObserveHoldRelease(ReleaseExpired, 3)
		m.SetActiveHolds(1)
		m.ObserveBooking(BookingSuccess)
		m.ConnectionOpened()
		m.ConnectionClosed()
		m.EventDropped()
		m.ObservePublish("testdrive.booked", nil)
	})
}

func TestMetrics_Helpers(t *testing.T) {
	m := NewWithRegisterer("testdrive-service", prometheus.NewRegistry())

	m.ObserveHoldRequest(HoldGranted)
	m.ObserveHoldRequest(HoldConflict)
	m.ObserveHoldRequest(HoldConflict)
	m.ObserveHoldRelease(ReleaseDisconnect, 2)
	m.ObserveHoldRelease(ReleaseExplicit, 0)
	m.SetActiveHolds(5)
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()
	m.ObservePublish("testdrive.booked", nil)
	m.ObservePublish("testdrive.booked", errors.New("channel closed"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HoldRequestsTotal.WithLabelValues(HoldConflict)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.HoldReleasesTotal.WithLabelValues(ReleaseDisconnect)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.HoldReleasesTotal.WithLabelValues(ReleaseExplicit)))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.HoldsActive))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RealtimeConnections))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsPublished.WithLabelValues("testdrive.booked", "error")))
}
