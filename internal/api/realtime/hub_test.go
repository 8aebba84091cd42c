package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
	"github.com/m04kA/SMC-TestDriveService/internal/infra/groups"
	"github.com/m04kA/SMC-TestDriveService/pkg/logger"
	"github.com/m04kA/SMC-TestDriveService/pkg/metrics"
)

func TestHub_Notify(t *testing.T) {
	registry := groups.NewRegistry()
	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())
	hub := NewHub(registry, m, logger.Nop())

	group := domain.GroupKey{DealerID: 1, ProductID: 7}
	key := domain.NewSlotKey(1, 7, time.Date(2025, 1, 10, 12, 0, 0, 0, time.FixedZone("MSK", 3*3600)))

	member := newClient("a", nil, 1)
	outsider := newClient("b", nil, 1)
	hub.register(member)
	hub.register(outsider)
	registry.Join(group, "a")
	registry.Join(domain.GroupKey{DealerID: 1, ProductID: 8}, "b")
	// участник группы без соединения пропускается
	registry.Join(group, "ghost")

	t.Run("delivers to group members only", func(t *testing.T) {
		hub.Notify(context.Background(), group, domain.NewSlotEvent(domain.SlotHeld, key))

		require.Len(t, member.send, 1)
		assert.Empty(t, outsider.send)

		var frame map[string]any
		require.NoError(t, json.Unmarshal(<-member.send, &frame))
		assert.Equal(t, "SlotHeld", frame["event"])
		assert.Equal(t, "2025-01-10T09:00:00Z", frame["scheduledDate"])
		assert.EqualValues(t, 1, frame["dealerId"])
		assert.EqualValues(t, 7, frame["productId"])
	})

	t.Run("drops when buffer is full", func(t *testing.T) {
		hub.Notify(context.Background(), group, domain.NewSlotEvent(domain.SlotHeld, key))
		hub.Notify(context.Background(), group, domain.NewSlotEvent(domain.SlotReleased, key))

		assert.Len(t, member.send, 1)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.RealtimeEventsDropped))
	})

	t.Run("unregistered client gets nothing", func(t *testing.T) {
		<-member.send
		hub.unregister("a")

		hub.Notify(context.Background(), group, domain.NewSlotEvent(domain.SlotBooked, key))

		assert.Empty(t, member.send)
		assert.Equal(t, 1, hub.Len())
	})
}

func TestClient_TrySendAfterClose(t *testing.T) {
	c := newClient("a", nil, 1)
	close(c.quit)

	assert.True(t, c.trySend([]byte("x")))
	assert.Empty(t, c.send)
}
