package poller

import (
	"testing"
	"time"

	"github.com/nirlob/obision-status/internal/metrics"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(cycle uint64) *metrics.Snapshot {
	return metrics.NewSnapshot(cycle, time.Unix(int64(cycle), 0))
}

func TestHub_SubscribeReceivesLatest(t *testing.T) {
	h := NewHub()
	assert.Nil(t, h.Latest())

	h.Publish(snapshot(1))
	ch, cancel := h.Subscribe(1)
	defer cancel()

	select {
	case s := <-ch:
		assert.Equal(t, uint64(1), s.Cycle)
	default:
		t.Fatal("expected the latest snapshot on subscribe")
	}
}

func TestHub_PublishFansOut(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe(4)
	defer cancelA()
	b, cancelB := h.Subscribe(4)
	defer cancelB()
	assert.Equal(t, 2, h.Subscribers())

	h.Publish(snapshot(1))
	h.Publish(snapshot(2))

	for _, ch := range []<-chan *metrics.Snapshot{a, b} {
		assert.Equal(t, uint64(1), (<-ch).Cycle)
		assert.Equal(t, uint64(2), (<-ch).Cycle)
	}
	assert.Equal(t, uint64(2), h.Latest().Cycle)
}

func TestHub_SlowSubscriberKeepsNewest(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(1)
	defer cancel()

	for i := uint64(1); i <= 5; i++ {
		h.Publish(snapshot(i))
	}

	require.Len(t, ch, 1)
	assert.Equal(t, uint64(5), (<-ch).Cycle)
}

func TestHub_CancelClosesChannel(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(1)

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.Subscribers())

	h.Publish(snapshot(1))
}

func TestHub_Close(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(1)
	defer cancel()

	h.Close()
	_, open := <-ch
	assert.False(t, open)

	h.Publish(snapshot(1))
	assert.Nil(t, h.Latest(), "publish after close is ignored")

	late, lateCancel := h.Subscribe(1)
	defer lateCancel()
	_, open = <-late
	assert.False(t, open)
}

func TestHottest(t *testing.T) {
	temps := []host.TemperatureStat{
		{SensorKey: "coretemp_core_0_input", Temperature: 51},
		{SensorKey: "coretemp_core_1_input", Temperature: 58},
		{SensorKey: "coretemp_package_id_0_input", Temperature: 200},
		{SensorKey: "amdgpu_edge_input", Temperature: 64},
		{SensorKey: "nvme_composite_input", Temperature: 70},
	}

	cpu, err := hottest(temps, sensorKeys[SensorCPU])
	require.NoError(t, err)
	assert.Equal(t, 58.0, cpu, "out-of-range readings are ignored")

	gpu, err := hottest(temps, sensorKeys[SensorGPU])
	require.NoError(t, err)
	assert.Equal(t, 64.0, gpu)

	_, err = hottest([]host.TemperatureStat{{SensorKey: "nvme_composite_input", Temperature: 40}}, sensorKeys[SensorCPU])
	assert.Error(t, err)
}
