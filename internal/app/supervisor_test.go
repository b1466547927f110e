package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSupervisor_RestartsAfterFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	s := NewSupervisor("polling", time.Millisecond, zap.NewNop())

	err := s.Run(ctx, func(ctx context.Context) error {
		switch calls.Add(1) {
		case 1:
			return errors.New("connection lost")
		case 2:
			panic("handler bug")
		default:
			cancel()
			<-ctx.Done()
			return nil
		}
	})

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSupervisor_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSupervisor("polling", time.Hour, zap.NewNop())
	err := s.Run(ctx, func(ctx context.Context) error {
		return errors.New("failed")
	})
	assert.NoError(t, err)
}

func TestMetrics_ObserveMessage(t *testing.T) {
	m := NewMetrics()
	m.ObserveMessage("state", 10*time.Millisecond)
	m.ObserveMessage("state", 20*time.Millisecond)
	m.SetSessions(3)

	families, err := m.registry.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[family.GetName()] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[family.GetName()] = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				values[family.GetName()] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}

	assert.Equal(t, 2.0, values["bot_messages_total"])
	assert.Equal(t, 2.0, values["bot_handler_duration_seconds"])
	assert.Equal(t, 3.0, values["bot_sessions_active"])
}
