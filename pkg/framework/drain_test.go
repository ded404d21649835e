package framework

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ws8610/pkg/ws8610"
)

type testLine struct {
	handler func()
	us      uint32
}

func (l *testLine) Attach(handler func()) error { l.handler = handler; return nil }
func (l *testLine) Detach() error               { l.handler = nil; return nil }
func (l *testLine) Micros() uint32              { return l.us }
func (l *testLine) Millis() uint32              { return l.us / 1000 }

func (l *testLine) send(t *testing.T, addr uint8, units int) {
	f, err := ws8610.NewFrame(addr, ws8610.Humidity, units, 0)
	require.NoError(t, err)
	w := ws8610.DefaultTiming.EncodeFrame(f)
	for _, d := range append(w[:ws8610.WindowSize-1], 10000) {
		l.us += d
		l.handler()
	}
}

func TestDrain(t *testing.T) {
	line := &testLine{}
	r := ws8610.NewReceiver(line, line, ws8610.DefaultConfig())
	require.NoError(t, r.Enable())
	line.us = 10000
	line.handler()
	for n := 1; n <= 3; n++ {
		line.send(t, uint8(n), 40+n)
	}

	d := NewDrain(r)
	d.MaxPerIteration = 2
	d.StatsInterval = time.Minute
	var got [][]ws8610.Measure
	var stats []StatsMessage
	l := NewLoop().Add(d)
	l.AddController(PrLvPublish, ControlFunc(func(cc ControlContext) error {
		got = append(got, Measures(cc.Messages()))
		if s, ok := LatestStats(cc.Messages()); ok {
			stats = append(stats, s)
		}
		return nil
	}))

	l.RunIteration(context.Background())
	l.RunIteration(context.Background())
	require.Len(t, got, 2)
	require.Len(t, got[0], 2)
	require.Len(t, got[1], 1)
	require.Equal(t, uint8(1), got[0][0].SensorAddress)
	require.Equal(t, uint8(3), got[1][0].SensorAddress)
	require.Equal(t, 43, got[1][0].Units)

	require.Len(t, stats, 1)
	require.Equal(t, uint64(2), stats[0].Measures)
	require.Equal(t, uint64(2), stats[0].Delivered)

	select {
	case <-l.wakeUpCh:
	default:
		require.Fail(t, "next iteration not triggered")
	}
	require.NotNil(t, r.OnReject)
}
