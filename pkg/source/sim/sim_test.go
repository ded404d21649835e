package sim

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ws8610/pkg/ws8610"
)

func TestSensorReading(t *testing.T) {
	testCases := []struct {
		name     string
		sensor   Sensor
		units    int
		decimals uint8
	}{
		{"positive", Sensor{Kind: ws8610.Temperature, Value: 23.4}, 23, 4},
		{"rounding", Sensor{Kind: ws8610.Temperature, Value: 23.46}, 23, 5},
		{"negative", Sensor{Kind: ws8610.Temperature, Value: -44.8}, -45, 2},
		{"negative whole", Sensor{Kind: ws8610.Temperature, Value: -3}, -3, 0},
		{"too cold", Sensor{Kind: ws8610.Temperature, Value: -80}, -50, 0},
		{"too hot", Sensor{Kind: ws8610.Temperature, Value: 60}, 49, 9},
		{"humidity", Sensor{Kind: ws8610.Humidity, Value: 56}, 56, 0},
		{"too dry", Sensor{Kind: ws8610.Humidity, Value: -2}, 0, 0},
		{"too wet", Sensor{Kind: ws8610.Humidity, Value: 120}, 99, 9},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			units, decimals := tc.sensor.Reading()
			require.Equal(t, tc.units, units)
			require.Equal(t, tc.decimals, decimals)
			_, err := tc.sensor.Frame()
			require.NoError(t, err)
		})
	}
}

func newTestSimulator(sensors ...Sensor) (*Simulator, *ws8610.Receiver) {
	s := New(sensors...)
	s.Speed = 0
	s.Rand = rand.New(rand.NewSource(1))
	conf := ws8610.DefaultConfig()
	conf.MeasureCapacity = 100
	conf.PacketCapacity = 100
	r := ws8610.NewReceiver(s, s, conf)
	return s, r
}

func TestTransmission(t *testing.T) {
	testCases := []struct {
		name      string
		jitter    uint32
		noiseRate float64
	}{
		{"clean", 0, 0},
		{"jitter", 60, 0},
		{"noise", 0, 1},
		{"jitter and noise", 40, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, r := newTestSimulator(
				Sensor{Address: 107, Kind: ws8610.Temperature, Value: -44.8},
				Sensor{Address: 107, Kind: ws8610.Humidity, Value: 56},
			)
			s.Jitter, s.NoiseRate = tc.jitter, tc.noiseRate
			require.NoError(t, r.Enable())
			ctx := context.Background()
			require.NoError(t, s.Play(ctx, []uint32{micros(s.Interval)}))
			for n := range s.Sensors {
				durations, err := s.Transmission(n)
				require.NoError(t, err)
				require.NoError(t, s.Play(ctx, durations))
			}

			require.Equal(t, 2*DefaultRepeat, r.PendingCount())
			for _, expect := range []ws8610.Kind{ws8610.Temperature, ws8610.Temperature, ws8610.Humidity, ws8610.Humidity} {
				m, ok := r.NextMeasure()
				require.True(t, ok)
				require.Equal(t, expect, m.Kind)
				require.Equal(t, uint8(107), m.SensorAddress)
			}
			rejected := uint64(1)
			if tc.noiseRate > 0 {
				rejected += uint64(len(s.Sensors))
			}
			require.Equal(t, rejected, r.Stats().RejectedSyncs)
		})
	}
}

func TestRun(t *testing.T) {
	s, r := newTestSimulator(Sensor{Address: 9, Kind: ws8610.Humidity, Value: 40})
	s.Speed = 1000
	s.Interval = time.Second
	require.NoError(t, r.Enable())
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.Equal(t, context.DeadlineExceeded, s.Run(ctx))
	require.NotZero(t, r.PendingCount())
	m, ok := r.NextMeasure()
	require.True(t, ok)
	require.Equal(t, uint8(9), m.SensorAddress)
	require.Equal(t, 40, m.Units)
}

func TestDrift(t *testing.T) {
	s, _ := newTestSimulator(Sensor{Kind: ws8610.Humidity, Value: 40, Drift: 0.5})
	for n := 0; n < 10; n++ {
		prev := s.Sensors[0].Value
		s.drift(0)
		require.InDelta(t, prev, s.Sensors[0].Value, 0.5)
	}
}

func TestRunNoSensors(t *testing.T) {
	require.Error(t, New().Run(context.Background()))
}
