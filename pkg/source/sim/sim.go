// Package sim synthesizes the transmissions of TX3-TH sensors.
package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ws8610/pkg/source/replay"
	"github.com/robotalks/ws8610/pkg/ws8610"
)

// Defaults of a Simulator.
const (
	DefaultRepeat    = 2
	DefaultRepeatGap = 20 * time.Millisecond
	DefaultInterval  = 2 * time.Second
)

// Sensor is a virtual sensor.
type Sensor struct {
	Address uint8
	Kind    ws8610.Kind
	Value   float64
	// Drift is the maximum change of Value between transmissions.
	Drift float64
}

// Reading returns the encodable units and decimals of Value, clamped to the
// range of the sensor kind.
func (s Sensor) Reading() (units int, decimals uint8) {
	lo, hi := -500, 499
	if s.Kind == ws8610.Humidity {
		lo, hi = 0, 999
	}
	tenths := int(math.Round(s.Value * 10))
	if tenths < lo {
		tenths = lo
	} else if tenths > hi {
		tenths = hi
	}
	units = tenths / 10
	if tenths%10 < 0 {
		units--
	}
	return units, uint8(tenths - units*10)
}

// Frame encodes the current reading.
func (s Sensor) Frame() (ws8610.Frame, error) {
	units, decimals := s.Reading()
	return ws8610.NewFrame(s.Address, s.Kind, units, decimals)
}

// Simulator plays transmissions of sensors in turn through a Player.
// Each transmission is repeated with a short gap, like real sensors do.
type Simulator struct {
	*replay.Player
	Timing    ws8610.Timing
	Sensors   []Sensor
	Repeat    int
	RepeatGap time.Duration
	// Interval is the silence after each transmission.
	Interval time.Duration
	// Jitter is the maximum deviation added to each pulse.
	Jitter uint32
	// NoiseRate is the probability of a noise burst before a transmission.
	NoiseRate float64
	Rand      *rand.Rand
}

// New creates a Simulator playing at real time.
func New(sensors ...Sensor) *Simulator {
	return &Simulator{
		Player:    &replay.Player{Speed: 1},
		Timing:    ws8610.DefaultTiming,
		Sensors:   sensors,
		Repeat:    DefaultRepeat,
		RepeatGap: DefaultRepeatGap,
		Interval:  DefaultInterval,
		Rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Name implements framework.Named.
func (s *Simulator) Name() string {
	return "sim"
}

// Run implements framework.Runnable.
func (s *Simulator) Run(ctx context.Context) error {
	if len(s.Sensors) == 0 {
		return fmt.Errorf("no sensors to simulate")
	}
	// the first edge can't complete a frame.
	if err := s.Play(ctx, []uint32{micros(s.Interval)}); err != nil {
		return err
	}
	for n := 0; ; n = (n + 1) % len(s.Sensors) {
		durations, err := s.Transmission(n)
		if err != nil {
			return err
		}
		if err := s.Play(ctx, durations); err != nil {
			return err
		}
		s.drift(n)
	}
}

// Transmission synthesizes the pulses of sensor n, ending with Interval.
func (s *Simulator) Transmission(n int) ([]uint32, error) {
	f, err := s.Sensors[n].Frame()
	if err != nil {
		return nil, err
	}
	glog.V(3).Infof("sim sensor %d transmits %s", s.Sensors[n].Address, f)
	w := s.Timing.EncodeFrame(f)
	var durations []uint32
	if s.NoiseRate > 0 && s.Rand.Float64() < s.NoiseRate {
		durations = append(durations, s.noise()...)
	}
	for r := 0; r < s.repeat(); r++ {
		for _, d := range w[:ws8610.WindowSize-1] {
			durations = append(durations, s.jitter(d))
		}
		if r+1 < s.repeat() {
			durations = append(durations, micros(s.RepeatGap))
		}
	}
	return append(durations, micros(s.Interval)), nil
}

func (s *Simulator) repeat() int {
	if s.Repeat < 1 {
		return 1
	}
	return s.Repeat
}

func (s *Simulator) jitter(d uint32) uint32 {
	if s.Jitter == 0 {
		return d
	}
	return d + uint32(s.Rand.Int63n(int64(s.Jitter)*2+1)) - s.Jitter
}

// noise is a burst of random pulses ended by a gap.
func (s *Simulator) noise() []uint32 {
	durations := make([]uint32, 5+s.Rand.Intn(60))
	for n := range durations {
		durations[n] = 100 + uint32(s.Rand.Intn(2900))
	}
	return append(durations, micros(s.RepeatGap))
}

func (s *Simulator) drift(n int) {
	sensor := &s.Sensors[n]
	if sensor.Drift > 0 {
		sensor.Value += (s.Rand.Float64()*2 - 1) * sensor.Drift
	}
}

func micros(d time.Duration) uint32 {
	return uint32(d / time.Microsecond)
}
