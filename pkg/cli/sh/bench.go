package sh

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/robotalks/ws8610/pkg/env"
	"github.com/robotalks/ws8610/pkg/source/replay"
	"github.com/robotalks/ws8610/pkg/source/sim"
	"github.com/robotalks/ws8610/pkg/ws8610"
)

// Bench is a receiver fed by a virtual clock, driven by commands.
type Bench struct {
	Player   *replay.Player
	Sim      *sim.Simulator
	Receiver *ws8610.Receiver

	next int
}

// NewBench creates a Bench from config. The simulated sensors are those of
// the config, transmitted as fast as possible.
func NewBench(conf *env.Config) *Bench {
	b := &Bench{Player: replay.NewPlayer()}
	b.Sim = sim.New(append([]sim.Sensor(nil), conf.Sim.Sensors...)...)
	b.Sim.Player = b.Player
	if conf.Sim.Interval > 0 {
		b.Sim.Interval = conf.Sim.Interval
	}
	b.Sim.Timing = conf.Receiver.Timing
	b.Sim.Jitter = conf.Sim.Jitter
	b.Sim.NoiseRate = conf.Sim.NoiseRate
	b.Receiver = ws8610.NewReceiver(b.Player, b.Player, conf.Receiver)
	return b
}

// Enable resets the receiver and primes it with a sync gap, as the first
// edge after reset can't complete a frame.
func (b *Bench) Enable() error {
	if err := b.Receiver.Enable(); err != nil {
		return err
	}
	b.Player.Edge(uint32(b.Sim.Interval.Microseconds()))
	return nil
}

// Simulate transmits count rounds of all simulated sensors.
func (b *Bench) Simulate(ctx context.Context, count int) error {
	if len(b.Sim.Sensors) == 0 {
		return fmt.Errorf("no sensors to simulate")
	}
	for n := 0; n < count*len(b.Sim.Sensors); n++ {
		durations, err := b.Sim.Transmission(b.next)
		if err != nil {
			return err
		}
		if err := b.Player.Play(ctx, durations); err != nil {
			return err
		}
		b.next = (b.next + 1) % len(b.Sim.Sensors)
	}
	return nil
}

// Send transmits a single reading once.
func (b *Bench) Send(ctx context.Context, s sim.Sensor) error {
	f, err := s.Frame()
	if err != nil {
		return err
	}
	w := b.Sim.Timing.EncodeFrame(f)
	durations := append([]uint32(nil), w[:ws8610.WindowSize-1]...)
	return b.Player.Play(ctx, append(durations, uint32(b.Sim.Interval.Microseconds())))
}

// Replay plays recorded durations.
func (b *Bench) Replay(ctx context.Context, r io.Reader) error {
	return b.Player.PlayReader(ctx, r)
}

// Take dequeues up to n measures.
func (b *Bench) Take(n int) (measures []ws8610.Measure) {
	for len(measures) < n {
		m, ok := b.Receiver.NextMeasure()
		if !ok {
			break
		}
		measures = append(measures, m)
	}
	return
}

// DecodeHex validates a frame given in hex, e.g. "0A 0D 67 34 73 05".
func DecodeHex(args ...string) (ws8610.Frame, error) {
	var f ws8610.Frame
	data, err := hex.DecodeString(strings.Join(strings.Fields(strings.Join(args, " ")), ""))
	if err != nil {
		return f, err
	}
	if len(data) != ws8610.FrameSize {
		return f, fmt.Errorf("frame must be %d bytes, got %d", ws8610.FrameSize, len(data))
	}
	copy(f[:], data)
	return f, f.Validate()
}
