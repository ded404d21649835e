package env

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	fx "github.com/robotalks/ws8610/pkg/framework"
	"github.com/robotalks/ws8610/pkg/msgs"
	"github.com/robotalks/ws8610/pkg/publish/console"
	"github.com/robotalks/ws8610/pkg/publish/mqtt"
	"github.com/robotalks/ws8610/pkg/publish/stream"
	"github.com/robotalks/ws8610/pkg/publish/websocket"
	"github.com/robotalks/ws8610/pkg/source/gpio"
	"github.com/robotalks/ws8610/pkg/source/replay"
	"github.com/robotalks/ws8610/pkg/source/serial"
	"github.com/robotalks/ws8610/pkg/source/sim"
	"github.com/robotalks/ws8610/pkg/ws8610"
)

// Source produces edges for a receiver.
type Source interface {
	ws8610.Interrupt
	ws8610.Clock
	fx.Runnable
}

// Env is a station: a source, a receiver and the publishers.
type Env struct {
	Config     *Config
	Info       *msgs.StationInfo
	Source     Source
	Receiver   *ws8610.Receiver
	Drain      *fx.Drain
	Publishers []fx.LoopAdder

	closers []io.Closer
}

// NewSource creates the source from config.
func (c *Config) NewSource() (Source, error) {
	spec, err := ParseSource(c.Source)
	if err != nil {
		return nil, err
	}
	switch spec.Kind {
	case "gpio":
		s, err := gpio.Open(spec.Arg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "serial":
		return serial.New(spec.Arg, spec.Baud), nil
	case "replay":
		return replay.NewFileSource(spec.Arg), nil
	default:
		s := sim.New(c.Sim.Sensors...)
		s.Timing = c.Receiver.Timing
		s.Speed = c.Sim.Speed
		s.Jitter = c.Sim.Jitter
		s.NoiseRate = c.Sim.NoiseRate
		if c.Sim.Interval > 0 {
			s.Interval = c.Sim.Interval
		}
		return s, nil
	}
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if c.Station == "" {
		return nil, fmt.Errorf("station must be specified")
	}
	src, err := c.NewSource()
	if err != nil {
		return nil, fmt.Errorf("create source error: %v", err)
	}
	env := &Env{
		Config:   c,
		Info:     msgs.NewStationInfo(c.Station, c.Source, time.Now().UnixMilli(), c.Receiver.Timing),
		Source:   src,
		Receiver: ws8610.NewReceiver(src, src, c.Receiver),
	}
	env.Drain = fx.NewDrain(env.Receiver)
	env.Drain.StatsInterval = c.StatsInterval

	if c.MQTTBrokerURL != "" {
		pub, err := mqtt.NewPublisher(c.MQTTBrokerURL, env.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT publisher error: %v", err)
		}
		env.Publishers = append(env.Publishers, pub)
	}
	if c.HTTPAddr != "" {
		env.Publishers = append(env.Publishers, websocket.NewServer(c.HTTPAddr, env.Info))
	}
	if c.StreamOut != "" {
		out := io.Writer(os.Stdout)
		if c.StreamOut != "-" {
			f, err := os.Create(c.StreamOut)
			if err != nil {
				return nil, fmt.Errorf("create record file error: %v", err)
			}
			env.closers = append(env.closers, f)
			out = f
		}
		env.Publishers = append(env.Publishers, stream.NewWriter(out, env.Info))
	}
	if c.Print {
		env.Publishers = append(env.Publishers, &console.Printer{W: os.Stdout, Stamp: true})
	}
	return env, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// AddToLoop enables the receiver and adds the source, the drain and all
// publishers to the loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	if err := e.Receiver.Enable(); err != nil {
		log.Fatalln(err)
	}
	loop.Interval = e.Config.PollInterval
	loop.Add(e.Drain)
	loop.AddRunnable(fx.NamedRun("source", e.Source))
	loop.Add(e.Publishers...)
}

// Close releases files opened by the env.
func (e *Env) Close() error {
	var errs fx.AggregatedError
	errs.Add(e.Receiver.Disable())
	for _, c := range e.closers {
		errs.Add(c.Close())
	}
	return errs.Aggregate()
}
