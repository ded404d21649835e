// Package gpio receives edges from a GPIO line connected to an RF receiver.
package gpio

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/robotalks/ws8610/pkg/ws8610"
)

// pollTimeout bounds the wait for an edge, so cancellation is noticed.
const pollTimeout = 100 * time.Millisecond

// Source is a GPIO pin interrupting on both edges.
// It implements ws8610.Interrupt and ws8610.Clock.
type Source struct {
	*ws8610.MonotonicClock
	ws8610.Line
	Pin gpio.PinIn
}

// New creates a Source on a pin.
func New(pin gpio.PinIn) *Source {
	return &Source{MonotonicClock: ws8610.NewMonotonicClock(), Pin: pin}
}

// Open initializes the host drivers and opens the pin by name, e.g. GPIO17.
func Open(name string) (*Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph init: %v", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	return New(pin), nil
}

// Name implements framework.Named.
func (s *Source) Name() string {
	return "gpio:" + s.Pin.Name()
}

// Run implements framework.Runnable.
func (s *Source) Run(ctx context.Context) error {
	if err := s.Pin.In(gpio.PullNoChange, gpio.BothEdges); err != nil {
		return fmt.Errorf("gpio %s: %v", s.Pin.Name(), err)
	}
	glog.Infof("gpio %s waiting for edges", s.Pin.Name())
	defer s.Pin.In(gpio.PullNoChange, gpio.NoEdge)
	for ctx.Err() == nil {
		if !s.Pin.WaitForEdge(pollTimeout) {
			continue
		}
		s.Fire()
	}
	return ctx.Err()
}
