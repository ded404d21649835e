// Package serial receives pulse durations measured by a microcontroller.
//
// The microcontroller times the edges of the receiver output and writes the
// duration in microseconds of every pulse, one per line, to its UART.
package serial

import (
	"context"
	"fmt"
	"io"

	"github.com/golang/glog"
	"github.com/tarm/serial"

	fx "github.com/robotalks/ws8610/pkg/framework"
	"github.com/robotalks/ws8610/pkg/source/replay"
)

// DefaultBaud is the default baud rate of the port.
const DefaultBaud = 115200

// Source replays durations received from a serial port.
// The clock advances with the received durations.
type Source struct {
	*replay.Player
	Config serial.Config
}

// New creates a Source on the named port.
func New(name string, baud int) *Source {
	if baud <= 0 {
		baud = DefaultBaud
	}
	return &Source{
		Player: replay.NewPlayer(),
		Config: serial.Config{Name: name, Baud: baud},
	}
}

// Name implements framework.Named.
func (s *Source) Name() string {
	return "serial:" + s.Config.Name
}

// Run implements framework.Runnable.
func (s *Source) Run(ctx context.Context) error {
	port, err := serial.OpenPort(&s.Config)
	if err != nil {
		return fmt.Errorf("open %s: %v", s.Config.Name, err)
	}
	glog.Infof("serial port %s opened at %d baud", s.Config.Name, s.Config.Baud)
	return fx.RunWithContextCloser(ctx, port, func() error {
		return s.Consume(port)
	})
}

// Consume plays durations until the end of r.
func (s *Source) Consume(r io.Reader) error {
	sc := replay.NewScanner(r)
	for sc.Scan() {
		s.Edge(sc.Duration())
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return io.EOF
}
