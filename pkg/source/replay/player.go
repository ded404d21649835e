// Package replay feeds recorded pulse durations to a receiver.
package replay

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robotalks/ws8610/pkg/ws8610"
)

// paceQuantum is the minimum virtual time accumulated before sleeping.
const paceQuantum = 20 * time.Millisecond

// Player is a virtual clock firing an edge after each duration.
// It implements ws8610.Interrupt and ws8610.Clock.
type Player struct {
	// Speed paces playback relative to real time, 0 plays as fast as possible.
	Speed float64

	ws8610.Line

	elapsed atomic.Uint64 // microseconds
	debt    time.Duration
}

// NewPlayer creates a Player.
func NewPlayer() *Player {
	return &Player{}
}

// Micros implements ws8610.Clock.
func (p *Player) Micros() uint32 {
	return uint32(p.elapsed.Load())
}

// Millis implements ws8610.Clock.
func (p *Player) Millis() uint32 {
	return uint32(p.elapsed.Load() / 1000)
}

// Elapsed returns the virtual time since the player was created.
func (p *Player) Elapsed() time.Duration {
	return time.Duration(p.elapsed.Load()) * time.Microsecond
}

// Edge advances the clock by the duration and signals an edge.
func (p *Player) Edge(us uint32) {
	p.elapsed.Add(uint64(us))
	p.Fire()
}

// Play plays the durations. It's not safe to call from multiple goroutines.
func (p *Player) Play(ctx context.Context, durations []uint32) error {
	for _, d := range durations {
		if err := p.pace(ctx, d); err != nil {
			return err
		}
		p.Edge(d)
	}
	return nil
}

// PlayReader plays durations parsed from text, see Scanner.
func (p *Player) PlayReader(ctx context.Context, r io.Reader) error {
	s := NewScanner(r)
	for s.Scan() {
		if err := p.pace(ctx, s.Duration()); err != nil {
			return err
		}
		p.Edge(s.Duration())
	}
	return s.Err()
}

func (p *Player) pace(ctx context.Context, us uint32) error {
	if p.Speed <= 0 {
		return ctx.Err()
	}
	p.debt += time.Duration(float64(time.Duration(us)*time.Microsecond) / p.Speed)
	if p.debt < paceQuantum {
		return nil
	}
	timer := time.NewTimer(p.debt)
	defer timer.Stop()
	p.debt = 0
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Scanner parses durations in microseconds from text: numbers separated by
// white spaces, and comments from # to the end of line.
type Scanner struct {
	lines  *bufio.Scanner
	fields []string
	line   int
	value  uint32
	err    error
}

// NewScanner creates a Scanner.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{lines: bufio.NewScanner(r)}
}

// Scan advances to the next duration.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for len(s.fields) == 0 {
		if !s.lines.Scan() {
			s.err = s.lines.Err()
			return false
		}
		s.line++
		text := s.lines.Text()
		if pos := strings.IndexByte(text, '#'); pos >= 0 {
			text = text[:pos]
		}
		s.fields = strings.Fields(text)
	}
	v, err := strconv.ParseUint(s.fields[0], 10, 32)
	if err != nil {
		s.err = fmt.Errorf("line %d: invalid duration %q", s.line, s.fields[0])
		return false
	}
	s.fields = s.fields[1:]
	s.value = uint32(v)
	return true
}

// Duration returns the current duration.
func (s *Scanner) Duration() uint32 {
	return s.value
}

// Err returns the first error.
func (s *Scanner) Err() error {
	return s.err
}

// ParseDurations parses all durations.
func ParseDurations(r io.Reader) ([]uint32, error) {
	var durations []uint32
	s := NewScanner(r)
	for s.Scan() {
		durations = append(durations, s.Duration())
	}
	return durations, s.Err()
}

// WriteDurations writes durations one per line, readable by Scanner.
func WriteDurations(w io.Writer, durations []uint32) error {
	bw := bufio.NewWriter(w)
	for _, d := range durations {
		bw.WriteString(strconv.FormatUint(uint64(d), 10))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
