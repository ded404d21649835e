// Package console prints measures as text lines.
package console

import (
	"fmt"
	"io"
	"time"

	fx "github.com/robotalks/ws8610/pkg/framework"
	"github.com/robotalks/ws8610/pkg/ws8610"
)

// Printer writes one line per measure, and a summary line per stats.
type Printer struct {
	W io.Writer
	// Stamp prefixes lines with the wall clock time.
	Stamp bool
}

// AddToLoop implements LoopAdder.
func (p *Printer) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPublish, p)
}

// Control implements Controller.
func (p *Printer) Control(cc fx.ControlContext) error {
	for _, m := range fx.Measures(cc.Messages()) {
		if err := p.PrintMeasure(cc.Time(), m); err != nil {
			return err
		}
	}
	if s, ok := fx.LatestStats(cc.Messages()); ok {
		return p.PrintStats(s.Time, s.Stats)
	}
	return nil
}

// PrintMeasure writes a measure.
func (p *Printer) PrintMeasure(t time.Time, m ws8610.Measure) error {
	_, err := fmt.Fprintf(p.W, "%s%s\n", p.prefix(t), m)
	return err
}

// PrintStats writes the counters.
func (p *Printer) PrintStats(t time.Time, s ws8610.Stats) error {
	_, err := fmt.Fprintf(p.W, "%sstats: %d edges, %d packets, %d measures, %d rejected (timing %d, start %d, parity %d, checksum %d), %d overruns\n",
		p.prefix(t), s.Edges, s.Packets, s.Measures, s.Rejected(),
		s.TimingErrors, s.StartMarkerErrors, s.ParityErrors, s.ChecksumErrors,
		s.PacketOverruns+s.MeasureOverruns)
	return err
}

func (p *Printer) prefix(t time.Time) string {
	if !p.Stamp {
		return ""
	}
	return t.Format("15:04:05.000 ")
}
