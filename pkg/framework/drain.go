package framework

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ws8610/pkg/ws8610"
)

// MeasureMessage carries a decoded measure through the loop.
type MeasureMessage struct {
	ws8610.Measure
}

// StatsMessage carries a snapshot of receiver counters through the loop.
type StatsMessage struct {
	ws8610.Stats
	Time time.Time
}

// Drain pulls measures out of a Receiver on every iteration and posts
// them as MeasureMessage for controllers at lower priority levels.
// It must be the only consumer of the Receiver.
type Drain struct {
	Receiver *ws8610.Receiver
	// MaxPerIteration limits measures posted in one iteration, 0 means unlimited.
	MaxPerIteration int
	// StatsInterval enables periodic StatsMessage.
	StatsInterval time.Duration

	lastStats time.Time
}

// NewDrain creates a Drain and logs decoding failures of the receiver.
func NewDrain(r *ws8610.Receiver) *Drain {
	r.OnReject = logReject
	return &Drain{Receiver: r}
}

func logReject(pkt *ws8610.Packet, err error) {
	glog.V(3).Infof("packet [%d] rejected: %v", pkt.Timestamp, err)
}

// AddToLoop implements LoopAdder.
func (d *Drain) AddToLoop(l *Loop) {
	l.AddController(PrLvDecode, d)
}

// Control implements Controller.
func (d *Drain) Control(cc ControlContext) error {
	for n := 0; d.MaxPerIteration <= 0 || n < d.MaxPerIteration; n++ {
		m, ok := d.Receiver.NextMeasure()
		if !ok {
			break
		}
		glog.V(2).Infof("MEASURE %s", m)
		cc.Post(MeasureMessage{Measure: m})
		if n+1 == d.MaxPerIteration {
			cc.TriggerNext()
		}
	}
	if d.StatsInterval > 0 && cc.Time().Sub(d.lastStats) >= d.StatsInterval {
		d.lastStats = cc.Time()
		cc.Post(StatsMessage{Stats: d.Receiver.Stats(), Time: d.lastStats})
	}
	return nil
}

// Measures extracts the measures from messages.
func Measures(msgs []Message) (measures []ws8610.Measure) {
	for _, msg := range msgs {
		if m, ok := msg.(MeasureMessage); ok {
			measures = append(measures, m.Measure)
		}
	}
	return
}

// LatestStats returns the last StatsMessage in messages.
func LatestStats(msgs []Message) (s StatsMessage, ok bool) {
	for _, msg := range msgs {
		if m, is := msg.(StatsMessage); is {
			s, ok = m, true
		}
	}
	return
}
