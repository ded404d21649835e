package ws8610

import "errors"

// Clock provides monotonic timestamps. Both counters may wrap around.
type Clock interface {
	Micros() uint32
	Millis() uint32
}

// Interrupt binds a handler to level change events of the receive line.
// Detach must not return while the handler is running, see Line.
type Interrupt interface {
	Attach(handler func()) error
	Detach() error
}

// Config defines receiver tuning.
type Config struct {
	Timing          Timing
	SyncThreshold   uint32
	PacketCapacity  int
	MeasureCapacity int
}

// DefaultConfig returns the settings for TX3-TH sensors.
func DefaultConfig() Config {
	return Config{
		Timing:          DefaultTiming,
		SyncThreshold:   DefaultSyncThreshold,
		PacketCapacity:  DefaultPacketCapacity,
		MeasureCapacity: DefaultMeasureCapacity,
	}
}

// RejectHandler is notified when a packet fails to decode.
type RejectHandler func(pkt *Packet, err error)

// Receiver decodes measures from the edges signaled by an Interrupt.
//
// PendingCount, NextMeasure, Stats, Enable and Disable must be called from a
// single goroutine. Packets are decoded lazily by PendingCount and
// NextMeasure.
type Receiver struct {
	Timing   Timing
	OnReject RejectHandler

	interrupt Interrupt
	clock     Clock
	capture   *Capture
	packets   *Ring[Packet]
	measures  *Ring[Measure]
	enabled   bool
	pkt       Packet
	stats     Stats
}

// NewReceiver creates a Receiver.
func NewReceiver(intr Interrupt, clock Clock, conf Config) *Receiver {
	if conf.PacketCapacity <= 0 {
		conf.PacketCapacity = DefaultPacketCapacity
	}
	if conf.MeasureCapacity <= 0 {
		conf.MeasureCapacity = DefaultMeasureCapacity
	}
	if conf.SyncThreshold == 0 {
		conf.SyncThreshold = DefaultSyncThreshold
	}
	if !conf.Timing.IsValid() {
		conf.Timing = DefaultTiming
	}
	r := &Receiver{
		Timing:    conf.Timing,
		interrupt: intr,
		clock:     clock,
		packets:   NewRing[Packet](conf.PacketCapacity),
		measures:  NewRing[Measure](conf.MeasureCapacity),
	}
	r.capture = NewCapture(r.packets, conf.SyncThreshold)
	return r
}

// Enable resets all buffers and starts capturing. An enabled receiver is
// detached first, so the buffers are never reset under a running producer.
func (r *Receiver) Enable() error {
	if r.enabled {
		if err := r.Disable(); err != nil {
			return err
		}
	}
	r.capture.Reset()
	r.packets.Reset()
	r.measures.Reset()
	r.stats = Stats{}
	if err := r.interrupt.Attach(r.handleInterrupt); err != nil {
		return err
	}
	r.enabled = true
	return nil
}

// Disable stops capturing. Buffered packets and measures remain readable.
func (r *Receiver) Disable() error {
	if !r.enabled {
		return nil
	}
	if err := r.interrupt.Detach(); err != nil {
		return err
	}
	r.enabled = false
	return nil
}

// Enabled indicates the interrupt is attached.
func (r *Receiver) Enabled() bool {
	return r.enabled
}

func (r *Receiver) handleInterrupt() {
	r.capture.Edge(r.clock.Micros(), r.clock.Millis())
}

// PendingCount decodes all captured packets and returns the number of unread
// measures.
func (r *Receiver) PendingCount() int {
	r.drain(false)
	return r.measures.Len()
}

// NextMeasure returns the oldest unread measure, decoding captured packets
// only until one yields a measure.
func (r *Receiver) NextMeasure() (m Measure, ok bool) {
	if r.measures.Len() == 0 {
		r.drain(true)
	}
	if ok = r.measures.Pop(&m); ok {
		r.stats.Delivered++
	}
	return
}

// Stats returns the counters.
func (r *Receiver) Stats() Stats {
	s := r.stats
	s.Edges = r.capture.edges.Load()
	s.Syncs = r.capture.syncs.Load()
	s.RejectedSyncs = r.capture.rejectedSyncs.Load()
	s.PacketOverruns = r.packets.Overruns()
	s.MeasureOverruns = r.measures.Overruns()
	return s
}

// drain decodes the packets published before the call.
func (r *Receiver) drain(untilMeasure bool) {
	for n := r.packets.Len(); n > 0; n-- {
		if !r.packets.Pop(&r.pkt) {
			return
		}
		if r.decode(&r.pkt) && untilMeasure {
			return
		}
	}
}

func (r *Receiver) decode(pkt *Packet) bool {
	r.stats.Packets++
	f, err := r.Timing.DecodeWindow(pkt.Timings)
	if err != nil {
		r.reject(pkt, err)
		return false
	}
	*r.measures.Next() = f.Measure(pkt.Timestamp)
	r.measures.Publish()
	r.stats.Measures++
	return true
}

func (r *Receiver) reject(pkt *Packet, err error) {
	switch {
	case errors.Is(err, ErrTimingMismatch):
		r.stats.TimingErrors++
	case errors.Is(err, ErrStartMarker):
		r.stats.StartMarkerErrors++
	case errors.Is(err, ErrParity):
		r.stats.ParityErrors++
	case errors.Is(err, ErrChecksum):
		r.stats.ChecksumErrors++
	}
	if h := r.OnReject; h != nil {
		h(pkt, err)
	}
}
