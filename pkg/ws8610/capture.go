package ws8610

import "sync/atomic"

// Packet is a window of timings captured at a sync gap.
type Packet struct {
	// Timestamp is the capture time in milliseconds since boot.
	Timestamp uint32
	Timings   Window
}

// Capture records pulse durations and cuts packets at sync gaps.
// Edge is the only method allowed in interrupt context. It never blocks or
// allocates.
type Capture struct {
	SyncThreshold uint32

	timings         [WindowSize]uint32
	cursor          int // next slot to write, also the oldest sample
	pulsesSinceSync int
	lastEdge        uint32
	packets         *Ring[Packet]

	edges         atomic.Uint64
	syncs         atomic.Uint64
	rejectedSyncs atomic.Uint64
}

// NewCapture creates a Capture producing into packets.
func NewCapture(packets *Ring[Packet], syncThreshold uint32) *Capture {
	return &Capture{SyncThreshold: syncThreshold, packets: packets}
}

// Edge handles a signal edge observed at the given time.
func (c *Capture) Edge(nowUs, nowMs uint32) {
	duration := nowUs - c.lastEdge
	c.lastEdge = nowUs

	c.timings[c.cursor] = duration
	if c.cursor++; c.cursor == WindowSize {
		c.cursor = 0
	}
	if c.pulsesSinceSync <= WindowSize {
		c.pulsesSinceSync++
	}
	c.edges.Add(1)

	if duration <= c.SyncThreshold {
		return
	}
	// A gap closer than one window to the previous one is inside a frame.
	if c.pulsesSinceSync > WindowSize {
		pkt := c.packets.Next()
		pkt.Timestamp = nowMs
		n := copy(pkt.Timings[:], c.timings[c.cursor:])
		copy(pkt.Timings[n:], c.timings[:c.cursor])
		c.packets.Publish()
		c.syncs.Add(1)
	} else {
		c.rejectedSyncs.Add(1)
	}
	c.pulsesSinceSync = 1
}

// Reset clears the timings. The interrupt must be detached.
func (c *Capture) Reset() {
	c.timings = [WindowSize]uint32{}
	c.cursor, c.pulsesSinceSync, c.lastEdge = 0, 0, 0
	c.edges.Store(0)
	c.syncs.Store(0)
	c.rejectedSyncs.Store(0)
}
