package ws8610

import "time"

// MonotonicClock implements Clock using the runtime monotonic clock.
// Both counters wrap around, which Capture handles.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock creates a clock starting at zero.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Micros implements Clock.
func (c *MonotonicClock) Micros() uint32 {
	return uint32(time.Since(c.start) / time.Microsecond)
}

// Millis implements Clock.
func (c *MonotonicClock) Millis() uint32 {
	return uint32(time.Since(c.start) / time.Millisecond)
}
