// Package ws8610 decodes the RF pulse train of La Crosse WS-8610 weather
// station sensors (e.g. TX3-TH) into temperature and humidity measures.
package ws8610

// A sensor transmits a 44-bit frame using pulse width modulation. Every bit
// is a pair of pulses: a variable one (short means 1, long means 0) followed
// by a fixed-width one. Frames are delimited only by long silences (sync gaps).
//
// Frame layout (bits, MSB first):
//
//	+--------+------+---------+--------+-----+-------+-------+-------+----------+
//	| start  | type | address | parity | tens| ones  | tenths| repeat| checksum |
//	+--------+------+---------+--------+-----+-------+-------+-------+----------+
//	| 8 (0A) |  4   |    7    |   1    |  4  |   4   |   4   | 8     |    4     |
//	+--------+------+---------+--------+-----+-------+-------+-------+----------+
//
// Producer: edge interrupt handler (Capture)
// Consumer: caller of Receiver.PendingCount / Receiver.NextMeasure
//
// The producer and the consumer share two single-producer/single-consumer
// rings (packets and measures). Indices are published with atomic operations
// so the producer may run on an interrupt, a goroutine or another core.
// Enable and Disable rely on Interrupt.Detach to wait for a running handler:
// on single-core TinyGo targets the interrupt completes before Detach runs,
// host sources embed Line.
