package ws8610

import "fmt"

// Window is the raw evidence of one frame: alternating variable and fixed pulses.
type Window [WindowSize]uint32

// Frame is a decoded frame. Byte 5 holds the checksum in its low nibble.
type Frame [FrameSize]byte

// String returns the frame in hex.
func (f Frame) String() string {
	return fmt.Sprintf("% X", f[:])
}

// DecodeWindow converts a captured window into a validated frame.
// The last pulse of the window is the sync gap which swallows the fixed half of
// the last bit, it's replaced by the fixed reference width.
func (t Timing) DecodeWindow(w Window) (f Frame, err error) {
	w[WindowSize-1] = t.Fixed
	for b := 0; b < BitCount; b++ {
		bit := t.DecodeBit(w[b*2], w[b*2+1])
		if !bit.IsValid() {
			return f, &TimingError{Bit: b, Pulses: [2]uint32{w[b*2], w[b*2+1]}}
		}
		f[b/8] <<= 1
		if bit == BitOne {
			f[b/8]++
		}
	}
	return f, f.Validate()
}

// EncodeFrame synthesizes the window a sensor transmits for the frame.
func (t Timing) EncodeFrame(f Frame) (w Window) {
	for b := 0; b < BitCount; b++ {
		w[b*2], w[b*2+1] = t.EncodeBit(f.bit(b))
	}
	return
}

func (f Frame) bit(n int) bool {
	bitsInByte := BitCount - n/8*8
	if bitsInByte > 8 {
		bitsInByte = 8
	}
	return (f[n/8]>>uint(bitsInByte-1-n%8))&1 != 0
}

// Validate checks start marker, parity and checksum in order.
func (f Frame) Validate() error {
	if f[0] != StartMarker {
		return ErrStartMarker
	}
	if parity(f[2]&0x1F, f[3]) != 0 {
		return ErrParity
	}
	if f.Checksum() != f[FrameSize-1] {
		return ErrChecksum
	}
	return nil
}

// Checksum calculates the low nibble of the nibble sum of bytes 0-4.
func (f Frame) Checksum() byte {
	var sum byte
	for _, b := range f[:FrameSize-1] {
		sum += (b & 0xF) + (b >> 4)
	}
	return sum & 0xF
}

// parity folds two bytes into a single bit, 1 means odd.
func parity(b1, b2 byte) byte {
	t := b1 ^ b2
	t ^= t >> 4
	t ^= t >> 2
	t ^= t >> 1
	return t & 1
}

// SensorAddress extracts the 7-bit address spanning bytes 1 and 2.
func (f Frame) SensorAddress() uint8 {
	return ((f[1] << 3) & 0x7F) | (f[2] >> 5)
}

// Kind extracts the sensor type nibble.
func (f Frame) Kind() Kind {
	if f[1]>>4 != 0 {
		return Humidity
	}
	return Temperature
}

// Measure extracts the reading. The frame should be validated first.
func (f Frame) Measure(timestamp uint32) Measure {
	kind := f.Kind()
	units := int(f[2]&0xF)*10 + int(f[3]>>4)
	if kind == Temperature {
		units -= temperatureOffset
	}
	return Measure{
		Timestamp:     timestamp,
		SensorAddress: f.SensorAddress(),
		Kind:          kind,
		Units:         units,
		Decimals:      f[3] & 0xF,
	}
}

// NewFrame builds a valid frame carrying the reading.
func NewFrame(addr uint8, kind Kind, units int, decimals uint8) (f Frame, err error) {
	raw := units
	if kind == Temperature {
		raw += temperatureOffset
	}
	if addr > MaxSensorAddress || decimals > 9 || raw < 0 || raw > 99 {
		return f, fmt.Errorf("%w: address %d, %s %d.%d", ErrInvalidMeasure, addr, kind, units, decimals)
	}
	tens, ones := byte(raw/10), byte(raw%10)
	f[0] = StartMarker
	f[1] = kind.typeNibble()<<4 | addr>>3
	f[2] = (addr&0x7)<<5 | tens
	f[3] = ones<<4 | decimals
	f[4] = tens<<4 | ones
	if parity(f[2]&0x1F, f[3]) != 0 {
		f[2] |= 0x10
	}
	f[5] = f.Checksum()
	return f, nil
}
