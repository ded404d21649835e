package ws8610

import (
	"errors"
	"fmt"
)

var (
	// ErrTimingMismatch indicates a pulse pair doesn't encode any bit.
	ErrTimingMismatch = errors.New("timing mismatch")
	// ErrStartMarker indicates the first byte is not the start marker.
	ErrStartMarker = errors.New("bad start marker")
	// ErrParity indicates the data bits have odd parity.
	ErrParity = errors.New("parity error")
	// ErrChecksum indicates the checksum nibble doesn't match.
	ErrChecksum = errors.New("checksum error")
	// ErrInvalidMeasure indicates a measure can't be encoded into a frame.
	ErrInvalidMeasure = errors.New("invalid measure")
)

// TimingError reports the first pulse pair failing classification.
type TimingError struct {
	Bit    int
	Pulses [2]uint32
}

// Error implements error.
func (e *TimingError) Error() string {
	return fmt.Sprintf("timing mismatch at bit %d: %dus/%dus", e.Bit, e.Pulses[0], e.Pulses[1])
}

// Unwrap returns ErrTimingMismatch.
func (e *TimingError) Unwrap() error {
	return ErrTimingMismatch
}
