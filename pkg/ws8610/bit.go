package ws8610

// Bit is the result of classifying one pulse pair.
type Bit int

const (
	// BitZero is a long variable pulse.
	BitZero Bit = 0
	// BitOne is a short variable pulse.
	BitOne Bit = 1
	// BitInvalid is a pair matching neither encoding.
	BitInvalid Bit = -1
)

// IsValid indicates the pair encodes a bit.
func (b Bit) IsValid() bool {
	return b == BitZero || b == BitOne
}

// Timing defines the reference pulse widths in microseconds.
type Timing struct {
	Fixed     uint32
	Short     uint32
	Long      uint32
	Tolerance uint32
}

// DefaultTiming matches TX3-TH sensors.
var DefaultTiming = Timing{
	Fixed:     DefaultFixedWidth,
	Short:     DefaultShortWidth,
	Long:      DefaultLongWidth,
	Tolerance: DefaultTolerance,
}

// IsValid checks the references can be told apart.
func (t Timing) IsValid() bool {
	return t.Short < t.Long && t.Fixed > 0 && t.Tolerance > 0 &&
		2*t.Tolerance <= t.Long-t.Short
}

// DecodeBit classifies a variable pulse followed by a fixed pulse.
func (t Timing) DecodeBit(variable, fixed uint32) Bit {
	if absDiff(fixed, t.Fixed) > t.Tolerance {
		return BitInvalid
	}
	switch {
	case variable < t.Short:
		if t.Short-variable < t.Tolerance {
			return BitOne
		}
		return BitInvalid
	case variable > t.Long:
		if variable-t.Long < t.Tolerance {
			return BitZero
		}
		return BitInvalid
	}
	// Short <= variable <= Long
	if variable-t.Short < t.Tolerance {
		return BitOne
	}
	if t.Long-variable < t.Tolerance {
		return BitZero
	}
	return BitInvalid
}

// EncodeBit returns the pulse pair of a bit.
func (t Timing) EncodeBit(one bool) (variable, fixed uint32) {
	if one {
		return t.Short, t.Fixed
	}
	return t.Long, t.Fixed
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
