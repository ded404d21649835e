package ws8610

import "fmt"

// Kind is the measured quantity.
type Kind int

// Kinds
const (
	Temperature Kind = iota
	Humidity
)

// MaxSensorAddress is the largest 7-bit address.
const MaxSensorAddress = 0x7F

// temperatureOffset shifts encoded temperatures so negative values fit.
const temperatureOffset = 50

// humidityTypeNibble is the type nibble sent by TX3-TH humidity frames.
const humidityTypeNibble = 0xE

func (k Kind) String() string {
	switch k {
	case Temperature:
		return "temperature"
	case Humidity:
		return "humidity"
	default:
		return "unknown"
	}
}

// Unit returns the unit symbol.
func (k Kind) Unit() string {
	if k == Humidity {
		return "%"
	}
	return "°C"
}

func (k Kind) typeNibble() byte {
	if k == Humidity {
		return humidityTypeNibble
	}
	return 0
}

// Measure is a validated sensor reading.
type Measure struct {
	// Timestamp is the capture time in milliseconds since boot.
	Timestamp     uint32
	SensorAddress uint8
	Kind          Kind
	Units         int
	// Decimals is the tenths digit.
	Decimals uint8
}

// Value combines units and decimals. The temperature offset applies to the
// whole encoded number, so units -45 with decimals 2 is -44.8.
func (m Measure) Value() float64 {
	return float64(m.Units) + float64(m.Decimals)/10
}

// String implements fmt.Stringer.
func (m Measure) String() string {
	return fmt.Sprintf("[%d] sensor %d %s %.1f%s", m.Timestamp, m.SensorAddress, m.Kind, m.Value(), m.Kind.Unit())
}
