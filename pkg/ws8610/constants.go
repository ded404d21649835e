package ws8610

// Pulse widths in microseconds.
const (
	DefaultFixedWidth = 1000 // fixed half of every bit
	DefaultShortWidth = 550  // variable half encoding 1
	DefaultLongWidth  = 1350 // variable half encoding 0
	DefaultTolerance  = 90

	// DefaultSyncThreshold is the minimum silence treated as a frame boundary.
	DefaultSyncThreshold = 5000
)

// Frame sizing.
const (
	BitCount   = 44
	WindowSize = BitCount * 2 // pulses captured for one frame
	FrameSize  = 6            // bytes, the last one holds 4 bits right-aligned

	StartMarker = 0x0A
)

// Ring capacities.
const (
	DefaultPacketCapacity  = 20
	DefaultMeasureCapacity = 10
)
