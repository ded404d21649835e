// Package msgs defines the wire messages published by a station.
package msgs

// Messages are protobuf encoded. Measures and stats use the receiver clock
// (milliseconds since boot), so every message carries the boot ID of the
// station to tell restarts apart.
//
// Producer: ws8610d
// Consumer: monitors, dashboards
