package msgs

import (
	"fmt"

	"github.com/golang/protobuf/proto"
	"github.com/google/uuid"

	"github.com/robotalks/ws8610/pkg/ws8610"
)

// Measure is a published sensor reading.
type Measure struct {
	Station   string  `protobuf:"bytes,1,opt,name=station,proto3" json:"station,omitempty"`
	BootID    string  `protobuf:"bytes,2,opt,name=boot_id,json=bootId,proto3" json:"boot_id,omitempty"`
	Timestamp uint32  `protobuf:"varint,3,opt,name=timestamp,proto3" json:"timestamp"`
	Address   uint32  `protobuf:"varint,4,opt,name=address,proto3" json:"address"`
	Kind      string  `protobuf:"bytes,5,opt,name=kind,proto3" json:"kind"`
	Units     int32   `protobuf:"zigzag32,6,opt,name=units,proto3" json:"units"`
	Decimals  uint32  `protobuf:"varint,7,opt,name=decimals,proto3" json:"decimals"`
	Value     float64 `protobuf:"fixed64,8,opt,name=value,proto3" json:"value"`
	Unit      string  `protobuf:"bytes,9,opt,name=unit,proto3" json:"unit,omitempty"`
}

// NewMeasure converts a decoded measure.
func NewMeasure(station, bootID string, m ws8610.Measure) *Measure {
	return &Measure{
		Station:   station,
		BootID:    bootID,
		Timestamp: m.Timestamp,
		Address:   uint32(m.SensorAddress),
		Kind:      m.Kind.String(),
		Units:     int32(m.Units),
		Decimals:  uint32(m.Decimals),
		Value:     m.Value(),
		Unit:      m.Kind.Unit(),
	}
}

// ProtoMessage implements proto.Message.
func (m *Measure) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Measure) Reset() { *m = Measure{} }

// String implements proto.Message.
func (m *Measure) String() string { return proto.CompactTextString(m) }

// ToMeasure converts back to the receiver representation.
func (m *Measure) ToMeasure() (ws8610.Measure, error) {
	kind, err := ParseKind(m.Kind)
	if err != nil {
		return ws8610.Measure{}, err
	}
	if m.Address > ws8610.MaxSensorAddress || m.Decimals > 9 {
		return ws8610.Measure{}, fmt.Errorf("%w: address %d decimals %d", ws8610.ErrInvalidMeasure, m.Address, m.Decimals)
	}
	return ws8610.Measure{
		Timestamp:     m.Timestamp,
		SensorAddress: uint8(m.Address),
		Kind:          kind,
		Units:         int(m.Units),
		Decimals:      uint8(m.Decimals),
	}, nil
}

// ParseKind parses the name of a Kind.
func ParseKind(name string) (ws8610.Kind, error) {
	for _, k := range []ws8610.Kind{ws8610.Temperature, ws8610.Humidity} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown kind %q", name)
}

// Stats is the published snapshot of receiver counters.
type Stats struct {
	Station           string `protobuf:"bytes,1,opt,name=station,proto3" json:"station,omitempty"`
	BootID            string `protobuf:"bytes,2,opt,name=boot_id,json=bootId,proto3" json:"boot_id,omitempty"`
	Time              int64  `protobuf:"varint,3,opt,name=time,proto3" json:"time"`
	Edges             uint64 `protobuf:"varint,4,opt,name=edges,proto3" json:"edges"`
	Syncs             uint64 `protobuf:"varint,5,opt,name=syncs,proto3" json:"syncs"`
	RejectedSyncs     uint64 `protobuf:"varint,6,opt,name=rejected_syncs,json=rejectedSyncs,proto3" json:"rejected_syncs"`
	Packets           uint64 `protobuf:"varint,7,opt,name=packets,proto3" json:"packets"`
	PacketOverruns    uint64 `protobuf:"varint,8,opt,name=packet_overruns,json=packetOverruns,proto3" json:"packet_overruns"`
	TimingErrors      uint64 `protobuf:"varint,9,opt,name=timing_errors,json=timingErrors,proto3" json:"timing_errors"`
	StartMarkerErrors uint64 `protobuf:"varint,10,opt,name=start_marker_errors,json=startMarkerErrors,proto3" json:"start_marker_errors"`
	ParityErrors      uint64 `protobuf:"varint,11,opt,name=parity_errors,json=parityErrors,proto3" json:"parity_errors"`
	ChecksumErrors    uint64 `protobuf:"varint,12,opt,name=checksum_errors,json=checksumErrors,proto3" json:"checksum_errors"`
	Measures          uint64 `protobuf:"varint,13,opt,name=measures,proto3" json:"measures"`
	MeasureOverruns   uint64 `protobuf:"varint,14,opt,name=measure_overruns,json=measureOverruns,proto3" json:"measure_overruns"`
	Delivered         uint64 `protobuf:"varint,15,opt,name=delivered,proto3" json:"delivered"`
}

// NewStats converts receiver counters sampled at unix time t (milliseconds).
func NewStats(station, bootID string, t int64, s ws8610.Stats) *Stats {
	return &Stats{
		Station:           station,
		BootID:            bootID,
		Time:              t,
		Edges:             s.Edges,
		Syncs:             s.Syncs,
		RejectedSyncs:     s.RejectedSyncs,
		Packets:           s.Packets,
		PacketOverruns:    s.PacketOverruns,
		TimingErrors:      s.TimingErrors,
		StartMarkerErrors: s.StartMarkerErrors,
		ParityErrors:      s.ParityErrors,
		ChecksumErrors:    s.ChecksumErrors,
		Measures:          s.Measures,
		MeasureOverruns:   s.MeasureOverruns,
		Delivered:         s.Delivered,
	}
}

// ProtoMessage implements proto.Message.
func (m *Stats) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Stats) Reset() { *m = Stats{} }

// String implements proto.Message.
func (m *Stats) String() string { return proto.CompactTextString(m) }

// StationInfo describes a station. It's published retained with Online set,
// and replaced by the Offline copy when the station disconnects.
type StationInfo struct {
	Station   string `protobuf:"bytes,1,opt,name=station,proto3" json:"station"`
	BootID    string `protobuf:"bytes,2,opt,name=boot_id,json=bootId,proto3" json:"boot_id"`
	Source    string `protobuf:"bytes,3,opt,name=source,proto3" json:"source,omitempty"`
	StartedAt int64  `protobuf:"varint,4,opt,name=started_at,json=startedAt,proto3" json:"started_at"`
	Fixed     uint32 `protobuf:"varint,5,opt,name=fixed,proto3" json:"fixed"`
	Short     uint32 `protobuf:"varint,6,opt,name=short,proto3" json:"short"`
	Long      uint32 `protobuf:"varint,7,opt,name=long,proto3" json:"long"`
	Tolerance uint32 `protobuf:"varint,8,opt,name=tolerance,proto3" json:"tolerance"`
	Online    bool   `protobuf:"varint,9,opt,name=online,proto3" json:"online"`
}

// NewStationInfo creates a StationInfo with a fresh boot ID.
func NewStationInfo(station, source string, startedAt int64, timing ws8610.Timing) *StationInfo {
	return &StationInfo{
		Station:   station,
		BootID:    uuid.New().String(),
		Source:    source,
		StartedAt: startedAt,
		Fixed:     timing.Fixed,
		Short:     timing.Short,
		Long:      timing.Long,
		Tolerance: timing.Tolerance,
		Online:    true,
	}
}

// Offline returns a copy marked offline.
func (m *StationInfo) Offline() *StationInfo {
	info := *m
	info.Online = false
	return &info
}

// ProtoMessage implements proto.Message.
func (m *StationInfo) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StationInfo) Reset() { *m = StationInfo{} }

// String implements proto.Message.
func (m *StationInfo) String() string { return proto.CompactTextString(m) }

// Encode serializes a message.
func Encode(msg proto.Message) ([]byte, error) {
	return proto.Marshal(msg)
}

// Decode parses data into msg.
func Decode(data []byte, msg proto.Message) error {
	return proto.Unmarshal(data, msg)
}
