package ws8610

// Stats are counters since the receiver was enabled.
type Stats struct {
	Edges         uint64 `json:"edges"`
	Syncs         uint64 `json:"syncs"`
	RejectedSyncs uint64 `json:"rejected_syncs"`

	Packets           uint64 `json:"packets"`
	PacketOverruns    uint64 `json:"packet_overruns"`
	TimingErrors      uint64 `json:"timing_errors"`
	StartMarkerErrors uint64 `json:"start_marker_errors"`
	ParityErrors      uint64 `json:"parity_errors"`
	ChecksumErrors    uint64 `json:"checksum_errors"`

	Measures        uint64 `json:"measures"`
	MeasureOverruns uint64 `json:"measure_overruns"`
	Delivered       uint64 `json:"delivered"`
}

// Rejected returns the number of packets failing to decode.
func (s Stats) Rejected() uint64 {
	return s.TimingErrors + s.StartMarkerErrors + s.ParityErrors + s.ChecksumErrors
}
