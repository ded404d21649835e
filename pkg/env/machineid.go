package env

import (
	"github.com/denisbrodbeck/machineid"
)

// stationIDLen is the length of station IDs derived from the machine ID.
const stationIDLen = 12

// MachineStation derives a station ID from the machine, which is stable
// across restarts. The ID is hashed so the raw machine ID isn't published.
func MachineStation() string {
	id, err := machineid.ProtectedID("ws8610")
	if err != nil {
		return "ws8610"
	}
	if len(id) > stationIDLen {
		id = id[:stationIDLen]
	}
	return id
}
