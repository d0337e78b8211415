package env

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// appID salts the machine ID so the raw ID isn't exposed on the wire.
const appID = "hardsync"

// MachineID retrieves an ID unique to this machine and application.
// It falls back to fallback when the machine ID isn't readable.
func MachineID(fallback string) string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return fallback
	}
	if len(id) > 16 {
		id = id[:16]
	}
	return id
}
