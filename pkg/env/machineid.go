package env

import (
	"github.com/denisbrodbeck/machineid"
)

const appID = "dmaio"

// MachineID retrieves an ID identifying the machine, hashed with the
// application ID so the raw machine ID isn't published. It returns ""
// when the platform has no machine ID.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		return ""
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}
