package events

import (
	"time"

	"github.com/kilianp07/fleetledger/core/model"
)

// CarrierVerified is published when a verification round finishes. Applied
// is false when the carrier disappeared while the lookup was in flight.
type CarrierVerified struct {
	CarrierID string
	Status    model.AuthorityStatus
	Applied   bool
	Time      time.Time
}
