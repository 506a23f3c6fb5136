package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoadBooked is published after a broker load and its schedule entry are
// stored.
type LoadBooked struct {
	LoadID       string
	CarrierID    string
	TruckID      string
	EntryID      string
	Confirmation string
	Rate         decimal.Decimal
	Time         time.Time
}

// ScheduleRejected is published when a proposed or revised entry breaks a
// scheduling rule. Source is "schedule" or "load_accept".
type ScheduleRejected struct {
	TruckID string
	Rules   []string
	Source  string
	Time    time.Time
}
