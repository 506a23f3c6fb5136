package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleType classifies a schedule entry.
type ScheduleType string

const (
	ScheduleDelivery    ScheduleType = "Delivery"
	SchedulePickup      ScheduleType = "Pickup"
	ScheduleMaintenance ScheduleType = "Maintenance"
	ScheduleTimeOff     ScheduleType = "Time Off"
	ScheduleOther       ScheduleType = "Other"
)

var validScheduleTypes = []ScheduleType{
	ScheduleDelivery,
	SchedulePickup,
	ScheduleMaintenance,
	ScheduleTimeOff,
	ScheduleOther,
}

func (s ScheduleType) String() string { return string(s) }

// IsValid reports whether the value is a known ScheduleType.
func (s ScheduleType) IsValid() bool {
	for _, candidate := range validScheduleTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseScheduleType converts raw input into a ScheduleType.
func ParseScheduleType(value string) (ScheduleType, error) {
	for _, candidate := range validScheduleTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid schedule type %q", value)
}

// ScheduleEntry is a block of time a truck is committed to.
type ScheduleEntry struct {
	ID            string           `json:"id"`
	TruckID       string           `json:"truck_id"`
	DriverID      string           `json:"driver_id,omitempty"`
	Title         string           `json:"title"`
	Start         time.Time        `json:"start"`
	End           time.Time        `json:"end"`
	Origin        string           `json:"origin,omitempty"`
	Destination   string           `json:"destination,omitempty"`
	LoadValue     *decimal.Decimal `json:"load_value,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	Type          ScheduleType     `json:"schedule_type"`
	IsPartialLoad bool             `json:"is_partial_load"`
	IsTeamDriven  bool             `json:"is_team_driven"`
	BrokerLoadID  string           `json:"broker_load_id,omitempty"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
	CreatedBy     string           `json:"created_by,omitempty"`
}

// Duration returns End - Start.
func (e ScheduleEntry) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Overlaps reports whether the half-open intervals [Start, End) intersect.
func (e ScheduleEntry) Overlaps(start, end time.Time) bool {
	return start.Before(e.End) && end.After(e.Start)
}

// HasLoadValue reports whether a positive load value is recorded.
func (e ScheduleEntry) HasLoadValue() bool {
	return e.LoadValue != nil && e.LoadValue.IsPositive()
}

// ScheduleDraft is the caller-supplied content of a schedule entry. The
// scheduling engine turns drafts into entries.
type ScheduleDraft struct {
	TruckID       string           `json:"truck_id" validate:"required"`
	DriverID      string           `json:"driver_id"`
	Title         string           `json:"title" validate:"required"`
	Start         time.Time        `json:"start"`
	End           time.Time        `json:"end"`
	Origin        string           `json:"origin"`
	Destination   string           `json:"destination"`
	LoadValue     *decimal.Decimal `json:"load_value"`
	Notes         string           `json:"notes"`
	Type          ScheduleType     `json:"schedule_type"`
	IsPartialLoad bool             `json:"is_partial_load"`
	IsTeamDriven  bool             `json:"is_team_driven"`
	BrokerLoadID  string           `json:"broker_load_id"`
}

// Apply copies the draft onto e, keeping e's identity and lifecycle fields.
func (d ScheduleDraft) Apply(e *ScheduleEntry) {
	e.TruckID = d.TruckID
	e.DriverID = d.DriverID
	e.Title = d.Title
	e.Start = d.Start
	e.End = d.End
	e.Origin = d.Origin
	e.Destination = d.Destination
	e.LoadValue = nil
	if d.LoadValue != nil {
		e.LoadValue = MoneyPtr(RoundCurrency(*d.LoadValue))
	}
	e.Notes = d.Notes
	e.Type = d.Type
	if e.Type == "" {
		e.Type = ScheduleDelivery
	}
	e.IsPartialLoad = d.IsPartialLoad
	e.IsTeamDriven = d.IsTeamDriven
	e.BrokerLoadID = d.BrokerLoadID
}

// DraftOf returns a draft describing e, useful for partial revisions.
func DraftOf(e ScheduleEntry) ScheduleDraft {
	return ScheduleDraft{
		TruckID:       e.TruckID,
		DriverID:      e.DriverID,
		Title:         e.Title,
		Start:         e.Start,
		End:           e.End,
		Origin:        e.Origin,
		Destination:   e.Destination,
		LoadValue:     e.LoadValue,
		Notes:         e.Notes,
		Type:          e.Type,
		IsPartialLoad: e.IsPartialLoad,
		IsTeamDriven:  e.IsTeamDriven,
		BrokerLoadID:  e.BrokerLoadID,
	}
}
