package model

import (
	"fmt"
	"time"
)

// MaintenanceStatus reports whether a truck can be put on the road.
type MaintenanceStatus string

const (
	MaintenanceGood         MaintenanceStatus = "Good"
	MaintenanceNeedsService MaintenanceStatus = "Needs Service"
	MaintenanceInService    MaintenanceStatus = "In Service"
)

var validMaintenanceStatuses = []MaintenanceStatus{
	MaintenanceGood,
	MaintenanceNeedsService,
	MaintenanceInService,
}

func (m MaintenanceStatus) String() string { return string(m) }

// IsValid reports whether the value is a known MaintenanceStatus.
func (m MaintenanceStatus) IsValid() bool {
	for _, candidate := range validMaintenanceStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMaintenanceStatus converts raw input into a MaintenanceStatus.
func ParseMaintenanceStatus(value string) (MaintenanceStatus, error) {
	for _, candidate := range validMaintenanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid maintenance status %q", value)
}

// Truck is a power unit owned by exactly one carrier.
type Truck struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	LicensePlate      string            `json:"license_plate"`
	Model             string            `json:"model"`
	Year              int               `json:"year"`
	CarrierID         string            `json:"carrier_id"`
	DriverID          string            `json:"driver_id,omitempty"`
	MaintenanceStatus MaintenanceStatus `json:"maintenance_status"`

	RegistrationDue *time.Time `json:"registration_due,omitempty"`
	InspectionDue   *time.Time `json:"inspection_due,omitempty"`
	InsuranceDue    *time.Time `json:"insurance_due,omitempty"`
}

// TruckInput carries the caller-supplied fields of a truck.
type TruckInput struct {
	Name              string            `json:"name" validate:"required"`
	LicensePlate      string            `json:"license_plate" validate:"required"`
	Model             string            `json:"model"`
	Year              int               `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	CarrierID         string            `json:"carrier_id" validate:"required"`
	DriverID          string            `json:"driver_id"`
	MaintenanceStatus MaintenanceStatus `json:"maintenance_status"`

	RegistrationDue *time.Time `json:"registration_due"`
	InspectionDue   *time.Time `json:"inspection_due"`
	InsuranceDue    *time.Time `json:"insurance_due"`
}
