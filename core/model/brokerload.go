package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LoadStatus is the lifecycle state of a broker-posted load.
type LoadStatus string

const (
	LoadAvailable LoadStatus = "Available"
	LoadBooked    LoadStatus = "Booked"
	LoadInTransit LoadStatus = "In Transit"
	LoadDelivered LoadStatus = "Delivered"
	LoadCancelled LoadStatus = "Cancelled"
)

var validLoadStatuses = []LoadStatus{LoadAvailable, LoadBooked, LoadInTransit, LoadDelivered, LoadCancelled}

func (s LoadStatus) String() string { return string(s) }

// IsValid reports whether the value is a known LoadStatus.
func (s LoadStatus) IsValid() bool {
	for _, candidate := range validLoadStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLoadStatus converts raw input into a LoadStatus.
func ParseLoadStatus(value string) (LoadStatus, error) {
	for _, candidate := range validLoadStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid load status %q", value)
}

// EquipmentType is the trailer type a load requires or a truck offers.
type EquipmentType string

const (
	EquipmentDryVan   EquipmentType = "Dry Van"
	EquipmentReefer   EquipmentType = "Reefer"
	EquipmentFlatbed  EquipmentType = "Flatbed"
	EquipmentStepDeck EquipmentType = "Step Deck"
	EquipmentTanker   EquipmentType = "Tanker"
	EquipmentOther    EquipmentType = "Other"
)

// BrokerLoad is freight posted by a broker for carriers to accept.
type BrokerLoad struct {
	ID                 string          `json:"id"`
	ShipperID          string          `json:"shipper_id"`
	PostedByBrokerID   string          `json:"posted_by_broker_id"`
	PostedDate         time.Time       `json:"posted_date"`
	OriginAddress      string          `json:"origin_address"`
	DestinationAddress string          `json:"destination_address"`
	PickupDate         time.Time       `json:"pickup_date"`
	DeliveryDate       time.Time       `json:"delivery_date"`
	Commodity          string          `json:"commodity"`
	WeightLbs          float64         `json:"weight_lbs,omitempty"`
	Dimensions         string          `json:"dimensions,omitempty"`
	EquipmentType      EquipmentType   `json:"equipment_type"`
	OfferedRate        decimal.Decimal `json:"offered_rate"`
	Status             LoadStatus      `json:"status"`

	AssignedCarrierID  string     `json:"assigned_carrier_id,omitempty"`
	AssignedTruckID    string     `json:"assigned_truck_id,omitempty"`
	AssignedDriverID   string     `json:"assigned_driver_id,omitempty"`
	ConfirmationNumber string     `json:"confirmation_number,omitempty"`
	ScheduleEntryID    string     `json:"schedule_entry_id,omitempty"`
	BookedBy           string     `json:"booked_by,omitempty"`
	BookedAt           *time.Time `json:"booked_at,omitempty"`
	Notes              string     `json:"notes,omitempty"`
}

// BrokerLoadInput carries the caller-supplied fields of a broker load.
type BrokerLoadInput struct {
	ShipperID          string          `json:"shipper_id" validate:"required"`
	OriginAddress      string          `json:"origin_address" validate:"required"`
	DestinationAddress string          `json:"destination_address" validate:"required"`
	PickupDate         time.Time       `json:"pickup_date"`
	DeliveryDate       time.Time       `json:"delivery_date"`
	Commodity          string          `json:"commodity" validate:"required"`
	WeightLbs          float64         `json:"weight_lbs" validate:"gte=0"`
	Dimensions         string          `json:"dimensions"`
	EquipmentType      EquipmentType   `json:"equipment_type"`
	OfferedRate        decimal.Decimal `json:"offered_rate"`
	Notes              string          `json:"notes"`
}
