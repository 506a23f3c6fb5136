package model

import "time"

// Shipper owns the freight behind broker loads.
type Shipper struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContactName string `json:"contact_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
}

type ShipperInput struct {
	Name        string `json:"name" validate:"required"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

// LoadDocument is a file attached to a broker load (rate confirmation, BOL, POD).
type LoadDocument struct {
	ID           string    `json:"id"`
	BrokerLoadID string    `json:"broker_load_id"`
	Type         string    `json:"type"`
	FileName     string    `json:"file_name"`
	URL          string    `json:"url,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

type LoadDocumentInput struct {
	BrokerLoadID string `json:"broker_load_id" validate:"required"`
	Type         string `json:"type" validate:"required"`
	FileName     string `json:"file_name" validate:"required"`
	URL          string `json:"url" validate:"omitempty,url"`
}

// CarrierDocument is a compliance file attached to a carrier (W-9, COI, authority letter).
type CarrierDocument struct {
	ID         string     `json:"id"`
	CarrierID  string     `json:"carrier_id"`
	Type       string     `json:"type"`
	FileName   string     `json:"file_name"`
	URL        string     `json:"url,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	UploadedAt time.Time  `json:"uploaded_at"`
}

type CarrierDocumentInput struct {
	CarrierID string     `json:"carrier_id" validate:"required"`
	Type      string     `json:"type" validate:"required"`
	FileName  string     `json:"file_name" validate:"required"`
	URL       string     `json:"url" validate:"omitempty,url"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// AvailableEquipmentPost advertises a carrier's truck capacity.
type AvailableEquipmentPost struct {
	ID            string        `json:"id"`
	CarrierID     string        `json:"carrier_id"`
	TruckID       string        `json:"truck_id,omitempty"`
	EquipmentType EquipmentType `json:"equipment_type"`
	Location      string        `json:"location"`
	AvailableFrom time.Time     `json:"available_from"`
	AvailableTo   time.Time     `json:"available_to"`
	Notes         string        `json:"notes,omitempty"`
	PostedAt      time.Time     `json:"posted_at"`
}

type EquipmentPostInput struct {
	CarrierID     string        `json:"carrier_id" validate:"required"`
	TruckID       string        `json:"truck_id"`
	EquipmentType EquipmentType `json:"equipment_type" validate:"required"`
	Location      string        `json:"location" validate:"required"`
	AvailableFrom time.Time     `json:"available_from"`
	AvailableTo   time.Time     `json:"available_to"`
	Notes         string        `json:"notes"`
}
