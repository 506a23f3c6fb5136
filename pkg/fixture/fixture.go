// Package fixture loads seed data from YAML or JSON and replays it through
// the ledger commands, so every invariant applies to seeded state. Entities
// reference each other by name.
package fixture

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Fixture is a complete seed.
type Fixture struct {
	// Now pins the ledger clock while replaying.
	Now      *time.Time   `json:"now" yaml:"now"`
	Carriers []Carrier    `json:"carriers" yaml:"carriers"`
	Drivers  []Driver     `json:"drivers" yaml:"drivers"`
	Trucks   []Truck      `json:"trucks" yaml:"trucks"`
	Shippers []Shipper    `json:"shippers" yaml:"shippers"`
	Schedule []Entry      `json:"schedule" yaml:"schedule"`
	Loads    []BrokerLoad `json:"loads" yaml:"loads"`
	Invoices []Invoice    `json:"invoices" yaml:"invoices"`
}

type Carrier struct {
	Name      string `json:"name" yaml:"name"`
	LegalName string `json:"legal_name" yaml:"legal_name"`
	Email     string `json:"email" yaml:"email"`
	Phone     string `json:"phone" yaml:"phone"`
	MCNumber  string `json:"mc_number" yaml:"mc_number"`
	DOTNumber string `json:"dot_number" yaml:"dot_number"`
}

type Driver struct {
	Name          string `json:"name" yaml:"name"`
	Phone         string `json:"phone" yaml:"phone"`
	LicenseNumber string `json:"license_number" yaml:"license_number"`
}

type Truck struct {
	Name         string `json:"name" yaml:"name"`
	LicensePlate string `json:"license_plate" yaml:"license_plate"`
	Model        string `json:"model" yaml:"model"`
	Year         int    `json:"year" yaml:"year"`
	Carrier      string `json:"carrier" yaml:"carrier"`
	Driver       string `json:"driver" yaml:"driver"`
}

type Shipper struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
}

// Entry is a directly created schedule entry.
type Entry struct {
	Truck       string    `json:"truck" yaml:"truck"`
	Driver      string    `json:"driver" yaml:"driver"`
	Title       string    `json:"title" yaml:"title"`
	Type        string    `json:"type" yaml:"type"`
	Start       time.Time `json:"start" yaml:"start"`
	End         time.Time `json:"end" yaml:"end"`
	Origin      string    `json:"origin" yaml:"origin"`
	Destination string    `json:"destination" yaml:"destination"`
	LoadValue   string    `json:"load_value" yaml:"load_value"`
	Partial     bool      `json:"partial" yaml:"partial"`
	Team        bool      `json:"team" yaml:"team"`
	Complete    bool      `json:"complete" yaml:"complete"`
}

// BrokerLoad is a broker-posted load, optionally accepted and completed.
type BrokerLoad struct {
	Shipper       string    `json:"shipper" yaml:"shipper"`
	Origin        string    `json:"origin" yaml:"origin"`
	Destination   string    `json:"destination" yaml:"destination"`
	Pickup        time.Time `json:"pickup" yaml:"pickup"`
	Delivery      time.Time `json:"delivery" yaml:"delivery"`
	Commodity     string    `json:"commodity" yaml:"commodity"`
	EquipmentType string    `json:"equipment_type" yaml:"equipment_type"`
	Rate          string    `json:"rate" yaml:"rate"`
	Notes         string    `json:"notes" yaml:"notes"`
	Accept        *Accept   `json:"accept" yaml:"accept"`
	Complete      bool      `json:"complete" yaml:"complete"`
}

type Accept struct {
	Carrier string `json:"carrier" yaml:"carrier"`
	Truck   string `json:"truck" yaml:"truck"`
	Driver  string `json:"driver" yaml:"driver"`
}

// Invoice bills every pending fee of a carrier and optionally moves the
// invoice to Status.
type Invoice struct {
	Carrier string `json:"carrier" yaml:"carrier"`
	Status  string `json:"status" yaml:"status"`
}

// Load reads a fixture from a .yaml, .yml or .json file.
func Load(path string) (Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fixture{}, err
	}
	defer f.Close()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return Decode(f, ext)
}

// Decode reads a fixture in the given format.
func Decode(r io.Reader, format string) (Fixture, error) {
	var fx Fixture
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&fx); err != nil {
			return fx, fmt.Errorf("decode fixture: %w", err)
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&fx); err != nil {
			return fx, fmt.Errorf("decode fixture: %w", err)
		}
	default:
		return fx, fmt.Errorf("unsupported fixture format: %s", format)
	}
	return fx, nil
}
