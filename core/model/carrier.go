package model

import (
	"fmt"
	"time"
)

// AuthorityStatus is the operating-authority state reported by the FMCSA
// verification collaborator.
type AuthorityStatus string

const (
	AuthorityNotVerified        AuthorityStatus = "Not Verified"
	AuthorityPending            AuthorityStatus = "Pending Verification"
	AuthorityVerifiedActive     AuthorityStatus = "Verified Active"
	AuthorityVerifiedInactive   AuthorityStatus = "Verified Inactive"
	AuthorityVerificationFailed AuthorityStatus = "Verification Failed"
)

var validAuthorityStatuses = []AuthorityStatus{
	AuthorityNotVerified,
	AuthorityPending,
	AuthorityVerifiedActive,
	AuthorityVerifiedInactive,
	AuthorityVerificationFailed,
}

func (a AuthorityStatus) String() string { return string(a) }

// IsValid reports whether the value is a known AuthorityStatus.
func (a AuthorityStatus) IsValid() bool {
	for _, candidate := range validAuthorityStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuthorityStatus converts raw input into an AuthorityStatus.
func ParseAuthorityStatus(value string) (AuthorityStatus, error) {
	for _, candidate := range validAuthorityStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid authority status %q", value)
}

// Carrier is a trucking company that owns trucks and is billed dispatch fees.
//
// IsBookable is derived from the carrier's invoices and is only ever written
// by the bookability policy.
type Carrier struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LegalName   string `json:"legal_name,omitempty"`
	ContactName string `json:"contact_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`

	MCNumber              string     `json:"mc_number,omitempty"`
	DOTNumber             string     `json:"dot_number,omitempty"`
	InsuranceProvider     string     `json:"insurance_provider,omitempty"`
	InsurancePolicyNumber string     `json:"insurance_policy_number,omitempty"`
	InsuranceExpiry       *time.Time `json:"insurance_expiry,omitempty"`
	TaxID                 string     `json:"tax_id,omitempty"`

	AuthorityStatus AuthorityStatus `json:"fmcsa_authority_status"`
	LastChecked     *time.Time      `json:"fmcsa_last_checked,omitempty"`

	IsBookable bool      `json:"is_bookable"`
	CreatedAt  time.Time `json:"created_at"`
}

// CarrierInput carries the caller-supplied fields of a carrier. Bookability
// and authority fields are not part of it.
type CarrierInput struct {
	Name        string `json:"name" validate:"required"`
	LegalName   string `json:"legal_name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`

	MCNumber              string     `json:"mc_number"`
	DOTNumber             string     `json:"dot_number"`
	InsuranceProvider     string     `json:"insurance_provider"`
	InsurancePolicyNumber string     `json:"insurance_policy_number"`
	InsuranceExpiry       *time.Time `json:"insurance_expiry"`
	TaxID                 string     `json:"tax_id"`
}

// CarrierDetails are optional fields reported by the verification
// collaborator. Empty values leave the carrier untouched.
type CarrierDetails struct {
	LegalName string `json:"legal_name,omitempty"`
	DOTNumber string `json:"dot_number,omitempty"`
	MCNumber  string `json:"mc_number,omitempty"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Merge copies the non-empty detail fields onto c.
func (d CarrierDetails) Merge(c *Carrier) {
	if d.LegalName != "" {
		c.LegalName = d.LegalName
	}
	if d.DOTNumber != "" {
		c.DOTNumber = d.DOTNumber
	}
	if d.MCNumber != "" {
		c.MCNumber = d.MCNumber
	}
	if d.Address != "" {
		c.Address = d.Address
	}
	if d.Phone != "" {
		c.Phone = d.Phone
	}
}
