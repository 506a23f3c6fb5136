package model

// Driver is referenced by trucks and schedule entries but owned by neither.
type Driver struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	LicenseNumber string `json:"license_number"`
}

// DriverInput carries the caller-supplied fields of a driver.
type DriverInput struct {
	Name          string `json:"name" validate:"required"`
	Phone         string `json:"phone"`
	Email         string `json:"email" validate:"omitempty,email"`
	LicenseNumber string `json:"license_number" validate:"required"`
}
