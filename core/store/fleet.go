package store

import (
	"github.com/kilianp07/fleetledger/core/model"
)

// Truck returns the truck with the given id.
func (tx *ReadTx) Truck(id string) (model.Truck, error) {
	t, ok := tx.st.trucks.get(id)
	if !ok {
		return model.Truck{}, notFound("truck", id)
	}
	return t, nil
}

// Trucks lists all trucks in creation order.
func (tx *ReadTx) Trucks() []model.Truck {
	return tx.st.trucks.list(nil)
}

// TrucksByCarrier lists the trucks owned by a carrier.
func (tx *ReadTx) TrucksByCarrier(carrierID string) []model.Truck {
	return tx.st.trucks.list(func(t model.Truck) bool { return t.CarrierID == carrierID })
}

func (tx *ReadTx) Driver(id string) (model.Driver, error) {
	d, ok := tx.st.drivers.get(id)
	if !ok {
		return model.Driver{}, notFound("driver", id)
	}
	return d, nil
}

func (tx *ReadTx) Drivers() []model.Driver {
	return tx.st.drivers.list(nil)
}

func (tx *ReadTx) Carrier(id string) (model.Carrier, error) {
	c, ok := tx.st.carriers.get(id)
	if !ok {
		return model.Carrier{}, notFound("carrier", id)
	}
	return c, nil
}

func (tx *ReadTx) Carriers() []model.Carrier {
	return tx.st.carriers.list(nil)
}

func (tx *Tx) checkTruckRefs(in model.TruckInput) error {
	if _, err := tx.Carrier(in.CarrierID); err != nil {
		return err
	}
	if in.DriverID != "" {
		if _, err := tx.Driver(in.DriverID); err != nil {
			return err
		}
	}
	if in.MaintenanceStatus != "" && !in.MaintenanceStatus.IsValid() {
		return Invalid("maintenance_status", "is invalid")
	}
	return nil
}

func applyTruckInput(t *model.Truck, in model.TruckInput) {
	t.Name = in.Name
	t.LicensePlate = in.LicensePlate
	t.Model = in.Model
	t.Year = in.Year
	t.CarrierID = in.CarrierID
	t.DriverID = in.DriverID
	t.MaintenanceStatus = in.MaintenanceStatus
	if t.MaintenanceStatus == "" {
		t.MaintenanceStatus = model.MaintenanceGood
	}
	t.RegistrationDue = in.RegistrationDue
	t.InspectionDue = in.InspectionDue
	t.InsuranceDue = in.InsuranceDue
}

// CreateTruck stores a new truck owned by an existing carrier.
func (tx *Tx) CreateTruck(in model.TruckInput) (model.Truck, error) {
	if err := Validate(in); err != nil {
		return model.Truck{}, err
	}
	if err := tx.checkTruckRefs(in); err != nil {
		return model.Truck{}, err
	}
	t := model.Truck{ID: tx.newID()}
	applyTruckInput(&t, in)
	put(tx, tx.st.trucks, t.ID, t)
	return t, nil
}

// UpdateTruck replaces the caller-supplied fields of a truck.
func (tx *Tx) UpdateTruck(id string, in model.TruckInput) (model.Truck, error) {
	t, err := tx.Truck(id)
	if err != nil {
		return model.Truck{}, err
	}
	if err := Validate(in); err != nil {
		return model.Truck{}, err
	}
	if err := tx.checkTruckRefs(in); err != nil {
		return model.Truck{}, err
	}
	applyTruckInput(&t, in)
	put(tx, tx.st.trucks, t.ID, t)
	return t, nil
}

func (tx *Tx) CreateDriver(in model.DriverInput) (model.Driver, error) {
	if err := Validate(in); err != nil {
		return model.Driver{}, err
	}
	d := model.Driver{
		ID:            tx.newID(),
		Name:          in.Name,
		Phone:         in.Phone,
		Email:         in.Email,
		LicenseNumber: in.LicenseNumber,
	}
	put(tx, tx.st.drivers, d.ID, d)
	return d, nil
}

func (tx *Tx) UpdateDriver(id string, in model.DriverInput) (model.Driver, error) {
	d, err := tx.Driver(id)
	if err != nil {
		return model.Driver{}, err
	}
	if err := Validate(in); err != nil {
		return model.Driver{}, err
	}
	d.Name = in.Name
	d.Phone = in.Phone
	d.Email = in.Email
	d.LicenseNumber = in.LicenseNumber
	put(tx, tx.st.drivers, d.ID, d)
	return d, nil
}

func applyCarrierInput(c *model.Carrier, in model.CarrierInput) {
	c.Name = in.Name
	c.LegalName = in.LegalName
	c.ContactName = in.ContactName
	c.Email = in.Email
	c.Phone = in.Phone
	c.Address = in.Address
	c.MCNumber = in.MCNumber
	c.DOTNumber = in.DOTNumber
	c.InsuranceProvider = in.InsuranceProvider
	c.InsurancePolicyNumber = in.InsurancePolicyNumber
	c.InsuranceExpiry = in.InsuranceExpiry
	c.TaxID = in.TaxID
}

// CreateCarrier stores a new carrier. New carriers start bookable and
// unverified.
func (tx *Tx) CreateCarrier(in model.CarrierInput) (model.Carrier, error) {
	if err := Validate(in); err != nil {
		return model.Carrier{}, err
	}
	c := model.Carrier{
		ID:              tx.newID(),
		AuthorityStatus: model.AuthorityNotVerified,
		IsBookable:      true,
		CreatedAt:       tx.now(),
	}
	applyCarrierInput(&c, in)
	put(tx, tx.st.carriers, c.ID, c)
	return c, nil
}

// UpdateCarrier replaces the caller-supplied fields of a carrier. Derived
// fields (bookability, authority status) are preserved.
func (tx *Tx) UpdateCarrier(id string, in model.CarrierInput) (model.Carrier, error) {
	c, err := tx.Carrier(id)
	if err != nil {
		return model.Carrier{}, err
	}
	if err := Validate(in); err != nil {
		return model.Carrier{}, err
	}
	applyCarrierInput(&c, in)
	put(tx, tx.st.carriers, c.ID, c)
	return c, nil
}

// PutCarrier overwrites a stored carrier. It is meant for the policies that
// own derived carrier fields.
func (tx *Tx) PutCarrier(c model.Carrier) error {
	if _, err := tx.Carrier(c.ID); err != nil {
		return err
	}
	put(tx, tx.st.carriers, c.ID, c)
	return nil
}
