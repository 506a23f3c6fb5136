package fixture

import (
	"errors"
	"fmt"

	"github.com/kilianp07/fleetledger/core/brokerload"
	"github.com/kilianp07/fleetledger/core/ledger"
	"github.com/kilianp07/fleetledger/core/model"
	pkgerrors "github.com/kilianp07/fleetledger/pkg/errors"
)

// ErrUnknownReference is returned when a fixture names an entity it does
// not define.
var ErrUnknownReference = errors.New("unknown fixture reference")

// Rejection is a step the ledger refused. Business-rule rejections do not
// stop a replay.
type Rejection struct {
	Step string `json:"step"`
	Code string `json:"code"`
	Err  string `json:"error"`
}

// Result maps fixture names to the ids the ledger assigned.
type Result struct {
	Carriers   map[string]string `json:"carriers"`
	Drivers    map[string]string `json:"drivers"`
	Trucks     map[string]string `json:"trucks"`
	Shippers   map[string]string `json:"shippers"`
	Entries    []string          `json:"schedule_entries"`
	Loads      []string          `json:"loads"`
	Invoices   []string          `json:"invoices"`
	Rejections []Rejection       `json:"rejections,omitempty"`
}

type replayer struct {
	l   *ledger.Ledger
	s   model.Session
	res Result
}

// Replay issues the fixture's commands in order: carriers, drivers, trucks,
// shippers, schedule entries, loads, invoices.
func Replay(l *ledger.Ledger, s model.Session, fx Fixture) (Result, error) {
	r := &replayer{l: l, s: s, res: Result{
		Carriers: map[string]string{},
		Drivers:  map[string]string{},
		Trucks:   map[string]string{},
		Shippers: map[string]string{},
	}}
	steps := []func(Fixture) error{r.fleet, r.schedule, r.loads, r.invoices}
	for _, step := range steps {
		if err := step(fx); err != nil {
			return r.res, err
		}
	}
	return r.res, nil
}

func (r *replayer) ref(kind string, names map[string]string, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	id, ok := names[name]
	if !ok {
		return "", fmt.Errorf("%w: %s %q", ErrUnknownReference, kind, name)
	}
	return id, nil
}

// reject records a business-rule rejection and reports whether err was one.
func (r *replayer) reject(step string, err error) bool {
	switch code := pkgerrors.CodeOf(err); code {
	case pkgerrors.CodeConflict, pkgerrors.CodeStateConflict, pkgerrors.CodeValidation:
		r.res.Rejections = append(r.res.Rejections, Rejection{Step: step, Code: string(code), Err: err.Error()})
		return true
	}
	return false
}

func (r *replayer) fleet(fx Fixture) error {
	for _, c := range fx.Carriers {
		out, err := r.l.CreateCarrier(r.s, model.CarrierInput{
			Name: c.Name, LegalName: c.LegalName, Email: c.Email, Phone: c.Phone,
			MCNumber: c.MCNumber, DOTNumber: c.DOTNumber,
		})
		if err != nil {
			return fmt.Errorf("carrier %q: %w", c.Name, err)
		}
		r.res.Carriers[c.Name] = out.ID
	}
	for _, d := range fx.Drivers {
		out, err := r.l.CreateDriver(r.s, model.DriverInput{Name: d.Name, Phone: d.Phone, LicenseNumber: d.LicenseNumber})
		if err != nil {
			return fmt.Errorf("driver %q: %w", d.Name, err)
		}
		r.res.Drivers[d.Name] = out.ID
	}
	for _, t := range fx.Trucks {
		carrierID, err := r.ref("carrier", r.res.Carriers, t.Carrier)
		if err != nil {
			return err
		}
		driverID, err := r.ref("driver", r.res.Drivers, t.Driver)
		if err != nil {
			return err
		}
		out, err := r.l.CreateTruck(r.s, model.TruckInput{
			Name: t.Name, LicensePlate: t.LicensePlate, Model: t.Model, Year: t.Year,
			CarrierID: carrierID, DriverID: driverID,
		})
		if err != nil {
			return fmt.Errorf("truck %q: %w", t.Name, err)
		}
		r.res.Trucks[t.Name] = out.ID
	}
	for _, sh := range fx.Shippers {
		out, err := r.l.CreateShipper(r.s, model.ShipperInput{Name: sh.Name, Address: sh.Address})
		if err != nil {
			return fmt.Errorf("shipper %q: %w", sh.Name, err)
		}
		r.res.Shippers[sh.Name] = out.ID
	}
	return nil
}

func (r *replayer) schedule(fx Fixture) error {
	for i, e := range fx.Schedule {
		step := fmt.Sprintf("schedule[%d] %s", i, e.Title)
		truckID, err := r.ref("truck", r.res.Trucks, e.Truck)
		if err != nil {
			return err
		}
		driverID, err := r.ref("driver", r.res.Drivers, e.Driver)
		if err != nil {
			return err
		}
		d := model.ScheduleDraft{
			TruckID: truckID, DriverID: driverID, Title: e.Title,
			Start: e.Start, End: e.End, Origin: e.Origin, Destination: e.Destination,
			Type: model.ScheduleType(e.Type), IsPartialLoad: e.Partial, IsTeamDriven: e.Team,
		}
		if e.LoadValue != "" {
			v, err := model.ParseMoney(e.LoadValue)
			if err != nil {
				return fmt.Errorf("%s: %w", step, err)
			}
			d.LoadValue = &v
		}
		entry, err := r.l.ProposeScheduleEntry(r.s, d)
		if err != nil {
			if r.reject(step, err) {
				continue
			}
			return fmt.Errorf("%s: %w", step, err)
		}
		r.res.Entries = append(r.res.Entries, entry.ID)
		if e.Complete {
			if _, err := r.l.CompleteScheduleEntry(r.s, entry.ID); err != nil && !r.reject(step+" complete", err) {
				return fmt.Errorf("%s complete: %w", step, err)
			}
		}
	}
	return nil
}

func (r *replayer) loads(fx Fixture) error {
	for i, ld := range fx.Loads {
		step := fmt.Sprintf("loads[%d] %s", i, ld.Commodity)
		shipperID, err := r.ref("shipper", r.res.Shippers, ld.Shipper)
		if err != nil {
			return err
		}
		rate, err := model.ParseMoney(ld.Rate)
		if err != nil {
			return fmt.Errorf("%s: %w", step, err)
		}
		load, err := r.l.PostLoad(r.s, model.BrokerLoadInput{
			ShipperID: shipperID, OriginAddress: ld.Origin, DestinationAddress: ld.Destination,
			PickupDate: ld.Pickup, DeliveryDate: ld.Delivery, Commodity: ld.Commodity,
			EquipmentType: model.EquipmentType(ld.EquipmentType), OfferedRate: rate, Notes: ld.Notes,
		})
		if err != nil {
			if r.reject(step, err) {
				continue
			}
			return fmt.Errorf("%s: %w", step, err)
		}
		r.res.Loads = append(r.res.Loads, load.ID)
		if ld.Accept == nil {
			continue
		}
		req := brokerload.AcceptRequest{LoadID: load.ID}
		if req.CarrierID, err = r.ref("carrier", r.res.Carriers, ld.Accept.Carrier); err != nil {
			return err
		}
		if req.TruckID, err = r.ref("truck", r.res.Trucks, ld.Accept.Truck); err != nil {
			return err
		}
		if req.DriverID, err = r.ref("driver", r.res.Drivers, ld.Accept.Driver); err != nil {
			return err
		}
		b, err := r.l.AcceptLoad(r.s, req)
		if err != nil {
			if r.reject(step+" accept", err) {
				continue
			}
			return fmt.Errorf("%s accept: %w", step, err)
		}
		if ld.Complete {
			if _, err := r.l.CompleteScheduleEntry(r.s, b.Entry.ID); err != nil && !r.reject(step+" complete", err) {
				return fmt.Errorf("%s complete: %w", step, err)
			}
		}
	}
	return nil
}

func (r *replayer) invoices(fx Fixture) error {
	for i, in := range fx.Invoices {
		step := fmt.Sprintf("invoices[%d] %s", i, in.Carrier)
		carrierID, err := r.ref("carrier", r.res.Carriers, in.Carrier)
		if err != nil {
			return err
		}
		inv, err := r.l.GenerateInvoiceForPending(r.s, carrierID)
		if err != nil {
			if r.reject(step, err) {
				continue
			}
			return fmt.Errorf("%s: %w", step, err)
		}
		r.res.Invoices = append(r.res.Invoices, inv.ID)
		if in.Status == "" || in.Status == string(inv.Status) {
			continue
		}
		status, err := model.ParseInvoiceStatus(in.Status)
		if err != nil {
			return fmt.Errorf("%s: %w", step, err)
		}
		if _, err := r.l.SetInvoiceStatus(r.s, inv.ID, status); err != nil {
			return fmt.Errorf("%s status: %w", step, err)
		}
	}
	return nil
}
