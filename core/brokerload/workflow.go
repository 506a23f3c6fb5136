// Package brokerload implements the lifecycle of broker-posted loads, most
// importantly accepting a load onto a carrier's truck. Acceptance either
// books the load and creates its schedule entry together, or changes
// nothing.
package brokerload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kilianp07/fleetledger/core/bookability"
	"github.com/kilianp07/fleetledger/core/logger"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/notify"
	"github.com/kilianp07/fleetledger/core/schedule"
	"github.com/kilianp07/fleetledger/core/store"
	pkgerrors "github.com/kilianp07/fleetledger/pkg/errors"
)

var (
	ErrLoadNotAvailable     = errors.New("load is not available")
	ErrTruckCarrierMismatch = errors.New("truck does not belong to carrier")
	ErrCarrierNotBookable   = errors.New("carrier is not bookable")
	ErrInvalidTransition    = errors.New("invalid load status transition")
)

// AcceptRequest names the load and the equipment that will carry it.
type AcceptRequest struct {
	LoadID    string `json:"load_id" validate:"required"`
	CarrierID string `json:"carrier_id" validate:"required"`
	TruckID   string `json:"truck_id" validate:"required"`
	DriverID  string `json:"driver_id"`
}

// Booking is the result of an accepted load.
type Booking struct {
	Load  model.BrokerLoad    `json:"load"`
	Entry model.ScheduleEntry `json:"schedule_entry"`
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithConfirmationGenerator overrides confirmation number generation.
func WithConfirmationGenerator(gen func() string) Option {
	return func(w *Workflow) {
		if gen != nil {
			w.confirmation = gen
		}
	}
}

// Workflow coordinates loads, the scheduling engine and notifications.
type Workflow struct {
	store        *store.Store
	sched        *schedule.Engine
	policy       *bookability.Policy
	notifier     *notify.Dispatcher
	log          logger.Logger
	confirmation func() string
}

// NewWorkflow creates a Workflow.
func NewWorkflow(st *store.Store, sched *schedule.Engine, policy *bookability.Policy, n *notify.Dispatcher, log logger.Logger, opts ...Option) (*Workflow, error) {
	if st == nil || sched == nil || policy == nil {
		return nil, fmt.Errorf("brokerload: store, scheduling engine and policy are required")
	}
	if log == nil {
		return nil, fmt.Errorf("brokerload: logger is required")
	}
	if n == nil {
		n = notify.NewDispatcher(nil, log, 0)
	}
	w := &Workflow{
		store:        st,
		sched:        sched,
		policy:       policy,
		notifier:     n,
		log:          log,
		confirmation: newConfirmationNumber,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func newConfirmationNumber() string {
	return "BL-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// AcceptLoad books an Available load onto a truck of a bookable carrier.
// When the scheduling engine rejects the derived entry the load is left
// exactly as it was. Notifications are sent only after the booking is
// stored.
func (w *Workflow) AcceptLoad(s model.Session, req AcceptRequest) (Booking, error) {
	var b Booking
	var carrier model.Carrier
	err := w.store.Update(func(tx *store.Tx) error {
		var err error
		b, carrier, err = w.acceptTx(tx, s, req)
		return err
	})
	if err != nil {
		w.log.Warnf("load %s not accepted by carrier %s: %v", req.LoadID, req.CarrierID, err)
		return Booking{}, err
	}
	w.log.Infof("load %s booked by carrier %s on truck %s (%s)", b.Load.ID, carrier.Name, b.Load.AssignedTruckID, b.Load.ConfirmationNumber)
	w.notifyBooked(b, carrier)
	return b, nil
}

func (w *Workflow) acceptTx(tx *store.Tx, s model.Session, req AcceptRequest) (Booking, model.Carrier, error) {
	if err := store.Validate(req); err != nil {
		return Booking{}, model.Carrier{}, err
	}
	load, err := tx.BrokerLoad(req.LoadID)
	if err != nil {
		return Booking{}, model.Carrier{}, err
	}
	if load.Status != model.LoadAvailable {
		return Booking{}, model.Carrier{}, pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrLoadNotAvailable, "load is not available").
			WithDetails(map[string]string{"load_id": load.ID, "status": string(load.Status)})
	}
	truck, err := tx.Truck(req.TruckID)
	if err != nil {
		return Booking{}, model.Carrier{}, err
	}
	if truck.CarrierID != req.CarrierID {
		return Booking{}, model.Carrier{}, pkgerrors.Wrap(pkgerrors.CodeConflict, ErrTruckCarrierMismatch, "truck does not belong to carrier").
			WithDetails(map[string]string{"truck_id": truck.ID, "carrier_id": req.CarrierID})
	}
	carrier, err := tx.Carrier(req.CarrierID)
	if err != nil {
		return Booking{}, model.Carrier{}, err
	}
	if !w.policy.Project(&tx.ReadTx, carrier).IsBookable {
		return Booking{}, model.Carrier{}, pkgerrors.Wrap(pkgerrors.CodeConflict, ErrCarrierNotBookable, "carrier has overdue invoices").
			WithDetails(map[string]string{"carrier_id": carrier.ID})
	}

	driverID := req.DriverID
	if driverID == "" {
		driverID = truck.DriverID
	}
	confirmation := load.ConfirmationNumber
	if confirmation == "" {
		confirmation = w.confirmation()
	}
	shipperName := load.ShipperID
	if sh, err := tx.Shipper(load.ShipperID); err == nil {
		shipperName = sh.Name
	}

	entry, err := w.sched.ProposeLoadTx(tx, s, draftFor(load, truck.ID, driverID, shipperName, confirmation))
	if err != nil {
		return Booking{}, model.Carrier{}, err
	}

	now := tx.Now()
	load.Status = model.LoadBooked
	load.AssignedCarrierID = carrier.ID
	load.AssignedTruckID = truck.ID
	load.AssignedDriverID = driverID
	load.ConfirmationNumber = confirmation
	load.ScheduleEntryID = entry.ID
	load.BookedBy = s.Actor()
	load.BookedAt = &now
	if err := tx.PutBrokerLoad(load); err != nil {
		return Booking{}, model.Carrier{}, err
	}
	return Booking{Load: load, Entry: entry}, carrier, nil
}

func draftFor(load model.BrokerLoad, truckID, driverID, shipper, confirmation string) model.ScheduleDraft {
	notes := []string{
		"Broker load " + load.ID,
		"Shipper: " + shipper,
		"Confirmation: " + confirmation,
	}
	if load.Notes != "" {
		notes = append(notes, "Notes: "+load.Notes)
	}
	rate := load.OfferedRate
	return model.ScheduleDraft{
		TruckID:       truckID,
		DriverID:      driverID,
		Title:         fmt.Sprintf("%s: %s to %s", load.Commodity, load.OriginAddress, load.DestinationAddress),
		Start:         load.PickupDate,
		End:           load.DeliveryDate,
		Origin:        load.OriginAddress,
		Destination:   load.DestinationAddress,
		LoadValue:     &rate,
		Notes:         strings.Join(notes, "\n"),
		Type:          model.ScheduleDelivery,
		IsPartialLoad: false,
		IsTeamDriven:  false,
		BrokerLoadID:  load.ID,
	}
}

func (w *Workflow) notifyBooked(b Booking, carrier model.Carrier) {
	msg := fmt.Sprintf("Load %s (%s to %s) booked, pickup %s, confirmation %s",
		b.Load.ID, b.Load.OriginAddress, b.Load.DestinationAddress,
		b.Load.PickupDate.Format("2006-01-02 15:04"), b.Load.ConfirmationNumber)
	w.notifyParties(notify.Notification{
		Kind:      notify.KindLoadBooked,
		CarrierID: carrier.ID,
		LoadID:    b.Load.ID,
		Subject:   "Load booked",
		Message:   msg,
	}, b.Load.AssignedDriverID, "New assignment")
}

// notifyParties sends n to the carrier and, when driverID is set, a copy
// with driverSubject to the driver.
func (w *Workflow) notifyParties(n notify.Notification, driverID, driverSubject string) {
	w.notifier.Send(n)
	if driverID == "" {
		return
	}
	n.DriverID = driverID
	n.Subject = driverSubject
	w.notifier.Send(n)
}
