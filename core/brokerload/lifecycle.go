package brokerload

import (
	"fmt"
	"slices"

	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/notify"
	"github.com/kilianp07/fleetledger/core/store"
	pkgerrors "github.com/kilianp07/fleetledger/pkg/errors"
)

var transitions = map[model.LoadStatus][]model.LoadStatus{
	model.LoadAvailable: {model.LoadCancelled},
	model.LoadBooked:    {model.LoadInTransit, model.LoadDelivered, model.LoadCancelled},
	model.LoadInTransit: {model.LoadDelivered},
}

// CanTransition reports whether a load may move from one status to another
// outside of AcceptLoad.
func CanTransition(from, to model.LoadStatus) bool {
	return slices.Contains(transitions[from], to)
}

// PostLoad publishes a new Available load for the acting broker.
func (w *Workflow) PostLoad(s model.Session, in model.BrokerLoadInput) (model.BrokerLoad, error) {
	var out model.BrokerLoad
	err := w.store.Update(func(tx *store.Tx) error {
		var err error
		out, err = tx.CreateBrokerLoad(in, s.Actor())
		return err
	})
	if err == nil {
		w.log.Infof("load %s posted by %s", out.ID, out.PostedByBrokerID)
	}
	return out, err
}

// TransitionTx moves a load to the given status.
func (w *Workflow) TransitionTx(tx *store.Tx, id string, to model.LoadStatus) (model.BrokerLoad, error) {
	load, err := tx.BrokerLoad(id)
	if err != nil {
		return model.BrokerLoad{}, err
	}
	if !CanTransition(load.Status, to) {
		return model.BrokerLoad{}, pkgerrors.Wrap(pkgerrors.CodeStateConflict,
			fmt.Errorf("%w: %s to %s", ErrInvalidTransition, load.Status, to), "load status transition disallowed").
			WithDetails(map[string]string{"load_id": id, "from": string(load.Status), "to": string(to)})
	}
	load.Status = to
	if err := tx.PutBrokerLoad(load); err != nil {
		return model.BrokerLoad{}, err
	}
	return load, nil
}

func (w *Workflow) transition(id string, to model.LoadStatus) (model.BrokerLoad, error) {
	var out model.BrokerLoad
	err := w.store.Update(func(tx *store.Tx) error {
		var err error
		out, err = w.TransitionTx(tx, id, to)
		return err
	})
	return out, err
}

// MarkInTransit moves a Booked load to In Transit.
func (w *Workflow) MarkInTransit(s model.Session, id string) (model.BrokerLoad, error) {
	return w.transition(id, model.LoadInTransit)
}

// MarkDelivered moves a Booked or In Transit load to Delivered.
func (w *Workflow) MarkDelivered(s model.Session, id string) (model.BrokerLoad, error) {
	return w.transition(id, model.LoadDelivered)
}

// CancelLoad cancels an Available or Booked load. A booked load's schedule
// entry is removed and its carrier notified.
func (w *Workflow) CancelLoad(s model.Session, id string) (model.BrokerLoad, error) {
	var out model.BrokerLoad
	var entryID string
	err := w.store.Update(func(tx *store.Tx) error {
		before, err := tx.BrokerLoad(id)
		if err != nil {
			return err
		}
		entryID = before.ScheduleEntryID
		if out, err = w.TransitionTx(tx, id, model.LoadCancelled); err != nil {
			return err
		}
		if entryID != "" {
			if err := tx.DeleteScheduleEntry(entryID); err != nil {
				return err
			}
			out, err = tx.BrokerLoad(id)
			return err
		}
		return nil
	})
	if err != nil {
		return model.BrokerLoad{}, err
	}
	w.log.Infof("load %s cancelled by %s", id, s.Actor())
	if out.AssignedCarrierID != "" {
		w.notifyParties(notify.Notification{
			Kind:      notify.KindLoadCancelled,
			CarrierID: out.AssignedCarrierID,
			LoadID:    out.ID,
			Subject:   "Load cancelled",
			Message:   fmt.Sprintf("Load %s (%s) was cancelled", out.ID, out.ConfirmationNumber),
		}, out.AssignedDriverID, "Assignment cancelled")
	}
	return out, nil
}
