package ledger

import (
	"errors"

	"github.com/kilianp07/fleetledger/core/brokerload"
	"github.com/kilianp07/fleetledger/core/events"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/store"
	pkgerrors "github.com/kilianp07/fleetledger/pkg/errors"
)

// ErrAlreadyCompleted is returned when a schedule entry is completed twice.
var ErrAlreadyCompleted = errors.New("schedule entry already completed")

// CompletionResult reports what completing a schedule entry produced.
type CompletionResult struct {
	Entry model.ScheduleEntry      `json:"schedule_entry"`
	Fee   *model.DispatchFeeRecord `json:"fee_record,omitempty"`
	Load  *model.BrokerLoad        `json:"broker_load,omitempty"`
}

// ProposeScheduleEntry validates a draft against the truck's other entries
// and stores it.
func (l *Ledger) ProposeScheduleEntry(s model.Session, d model.ScheduleDraft) (model.ScheduleEntry, error) {
	e, err := update(l, "propose_schedule_entry", func(tx *store.Tx) (model.ScheduleEntry, error) {
		return l.sched.ProposeTx(tx, s, d)
	})
	if err != nil {
		l.scheduleRejected(err, d.TruckID, "schedule")
	}
	return e, err
}

// ReviseScheduleEntry validates changes to an entry, excluding the entry
// itself from the overlap check.
func (l *Ledger) ReviseScheduleEntry(s model.Session, id string, d model.ScheduleDraft) (model.ScheduleEntry, error) {
	e, err := update(l, "revise_schedule_entry", func(tx *store.Tx) (model.ScheduleEntry, error) {
		return l.sched.ReviseTx(tx, id, d)
	})
	if err != nil {
		l.scheduleRejected(err, d.TruckID, "schedule")
	}
	return e, err
}

// DeleteScheduleEntry removes an entry. Fee records already derived from it
// are kept.
func (l *Ledger) DeleteScheduleEntry(s model.Session, id string) error {
	_, err := update(l, "delete_schedule_entry", func(tx *store.Tx) (struct{}, error) {
		return struct{}{}, tx.DeleteScheduleEntry(id)
	})
	return err
}

// CompleteScheduleEntry marks an entry completed. An entry with a load value
// yields a pending dispatch fee for the truck's carrier, and an entry booked
// from a broker load moves that load to Delivered.
func (l *Ledger) CompleteScheduleEntry(s model.Session, entryID string) (CompletionResult, error) {
	res, err := update(l, "complete_schedule_entry", func(tx *store.Tx) (CompletionResult, error) {
		entry, err := tx.ScheduleEntry(entryID)
		if err != nil {
			return CompletionResult{}, err
		}
		if entry.CompletedAt != nil {
			return CompletionResult{}, pkgerrors.Wrap(pkgerrors.CodeStateConflict, ErrAlreadyCompleted, "schedule entry already completed").
				WithDetails(map[string]string{"schedule_entry_id": entryID})
		}
		now := tx.Now()
		entry.CompletedAt = &now
		if err := tx.PutScheduleEntry(entry); err != nil {
			return CompletionResult{}, err
		}
		out := CompletionResult{Entry: entry}

		if entry.HasLoadValue() {
			truck, err := tx.Truck(entry.TruckID)
			if err != nil {
				return CompletionResult{}, err
			}
			fee, err := l.billing.CreateFeeRecordTx(tx, entry.ID, truck.CarrierID, *entry.LoadValue)
			if err != nil {
				return CompletionResult{}, err
			}
			out.Fee = &fee
		}
		if entry.BrokerLoadID != "" {
			load, err := tx.BrokerLoad(entry.BrokerLoadID)
			if err == nil && brokerload.CanTransition(load.Status, model.LoadDelivered) {
				if load, err = l.loads.TransitionTx(tx, load.ID, model.LoadDelivered); err != nil {
					return CompletionResult{}, err
				}
				out.Load = &load
			}
		}
		return out, nil
	})
	if err != nil {
		return CompletionResult{}, err
	}
	if res.Fee != nil {
		l.feeRecorded(*res.Fee)
	}
	l.log.Infof("schedule entry %s completed by %s", entryID, s.Actor())
	return res, nil
}

func (l *Ledger) feeRecorded(f model.DispatchFeeRecord) {
	l.publish(events.FeeRecorded{
		FeeID:     f.ID,
		CarrierID: f.CarrierID,
		EntryID:   f.ScheduleEntryID,
		LoadValue: f.OriginalLoadAmount,
		Amount:    f.FeeAmount,
		Time:      l.now(),
	})
}
