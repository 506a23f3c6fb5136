package store

import (
	"github.com/kilianp07/fleetledger/core/model"
)

func (tx *ReadTx) ScheduleEntry(id string) (model.ScheduleEntry, error) {
	e, ok := tx.st.schedule.get(id)
	if !ok {
		return model.ScheduleEntry{}, notFound("schedule entry", id)
	}
	return e, nil
}

func (tx *ReadTx) ScheduleEntries() []model.ScheduleEntry {
	return tx.st.schedule.list(nil)
}

// ScheduleEntriesByTruck lists the entries committed to one truck.
func (tx *ReadTx) ScheduleEntriesByTruck(truckID string) []model.ScheduleEntry {
	return tx.st.schedule.list(func(e model.ScheduleEntry) bool { return e.TruckID == truckID })
}

func (tx *Tx) checkEntryRefs(e model.ScheduleEntry) error {
	if e.TruckID == "" {
		return Invalid("truck_id", "is required")
	}
	if _, err := tx.Truck(e.TruckID); err != nil {
		return err
	}
	if e.DriverID != "" {
		if _, err := tx.Driver(e.DriverID); err != nil {
			return err
		}
	}
	return nil
}

// InsertScheduleEntry stores e under a new id. Overlap and duration policy
// belong to the scheduling engine and are not checked here.
func (tx *Tx) InsertScheduleEntry(e model.ScheduleEntry) (model.ScheduleEntry, error) {
	if err := tx.checkEntryRefs(e); err != nil {
		return model.ScheduleEntry{}, err
	}
	e.ID = tx.newID()
	put(tx, tx.st.schedule, e.ID, e)
	return e, nil
}

// PutScheduleEntry overwrites an existing entry.
func (tx *Tx) PutScheduleEntry(e model.ScheduleEntry) error {
	if _, err := tx.ScheduleEntry(e.ID); err != nil {
		return err
	}
	if err := tx.checkEntryRefs(e); err != nil {
		return err
	}
	put(tx, tx.st.schedule, e.ID, e)
	return nil
}

// DeleteScheduleEntry removes an entry. A Booked or In Transit load booked
// onto it goes back to Available with its assignment cleared; other loads
// only lose the back-reference.
func (tx *Tx) DeleteScheduleEntry(id string) error {
	_, err := tx.deleteScheduleEntry(id)
	return err
}

func (tx *Tx) deleteScheduleEntry(id string) ([]string, error) {
	if _, ok := del(tx, tx.st.schedule, id); !ok {
		return nil, notFound("schedule entry", id)
	}
	var released []string
	for _, l := range tx.st.loads.list(func(l model.BrokerLoad) bool { return l.ScheduleEntryID == id }) {
		l.ScheduleEntryID = ""
		if l.Status == model.LoadBooked || l.Status == model.LoadInTransit {
			l.Status = model.LoadAvailable
			l.AssignedCarrierID = ""
			l.AssignedTruckID = ""
			l.AssignedDriverID = ""
			l.ConfirmationNumber = ""
			l.BookedBy = ""
			l.BookedAt = nil
			released = append(released, l.ID)
		}
		put(tx, tx.st.loads, l.ID, l)
	}
	return released, nil
}
