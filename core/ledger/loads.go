package ledger

import (
	"time"

	"github.com/kilianp07/fleetledger/core/brokerload"
	"github.com/kilianp07/fleetledger/core/events"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/store"
)

// PostLoad publishes a new Available load for the acting broker.
func (l *Ledger) PostLoad(s model.Session, in model.BrokerLoadInput) (model.BrokerLoad, error) {
	start := time.Now()
	out, err := l.loads.PostLoad(s, in)
	l.observe("post_load", start, err)
	return out, err
}

// AcceptLoad books an Available load onto a carrier's truck. Nothing is
// changed when the carrier is not bookable or the derived schedule entry is
// rejected.
func (l *Ledger) AcceptLoad(s model.Session, req brokerload.AcceptRequest) (brokerload.Booking, error) {
	start := time.Now()
	b, err := l.loads.AcceptLoad(s, req)
	l.observe("accept_load", start, err)
	if err != nil {
		l.scheduleRejected(err, req.TruckID, "load_accept")
		return brokerload.Booking{}, err
	}
	l.publish(events.LoadBooked{
		LoadID:       b.Load.ID,
		CarrierID:    b.Load.AssignedCarrierID,
		TruckID:      b.Load.AssignedTruckID,
		EntryID:      b.Entry.ID,
		Confirmation: b.Load.ConfirmationNumber,
		Rate:         b.Load.OfferedRate,
		Time:         l.now(),
	})
	return b, nil
}

// MarkLoadInTransit moves a Booked load to In Transit.
func (l *Ledger) MarkLoadInTransit(s model.Session, id string) (model.BrokerLoad, error) {
	start := time.Now()
	out, err := l.loads.MarkInTransit(s, id)
	l.observe("mark_load_in_transit", start, err)
	return out, err
}

// MarkLoadDelivered moves a Booked or In Transit load to Delivered.
func (l *Ledger) MarkLoadDelivered(s model.Session, id string) (model.BrokerLoad, error) {
	start := time.Now()
	out, err := l.loads.MarkDelivered(s, id)
	l.observe("mark_load_delivered", start, err)
	return out, err
}

// CancelLoad cancels an Available or Booked load.
func (l *Ledger) CancelLoad(s model.Session, id string) (model.BrokerLoad, error) {
	start := time.Now()
	out, err := l.loads.CancelLoad(s, id)
	l.observe("cancel_load", start, err)
	return out, err
}

// DeleteBrokerLoad removes a load and its documents.
func (l *Ledger) DeleteBrokerLoad(s model.Session, id string) (store.Cascade, error) {
	return update(l, "delete_load", func(tx *store.Tx) (store.Cascade, error) {
		return tx.DeleteBrokerLoad(id)
	})
}

// AddLoadDocument attaches a document to a broker load.
func (l *Ledger) AddLoadDocument(s model.Session, in model.LoadDocumentInput) (model.LoadDocument, error) {
	return update(l, "add_load_document", func(tx *store.Tx) (model.LoadDocument, error) {
		return tx.CreateLoadDocument(in)
	})
}
