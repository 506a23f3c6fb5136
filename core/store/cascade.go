package store

import (
	"github.com/kilianp07/fleetledger/core/model"
)

// Cascade reports what a delete removed or detached besides the target.
type Cascade struct {
	Trucks           []string `json:"trucks,omitempty"`
	ScheduleEntries  []string `json:"schedule_entries,omitempty"`
	LoadsReleased    []string `json:"loads_released,omitempty"`
	EquipmentPosts   []string `json:"equipment_posts,omitempty"`
	LoadDocuments    []string `json:"load_documents,omitempty"`
	CarrierDocuments []string `json:"carrier_documents,omitempty"`
	FeeRecords       []string `json:"fee_records,omitempty"`
	Invoices         []string `json:"invoices,omitempty"`
	DriverRefsNulled int      `json:"driver_refs_nulled,omitempty"`
}

func (c *Cascade) merge(o Cascade) {
	c.Trucks = append(c.Trucks, o.Trucks...)
	c.ScheduleEntries = append(c.ScheduleEntries, o.ScheduleEntries...)
	c.LoadsReleased = append(c.LoadsReleased, o.LoadsReleased...)
	c.EquipmentPosts = append(c.EquipmentPosts, o.EquipmentPosts...)
	c.LoadDocuments = append(c.LoadDocuments, o.LoadDocuments...)
	c.CarrierDocuments = append(c.CarrierDocuments, o.CarrierDocuments...)
	c.FeeRecords = append(c.FeeRecords, o.FeeRecords...)
	c.Invoices = append(c.Invoices, o.Invoices...)
	c.DriverRefsNulled += o.DriverRefsNulled
}

// DeleteTruck removes a truck together with its schedule entries and the
// equipment posts advertising it. Loads booked onto the removed entries are
// released.
func (tx *Tx) DeleteTruck(id string) (Cascade, error) {
	var c Cascade
	if _, ok := del(tx, tx.st.trucks, id); !ok {
		return c, notFound("truck", id)
	}
	c.Trucks = append(c.Trucks, id)
	for _, e := range tx.ScheduleEntriesByTruck(id) {
		released, err := tx.deleteScheduleEntry(e.ID)
		if err != nil {
			return c, err
		}
		c.ScheduleEntries = append(c.ScheduleEntries, e.ID)
		c.LoadsReleased = append(c.LoadsReleased, released...)
	}
	for _, p := range tx.st.equipment.list(func(p model.AvailableEquipmentPost) bool { return p.TruckID == id }) {
		del(tx, tx.st.equipment, p.ID)
		c.EquipmentPosts = append(c.EquipmentPosts, p.ID)
	}
	return c, nil
}

// DeleteDriver removes a driver and nulls every reference to it on trucks,
// schedule entries and broker loads.
func (tx *Tx) DeleteDriver(id string) (Cascade, error) {
	var c Cascade
	if _, ok := del(tx, tx.st.drivers, id); !ok {
		return c, notFound("driver", id)
	}
	for _, t := range tx.st.trucks.list(func(t model.Truck) bool { return t.DriverID == id }) {
		t.DriverID = ""
		put(tx, tx.st.trucks, t.ID, t)
		c.DriverRefsNulled++
	}
	for _, e := range tx.st.schedule.list(func(e model.ScheduleEntry) bool { return e.DriverID == id }) {
		e.DriverID = ""
		put(tx, tx.st.schedule, e.ID, e)
		c.DriverRefsNulled++
	}
	for _, l := range tx.st.loads.list(func(l model.BrokerLoad) bool { return l.AssignedDriverID == id }) {
		l.AssignedDriverID = ""
		put(tx, tx.st.loads, l.ID, l)
		c.DriverRefsNulled++
	}
	return c, nil
}

// DeleteCarrier removes a carrier with its trucks (and their cascades),
// documents, dispatch fees, invoices and equipment posts.
func (tx *Tx) DeleteCarrier(id string) (Cascade, error) {
	var c Cascade
	if _, ok := del(tx, tx.st.carriers, id); !ok {
		return c, notFound("carrier", id)
	}
	for _, t := range tx.TrucksByCarrier(id) {
		sub, err := tx.DeleteTruck(t.ID)
		if err != nil {
			return c, err
		}
		c.merge(sub)
	}
	for _, d := range tx.CarrierDocuments(id) {
		del(tx, tx.st.carrierDocs, d.ID)
		c.CarrierDocuments = append(c.CarrierDocuments, d.ID)
	}
	for _, r := range tx.FeeRecords(FeeFilter{CarrierID: id}) {
		del(tx, tx.st.fees, r.ID)
		c.FeeRecords = append(c.FeeRecords, r.ID)
	}
	for _, inv := range tx.st.invoices.list(func(inv model.Invoice) bool { return inv.CarrierID == id }) {
		del(tx, tx.st.invoices, inv.ID)
		c.Invoices = append(c.Invoices, inv.ID)
	}
	for _, p := range tx.EquipmentPosts(id) {
		del(tx, tx.st.equipment, p.ID)
		c.EquipmentPosts = append(c.EquipmentPosts, p.ID)
	}
	return c, nil
}
