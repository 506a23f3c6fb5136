package store

import (
	"github.com/kilianp07/fleetledger/core/model"
)

func (tx *ReadTx) Shipper(id string) (model.Shipper, error) {
	s, ok := tx.st.shippers.get(id)
	if !ok {
		return model.Shipper{}, notFound("shipper", id)
	}
	return s, nil
}

func (tx *ReadTx) Shippers() []model.Shipper {
	return tx.st.shippers.list(nil)
}

func (tx *Tx) CreateShipper(in model.ShipperInput) (model.Shipper, error) {
	if err := Validate(in); err != nil {
		return model.Shipper{}, err
	}
	s := model.Shipper{
		ID:          tx.newID(),
		Name:        in.Name,
		ContactName: in.ContactName,
		Email:       in.Email,
		Phone:       in.Phone,
		Address:     in.Address,
	}
	put(tx, tx.st.shippers, s.ID, s)
	return s, nil
}

func (tx *Tx) DeleteShipper(id string) error {
	if _, ok := del(tx, tx.st.shippers, id); !ok {
		return notFound("shipper", id)
	}
	return nil
}

// LoadFilter narrows BrokerLoads. Zero fields match everything.
type LoadFilter struct {
	Status    model.LoadStatus
	CarrierID string
	ShipperID string
}

func (f LoadFilter) match(l model.BrokerLoad) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.CarrierID != "" && l.AssignedCarrierID != f.CarrierID {
		return false
	}
	if f.ShipperID != "" && l.ShipperID != f.ShipperID {
		return false
	}
	return true
}

func (tx *ReadTx) BrokerLoad(id string) (model.BrokerLoad, error) {
	l, ok := tx.st.loads.get(id)
	if !ok {
		return model.BrokerLoad{}, notFound("broker load", id)
	}
	return l, nil
}

func (tx *ReadTx) BrokerLoads(f LoadFilter) []model.BrokerLoad {
	return tx.st.loads.list(f.match)
}

// CreateBrokerLoad posts a new Available load on behalf of brokerID.
func (tx *Tx) CreateBrokerLoad(in model.BrokerLoadInput, brokerID string) (model.BrokerLoad, error) {
	if err := Validate(in); err != nil {
		return model.BrokerLoad{}, err
	}
	if in.DeliveryDate.Before(in.PickupDate) {
		return model.BrokerLoad{}, Invalid("delivery_date", "must not be before pickup_date")
	}
	if !in.OfferedRate.IsPositive() {
		return model.BrokerLoad{}, Invalid("offered_rate", "must be positive")
	}
	if _, err := tx.Shipper(in.ShipperID); err != nil {
		return model.BrokerLoad{}, err
	}
	equipment := in.EquipmentType
	if equipment == "" {
		equipment = model.EquipmentDryVan
	}
	l := model.BrokerLoad{
		ID:                 tx.newID(),
		ShipperID:          in.ShipperID,
		PostedByBrokerID:   brokerID,
		PostedDate:         tx.now(),
		OriginAddress:      in.OriginAddress,
		DestinationAddress: in.DestinationAddress,
		PickupDate:         in.PickupDate,
		DeliveryDate:       in.DeliveryDate,
		Commodity:          in.Commodity,
		WeightLbs:          in.WeightLbs,
		Dimensions:         in.Dimensions,
		EquipmentType:      equipment,
		OfferedRate:        model.RoundCurrency(in.OfferedRate),
		Status:             model.LoadAvailable,
		Notes:              in.Notes,
	}
	put(tx, tx.st.loads, l.ID, l)
	return l, nil
}

// PutBrokerLoad overwrites an existing load.
func (tx *Tx) PutBrokerLoad(l model.BrokerLoad) error {
	if _, err := tx.BrokerLoad(l.ID); err != nil {
		return err
	}
	put(tx, tx.st.loads, l.ID, l)
	return nil
}

// DeleteBrokerLoad removes a load and its documents.
func (tx *Tx) DeleteBrokerLoad(id string) (Cascade, error) {
	var c Cascade
	if _, ok := del(tx, tx.st.loads, id); !ok {
		return c, notFound("broker load", id)
	}
	for _, d := range tx.LoadDocuments(id) {
		del(tx, tx.st.loadDocs, d.ID)
		c.LoadDocuments = append(c.LoadDocuments, d.ID)
	}
	return c, nil
}

func (tx *ReadTx) LoadDocuments(loadID string) []model.LoadDocument {
	return tx.st.loadDocs.list(func(d model.LoadDocument) bool { return d.BrokerLoadID == loadID })
}

func (tx *Tx) CreateLoadDocument(in model.LoadDocumentInput) (model.LoadDocument, error) {
	if err := Validate(in); err != nil {
		return model.LoadDocument{}, err
	}
	if _, err := tx.BrokerLoad(in.BrokerLoadID); err != nil {
		return model.LoadDocument{}, err
	}
	d := model.LoadDocument{
		ID:           tx.newID(),
		BrokerLoadID: in.BrokerLoadID,
		Type:         in.Type,
		FileName:     in.FileName,
		URL:          in.URL,
		UploadedAt:   tx.now(),
	}
	put(tx, tx.st.loadDocs, d.ID, d)
	return d, nil
}

func (tx *Tx) DeleteLoadDocument(id string) error {
	if _, ok := del(tx, tx.st.loadDocs, id); !ok {
		return notFound("load document", id)
	}
	return nil
}

func (tx *ReadTx) CarrierDocuments(carrierID string) []model.CarrierDocument {
	return tx.st.carrierDocs.list(func(d model.CarrierDocument) bool { return d.CarrierID == carrierID })
}

func (tx *Tx) CreateCarrierDocument(in model.CarrierDocumentInput) (model.CarrierDocument, error) {
	if err := Validate(in); err != nil {
		return model.CarrierDocument{}, err
	}
	if _, err := tx.Carrier(in.CarrierID); err != nil {
		return model.CarrierDocument{}, err
	}
	d := model.CarrierDocument{
		ID:         tx.newID(),
		CarrierID:  in.CarrierID,
		Type:       in.Type,
		FileName:   in.FileName,
		URL:        in.URL,
		ExpiresAt:  in.ExpiresAt,
		UploadedAt: tx.now(),
	}
	put(tx, tx.st.carrierDocs, d.ID, d)
	return d, nil
}

func (tx *Tx) DeleteCarrierDocument(id string) error {
	if _, ok := del(tx, tx.st.carrierDocs, id); !ok {
		return notFound("carrier document", id)
	}
	return nil
}

// EquipmentPosts lists equipment posts, optionally for one carrier.
func (tx *ReadTx) EquipmentPosts(carrierID string) []model.AvailableEquipmentPost {
	return tx.st.equipment.list(func(p model.AvailableEquipmentPost) bool {
		return carrierID == "" || p.CarrierID == carrierID
	})
}

func (tx *Tx) CreateEquipmentPost(in model.EquipmentPostInput) (model.AvailableEquipmentPost, error) {
	if err := Validate(in); err != nil {
		return model.AvailableEquipmentPost{}, err
	}
	if in.AvailableTo.Before(in.AvailableFrom) {
		return model.AvailableEquipmentPost{}, Invalid("available_to", "must not be before available_from")
	}
	if _, err := tx.Carrier(in.CarrierID); err != nil {
		return model.AvailableEquipmentPost{}, err
	}
	if in.TruckID != "" {
		t, err := tx.Truck(in.TruckID)
		if err != nil {
			return model.AvailableEquipmentPost{}, err
		}
		if t.CarrierID != in.CarrierID {
			return model.AvailableEquipmentPost{}, Invalid("truck_id", "must belong to the carrier")
		}
	}
	p := model.AvailableEquipmentPost{
		ID:            tx.newID(),
		CarrierID:     in.CarrierID,
		TruckID:       in.TruckID,
		EquipmentType: in.EquipmentType,
		Location:      in.Location,
		AvailableFrom: in.AvailableFrom,
		AvailableTo:   in.AvailableTo,
		Notes:         in.Notes,
		PostedAt:      tx.now(),
	}
	put(tx, tx.st.equipment, p.ID, p)
	return p, nil
}

func (tx *Tx) DeleteEquipmentPost(id string) error {
	if _, ok := del(tx, tx.st.equipment, id); !ok {
		return notFound("equipment post", id)
	}
	return nil
}
