// Package store holds the authoritative in-memory collections of the fleet
// ledger: trucks, drivers, carriers, schedule entries, shippers, broker loads,
// documents, equipment posts, dispatch fees and invoices.
//
// The store performs CRUD, id assignment and referential cleanup on delete.
// It holds no cross-entity business policy; the scheduling and billing
// engines validate before they write.
//
// All writes run inside Update, which holds an exclusive lock for the whole
// callback so that read-then-write sequences cannot interleave. If the
// callback returns an error every mutation it made is rolled back. Reads run
// inside View and may proceed concurrently.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/fleetledger/core/model"
)

type state struct {
	trucks      *collection[model.Truck]
	drivers     *collection[model.Driver]
	carriers    *collection[model.Carrier]
	schedule    *collection[model.ScheduleEntry]
	shippers    *collection[model.Shipper]
	loads       *collection[model.BrokerLoad]
	loadDocs    *collection[model.LoadDocument]
	carrierDocs *collection[model.CarrierDocument]
	equipment   *collection[model.AvailableEquipmentPost]
	fees        *collection[model.DispatchFeeRecord]
	invoices    *collection[model.Invoice]

	invoiceSeq map[int]int
}

func newState() *state {
	return &state{
		trucks:      newCollection[model.Truck](),
		drivers:     newCollection[model.Driver](),
		carriers:    newCollection[model.Carrier](),
		schedule:    newCollection[model.ScheduleEntry](),
		shippers:    newCollection[model.Shipper](),
		loads:       newCollection[model.BrokerLoad](),
		loadDocs:    newCollection[model.LoadDocument](),
		carrierDocs: newCollection[model.CarrierDocument](),
		equipment:   newCollection[model.AvailableEquipmentPost](),
		fees:        newCollection[model.DispatchFeeRecord](),
		invoices:    newCollection[model.Invoice](),
		invoiceSeq:  make(map[int]int),
	}
}

// Store is the in-memory entity store.
type Store struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides id assignment. Generated ids must be unique.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		state: newState(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// View runs fn with shared read access.
func (s *Store) View(fn func(tx *ReadTx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&ReadTx{st: s.state})
}

// Update runs fn with exclusive access. Mutations are rolled back when fn
// returns an error or panics.
func (s *Store) Update(fn func(tx *Tx) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &Tx{ReadTx: ReadTx{st: s.state}, now: s.now, newID: s.newID}
	defer func() {
		if r := recover(); r != nil {
			tx.rollback()
			panic(r)
		}
		if err != nil {
			tx.rollback()
		}
	}()
	return fn(tx)
}

// ReadTx exposes the read operations of the store.
type ReadTx struct {
	st *state
}

// Tx exposes read and write operations inside Update.
type Tx struct {
	ReadTx
	now   func() time.Time
	newID func() string
	undo  []func()
}

// Now returns the store clock.
func (tx *Tx) Now() time.Time { return tx.now() }

func (tx *Tx) onRollback(fn func()) {
	tx.undo = append(tx.undo, fn)
}

func (tx *Tx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}
