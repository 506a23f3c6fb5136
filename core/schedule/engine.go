// Package schedule validates and persists schedule entries. Every entry that
// reaches the store goes through Propose or Revise, which enforce the
// per-truck overlap rule (waived only between two partial loads) and the
// single-driver hours-of-service limit.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/fleetledger/core/logger"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/store"
	pkgerrors "github.com/kilianp07/fleetledger/pkg/errors"
)

var (
	ErrInvalidTimeRange = errors.New("schedule end is before start")
	ErrScheduleConflict = errors.New("schedule conflict")
	ErrHOSViolation     = errors.New("hours of service violation")
	ErrLoadLinked       = errors.New("broker load link is managed by load acceptance")
	ErrCarrierMismatch  = errors.New("truck does not belong to the load's carrier")
)

const (
	RuleOverlap = "overlap"
	RuleHOS     = "hos"
)

// DefaultMaxSoloHours is the longest entry a single driver may run.
const DefaultMaxSoloHours = 14

// Violation describes one rule an entry breaks.
type Violation struct {
	Rule          string `json:"rule"`
	Message       string `json:"message"`
	Title         string `json:"title"`
	TruckID       string `json:"truck_id"`
	ConflictingID string `json:"conflicting_entry_id,omitempty"`
}

// Config holds the scheduling limits.
type Config struct {
	MaxSoloHours float64 `json:"max_solo_hours"`
}

// Engine applies scheduling rules before writing to the store.
type Engine struct {
	store   *store.Store
	maxSolo time.Duration
	log     logger.Logger
}

// NewEngine creates an Engine. A non-positive MaxSoloHours selects the
// default limit.
func NewEngine(st *store.Store, cfg Config, log logger.Logger) (*Engine, error) {
	if st == nil {
		return nil, fmt.Errorf("schedule: store is required")
	}
	if log == nil {
		return nil, fmt.Errorf("schedule: logger is required")
	}
	hours := cfg.MaxSoloHours
	if hours <= 0 {
		hours = DefaultMaxSoloHours
	}
	return &Engine{
		store:   st,
		maxSolo: time.Duration(hours * float64(time.Hour)),
		log:     log,
	}, nil
}

// MaxSolo returns the configured single-driver limit.
func (e *Engine) MaxSolo() time.Duration { return e.maxSolo }

// Propose validates a new entry and stores it.
func (e *Engine) Propose(s model.Session, d model.ScheduleDraft) (model.ScheduleEntry, error) {
	var out model.ScheduleEntry
	err := e.store.Update(func(tx *store.Tx) error {
		var err error
		out, err = e.ProposeTx(tx, s, d)
		return err
	})
	return out, err
}

// Revise validates changes to an existing entry and stores them.
func (e *Engine) Revise(s model.Session, id string, d model.ScheduleDraft) (model.ScheduleEntry, error) {
	var out model.ScheduleEntry
	err := e.store.Update(func(tx *store.Tx) error {
		var err error
		out, err = e.ReviseTx(tx, id, d)
		return err
	})
	return out, err
}

// ProposeTx is Propose inside a caller-owned transaction. Drafts carrying a
// broker load id are rejected; use ProposeLoadTx for those.
func (e *Engine) ProposeTx(tx *store.Tx, s model.Session, d model.ScheduleDraft) (model.ScheduleEntry, error) {
	if d.BrokerLoadID != "" {
		return model.ScheduleEntry{}, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrLoadLinked, "broker_load_id cannot be set directly").
			WithDetails(map[string]string{"broker_load_id": "is set when a load is accepted"})
	}
	return e.insert(tx, s, d)
}

// ProposeLoadTx stores the entry backing an accepted broker load. The load
// must exist and must not already be linked to an entry.
func (e *Engine) ProposeLoadTx(tx *store.Tx, s model.Session, d model.ScheduleDraft) (model.ScheduleEntry, error) {
	load, err := tx.BrokerLoad(d.BrokerLoadID)
	if err != nil {
		return model.ScheduleEntry{}, err
	}
	if load.ScheduleEntryID != "" {
		return model.ScheduleEntry{}, pkgerrors.Wrap(pkgerrors.CodeConflict, ErrLoadLinked, "load already has a schedule entry").
			WithDetails(map[string]string{"schedule_entry_id": load.ScheduleEntryID})
	}
	return e.insert(tx, s, d)
}

func (e *Engine) insert(tx *store.Tx, s model.Session, d model.ScheduleDraft) (model.ScheduleEntry, error) {
	if err := e.check(&tx.ReadTx, "", d); err != nil {
		return model.ScheduleEntry{}, err
	}
	var entry model.ScheduleEntry
	d.Apply(&entry)
	entry.CreatedBy = s.Actor()
	return tx.InsertScheduleEntry(entry)
}

// ReviseTx is Revise inside a caller-owned transaction. The broker load link
// cannot change. A linked entry stays on its load's carrier and the load
// follows the entry's truck and driver.
func (e *Engine) ReviseTx(tx *store.Tx, id string, d model.ScheduleDraft) (model.ScheduleEntry, error) {
	entry, err := tx.ScheduleEntry(id)
	if err != nil {
		return model.ScheduleEntry{}, err
	}
	if d.BrokerLoadID != "" && d.BrokerLoadID != entry.BrokerLoadID {
		return model.ScheduleEntry{}, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrLoadLinked, "broker_load_id cannot be changed").
			WithDetails(map[string]string{"broker_load_id": "cannot be changed"})
	}
	d.BrokerLoadID = entry.BrokerLoadID
	if err := e.check(&tx.ReadTx, id, d); err != nil {
		return model.ScheduleEntry{}, err
	}
	if d.BrokerLoadID != "" {
		if err := e.followLoad(tx, d); err != nil {
			return model.ScheduleEntry{}, err
		}
	}
	d.Apply(&entry)
	if err := tx.PutScheduleEntry(entry); err != nil {
		return model.ScheduleEntry{}, err
	}
	return entry, nil
}

func (e *Engine) followLoad(tx *store.Tx, d model.ScheduleDraft) error {
	load, err := tx.BrokerLoad(d.BrokerLoadID)
	if err != nil {
		return err
	}
	if load.AssignedCarrierID == "" {
		return nil
	}
	truck, err := tx.Truck(d.TruckID)
	if err != nil {
		return err
	}
	if truck.CarrierID != load.AssignedCarrierID {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrCarrierMismatch, "truck belongs to another carrier").
			WithDetails(map[string]string{"truck_id": truck.ID, "carrier_id": load.AssignedCarrierID})
	}
	if load.AssignedTruckID == d.TruckID && load.AssignedDriverID == d.DriverID {
		return nil
	}
	load.AssignedTruckID = d.TruckID
	load.AssignedDriverID = d.DriverID
	return tx.PutBrokerLoad(load)
}

func (e *Engine) check(tx *store.ReadTx, selfID string, d model.ScheduleDraft) error {
	if err := validateDraft(d); err != nil {
		return err
	}
	truck, err := tx.Truck(d.TruckID)
	if err != nil {
		return err
	}
	vs := e.Violations(tx.ScheduleEntriesByTruck(d.TruckID), selfID, d)
	if len(vs) == 0 {
		return nil
	}
	first := vs[0]
	e.log.Warnf("schedule entry %q on truck %s rejected: %s", d.Title, truck.Name, first.Message)
	reason := ErrScheduleConflict
	if first.Rule == RuleHOS {
		reason = ErrHOSViolation
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, fmt.Errorf("%w: %s", reason, first.Message), first.Message).
		WithDetails(map[string]any{"violations": vs})
}

// Violations lists every rule d breaks against the entries already on its
// truck, overlap first. selfID excludes the entry being revised.
func (e *Engine) Violations(existing []model.ScheduleEntry, selfID string, d model.ScheduleDraft) []Violation {
	var vs []Violation
	for _, other := range existing {
		if other.ID == selfID || !other.Overlaps(d.Start, d.End) {
			continue
		}
		if d.IsPartialLoad && other.IsPartialLoad {
			continue
		}
		vs = append(vs, Violation{
			Rule:          RuleOverlap,
			Message:       fmt.Sprintf("truck %s is already scheduled for %q during this time", d.TruckID, other.Title),
			Title:         other.Title,
			TruckID:       d.TruckID,
			ConflictingID: other.ID,
		})
	}
	if !d.IsTeamDriven && d.End.Sub(d.Start) > e.maxSolo {
		vs = append(vs, Violation{
			Rule: RuleHOS,
			Message: fmt.Sprintf("%q runs %.1fh which exceeds the %.0fh single-driver limit",
				d.Title, d.End.Sub(d.Start).Hours(), e.maxSolo.Hours()),
			Title:   d.Title,
			TruckID: d.TruckID,
		})
	}
	return vs
}

func validateDraft(d model.ScheduleDraft) error {
	if err := store.Validate(d); err != nil {
		return err
	}
	if d.Type != "" && !d.Type.IsValid() {
		return store.Invalid("schedule_type", "is invalid")
	}
	if d.LoadValue != nil && !d.LoadValue.IsPositive() {
		return store.Invalid("load_value", "must be positive")
	}
	if d.End.Before(d.Start) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidTimeRange, "end must not be before start").
			WithDetails(map[string]string{"end": "must not be before start"})
	}
	return nil
}

// ViolationsOf extracts the violations carried by a rejection from Propose
// or Revise. It returns nil for any other error.
func ViolationsOf(err error) []Violation {
	e := pkgerrors.As(err)
	if e == nil {
		return nil
	}
	details, ok := e.Details().(map[string]any)
	if !ok {
		return nil
	}
	vs, _ := details["violations"].([]Violation)
	return vs
}
