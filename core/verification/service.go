// Package verification records operating-authority checks performed by an
// external collaborator. The collaborator is called without holding the
// store lock and a result for a carrier deleted in the meantime is dropped.
package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/fleetledger/core/logger"
	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/store"
	pkgerrors "github.com/kilianp07/fleetledger/pkg/errors"
)

// ErrNoIdentifier is returned when a carrier has neither an MC nor a DOT number.
var ErrNoIdentifier = errors.New("carrier has no MC or DOT number")

// IdentifierKind selects the registry number used for a lookup.
type IdentifierKind string

const (
	IdentifierMC  IdentifierKind = "mc"
	IdentifierDOT IdentifierKind = "dot"
)

// Request identifies the carrier to look up.
type Request struct {
	Kind  IdentifierKind `json:"kind"`
	Value string         `json:"value"`
}

// Result is what the collaborator reports.
type Result struct {
	Status  model.AuthorityStatus `json:"status"`
	Details model.CarrierDetails  `json:"details"`
	Message string                `json:"message,omitempty"`
}

// Verifier looks up a carrier's operating authority.
type Verifier interface {
	Verify(ctx context.Context, req Request) (Result, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, req Request) (Result, error)

func (f VerifierFunc) Verify(ctx context.Context, req Request) (Result, error) { return f(ctx, req) }

// Outcome reports what VerifyCarrier did.
type Outcome struct {
	Carrier model.Carrier `json:"carrier"`
	Result  Result        `json:"result"`
	// Applied is false when the carrier disappeared before the result came back.
	Applied bool `json:"applied"`
}

// DefaultTimeout bounds a collaborator call.
const DefaultTimeout = 10 * time.Second

// Service applies verification results to carriers.
type Service struct {
	store    *store.Store
	verifier Verifier
	timeout  time.Duration
	now      func() time.Time
	log      logger.Logger
}

// NewService creates a Service. A nil clock uses time.Now.
func NewService(st *store.Store, v Verifier, timeout time.Duration, now func() time.Time, log logger.Logger) (*Service, error) {
	if st == nil || v == nil {
		return nil, fmt.Errorf("verification: store and verifier are required")
	}
	if log == nil {
		return nil, fmt.Errorf("verification: logger is required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: st, verifier: v, timeout: timeout, now: now, log: log}, nil
}

// RequestFor picks the identifier used to verify c, preferring the MC number.
func RequestFor(c model.Carrier) (Request, bool) {
	switch {
	case c.MCNumber != "":
		return Request{Kind: IdentifierMC, Value: c.MCNumber}, true
	case c.DOTNumber != "":
		return Request{Kind: IdentifierDOT, Value: c.DOTNumber}, true
	}
	return Request{}, false
}

// VerifyCarrier marks the carrier Pending Verification, asks the
// collaborator and records the returned status. Collaborator errors and
// timeouts are recorded as Verification Failed and never returned.
func (s *Service) VerifyCarrier(ctx context.Context, carrierID string) (Outcome, error) {
	var req Request
	err := s.store.Update(func(tx *store.Tx) error {
		c, err := tx.Carrier(carrierID)
		if err != nil {
			return err
		}
		var ok bool
		if req, ok = RequestFor(c); !ok {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrNoIdentifier, "carrier has no MC or DOT number").
				WithDetails(map[string]string{"mc_number": "is required without dot_number"})
		}
		c.AuthorityStatus = model.AuthorityPending
		return tx.PutCarrier(c)
	})
	if err != nil {
		return Outcome{}, err
	}

	res := s.call(ctx, req)

	out := Outcome{Result: res}
	err = s.store.Update(func(tx *store.Tx) error {
		c, err := tx.Carrier(carrierID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		now := s.now()
		c.AuthorityStatus = res.Status
		c.LastChecked = &now
		res.Details.Merge(&c)
		if err := tx.PutCarrier(c); err != nil {
			return err
		}
		out.Carrier = c
		out.Applied = true
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	if !out.Applied {
		s.log.Warnf("carrier %s deleted during verification, result discarded", carrierID)
	}
	return out, nil
}

func (s *Service) call(ctx context.Context, req Request) Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res, err := s.verifier.Verify(ctx, req)
	if err != nil {
		s.log.Errorf("verification of %s %s failed: %v", req.Kind, req.Value, err)
		return Result{Status: model.AuthorityVerificationFailed, Message: err.Error()}
	}
	switch res.Status {
	case model.AuthorityVerifiedActive, model.AuthorityVerifiedInactive, model.AuthorityVerificationFailed:
		return res
	}
	s.log.Warnf("verification of %s %s returned unexpected status %q", req.Kind, req.Value, res.Status)
	return Result{Status: model.AuthorityVerificationFailed, Message: fmt.Sprintf("unexpected status %q", res.Status)}
}
