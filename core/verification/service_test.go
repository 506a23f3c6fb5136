package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetledger/core/model"
	"github.com/kilianp07/fleetledger/core/store"
	"github.com/kilianp07/fleetledger/infra/logger"
)

var checked = time.Date(2025, 7, 21, 12, 0, 0, 0, time.UTC)

func newCarrier(t *testing.T, st *store.Store, in model.CarrierInput) string {
	t.Helper()
	var id string
	require.NoError(t, st.Update(func(tx *store.Tx) error {
		c, err := tx.CreateCarrier(in)
		id = c.ID
		return err
	}))
	return id
}

func newService(t *testing.T, st *store.Store, v Verifier, timeout time.Duration) *Service {
	t.Helper()
	svc, err := NewService(st, v, timeout, func() time.Time { return checked }, logger.NopLogger{})
	require.NoError(t, err)
	return svc
}

func TestVerifyAppliesResult(t *testing.T) {
	st := store.New()
	id := newCarrier(t, st, model.CarrierInput{Name: "Acme", MCNumber: "MC123", Phone: "555"})
	var seen Request
	svc := newService(t, st, VerifierFunc(func(_ context.Context, req Request) (Result, error) {
		seen = req
		return Result{Status: model.AuthorityVerifiedActive, Details: model.CarrierDetails{LegalName: "ACME HAULING LLC", DOTNumber: "99"}}, nil
	}), 0)

	out, err := svc.VerifyCarrier(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, Request{Kind: IdentifierMC, Value: "MC123"}, seen)
	assert.Equal(t, model.AuthorityVerifiedActive, out.Carrier.AuthorityStatus)
	assert.Equal(t, "ACME HAULING LLC", out.Carrier.LegalName)
	assert.Equal(t, "99", out.Carrier.DOTNumber)
	assert.Equal(t, "555", out.Carrier.Phone, "empty details keep existing values")
	require.NotNil(t, out.Carrier.LastChecked)
	assert.Equal(t, checked, *out.Carrier.LastChecked)
}

func TestVerifySetsPendingDuringCall(t *testing.T) {
	st := store.New()
	id := newCarrier(t, st, model.CarrierInput{Name: "Acme", DOTNumber: "42"})
	svc := newService(t, st, VerifierFunc(func(context.Context, Request) (Result, error) {
		_ = st.View(func(tx *store.ReadTx) error {
			c, _ := tx.Carrier(id)
			assert.Equal(t, model.AuthorityPending, c.AuthorityStatus)
			return nil
		})
		return Result{Status: model.AuthorityVerifiedInactive}, nil
	}), 0)
	out, err := svc.VerifyCarrier(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.AuthorityVerifiedInactive, out.Carrier.AuthorityStatus)
}

func TestVerifyFailuresDegrade(t *testing.T) {
	tests := []struct {
		name string
		v    VerifierFunc
	}{
		{"transport error", func(context.Context, Request) (Result, error) { return Result{}, errors.New("connection refused") }},
		{"timeout", func(ctx context.Context, _ Request) (Result, error) {
			<-ctx.Done()
			return Result{}, ctx.Err()
		}},
		{"unexpected status", func(context.Context, Request) (Result, error) {
			return Result{Status: model.AuthorityPending}, nil
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := store.New()
			id := newCarrier(t, st, model.CarrierInput{Name: "Acme", MCNumber: "1"})
			svc := newService(t, st, tc.v, 10*time.Millisecond)
			out, err := svc.VerifyCarrier(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, model.AuthorityVerificationFailed, out.Carrier.AuthorityStatus)
			assert.NotEmpty(t, out.Result.Message)
		})
	}
}

func TestLateResultDiscarded(t *testing.T) {
	st := store.New()
	id := newCarrier(t, st, model.CarrierInput{Name: "Acme", MCNumber: "1"})
	svc := newService(t, st, VerifierFunc(func(context.Context, Request) (Result, error) {
		require.NoError(t, st.Update(func(tx *store.Tx) error {
			_, err := tx.DeleteCarrier(id)
			return err
		}))
		return Result{Status: model.AuthorityVerifiedActive}, nil
	}), 0)
	out, err := svc.VerifyCarrier(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, out.Applied)
	_ = st.View(func(tx *store.ReadTx) error {
		assert.Empty(t, tx.Carriers())
		return nil
	})
}

func TestVerifyNeedsIdentifier(t *testing.T) {
	st := store.New()
	id := newCarrier(t, st, model.CarrierInput{Name: "Acme"})
	svc := newService(t, st, VerifierFunc(func(context.Context, Request) (Result, error) {
		t.Fatal("verifier must not be called")
		return Result{}, nil
	}), 0)
	_, err := svc.VerifyCarrier(context.Background(), id)
	assert.ErrorIs(t, err, ErrNoIdentifier)
}
