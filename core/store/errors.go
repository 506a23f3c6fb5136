package store

import (
	"errors"
	"fmt"

	pkgerrors "github.com/kilianp07/fleetledger/pkg/errors"
)

// ErrNotFound is wrapped by every lookup of an id that does not resolve.
var ErrNotFound = errors.New("not found")

func notFound(kind, id string) error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, fmt.Errorf("%s %q: %w", kind, id, ErrNotFound), kind+" not found").
		WithDetails(map[string]string{"kind": kind, "id": id})
}
