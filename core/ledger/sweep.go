package ledger

import (
	"time"

	"github.com/kilianp07/fleetledger/core/bookability"
	"github.com/kilianp07/fleetledger/core/store"
)

// RunBookabilitySweep recomputes every carrier's bookability and stores the
// flags that flipped, typically because a Sent invoice became overdue with
// no command touching it.
func (l *Ledger) RunBookabilitySweep() ([]bookability.Change, error) {
	start := time.Now()
	var changes []bookability.Change
	err := l.store.Update(func(tx *store.Tx) error {
		var err error
		changes, err = l.policy.RecomputeAll(tx)
		return err
	})
	l.observe("bookability_sweep", start, err)
	if err != nil {
		return nil, err
	}
	for _, ch := range changes {
		l.bookabilityChanged(ch)
	}
	if len(changes) > 0 {
		l.log.Infof("bookability sweep: %d carrier(s) changed", len(changes))
	}
	return changes, nil
}
