package notify

import (
	"context"

	"github.com/kilianp07/fleetledger/core/logger"
)

// LogNotifier writes notifications to a logger instead of delivering them.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	to := "carrier " + n.CarrierID
	if n.DriverID != "" {
		to = "driver " + n.DriverID
	}
	l.log.Infof("notify %s [%s] %s: %s", to, n.Kind, n.Subject, n.Message)
	return nil
}
