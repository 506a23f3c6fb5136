package notify

import (
	"github.com/kilianp07/fleetledger/core/factory"
	"github.com/kilianp07/fleetledger/infra/logger"
)

var notifierRegistry = factory.NewRegistry[Notifier]()

func init() {
	_ = RegisterNotifier("nop", func(map[string]any) (Notifier, error) {
		return NopNotifier{}, nil
	})
	_ = RegisterNotifier("log", func(conf map[string]any) (Notifier, error) {
		var c struct {
			Component string `json:"component"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Component == "" {
			c.Component = "notifications"
		}
		return NewLogNotifier(logger.New(c.Component)), nil
	})
}

// RegisterNotifier adds a notifier factory identified by name.
func RegisterNotifier(name string, f factory.Factory[Notifier]) error {
	return notifierRegistry.Register(name, f)
}

// NewNotifier creates the configured Notifier. An empty type selects the
// NopNotifier.
func NewNotifier(cfg factory.ModuleConfig) (Notifier, error) {
	if cfg.Type == "" {
		return NopNotifier{}, nil
	}
	return notifierRegistry.Create(cfg)
}
