// Package factory provides the generic registry used to build pluggable
// modules, such as metrics sinks and notifiers, from configuration. A module
// is described by a type string and a map of raw settings; its factory
// decodes the settings into a typed struct and returns the implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[notify.Notifier]()
//	reg.Register("log", func(conf map[string]any) (notify.Notifier, error) {
//	    var c struct{ Component string `json:"component"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return notify.NewLogNotifier(logger.New(c.Component)), nil
//	})
//	n, err := reg.Create(factory.ModuleConfig{Type: "log"})
package factory
