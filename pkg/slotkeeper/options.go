package slotkeeper

import logAdapter "github.com/bft-labs/slotkeeper/internal/adapters/log"

// Option configures optional behavior of a Manager.
type Option func(*options)

type options struct {
	logger        Logger
	eventHandler  EventHandler
	plugins       []Plugin
	instanceState []byte
}

func defaultOptions() options {
	return options{
		logger: logAdapter.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler sets a handler for slotkeeper events.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the Manager starts.
// Plugins are initialized in registration order and shut down in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithInstanceState hands over a snapshot taken by a previous Manager's
// InstanceState, typically across a surface re-creation. At Start it is
// preferred over the auto-save.
func WithInstanceState(blob []byte) Option {
	return func(o *options) {
		o.instanceState = append([]byte(nil), blob...)
	}
}
