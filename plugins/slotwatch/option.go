package slotwatch

import "github.com/bft-labs/slotkeeper/pkg/slotkeeper"

// WithSlotWatch returns a slotkeeper Option that reports save directory
// changes through EventHandler.OnSlotsChanged.
//
// Usage:
//
//	m, err := slotkeeper.New(cfg, session,
//	    slotwatch.WithSlotWatch(slotwatch.Config{
//	        DebounceDelay: 250 * time.Millisecond,
//	    }),
//	)
func WithSlotWatch(cfg Config) slotkeeper.Option {
	return slotkeeper.WithPlugin(New(cfg))
}

// WithDefaultSlotWatch enables the watcher with default settings.
func WithDefaultSlotWatch() slotkeeper.Option {
	return WithSlotWatch(DefaultConfig())
}
