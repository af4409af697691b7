package slotkeeper

import "context"

// Plugin extends a Manager with optional behavior.
// Initialize runs during Start, Shutdown during Stop.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// PluginConfig is what a plugin sees of the Manager.
type PluginConfig struct {
	SaveDir     string
	ManualSlots int
	Logger      Logger
	// Events is never nil.
	Events EventHandler
}
