// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters and to the external session engine.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [Session]: the running emulation session (serialize, restore, capture, events)
//   - [Subscription]: one cancellable observation of the session event stream
//   - [SlotStore]: numbered slot persistence (blob + thumbnail)
//   - [AutoSaveStore]: the single auto-save record
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement these interfaces
// with concrete implementations (file system, zerolog, etc.).
package ports
