// Package domain contains the core domain entities and value objects for slotkeeper.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (file system, logging, the session
// engine) and contains only the vocabulary shared by every other layer.
//
// # Entities
//
//   - [Slot]: metadata for one numbered save slot (blob + optional thumbnail)
//   - [AutoSaveRecord]: metadata for the single auto-save outside the slot namespace
//   - [PendingLoadRequest]: a restore intent consumed once by the deferred loader
//   - [Event]: a lifecycle event emitted by the running session
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
