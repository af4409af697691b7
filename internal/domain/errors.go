package domain

import "errors"

// Domain errors represent error conditions in the slotkeeper domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrIO is wrapped around every storage failure (disk full, permission
	// denied, missing root). The underlying *fs.PathError stays reachable.
	ErrIO = errors.New("slotkeeper: storage failure")

	// ErrNotFound is returned when a slot, file or auto-save has no blob.
	// Callers branch on it; it is a normal outcome, not a fault.
	ErrNotFound = errors.New("slotkeeper: save not found")

	// ErrCorruptState is returned when the session rejects a blob on restore.
	// The blob is left on disk.
	ErrCorruptState = errors.New("slotkeeper: session rejected save state")

	// ErrSerialize is returned when the session cannot produce a snapshot.
	ErrSerialize = errors.New("slotkeeper: session could not be serialized")

	// ErrCaptureFailed is returned by the thumbnail pipeline. The coordinator
	// never propagates it out of a capture.
	ErrCaptureFailed = errors.New("slotkeeper: screenshot capture failed")

	// ErrInvalidSlot is returned for slot ids outside the configured range.
	ErrInvalidSlot = errors.New("slotkeeper: invalid slot")

	// ErrLoadPending is returned when a deferred load is already awaiting a frame.
	ErrLoadPending = errors.New("slotkeeper: deferred load already pending")

	// ErrNoSession is returned when an operation needs an attached session.
	ErrNoSession = errors.New("slotkeeper: no session attached")

	// ErrAlreadyRunning is returned when Start() is called on a running manager.
	ErrAlreadyRunning = errors.New("slotkeeper: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped manager.
	ErrNotRunning = errors.New("slotkeeper: not running")

	// ErrInvalidTransition is returned for lifecycle transitions the state
	// machine does not allow.
	ErrInvalidTransition = errors.New("slotkeeper: invalid state transition")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("slotkeeper: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("slotkeeper: invalid configuration")
)
