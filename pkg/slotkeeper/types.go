package slotkeeper

import (
	"github.com/bft-labs/slotkeeper/internal/domain"
	"github.com/bft-labs/slotkeeper/internal/ports"
)

// Re-exported domain types so embedders never import internal packages.
type (
	SlotID         = domain.SlotID
	Slot           = domain.Slot
	AutoSaveRecord = domain.AutoSaveRecord

	// LoadRequest describes a restore to run after the first rendered frame.
	LoadRequest = domain.PendingLoadRequest
	SourceKind  = domain.SourceKind

	// Session is the running emulator core as seen by slotkeeper.
	Session      = ports.Session
	Subscription = ports.Subscription
	SessionEvent = domain.Event
	EventKind    = domain.EventKind

	// Logger is the interface for structured logging.
	Logger   = ports.Logger
	LogField = ports.Field
)

// QuickSlot is the quicksave slot.
const QuickSlot = domain.QuickSlot

const (
	SourceExplicitFile   = domain.SourceExplicitFile
	SourceAutoSave       = domain.SourceAutoSave
	SourceMostRecentSlot = domain.SourceMostRecentSlot
	SourceLoadMenu       = domain.SourceLoadMenu
	SourceInstanceState  = domain.SourceInstanceState
	SourceSlot           = domain.SourceSlot
)

const (
	EventFrameRendered    = domain.EventFrameRendered
	EventSurfaceCreated   = domain.EventSurfaceCreated
	EventSurfaceDestroyed = domain.EventSurfaceDestroyed
	EventPaused           = domain.EventPaused
	EventResumed          = domain.EventResumed
)

// Errors returned by Manager. Check with errors.Is.
var (
	ErrIO              = domain.ErrIO
	ErrNotFound        = domain.ErrNotFound
	ErrCorruptState    = domain.ErrCorruptState
	ErrSerialize       = domain.ErrSerialize
	ErrCaptureFailed   = domain.ErrCaptureFailed
	ErrInvalidSlot     = domain.ErrInvalidSlot
	ErrLoadPending     = domain.ErrLoadPending
	ErrNoSession       = domain.ErrNoSession
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrShutdownTimeout = domain.ErrShutdownTimeout
)
