package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SourceKind selects what a deferred load restores from.
type SourceKind int

const (
	// SourceExplicitFile restores a named save file under the save root.
	SourceExplicitFile SourceKind = iota + 1
	// SourceAutoSave restores the auto-save record.
	SourceAutoSave
	// SourceMostRecentSlot restores the newest slot among Candidates.
	SourceMostRecentSlot
	// SourceLoadMenu opens the slot-selection surface instead of restoring.
	SourceLoadMenu
	// SourceInstanceState restores an in-memory blob carried across a
	// session re-creation.
	SourceInstanceState
	// SourceSlot restores one numbered slot chosen by the user.
	SourceSlot
)

// String returns a human-readable representation of the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourceExplicitFile:
		return "ExplicitFile"
	case SourceAutoSave:
		return "AutoSave"
	case SourceMostRecentSlot:
		return "MostRecentSlot"
	case SourceLoadMenu:
		return "LoadMenu"
	case SourceInstanceState:
		return "InstanceState"
	case SourceSlot:
		return "Slot"
	default:
		return "Unknown"
	}
}

// PendingLoadRequest is a restore intent created at session start.
// It is consumed exactly once by the deferred loader.
type PendingLoadRequest struct {
	Kind SourceKind

	// File is the save file name for SourceExplicitFile.
	File string

	// Candidates are the slots considered by SourceMostRecentSlot and
	// listed by SourceLoadMenu.
	Candidates []SlotID

	// Blob is the in-memory state for SourceInstanceState.
	Blob []byte

	// Slot is the slot restored by SourceSlot.
	Slot SlotID
}

// Validate checks that the request carries the payload its kind needs.
func (r PendingLoadRequest) Validate() error {
	switch r.Kind {
	case SourceExplicitFile:
		if r.File == "" {
			return fmt.Errorf("%w: explicit file request without a file name", ErrInvalidConfig)
		}
		if r.File != filepath.Base(r.File) || strings.HasPrefix(r.File, ".") {
			return fmt.Errorf("%w: file name %q must be a plain name under the save root", ErrInvalidConfig, r.File)
		}
	case SourceMostRecentSlot, SourceLoadMenu:
		if len(r.Candidates) == 0 {
			return fmt.Errorf("%w: %s request without candidate slots", ErrInvalidConfig, r.Kind)
		}
	case SourceInstanceState:
		if len(r.Blob) == 0 {
			return fmt.Errorf("%w: instance state request without a blob", ErrInvalidConfig)
		}
	case SourceSlot:
		if r.Slot < QuickSlot {
			return fmt.Errorf("%w: slot %d", ErrInvalidConfig, int(r.Slot))
		}
	case SourceAutoSave:
	default:
		return fmt.Errorf("%w: unknown source kind %d", ErrInvalidConfig, int(r.Kind))
	}
	return nil
}

// LoadOutcome reports what a deferred load did.
type LoadOutcome struct {
	Kind SourceKind

	// Slot is the restored slot for SourceMostRecentSlot and SourceSlot.
	Slot SlotID

	// Err is nil on success, otherwise ErrNotFound, ErrCorruptState or an
	// ErrIO-wrapped failure. Cancelled loads never produce an outcome.
	Err error
}

// OK reports whether the load succeeded.
func (o LoadOutcome) OK() bool { return o.Err == nil }
