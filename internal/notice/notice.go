// Package notice turns slotkeeper errors into short user-facing messages.
package notice

import (
	"context"
	"errors"
	"fmt"

	"github.com/bft-labs/slotkeeper/internal/domain"
)

// Op represents an operation that can fail.
type Op string

// Operation constants.
const (
	OpSave       Op = "save"
	OpLoad       Op = "load"
	OpDelete     Op = "delete save"
	OpAutoSave   Op = "auto-save"
	OpClearAuto  Op = "clear auto-save"
	OpList       Op = "list saves"
	OpScreenshot Op = "take screenshot"
)

// Text returns the short message for err, or "" for nil.
func Text(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrNotFound):
		return "no save found"
	case errors.Is(err, domain.ErrCorruptState):
		return "save could not be read"
	case errors.Is(err, domain.ErrSerialize):
		return "game state could not be captured"
	case errors.Is(err, domain.ErrIO):
		return "storage unavailable"
	case errors.Is(err, domain.ErrInvalidSlot):
		return "no such slot"
	case errors.Is(err, domain.ErrCaptureFailed):
		return "screenshot unavailable"
	case errors.Is(err, domain.ErrLoadPending):
		return "a load is already in progress"
	case errors.Is(err, domain.ErrNoSession), errors.Is(err, domain.ErrNotRunning):
		return "game is not running"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "something went wrong"
	}
}

// Format creates a user-facing failure message for op.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %s", op, Text(err))
}

// Saved returns the confirmation shown after a successful capture.
func Saved(id domain.SlotID) string {
	if id.IsQuick() {
		return "Quicksaved"
	}
	return fmt.Sprintf("Saved to %s", id)
}

// Loaded returns the confirmation shown after a successful restore.
func Loaded(id domain.SlotID) string {
	if id.IsQuick() {
		return "Quicksave loaded"
	}
	return fmt.Sprintf("Loaded %s", id)
}

// Restored returns the confirmation for a deferred load that did not target
// a numbered slot. Opening the load menu has no confirmation.
func Restored(kind domain.SourceKind) string {
	switch kind {
	case domain.SourceAutoSave:
		return "Resumed from auto-save"
	case domain.SourceExplicitFile:
		return "Save file loaded"
	case domain.SourceInstanceState:
		return "Game restored"
	default:
		return ""
	}
}
