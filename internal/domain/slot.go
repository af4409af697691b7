package domain

import (
	"strconv"
	"time"
)

// SlotID identifies a save slot. Zero is the quicksave; 1..N are manual slots.
type SlotID int

// QuickSlot is the reserved quicksave slot.
const QuickSlot SlotID = 0

// DefaultManualSlots is the number of manual slots when none is configured.
const DefaultManualSlots = 5

// IsQuick reports whether id is the quicksave slot.
func (id SlotID) IsQuick() bool { return id == QuickSlot }

// String returns a human-readable slot name.
func (id SlotID) String() string {
	if id == QuickSlot {
		return "quicksave"
	}
	return "slot " + strconv.Itoa(int(id))
}

// Slot describes the on-disk state of one save slot at the time it was listed.
type Slot struct {
	// ID is the slot number
	ID SlotID

	// HasBlob is true when a complete state blob exists
	HasBlob bool

	// BlobModifiedAt is the blob's modification time; zero when HasBlob is false
	BlobModifiedAt time.Time

	// BlobSize is the blob size in bytes
	BlobSize int64

	// HasThumbnail is true when a thumbnail exists alongside the blob.
	// Never true when HasBlob is false.
	HasThumbnail bool
}

// IsEmpty returns true if the slot holds nothing.
func (s Slot) IsEmpty() bool {
	return !s.HasBlob
}

// AutoSaveRecord describes the single auto-save outside the slot namespace.
type AutoSaveRecord struct {
	HasBlob        bool
	BlobModifiedAt time.Time
	BlobSize       int64
}

// SlotRange returns the ids from..to inclusive in ascending order.
// An inverted range yields nil.
func SlotRange(from, to SlotID) []SlotID {
	if to < from {
		return nil
	}
	ids := make([]SlotID, 0, int(to-from)+1)
	for id := from; id <= to; id++ {
		ids = append(ids, id)
	}
	return ids
}

// ManualSlots returns the manual slot ids 1..n.
func ManualSlots(n int) []SlotID {
	return SlotRange(1, SlotID(n))
}

// AllSlots returns the quicksave followed by the manual slots 1..n.
func AllSlots(n int) []SlotID {
	return SlotRange(QuickSlot, SlotID(n))
}
