package ports

import (
	"context"

	"github.com/bft-labs/slotkeeper/internal/domain"
)

// SlotStore persists numbered save slots.
// Implementations must make blob and thumbnail writes atomic with respect to
// readers: a reader sees the previous complete file or the new one.
type SlotStore interface {
	// WriteBlob atomically replaces the slot's state blob.
	WriteBlob(ctx context.Context, id domain.SlotID, data []byte) error

	// WriteThumbnail atomically replaces the slot's thumbnail.
	// Empty data is a no-op that leaves any previous thumbnail in place.
	WriteThumbnail(ctx context.Context, id domain.SlotID, png []byte) error

	// PromoteThumbnail moves a staged screenshot into the slot's thumbnail.
	PromoteThumbnail(ctx context.Context, id domain.SlotID, stagedPath string) error

	// ReadBlob returns the slot's blob or domain.ErrNotFound.
	ReadBlob(ctx context.Context, id domain.SlotID) ([]byte, error)

	// ReadFile returns a named save file under the save root or domain.ErrNotFound.
	ReadFile(ctx context.Context, name string) ([]byte, error)

	// ThumbnailPath returns the thumbnail path when one exists next to a blob.
	ThumbnailPath(id domain.SlotID) (string, bool)

	// Exists reports whether the slot has a blob.
	Exists(id domain.SlotID) bool

	// Delete removes both blob and thumbnail. Deleting an empty slot succeeds.
	Delete(ctx context.Context, id domain.SlotID) error

	// Stat returns fresh metadata for one slot.
	Stat(id domain.SlotID) (domain.Slot, error)

	// List returns fresh metadata for ids in ascending id order.
	List(ids []domain.SlotID) ([]domain.Slot, error)

	// WriteStaged atomically stores a screenshot taken before the slot is known.
	WriteStaged(ctx context.Context, png []byte) error

	// StagingPath is where the staged screenshot lives.
	StagingPath() string

	// DiscardStaged removes the staged screenshot if present.
	DiscardStaged() error
}

// AutoSaveStore persists the single auto-save record.
type AutoSaveStore interface {
	// SaveAuto atomically replaces the auto-save.
	SaveAuto(ctx context.Context, data []byte) error

	// LoadAuto returns the auto-save or domain.ErrNotFound.
	LoadAuto(ctx context.Context) ([]byte, error)

	// ClearAuto removes the auto-save. Clearing a missing auto-save succeeds.
	ClearAuto(ctx context.Context) error

	// AutoStat returns fresh metadata for the auto-save.
	AutoStat() (domain.AutoSaveRecord, error)
}
