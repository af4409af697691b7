// Package fs implements slotkeeper's storage ports on the local file system.
//
// Every save lives directly under one root directory:
//
//	save_slot_<n>.sav    state blob for slot n (0 is the quicksave)
//	save_slot_<n>.png    thumbnail for slot n
//	auto_save_state.bin  auto-save blob
//	temp_screenshot.png  screenshot staged before the slot is chosen
//
// All writes go through a temp file in the same directory followed by a rename.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bft-labs/slotkeeper/internal/domain"
	"github.com/bft-labs/slotkeeper/internal/ports"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// SlotStore implements ports.SlotStore and ports.AutoSaveStore.
// It is the only component that touches save paths.
type SlotStore struct {
	root        string
	manualSlots int
	logger      ports.Logger
}

// NewSlotStore creates a store rooted at root with slots 0..manualSlots.
func NewSlotStore(root string, manualSlots int, logger ports.Logger) *SlotStore {
	if manualSlots <= 0 {
		manualSlots = domain.DefaultManualSlots
	}
	return &SlotStore{root: root, manualSlots: manualSlots, logger: logger}
}

// Root returns the save root directory.
func (s *SlotStore) Root() string { return s.root }

// ManualSlots returns the number of manual slots.
func (s *SlotStore) ManualSlots() int { return s.manualSlots }

// BlobPath returns the full path of a slot's blob.
func (s *SlotStore) BlobPath(id domain.SlotID) string {
	return filepath.Join(s.root, BlobName(id))
}

func (s *SlotStore) thumbPath(id domain.SlotID) string {
	return filepath.Join(s.root, ThumbnailName(id))
}

// WriteBlob atomically replaces the slot's state blob.
func (s *SlotStore) WriteBlob(ctx context.Context, id domain.SlotID, data []byte) error {
	if err := s.checkID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.write(s.BlobPath(id), data); err != nil {
		return ioError("write "+id.String(), err)
	}
	s.logger.Debug("blob written", ports.Any("slot", id), ports.Int("bytes", len(data)))
	return nil
}

// WriteThumbnail atomically replaces the slot's thumbnail.
// Empty data leaves any existing thumbnail untouched.
func (s *SlotStore) WriteThumbnail(ctx context.Context, id domain.SlotID, png []byte) error {
	if err := s.checkID(id); err != nil {
		return err
	}
	if len(png) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.write(s.thumbPath(id), png); err != nil {
		return ioError("write thumbnail for "+id.String(), err)
	}
	return nil
}

// PromoteThumbnail renames a staged screenshot over the slot's thumbnail.
func (s *SlotStore) PromoteThumbnail(ctx context.Context, id domain.SlotID, stagedPath string) error {
	if err := s.checkID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(stagedPath, s.thumbPath(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("staged screenshot: %w", domain.ErrNotFound)
		}
		return ioError("promote thumbnail for "+id.String(), err)
	}
	return nil
}

// ReadBlob returns the slot's state blob.
func (s *SlotStore) ReadBlob(ctx context.Context, id domain.SlotID) ([]byte, error) {
	if err := s.checkID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.BlobPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", id, domain.ErrNotFound)
		}
		return nil, ioError("read "+id.String(), err)
	}
	return data, nil
}

// ReadFile returns a named save file under the root.
// Names that are not plain file names, or that start with a dot, are rejected.
func (s *SlotStore) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: file name %q", domain.ErrInvalidSlot, name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, domain.ErrNotFound)
		}
		return nil, ioError("read "+name, err)
	}
	return data, nil
}

// ThumbnailPath returns the thumbnail path when both blob and thumbnail exist.
func (s *SlotStore) ThumbnailPath(id domain.SlotID) (string, bool) {
	if s.checkID(id) != nil || !s.Exists(id) {
		return "", false
	}
	p := s.thumbPath(id)
	if !isRegular(p) {
		return "", false
	}
	return p, true
}

// Exists reports whether the slot has a blob.
func (s *SlotStore) Exists(id domain.SlotID) bool {
	if s.checkID(id) != nil {
		return false
	}
	return isRegular(s.BlobPath(id))
}

// Delete removes the slot's blob and thumbnail. Missing files are not an error.
func (s *SlotStore) Delete(ctx context.Context, id domain.SlotID) error {
	if err := s.checkID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// Thumbnail first: an interrupted delete leaves a blob without a
	// thumbnail, never the reverse.
	if err := removeIfExists(s.thumbPath(id)); err != nil {
		return ioError("delete thumbnail for "+id.String(), err)
	}
	if err := removeIfExists(s.BlobPath(id)); err != nil {
		return ioError("delete "+id.String(), err)
	}
	s.logger.Debug("slot deleted", ports.Any("slot", id))
	return nil
}

// Stat returns fresh metadata for one slot.
func (s *SlotStore) Stat(id domain.SlotID) (domain.Slot, error) {
	if err := s.checkID(id); err != nil {
		return domain.Slot{}, err
	}
	slot := domain.Slot{ID: id}

	info, err := os.Stat(s.BlobPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return slot, nil
		}
		return slot, ioError("stat "+id.String(), err)
	}
	if !info.Mode().IsRegular() {
		return slot, nil
	}
	slot.HasBlob = true
	slot.BlobModifiedAt = info.ModTime()
	slot.BlobSize = info.Size()
	slot.HasThumbnail = isRegular(s.thumbPath(id))
	return slot, nil
}

// List returns fresh metadata for ids, ascending and without duplicates.
func (s *SlotStore) List(ids []domain.SlotID) ([]domain.Slot, error) {
	sorted := append([]domain.SlotID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	slots := make([]domain.Slot, 0, len(sorted))
	for i, id := range sorted {
		if i > 0 && sorted[i-1] == id {
			continue
		}
		slot, err := s.Stat(id)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// WriteStaged atomically stores a screenshot taken before the slot is known.
func (s *SlotStore) WriteStaged(ctx context.Context, png []byte) error {
	if len(png) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.write(s.StagingPath(), png); err != nil {
		return ioError("write staged screenshot", err)
	}
	return nil
}

// StagingPath returns the staged screenshot path.
func (s *SlotStore) StagingPath() string {
	return filepath.Join(s.root, stagingName)
}

// DiscardStaged removes the staged screenshot if present.
func (s *SlotStore) DiscardStaged() error {
	if err := removeIfExists(s.StagingPath()); err != nil {
		return ioError("discard staged screenshot", err)
	}
	return nil
}

func (s *SlotStore) checkID(id domain.SlotID) error {
	if id < domain.QuickSlot || int(id) > s.manualSlots {
		return fmt.Errorf("%w: %d not in [0, %d]", domain.ErrInvalidSlot, int(id), s.manualSlots)
	}
	return nil
}

func (s *SlotStore) write(path string, data []byte) error {
	if err := os.MkdirAll(s.root, dirPerm); err != nil {
		return err
	}
	return atomicWriteFile(path, data, filePerm)
}

func ioError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrIO, err)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

var (
	_ ports.SlotStore     = (*SlotStore)(nil)
	_ ports.AutoSaveStore = (*SlotStore)(nil)
)
