package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bft-labs/slotkeeper/internal/domain"
	"github.com/bft-labs/slotkeeper/internal/ports"
)

// AutoSavePath returns the full path of the auto-save record.
func (s *SlotStore) AutoSavePath() string {
	return filepath.Join(s.root, autoSaveName)
}

// SaveAuto atomically replaces the auto-save record.
func (s *SlotStore) SaveAuto(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.write(s.AutoSavePath(), data); err != nil {
		return ioError("write auto-save", err)
	}
	s.logger.Debug("auto-save written", ports.Int("bytes", len(data)))
	return nil
}

// LoadAuto returns the auto-save record or domain.ErrNotFound.
func (s *SlotStore) LoadAuto(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.AutoSavePath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("auto-save: %w", domain.ErrNotFound)
		}
		return nil, ioError("read auto-save", err)
	}
	return data, nil
}

// ClearAuto removes the auto-save record. A missing record is not an error.
func (s *SlotStore) ClearAuto(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := removeIfExists(s.AutoSavePath()); err != nil {
		return ioError("clear auto-save", err)
	}
	return nil
}

// AutoStat returns fresh metadata for the auto-save record.
func (s *SlotStore) AutoStat() (domain.AutoSaveRecord, error) {
	info, err := os.Stat(s.AutoSavePath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.AutoSaveRecord{}, nil
		}
		return domain.AutoSaveRecord{}, ioError("stat auto-save", err)
	}
	if !info.Mode().IsRegular() {
		return domain.AutoSaveRecord{}, nil
	}
	return domain.AutoSaveRecord{
		HasBlob:        true,
		BlobModifiedAt: info.ModTime(),
		BlobSize:       info.Size(),
	}, nil
}
