package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/bft-labs/slotkeeper/internal/domain"
	"github.com/bft-labs/slotkeeper/internal/ports"
)

// DefaultCaptureTimeout bounds how long a capture waits for a screenshot.
const DefaultCaptureTimeout = 2 * time.Second

// CoordinatorConfig contains configuration for the capture/restore coordinator.
type CoordinatorConfig struct {
	// CaptureTimeout bounds the wait for the session's screenshot callback.
	// The blob is already on disk when this wait starts.
	CaptureTimeout time.Duration
}

// Coordinator orchestrates captures and restores against one session.
// All operations are serialized by a single mutex.
type Coordinator struct {
	mu sync.Mutex

	config  CoordinatorConfig
	session ports.Session
	slots   ports.SlotStore
	auto    ports.AutoSaveStore
	logger  ports.Logger

	// staged is set while a screenshot taken by StageThumbnail is waiting
	// for the slot it belongs to.
	staged bool
}

// NewCoordinator creates a coordinator with the given dependencies.
func NewCoordinator(
	config CoordinatorConfig,
	session ports.Session,
	slots ports.SlotStore,
	auto ports.AutoSaveStore,
	logger ports.Logger,
) *Coordinator {
	if config.CaptureTimeout <= 0 {
		config.CaptureTimeout = DefaultCaptureTimeout
	}
	return &Coordinator{
		config:  config,
		session: session,
		slots:   slots,
		auto:    auto,
		logger:  logger,
	}
}

// CaptureResult describes a completed capture.
type CaptureResult struct {
	Slot      domain.SlotID
	Bytes     int
	Thumbnail bool
}

// CaptureToSlot serializes the session into slot id and then tries to attach
// a thumbnail. Thumbnail failures are logged and never fail the capture.
func (c *Coordinator) CaptureToSlot(ctx context.Context, id domain.SlotID) (CaptureResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	blob, err := c.serialize()
	if err != nil {
		return CaptureResult{}, err
	}
	if err := c.slots.WriteBlob(ctx, id, blob); err != nil {
		return CaptureResult{}, err
	}

	res := CaptureResult{Slot: id, Bytes: len(blob)}
	if err := c.attachThumbnail(ctx, id); err != nil {
		c.logger.Warn("thumbnail skipped", ports.Any("slot", id), ports.Err(err))
	} else {
		res.Thumbnail = true
	}

	c.logger.Info("slot saved",
		ports.Any("slot", id),
		ports.Int("bytes", res.Bytes),
		ports.Bool("thumbnail", res.Thumbnail),
	)
	return res, nil
}

// attachThumbnail runs strictly after the blob write.
func (c *Coordinator) attachThumbnail(ctx context.Context, id domain.SlotID) error {
	if c.staged {
		c.staged = false
		err := c.slots.PromoteThumbnail(ctx, id, c.slots.StagingPath())
		if err == nil {
			return nil
		}
		c.logger.Debug("staged screenshot unusable, capturing live", ports.Err(err))
		_ = c.slots.DiscardStaged()
	}

	png, err := c.captureThumbnail(ctx)
	if err != nil {
		return err
	}
	return c.slots.WriteThumbnail(ctx, id, png)
}

// StageThumbnail captures a screenshot before the target slot is known,
// typically when the save menu opens. The next CaptureToSlot consumes it.
func (c *Coordinator) StageThumbnail(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	png, err := c.captureThumbnail(ctx)
	if err != nil {
		c.staged = false
		_ = c.slots.DiscardStaged()
		return err
	}
	if err := c.slots.WriteStaged(ctx, png); err != nil {
		c.staged = false
		return err
	}
	c.staged = true
	return nil
}

// DiscardStaged drops a staged screenshot that will not be used.
func (c *Coordinator) DiscardStaged() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.staged = false
	return c.slots.DiscardStaged()
}

// captureThumbnail asks the session for a frame and waits at most
// CaptureTimeout for the callback. A panicking session is a capture failure.
func (c *Coordinator) captureThumbnail(ctx context.Context) (png []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			png = nil
			err = fmt.Errorf("%w: capture panicked: %v", domain.ErrCaptureFailed, r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.config.CaptureTimeout)
	defer cancel()

	// Buffered so a late callback never blocks the session.
	frames := make(chan image.Image, 1)
	c.session.CaptureFrame(func(frame image.Image) {
		select {
		case frames <- frame:
		default:
		}
	})

	select {
	case frame := <-frames:
		return encodeThumbnail(frame, c.session.NativeSize())
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", domain.ErrCaptureFailed, ctx.Err())
	}
}

// RestoreFromSlot loads slot id into the session.
// Returns domain.ErrNotFound when the slot is empty and domain.ErrCorruptState
// when the session rejects the blob. The blob is never removed.
func (c *Coordinator) RestoreFromSlot(ctx context.Context, id domain.SlotID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restoreSlot(ctx, id)
}

func (c *Coordinator) restoreSlot(ctx context.Context, id domain.SlotID) error {
	blob, err := c.slots.ReadBlob(ctx, id)
	if err != nil {
		return err
	}
	return c.restore(ctx, id.String(), blob)
}

// RestoreFromMostRecent restores the newest slot among candidates.
func (c *Coordinator) RestoreFromMostRecent(ctx context.Context, candidates []domain.SlotID) (domain.SlotID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := ResolveMostRecent(c.slots, candidates)
	if !ok {
		return 0, fmt.Errorf("no slot among %v: %w", candidates, domain.ErrNotFound)
	}
	return id, c.restoreSlot(ctx, id)
}

// RestoreFile restores a named save file under the save root.
func (c *Coordinator) RestoreFile(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	blob, err := c.slots.ReadFile(ctx, name)
	if err != nil {
		return err
	}
	return c.restore(ctx, name, blob)
}

// RestoreAuto restores the auto-save record.
func (c *Coordinator) RestoreAuto(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	blob, err := c.auto.LoadAuto(ctx)
	if err != nil {
		return err
	}
	return c.restore(ctx, "auto-save", blob)
}

// RestoreBlob restores an in-memory snapshot.
func (c *Coordinator) RestoreBlob(ctx context.Context, blob []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restore(ctx, "instance state", blob)
}

func (c *Coordinator) restore(ctx context.Context, source string, blob []byte) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w: restore panicked: %v", source, domain.ErrCorruptState, r)
		}
	}()
	if !c.session.Restore(blob) {
		return fmt.Errorf("%s: %w", source, domain.ErrCorruptState)
	}

	c.logger.Info("state restored", ports.String("source", source), ports.Int("bytes", len(blob)))
	return nil
}

// SaveAuto serializes the session into the auto-save record.
func (c *Coordinator) SaveAuto(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	blob, err := c.serialize()
	if err != nil {
		return err
	}
	return c.auto.SaveAuto(ctx, blob)
}

// ClearAuto discards the auto-save record.
func (c *Coordinator) ClearAuto(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auto.ClearAuto(ctx)
}

// Snapshot serializes the session without writing anything.
func (c *Coordinator) Snapshot() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serialize()
}

// Delete removes a slot.
func (c *Coordinator) Delete(ctx context.Context, id domain.SlotID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots.Delete(ctx, id)
}

// ListSlots returns fresh metadata for ids.
func (c *Coordinator) ListSlots(ids []domain.SlotID) ([]domain.Slot, error) {
	return c.slots.List(ids)
}

func (c *Coordinator) serialize() (blob []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: serialize panicked: %v", domain.ErrSerialize, r)
		}
	}()
	blob, err = c.session.Serialize()
	if err != nil {
		if errors.Is(err, domain.ErrSerialize) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSerialize, err)
	}
	return blob, nil
}
