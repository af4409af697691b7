package ports

import (
	"context"
	"image"

	"github.com/bft-labs/slotkeeper/internal/domain"
)

// Session is the running emulation session as seen by slotkeeper.
// The session runs on its own goroutines; slotkeeper never owns it.
type Session interface {
	// Serialize returns a full snapshot of the session.
	// An error is distinct from an empty but valid snapshot.
	Serialize() ([]byte, error)

	// Restore loads a snapshot produced by Serialize.
	// Returns false when the blob is rejected as invalid or incompatible.
	Restore(blob []byte) bool

	// CaptureFrame asynchronously grabs the current frame and calls done
	// exactly once, possibly from another goroutine. A nil frame signals
	// failure.
	CaptureFrame(done func(frame image.Image))

	// NativeSize is the session's native output resolution.
	NativeSize() image.Point

	// Subscribe starts a fresh observation of the lifecycle event stream.
	// Each call yields an independent subscription starting at the next event.
	Subscribe(ctx context.Context) (Subscription, error)
}

// Subscription is one observation of the session event stream.
type Subscription interface {
	// Events delivers lifecycle events. The channel is closed when the
	// session tears the stream down.
	Events() <-chan domain.Event

	// Cancel stops delivery; no event is sent after it returns.
	// Safe to call more than once.
	Cancel()
}
