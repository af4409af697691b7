package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bft-labs/slotkeeper/internal/domain"
	"github.com/bft-labs/slotkeeper/internal/notice"
	"github.com/bft-labs/slotkeeper/internal/ports"
)

// LoadState is the state of the deferred loader.
type LoadState int

const (
	LoadIdle LoadState = iota
	LoadAwaitingFirstFrame
	// LoadFiring is held while the one-shot action runs.
	LoadFiring
)

// String returns a human-readable representation of the load state.
func (s LoadState) String() string {
	switch s {
	case LoadIdle:
		return "Idle"
	case LoadAwaitingFirstFrame:
		return "AwaitingFirstFrame"
	case LoadFiring:
		return "Firing"
	default:
		return "Unknown"
	}
}

// LoadHandler receives the result of a deferred load.
// Calls happen on the loader's worker goroutine, never on the session's
// event delivery goroutine.
type LoadHandler interface {
	OnLoadOutcome(outcome domain.LoadOutcome)
	OnOpenLoadMenu(slots []domain.Slot)
}

// DeferredLoader restores a pending request exactly once, after the first
// FrameRendered event that follows Begin.
type DeferredLoader struct {
	mu      sync.Mutex
	state   LoadState
	gen     uint64
	sub     ports.Subscription
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	session ports.Session
	coord   *Coordinator
	handler LoadHandler
	logger  ports.Logger
}

// NewDeferredLoader creates an idle loader bound to one session.
func NewDeferredLoader(session ports.Session, coord *Coordinator, handler LoadHandler, logger ports.Logger) *DeferredLoader {
	return &DeferredLoader{
		session: session,
		coord:   coord,
		handler: handler,
		logger:  logger,
	}
}

// State returns the current load state.
func (l *DeferredLoader) State() LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Begin subscribes to the session and arms the one-shot restore.
// Returns domain.ErrLoadPending if a request is already armed or firing.
func (l *DeferredLoader) Begin(ctx context.Context, req domain.PendingLoadRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != LoadIdle {
		return domain.ErrLoadPending
	}

	watchCtx, cancel := context.WithCancel(ctx)
	sub, err := l.session.Subscribe(watchCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe to session events: %w", err)
	}

	l.gen++
	l.state = LoadAwaitingFirstFrame
	l.sub = sub
	l.cancel = cancel

	l.logger.Debug("deferred load armed", ports.Any("source", req.Kind))

	l.wg.Add(1)
	go l.await(watchCtx, l.gen, sub, req)
	return nil
}

// Cancel disarms a pending load. It never fires afterwards. An action that
// is already running sees a cancelled context and skips the session call if
// it has not reached it yet. Safe to call in any state.
func (l *DeferredLoader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == LoadIdle {
		return
	}
	l.gen++
	l.release()
	l.logger.Debug("deferred load cancelled")
}

// Wait blocks until the worker goroutine has exited.
func (l *DeferredLoader) Wait() {
	l.wg.Wait()
}

func (l *DeferredLoader) await(ctx context.Context, gen uint64, sub ports.Subscription, req domain.PendingLoadRequest) {
	defer l.wg.Done()

	for {
		select {
		case <-ctx.Done():
			l.finish(gen)
			return

		case ev, ok := <-sub.Events():
			if !ok {
				l.logger.Warn("session event stream closed before first frame",
					ports.Any("source", req.Kind))
				l.finish(gen)
				return
			}
			if ev.Kind != domain.EventFrameRendered {
				continue
			}
			if !l.claim(gen) {
				return
			}

			outcome := l.run(ctx, req)
			l.finish(gen)

			if ctx.Err() != nil && errors.Is(outcome.Err, context.Canceled) {
				return
			}
			l.report(outcome)
			return
		}
	}
}

// claim moves AwaitingFirstFrame to Firing and cancels the subscription so
// no later event is observed.
func (l *DeferredLoader) claim(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gen != gen || l.state != LoadAwaitingFirstFrame {
		return false
	}
	l.state = LoadFiring
	if l.sub != nil {
		l.sub.Cancel()
		l.sub = nil
	}
	return true
}

// finish returns to Idle unless a newer request already took over.
func (l *DeferredLoader) finish(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.gen != gen {
		return
	}
	l.release()
}

// release must be called with mu held.
func (l *DeferredLoader) release() {
	if l.sub != nil {
		l.sub.Cancel()
		l.sub = nil
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.state = LoadIdle
}

func (l *DeferredLoader) run(ctx context.Context, req domain.PendingLoadRequest) domain.LoadOutcome {
	outcome := domain.LoadOutcome{Kind: req.Kind}

	switch req.Kind {
	case domain.SourceExplicitFile:
		outcome.Err = l.coord.RestoreFile(ctx, req.File)
	case domain.SourceAutoSave:
		outcome.Err = l.coord.RestoreAuto(ctx)
	case domain.SourceMostRecentSlot:
		outcome.Slot, outcome.Err = l.coord.RestoreFromMostRecent(ctx, req.Candidates)
	case domain.SourceInstanceState:
		outcome.Err = l.coord.RestoreBlob(ctx, req.Blob)
	case domain.SourceSlot:
		outcome.Slot = req.Slot
		outcome.Err = l.coord.RestoreFromSlot(ctx, req.Slot)
	case domain.SourceLoadMenu:
		slots, err := l.coord.ListSlots(req.Candidates)
		if err != nil {
			outcome.Err = err
			break
		}
		if l.handler != nil {
			l.handler.OnOpenLoadMenu(slots)
		}
	}
	return outcome
}

func (l *DeferredLoader) report(outcome domain.LoadOutcome) {
	if outcome.Err != nil {
		l.logger.Warn("deferred load failed",
			ports.Any("source", outcome.Kind),
			ports.String("notice", notice.Text(outcome.Err)),
			ports.Err(outcome.Err),
		)
	} else {
		l.logger.Info("deferred load complete", ports.Any("source", outcome.Kind))
	}
	if l.handler != nil {
		l.handler.OnLoadOutcome(outcome)
	}
}
