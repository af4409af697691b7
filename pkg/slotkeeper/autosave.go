package slotkeeper

import (
	"context"
	"time"

	"github.com/bft-labs/slotkeeper/internal/app"
	"github.com/bft-labs/slotkeeper/internal/ports"
)

// autoSaveRunner writes the auto-save on a fixed interval while the session
// is running. Paused sessions are skipped; Pause writes its own auto-save.
type autoSaveRunner struct {
	interval  time.Duration
	coord     *app.Coordinator
	lifecycle *app.Lifecycle
	// hold reports whether the auto-save must not be touched yet.
	hold   func() bool
	logger ports.Logger
	cancel context.CancelFunc
}

func newAutoSaveRunner(interval time.Duration, coord *app.Coordinator, lifecycle *app.Lifecycle, hold func() bool, logger ports.Logger) *autoSaveRunner {
	return &autoSaveRunner{
		interval:  interval,
		coord:     coord,
		lifecycle: lifecycle,
		hold:      hold,
		logger:    logger,
	}
}

func (r *autoSaveRunner) start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.logger.Info("periodic auto-save enabled", ports.Duration("interval", r.interval))

	r.lifecycle.AddWorker()
	go r.loop(runCtx)
}

func (r *autoSaveRunner) stop() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *autoSaveRunner) loop(ctx context.Context) {
	defer r.lifecycle.WorkerDone()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.saveOnce(ctx)
		}
	}
}

func (r *autoSaveRunner) saveOnce(ctx context.Context) {
	if r.lifecycle.State() != app.StateRunning {
		return
	}
	if r.hold != nil && r.hold() {
		return
	}
	if err := r.coord.SaveAuto(ctx); err != nil {
		r.logger.Error("periodic auto-save failed", ports.Err(err))
		return
	}
	r.logger.Debug("periodic auto-save written")
}
