package slotkeeper

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/slotkeeper/internal/adapters/fs"
	"github.com/bft-labs/slotkeeper/internal/app"
	"github.com/bft-labs/slotkeeper/internal/domain"
	"github.com/bft-labs/slotkeeper/internal/notice"
	"github.com/bft-labs/slotkeeper/internal/ports"
)

// Manager persists one session into save slots and the auto-save.
// Use New() to create an instance, then Start() once the session exists.
type Manager struct {
	config    Config
	session   ports.Session
	store     *fs.SlotStore
	coord     *app.Coordinator
	loader    *app.DeferredLoader
	lifecycle *app.Lifecycle
	emitter   *eventEmitter
	logger    ports.Logger
	plugins   []Plugin
	autoSave  *autoSaveRunner

	mu       sync.Mutex
	instance []byte
	ctx      context.Context
	cancel   context.CancelFunc

	// resumePending is set while the load armed at Start has not completed.
	// Until then the session does not hold the state the auto-save continues,
	// so pause, stop and the periodic runner leave the auto-save alone.
	resumePending atomic.Bool
}

// New creates a Manager bound to session. The Manager starts in
// StateStopped; call Start() to attach.
func New(cfg Config, session Session, opts ...Option) (*Manager, error) {
	if session == nil {
		return nil, ErrNoSession
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	store := fs.NewSlotStore(cfg.SaveDir, cfg.ManualSlots, logger)
	emitter := &eventEmitter{handler: o.eventHandler, changes: newChangeFilter(store)}

	coord := app.NewCoordinator(
		app.CoordinatorConfig{CaptureTimeout: cfg.CaptureTimeout},
		session, store, store, logger,
	)
	lifecycle := app.NewLifecycle(logger, lifecycleEmitter{emitter})

	m := &Manager{
		config:    cfg,
		session:   session,
		store:     store,
		coord:     coord,
		lifecycle: lifecycle,
		emitter:   emitter,
		logger:    logger,
		plugins:   o.plugins,
		instance:  o.instanceState,
	}
	m.loader = app.NewDeferredLoader(session, coord, loadEmitter{e: emitter, settled: m.loadSettled}, logger)
	if cfg.AutoSaveInterval > 0 {
		m.autoSave = newAutoSaveRunner(cfg.AutoSaveInterval, coord, lifecycle, m.resumePending.Load, logger)
	}
	return m, nil
}

// Start attaches to the session. When req is non-nil it is restored after
// the first rendered frame. Otherwise a handed-over instance state is
// restored, else the auto-save unless Config.NewGame is set.
func (m *Manager) Start(ctx context.Context, req *LoadRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.lifecycle.CanStart() {
		return ErrAlreadyRunning
	}
	if req != nil {
		if err := req.Validate(); err != nil {
			return err
		}
	}
	if err := m.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.ctx = runCtx
	m.cancel = cancel
	m.lifecycle.SetCancel(cancel)

	// A screenshot staged by an earlier session must never reach a slot.
	if err := m.coord.DiscardStaged(); err != nil {
		m.logger.Warn("discard staged screenshot failed", ports.Err(err))
	}

	if m.config.NewGame {
		if err := m.coord.ClearAuto(runCtx); err != nil {
			m.logger.Warn("clear auto-save for new game failed", ports.Err(err))
		}
	}

	initialized, err := m.initPlugins(runCtx)
	if err != nil {
		m.shutdownPlugins(initialized)
		cancel()
		_ = m.lifecycle.TransitionTo(app.StateStopped, "plugin init failed")
		return err
	}

	m.resumePending.Store(false)
	if pending := m.startupRequest(req); pending != nil {
		m.resumePending.Store(true)
		if err := m.loader.Begin(runCtx, *pending); err != nil {
			m.resumePending.Store(false)
			m.shutdownPlugins(m.plugins)
			cancel()
			_ = m.lifecycle.TransitionTo(app.StateStopped, "deferred load failed")
			return err
		}
	}
	m.instance = nil

	// Ends with the run context so Stop observes the deferred load exiting.
	m.lifecycle.AddWorker()
	go func() {
		defer m.lifecycle.WorkerDone()
		<-runCtx.Done()
		m.loader.Wait()
	}()

	if m.autoSave != nil {
		m.autoSave.start(runCtx)
	}

	return m.lifecycle.TransitionTo(app.StateRunning, "session attached")
}

// startupRequest picks what to restore at start. Explicit requests win,
// then the instance state, then the auto-save.
func (m *Manager) startupRequest(req *LoadRequest) *LoadRequest {
	switch {
	case req != nil:
		return req
	case len(m.instance) > 0:
		return &LoadRequest{Kind: SourceInstanceState, Blob: m.instance}
	case m.config.NewGame:
		return nil
	}

	rec, err := m.store.AutoStat()
	if err != nil {
		m.logger.Warn("auto-save unreadable, starting fresh", ports.Err(err))
		return nil
	}
	if !rec.HasBlob {
		return nil
	}
	return &LoadRequest{Kind: SourceAutoSave}
}

func (m *Manager) initPlugins(ctx context.Context) ([]Plugin, error) {
	cfg := PluginConfig{
		SaveDir:     m.config.SaveDir,
		ManualSlots: m.config.ManualSlots,
		Logger:      m.logger,
		Events:      m.emitter,
	}
	for i, p := range m.plugins {
		if err := p.Initialize(ctx, cfg); err != nil {
			m.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			return m.plugins[:i], err
		}
		m.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}
	return m.plugins, nil
}

// shutdownPlugins stops plugins in reverse order.
func (m *Manager) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			m.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
		} else {
			m.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}
}

// Stop detaches from the session. A pending deferred load is cancelled and
// never fires. The auto-save is written first unless the load armed at Start
// has not completed. Waits up to 30 seconds for background work.
func (m *Manager) Stop() error {
	return m.stop(true)
}

func (m *Manager) stop(saveAuto bool) error {
	m.mu.Lock()

	if !m.lifecycle.CanStop() {
		m.mu.Unlock()
		return ErrNotRunning
	}
	if err := m.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		m.mu.Unlock()
		return err
	}

	// Read before Cancel: a cancelled resume never completes.
	resumed := !m.resumePending.Load()
	m.loader.Cancel()
	if saveAuto && resumed {
		if err := m.coord.SaveAuto(context.Background()); err != nil {
			m.logger.Error("auto-save on stop failed", ports.Err(err))
		}
	}

	if m.autoSave != nil {
		m.autoSave.stop()
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Unlock()

	err := m.lifecycle.WaitWithTimeout(app.ShutdownTimeout)
	m.shutdownPlugins(m.plugins)

	reason := "graceful shutdown"
	if err != nil {
		reason = "shutdown timeout"
	}
	_ = m.lifecycle.TransitionTo(app.StateStopped, reason)
	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (m *Manager) Status() State {
	return convertState(m.lifecycle.State())
}

// Pause records that the host paused the session and writes the auto-save.
// The Manager stays paused even when the write fails.
func (m *Manager) Pause(ctx context.Context) error {
	if err := m.lifecycle.TransitionTo(app.StatePaused, "Pause() called"); err != nil {
		return err
	}
	return m.writeAuto(ctx, "pause")
}

// Resume returns a paused Manager to running.
func (m *Manager) Resume() error {
	return m.lifecycle.TransitionTo(app.StateRunning, "Resume() called")
}

// ReturnToTitle writes the auto-save before the host resets the session to
// its title screen. Any pending deferred load is dropped.
func (m *Manager) ReturnToTitle(ctx context.Context) error {
	if !m.lifecycle.IsActive() {
		return ErrNotRunning
	}
	m.loader.Cancel()
	err := m.writeAuto(ctx, "return to title")
	// Play from the title screen on is the session's own state.
	m.resumePending.Store(false)
	return err
}

// PowerOff writes the auto-save and stops the Manager.
func (m *Manager) PowerOff(ctx context.Context) error {
	if !m.lifecycle.IsActive() {
		return ErrNotRunning
	}
	m.loader.Cancel()
	saveErr := m.writeAuto(ctx, "power off")
	if err := m.stop(false); err != nil {
		return errors.Join(saveErr, err)
	}
	return saveErr
}

func (m *Manager) writeAuto(ctx context.Context, trigger string) error {
	if m.resumePending.Load() {
		m.logger.Debug("auto-save kept: resume not complete", ports.String("trigger", trigger))
		return nil
	}
	return m.saveAuto(ctx, trigger)
}

func (m *Manager) saveAuto(ctx context.Context, trigger string) error {
	if err := m.coord.SaveAuto(ctx); err != nil {
		m.logger.Error("auto-save failed",
			ports.String("trigger", trigger),
			ports.String("notice", notice.Format(notice.OpAutoSave, err)),
			ports.Err(err))
		return err
	}
	m.emitter.OnSlotsChanged(SlotsChangedEvent{AutoSave: true})
	m.logger.Debug("auto-save written", ports.String("trigger", trigger))
	return nil
}

// SaveAuto writes the auto-save on demand, even while the resume armed at
// Start is still pending.
func (m *Manager) SaveAuto(ctx context.Context) error {
	if !m.lifecycle.IsActive() {
		return ErrNotRunning
	}
	return m.saveAuto(ctx, "on demand")
}

// ClearAuto discards the auto-save.
func (m *Manager) ClearAuto(ctx context.Context) error {
	if err := m.coord.ClearAuto(ctx); err != nil {
		return err
	}
	m.emitter.OnSlotsChanged(SlotsChangedEvent{AutoSave: true})
	return nil
}

// AutoSave returns the auto-save metadata.
func (m *Manager) AutoSave() (AutoSaveRecord, error) {
	return m.store.AutoStat()
}

// InstanceState snapshots the session for a handover to the next Manager,
// see WithInstanceState. Nothing is written to disk.
func (m *Manager) InstanceState() ([]byte, error) {
	if !m.lifecycle.IsActive() {
		return nil, ErrNotRunning
	}
	return m.coord.Snapshot()
}

// Capture saves the session into slot id. A missing thumbnail never fails
// the capture.
func (m *Manager) Capture(ctx context.Context, id SlotID) error {
	if !m.lifecycle.IsActive() {
		return ErrNotRunning
	}
	res, err := m.coord.CaptureToSlot(ctx, id)
	m.emitter.OnSave(saveEvent(res, id, err))
	if err != nil {
		return err
	}
	m.emitter.OnSlotsChanged(SlotsChangedEvent{Slots: []SlotID{id}})
	return nil
}

// Restore loads slot id into the session. A pending deferred load is
// cancelled first so it cannot overwrite the result.
func (m *Manager) Restore(ctx context.Context, id SlotID) error {
	if !m.lifecycle.IsActive() {
		return ErrNotRunning
	}
	m.loader.Cancel()
	err := m.coord.RestoreFromSlot(ctx, id)
	if err == nil {
		m.resumePending.Store(false)
	}
	m.emitter.OnLoad(loadEvent(SourceSlot, id, err))
	return err
}

// RestoreMostRecent loads the newest slot among candidates, or among all
// slots when candidates is empty.
func (m *Manager) RestoreMostRecent(ctx context.Context, candidates ...SlotID) (SlotID, error) {
	if !m.lifecycle.IsActive() {
		return 0, ErrNotRunning
	}
	if len(candidates) == 0 {
		candidates = m.config.Slots()
	}
	m.loader.Cancel()
	id, err := m.coord.RestoreFromMostRecent(ctx, candidates)
	if err == nil {
		m.resumePending.Store(false)
	}
	m.emitter.OnLoad(loadEvent(SourceMostRecentSlot, id, err))
	return id, err
}

// BeginDeferredLoad arms req to run after the next rendered frame.
// Returns ErrLoadPending while another request is armed.
func (m *Manager) BeginDeferredLoad(req LoadRequest) error {
	m.mu.Lock()
	ctx := m.ctx
	m.mu.Unlock()

	if !m.lifecycle.IsActive() || ctx == nil {
		return ErrNotRunning
	}
	return m.loader.Begin(ctx, req)
}

// CancelDeferredLoad disarms a pending deferred load. Safe in any state.
// Cancelling the resume armed at Start means the session keeps playing from
// its own state, which later auto-saves then record.
func (m *Manager) CancelDeferredLoad() {
	m.loader.Cancel()
	m.resumePending.Store(false)
}

// loadSettled runs on the loader's worker for every reported outcome.
// Cancelled loads report nothing.
func (m *Manager) loadSettled(domain.LoadOutcome) {
	m.resumePending.Store(false)
}

// StageThumbnail captures a screenshot now for the next Capture, typically
// when the save menu opens.
func (m *Manager) StageThumbnail(ctx context.Context) error {
	if !m.lifecycle.IsActive() {
		return ErrNotRunning
	}
	return m.coord.StageThumbnail(ctx)
}

// DiscardStaged drops a staged screenshot, e.g. when the save menu closes
// without saving.
func (m *Manager) DiscardStaged() error {
	return m.coord.DiscardStaged()
}

// Delete removes slot id. Deleting an empty slot succeeds.
func (m *Manager) Delete(ctx context.Context, id SlotID) error {
	if err := m.coord.Delete(ctx, id); err != nil {
		return err
	}
	m.emitter.OnSlotsChanged(SlotsChangedEvent{Slots: []SlotID{id}})
	return nil
}

// ListSlots returns fresh metadata for every slot, quicksave first.
func (m *Manager) ListSlots() ([]Slot, error) {
	return m.coord.ListSlots(m.config.Slots())
}

// ThumbnailPath returns the thumbnail file of slot id, if it has one.
func (m *Manager) ThumbnailPath(id SlotID) (string, bool) {
	return m.store.ThumbnailPath(id)
}

// Config returns the effective configuration.
func (m *Manager) Config() Config {
	return m.config
}
