// Package slotwatch reports changes to the save directory made outside the
// Manager, such as another process deleting a slot or a backup tool
// restoring files.
package slotwatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/slotkeeper/pkg/slotkeeper"
)

// Plugin watches the save directory and emits SlotsChanged events.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	debounceDelay time.Duration

	// Runtime state
	saveDir     string
	manualSlots int
	logger      slotkeeper.Logger
	events      slotkeeper.EventHandler
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	debounce    *time.Timer
	pending     map[slotkeeper.SlotID]struct{}
	pendingAuto bool
}

// Config holds configuration options for the slot watcher plugin.
type Config struct {
	// DebounceDelay coalesces bursts of file events, such as the blob and
	// thumbnail of one save.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new slot watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		pending:       make(map[slotkeeper.SlotID]struct{}),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "slotwatch"
}

// Initialize starts watching cfg.SaveDir, creating it if needed.
func (p *Plugin) Initialize(ctx context.Context, cfg slotkeeper.PluginConfig) error {
	p.mu.Lock()
	p.saveDir = cfg.SaveDir
	p.manualSlots = cfg.ManualSlots
	p.logger = cfg.Logger
	p.events = cfg.Events
	p.mu.Unlock()

	if p.saveDir == "" {
		p.logger.Warn("slot watcher disabled: no save directory configured")
		return nil
	}
	if err := os.MkdirAll(p.saveDir, 0o700); err != nil {
		return fmt.Errorf("slotwatch: create save dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("slotwatch: create watcher: %w", err)
	}
	if err := watcher.Add(p.saveDir); err != nil {
		watcher.Close()
		return fmt.Errorf("slotwatch: watch %s: %w", p.saveDir, err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("slot watcher initialized", slotkeeper.LogField{Key: "dir", Value: p.saveDir})

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)
	return nil
}

// Shutdown stops the watcher. Changes still waiting for the debounce timer
// are dropped.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.debounce != nil {
		p.debounce.Stop()
		p.debounce = nil
	}
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			p.record(ctx, filepath.Base(event.Name))

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("slot watcher error", slotkeeper.LogField{Key: "error", Value: err})
		}
	}
}

// record notes a changed file and re-arms the debounce timer.
func (p *Plugin) record(ctx context.Context, name string) {
	kind, id, ok := slotkeeper.ParseFileName(name)
	if !ok {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch kind {
	case slotkeeper.FileBlob, slotkeeper.FileThumbnail:
		if int(id) > p.manualSlots {
			return
		}
		p.pending[id] = struct{}{}
	case slotkeeper.FileAutoSave:
		p.pendingAuto = true
	default:
		return
	}

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		p.flush(ctx)
	})
}

func (p *Plugin) flush(ctx context.Context) {
	p.mu.Lock()
	if ctx.Err() != nil || (len(p.pending) == 0 && !p.pendingAuto) {
		p.mu.Unlock()
		return
	}
	ev := slotkeeper.SlotsChangedEvent{AutoSave: p.pendingAuto}
	for id := range p.pending {
		ev.Slots = append(ev.Slots, id)
	}
	sort.Slice(ev.Slots, func(i, j int) bool { return ev.Slots[i] < ev.Slots[j] })
	p.pending = make(map[slotkeeper.SlotID]struct{})
	p.pendingAuto = false
	events := p.events
	p.mu.Unlock()

	p.logger.Debug("save directory changed",
		slotkeeper.LogField{Key: "slots", Value: len(ev.Slots)},
		slotkeeper.LogField{Key: "auto_save", Value: ev.AutoSave})
	if events != nil {
		events.OnSlotsChanged(ev)
	}
}
