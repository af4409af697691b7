package slotkeeper

import (
	"github.com/bft-labs/slotkeeper/internal/app"
	"github.com/bft-labs/slotkeeper/internal/domain"
	"github.com/bft-labs/slotkeeper/internal/notice"
)

// State is the lifecycle state of a Manager.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StatePaused
	StateStopping
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateStopping:
		return "Stopping"
	default:
		return "Unknown"
	}
}

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// SaveEvent is emitted after every slot capture attempt.
type SaveEvent struct {
	Slot      SlotID
	Bytes     int
	Thumbnail bool
	Err       error
	// Notice is a short message suitable for a toast.
	Notice string
}

// LoadEvent is emitted after every restore attempt, direct or deferred.
type LoadEvent struct {
	Source SourceKind
	Slot   SlotID
	Err    error
	Notice string
}

// LoadMenuEvent is emitted when a deferred load asks for the load menu.
type LoadMenuEvent struct {
	Slots []Slot
}

// SlotsChangedEvent is emitted when slot files change on disk.
// A slot whose files look the same as at its last report is left out, so a
// Manager write is reported once even with a directory watcher running.
type SlotsChangedEvent struct {
	Slots    []SlotID
	AutoSave bool
}

// EventHandler receives slotkeeper events. Calls are synchronous; keep them
// short. Embed BaseEventHandler to implement only some methods.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnSave(SaveEvent)
	OnLoad(LoadEvent)
	OnLoadMenu(LoadMenuEvent)
	OnSlotsChanged(SlotsChangedEvent)
}

// BaseEventHandler ignores every event.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)   {}
func (BaseEventHandler) OnSave(SaveEvent)                 {}
func (BaseEventHandler) OnLoad(LoadEvent)                 {}
func (BaseEventHandler) OnLoadMenu(LoadMenuEvent)         {}
func (BaseEventHandler) OnSlotsChanged(SlotsChangedEvent) {}

// eventEmitter adapts EventHandler to the internal emitter interfaces.
// A nil handler drops everything.
type eventEmitter struct {
	handler EventHandler
	changes *changeFilter
}

var (
	_ EventHandler     = (*eventEmitter)(nil)
	_ app.EventEmitter = lifecycleEmitter{}
	_ app.LoadHandler  = loadEmitter{}
)

func (e *eventEmitter) OnStateChange(ev StateChangeEvent) {
	if e.handler != nil {
		e.handler.OnStateChange(ev)
	}
}

func (e *eventEmitter) OnSave(ev SaveEvent) {
	if e.handler != nil {
		e.handler.OnSave(ev)
	}
}

func (e *eventEmitter) OnLoad(ev LoadEvent) {
	if e.handler != nil {
		e.handler.OnLoad(ev)
	}
}

func (e *eventEmitter) OnLoadMenu(ev LoadMenuEvent) {
	if e.handler != nil {
		e.handler.OnLoadMenu(ev)
	}
}

func (e *eventEmitter) OnSlotsChanged(ev SlotsChangedEvent) {
	if e.handler == nil {
		return
	}
	if e.changes != nil {
		var ok bool
		if ev, ok = e.changes.apply(ev); !ok {
			return
		}
	}
	e.handler.OnSlotsChanged(ev)
}

// lifecycleEmitter bridges app.EventEmitter, whose method name clashes with
// EventHandler.OnStateChange.
type lifecycleEmitter struct{ e *eventEmitter }

func (l lifecycleEmitter) OnStateChange(previous, current app.State, reason string) {
	l.e.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

// loadEmitter bridges app.LoadHandler.
type loadEmitter struct {
	e       *eventEmitter
	settled func(domain.LoadOutcome)
}

func (l loadEmitter) OnLoadOutcome(outcome domain.LoadOutcome) {
	if l.settled != nil {
		l.settled(outcome)
	}
	l.e.OnLoad(loadEvent(outcome.Kind, outcome.Slot, outcome.Err))
}

func (l loadEmitter) OnOpenLoadMenu(slots []domain.Slot) {
	l.e.OnLoadMenu(LoadMenuEvent{Slots: slots})
}

func saveEvent(res app.CaptureResult, id SlotID, err error) SaveEvent {
	ev := SaveEvent{Slot: id, Bytes: res.Bytes, Thumbnail: res.Thumbnail, Err: err}
	if err != nil {
		ev.Notice = notice.Format(notice.OpSave, err)
	} else {
		ev.Notice = notice.Saved(id)
	}
	return ev
}

func loadEvent(source SourceKind, id SlotID, err error) LoadEvent {
	ev := LoadEvent{Source: source, Slot: id, Err: err}
	switch {
	case err != nil:
		ev.Notice = notice.Format(notice.OpLoad, err)
	case source == SourceMostRecentSlot || source == SourceSlot:
		ev.Notice = notice.Loaded(id)
	default:
		ev.Notice = notice.Restored(source)
	}
	return ev
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StatePaused:
		return StatePaused
	case app.StateStopping:
		return StateStopping
	default:
		return StateStopped
	}
}
