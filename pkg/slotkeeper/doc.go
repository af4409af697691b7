// Package slotkeeper provides save slots, a quicksave and a continuous
// auto-save for a running emulator session.
//
// # Basic Usage
//
//	m, err := slotkeeper.New(slotkeeper.Config{SaveDir: dir}, session)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Restores the auto-save after the first rendered frame, if any.
//	if err := m.Start(ctx, nil); err != nil {
//	    log.Fatal(err)
//	}
//
//	_ = m.Capture(ctx, slotkeeper.QuickSlot)
//	_ = m.Restore(ctx, slotkeeper.QuickSlot)
//
//	// Writes the auto-save and detaches.
//	_ = m.Stop()
//
// # Session
//
// The session is anything implementing [Session]: it serializes and restores
// opaque state blobs, captures frames for thumbnails and publishes render
// events. Restores requested at start are deferred until the session emits
// its first [EventFrameRendered] and run exactly once.
//
// # Files
//
// Every slot N is stored as save_slot_N.sav with an optional save_slot_N.png
// thumbnail. The auto-save is auto_save_state.bin. All writes are atomic:
// readers see either the old file or the new one.
//
// # Event Handling
//
// Implement [EventHandler] (embed [BaseEventHandler] for defaults) and pass
// it via [WithEventHandler]. Save and load events carry a short notice
// string suitable for a toast.
//
// # Lifecycle States
//
// A Manager is in one of [StateStopped], [StateStarting], [StateRunning],
// [StatePaused] or [StateStopping]. Capture and restore need a running or
// paused Manager; listing and deleting slots work in any state.
//
// # Plugins
//
//	import "github.com/bft-labs/slotkeeper/plugins/slotwatch"
//
//	m, err := slotkeeper.New(cfg, session,
//	    slotwatch.WithSlotWatch(slotwatch.DefaultConfig()),
//	)
package slotkeeper
