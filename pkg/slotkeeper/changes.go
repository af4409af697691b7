package slotkeeper

import (
	"sync"
	"time"

	"github.com/bft-labs/slotkeeper/internal/adapters/fs"
)

// fileStamp is what two reports of the same slot are compared on.
type fileStamp struct {
	present bool
	thumb   bool
	mod     time.Time
	size    int64
}

func (a fileStamp) equal(b fileStamp) bool {
	return a.present == b.present && a.thumb == b.thumb && a.size == b.size && a.mod.Equal(b.mod)
}

// changeFilter drops slot notifications that report nothing new. The
// Manager announces its own writes directly, and a directory watcher reports
// the same files again once its debounce expires.
type changeFilter struct {
	mu    sync.Mutex
	store *fs.SlotStore
	slots map[SlotID]fileStamp
	auto  *fileStamp
}

func newChangeFilter(store *fs.SlotStore) *changeFilter {
	return &changeFilter{store: store, slots: make(map[SlotID]fileStamp)}
}

// apply reduces ev to the entries whose files differ from their last report.
// It returns false when nothing is left. Entries that cannot be stat'ed are
// always kept.
func (f *changeFilter) apply(ev SlotsChangedEvent) (SlotsChangedEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out SlotsChangedEvent
	for _, id := range ev.Slots {
		slot, err := f.store.Stat(id)
		if err != nil {
			out.Slots = append(out.Slots, id)
			continue
		}
		st := fileStamp{
			present: slot.HasBlob,
			thumb:   slot.HasThumbnail,
			mod:     slot.BlobModifiedAt,
			size:    slot.BlobSize,
		}
		if prev, ok := f.slots[id]; ok && prev.equal(st) {
			continue
		}
		f.slots[id] = st
		out.Slots = append(out.Slots, id)
	}

	if ev.AutoSave {
		rec, err := f.store.AutoStat()
		st := fileStamp{present: rec.HasBlob, mod: rec.BlobModifiedAt, size: rec.BlobSize}
		if err != nil || f.auto == nil || !f.auto.equal(st) {
			if err == nil {
				f.auto = &st
			}
			out.AutoSave = true
		}
	}

	return out, len(out.Slots) > 0 || out.AutoSave
}
