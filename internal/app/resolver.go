package app

import "github.com/bft-labs/slotkeeper/internal/domain"

// SlotStater reads fresh slot metadata.
type SlotStater interface {
	Stat(id domain.SlotID) (domain.Slot, error)
}

// ResolveMostRecent returns the candidate whose blob was modified last.
// Equal modification times resolve to the lowest id. Candidates that are
// empty or cannot be read are skipped. Nothing is cached.
func ResolveMostRecent(store SlotStater, candidates []domain.SlotID) (domain.SlotID, bool) {
	var (
		best  domain.Slot
		found bool
	)
	for _, id := range candidates {
		slot, err := store.Stat(id)
		if err != nil || !slot.HasBlob {
			continue
		}
		if !found || newer(slot, best) {
			best = slot
			found = true
		}
	}
	return best.ID, found
}

func newer(a, b domain.Slot) bool {
	if a.BlobModifiedAt.Equal(b.BlobModifiedAt) {
		return a.ID < b.ID
	}
	return a.BlobModifiedAt.After(b.BlobModifiedAt)
}
