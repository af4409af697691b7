package fs

import (
	"testing"

	"github.com/bft-labs/slotkeeper/internal/domain"
)

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name   string
		kind   FileKind
		slot   domain.SlotID
		wantOK bool
	}{
		{"save_slot_0.sav", FileBlob, 0, true},
		{"save_slot_0.png", FileThumbnail, 0, true},
		{"save_slot_12.sav", FileBlob, 12, true},
		{"auto_save_state.bin", FileAutoSave, 0, true},
		{"temp_screenshot.png", FileStaging, 0, true},
		{"save_slot_01.sav", FileUnknown, 0, false},
		{"save_slot_-1.sav", FileUnknown, 0, false},
		{"save_slot_x.sav", FileUnknown, 0, false},
		{"save_slot_1.txt", FileUnknown, 0, false},
		{".tmp-slot-123456", FileUnknown, 0, false},
		{"config.toml", FileUnknown, 0, false},
	}

	for _, tt := range tests {
		kind, slot, ok := ParseFileName(tt.name)
		if ok != tt.wantOK || kind != tt.kind || slot != tt.slot {
			t.Errorf("ParseFileName(%q) = (%v, %d, %v), want (%v, %d, %v)",
				tt.name, kind, slot, ok, tt.kind, tt.slot, tt.wantOK)
		}
	}
}

func TestFileNamesRoundTrip(t *testing.T) {
	for _, id := range domain.AllSlots(5) {
		if kind, got, ok := ParseFileName(BlobName(id)); !ok || kind != FileBlob || got != id {
			t.Errorf("BlobName(%d) did not round trip", id)
		}
		if kind, got, ok := ParseFileName(ThumbnailName(id)); !ok || kind != FileThumbnail || got != id {
			t.Errorf("ThumbnailName(%d) did not round trip", id)
		}
	}
}
