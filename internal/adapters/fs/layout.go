package fs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bft-labs/slotkeeper/internal/domain"
)

// File names under the save root.
const (
	slotPrefix   = "save_slot_"
	blobExt      = ".sav"
	thumbExt     = ".png"
	autoSaveName = "auto_save_state.bin"
	stagingName  = "temp_screenshot.png"

	// tempPattern names in-flight writes. The leading dot keeps them out of
	// ParseFileName and out of explicit file restores.
	tempPattern = ".tmp-slot-*"
)

// FileKind classifies a file found under the save root.
type FileKind int

const (
	FileUnknown FileKind = iota
	FileBlob
	FileThumbnail
	FileAutoSave
	FileStaging
)

// String returns a human-readable representation of the file kind.
func (k FileKind) String() string {
	switch k {
	case FileBlob:
		return "blob"
	case FileThumbnail:
		return "thumbnail"
	case FileAutoSave:
		return "autosave"
	case FileStaging:
		return "staging"
	default:
		return "unknown"
	}
}

// BlobName returns the file name of a slot's state blob.
func BlobName(id domain.SlotID) string {
	return fmt.Sprintf("%s%d%s", slotPrefix, int(id), blobExt)
}

// ThumbnailName returns the file name of a slot's thumbnail.
func ThumbnailName(id domain.SlotID) string {
	return fmt.Sprintf("%s%d%s", slotPrefix, int(id), thumbExt)
}

// AutoSaveName returns the file name of the auto-save record.
func AutoSaveName() string { return autoSaveName }

// ParseFileName maps a base file name back to what it stores.
// The slot id is only meaningful for FileBlob and FileThumbnail.
func ParseFileName(name string) (FileKind, domain.SlotID, bool) {
	switch name {
	case autoSaveName:
		return FileAutoSave, 0, true
	case stagingName:
		return FileStaging, 0, true
	}

	if !strings.HasPrefix(name, slotPrefix) {
		return FileUnknown, 0, false
	}
	rest := strings.TrimPrefix(name, slotPrefix)

	kind := FileUnknown
	switch {
	case strings.HasSuffix(rest, blobExt):
		kind = FileBlob
		rest = strings.TrimSuffix(rest, blobExt)
	case strings.HasSuffix(rest, thumbExt):
		kind = FileThumbnail
		rest = strings.TrimSuffix(rest, thumbExt)
	default:
		return FileUnknown, 0, false
	}

	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 || strconv.Itoa(n) != rest {
		return FileUnknown, 0, false
	}
	return kind, domain.SlotID(n), true
}
