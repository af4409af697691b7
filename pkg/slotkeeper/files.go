package slotkeeper

import "github.com/bft-labs/slotkeeper/internal/adapters/fs"

// FileKind classifies a file found in the save directory.
type FileKind = fs.FileKind

const (
	FileUnknown   = fs.FileUnknown
	FileBlob      = fs.FileBlob
	FileThumbnail = fs.FileThumbnail
	FileAutoSave  = fs.FileAutoSave
	FileStaging   = fs.FileStaging
)

// ParseFileName maps a base file name in the save directory back to what it
// stores. The slot id is only meaningful for FileBlob and FileThumbnail.
func ParseFileName(name string) (FileKind, SlotID, bool) {
	return fs.ParseFileName(name)
}

// BlobFileName returns the file name of a slot's state blob.
func BlobFileName(id SlotID) string { return fs.BlobName(id) }

// ThumbnailFileName returns the file name of a slot's thumbnail.
func ThumbnailFileName(id SlotID) string { return fs.ThumbnailName(id) }

// AutoSaveFileName returns the file name of the auto-save.
func AutoSaveFileName() string { return fs.AutoSaveName() }
