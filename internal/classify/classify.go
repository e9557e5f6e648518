// Package classify maps file extensions to coarse kinds and guesses where a
// file came from based on its path.
package classify

import (
	"path/filepath"
	"strings"

	"github.com/trovescan/trove/internal/inventory"
)

var kindByExtension = map[string]inventory.FileKind{
	// Documents
	"pdf": inventory.KindDocument, "doc": inventory.KindDocument,
	"docx": inventory.KindDocument, "odt": inventory.KindDocument,
	"rtf": inventory.KindDocument, "txt": inventory.KindDocument,
	"md": inventory.KindDocument, "tex": inventory.KindDocument,
	"pages": inventory.KindDocument,

	// Images
	"jpg": inventory.KindImage, "jpeg": inventory.KindImage,
	"png": inventory.KindImage, "gif": inventory.KindImage,
	"bmp": inventory.KindImage, "tif": inventory.KindImage,
	"tiff": inventory.KindImage, "webp": inventory.KindImage,
	"heic": inventory.KindImage, "svg": inventory.KindImage,
	"raw": inventory.KindImage, "psd": inventory.KindImage,

	// Video
	"mp4": inventory.KindVideo, "mov": inventory.KindVideo,
	"avi": inventory.KindVideo, "mkv": inventory.KindVideo,
	"wmv": inventory.KindVideo, "webm": inventory.KindVideo,
	"m4v": inventory.KindVideo, "flv": inventory.KindVideo,

	// Audio
	"mp3": inventory.KindAudio, "wav": inventory.KindAudio,
	"flac": inventory.KindAudio, "aac": inventory.KindAudio,
	"ogg": inventory.KindAudio, "m4a": inventory.KindAudio,
	"wma": inventory.KindAudio, "aiff": inventory.KindAudio,

	// Archives
	"zip": inventory.KindArchive, "tar": inventory.KindArchive,
	"gz": inventory.KindArchive, "bz2": inventory.KindArchive,
	"xz": inventory.KindArchive, "7z": inventory.KindArchive,
	"rar": inventory.KindArchive, "dmg": inventory.KindArchive,
	"iso": inventory.KindArchive,

	// Books
	"epub": inventory.KindBook, "mobi": inventory.KindBook,
	"azw": inventory.KindBook, "azw3": inventory.KindBook,
	"fb2": inventory.KindBook, "djvu": inventory.KindBook,

	// Presentations
	"ppt": inventory.KindPresentation, "pptx": inventory.KindPresentation,
	"odp": inventory.KindPresentation, "key": inventory.KindPresentation,

	// Spreadsheets
	"xls": inventory.KindSpreadsheet, "xlsx": inventory.KindSpreadsheet,
	"ods": inventory.KindSpreadsheet, "csv": inventory.KindSpreadsheet,
	"tsv": inventory.KindSpreadsheet, "numbers": inventory.KindSpreadsheet,
}

// Source-code extensions are never matched, regardless of the kind table.
// The scanner inventories personal files, not source trees; overlaps like
// md or csv stay matchable only because they are absent from this set.
var codeExtensions = map[string]struct{}{
	"go": {}, "py": {}, "js": {}, "jsx": {}, "ts": {}, "tsx": {},
	"c": {}, "h": {}, "cc": {}, "cpp": {}, "hpp": {}, "cs": {},
	"java": {}, "kt": {}, "rs": {}, "rb": {}, "php": {}, "swift": {},
	"m": {}, "mm": {}, "scala": {}, "sh": {}, "bash": {}, "zsh": {},
	"pl": {}, "lua": {}, "sql": {}, "html": {}, "htm": {}, "css": {},
	"scss": {}, "less": {}, "vue": {}, "svelte": {}, "json": {},
	"yaml": {}, "yml": {}, "toml": {}, "xml": {}, "proto": {},
	"gradle": {}, "cmake": {}, "mk": {}, "dockerfile": {},
}

// Extension returns the lowercase extension of name without the leading dot.
func Extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// Classify maps a lowercase extension to a FileKind. The second return value
// is false when the extension is unsupported and the file must be skipped.
func Classify(ext string) (inventory.FileKind, bool) {
	if _, isCode := codeExtensions[ext]; isCode {
		return inventory.KindOther, false
	}
	kind, ok := kindByExtension[ext]
	if !ok {
		return inventory.KindOther, false
	}
	return kind, true
}

// Directory names that mark a download location.
var downloadDirs = map[string]struct{}{
	"Downloads": {}, "Download": {}, "downloads": {}, "download": {},
}

// Directory names used as local roots by common cloud-sync clients.
var syncedDirs = map[string]struct{}{
	"Dropbox": {}, "Google Drive": {}, "GoogleDrive": {}, "OneDrive": {},
	"iCloud Drive": {}, "Box": {}, "Nextcloud": {}, "ownCloud": {},
	"Sync": {}, "pCloud": {}, "MEGA": {}, "Seafile": {},
}

// DetectOrigin guesses a file's provenance from its path segments. The guess
// is best-effort and only ever used as metadata.
func DetectOrigin(fullPath string) inventory.FileOrigin {
	for _, seg := range strings.Split(filepath.ToSlash(fullPath), "/") {
		if _, ok := downloadDirs[seg]; ok {
			return inventory.OriginDownloaded
		}
		if _, ok := syncedDirs[seg]; ok {
			return inventory.OriginSynced
		}
	}
	return inventory.OriginUnknown
}
