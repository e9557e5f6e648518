package inventory

import "time"

// FileKind is a coarse content classification derived from a file's extension.
type FileKind uint8

const (
	KindDocument FileKind = iota
	KindImage
	KindVideo
	KindAudio
	KindArchive
	KindBook
	KindPresentation
	KindSpreadsheet
	KindOther
)

func (k FileKind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindArchive:
		return "archive"
	case KindBook:
		return "book"
	case KindPresentation:
		return "presentation"
	case KindSpreadsheet:
		return "spreadsheet"
	default:
		return "other"
	}
}

// KindFromString parses a kind name as produced by FileKind.String.
// The second return value is false for unknown names.
func KindFromString(s string) (FileKind, bool) {
	switch s {
	case "document":
		return KindDocument, true
	case "image":
		return KindImage, true
	case "video":
		return KindVideo, true
	case "audio":
		return KindAudio, true
	case "archive":
		return KindArchive, true
	case "book":
		return KindBook, true
	case "presentation":
		return KindPresentation, true
	case "spreadsheet":
		return KindSpreadsheet, true
	case "other":
		return KindOther, true
	}
	return KindOther, false
}

// FileOrigin is a best-effort provenance tag guessed from path segments.
// It is informational only and never affects whether a file is matched.
type FileOrigin uint8

const (
	OriginUnknown FileOrigin = iota
	OriginDownloaded
	OriginSynced
	OriginCreatedHere
)

func (o FileOrigin) String() string {
	switch o {
	case OriginDownloaded:
		return "downloaded"
	case OriginSynced:
		return "synced"
	case OriginCreatedHere:
		return "created_here"
	default:
		return "unknown"
	}
}

// ScannedFile is one inventoried file. It is built once by the walker and
// never mutated afterward.
type ScannedFile struct {
	Path       string
	Name       string
	Extension  string // lowercase, no dot
	Size       int64
	ModifiedAt time.Time
	CreatedAt  time.Time
	Kind       FileKind
	Origin     FileOrigin
	ParentPath string
}

// FolderNode is a pruned, aggregated summary of one directory's matched
// contents. Trees are rebuilt from scratch on every build call; nodes have
// no identity across calls.
type FolderNode struct {
	Path           string
	Name           string
	FileCount      int64 // direct matched files
	TotalFileCount int64 // direct + all descendants
	TotalSize      int64
	LatestModified time.Time
	Children       []*FolderNode // ordered by LatestModified descending
	Files          []ScannedFile // ordered by ModifiedAt descending
}

// ScanStatus describes the lifecycle state carried by a progress snapshot.
type ScanStatus string

const (
	StatusIdle      ScanStatus = "idle"
	StatusScanning  ScanStatus = "scanning"
	StatusCompleted ScanStatus = "completed"
	StatusCancelled ScanStatus = "cancelled"
	StatusError     ScanStatus = "error"
)

// ScanProgress is a point-in-time snapshot sent to the caller while a scan
// runs. It is purely informational and never persisted.
type ScanProgress struct {
	ScanID      string
	Status      ScanStatus
	Stage       string
	CurrentPath string
	Scanned     int64
	Matched     int64
	Skipped     int64
	Error       string
	Timestamp   time.Time
}

// ScanMeta holds metadata about a completed scan as persisted in a snapshot.
type ScanMeta struct {
	ScanID    string
	Roots     []string
	StartTime time.Time
	EndTime   time.Time
	Scanned   int64
	Matched   int64
	Skipped   int64
	Partial   bool
}
