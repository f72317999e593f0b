package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeWebP FileType = "webp"
)

// AllowedContentTypes maps declared MIME content types to FileType.
// image/jpg is a non-standard alias some browsers still emit.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/jpg":       FileTypeJPG,
	"image/png":       FileTypePNG,
	"image/webp":      FileTypeWebP,
}

// Phase represents the lifecycle state of an upload session.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSelecting  Phase = "selecting"
	PhaseValidated  Phase = "validated"
	PhaseSubmitting Phase = "submitting"
	PhaseDisplaying Phase = "displaying"
)

// Mode identifies which upload surface a selection or submit belongs to.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeBatch  Mode = "batch"
)

// ViewMode selects between the formatted and raw result renderings.
type ViewMode string

const (
	ViewFormatted ViewMode = "formatted"
	ViewRaw       ViewMode = "raw"
)

// ConfidenceBand is the qualitative label attached to a confidence score.
type ConfidenceBand string

const (
	BandHigh   ConfidenceBand = "high"
	BandMedium ConfidenceBand = "medium"
	BandLow    ConfidenceBand = "low"
)
