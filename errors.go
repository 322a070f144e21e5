package slidedeck

import "errors"

// Sentinel errors for library operations.
var (
	ErrNoSlides       = errors.New("deck has no slides")
	ErrNoStage        = errors.New("presentation has no stage")
	ErrExportRunning  = errors.New("export already in progress")
	ErrExportFailed   = errors.New("export step failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrStage          = errors.New("failed to update slide visibility")
	ErrCapture        = errors.New("slide capture failed")
	ErrAssembly       = errors.New("output assembly failed")
	ErrSave           = errors.New("failed to save output")

	// Settings validation errors.
	ErrInvalidColor      = errors.New("invalid color")
	ErrInvalidRasterSize = errors.New("invalid raster size")
	ErrInvalidScale      = errors.New("invalid raster scale")
	ErrInvalidQuality    = errors.New("invalid JPEG quality")
	ErrInvalidFilename   = errors.New("invalid output filename")
	ErrUnknownKind       = errors.New("unknown export kind")
)
