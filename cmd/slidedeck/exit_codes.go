package main

import (
	"errors"
	"os"

	slidedeck "github.com/alnah/go-slidedeck"
	"github.com/alnah/go-slidedeck/internal/assets"
	"github.com/alnah/go-slidedeck/internal/config"
	"github.com/alnah/go-slidedeck/internal/pipeline"
)

// Exit codes for the slidedeck CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, bad source
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, slidedeck.ErrBrowserConnect) ||
		errors.Is(err, slidedeck.ErrPageCreate) ||
		errors.Is(err, slidedeck.ErrPageLoad) ||
		errors.Is(err, slidedeck.ErrCapture) {
		return ExitBrowser
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, errUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrConfigInvalid) ||
		errors.Is(err, slidedeck.ErrUnknownKind) ||
		errors.Is(err, slidedeck.ErrInvalidColor) ||
		errors.Is(err, slidedeck.ErrInvalidRasterSize) ||
		errors.Is(err, slidedeck.ErrInvalidScale) ||
		errors.Is(err, slidedeck.ErrInvalidQuality) ||
		errors.Is(err, slidedeck.ErrInvalidFilename) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrInvalidBasePath) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, slidedeck.ErrNoSlides) ||
		errors.Is(err, slidedeck.ErrSave) ||
		errors.Is(err, pipeline.ErrUnsupportedSource) ||
		errors.Is(err, pipeline.ErrSourceRead) {
		return ExitIO
	}

	return ExitGeneral
}
