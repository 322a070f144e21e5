package main

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	slidedeck "github.com/alnah/go-slidedeck"
	"github.com/alnah/go-slidedeck/internal/config"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	// Environ lists KEY=value pairs, for unknown variable warnings.
	Environ func() []string
	// NewStage creates the browser stage used by export, serve and present.
	NewStage func(cfg *config.Config, logger *zap.Logger) slidedeck.DeckStage
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:      time.Now,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Getenv:   os.Getenv,
		Environ:  os.Environ,
		NewStage: newBrowserStage,
	}
}

func newBrowserStage(cfg *config.Config, logger *zap.Logger) slidedeck.DeckStage {
	return slidedeck.NewBrowserStage(
		slidedeck.WithStageRaster(rasterFrom(cfg)),
		slidedeck.WithStageLogger(logger),
	)
}
