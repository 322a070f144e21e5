package main

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	slidedeck "github.com/alnah/go-slidedeck"
	"github.com/alnah/go-slidedeck/internal/config"
	"github.com/alnah/go-slidedeck/internal/fileutil"
)

// defaultHTMLName is used when output.html is empty.
const defaultHTMLName = "presentation.html"

// setup loads the config for a deck command and builds its logger.
func setup(common commonFlags, deck deckFlags, source string, env *Environment) (*config.Config, *zap.Logger, error) {
	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	cfg, err := loadConfig(common.config, envCfg)
	if err != nil {
		return nil, nil, err
	}
	if err := prepareConfig(cfg, envCfg, deck, source); err != nil {
		return nil, nil, err
	}
	return cfg, newLogger(env.Stderr, common), nil
}

// sourceArg returns the optional single positional source.
func sourceArg(cmd string, rest []string) (string, error) {
	switch len(rest) {
	case 0:
		return "", nil
	case 1:
		return rest[0], nil
	}
	return "", fmt.Errorf("%w: %s takes at most one source, got %d", errUsage, cmd, len(rest))
}

func runBuild(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseBuildFlags("build", args, env.Stderr)
	if err != nil {
		return err
	}
	source, err := sourceArg("build", rest)
	if err != nil {
		return err
	}
	cfg, logger, err := setup(f.common, f.deck, source, env)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	path, deck, err := buildHTML(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "wrote %s (%d slides)\n", path, deck.Slides)
	}
	return nil
}

// buildHTML assembles the deck and writes it to the configured HTML file.
func buildHTML(ctx context.Context, cfg *config.Config, logger *zap.Logger) (string, *slidedeck.Deck, error) {
	deck, err := buildDeck(ctx, cfg, false, logger)
	if err != nil {
		return "", nil, err
	}
	path := htmlPath(cfg)
	if err := fileutil.WriteFileAtomic(path, []byte(deck.HTML)); err != nil {
		return "", nil, fmt.Errorf("%w: %w", slidedeck.ErrSave, err)
	}
	return path, deck, nil
}

func htmlPath(cfg *config.Config) string {
	return filepath.Join(cfg.Output.Dir, orDefault(cfg.Output.HTML, defaultHTMLName))
}
