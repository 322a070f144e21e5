package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	slidedeck "github.com/alnah/go-slidedeck"
	"github.com/alnah/go-slidedeck/internal/config"
)

// isKindArg reports whether s names export variants rather than a config.
func isKindArg(s string) bool {
	switch strings.ToLower(s) {
	case "pdf", "pptx", "deck", "all":
		return true
	}
	return false
}

// runExport exports one or more decks. Usage:
//
//	slidedeck export [pdf|pptx|all] [deck.yaml...]
//
// Each config is one deck; decks run in parallel on pooled browsers.
func runExport(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseExportFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	kind := ""
	if len(rest) > 0 && isKindArg(rest[0]) {
		kind, rest = rest[0], rest[1:]
	}
	configs := rest
	switch {
	case len(configs) == 0:
		configs = []string{f.common.config}
	case f.common.config != "":
		return fmt.Errorf("%w: pass deck configs as arguments or with --config, not both", errUsage)
	}

	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())
	logger := newLogger(env.Stderr, f.common)
	defer func() { _ = logger.Sync() }()

	jobs := make([]slidedeck.BatchJob, 0, len(configs))
	var first *config.Config
	var timeout time.Duration
	for _, name := range configs {
		job, cfg, d, err := prepareJob(ctx, name, kind, f, envCfg, logger)
		if err != nil {
			if len(configs) > 1 {
				return fmt.Errorf("%s: %w", jobName(name), err)
			}
			return err
		}
		if first == nil {
			first = cfg
		}
		timeout = max(timeout, d)
		jobs = append(jobs, job)
	}

	workers := f.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	size := min(slidedeck.ResolvePoolSize(workers), len(jobs))
	logger.Debug("export pool", zap.Int("size", size), zap.Int("decks", len(jobs)))

	// Pooled stages are sized from the first deck's raster settings.
	pool := slidedeck.NewExporterPool(size, func() slidedeck.DeckStage {
		return env.NewStage(first, logger)
	})
	defer func() { _ = pool.Close() }()

	runCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	results := slidedeck.ExportBatch(runCtx, pool, jobs)
	return reportBatch(env, f.common.quiet, jobs, results)
}

// prepareJob loads one deck config and assembles its deck.
func prepareJob(ctx context.Context, name, kind string, f *exportFlags, envCfg *envConfig, logger *zap.Logger) (slidedeck.BatchJob, *config.Config, time.Duration, error) {
	cfg, err := loadConfig(name, envCfg)
	if err != nil {
		return slidedeck.BatchJob{}, nil, 0, err
	}
	if err := prepareConfig(cfg, envCfg, f.deck, ""); err != nil {
		return slidedeck.BatchJob{}, nil, 0, err
	}
	timeout, err := resolveTimeout(f.timeout, cfg)
	if err != nil {
		return slidedeck.BatchJob{}, nil, 0, err
	}
	assemblers, err := assemblersFor(kind, cfg)
	if err != nil {
		return slidedeck.BatchJob{}, nil, 0, err
	}
	deck, err := buildDeck(ctx, cfg, false, logger)
	if err != nil {
		return slidedeck.BatchJob{}, nil, 0, err
	}
	job := slidedeck.BatchJob{
		Name:       jobName(name),
		Deck:       deck,
		Assemblers: assemblers,
		Sink:       &slidedeck.DirSink{Dir: cfg.Output.Dir},
		Options:    exportOptions(cfg, logger.With(zap.String("deck", jobName(name)))),
	}
	return job, cfg, timeout, nil
}

func jobName(config string) string {
	if config == "" {
		return defaultConfigName
	}
	return strings.TrimSuffix(filepath.Base(config), filepath.Ext(config))
}

// reportBatch prints one line per artifact and returns the failures joined.
func reportBatch(env *Environment, quiet bool, jobs []slidedeck.BatchJob, results []slidedeck.BatchResult) error {
	var errs []error
	for i, r := range results {
		if r.Err != nil {
			if len(results) > 1 {
				errs = append(errs, fmt.Errorf("%s: %w", r.Name, r.Err))
			} else {
				errs = append(errs, r.Err)
			}
			continue
		}
		if quiet {
			continue
		}
		dir := ""
		if s, ok := jobs[i].Sink.(*slidedeck.DirSink); ok {
			dir = s.Dir
		}
		for _, res := range r.Results {
			fmt.Fprintf(env.Stdout, "wrote %s (%d pages, %s)\n",
				filepath.Join(dir, res.Filename), res.Pages, res.Duration.Round(time.Millisecond))
		}
	}
	return errors.Join(errs...)
}
