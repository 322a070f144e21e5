package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-slidedeck/internal/config"
	"github.com/alnah/go-slidedeck/internal/hints"
	"github.com/alnah/go-slidedeck/internal/server"
	"github.com/alnah/go-slidedeck/internal/watch"
)

// readHeaderTimeout guards the preview server against slow clients.
const readHeaderTimeout = 10 * time.Second

func runServe(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	source, err := sourceArg("serve", rest)
	if err != nil {
		return err
	}
	cfg, logger, err := setup(f.common, f.deck, source, env)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	timeout, err := resolveTimeout(f.timeout, cfg)
	if err != nil {
		return err
	}

	deck, err := buildDeck(ctx, cfg, true, logger)
	if err != nil {
		return err
	}
	assemblers, err := assemblersFor("all", cfg)
	if err != nil {
		return err
	}

	stage := env.NewStage(cfg, logger)
	defer func() { _ = stage.Close() }()

	srv := server.New(deck, stage, assemblers,
		server.WithLogger(logger),
		server.WithExportTimeout(timeout),
		server.WithExportOptions(exportOptions(cfg, logger)...))
	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	// Live-reload streams never end on their own.
	httpSrv.RegisterOnShutdown(srv.Close)

	var w *watch.Watcher
	if !f.noWatch {
		if w, err = watch.New(watchPaths(cfg), watch.DefaultDebounce, logger); err != nil {
			return err
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(gCtx, httpSrv, logger); err != nil {
			if errors.Is(err, syscall.EADDRINUSE) {
				return fmt.Errorf("%w%s", err, hints.ForAddrInUse(cfg.Server.Addr))
			}
			return err
		}
		return nil
	})
	if w != nil {
		g.Go(func() error {
			return w.Run(gCtx, func() {
				next, err := buildDeck(gCtx, cfg, true, logger)
				if err != nil {
					logger.Error("rebuilding deck", zap.Error(err))
					return
				}
				srv.Reload(next)
			})
		})
	}

	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "serving %q (%d slides) at http://%s\n", deck.Title, deck.Slides, cfg.Server.Addr)
	}
	return g.Wait()
}

// watchPaths lists what a rebuild depends on: the slide source, a style
// file and the asset directory.
func watchPaths(cfg *config.Config) []string {
	paths := []string{cfg.Deck.Source}
	if isStyleFile(cfg.Theme.Style) {
		paths = append(paths, cfg.Theme.Style)
	}
	if cfg.Theme.AssetPath != "" {
		paths = append(paths, cfg.Theme.AssetPath)
	}
	return paths
}
