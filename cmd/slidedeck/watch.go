package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/go-slidedeck/internal/fileutil"
	"github.com/alnah/go-slidedeck/internal/watch"
)

// runWatch builds the HTML deck, then rebuilds it whenever a source
// changes until interrupted. Rebuild failures are logged and the previous
// output is kept.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseBuildFlags("watch", args, env.Stderr)
	if err != nil {
		return err
	}
	source, err := sourceArg("watch", rest)
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
		fmt.Fprintf(env.Stdout, "wrote %s (%d slides), watching for changes\n", path, deck.Slides)
	}

	w, err := watch.New(watchPaths(cfg), watch.DefaultDebounce, logger)
	if err != nil {
		return err
	}
	return w.Run(ctx, func() {
		path, deck, err := buildHTML(ctx, cfg, logger)
		if err != nil {
			logger.Error("rebuilding deck", zap.Error(err))
			return
		}
		if !f.common.quiet {
			fmt.Fprintf(env.Stdout, "%s rebuilt %s (%d slides)\n", env.Now().Format("15:04:05"), path, deck.Slides)
		}
	})
}

// isStyleFile reports whether a theme style names a CSS file rather than
// an embedded style.
func isStyleFile(style string) bool {
	return style != "" && fileutil.IsFilePath(style)
}
