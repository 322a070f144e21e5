package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	slidedeck "github.com/alnah/go-slidedeck"
	"github.com/alnah/go-slidedeck/internal/config"
	"github.com/alnah/go-slidedeck/internal/tui"
)

// presentLogFile receives debug logs of the present command, since the
// terminal belongs to the UI.
const presentLogFile = "slidedeck.log"

func runPresent(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseBuildFlags("present", args, env.Stderr)
	if err != nil {
		return err
	}
	source, err := sourceArg("present", rest)
	if err != nil {
		return err
	}
	cfg, _, err := setup(f.common, f.deck, source, env)
	if err != nil {
		return err
	}
	logger, closeLog, err := presentLogger(f.common)
	if err != nil {
		return err
	}
	defer closeLog()

	model, stage, err := newPresenter(ctx, cfg, env, logger)
	if err != nil {
		return err
	}
	defer func() { _ = stage.Close() }()

	_, err = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// newPresenter loads the deck into a stage and wires the terminal model
// to it. The caller closes the returned stage.
func newPresenter(ctx context.Context, cfg *config.Config, env *Environment, logger *zap.Logger) (tui.Model, slidedeck.DeckStage, error) {
	deck, err := buildDeck(ctx, cfg, false, logger)
	if err != nil {
		return tui.Model{}, nil, err
	}
	texts, err := deck.Text()
	if err != nil {
		return tui.Model{}, nil, err
	}
	assemblers, err := assemblersFor("all", cfg)
	if err != nil {
		return tui.Model{}, nil, err
	}

	stage := env.NewStage(cfg, logger)
	n, err := stage.Load(ctx, deck)
	if err != nil {
		_ = stage.Close()
		return tui.Model{}, nil, err
	}
	if n != deck.Slides {
		_ = stage.Close()
		return tui.Model{}, nil, fmt.Errorf("%w: page has %d slides, deck has %d", slidedeck.ErrAssembly, n, deck.Slides)
	}

	alerts := &tui.AlertBox{}
	theme := themeFrom(cfg)
	model := tui.New(ctx, tui.Config{
		Title:      deck.Title,
		Slides:     texts,
		Presenter:  slidedeck.NewPresentation(n, stage),
		Exporter:   slidedeck.NewExporter(stage, append(exportOptions(cfg, logger), slidedeck.WithNotifier(alerts))...),
		Assemblers: assemblers,
		Sink:       &slidedeck.DirSink{Dir: cfg.Output.Dir},
		Alerts:     alerts,
		Styles:     tui.NewStyles(theme.SlideBackground, theme.Accent, theme.Text),
	})
	return model, stage, nil
}

// presentLogger logs to presentLogFile with --verbose and nowhere otherwise.
func presentLogger(f commonFlags) (*zap.Logger, func(), error) {
	if !f.verbose {
		return zap.NewNop(), func() {}, nil
	}
	file, err := os.OpenFile(presentLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(file, f)
	return logger, func() {
		_ = logger.Sync()
		_ = file.Close()
	}, nil
}
