package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	slidedeck "github.com/alnah/go-slidedeck"
	"github.com/alnah/go-slidedeck/internal/config"
)

func loadTestConfig(t *testing.T, path string) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	return cfg
}

func TestNewPresenter(t *testing.T) {
	t.Parallel()

	_, path := setupDeckDir(t)
	cfg := loadTestConfig(t, path)
	stage := &fakeStage{}
	tio := newTestEnv(nil, func() slidedeck.DeckStage { return stage })

	model, got, err := newPresenter(context.Background(), cfg, tio.env, zap.NewNop())
	if err != nil {
		t.Fatalf("newPresenter() error = %v", err)
	}
	defer got.Close()

	if stage.slides != 3 {
		t.Errorf("stage loaded %d slides, want 3", stage.slides)
	}
	next, _ := model.Update(tea.KeyMsg{Type: tea.KeyRight})
	view := next.View()
	for _, want := range []string{"Quarterly Review", "Numbers", "2 / 3", "Download PDF", "Download PPTX"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestNewPresenter_LoadFails(t *testing.T) {
	t.Parallel()

	_, path := setupDeckDir(t)
	cfg := loadTestConfig(t, path)
	stage := &fakeStage{loadErr: slidedeck.ErrBrowserConnect}
	tio := newTestEnv(nil, func() slidedeck.DeckStage { return stage })

	if _, _, err := newPresenter(context.Background(), cfg, tio.env, zap.NewNop()); !errors.Is(err, slidedeck.ErrBrowserConnect) {
		t.Fatalf("newPresenter() error = %v, want ErrBrowserConnect", err)
	}
	if !stage.closed {
		t.Error("stage not closed after a failed load")
	}
}
