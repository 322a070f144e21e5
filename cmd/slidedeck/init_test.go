package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-slidedeck/internal/config"
)

func TestRunInit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tio := newTestEnv(nil, nil)
	if code := runMain(context.Background(), []string{"init", dir}, tio.env); code != ExitSuccess {
		t.Fatalf("exit code = %d, stderr %q", code, tio.stderr.String())
	}

	cfgPath := filepath.Join(dir, "deck.yaml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Deck.Title != config.DefaultConfig().Deck.Title {
		t.Errorf("Deck.Title = %q", cfg.Deck.Title)
	}
	slides, err := os.ReadFile(filepath.Join(dir, "slides.md"))
	if err != nil {
		t.Fatalf("slides.md not written: %v", err)
	}
	if string(slides) != sampleSlides {
		t.Error("slides.md differs from the sample")
	}

	// The generated deck builds as is.
	if code := runMain(context.Background(), []string{"build", "-q", "-c", cfgPath, "-o", dir}, tio.env); code != ExitSuccess {
		t.Fatalf("build of the starter deck: exit code = %d, stderr %q", code, tio.stderr.String())
	}
}

func TestRunInit_Existing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "deck.yaml")
	slidesPath := filepath.Join(dir, "slides.md")
	if err := os.WriteFile(cfgPath, []byte("deck:\n  title: Mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(slidesPath, []byte("# Mine"), 0o644); err != nil {
		t.Fatal(err)
	}

	tio := newTestEnv(nil, nil)
	if code := runMain(context.Background(), []string{"init", dir}, tio.env); code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(tio.stderr.String(), "--force") {
		t.Errorf("stderr = %q, want --force suggestion", tio.stderr.String())
	}

	tio = newTestEnv(nil, nil)
	if code := runMain(context.Background(), []string{"init", "--force", dir}, tio.env); code != ExitSuccess {
		t.Fatalf("--force exit code = %d, stderr %q", code, tio.stderr.String())
	}
	slides, _ := os.ReadFile(slidesPath)
	if string(slides) != "# Mine" {
		t.Error("init overwrote existing slides")
	}
	if strings.Contains(tio.stdout.String(), "slides.md") {
		t.Errorf("stdout = %q, slides.md reported as written", tio.stdout.String())
	}
}
