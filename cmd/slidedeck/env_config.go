package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-slidedeck/internal/config"
)

const envPrefix = "SLIDEDECK_"

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without editing deck.yaml.
type envConfig struct {
	ConfigPath string        // SLIDEDECK_CONFIG: config file name or path
	Style      string        // SLIDEDECK_STYLE: style name or CSS path
	Timeout    time.Duration // SLIDEDECK_TIMEOUT: export timeout
	Source     string        // SLIDEDECK_SOURCE: slide source path
	OutputDir  string        // SLIDEDECK_OUTPUT_DIR: output directory
	Title      string        // SLIDEDECK_TITLE: deck title
	Author     string        // SLIDEDECK_AUTHOR: deck author
	Company    string        // SLIDEDECK_COMPANY: deck company
	Workers    int           // SLIDEDECK_WORKERS: parallel browsers
	Addr       string        // SLIDEDECK_ADDR: serve listen address
}

// knownEnvVars lists valid SLIDEDECK_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"SLIDEDECK_CONFIG":     true,
	"SLIDEDECK_STYLE":      true,
	"SLIDEDECK_TIMEOUT":    true,
	"SLIDEDECK_SOURCE":     true,
	"SLIDEDECK_OUTPUT_DIR": true,
	"SLIDEDECK_TITLE":      true,
	"SLIDEDECK_AUTHOR":     true,
	"SLIDEDECK_COMPANY":    true,
	"SLIDEDECK_WORKERS":    true,
	"SLIDEDECK_ADDR":       true,
	"SLIDEDECK_CONTAINER":  true, // read by doctor
}

// loadEnvConfig reads the SLIDEDECK_* variables. Malformed durations and
// counts are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("SLIDEDECK_CONFIG"),
		Style:      getenv("SLIDEDECK_STYLE"),
		Source:     getenv("SLIDEDECK_SOURCE"),
		OutputDir:  getenv("SLIDEDECK_OUTPUT_DIR"),
		Title:      getenv("SLIDEDECK_TITLE"),
		Author:     getenv("SLIDEDECK_AUTHOR"),
		Company:    getenv("SLIDEDECK_COMPANY"),
		Addr:       getenv("SLIDEDECK_ADDR"),
	}
	if timeout := getenv("SLIDEDECK_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := getenv("SLIDEDECK_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	return cfg
}

// warnUnknownEnvVars warns about unrecognized SLIDEDECK_* variables,
// e.g. SLIDEDECK_THEME instead of SLIDEDECK_STYLE.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overrides config file values with the environment.
// Precedence: CLI flags > env vars > config file > defaults
// (flags are applied afterwards by applyDeckFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Style != "" {
		cfg.Theme.Style = env.Style
	}
	if env.Timeout > 0 {
		cfg.Timing.Timeout = env.Timeout
	}
	if env.Source != "" {
		cfg.Deck.Source = env.Source
	}
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.Title != "" {
		cfg.Deck.Title = env.Title
	}
	if env.Author != "" {
		cfg.Deck.Author = env.Author
	}
	if env.Company != "" {
		cfg.Deck.Company = env.Company
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
}
