package main

import (
	"fmt"
	"path/filepath"

	"github.com/alnah/go-slidedeck/internal/config"
	"github.com/alnah/go-slidedeck/internal/fileutil"
)

// sampleSlides starts a new deck.
const sampleSlides = `# Salvage Management System

NEM Insurance PLC

---

## Agenda

- Current process
- Proposed system
- Next steps

---

## Thank you

Questions?
`

// runInit writes deck.yaml with the defaults, and slides.md when no slide
// source exists yet, into the given directory (default ".").
func runInit(args []string, env *Environment) error {
	f, rest, err := parseInitFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	dir := "."
	switch len(rest) {
	case 0:
	case 1:
		dir = rest[0]
	default:
		return fmt.Errorf("%w: init takes at most one directory", errUsage)
	}

	cfg := config.DefaultConfig()
	cfgPath := filepath.Join(dir, defaultConfigName+".yaml")
	if fileutil.FileExists(cfgPath) && !f.force {
		return fmt.Errorf("%w: %s already exists (use --force to overwrite)", errUsage, cfgPath)
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(cfgPath, data); err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "wrote %s\n", cfgPath)

	slidesPath := filepath.Join(dir, cfg.Deck.Source)
	if fileutil.FileExists(slidesPath) {
		return nil
	}
	if err := fileutil.WriteFileAtomic(slidesPath, []byte(sampleSlides)); err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "wrote %s\n", slidesPath)
	return nil
}
