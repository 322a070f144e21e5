package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// errUsage marks command line mistakes.
var errUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// deckFlags override the deck config for one run.
type deckFlags struct {
	output    string
	style     string
	assetPath string
	title     string
	noNumbers bool
}

// buildFlags holds flags for build, watch and present.
type buildFlags struct {
	common commonFlags
	deck   deckFlags
}

// exportFlags holds flags for the export command.
type exportFlags struct {
	common  commonFlags
	deck    deckFlags
	workers int
	timeout string
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common  commonFlags
	deck    deckFlags
	addr    string
	timeout string
	noWatch bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output")
}

// addDeckFlags adds deck override flags to a FlagSet.
func addDeckFlags(fs *flag.FlagSet, f *deckFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVar(&f.style, "style", "", "style name or CSS file path")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding embedded assets")
	fs.StringVar(&f.title, "title", "", "deck title")
	fs.BoolVar(&f.noNumbers, "no-numbers", false, "hide slide numbers")
}

func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parse runs fs.Parse, marking failures as usage errors. -h/--help
// returns flag.ErrHelp unchanged.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return fs.Args(), nil
}

func parseBuildFlags(name string, args []string, w io.Writer) (*buildFlags, []string, error) {
	f := &buildFlags{}
	usage := printBuildUsage
	switch name {
	case "watch":
		usage = printWatchUsage
	case "present":
		usage = printPresentUsage
	}
	fs := newFlagSet(name, w, usage)
	addCommonFlags(fs, &f.common)
	addDeckFlags(fs, &f.deck)
	rest, err := parse(fs, args)
	return f, rest, err
}

func parseExportFlags(args []string, w io.Writer) (*exportFlags, []string, error) {
	f := &exportFlags{}
	fs := newFlagSet("export", w, printExportUsage)
	addCommonFlags(fs, &f.common)
	addDeckFlags(fs, &f.deck)
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel browsers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "export timeout per deck (e.g. 90s, 3m)")
	rest, err := parse(fs, args)
	if err == nil && f.workers < 0 {
		err = fmt.Errorf("%w: --workers must not be negative", errUsage)
	}
	return f, rest, err
}

func parseServeFlags(args []string, w io.Writer) (*serveFlags, []string, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", w, printServeUsage)
	addCommonFlags(fs, &f.common)
	addDeckFlags(fs, &f.deck)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "export timeout (e.g. 90s, 3m)")
	fs.BoolVar(&f.noWatch, "no-watch", false, "do not reload on source changes")
	rest, err := parse(fs, args)
	return f, rest, err
}

// initFlags holds flags for the init command.
type initFlags struct {
	force bool
}

func parseInitFlags(args []string, w io.Writer) (*initFlags, []string, error) {
	f := &initFlags{}
	fs := newFlagSet("init", w, printInitUsage)
	fs.BoolVarP(&f.force, "force", "f", false, "overwrite an existing deck.yaml")
	rest, err := parse(fs, args)
	return f, rest, err
}
