package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: slidedeck <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Assemble the HTML deck")
	fmt.Fprintln(w, "  export     Export decks to PDF and PPTX")
	fmt.Fprintln(w, "  serve      Preview the deck with export buttons and live reload")
	fmt.Fprintln(w, "  watch      Rebuild the HTML deck when sources change")
	fmt.Fprintln(w, "  present    Present the deck in the terminal")
	fmt.Fprintln(w, "  init       Write a starter deck.yaml and slides.md")
	fmt.Fprintln(w, "  doctor     Check the browser and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'slidedeck help <command>' for details on a specific command.")
}

// printDeckFlags prints the flags shared by deck commands.
func printDeckFlags(w io.Writer) {
	fmt.Fprintln(w, "Deck:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (default: deck.yaml if present)")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "      --style <s>           Style name or CSS file path")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory overriding embedded assets")
	fmt.Fprintln(w, "      --title <s>           Deck title")
	fmt.Fprintln(w, "      --no-numbers          Hide slide numbers")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug output")
}

func printSourceArg(w io.Writer) {
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  source   Markdown or HTML file, or a directory of them (default: deck.source)")
	fmt.Fprintln(w)
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: slidedeck build [source] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Assemble the slides into one self-contained HTML deck (output.html).")
	fmt.Fprintln(w)
	printSourceArg(w)
	printDeckFlags(w)
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: slidedeck export [pdf|pptx|all] [deck.yaml...] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Capture every slide in a headless browser and write PDF and/or PPTX files.")
	fmt.Fprintln(w, "Several deck configs are exported in parallel.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export:")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel browsers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Timeout for the whole run (e.g. 90s, 3m)")
	fmt.Fprintln(w)
	printDeckFlags(w)
	fmt.Fprintln(w)
	printEnvVars(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: slidedeck serve [source] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve the deck with PDF and PPTX download buttons. Pages reload when")
	fmt.Fprintln(w, "sources change.")
	fmt.Fprintln(w)
	printSourceArg(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default 127.0.0.1:8080)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Timeout per export")
	fmt.Fprintln(w, "      --no-watch            Do not reload on source changes")
	fmt.Fprintln(w)
	printDeckFlags(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: slidedeck watch [source] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build the HTML deck, then rebuild it on every source change.")
	fmt.Fprintln(w)
	printSourceArg(w)
	printDeckFlags(w)
}

// printPresentUsage prints usage for the present command.
func printPresentUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: slidedeck present [source] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Present the deck in the terminal.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keys:")
	fmt.Fprintln(w, "  left/h, right/l           Previous / next slide")
	fmt.Fprintln(w, "  home/g, end/G             First / last slide")
	fmt.Fprintln(w, "  p, x                      Export PDF / PPTX")
	fmt.Fprintln(w, "  q, esc                    Quit")
	fmt.Fprintln(w)
	printSourceArg(w)
	printDeckFlags(w)
}

// printInitUsage prints usage for the init command.
func printInitUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: slidedeck init [dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Write deck.yaml with the default settings, and slides.md if missing.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -f, --force               Overwrite an existing deck.yaml")
}

func printEnvVars(w io.Writer) {
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  SLIDEDECK_CONFIG, SLIDEDECK_SOURCE, SLIDEDECK_OUTPUT_DIR, SLIDEDECK_STYLE,")
	fmt.Fprintln(w, "  SLIDEDECK_TITLE, SLIDEDECK_AUTHOR, SLIDEDECK_COMPANY, SLIDEDECK_TIMEOUT,")
	fmt.Fprintln(w, "  SLIDEDECK_WORKERS, SLIDEDECK_ADDR")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN, ROD_NO_SANDBOX   Browser selection and sandboxing")
	fmt.Fprintln(w, "  A .env file in the working directory is loaded first.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "export":
		printExportUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "present":
		printPresentUsage(env.Stdout)
	case "init":
		printInitUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: slidedeck doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check that a browser is available for exports.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: slidedeck version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: slidedeck help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
