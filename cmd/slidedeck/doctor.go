package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"

	"github.com/alnah/go-slidedeck/internal/config"
	"github.com/alnah/go-slidedeck/internal/hints"
)

// Finding levels, worst last.
const (
	levelOK    = "ok"
	levelWarn  = "warn"
	levelError = "error"
)

// Report statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// Report areas, in print order.
var doctorAreas = []string{"browser", "environment", "system", "deck"}

// doctorBuildTimeout bounds the trial deck build.
const doctorBuildTimeout = 10 * time.Second

type finding struct {
	Area    string `json:"area"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// doctorReport is what `slidedeck doctor` prints, or encodes with --json.
type doctorReport struct {
	Status   string    `json:"status"`
	OS       string    `json:"os"`
	Arch     string    `json:"arch"`
	Browser  string    `json:"browser,omitempty"`
	Sandbox  bool      `json:"sandbox"`
	CI       bool      `json:"ci"`
	Slides   int       `json:"slides,omitempty"`
	Findings []finding `json:"findings"`
}

func (r *doctorReport) add(area, level, format string, args ...any) {
	r.Findings = append(r.Findings, finding{Area: area, Level: level, Message: fmt.Sprintf(format, args...)})
}

// count returns how many findings have level.
func (r *doctorReport) count(level string) int {
	n := 0
	for _, f := range r.Findings {
		if f.Level == level {
			n++
		}
	}
	return n
}

// doctorCheck inspects one part of the setup.
type doctorCheck func(r *doctorReport, getenv func(string) string)

var doctorChecks = []doctorCheck{
	checkBrowser,
	checkEnvironment,
	checkTempDir,
	checkDeck,
}

// lookBrowser finds a local browser when ROD_BROWSER_BIN is unset.
var lookBrowser = launcher.LookPath

// runDoctorCmd runs every check and prints the report. It exits 1 when
// exports cannot run, warnings alone exit 0.
func runDoctorCmd(args []string, env *Environment) int {
	asJSON := false
	for _, a := range args {
		asJSON = asJSON || a == "--json"
	}
	getenv := env.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	r := runDoctor(getenv)
	if asJSON {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(r)
	} else {
		printDoctorReport(env.Stdout, r)
	}
	if r.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

func runDoctor(getenv func(string) string) *doctorReport {
	r := &doctorReport{OS: runtime.GOOS, Arch: runtime.GOARCH}
	for _, check := range doctorChecks {
		check(r, getenv)
	}
	switch {
	case r.count(levelError) > 0:
		r.Status = statusErrors
	case r.count(levelWarn) > 0:
		r.Status = statusWarnings
	default:
		r.Status = statusReady
	}
	return r
}

func checkBrowser(r *doctorReport, getenv func(string) string) {
	path := getenv("ROD_BROWSER_BIN")
	if path == "" {
		var ok bool
		if path, ok = lookBrowser(); !ok {
			r.add("browser", levelError, "no Chrome or Chromium found; install one or set ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(path); err != nil {
		r.add("browser", levelError, "no browser at %s", path)
		return
	}
	r.Browser = path
	r.add("browser", levelOK, "found %s", path)

	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- browser path from env or rod lookup
	if err != nil {
		r.add("browser", levelWarn, "%s --version failed: %v", path, err)
	} else {
		r.add("browser", levelOK, "%s", strings.TrimSpace(string(out)))
	}

	r.Sandbox = getenv("ROD_NO_SANDBOX") != "1"
	if r.Sandbox {
		r.add("browser", levelOK, "sandbox on")
	} else {
		r.add("browser", levelOK, "sandbox off (ROD_NO_SANDBOX=1)")
	}
}

func checkEnvironment(r *doctorReport, getenv func(string) string) {
	r.add("environment", levelOK, "%s/%s", r.OS, r.Arch)

	container, signal := isContainer(getenv)
	if container {
		r.add("environment", levelOK, "container (%s)", signal)
	}
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "BUILDKITE"} {
		if getenv(v) != "" {
			r.CI = true
			r.add("environment", levelOK, "CI (%s)", v)
			break
		}
	}
	if (container || r.CI) && getenv("ROD_NO_SANDBOX") != "1" {
		r.add("environment", levelWarn, "Chrome usually needs ROD_NO_SANDBOX=1 here")
	}
}

// isContainer reports whether we run in a container and which signal
// said so.
func isContainer(getenv func(string) string) (bool, string) {
	switch {
	case getenv("SLIDEDECK_CONTAINER") == "1":
		return true, "SLIDEDECK_CONTAINER=1"
	case hints.InContainer():
		return true, "/.dockerenv"
	case getenv("container") != "":
		return true, "container=" + getenv("container")
	case getenv("KUBERNETES_SERVICE_HOST") != "":
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkTempDir verifies decks can be staged for the browser.
func checkTempDir(r *doctorReport, _ func(string) string) {
	f, err := os.CreateTemp("", "slidedeck-doctor-*.html")
	if err != nil {
		r.add("system", levelError, "cannot write to %s: %v", os.TempDir(), err)
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	r.add("system", levelOK, "temp directory writable")
}

// checkDeck builds the deck of the working directory, if any. A missing
// config only warns since flags can name a source.
func checkDeck(r *doctorReport, getenv func(string) string) {
	name := orDefault(getenv("SLIDEDECK_CONFIG"), defaultConfigName)
	cfg, err := config.LoadConfig(name)
	if err != nil {
		r.add("deck", levelWarn, "no deck config: %v", err)
		return
	}
	r.add("deck", levelOK, "config %s", name)

	ctx, cancel := context.WithTimeout(context.Background(), doctorBuildTimeout)
	defer cancel()
	deck, err := buildDeck(ctx, cfg, false, zap.NewNop())
	if err != nil {
		r.add("deck", levelWarn, "%s does not build: %v", cfg.Deck.Source, err)
		return
	}
	r.Slides = deck.Slides
	r.add("deck", levelOK, "%s: %d slides", cfg.Deck.Source, deck.Slides)
}

var levelTags = map[string]string{levelOK: "[OK]", levelWarn: "[WARN]", levelError: "[ERROR]"}

func printDoctorReport(w io.Writer, r *doctorReport) {
	fmt.Fprintln(w, "slidedeck doctor")
	for _, area := range doctorAreas {
		header := false
		for _, f := range r.Findings {
			if f.Area != area {
				continue
			}
			if !header {
				fmt.Fprintf(w, "\n%s\n", area)
				header = true
			}
			fmt.Fprintf(w, "  %-7s %s\n", levelTags[f.Level], f.Message)
		}
	}
	fmt.Fprintln(w)

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Ready to export.")
	case statusWarnings:
		fmt.Fprintf(w, "Ready to export, %d warning(s).\n", r.count(levelWarn))
	default:
		fmt.Fprintf(w, "Not ready: %d error(s).\n", r.count(levelError))
	}
}
