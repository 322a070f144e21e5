// Package hints turns common failures into one-line suggestions.
// Every hint renders as "\n  hint: <text>" so it can be appended to an
// error message as-is.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-slidedeck/internal/fileutil"
)

// Env reads environment variables. Tests swap it out.
type Env func(string) string

// InContainer reports whether the process runs inside Docker.
var InContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ciVars are set by the common CI providers.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "BUILDKITE"}

// ForBrowserConnect suggests browser settings after a launch failure.
func ForBrowserConnect(getenv Env) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	var out []string

	inCI := false
	for _, v := range ciVars {
		if getenv(v) != "" {
			inCI = true
			break
		}
	}
	if (inCI || InContainer()) && getenv("ROD_NO_SANDBOX") == "" {
		out = append(out, "set ROD_NO_SANDBOX=1 in containers and CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		out = append(out, "set ROD_BROWSER_BIN to a local Chrome or Chromium")
	}
	out = append(out, "run 'slidedeck doctor' to check the browser")
	return join(out)
}

// ForTimeout suggests a longer timeout for big decks.
func ForTimeout() string {
	return format("large decks take longer; raise --timeout or timing.timeout")
}

// ForExportRunning explains the single-job rule.
func ForExportRunning() string {
	return format("one export runs at a time; wait for it to finish")
}

// ForConfigNotFound points at --config, or at the user config file when
// it is among the searched paths.
func ForConfigNotFound(searched []string) string {
	hint := "pass --config /path/to/deck.yaml or run 'slidedeck init'"
	for _, p := range searched {
		if strings.Contains(slashed(p), "go-slidedeck/") {
			hint += "; or create " + p
			break
		}
	}
	return format(hint)
}

// ForSlideSource lists the accepted slide sources.
func ForSlideSource() string {
	return format("slides come from .md, .markdown, .html or .htm files, or a directory of them")
}

// ForOutputDirectory suggests checking the output location.
func ForOutputDirectory() string {
	return format("check the output directory exists and is writable")
}

// ForStyleNotFound lists the embedded styles.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available styles: " + strings.Join(available, ", ") + "; or pass a .css path")
}

// ForAddrInUse suggests another listen address.
func ForAddrInUse(addr string) string {
	return format(addr + " is taken; pick another with --addr")
}

// slashed normalizes separators so matching works on Windows paths.
func slashed(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func join(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
