// Package hints turns well-known failures into one-line suggestions the CLI
// appends to its error output, as "\n  hint: a; b".
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-carousel/internal/fileutil"
)

const prefix = "\n  hint: "

// ciVars are set by the CI systems we recognise.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI", "BUILDKITE"}

// IsInContainer reports whether /.dockerenv exists. Replaced in tests.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// InCI reports whether a known CI system is detected.
func InCI() bool {
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// list accumulates hints; the zero value is ready to use.
type list []string

func (l *list) add(h string) { *l = append(*l, h) }

func (l list) String() string {
	if len(l) == 0 {
		return ""
	}
	return prefix + strings.Join(l, "; ")
}

func one(h string) string { return list{h}.String() }

func anySet(keys ...string) bool {
	for _, k := range keys {
		if os.Getenv(k) != "" {
			return true
		}
	}
	return false
}

// ForBrowserLaunch suggests sandbox and binary settings when Chrome does
// not start, depending on where we run.
func ForBrowserLaunch() string {
	var l list
	sandboxOff := os.Getenv("CAROUSEL_NO_SANDBOX") == "1" || os.Getenv("ROD_NO_SANDBOX") == "1"
	if (InCI() || IsInContainer()) && !sandboxOff {
		l.add("set CAROUSEL_NO_SANDBOX=1 for Docker/CI")
	}
	if !anySet("CAROUSEL_BROWSER_BIN", "ROD_BROWSER_BIN", "CHROME_PATH") {
		l.add("set CAROUSEL_BROWSER_BIN to use a custom Chrome")
	}
	l.add("run 'carousel doctor' to check the setup")
	return l.String()
}

// ForNavigationTimeout is shown when slides time out while loading.
func ForNavigationTimeout() string {
	return one("slides with heavy fonts or images may need a longer --nav-timeout")
}

// ForRenderTarget is shown when the browser cannot reach /render.
func ForRenderTarget() string {
	return one("set server.baseURL (or CAROUSEL_BASE_URL) to an address the browser can reach")
}

// ForRenderFailed is shown when slides still fail after retries.
func ForRenderFailed() string {
	return one("raise --retries, or pass --partial to keep the slides that rendered")
}

// ForConfigNotFound suggests --config, and the user config path if it was
// among the searched ones.
func ForConfigNotFound(searchedPaths []string) string {
	var l list
	l.add("use --config /path/to/file.yaml")
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-carousel") {
			l[0] += " or create " + p
			break
		}
	}
	return l.String()
}

// ForOutputDirectory is shown when PNG files cannot be written.
func ForOutputDirectory() string {
	return one("check parent directory exists and is writable")
}

// ForAddrInUse is shown when the listen address is taken.
func ForAddrInUse(addr string) string {
	return one("another process is listening on " + addr + "; pick one with --addr or CAROUSEL_ADDR")
}

// ForAssetNotFound lists the names that do exist. Empty when none are known.
func ForAssetNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return one("available: " + strings.Join(available, ", "))
}
