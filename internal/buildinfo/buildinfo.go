// Package buildinfo exposes version metadata for the CLI. Values can be
// overridden with -ldflags; the cli package values are used as fallbacks.
package buildinfo

import (
	"runtime"
	"strings"

	"github.com/flarebyte/textsafety/cli"
)

var (
	Version = "dev"
	Commit  = ""
	Date    = ""
	BuiltBy = ""
)

// Info is the resolved build metadata of the running binary.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Date    string `json:"date,omitempty"`
	BuiltBy string `json:"built_by,omitempty"`
	Go      string `json:"go"`
	OS      string `json:"go_os"`
	Arch    string `json:"go_arch"`
}

// Current resolves the ldflags values against the cli fallbacks.
func Current() Info {
	info := Info{
		Version: firstNonEmpty(Version, cli.Version, "dev"),
		Commit:  Commit,
		Date:    firstNonEmpty(Date, cli.Date),
		BuiltBy: BuiltBy,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
	return info
}

// ShortCommit is the first seven characters of the commit hash.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 7 {
		return i.Commit[:7]
	}
	return i.Commit
}

// String renders "<version> (commit=<short>, date=<date>)", omitting what is
// unknown.
func (i Info) String() string {
	var parts []string
	if c := i.ShortCommit(); c != "" {
		parts = append(parts, "commit="+c)
	}
	if i.Date != "" {
		parts = append(parts, "date="+i.Date)
	}
	if len(parts) == 0 {
		return i.Version
	}
	return i.Version + " (" + strings.Join(parts, ", ") + ")"
}

// Summary is Current().String().
func Summary() string { return Current().String() }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
