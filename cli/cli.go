// Package cli holds version values injected by release scripts.
package cli

// Version and Date are set at build time using ldflags, e.g.:
//
//	-ldflags "-X 'github.com/flarebyte/textsafety/cli.Version=1.2.3' -X 'github.com/flarebyte/textsafety/cli.Date=2026-10-19'"
var (
	Version string
	Date    string
)
