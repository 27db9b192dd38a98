package buildinfo

import (
	"testing"

	"github.com/flarebyte/textsafety/cli"
)

func TestSummaryFallsBackToCLI(t *testing.T) {
	oldV, oldD, oldCV, oldCD := Version, Date, cli.Version, cli.Date
	defer func() { Version, Date, cli.Version, cli.Date = oldV, oldD, oldCV, oldCD }()

	Version, Date = "", ""
	cli.Version, cli.Date = "0.9.1", "2026-09-30"
	if got := Summary(); got != "0.9.1 (date=2026-09-30)" {
		t.Fatalf("unexpected summary: %q", got)
	}
	cli.Version, cli.Date = "", ""
	if got := Summary(); got != "dev" {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestInfoString(t *testing.T) {
	i := Info{Version: "1.0.0", Commit: "abcdef0123"}
	if got := i.String(); got != "1.0.0 (commit=abcdef0)" {
		t.Fatalf("unexpected string: %q", got)
	}
	if got := (Info{Version: "1.0.0", Commit: "abc"}).ShortCommit(); got != "abc" {
		t.Fatalf("unexpected short commit: %q", got)
	}
}
