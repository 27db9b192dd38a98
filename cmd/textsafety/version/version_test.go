package version

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/flarebyte/textsafety/internal/buildinfo"
)

func withFlags(t *testing.T, short, json bool) {
	t.Helper()
	oldShort, oldJSON := flagShort, flagJSON
	flagShort, flagJSON = short, json
	t.Cleanup(func() { flagShort, flagJSON = oldShort, oldJSON })
}

func TestVersionDefaultOutputStable(t *testing.T) {
	oldVersion, oldCommit, oldDate := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	defer func() {
		buildinfo.Version, buildinfo.Commit, buildinfo.Date = oldVersion, oldCommit, oldDate
	}()
	buildinfo.Version, buildinfo.Commit, buildinfo.Date = "", "", ""
	withFlags(t, false, false)

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	oldStdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = oldStdout }()

	if err := VersionCmd.RunE(VersionCmd, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	_ = w.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "textsafety dev\n" {
		t.Fatalf("unexpected output: %q", string(got))
	}
}

func TestVersionJSON(t *testing.T) {
	withFlags(t, false, true)
	info := buildinfo.Info{Version: "1.2.0", Commit: "0123456789abcdef", Date: "2026-10-01", Go: "go1.24.1", OS: "linux", Arch: "amd64"}
	var stdout, stderr bytes.Buffer

	if err := printVersion(&stdout, &stderr, info, time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("print: %v", err)
	}
	want := `{
  "version": "1.2.0",
  "commit": "0123456789abcdef",
  "date": "2026-10-01",
  "go": "go1.24.1",
  "go_os": "linux",
  "go_arch": "amd64",
  "timestamp": "2026-10-19T08:00:00Z"
}
`
	if stdout.String() != want {
		t.Fatalf("unexpected json:\n%s", stdout.String())
	}
	if stderr.String() != "textsafety version: 1.2.0 (commit=0123456, date=2026-10-01)\n" {
		t.Fatalf("unexpected stderr: %q", stderr.String())
	}
}
