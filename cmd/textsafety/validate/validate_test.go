package validate

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flarebyte/textsafety/internal/config"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestValidate_OKAndWrite(t *testing.T) {
	in := writeFile(t, "stage.cue", `
configVersion: "1"
textSafety: {
  inputTextField: "comment"
  threshold: 0.7
}
`)
	out := filepath.Join(t.TempDir(), "stage.yaml")
	var buf bytes.Buffer
	if err := validate(in, out, &buf); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := buf.String(); got != `{"ok":true,"remarks":[{"type":"ok","message":"Stage configuration is valid"}]}`+"\n" {
		t.Fatalf("unexpected report: %q", got)
	}
	run, err := config.Load(out)
	if err != nil {
		t.Fatalf("load written file: %v", err)
	}
	if run.Stage.InputTextField != "comment" || run.Stage.Threshold != 0.7 {
		t.Fatalf("unexpected stage: %+v", run.Stage)
	}
}

func TestValidate_ErrorRemarkFailsAndSkipsWrite(t *testing.T) {
	in := writeFile(t, "stage.cue", `
configVersion: "1"
textSafety: { threshold: 2 }
`)
	out := filepath.Join(t.TempDir(), "stage.yaml")
	var buf bytes.Buffer
	err := validate(in, out, &buf)
	if err == nil || err.Error() != "invalid config: Input text field must be specified" {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"type":"warning","message":"Threshold 2 is outside [0, 1]"`) {
		t.Fatalf("missing warning: %q", buf.String())
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("expected no file written, stat err: %v", statErr)
	}
}

func TestValidate_UnsupportedExtension(t *testing.T) {
	in := writeFile(t, "stage.json", `{}`)
	err := validate(in, "", &bytes.Buffer{})
	if err == nil || err.Error() != "unsupported config format: expected .cue or .yaml" {
		t.Fatalf("unexpected error: %v", err)
	}
}
