package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func noEnv(string) (string, bool) { return "", false }

func TestParseMinimal_CUEFullConfig(t *testing.T) {
	p := writeConfig(t, "full.cue", `{
  configVersion: "1"
  textSafety: {
    inputTextField: "comment"
    serviceUrl: "http://${SAFETY_HOST}/api/check"
    threshold: 0.7
    outputSafeField: "safe"
    outputCategoryField: "category"
    outputScoreField: "score"
  }
  input: { path: "rows.csv", format: "csv" }
  output: { out: "out.ndjson", format: "ndjson" }
  copies: 3
  ui: { progress: true, progressIntervalMs: 250 }
  log: { level: "debug", format: "console" }
  metrics: { addr: ":9102" }
}
`)
	m, err := ParseMinimal(p)
	require.NoError(t, err)
	env := func(name string) (string, bool) {
		if name == "SAFETY_HOST" {
			return "filter:8001", true
		}
		return "", false
	}
	r := Resolve(m, env)
	assert.Equal(t, Stage{
		InputTextField:      "comment",
		ServiceURL:          "http://filter:8001/api/check",
		Threshold:           0.7,
		OutputSafeField:     "safe",
		OutputCategoryField: "category",
		OutputScoreField:    "score",
	}, r.Stage)
	assert.Equal(t, Input{Path: "rows.csv", Format: "csv"}, r.Input)
	assert.Equal(t, Output{Out: "out.ndjson", Format: "ndjson"}, r.Output)
	assert.Equal(t, 3, r.Copies)
	assert.Equal(t, UI{Progress: true, ProgressIntervalMs: 250}, r.UI)
	assert.Equal(t, Log{Level: "debug", Format: "console"}, r.Log)
	assert.Equal(t, ":9102", r.Metrics.Addr)
}

func TestParseMinimal_CUEDefaults(t *testing.T) {
	p := writeConfig(t, "min.cue", "{\n  configVersion: \"1\"\n  textSafety: { inputTextField: \"text\" }\n}\n")
	m, err := ParseMinimal(p)
	require.NoError(t, err)
	r := Resolve(m, noEnv)
	want := DefaultStage()
	want.InputTextField = "text"
	assert.Equal(t, want, r.Stage)
	assert.Equal(t, "-", r.Input.Path)
	assert.Equal(t, DefaultInputFormat, r.Input.Format)
	assert.Equal(t, "-", r.Output.Out)
	assert.Equal(t, DefaultCopies, r.Copies)
}

func TestParseMinimal_CUEIntegerThreshold(t *testing.T) {
	p := writeConfig(t, "int.cue", "{\n  configVersion: \"1\"\n  textSafety: { inputTextField: \"t\", threshold: 1 }\n}\n")
	m, err := ParseMinimal(p)
	require.NoError(t, err)
	assert.True(t, m.TextSafety.HasThreshold)
	assert.Equal(t, 1.0, m.TextSafety.Threshold)
}

func TestParseMinimal_CUEWrongTypes(t *testing.T) {
	cases := map[string]struct {
		body string
		want string
	}{
		"threshold string": {
			body: "{\n  configVersion: \"1\"\n  textSafety: { threshold: \"high\" }\n}\n",
			want: "textSafety: invalid type for field: threshold (expected number)",
		},
		"field number": {
			body: "{\n  configVersion: \"1\"\n  textSafety: { inputTextField: 3 }\n}\n",
			want: "invalid type for field: textSafety.inputTextField (expected string)",
		},
		"missing version": {
			body: "{\n  textSafety: { inputTextField: \"a\" }\n}\n",
			want: "missing required field: configVersion",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMinimal(writeConfig(t, "bad.cue", tc.body))
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestParseMinimal_UnsupportedExtension(t *testing.T) {
	_, err := ParseMinimal(writeConfig(t, "cfg.json", "{}"))
	require.Error(t, err)
	assert.Equal(t, "unsupported config format: expected .cue or .yaml", err.Error())
}

func TestParseMinimal_YAML(t *testing.T) {
	p := writeConfig(t, "stage.yaml", `configVersion: "1"
textSafety:
  inputTextField: body
  threshold: 0.25
input:
  format: ndjson
copies: 2
`)
	r, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "body", r.Stage.InputTextField)
	assert.Equal(t, 0.25, r.Stage.Threshold)
	assert.Equal(t, DefaultServiceURL, r.Stage.ServiceURL)
	assert.Equal(t, "ndjson", r.Input.Format)
	assert.Equal(t, 2, r.Copies)
}

func TestExpandPlaceholders(t *testing.T) {
	env := func(name string) (string, bool) {
		if name == "HOST" {
			return "example:9000", true
		}
		return "", false
	}
	assert.Equal(t, "http://example:9000/api/check", ExpandPlaceholders("http://${HOST}/api/check", env))
	assert.Equal(t, "http://${MISSING}/x", ExpandPlaceholders("http://${MISSING}/x", env))
	assert.Equal(t, "plain", ExpandPlaceholders("plain", env))
}

func TestCheck(t *testing.T) {
	s := DefaultStage()
	remarks := Check(s)
	require.Len(t, remarks, 1)
	assert.Equal(t, RemarkError, remarks[0].Type)
	assert.EqualError(t, FirstError(remarks), "invalid config: Input text field must be specified")

	s.InputTextField = "text"
	remarks = Check(s)
	assert.Equal(t, []Remark{{Type: RemarkOK, Message: "Stage configuration is valid"}}, remarks)
	assert.NoError(t, FirstError(remarks))

	s.ServiceURL = ""
	s.Threshold = 1.5
	s.OutputScoreField = s.OutputSafeField
	remarks = Check(s)
	assert.Equal(t, []Remark{
		{Type: RemarkError, Message: "Safety service URL must be specified"},
		{Type: RemarkWarning, Message: "Threshold 1.5 is outside [0, 1]"},
		{Type: RemarkError, Message: `Output field "is_safe" is used twice`},
	}, remarks)
}
