package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
)

const (
	DefaultServiceURL          = "http://localhost:8001/api/check"
	DefaultThreshold           = 0.5
	DefaultOutputSafeField     = "is_safe"
	DefaultOutputCategoryField = "risk_category"
	DefaultOutputScoreField    = "risk_score"
	DefaultInputFormat         = "csv"
	DefaultOutputFormat        = "ndjson"
	DefaultCopies              = 1
	DefaultProgressIntervalMs  = 500
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "json"
)

// Stage is the immutable configuration of one text safety stage. It is
// built once before a run and handed by value to every stage copy.
type Stage struct {
	InputTextField      string
	ServiceURL          string
	Threshold           float64
	OutputSafeField     string
	OutputCategoryField string
	OutputScoreField    string
}

// DefaultStage returns a Stage with every optional setting defaulted and no
// input field selected.
func DefaultStage() Stage {
	return Stage{
		ServiceURL:          DefaultServiceURL,
		Threshold:           DefaultThreshold,
		OutputSafeField:     DefaultOutputSafeField,
		OutputCategoryField: DefaultOutputCategoryField,
		OutputScoreField:    DefaultOutputScoreField,
	}
}

// Run is the resolved configuration of `textsafety run`.
type Run struct {
	ConfigVersion string
	Stage         Stage
	Input         Input
	Output        Output
	Copies        int
	UI            UI
	Log           Log
	Metrics       Metrics
}

// Input selects the row source.
type Input struct {
	Path   string
	Format string
}

// Output selects the row sink. Out "-" is stdout.
type Output struct {
	Out    string
	Format string
}

// UI holds progress reporting settings.
type UI struct {
	Progress           bool
	ProgressIntervalMs int
}

// Log holds logger settings.
type Log struct {
	Level  string
	Format string
}

// Metrics holds the optional Prometheus listen address.
type Metrics struct {
	Addr string
}

// Minimal holds the raw sections read from a config file with presence flags,
// before defaults and placeholder expansion are applied.
type Minimal struct {
	ConfigVersion string
	TextSafety    TextSafety
	Input         InputSection
	Output        OutputSection
	Copies        CopiesSection
	UI            UISection
	Log           LogSection
	Metrics       MetricsSection
}

// Load reads a .cue or .yaml config and resolves it against the process
// environment.
func Load(path string) (Run, error) {
	min, err := ParseMinimal(path)
	if err != nil {
		return Run{}, err
	}
	return Resolve(min, os.LookupEnv), nil
}

// ParseMinimal validates and extracts raw values from a config file. The
// format is chosen from the file extension.
func ParseMinimal(path string) (Minimal, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		v, err := compileCUE(path)
		if err != nil {
			return Minimal{}, err
		}
		return parseCUEValue(v)
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Minimal{}, fmt.Errorf("failed to read config: %w", err)
		}
		return parseYAML(data)
	default:
		return Minimal{}, errors.New("unsupported config format: expected .cue or .yaml")
	}
}

func parseCUEValue(v cue.Value) (Minimal, error) {
	if err := requireStringField(v, "configVersion"); err != nil {
		return Minimal{}, err
	}
	var m Minimal
	if err := v.LookupPath(cue.ParsePath("configVersion")).Decode(&m.ConfigVersion); err != nil {
		return Minimal{}, fmt.Errorf("invalid value for configVersion: %v", err)
	}
	if err := checkConfigVersion(m.ConfigVersion); err != nil {
		return Minimal{}, err
	}
	ts, err := parseTextSafetySection(v)
	if err != nil {
		return Minimal{}, err
	}
	m.TextSafety = ts
	m.Input = parseInputSection(v)
	m.Output = parseOutputSection(v)
	m.Copies = parseCopiesSection(v)
	m.UI = parseUISection(v)
	m.Log = parseLogSection(v)
	m.Metrics = parseMetricsSection(v)
	return m, nil
}

func requireStringField(v cue.Value, name string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return fmt.Errorf("missing required field: %s", name)
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	return nil
}

func checkConfigVersion(v string) error {
	if !IsSupportedConfigVersion(v) {
		return fmt.Errorf("unsupported configVersion: %q (supported: %s)", v, SupportedConfigVersionsCSV())
	}
	return nil
}
