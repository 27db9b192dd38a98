package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	ConfigVersion *string `yaml:"configVersion"`
	TextSafety    *struct {
		InputTextField      *string  `yaml:"inputTextField"`
		ServiceURL          *string  `yaml:"serviceUrl"`
		Threshold           *float64 `yaml:"threshold"`
		OutputSafeField     *string  `yaml:"outputSafeField"`
		OutputCategoryField *string  `yaml:"outputCategoryField"`
		OutputScoreField    *string  `yaml:"outputScoreField"`
	} `yaml:"textSafety"`
	Input *struct {
		Path   *string `yaml:"path"`
		Format *string `yaml:"format"`
	} `yaml:"input"`
	Output *struct {
		Out    *string `yaml:"out"`
		Format *string `yaml:"format"`
	} `yaml:"output"`
	Copies *int `yaml:"copies"`
	UI     *struct {
		Progress           *bool `yaml:"progress"`
		ProgressIntervalMs *int  `yaml:"progressIntervalMs"`
	} `yaml:"ui"`
	Log *struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"log"`
	Metrics *struct {
		Addr *string `yaml:"addr"`
	} `yaml:"metrics"`
}

// parseYAML reads the stage file format written by the stagefile package.
func parseYAML(data []byte) (Minimal, error) {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Minimal{}, fmt.Errorf("invalid config: %v", err)
	}
	if f.ConfigVersion == nil {
		return Minimal{}, errors.New("missing required field: configVersion")
	}
	var m Minimal
	m.ConfigVersion = *f.ConfigVersion
	if err := checkConfigVersion(m.ConfigVersion); err != nil {
		return Minimal{}, err
	}
	if ts := f.TextSafety; ts != nil {
		m.TextSafety.InputTextField, m.TextSafety.HasInputTextField = deref(ts.InputTextField)
		m.TextSafety.ServiceURL, m.TextSafety.HasServiceURL = deref(ts.ServiceURL)
		m.TextSafety.Threshold, m.TextSafety.HasThreshold = deref(ts.Threshold)
		m.TextSafety.OutputSafeField, m.TextSafety.HasOutputSafe = deref(ts.OutputSafeField)
		m.TextSafety.OutputCategoryField, m.TextSafety.HasOutputCategory = deref(ts.OutputCategoryField)
		m.TextSafety.OutputScoreField, m.TextSafety.HasOutputScore = deref(ts.OutputScoreField)
	}
	if in := f.Input; in != nil {
		m.Input.Path, m.Input.HasPath = deref(in.Path)
		m.Input.Format, m.Input.HasFormat = deref(in.Format)
	}
	if out := f.Output; out != nil {
		m.Output.Out, m.Output.HasOut = deref(out.Out)
		m.Output.Format, m.Output.HasFormat = deref(out.Format)
	}
	m.Copies.Count, m.Copies.HasCount = deref(f.Copies)
	if ui := f.UI; ui != nil {
		m.UI.Progress, m.UI.HasProgress = deref(ui.Progress)
		m.UI.ProgressIntervalMs, m.UI.HasProgressIntervalMs = deref(ui.ProgressIntervalMs)
	}
	if l := f.Log; l != nil {
		m.Log.Level, m.Log.HasLevel = deref(l.Level)
		m.Log.Format, m.Log.HasFormat = deref(l.Format)
	}
	if mt := f.Metrics; mt != nil {
		m.Metrics.Addr, m.Metrics.HasAddr = deref(mt.Addr)
	}
	return m, nil
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
