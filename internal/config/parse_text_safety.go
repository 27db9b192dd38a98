package config

import (
	"fmt"

	"cuelang.org/go/cue"
)

// TextSafety holds the optional textSafety.* fields and presence flags.
type TextSafety struct {
	InputTextField      string
	ServiceURL          string
	Threshold           float64
	OutputSafeField     string
	OutputCategoryField string
	OutputScoreField    string
	HasInputTextField   bool
	HasServiceURL       bool
	HasThreshold        bool
	HasOutputSafe       bool
	HasOutputCategory   bool
	HasOutputScore      bool
}

// parseTextSafetySection extracts textSafety.*. Unlike the other sections a
// wrongly typed field here is an error.
func parseTextSafetySection(v cue.Value) (TextSafety, error) {
	var ts TextSafety
	sv := v.LookupPath(cue.ParsePath("textSafety"))
	if !sv.Exists() {
		return ts, nil
	}
	var err error
	if ts.InputTextField, ts.HasInputTextField, err = requireOptionalString(sv, "inputTextField"); err != nil {
		return TextSafety{}, err
	}
	if ts.ServiceURL, ts.HasServiceURL, err = requireOptionalString(sv, "serviceUrl"); err != nil {
		return TextSafety{}, err
	}
	if ts.Threshold, ts.HasThreshold, err = lookupNumber(sv, "threshold"); err != nil {
		return TextSafety{}, fmt.Errorf("textSafety: %w", err)
	}
	if ts.OutputSafeField, ts.HasOutputSafe, err = requireOptionalString(sv, "outputSafeField"); err != nil {
		return TextSafety{}, err
	}
	if ts.OutputCategoryField, ts.HasOutputCategory, err = requireOptionalString(sv, "outputCategoryField"); err != nil {
		return TextSafety{}, err
	}
	if ts.OutputScoreField, ts.HasOutputScore, err = requireOptionalString(sv, "outputScoreField"); err != nil {
		return TextSafety{}, err
	}
	return ts, nil
}

func requireOptionalString(v cue.Value, name string) (string, bool, error) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return "", false, nil
	}
	if f.Kind() != cue.StringKind {
		return "", false, fmt.Errorf("invalid type for field: textSafety.%s (expected string)", name)
	}
	var s string
	if err := f.Decode(&s); err != nil {
		return "", false, fmt.Errorf("invalid value for textSafety.%s: %v", name, err)
	}
	return s, true, nil
}
