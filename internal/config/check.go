package config

import "fmt"

// RemarkType classifies a configuration check result.
type RemarkType string

const (
	RemarkOK      RemarkType = "ok"
	RemarkWarning RemarkType = "warning"
	RemarkError   RemarkType = "error"
)

// Remark is a single check result for a stage configuration.
type Remark struct {
	Type    RemarkType `json:"type"`
	Message string     `json:"message"`
}

// Check reports problems a run would hit with this stage configuration.
func Check(s Stage) []Remark {
	var out []Remark
	if s.InputTextField == "" {
		out = append(out, Remark{Type: RemarkError, Message: "Input text field must be specified"})
	}
	if s.ServiceURL == "" {
		out = append(out, Remark{Type: RemarkError, Message: "Safety service URL must be specified"})
	}
	if s.Threshold < 0 || s.Threshold > 1 {
		out = append(out, Remark{Type: RemarkWarning, Message: fmt.Sprintf("Threshold %g is outside [0, 1]", s.Threshold)})
	}
	names := map[string]bool{}
	for _, n := range []string{s.OutputSafeField, s.OutputCategoryField, s.OutputScoreField} {
		if names[n] {
			out = append(out, Remark{Type: RemarkError, Message: fmt.Sprintf("Output field %q is used twice", n)})
		}
		names[n] = true
	}
	if len(out) == 0 {
		out = append(out, Remark{Type: RemarkOK, Message: "Stage configuration is valid"})
	}
	return out
}

// FirstError returns the first error remark as an error, or nil.
func FirstError(remarks []Remark) error {
	for _, r := range remarks {
		if r.Type == RemarkError {
			return fmt.Errorf("invalid config: %s", r.Message)
		}
	}
	return nil
}
