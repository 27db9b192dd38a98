package stage

import "github.com/flarebyte/textsafety/internal/config"

// Resolution is the outcome of schema resolution for one run.
type Resolution struct {
	// InputIndex is the position of the text field in the input schema.
	InputIndex int
	// InputWidth is the number of fields in the input schema.
	InputWidth int
	// Output is the input schema followed by the safe, category and score
	// fields, in that order.
	Output Schema
}

// ErrFieldNotFound is returned when the configured text field is absent
// from the input schema.
type ErrFieldNotFound struct {
	Field string
}

func (e *ErrFieldNotFound) Error() string { return "Input text field not found: " + e.Field }

// ResolveSchema locates the text field and computes the output schema.
func ResolveSchema(in Schema, cfg config.Stage) (Resolution, error) {
	idx := in.IndexOf(cfg.InputTextField)
	if idx < 0 || cfg.InputTextField == "" {
		return Resolution{}, &ErrFieldNotFound{Field: cfg.InputTextField}
	}
	return Resolution{
		InputIndex: idx,
		InputWidth: len(in),
		Output: in.With(
			Field{Name: cfg.OutputSafeField, Type: TypeBoolean},
			Field{Name: cfg.OutputCategoryField, Type: TypeString},
			Field{Name: cfg.OutputScoreField, Type: TypeNumber},
		),
	}, nil
}
