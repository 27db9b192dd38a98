package config

// LookupFunc resolves an environment variable, like os.LookupEnv.
type LookupFunc func(name string) (string, bool)

// Resolve applies defaults to the raw sections and expands placeholders in
// the service URL.
func Resolve(m Minimal, lookup LookupFunc) Run {
	r := Run{
		ConfigVersion: m.ConfigVersion,
		Stage:         resolveStage(m.TextSafety, lookup),
		Input:         Input{Path: "-", Format: DefaultInputFormat},
		Output:        Output{Out: "-", Format: DefaultOutputFormat},
		Copies:        DefaultCopies,
		UI:            UI{ProgressIntervalMs: DefaultProgressIntervalMs},
		Log:           Log{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
	if m.Input.HasPath && m.Input.Path != "" {
		r.Input.Path = m.Input.Path
	}
	if m.Input.HasFormat && m.Input.Format != "" {
		r.Input.Format = m.Input.Format
	}
	if m.Output.HasOut && m.Output.Out != "" {
		r.Output.Out = m.Output.Out
	}
	if m.Output.HasFormat && m.Output.Format != "" {
		r.Output.Format = m.Output.Format
	}
	if m.Copies.HasCount && m.Copies.Count > 0 {
		r.Copies = m.Copies.Count
	}
	if m.UI.HasProgress {
		r.UI.Progress = m.UI.Progress
	}
	if m.UI.HasProgressIntervalMs && m.UI.ProgressIntervalMs > 0 {
		r.UI.ProgressIntervalMs = m.UI.ProgressIntervalMs
	}
	if m.Log.HasLevel && m.Log.Level != "" {
		r.Log.Level = m.Log.Level
	}
	if m.Log.HasFormat && m.Log.Format != "" {
		r.Log.Format = m.Log.Format
	}
	if m.Metrics.HasAddr {
		r.Metrics.Addr = m.Metrics.Addr
	}
	return r
}

func resolveStage(ts TextSafety, lookup LookupFunc) Stage {
	s := DefaultStage()
	if ts.HasInputTextField {
		s.InputTextField = ts.InputTextField
	}
	if ts.HasServiceURL {
		s.ServiceURL = ts.ServiceURL
	}
	if ts.HasThreshold {
		s.Threshold = ts.Threshold
	}
	if ts.HasOutputSafe && ts.OutputSafeField != "" {
		s.OutputSafeField = ts.OutputSafeField
	}
	if ts.HasOutputCategory && ts.OutputCategoryField != "" {
		s.OutputCategoryField = ts.OutputCategoryField
	}
	if ts.HasOutputScore && ts.OutputScoreField != "" {
		s.OutputScoreField = ts.OutputScoreField
	}
	if lookup != nil {
		s.ServiceURL = ExpandPlaceholders(s.ServiceURL, lookup)
	}
	return s
}
