package config

import "cuelang.org/go/cue"

// InputSection holds optional input.* fields.
type InputSection struct {
	Path      string
	Format    string
	HasPath   bool
	HasFormat bool
}

// OutputSection holds optional output.* fields.
type OutputSection struct {
	Out       string
	Format    string
	HasOut    bool
	HasFormat bool
}

// CopiesSection holds the optional number of parallel stage copies.
type CopiesSection struct {
	Count    int
	HasCount bool
}

// UISection holds optional ui.* fields.
type UISection struct {
	Progress              bool
	ProgressIntervalMs    int
	HasProgress           bool
	HasProgressIntervalMs bool
}

// LogSection holds optional log.* fields.
type LogSection struct {
	Level     string
	Format    string
	HasLevel  bool
	HasFormat bool
}

// MetricsSection holds optional metrics.addr.
type MetricsSection struct {
	Addr    string
	HasAddr bool
}

// parseInputSection extracts optional input.* fields.
func parseInputSection(v cue.Value) InputSection {
	var in InputSection
	in.Path, in.HasPath = lookupString(v, "input.path")
	in.Format, in.HasFormat = lookupString(v, "input.format")
	return in
}

// parseOutputSection extracts optional output.* fields.
func parseOutputSection(v cue.Value) OutputSection {
	var o OutputSection
	o.Out, o.HasOut = lookupString(v, "output.out")
	o.Format, o.HasFormat = lookupString(v, "output.format")
	return o
}

// parseCopiesSection extracts optional copies count.
func parseCopiesSection(v cue.Value) CopiesSection {
	var c CopiesSection
	c.Count, c.HasCount = lookupInt(v, "copies")
	return c
}

// parseUISection extracts optional ui.* fields.
func parseUISection(v cue.Value) UISection {
	var u UISection
	u.Progress, u.HasProgress = lookupBool(v, "ui.progress")
	u.ProgressIntervalMs, u.HasProgressIntervalMs = lookupInt(v, "ui.progressIntervalMs")
	return u
}

// parseLogSection extracts optional log.* fields.
func parseLogSection(v cue.Value) LogSection {
	var l LogSection
	l.Level, l.HasLevel = lookupString(v, "log.level")
	l.Format, l.HasFormat = lookupString(v, "log.format")
	return l
}

// parseMetricsSection extracts optional metrics.addr.
func parseMetricsSection(v cue.Value) MetricsSection {
	var m MetricsSection
	m.Addr, m.HasAddr = lookupString(v, "metrics.addr")
	return m
}
