package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// compileCUE loads and compiles a CUE file at the given path.
func compileCUE(path string) (cue.Value, error) {
	if filepath.Ext(path) != ".cue" {
		return cue.Value{}, errors.New("unsupported config format: expected .cue")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read config: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("invalid config: %v", err)
	}
	return v, nil
}

// lookupString decodes an optional string field. ok is false when the field
// is absent or not a string.
func lookupString(v cue.Value, path string) (s string, ok bool) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() || f.Kind() != cue.StringKind {
		return "", false
	}
	if err := f.Decode(&s); err != nil {
		return "", false
	}
	return s, true
}

func lookupBool(v cue.Value, path string) (b bool, ok bool) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() || f.Kind() != cue.BoolKind {
		return false, false
	}
	if err := f.Decode(&b); err != nil {
		return false, false
	}
	return b, true
}

func lookupInt(v cue.Value, path string) (n int, ok bool) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() || f.Kind() != cue.IntKind {
		return 0, false
	}
	if err := f.Decode(&n); err != nil {
		return 0, false
	}
	return n, true
}

// lookupNumber accepts both int and float literals.
func lookupNumber(v cue.Value, path string) (x float64, present bool, err error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return 0, false, nil
	}
	switch f.Kind() {
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		x, err = f.Float64()
		if err != nil {
			return 0, true, fmt.Errorf("invalid value for field: %s: %v", path, err)
		}
		return x, true, nil
	default:
		return 0, true, fmt.Errorf("invalid type for field: %s (expected number)", path)
	}
}
