// Package filtersvc is a local content safety service compatible with the
// stage's Safety Client. Texts are scored by a sandboxed Lua classifier.
package filtersvc

import "sort"

// CategorySafe is the classifier's "no risk" code; it never blocks a text.
const CategorySafe = "sec"

// CategoryModelError is reported when the classifier fails.
const CategoryModelError = "model_error"

// Categories are the risk codes a classifier may report. Anything else it
// returns is dropped.
var Categories = map[string]bool{
	"dw": true, "pc": true, "dc": true, "pi": true, "ec": true, "ac": true,
	"def": true, "ti": true, "cy": true, "ph": true, "mh": true, "se": true,
	"sci": true, "pp": true, "cs": true, "acc": true, "mc": true, "ha": true,
	"ps": true, "ter": true, "sd": true, "ext": true, "fin": true, "med": true,
	"law": true, "cm": true, "ma": true, "md": true, "sec": true,
}

// Verdict is the decision derived from a risk map.
type Verdict struct {
	IsSafe   bool
	Category string // empty when safe
	Score    float64
}

// EvaluateRisk picks the highest scoring risk category, ignoring
// CategorySafe. The text is unsafe when that score reaches threshold.
// Ties go to the lexically smallest code.
func EvaluateRisk(risks map[string]float64, threshold float64) Verdict {
	codes := make([]string, 0, len(risks))
	for c := range risks {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	var max float64
	var blocked string
	for _, c := range codes {
		if c == CategorySafe {
			continue
		}
		if s := risks[c]; s > max {
			max = s
			blocked = c
		}
	}
	if max >= threshold {
		return Verdict{IsSafe: false, Category: blocked, Score: max}
	}
	return Verdict{IsSafe: true, Score: max}
}
