package stage

import "github.com/flarebyte/textsafety/internal/safety"

const (
	// CategorySafe is the category of texts the service did not flag.
	CategorySafe = "sec"
	// CategoryAPIError marks rows whose text could not be classified.
	CategoryAPIError = "api_error"
)

// Triple is the three values appended to every row.
type Triple struct {
	IsSafe   bool
	Category string
	Score    float64
}

// SkipTriple is appended when the text is empty; the service is not called.
func SkipTriple() Triple {
	return Triple{IsSafe: true, Category: CategorySafe, Score: 0.0}
}

// FailureTriple is appended when a text could not be classified. Failures
// score as the worst case.
func FailureTriple() Triple {
	return Triple{IsSafe: false, Category: CategoryAPIError, Score: 1.0}
}

// Resolve maps a classification outcome to the appended values.
func Resolve(o safety.Outcome) Triple {
	switch o.Kind {
	case safety.Success:
		t := Triple{IsSafe: o.IsSafe, Category: CategorySafe, Score: o.Score}
		if o.HasCategory {
			t.Category = o.Category
		}
		return t
	default:
		// TransportFailure, MalformedResponse and any kind added later.
		return FailureTriple()
	}
}

// resultLabel names the row result for metrics and logs.
func resultLabel(t Triple, skipped, failed bool) string {
	switch {
	case skipped:
		return "skipped"
	case failed:
		return "api_error"
	case t.IsSafe:
		return "safe"
	default:
		return "unsafe"
	}
}
