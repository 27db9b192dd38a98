// Package safety calls a remote content-safety classification service.
package safety

// Kind tags the variant held by an Outcome.
type Kind int

const (
	// Success means the service answered 200 with a well-formed body.
	Success Kind = iota
	// TransportFailure covers refused connections, timeouts, read errors and
	// non-200 statuses.
	TransportFailure
	// MalformedResponse means a 200 body that could not be interpreted.
	MalformedResponse
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case TransportFailure:
		return "transport_failure"
	case MalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Reason refines a MalformedResponse for diagnostics. It never changes how
// the outcome is scored.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonInvalidJSON  Reason = "invalid_json"
	ReasonMissingField Reason = "missing_field"
	ReasonWrongType    Reason = "wrong_type"
)

// Outcome is the tagged result of one classification attempt. Only the
// fields of the variant named by Kind are meaningful.
type Outcome struct {
	Kind Kind

	// Success
	IsSafe      bool
	Category    string
	HasCategory bool
	Score       float64

	// TransportFailure and MalformedResponse
	Message string
	Reason  Reason
	Status  int
}

// Succeeded builds a Success outcome. An empty category pointer means the
// service did not name one.
func Succeeded(isSafe bool, category *string, score float64) Outcome {
	o := Outcome{Kind: Success, IsSafe: isSafe, Score: score}
	if category != nil {
		o.Category = *category
		o.HasCategory = true
	}
	return o
}

// TransportFailed builds a TransportFailure outcome. status is 0 when no
// response was received.
func TransportFailed(status int, msg string) Outcome {
	return Outcome{Kind: TransportFailure, Status: status, Message: msg}
}

// Malformed builds a MalformedResponse outcome.
func Malformed(reason Reason, msg string) Outcome {
	return Outcome{Kind: MalformedResponse, Reason: reason, Message: msg}
}

// Failed reports whether the outcome is one of the failure variants.
func (o Outcome) Failed() bool { return o.Kind != Success }
