package stage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flarebyte/textsafety/internal/safety"
)

func strPtr(s string) *string { return &s }

func TestResolve(t *testing.T) {
	cases := []struct {
		name string
		in   safety.Outcome
		want Triple
	}{
		{"success with category", safety.Succeeded(false, strPtr("violence"), 0.93), Triple{false, "violence", 0.93}},
		{"success without category", safety.Succeeded(true, nil, 0.12), Triple{true, "sec", 0.12}},
		{"success empty category", safety.Succeeded(true, strPtr(""), 0.12), Triple{true, "", 0.12}},
		{"transport failure", safety.TransportFailed(500, "API returned HTTP 500: boom"), Triple{false, "api_error", 1.0}},
		{"refused", safety.TransportFailed(0, "connection refused"), Triple{false, "api_error", 1.0}},
		{"malformed", safety.Malformed(safety.ReasonWrongType, "bad"), Triple{false, "api_error", 1.0}},
		{"unknown kind", safety.Outcome{Kind: safety.Kind(42)}, Triple{false, "api_error", 1.0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.in))
		})
	}
}

func TestSkipTriple(t *testing.T) {
	assert.Equal(t, Triple{IsSafe: true, Category: "sec", Score: 0.0}, SkipTriple())
}

func TestRecordStringAt(t *testing.T) {
	r := Record{nil, "txt", true, 0.5, int64(7), []byte("b"), json.Number("9007199254740993")}
	cases := []struct {
		idx  int
		want string
		ok   bool
	}{
		{0, "", false},
		{1, "txt", true},
		{2, "true", true},
		{3, "0.5", true},
		{4, "7", true},
		{5, "b", true},
		{6, "9007199254740993", true},
		{7, "", false},
		{-1, "", false},
	}
	for _, tc := range cases {
		got, ok := r.StringAt(tc.idx)
		assert.Equal(t, tc.want, got, "StringAt(%d)", tc.idx)
		assert.Equal(t, tc.ok, ok, "StringAt(%d)", tc.idx)
	}
}
