package safety

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/flarebyte/textsafety/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_SuccessWithCategory(t *testing.T) {
	svc := testutil.NewFakeService(t, testutil.JSONReply(`{"is_safe": false, "risk_score": 0.93, "risk_category": "violence"}`))
	c := NewClient()

	out := c.Classify(context.Background(), Request{Endpoint: svc.Endpoint(), Text: "hello", Threshold: 0.4})

	require.Equal(t, Success, out.Kind)
	assert.False(t, out.IsSafe)
	assert.True(t, out.HasCategory)
	assert.Equal(t, "violence", out.Category)
	assert.Equal(t, 0.93, out.Score)

	reqs := svc.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, testutil.CheckRequest{Text: "hello", Threshold: 0.4}, reqs[0])
	h := svc.Headers()[0]
	assert.Equal(t, "application/json; charset=UTF-8", h.Get("Content-Type"))
	assert.Equal(t, "application/json", h.Get("Accept"))
}

func TestClassify_CategoryAbsentOrNull(t *testing.T) {
	for _, body := range []string{
		`{"is_safe": true, "risk_score": 0.1}`,
		`{"is_safe": true, "risk_score": 0.1, "risk_category": null}`,
	} {
		svc := testutil.NewFakeService(t, testutil.JSONReply(body))
		out := NewClient().Classify(context.Background(), Request{Endpoint: svc.Endpoint(), Text: "x", Threshold: 0.5})
		require.Equal(t, Success, out.Kind, body)
		assert.False(t, out.HasCategory, body)
		assert.True(t, out.IsSafe)
	}
}

func TestClassify_NonOKStatus(t *testing.T) {
	svc := testutil.NewFakeService(t, testutil.StatusReply(http.StatusInternalServerError, "model\nexploded"))
	out := NewClient().Classify(context.Background(), Request{Endpoint: svc.Endpoint(), Text: "x"})
	require.Equal(t, TransportFailure, out.Kind)
	assert.Equal(t, 500, out.Status)
	assert.Equal(t, "API returned HTTP 500: model exploded", out.Message)
}

func TestClassify_NonOKStatusEmptyBody(t *testing.T) {
	svc := testutil.NewFakeService(t, testutil.StatusReply(http.StatusServiceUnavailable, ""))
	out := NewClient().Classify(context.Background(), Request{Endpoint: svc.Endpoint(), Text: "x"})
	require.Equal(t, TransportFailure, out.Kind)
	assert.Equal(t, "API returned HTTP 503: ", out.Message)
}

func TestClassify_ConnectionRefused(t *testing.T) {
	out := NewClient(WithConnectTimeout(time.Second)).Classify(context.Background(), Request{Endpoint: testutil.ClosedEndpoint(t), Text: "x"})
	require.Equal(t, TransportFailure, out.Kind)
	assert.Equal(t, 0, out.Status)
	assert.NotEmpty(t, out.Message)
}

func TestClassify_ReadTimeout(t *testing.T) {
	release := make(chan struct{})
	svc := testutil.NewFakeService(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	start := time.Now()
	out := NewClient(WithReadTimeout(100*time.Millisecond)).Classify(context.Background(), Request{Endpoint: svc.Endpoint(), Text: "x"})
	require.Equal(t, TransportFailure, out.Kind)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClassify_SlowBody(t *testing.T) {
	release := make(chan struct{})
	svc := testutil.NewFakeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"is_safe": tr`))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	out := NewClient(WithReadTimeout(100*time.Millisecond)).Classify(context.Background(), Request{Endpoint: svc.Endpoint(), Text: "x"})
	require.Equal(t, TransportFailure, out.Kind)
	assert.Equal(t, "read timeout after 100ms", out.Message)
}

func TestClassify_InvalidURL(t *testing.T) {
	out := NewClient().Classify(context.Background(), Request{Endpoint: "://nope", Text: "x"})
	require.Equal(t, TransportFailure, out.Kind)
	assert.True(t, strings.HasPrefix(out.Message, "invalid service url:"), out.Message)
}

func TestClassify_CanceledContext(t *testing.T) {
	svc := testutil.NewFakeService(t, testutil.JSONReply(`{"is_safe": true, "risk_score": 0}`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := NewClient().Classify(ctx, Request{Endpoint: svc.Endpoint(), Text: "x"})
	assert.Equal(t, TransportFailure, out.Kind)
}

func TestParseResponse(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		kind   Kind
		reason Reason
	}{
		{"not json", `<html>`, MalformedResponse, ReasonInvalidJSON},
		{"array", `[1,2]`, MalformedResponse, ReasonInvalidJSON},
		{"null document", `null`, MalformedResponse, ReasonMissingField},
		{"missing is_safe", `{"risk_score": 0.2}`, MalformedResponse, ReasonMissingField},
		{"null is_safe", `{"is_safe": null, "risk_score": 0.2}`, MalformedResponse, ReasonMissingField},
		{"string is_safe", `{"is_safe": "true", "risk_score": 0.2}`, MalformedResponse, ReasonWrongType},
		{"missing score", `{"is_safe": true}`, MalformedResponse, ReasonMissingField},
		{"string score", `{"is_safe": true, "risk_score": "0.2"}`, MalformedResponse, ReasonWrongType},
		{"object category", `{"is_safe": true, "risk_score": 0.2, "risk_category": {}}`, MalformedResponse, ReasonWrongType},
		{"extra keys", `{"is_safe": true, "risk_score": 0.2, "risk_details": {"pc": 0.2}}`, Success, ReasonNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := ParseResponse([]byte(tc.body))
			assert.Equal(t, tc.kind, out.Kind)
			assert.Equal(t, tc.reason, out.Reason)
		})
	}
}

func TestParseResponse_ScalarCategory(t *testing.T) {
	out := ParseResponse([]byte(`{"is_safe": false, "risk_score": 1, "risk_category": 7}`))
	require.Equal(t, Success, out.Kind)
	assert.Equal(t, "7", out.Category)
	assert.Equal(t, 1.0, out.Score)
}
