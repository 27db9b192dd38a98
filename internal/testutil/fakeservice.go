// Package testutil holds helpers shared by package tests.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	jsoniter "github.com/json-iterator/go"
)

// CheckRequest is the body the stage posts to the safety service.
type CheckRequest struct {
	Text      string  `json:"text"`
	Threshold float64 `json:"threshold"`
}

// FakeService is an httptest server standing in for the safety service. It
// counts calls and remembers every decoded request.
type FakeService struct {
	*httptest.Server

	calls atomic.Int64

	mu       sync.Mutex
	requests []CheckRequest
	headers  []http.Header
}

// NewFakeService starts a server whose replies come from respond. It is
// closed when the test ends.
func NewFakeService(t *testing.T, respond http.HandlerFunc) *FakeService {
	t.Helper()
	f := &FakeService{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		b, _ := io.ReadAll(r.Body)
		var req CheckRequest
		_ = jsoniter.Unmarshal(b, &req)
		f.mu.Lock()
		f.requests = append(f.requests, req)
		f.headers = append(f.headers, r.Header.Clone())
		f.mu.Unlock()
		respond(w, r)
	}))
	t.Cleanup(f.Server.Close)
	return f
}

// JSONReply responds 200 with a fixed body.
func JSONReply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

// StatusReply responds with a status code and body.
func StatusReply(code int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		_, _ = io.WriteString(w, body)
	}
}

// Calls returns how many requests reached the server.
func (f *FakeService) Calls() int { return int(f.calls.Load()) }

// Requests returns a copy of the decoded request bodies in arrival order.
func (f *FakeService) Requests() []CheckRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CheckRequest(nil), f.requests...)
}

// Headers returns a copy of the request headers in arrival order.
func (f *FakeService) Headers() []http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]http.Header(nil), f.headers...)
}

// Endpoint is the check URL of the fake service.
func (f *FakeService) Endpoint() string { return f.URL + "/api/check" }

// ClosedEndpoint returns a URL on which nothing listens.
func ClosedEndpoint(t *testing.T) string {
	t.Helper()
	s := httptest.NewServer(http.NotFoundHandler())
	url := s.URL + "/api/check"
	s.Close()
	return url
}
