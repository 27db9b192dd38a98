package diagnose

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/flarebyte/textsafety/internal/config"
	"github.com/flarebyte/textsafety/internal/safety"
	"github.com/flarebyte/textsafety/internal/testutil"
)

func stageFor(url string) config.Stage {
	s := config.DefaultStage()
	s.InputTextField = "comment"
	s.ServiceURL = url
	return s
}

func TestDiagnose_Success(t *testing.T) {
	svc := testutil.NewFakeService(t, testutil.JSONReply(`{"is_safe": false, "risk_category": "pc", "risk_score": 0.61}`))
	var buf bytes.Buffer
	if err := diagnose(context.Background(), stageFor(svc.Endpoint()), safety.NewClient(), "hello", false, &buf); err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	want := `{"endpoint":"` + svc.Endpoint() + `","threshold":0.5,"skipped":false,"outcome":"success","fields":{"is_safe":false,"risk_category":"pc","risk_score":0.61}}` + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n got %s\nwant %s", buf.String(), want)
	}
}

func TestDiagnose_TransportFailure(t *testing.T) {
	svc := testutil.NewFakeService(t, testutil.StatusReply(http.StatusServiceUnavailable, "warming up"))
	var buf bytes.Buffer
	if err := diagnose(context.Background(), stageFor(svc.Endpoint()), safety.NewClient(), "hello", false, &buf); err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	want := `{"endpoint":"` + svc.Endpoint() + `","threshold":0.5,"skipped":false,"outcome":"transport_failure","status":503,"message":"API returned HTTP 503: warming up","fields":{"is_safe":false,"risk_category":"api_error","risk_score":1}}` + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n got %s\nwant %s", buf.String(), want)
	}
}

func TestDiagnose_EmptyTextSkipsCall(t *testing.T) {
	svc := testutil.NewFakeService(t, testutil.JSONReply(`{}`))
	var buf bytes.Buffer
	if err := diagnose(context.Background(), stageFor(svc.Endpoint()), safety.NewClient(), "", false, &buf); err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if svc.Calls() != 0 {
		t.Fatalf("expected no calls, got %d", svc.Calls())
	}
	want := `{"endpoint":"` + svc.Endpoint() + `","threshold":0.5,"skipped":true,"fields":{"is_safe":true,"risk_category":"sec","risk_score":0}}` + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n got %s\nwant %s", buf.String(), want)
	}
}
