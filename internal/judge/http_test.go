package judge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/codearena/arena/internal/database/models"
)

func TestExecuteMapsVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/execution/execute" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req executionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		if req.Language != "python" || req.ProblemID != "prob-a" {
			t.Errorf("request fields not forwarded: %+v", req)
		}
		json.NewEncoder(w).Encode(executionResult{
			Status:        "success",
			Score:         100,
			ExecutionTime: 0.125,
			MemoryUsed:    2048,
			PassedTests:   10,
			TotalTests:    10,
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second)
	verdict, err := c.Execute(context.Background(), Request{
		SubmissionID: "sub-1",
		ProblemID:    "prob-a",
		Language:     "python",
		Code:         "print(42)",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if verdict.Status != models.SubmissionAccepted {
		t.Errorf("expected accepted, got %s", verdict.Status)
	}
	if verdict.Score != 100 || verdict.TestsPassed != 10 {
		t.Errorf("verdict fields not mapped: %+v", verdict)
	}
	if verdict.ExecutionTimeMs == nil || *verdict.ExecutionTimeMs != 125 {
		t.Errorf("expected execution time 125ms, got %v", verdict.ExecutionTimeMs)
	}
	if verdict.MemoryKb == nil || *verdict.MemoryKb != 2048 {
		t.Errorf("expected memory 2048kb, got %v", verdict.MemoryKb)
	}
}

func TestExecuteNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second)
	_, err := c.Execute(context.Background(), Request{SubmissionID: "sub-1"})
	if err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("expected the status code in the error, got %v", err)
	}
}

func TestExecuteContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewHTTPClient(srv.URL, 5*time.Second)
	_, err := c.Execute(ctx, Request{SubmissionID: "sub-1"})
	if err == nil {
		t.Fatal("expected a deadline error")
	}
}

func TestStatusFromExecution(t *testing.T) {
	cases := map[string]models.SubmissionStatus{
		"success":               models.SubmissionAccepted,
		"wrong_answer":          models.SubmissionWrongAnswer,
		"time_limit_exceeded":   models.SubmissionTimeLimitExceeded,
		"memory_limit_exceeded": models.SubmissionMemoryLimitExceeded,
		"compile_error":         models.SubmissionCompilationError,
		"runtime_error":         models.SubmissionRuntimeError,
		"something_new":         models.SubmissionRuntimeError,
	}
	for in, want := range cases {
		if got := statusFromExecution(in); got != want {
			t.Errorf("statusFromExecution(%q) = %s, want %s", in, got, want)
		}
	}
}
