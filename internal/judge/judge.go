package judge

import (
	"context"

	"github.com/codearena/arena/internal/database/models"
)

// Request carries one submission to the external execution service.
type Request struct {
	SubmissionID string `json:"submission_id"`
	ProblemID    string `json:"problem_id"`
	Language     string `json:"language"`
	Code         string `json:"code"`
}

// Verdict is the judged outcome of a submission. Status is always one of the
// terminal submission statuses.
type Verdict struct {
	Status          models.SubmissionStatus `json:"status"`
	Score           int                     `json:"score"`
	ExecutionTimeMs *int                    `json:"execution_time_ms,omitempty"`
	MemoryKb        *int                    `json:"memory_kb,omitempty"`
	TestsPassed     int                     `json:"tests_passed"`
	TestsTotal      int                     `json:"tests_total"`
}

// Client sends submissions to the external judge and returns verdicts.
// Execute may block until the judge finishes or ctx expires; callers own
// the deadline.
type Client interface {
	Execute(ctx context.Context, req Request) (*Verdict, error)
}
