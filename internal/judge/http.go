package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codearena/arena/internal/database/models"
)

// HTTPClient talks to the code-execution service over its REST API
// (POST {base}/api/v1/execution/execute).
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type executionRequest struct {
	Code      string `json:"code"`
	Language  string `json:"language"`
	ProblemID string `json:"problem_id"`
	UserID    string `json:"user_id,omitempty"`
}

type executionResult struct {
	Status            string  `json:"status"`
	Score             int     `json:"score"`
	ExecutionTime     float64 `json:"execution_time"`
	MemoryUsed        int     `json:"memory_used"`
	PassedTests       int     `json:"passed_tests"`
	TotalTests        int     `json:"total_tests"`
	Error             *string `json:"error,omitempty"`
	CompilationOutput *string `json:"compilation_output,omitempty"`
}

func (c *HTTPClient) Execute(ctx context.Context, req Request) (*Verdict, error) {
	body, err := json.Marshal(executionRequest{
		Code:      req.Code,
		Language:  req.Language,
		ProblemID: req.ProblemID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode execution request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/execution/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build execution request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execution request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("judge returned status %d: %s", resp.StatusCode, data)
	}

	var result executionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode execution result: %w", err)
	}

	verdict := &Verdict{
		Status:      statusFromExecution(result.Status),
		Score:       result.Score,
		TestsPassed: result.PassedTests,
		TestsTotal:  result.TotalTests,
	}
	if result.ExecutionTime > 0 {
		ms := int(result.ExecutionTime * 1000)
		verdict.ExecutionTimeMs = &ms
	}
	if result.MemoryUsed > 0 {
		kb := result.MemoryUsed
		verdict.MemoryKb = &kb
	}
	return verdict, nil
}

// statusFromExecution maps the execution service's status vocabulary onto
// submission statuses. Anything unrecognized is treated as a runtime error
// so the submission still reaches a terminal state.
func statusFromExecution(status string) models.SubmissionStatus {
	switch status {
	case "success":
		return models.SubmissionAccepted
	case "wrong_answer":
		return models.SubmissionWrongAnswer
	case "time_limit_exceeded":
		return models.SubmissionTimeLimitExceeded
	case "memory_limit_exceeded":
		return models.SubmissionMemoryLimitExceeded
	case "compile_error":
		return models.SubmissionCompilationError
	default:
		return models.SubmissionRuntimeError
	}
}
