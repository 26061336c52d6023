package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lshigami/Hireflow/config"
	"github.com/lshigami/Hireflow/internal/apperr"
	"github.com/lshigami/Hireflow/internal/model"
)

// ExecutionCase mirrors one test case sent to the sandbox.
type ExecutionCase struct {
	ID       uint   `json:"id"`
	Input    string `json:"input"`
	Expected string `json:"expected"`
}

type ExecutionCaseResult struct {
	TestCaseID uint   `json:"test_case_id"`
	Passed     bool   `json:"passed"`
	Output     string `json:"output,omitempty"`
}

type ExecutionResult struct {
	Status      string                `json:"status"`
	CaseResults []ExecutionCaseResult `json:"case_results"`
	AvgTimeMs   float64               `json:"avg_time_ms"`
	AvgMemoryKB float64               `json:"avg_memory_kb"`
}

// CodeExecutionService runs candidate code against test cases in the remote
// sandbox. Failures are surfaced, not retried.
type CodeExecutionService interface {
	Execute(ctx context.Context, language, driverSpec, candidateCode string, cases []ExecutionCase) (*ExecutionResult, error)
}

type sandboxClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewCodeExecutionService(cfg *config.Config) CodeExecutionService {
	return &sandboxClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.Sandbox.BaseURL), "/"),
		apiKey:     cfg.Sandbox.ApiKey,
		httpClient: &http.Client{Timeout: cfg.Sandbox.Timeout},
	}
}

type executeRequest struct {
	Language      string          `json:"language"`
	DriverSpec    string          `json:"driver_spec,omitempty"`
	CandidateCode string          `json:"candidate_code"`
	TestCases     []ExecutionCase `json:"test_cases"`
}

func (c *sandboxClient) Execute(ctx context.Context, language, driverSpec, candidateCode string, cases []ExecutionCase) (*ExecutionResult, error) {
	if c.baseURL == "" {
		return nil, apperr.New(apperr.CodeDependency, "code execution sandbox is not configured", nil)
	}

	payload, err := json.Marshal(executeRequest{
		Language:      language,
		DriverSpec:    driverSpec,
		CandidateCode: candidateCode,
		TestCases:     cases,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode execute request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/execute", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.New(apperr.CodeDependency, "code execution sandbox unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperr.New(apperr.CodeDependency, "failed to read sandbox response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.CodeDependency,
			fmt.Sprintf("sandbox returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var result ExecutionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperr.New(apperr.CodeDependency, "malformed sandbox response", err)
	}
	return &result, nil
}

// ToCaseResults converts sandbox verdicts into persistable rows.
func (r *ExecutionResult) ToCaseResults(submissionID, problemID uint) []model.CaseResult {
	results := make([]model.CaseResult, 0, len(r.CaseResults))
	for _, cr := range r.CaseResults {
		results = append(results, model.CaseResult{
			SubmissionID: submissionID,
			ProblemID:    problemID,
			TestCaseID:   cr.TestCaseID,
			Passed:       cr.Passed,
			AvgTimeMs:    r.AvgTimeMs,
			AvgMemoryKB:  r.AvgMemoryKB,
		})
	}
	return results
}
