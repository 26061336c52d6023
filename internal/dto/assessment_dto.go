package dto

import "time"

type McqOptionCreateDTO struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type McqQuestionCreateDTO struct {
	Prompt     string               `json:"prompt" binding:"required"`
	Kind       string               `json:"kind"`
	Grade      float64              `json:"grade"`
	OrderIndex int                  `json:"order_index"`
	Options    []McqOptionCreateDTO `json:"options"`
}

type TestCaseCreateDTO struct {
	Input      string `json:"input"`
	Expected   string `json:"expected"`
	Difficulty string `json:"difficulty"`
	Hidden     bool   `json:"hidden"`
}

type ProblemCreateDTO struct {
	Title          string              `json:"title" binding:"required"`
	Statement      string              `json:"statement"`
	DriverSpec     string              `json:"driver_spec"`
	Points         float64             `json:"points"`
	MinPassedCases int                 `json:"min_passed_cases"`
	TestCases      []TestCaseCreateDTO `json:"test_cases"`
}

// AssessmentCreateDTO publishes an assessment; the obtainable score and the
// manual-review flag are computed here, once, and persisted.
type AssessmentCreateDTO struct {
	PipelineID        *uint                  `json:"pipeline_id,omitempty"`
	StepID            *uint                  `json:"step_id,omitempty"`
	Title             string                 `json:"title" binding:"required"`
	Type              string                 `json:"type" binding:"required"`
	GradingMode       string                 `json:"grading_mode" binding:"required"`
	PassingPercentage float64                `json:"passing_percentage"`
	DurationMinutes   int                    `json:"duration_minutes"`
	EasyWeight        float64                `json:"easy_weight"`
	MediumWeight      float64                `json:"medium_weight"`
	HardWeight        float64                `json:"hard_weight"`
	Questions         []McqQuestionCreateDTO `json:"questions"`
	Problems          []ProblemCreateDTO     `json:"problems"`
}

type AssessmentResponseDTO struct {
	ID                   uint      `json:"id"`
	Title                string    `json:"title"`
	Type                 string    `json:"type"`
	GradingMode          string    `json:"grading_mode"`
	PassingPercentage    float64   `json:"passing_percentage"`
	ObtainableScore      float64   `json:"obtainable_score"`
	RequiresManualReview bool      `json:"requires_manual_review"`
	DurationMinutes      int       `json:"duration_minutes"`
	CreatedAt            time.Time `json:"created_at"`
}
