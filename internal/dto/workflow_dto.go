package dto

import "time"

// AdvanceWorkflowDTO identifies the operator triggering an advance.
type AdvanceWorkflowDTO struct {
	ActorID uint `json:"actor_id" binding:"required"`
}

// AdvanceResultDTO summarizes what one advance did.
type AdvanceResultDTO struct {
	ClosedStep        string `json:"closed_step,omitempty"`
	ActivatedStep     string `json:"activated_step,omitempty"`
	ActivatedStepType string `json:"activated_step_type,omitempty"`
	PipelineStatus    string `json:"pipeline_status"`
}

type StepDTO struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	OrderIndex  int        `json:"order_index"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type PipelineResponseDTO struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Kind        string    `json:"kind"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	Steps       []StepDTO `json:"steps,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
