package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type PipelineKind string

const (
	PipelineKindEnterprise PipelineKind = "enterprise" // job posting
	PipelineKindCampus     PipelineKind = "campus"     // placement drive
)

type PipelineStatus string

const (
	PipelineStatusActive    PipelineStatus = "active"
	PipelineStatusCompleted PipelineStatus = "completed"
)

// Pipeline is the container a posting/drive advances through. It owns the
// ordered step sequence; step payloads (assignments, assessments, interviews)
// point back at their step via StepID rather than being embedded here.
type Pipeline struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Title       string         `json:"title" gorm:"not null"`
	Kind        PipelineKind   `json:"kind" gorm:"not null;default:'enterprise'"`
	Status      PipelineStatus `json:"status" gorm:"not null;default:'active'"`
	Description string         `json:"description,omitempty"`

	// Resume-screening context handed to the ATS scoring collaborator.
	PositivePrompts pq.StringArray `json:"positive_prompts,omitempty" gorm:"type:text[]"`
	NegativePrompts pq.StringArray `json:"negative_prompts,omitempty" gorm:"type:text[]"`
	Skills          pq.StringArray `json:"skills,omitempty" gorm:"type:text[]"`

	Steps        []Step        `json:"steps,omitempty" gorm:"foreignKey:PipelineID"`
	Applications []Application `json:"applications,omitempty" gorm:"foreignKey:PipelineID"`

	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type StepType string

const (
	StepTypeResumeScreening  StepType = "RESUME_SCREENING"
	StepTypeMcqAssessment    StepType = "MCQ_ASSESSMENT"
	StepTypeCodingAssessment StepType = "CODING_ASSESSMENT"
	StepTypeAssignment       StepType = "ASSIGNMENT"
	StepTypeInterview        StepType = "INTERVIEW"
	StepTypeCustom           StepType = "CUSTOM"
)

// KnownStepType reports whether t belongs to the closed step-type enum.
func KnownStepType(t StepType) bool {
	switch t {
	case StepTypeResumeScreening, StepTypeMcqAssessment, StepTypeCodingAssessment,
		StepTypeAssignment, StepTypeInterview, StepTypeCustom:
		return true
	default:
		return false
	}
}

type StepStatus string

const (
	StepStatusPending    StepStatus = "pending"
	StepStatusInProgress StepStatus = "in-progress"
	StepStatusCompleted  StepStatus = "completed"
	StepStatusFailed     StepStatus = "failed"
)

// Step invariant: within a pipeline at most one step is in-progress; steps
// before it are completed or failed, steps after it are pending.
type Step struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	PipelineID uint       `json:"pipeline_id" gorm:"not null;index"`
	Name       string     `json:"name" gorm:"not null"`
	Type       StepType   `json:"type" gorm:"not null"`
	Status     StepStatus `json:"status" gorm:"not null;default:'pending'"`
	OrderIndex int        `json:"order_index" gorm:"not null"`

	StartTime      *time.Time `json:"start_time,omitempty"`
	PlannedEndTime *time.Time `json:"planned_end_time,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	StartedBy      *uint      `json:"started_by,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
