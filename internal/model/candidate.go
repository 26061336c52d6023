package model

import (
	"time"

	"gorm.io/gorm"
)

type Candidate struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	Name       string         `json:"name" gorm:"not null"`
	Email      string         `json:"email" gorm:"not null;uniqueIndex"`
	ResumeURL  string         `json:"resume_url,omitempty"`
	ResumeText string         `json:"resume_text,omitempty" gorm:"type:text"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

type ApplicationStatus string

const (
	ApplicationStatusPending    ApplicationStatus = "pending"
	ApplicationStatusInProgress ApplicationStatus = "inprogress"
	ApplicationStatusAssessment ApplicationStatus = "assessment"
	ApplicationStatusInterview  ApplicationStatus = "interview"
	ApplicationStatusRejected   ApplicationStatus = "rejected"
	ApplicationStatusHired      ApplicationStatus = "hired"
)

// Application links a candidate to a pipeline. Its status is written only by
// step handlers (on step entry) and by the submission lifecycle (on pass/fail).
type Application struct {
	ID          uint              `gorm:"primarykey" json:"id"`
	PipelineID  uint              `json:"pipeline_id" gorm:"not null;index:idx_app_identity,unique"`
	CandidateID uint              `json:"candidate_id" gorm:"not null;index:idx_app_identity,unique"`
	Candidate   Candidate         `json:"candidate,omitempty" gorm:"foreignKey:CandidateID"`
	Status      ApplicationStatus `json:"status" gorm:"not null;default:'pending'"`

	RejectedAtStage *string  `json:"rejected_at_stage,omitempty"`
	RejectionReason *string  `json:"rejection_reason,omitempty"`
	ATSScore        *float64 `json:"ats_score,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
