package model

import (
	"time"

	"gorm.io/gorm"
)

// Interview is the payload of an INTERVIEW step. Eligible candidates not yet
// on the list are appended when the step activates.
type Interview struct {
	ID            uint        `gorm:"primarykey" json:"id"`
	PipelineID    uint        `json:"pipeline_id" gorm:"not null;index"`
	StepID        uint        `json:"step_id" gorm:"not null;uniqueIndex"`
	Title         string      `json:"title" gorm:"not null"`
	ScheduledAt   *time.Time  `json:"scheduled_at,omitempty"`
	MeetingURL    string      `json:"meeting_url,omitempty"`
	InterviewerID *uint       `json:"interviewer_id,omitempty"`
	Candidates    []Candidate `json:"candidates,omitempty" gorm:"many2many:interview_candidates"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
