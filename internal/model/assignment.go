package model

import (
	"time"

	"gorm.io/gorm"
)

// Assignment is the payload of an ASSIGNMENT step, located through its StepID
// back-reference.
type Assignment struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	PipelineID  uint       `json:"pipeline_id" gorm:"not null;index"`
	StepID      uint       `json:"step_id" gorm:"not null;uniqueIndex"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description,omitempty" gorm:"type:text"`
	DueDate     *time.Time `json:"due_date,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
