package model

import (
	"time"

	"gorm.io/gorm"
)

type MemberRole string

const (
	MemberRoleAdmin         MemberRole = "admin"
	MemberRoleHiringManager MemberRole = "hiring-manager"
	MemberRoleRecruiter     MemberRole = "recruiter"
)

// Capabilities resolved from roles by the permission service.
const (
	CapabilityManagePipeline = "manage_pipeline"
	CapabilityGradeReview    = "grade_review"
)

// Member is an organization user on the hiring side.
type Member struct {
	ID    uint       `gorm:"primarykey" json:"id"`
	Name  string     `json:"name" gorm:"not null"`
	Email string     `json:"email" gorm:"not null;uniqueIndex"`
	Role  MemberRole `json:"role" gorm:"not null;default:'recruiter'"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
