package model

import (
	"time"
)

// AuditLog records operator actions against a pipeline; appended inside the
// workflow transaction.
type AuditLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	PipelineID uint      `json:"pipeline_id" gorm:"not null;index"`
	ActorID    uint      `json:"actor_id" gorm:"not null"`
	Action     string    `json:"action" gorm:"not null"`
	Detail     string    `json:"detail,omitempty" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

// InAppNotification is shown to members with workflow-management rights.
type InAppNotification struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	MemberID  uint       `json:"member_id" gorm:"not null;index"`
	Title     string     `json:"title" gorm:"not null"`
	Body      string     `json:"body,omitempty" gorm:"type:text"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
