package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionStatusNotStarted SubmissionStatus = "not-started"
	SubmissionStatusInProgress SubmissionStatus = "in-progress"
	SubmissionStatusCompleted  SubmissionStatus = "completed"
)

type OffenseKind string

const (
	OffenseKindTabChange OffenseKind = "tab-change"
	OffenseKindCopyPaste OffenseKind = "copy-paste"
)

const (
	CheatingStatusNone  = "No Copying"
	CheatingStatusHeavy = "Heavy Copying"
)

// Submission tracks one candidate's run at one assessment. Completed is
// terminal: offense and timer writes after completion are no-ops.
type Submission struct {
	ID             uint             `gorm:"primarykey" json:"id"`
	AssessmentID   uint             `json:"assessment_id" gorm:"not null;index:idx_submission_identity,unique"`
	CandidateEmail string           `json:"candidate_email" gorm:"not null;index:idx_submission_identity,unique"`
	Status         SubmissionStatus `json:"status" gorm:"not null;default:'in-progress'"`

	TimerSeconds     int    `json:"timer_seconds"`
	SessionReplayURL string `json:"session_replay_url,omitempty"`
	CheatingStatus   string `json:"cheating_status,omitempty"`

	TotalScore  *float64   `json:"total_score,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Offenses    []OffenseCounter `json:"offenses,omitempty" gorm:"foreignKey:SubmissionID"`
	Answers     []McqAnswer      `json:"answers,omitempty" gorm:"foreignKey:SubmissionID"`
	CaseResults []CaseResult     `json:"case_results,omitempty" gorm:"foreignKey:SubmissionID"`
	ItemGrades  []ItemGrade      `json:"item_grades,omitempty" gorm:"foreignKey:SubmissionID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// OffenseCounter accumulates one offense kind. Code assessments key the
// counter per problem; the submission-global counters MCQ assessments use
// store ProblemID 0. The zero sentinel keeps the unique index effective: a
// NULL column never conflicts, so the upsert would insert instead of
// incrementing.
type OffenseCounter struct {
	ID           uint        `gorm:"primarykey" json:"id"`
	SubmissionID uint        `json:"submission_id" gorm:"not null;index:idx_offense_identity,unique"`
	Kind         OffenseKind `json:"kind" gorm:"not null;index:idx_offense_identity,unique"`
	ProblemID    uint        `json:"problem_id,omitempty" gorm:"not null;default:0;index:idx_offense_identity,unique"`
	Count        int         `json:"count" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type McqAnswer struct {
	ID           uint `gorm:"primarykey" json:"id"`
	SubmissionID uint `json:"submission_id" gorm:"not null;index:idx_answer_identity,unique"`
	QuestionID   uint `json:"question_id" gorm:"not null;index:idx_answer_identity,unique"`
	// Selected holds option ids; multi-select questions carry several.
	Selected pq.StringArray `json:"selected" gorm:"type:text[]"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CaseResult is the sandbox verdict for one test case, written when the
// candidate runs a problem; scoring reads these at completion time.
type CaseResult struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	SubmissionID uint    `json:"submission_id" gorm:"not null;index:idx_case_identity,unique"`
	ProblemID    uint    `json:"problem_id" gorm:"not null;index:idx_case_identity,unique"`
	TestCaseID   uint    `json:"test_case_id" gorm:"not null;index:idx_case_identity,unique"`
	Passed       bool    `json:"passed"`
	AvgTimeMs    float64 `json:"avg_time_ms"`
	AvgMemoryKB  float64 `json:"avg_memory_kb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ItemKind string

const (
	ItemKindQuestion ItemKind = "question"
	ItemKindProblem  ItemKind = "problem"
)

// ItemGrade is the per-question/per-problem mark making up ObtainedGrades.
// Reviewer overrides flip ManuallyGraded and adjust the submission total by
// the delta only.
type ItemGrade struct {
	ID             uint     `gorm:"primarykey" json:"id"`
	SubmissionID   uint     `json:"submission_id" gorm:"not null;index:idx_grade_identity,unique"`
	ItemID         uint     `json:"item_id" gorm:"not null;index:idx_grade_identity,unique"`
	ItemKind       ItemKind `json:"item_kind" gorm:"not null;index:idx_grade_identity,unique"`
	Marks          float64  `json:"marks"`
	ManuallyGraded bool     `json:"manually_graded"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
