package model

import (
	"time"

	"gorm.io/gorm"
)

type AssessmentType string

const (
	AssessmentTypeMcq  AssessmentType = "mcq"
	AssessmentTypeCode AssessmentType = "code"
)

type GradingMode string

const (
	// GradingModeTestcase awards a per-difficulty weight for every passed case.
	GradingModeTestcase GradingMode = "testcase"
	// GradingModeProblem awards the problem's fixed points only when enough
	// cases pass (all of them unless MinPassedCases says otherwise).
	GradingModeProblem GradingMode = "problem"
	// GradingModeQuestion awards each MCQ question's own grade.
	GradingModeQuestion GradingMode = "question"
)

type QuestionKind string

const (
	QuestionKindSingle     QuestionKind = "single-select"
	QuestionKindMultiple   QuestionKind = "multi-select"
	QuestionKindLongAnswer QuestionKind = "long-answer"
	QuestionKindOutput     QuestionKind = "output"
)

// AutoGradable reports whether a question kind can be scored without a
// reviewer. Long-answer and free-text output questions cannot.
func (k QuestionKind) AutoGradable() bool {
	return k != QuestionKindLongAnswer && k != QuestionKindOutput
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Assessment is immutable once published, administrative fields aside.
// ObtainableScore is summed from the grading configuration once at creation
// and persisted; submissions never recompute it.
type Assessment struct {
	ID         uint  `gorm:"primarykey" json:"id"`
	PipelineID *uint `json:"pipeline_id,omitempty" gorm:"index"`
	// StepID back-references the workflow step this assessment belongs to.
	StepID *uint `json:"step_id,omitempty" gorm:"index"`

	Title             string         `json:"title" gorm:"not null"`
	Type              AssessmentType `json:"type" gorm:"not null"`
	GradingMode       GradingMode    `json:"grading_mode" gorm:"not null"`
	PassingPercentage float64        `json:"passing_percentage" gorm:"not null"`
	DurationMinutes   int            `json:"duration_minutes"`
	Published         bool           `json:"published"`

	ObtainableScore      float64 `json:"obtainable_score"`
	RequiresManualReview bool    `json:"requires_manual_review"`

	// Per-difficulty weights for GradingModeTestcase.
	EasyWeight   float64 `json:"easy_weight"`
	MediumWeight float64 `json:"medium_weight"`
	HardWeight   float64 `json:"hard_weight"`

	Questions []McqQuestion `json:"questions,omitempty" gorm:"foreignKey:AssessmentID"`
	Problems  []Problem     `json:"problems,omitempty" gorm:"foreignKey:AssessmentID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type McqQuestion struct {
	ID           uint         `gorm:"primarykey" json:"id"`
	AssessmentID uint         `json:"assessment_id" gorm:"not null;index"`
	Prompt       string       `json:"prompt" gorm:"type:text;not null"`
	Kind         QuestionKind `json:"kind" gorm:"not null;default:'single-select'"`
	Grade        float64      `json:"grade" gorm:"not null"`
	OrderIndex   int          `json:"order_index" gorm:"not null"`
	Options      []McqOption  `json:"options,omitempty" gorm:"foreignKey:QuestionID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type McqOption struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"not null"`
	IsCorrect  bool   `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Problem struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	AssessmentID uint    `json:"assessment_id" gorm:"not null;index"`
	Title        string  `json:"title" gorm:"not null"`
	Statement    string  `json:"statement" gorm:"type:text"`
	DriverSpec   string  `json:"driver_spec,omitempty" gorm:"type:text"`
	Points       float64 `json:"points"` // GradingModeProblem only
	// MinPassedCases relaxes the all-cases-pass rule for GradingModeProblem;
	// zero means every case must pass.
	MinPassedCases int        `json:"min_passed_cases"`
	TestCases      []TestCase `json:"test_cases,omitempty" gorm:"foreignKey:ProblemID"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type TestCase struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	ProblemID  uint       `json:"problem_id" gorm:"not null;index"`
	Input      string     `json:"input" gorm:"type:text"`
	Expected   string     `json:"expected" gorm:"type:text"`
	Difficulty Difficulty `json:"difficulty" gorm:"not null;default:'easy'"`
	Hidden     bool       `json:"hidden"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
