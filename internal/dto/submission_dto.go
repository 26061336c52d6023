package dto

import "time"

// StartSubmissionDTO begins (or resumes) a candidate's run at an assessment.
type StartSubmissionDTO struct {
	AssessmentID   uint   `json:"assessment_id" binding:"required"`
	CandidateEmail string `json:"candidate_email" binding:"required,email"`
}

// OffenseDTO increments one proctoring counter. ProblemID is set for code
// assessments only; MCQ offenses are global to the submission.
type OffenseDTO struct {
	AssessmentID   uint   `json:"assessment_id" binding:"required"`
	CandidateEmail string `json:"candidate_email" binding:"required,email"`
	Kind           string `json:"kind" binding:"required"`
	ProblemID      *uint  `json:"problem_id,omitempty"`
}

type TimerSyncDTO struct {
	AssessmentID   uint   `json:"assessment_id" binding:"required"`
	CandidateEmail string `json:"candidate_email" binding:"required,email"`
	TimerSeconds   int    `json:"timer_seconds"`
}

type SessionReplayDTO struct {
	AssessmentID   uint   `json:"assessment_id" binding:"required"`
	CandidateEmail string `json:"candidate_email" binding:"required,email"`
	URL            string `json:"url" binding:"required"`
}

// McqAnswerDTO records the selected option ids for one question.
type McqAnswerDTO struct {
	AssessmentID   uint     `json:"assessment_id" binding:"required"`
	CandidateEmail string   `json:"candidate_email" binding:"required,email"`
	QuestionID     uint     `json:"question_id" binding:"required"`
	Selected       []string `json:"selected"`
}

// RunProblemDTO sends candidate code for one problem to the sandbox.
type RunProblemDTO struct {
	AssessmentID   uint   `json:"assessment_id" binding:"required"`
	CandidateEmail string `json:"candidate_email" binding:"required,email"`
	ProblemID      uint   `json:"problem_id" binding:"required"`
	Language       string `json:"language" binding:"required"`
	Code           string `json:"code" binding:"required"`
}

type CaseResultDTO struct {
	TestCaseID uint `json:"test_case_id"`
	Passed     bool `json:"passed"`
}

type RunProblemResultDTO struct {
	Status      string          `json:"status"`
	CaseResults []CaseResultDTO `json:"case_results"`
	AvgTimeMs   float64         `json:"avg_time_ms"`
	AvgMemoryKB float64         `json:"avg_memory_kb"`
}

type CompleteSubmissionDTO struct {
	AssessmentID   uint   `json:"assessment_id" binding:"required"`
	CandidateEmail string `json:"candidate_email" binding:"required,email"`
}

// OverrideGradeDTO lets a reviewer assign marks to one item; the submission
// total moves by exactly the delta.
type OverrideGradeDTO struct {
	SubmissionID uint    `json:"submission_id" binding:"required"`
	ReviewerID   uint    `json:"reviewer_id" binding:"required"`
	ItemID       uint    `json:"item_id" binding:"required"`
	ItemKind     string  `json:"item_kind" binding:"required"`
	Marks        float64 `json:"marks"`
}

type ItemGradeDTO struct {
	ItemID         uint    `json:"item_id"`
	ItemKind       string  `json:"item_kind"`
	Marks          float64 `json:"marks"`
	ManuallyGraded bool    `json:"manually_graded"`
}

type SubmissionDTO struct {
	ID               uint           `json:"id"`
	AssessmentID     uint           `json:"assessment_id"`
	CandidateEmail   string         `json:"candidate_email"`
	Status           string         `json:"status"`
	TimerSeconds     int            `json:"timer_seconds"`
	SessionReplayURL string         `json:"session_replay_url,omitempty"`
	CheatingStatus   string         `json:"cheating_status,omitempty"`
	TotalScore       *float64       `json:"total_score,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	ItemGrades       []ItemGradeDTO `json:"item_grades,omitempty"`
}

// SubmissionResultDTO is returned by completion and grading overrides.
type SubmissionResultDTO struct {
	Submission     SubmissionDTO `json:"submission"`
	Passed         *bool         `json:"passed,omitempty"`
	ObtainableMark float64       `json:"obtainable_mark"`
}
