package repository

import (
	"errors"

	"github.com/lshigami/Hireflow/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionRepository interface {
	// FirstOrCreate returns the submission for (email, assessment), creating
	// it in-progress when absent. The bool reports whether it was created.
	FirstOrCreate(submission *model.Submission) (bool, error)
	FindByIdentity(assessmentID uint, candidateEmail string) (*model.Submission, error)
	FindByIdentityWithDetails(assessmentID uint, candidateEmail string) (*model.Submission, error)
	FindByIDWithDetails(id uint) (*model.Submission, error)
	Save(submission *model.Submission) error
	// IncrementOffense bumps the (kind, problem) counter by one, creating the
	// row on first offense. Safe to replay.
	IncrementOffense(submissionID uint, kind model.OffenseKind, problemID *uint) error
	UpdateTimer(submissionID uint, timerSeconds int) error
	UpsertAnswer(answer *model.McqAnswer) error
	UpsertCaseResults(results []model.CaseResult) error
	SaveItemGrade(grade *model.ItemGrade) error
	WithTx(tx *gorm.DB) SubmissionRepository
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) WithTx(tx *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: tx}
}

func (r *submissionRepository) FirstOrCreate(submission *model.Submission) (bool, error) {
	var existing model.Submission
	err := r.db.
		Where("assessment_id = ? AND candidate_email = ?", submission.AssessmentID, submission.CandidateEmail).
		First(&existing).Error
	if err == nil {
		*submission = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := r.db.Create(submission).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *submissionRepository) FindByIdentity(assessmentID uint, candidateEmail string) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.
		Where("assessment_id = ? AND candidate_email = ?", assessmentID, candidateEmail).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) FindByIdentityWithDetails(assessmentID uint, candidateEmail string) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.
		Preload("Offenses").
		Preload("Answers").
		Preload("CaseResults").
		Preload("ItemGrades").
		Where("assessment_id = ? AND candidate_email = ?", assessmentID, candidateEmail).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) FindByIDWithDetails(id uint) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.
		Preload("Offenses").
		Preload("Answers").
		Preload("CaseResults").
		Preload("ItemGrades").
		First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) Save(submission *model.Submission) error {
	return r.db.Save(submission).Error
}

func (r *submissionRepository) IncrementOffense(submissionID uint, kind model.OffenseKind, problemID *uint) error {
	counter := model.OffenseCounter{
		SubmissionID: submissionID,
		Kind:         kind,
		Count:        1,
	}
	// Submission-global counters keep the zero problem id so the conflict
	// target matches on replays.
	if problemID != nil {
		counter.ProblemID = *problemID
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "submission_id"}, {Name: "kind"}, {Name: "problem_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count": gorm.Expr("offense_counters.count + 1"),
		}),
	}).Create(&counter).Error
}

func (r *submissionRepository) UpdateTimer(submissionID uint, timerSeconds int) error {
	return r.db.Model(&model.Submission{}).
		Where("id = ?", submissionID).
		Update("timer_seconds", timerSeconds).Error
}

func (r *submissionRepository) UpsertAnswer(answer *model.McqAnswer) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "submission_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected", "updated_at"}),
	}).Create(answer).Error
}

func (r *submissionRepository) UpsertCaseResults(results []model.CaseResult) error {
	if len(results) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "submission_id"}, {Name: "problem_id"}, {Name: "test_case_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"passed", "avg_time_ms", "avg_memory_kb", "updated_at"}),
	}).Create(&results).Error
}

func (r *submissionRepository) SaveItemGrade(grade *model.ItemGrade) error {
	return r.db.Save(grade).Error
}
