package repository

import (
	"github.com/lshigami/Hireflow/internal/model"
	"gorm.io/gorm"
)

type InterviewRepository interface {
	Create(interview *model.Interview) error
	FindByStepID(stepID uint) (*model.Interview, error)
	Save(interview *model.Interview) error
	AppendCandidates(interview *model.Interview, candidates []model.Candidate) error
	WithTx(tx *gorm.DB) InterviewRepository
}

type interviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

func (r *interviewRepository) WithTx(tx *gorm.DB) InterviewRepository {
	return &interviewRepository{db: tx}
}

func (r *interviewRepository) Create(interview *model.Interview) error {
	return r.db.Create(interview).Error
}

func (r *interviewRepository) FindByStepID(stepID uint) (*model.Interview, error) {
	var interview model.Interview
	err := r.db.Preload("Candidates").Where("step_id = ?", stepID).First(&interview).Error
	if err != nil {
		return nil, err
	}
	return &interview, nil
}

func (r *interviewRepository) Save(interview *model.Interview) error {
	// Omit Candidates so Save never rewrites the join table wholesale.
	return r.db.Omit("Candidates").Save(interview).Error
}

func (r *interviewRepository) AppendCandidates(interview *model.Interview, candidates []model.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	return r.db.Model(interview).Association("Candidates").Append(&candidates)
}
