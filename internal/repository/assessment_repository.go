package repository

import (
	"github.com/lshigami/Hireflow/internal/model"
	"gorm.io/gorm"
)

type AssessmentRepository interface {
	Create(assessment *model.Assessment) error
	FindByID(id uint) (*model.Assessment, error)
	FindByIDWithContent(id uint) (*model.Assessment, error)
	FindByStepID(stepID uint) (*model.Assessment, error)
	Save(assessment *model.Assessment) error
	WithTx(tx *gorm.DB) AssessmentRepository
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) WithTx(tx *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: tx}
}

func (r *assessmentRepository) Create(assessment *model.Assessment) error {
	return r.db.Create(assessment).Error
}

func (r *assessmentRepository) FindByID(id uint) (*model.Assessment, error) {
	var assessment model.Assessment
	if err := r.db.First(&assessment, id).Error; err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) FindByIDWithContent(id uint) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("mcq_questions.order_index ASC")
		}).
		Preload("Questions.Options").
		Preload("Problems").
		Preload("Problems.TestCases").
		First(&assessment, id).Error
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) FindByStepID(stepID uint) (*model.Assessment, error) {
	var assessment model.Assessment
	if err := r.db.Where("step_id = ?", stepID).First(&assessment).Error; err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) Save(assessment *model.Assessment) error {
	return r.db.Save(assessment).Error
}
