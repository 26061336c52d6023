package repository

import (
	"github.com/lshigami/Hireflow/internal/model"
	"gorm.io/gorm"
)

type AssignmentRepository interface {
	Create(assignment *model.Assignment) error
	FindByStepID(stepID uint) (*model.Assignment, error)
	WithTx(tx *gorm.DB) AssignmentRepository
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) WithTx(tx *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: tx}
}

func (r *assignmentRepository) Create(assignment *model.Assignment) error {
	return r.db.Create(assignment).Error
}

func (r *assignmentRepository) FindByStepID(stepID uint) (*model.Assignment, error) {
	var assignment model.Assignment
	if err := r.db.Where("step_id = ?", stepID).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}
