package repository

import (
	"github.com/lshigami/Hireflow/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PipelineRepository interface {
	Create(pipeline *model.Pipeline) error
	FindByID(id uint) (*model.Pipeline, error)
	FindByIDWithSteps(id uint) (*model.Pipeline, error)
	// FindByIDWithStepsForUpdate locks the pipeline row for the duration of
	// the surrounding transaction, so concurrent advances serialize on it.
	FindByIDWithStepsForUpdate(id uint) (*model.Pipeline, error)
	SaveStep(step *model.Step) error
	Save(pipeline *model.Pipeline) error
	WithTx(tx *gorm.DB) PipelineRepository
}

type pipelineRepository struct {
	db *gorm.DB
}

func NewPipelineRepository(db *gorm.DB) PipelineRepository {
	return &pipelineRepository{db: db}
}

func (r *pipelineRepository) WithTx(tx *gorm.DB) PipelineRepository {
	return &pipelineRepository{db: tx}
}

func (r *pipelineRepository) Create(pipeline *model.Pipeline) error {
	// GORM creates associated steps when pipeline.Steps is populated.
	return r.db.Create(pipeline).Error
}

func (r *pipelineRepository) FindByID(id uint) (*model.Pipeline, error) {
	var pipeline model.Pipeline
	if err := r.db.First(&pipeline, id).Error; err != nil {
		return nil, err
	}
	return &pipeline, nil
}

func (r *pipelineRepository) FindByIDWithSteps(id uint) (*model.Pipeline, error) {
	var pipeline model.Pipeline
	err := r.db.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("steps.order_index ASC")
	}).First(&pipeline, id).Error
	if err != nil {
		return nil, err
	}
	return &pipeline, nil
}

func (r *pipelineRepository) FindByIDWithStepsForUpdate(id uint) (*model.Pipeline, error) {
	var pipeline model.Pipeline
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("steps.order_index ASC")
		}).First(&pipeline, id).Error
	if err != nil {
		return nil, err
	}
	return &pipeline, nil
}

func (r *pipelineRepository) SaveStep(step *model.Step) error {
	return r.db.Save(step).Error
}

func (r *pipelineRepository) Save(pipeline *model.Pipeline) error {
	return r.db.Save(pipeline).Error
}
