package repository

import (
	"github.com/lshigami/Hireflow/internal/model"
	"gorm.io/gorm"
)

type ApplicationRepository interface {
	Create(app *model.Application) error
	FindByID(id uint) (*model.Application, error)
	// FindEligibleByPipeline returns applications whose status is not
	// rejected, candidate preloaded, in application order.
	FindEligibleByPipeline(pipelineID uint) ([]model.Application, error)
	FindByPipelineAndEmail(pipelineID uint, email string) (*model.Application, error)
	BulkUpdateStatus(ids []uint, status model.ApplicationStatus) error
	Save(app *model.Application) error
	WithTx(tx *gorm.DB) ApplicationRepository
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) WithTx(tx *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: tx}
}

func (r *applicationRepository) Create(app *model.Application) error {
	return r.db.Create(app).Error
}

func (r *applicationRepository) FindByID(id uint) (*model.Application, error) {
	var app model.Application
	if err := r.db.Preload("Candidate").First(&app, id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) FindEligibleByPipeline(pipelineID uint) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.
		Preload("Candidate").
		Where("pipeline_id = ? AND status <> ?", pipelineID, model.ApplicationStatusRejected).
		Order("created_at ASC").
		Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) FindByPipelineAndEmail(pipelineID uint, email string) (*model.Application, error) {
	var app model.Application
	err := r.db.
		Joins("JOIN candidates ON candidates.id = applications.candidate_id").
		Where("applications.pipeline_id = ? AND candidates.email = ?", pipelineID, email).
		Preload("Candidate").
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) BulkUpdateStatus(ids []uint, status model.ApplicationStatus) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&model.Application{}).Where("id IN ?", ids).Update("status", status).Error
}

func (r *applicationRepository) Save(app *model.Application) error {
	return r.db.Save(app).Error
}
