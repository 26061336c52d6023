package repository

import (
	"github.com/lshigami/Hireflow/internal/model"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Append(entry *model.AuditLog) error
	CreateNotifications(notifications []model.InAppNotification) error
	WithTx(tx *gorm.DB) AuditRepository
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) WithTx(tx *gorm.DB) AuditRepository {
	return &auditRepository{db: tx}
}

func (r *auditRepository) Append(entry *model.AuditLog) error {
	return r.db.Create(entry).Error
}

func (r *auditRepository) CreateNotifications(notifications []model.InAppNotification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.Create(&notifications).Error
}
